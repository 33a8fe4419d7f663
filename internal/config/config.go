package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"foodwaste/internal/core"
)

// Chat modes gate the remote and local-model stages of the resolver.
const (
	ChatModeOffline = "offline"
	ChatModeOnline  = "online"
	ChatModeAuto    = "auto"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Logging
	LogLevel  string
	LogFormat string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	PostgresDSN  string
	SeedFile     string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	MirrorBatchSize int
	MirrorInterval  time.Duration

	// Chat
	ChatMode          string
	ChatAPIKey        string
	ChatAPIURL        string
	ChatModel         string
	ChatRemoteTimeout time.Duration
	LocalModelURL     string
	LocalModelName    string
	LocalModelTimeout time.Duration
	ChatResponsesFile string
	ChatSeed          *int64 // nil leaves canned picks unseeded
	ChatCacheTTL      time.Duration
	ChatDataContext   bool

	// Unit heuristics
	ServingKg float64
	ItemKg    float64
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/foodwaste.db"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		SeedFile:     getEnv("SEED_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "foodwaste"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "entry_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Waste"),

		MirrorBatchSize: getEnvInt("MIRROR_BATCH_SIZE", 10),
		MirrorInterval:  getEnvDuration("MIRROR_INTERVAL", 30*time.Second),

		ChatMode:          strings.ToLower(getEnv("CHAT_MODE", ChatModeAuto)),
		ChatAPIKey:        getEnv("CHAT_API_KEY", ""),
		ChatAPIURL:        getEnv("CHAT_API_URL", "https://api.deepseek.com/v1/chat/completions"),
		ChatModel:         getEnv("CHAT_MODEL", "deepseek-chat"),
		ChatRemoteTimeout: getEnvDuration("CHAT_REMOTE_TIMEOUT", 10*time.Second),
		LocalModelURL:     getEnv("LOCAL_MODEL_URL", "http://localhost:11434"),
		LocalModelName:    getEnv("LOCAL_MODEL_NAME", "gpt2"),
		LocalModelTimeout: getEnvDuration("LOCAL_MODEL_TIMEOUT", 20*time.Second),
		ChatResponsesFile: getEnv("CHAT_RESPONSES_FILE", ""),
		ChatSeed:          getEnvInt64Ptr("CHAT_SEED"),
		ChatCacheTTL:      getEnvDuration("CHAT_CACHE_TTL", 10*time.Minute),
		ChatDataContext:   getEnvBool("CHAT_DATA_CONTEXT", false),

		ServingKg: getEnvFloat("UNIT_SERVINGS_KG", core.DefaultServingKg),
		ItemKg:    getEnvFloat("UNIT_ITEMS_KG", core.DefaultItemKg),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	validBackends := []string{"memory", "sqlite", "postgres"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "postgres" && c.PostgresDSN == "" {
		errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MirrorBatchSize < 1 || c.MirrorBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid mirror batch size %d: must be between 1 and 1000", c.MirrorBatchSize))
	}
	if c.MirrorInterval < time.Second || c.MirrorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be between 1 second and 24 hours", c.MirrorInterval))
	}

	validModes := []string{ChatModeOffline, ChatModeOnline, ChatModeAuto}
	if !slices.Contains(validModes, c.ChatMode) {
		errors = append(errors, fmt.Sprintf("invalid chat mode '%s': must be one of %v", c.ChatMode, validModes))
	}
	if c.ChatRemoteTimeout <= 0 || c.LocalModelTimeout <= 0 {
		errors = append(errors, "chat timeouts must be positive")
	}

	if c.ServingKg <= 0 || c.ItemKg <= 0 {
		errors = append(errors, fmt.Sprintf("invalid unit heuristics servings=%v items=%v: must be positive", c.ServingKg, c.ItemKg))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateChat reports the credential problem of an online chat setup as a
// core.ErrConfiguration. It is not part of Validate: the service still starts
// and answers chat requests with the error instead.
func (c *Config) ValidateChat() error {
	if c.ChatMode != ChatModeOnline {
		return nil
	}
	if strings.TrimSpace(c.ChatAPIKey) == "" {
		return &core.ConfigurationError{Setting: "CHAT_API_KEY", Reason: "required when CHAT_MODE is online"}
	}
	if u, err := url.Parse(c.ChatAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return &core.ConfigurationError{Setting: "CHAT_API_URL", Reason: fmt.Sprintf("invalid URL '%s'", c.ChatAPIURL)}
	}
	return nil
}

// ApplyOverrides replaces settings with the non-empty values returned by
// lookup, keyed by the same names as the environment variables.
func (c *Config) ApplyOverrides(lookup func(key string) string) {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(lookup(key)); v != "" {
			*dst = v
		}
	}
	str("DATA_BACKEND", &c.DataBackend)
	str("SQLITE_DB_PATH", &c.SQLiteDBPath)
	str("POSTGRES_DSN", &c.PostgresDSN)
	str("SEED_FILE", &c.SeedFile)
	str("AMQP_URL", &c.AMQPURL)
	str("CHAT_API_KEY", &c.ChatAPIKey)
	str("CHAT_API_URL", &c.ChatAPIURL)
	str("CHAT_MODEL", &c.ChatModel)
	str("LOCAL_MODEL_URL", &c.LocalModelURL)
	str("LOCAL_MODEL_NAME", &c.LocalModelName)
	str("CHAT_RESPONSES_FILE", &c.ChatResponsesFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	if v := strings.TrimSpace(lookup("CHAT_MODE")); v != "" {
		c.ChatMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(lookup("CHAT_SEED")); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ChatSeed = &seed
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64Ptr(key string) *int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return &i
		}
	}
	return nil
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
