package llm

import (
	"context"
	"time"
)

// Default request parameters for the hosted assistant.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 300
	DefaultTimeout     = 10 * time.Second
	DefaultAPIURL      = "https://api.deepseek.com/v1/chat/completions"
	DefaultModel       = "deepseek-chat"
)

// ChatClient sends a system instruction and a user message to a hosted
// chat-completion service and returns the reply text.
type ChatClient interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Generator produces a continuation for a raw prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config configures the hosted chat client.
type Config struct {
	APIKey      string
	URL         string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	CacheSize   int
	CacheTTL    time.Duration
}
