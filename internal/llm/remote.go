package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"foodwaste/internal/cache"
	"foodwaste/internal/core"

	"golang.org/x/sync/singleflight"
)

// RemoteClient calls an OpenAI-compatible chat completions endpoint.
// Identical concurrent questions share one request and answers are cached.
type RemoteClient struct {
	httpClient  *http.Client
	apiKey      string
	url         string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration

	group   singleflight.Group
	answers *cache.LRUCache[string]
}

var _ ChatClient = (*RemoteClient)(nil)

// NewRemoteClient validates cfg and applies defaults. A missing API key is a
// configuration error.
func NewRemoteClient(cfg Config) (*RemoteClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &core.ConfigurationError{Setting: "CHAT_API_KEY", Reason: "remote chat API key is required"}
	}

	c := &RemoteClient{
		apiKey:      cfg.APIKey,
		url:         cfg.URL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	if c.url == "" {
		c.url = DefaultAPIURL
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.temperature == 0 {
		c.temperature = DefaultTemperature
	}
	if c.maxTokens == 0 {
		c.maxTokens = DefaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if cfg.CacheTTL > 0 {
		size := cfg.CacheSize
		if size <= 0 {
			size = 256
		}
		c.answers = cache.NewLRUCache[string](size, cfg.CacheTTL)
	}
	return c, nil
}

// Cache exposes the answer cache for registration with a cache.Manager. It
// is nil when caching is disabled.
func (c *RemoteClient) Cache() *cache.LRUCache[string] {
	return c.answers
}

// Chat sends the conversation, bounded by the client timeout.
func (c *RemoteClient) Chat(ctx context.Context, system, user string) (string, error) {
	key := system + "\x00" + user
	if c.answers != nil {
		if answer, ok := c.answers.Get(key); ok {
			slog.DebugContext(ctx, "Remote answer served from cache")
			return answer, nil
		}
	}

	// Shared by every caller of key, detached from any one of them. do
	// applies the client timeout.
	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.do(context.WithoutCancel(ctx), system, user)
	})
	if err != nil {
		return "", err
	}
	answer := v.(string)
	if shared {
		slog.DebugContext(ctx, "Remote answer shared with concurrent caller")
	}
	if c.answers != nil {
		c.answers.Set(key, answer)
	}
	return answer, nil
}

func (c *RemoteClient) do(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	answer := strings.TrimSpace(response.Choices[0].Message.Content)
	if answer == "" {
		return "", fmt.Errorf("empty completion returned")
	}
	return answer, nil
}

// chatResponse is the subset of the chat completions response we read.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
