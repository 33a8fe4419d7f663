package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"foodwaste/internal/core"
)

const (
	defaultLocalURL     = "http://localhost:11434"
	defaultLocalModel   = "gpt2"
	defaultLocalTimeout = 20 * time.Second
	defaultProbeRetry   = 30 * time.Second
	localMaxTokens      = 100
)

// LocalConfig configures the local model server client.
type LocalConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
	// ProbeRetry is the wait after a failed probe before the next one.
	ProbeRetry time.Duration
}

// LocalModel generates text with a model served by a local Ollama-style
// server. The server and model are probed on first use. A successful probe
// holds for the life of the process; a failed one is retried once
// ProbeRetry has passed.
type LocalModel struct {
	httpClient *http.Client
	url        string
	model      string
	timeout    time.Duration
	retry      time.Duration
	now        func() time.Time

	mu          sync.Mutex
	ready       bool
	lastFailure time.Time
	probes      int
}

var _ Generator = (*LocalModel)(nil)

func NewLocalModel(cfg LocalConfig) *LocalModel {
	m := &LocalModel{
		url:        strings.TrimRight(cfg.URL, "/"),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		retry:      cfg.ProbeRetry,
		now:        time.Now,
		httpClient: &http.Client{},
	}
	if m.url == "" {
		m.url = defaultLocalURL
	}
	if m.model == "" {
		m.model = defaultLocalModel
	}
	if m.timeout <= 0 {
		m.timeout = defaultLocalTimeout
	}
	if m.retry <= 0 {
		m.retry = defaultProbeRetry
	}
	return m
}

// ensureReady probes the server unless an earlier probe succeeded or the
// last failure is more recent than the retry interval. Concurrent callers
// wait for a single probe.
func (m *LocalModel) ensureReady(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ready {
		return nil
	}
	if !m.lastFailure.IsZero() && m.now().Sub(m.lastFailure) < m.retry {
		return core.ErrCollaboratorUnavailable
	}

	m.probes++
	if err := m.probe(context.WithoutCancel(ctx)); err != nil {
		m.lastFailure = m.now()
		slog.WarnContext(ctx, "Local model unavailable", "model", m.model, "url", m.url,
			"retry_in", m.retry, "error", err)
		return core.ErrCollaboratorUnavailable
	}
	m.ready = true
	slog.InfoContext(ctx, "Local model ready", "model", m.model, "url", m.url)
	return nil
}

// Generate returns the model's continuation of prompt.
func (m *LocalModel) Generate(ctx context.Context, prompt string) (string, error) {
	if err := m.ensureReady(ctx); err != nil {
		return "", fmt.Errorf("local model %s: %w", m.model, err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"model":  m.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": DefaultTemperature,
			"num_predict": localMaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("local model error (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return out.Response, nil
}

// probe checks that the server answers and lists the configured model.
func (m *LocalModel) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode model list: %w", err)
	}
	for _, t := range tags.Models {
		if t.Name == m.model || strings.HasPrefix(t.Name, m.model+":") {
			return nil
		}
	}
	return errors.New("model not installed on server")
}
