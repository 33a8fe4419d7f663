package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"foodwaste/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localServer(t *testing.T, tagCalls *atomic.Int32, models []string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		tagCalls.Add(1)
		list := make([]map[string]string, 0, len(models))
		for _, m := range models {
			list = append(list, map[string]string{"name": m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": list})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, false, body["stream"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": body["prompt"].(string) + " Buy less bread.",
			"done":     true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLocalModel_Generate(t *testing.T) {
	var tagCalls atomic.Int32
	srv := localServer(t, &tagCalls, []string{"gpt2:latest"})
	m := NewLocalModel(LocalConfig{URL: srv.URL + "/", Model: "gpt2"})

	out, err := m.Generate(context.Background(), "Food waste question: bread?\nAnswer:")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy less bread.")
}

func TestLocalModel_InitializesOnce(t *testing.T) {
	var tagCalls atomic.Int32
	srv := localServer(t, &tagCalls, []string{"gpt2"})
	m := NewLocalModel(LocalConfig{URL: srv.URL, Model: "gpt2"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Generate(context.Background(), "p")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), tagCalls.Load())
	assert.Equal(t, 1, m.probes)
}

func TestLocalModel_FailedProbeRetriedAfterBackoff(t *testing.T) {
	var tagCalls atomic.Int32
	srv := localServer(t, &tagCalls, []string{"llama3"})
	m := NewLocalModel(LocalConfig{URL: srv.URL, Model: "gpt2", ProbeRetry: time.Minute})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		_, err := m.Generate(context.Background(), "p")
		assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
	}
	assert.Equal(t, int32(1), tagCalls.Load())

	now = now.Add(2 * time.Minute)
	_, err := m.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
	assert.Equal(t, int32(2), tagCalls.Load())
}

func TestLocalModel_CanceledFirstCallerDoesNotDisableModel(t *testing.T) {
	var tagCalls atomic.Int32
	srv := localServer(t, &tagCalls, []string{"gpt2"})
	m := NewLocalModel(LocalConfig{URL: srv.URL, Model: "gpt2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Generate(ctx, "p")
	assert.Error(t, err)

	out, err := m.Generate(context.Background(), "Food waste question: rice?\nAnswer:")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy less bread.")
	assert.Equal(t, int32(1), tagCalls.Load())
}

func TestLocalModel_ServerStartingLateIsPickedUp(t *testing.T) {
	var tagCalls atomic.Int32
	srv := localServer(t, &tagCalls, []string{"gpt2"})
	m := NewLocalModel(LocalConfig{URL: "http://127.0.0.1:1", Model: "gpt2", ProbeRetry: time.Second})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)

	m.url = srv.URL
	now = now.Add(2 * time.Second)
	_, err = m.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 2, m.probes)
}

func TestLocalModel_Unreachable(t *testing.T) {
	m := NewLocalModel(LocalConfig{URL: "http://127.0.0.1:1"})
	_, err := m.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, core.ErrCollaboratorUnavailable)
}
