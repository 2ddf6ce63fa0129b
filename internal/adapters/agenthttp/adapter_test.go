package agenthttp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, discardLogger())
	require.Error(t, err)
	assert.True(t, domain.IsConfig(err))
}

func TestComplete(t *testing.T) {
	var captured ports.CompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, xjson.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content": "three findings", "model": "scribe-1", "usage": {"prompt_tokens": 9, "completion_tokens": 4}}`))
	}))
	defer server.Close()

	adapter, err := New(Config{BaseURL: server.URL, APIKey: "secret-key"}, discardLogger())
	require.NoError(t, err)

	resp, err := adapter.Complete(context.Background(), ports.CompletionRequest{
		AgentID: "scribe",
		Prompt:  "Summarize churn",
	})
	require.NoError(t, err)

	assert.Equal(t, "scribe", captured.AgentID)
	assert.Equal(t, "Summarize churn", captured.Prompt)
	assert.Equal(t, "three findings", resp.Content)
	assert.Equal(t, "scribe-1", resp.Model)
	assert.Equal(t, 9, resp.Usage.PromptTokens)
	assert.Equal(t, 4, resp.Usage.CompletionTokens)
}

func TestComplete_TrailingSlashBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/completions", r.URL.Path)
		w.Write([]byte(`{"content": "ok"}`))
	}))
	defer server.Close()

	adapter, err := New(Config{BaseURL: server.URL + "/"}, discardLogger())
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), ports.CompletionRequest{AgentID: "a", Prompt: "p"})
	require.NoError(t, err)
}

func TestComplete_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{name: "server error", status: 503, body: "overloaded", contains: "503 (server error)"},
		{name: "client error", status: 401, body: "bad key", contains: "401 (client error)"},
		{name: "malformed body", status: 200, body: "not json", contains: "malformed agent response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			adapter, err := New(Config{BaseURL: server.URL}, discardLogger())
			require.NoError(t, err)

			_, err = adapter.Complete(context.Background(), ports.CompletionRequest{AgentID: "a", Prompt: "p"})
			require.Error(t, err)
			assert.True(t, domain.IsUpstream(err), "expected upstream error, got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestComplete_ErrorBodyIsNotEchoed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte("internal token leaked-credential-abc123"))
	}))
	defer server.Close()

	adapter, err := New(Config{BaseURL: server.URL}, discardLogger())
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), ports.CompletionRequest{AgentID: "a", Prompt: "p"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "leaked-credential-abc123")
}

func TestComplete_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	adapter, err := New(Config{BaseURL: server.URL}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = adapter.Complete(ctx, ports.CompletionRequest{AgentID: "a", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "context errors pass through unclassified")
}

func TestComplete_Unreachable(t *testing.T) {
	adapter, err := New(Config{
		BaseURL: "http://127.0.0.1:1",
		Client:  &http.Client{Timeout: 200 * time.Millisecond},
	}, discardLogger())
	require.NoError(t, err)

	_, err = adapter.Complete(context.Background(), ports.CompletionRequest{AgentID: "a", Prompt: "p"})
	require.Error(t, err)
	assert.True(t, domain.IsUpstream(err))
	assert.Contains(t, err.Error(), "unreachable")
}
