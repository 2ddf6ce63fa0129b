package agenthttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

const defaultRequestTimeout = 90 * time.Second

// maxResponseBytes caps how much of an agent response is read; a
// misbehaving backend must not balloon a run's memory.
const maxResponseBytes = 4 << 20

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// Adapter is the HTTP implementation of the agent capability port. It
// posts one completion request per call and returns the full response;
// server-side streaming is collected by the backend before responding.
type Adapter struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

func New(config Config, logger *slog.Logger) (*Adapter, error) {
	if config.BaseURL == "" {
		return nil, domain.NewConfigError("agent_http", fmt.Errorf("base URL is required"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := config.Client
	if client == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Adapter{
		config: config,
		client: client,
		logger: logger.With("component", "agent-http"),
	}, nil
}

func (a *Adapter) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	body, err := xjson.Marshal(req)
	if err != nil {
		return nil, domain.NewInternalError("failed to encode completion request", err)
	}

	url := strings.TrimSuffix(a.config.BaseURL, "/") + "/v1/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewInternalError("failed to build completion request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	started := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, domain.NewUpstreamError("agent", fmt.Sprintf("agent service unreachable: %v", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewUpstreamError("agent", fmt.Sprintf("failed to read agent response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError("agent",
			fmt.Sprintf("agent service returned %d (%s)", resp.StatusCode, statusClass(resp.StatusCode)))
	}

	var completion ports.CompletionResponse
	if err := xjson.Unmarshal(payload, &completion); err != nil {
		return nil, domain.NewUpstreamError("agent", fmt.Sprintf("malformed agent response: %v", err))
	}

	a.logger.Debug("completion received",
		"agent_id", req.AgentID,
		"model", completion.Model,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
		"duration", time.Since(started),
	)

	return &completion, nil
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "server error"
	case code >= 400:
		return "client error"
	case code >= 300:
		return "redirect"
	default:
		return "unexpected"
	}
}
