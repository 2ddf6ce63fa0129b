package executors

import (
	"context"
	"log/slog"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// AgentExecutor composes a prompt from the node's template and inputs and
// invokes the agent capability under a bounded timeout independent of any
// caller-level deadline. Streaming backends surface as one synchronous
// payload; the engine contract is request/response per node.
type AgentExecutor struct {
	client         ports.AgentClient
	defaultTimeout time.Duration
	logger         *slog.Logger
}

func NewAgentExecutor(client ports.AgentClient, defaultTimeout time.Duration, logger *slog.Logger) *AgentExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultTimeout <= 0 {
		defaultTimeout = domain.DefaultAgentTimeout
	}
	return &AgentExecutor{
		client:         client,
		defaultTimeout: defaultTimeout,
		logger:         logger.With("component", "agent-executor"),
	}
}

func (ae *AgentExecutor) Type() domain.NodeType {
	return domain.NodeTypeAgent
}

func (ae *AgentExecutor) Execute(ctx context.Context, node *domain.WorkflowNode, execCtx *domain.ExecutionContext, inputs map[string]interface{}) (interface{}, error) {
	if ae.client == nil {
		return nil, domain.NewUpstreamError("agent", "agent capability not configured")
	}

	agentID, _ := stringConfig(node, "agentId")
	if agentID == "" {
		agentID, _ = stringConfig(node, "agent")
	}
	if agentID == "" {
		return nil, domain.NewValidationError("agentId", "agent node requires an agentId")
	}

	promptTemplate, _ := stringConfig(node, "prompt")
	prompt, err := interpolate(promptTemplate, inputs)
	if err != nil {
		return nil, err
	}

	req := ports.CompletionRequest{
		AgentID: agentID,
		Prompt:  prompt,
	}
	if temperature, ok := node.Config["temperature"].(float64); ok {
		req.Temperature = &temperature
	}
	if maxTokens, ok := numberConfig(node, "maxTokens"); ok {
		req.MaxTokens = int(maxTokens)
	}

	timeout := ae.defaultTimeout
	if ms, ok := numberConfig(node, "timeoutMs"); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	resp, err := ae.client.Complete(callCtx, req)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, domain.NewTimeoutError("agent call", timeout.String())
		}
		return nil, err
	}

	ae.logger.Debug("agent call completed",
		"execution_id", execCtx.ExecutionID,
		"node_id", node.ID,
		"agent_id", agentID,
		"model", resp.Model,
		"duration", time.Since(started),
	)

	return map[string]interface{}{
		"response": resp.Content,
		"model":    resp.Model,
		"usage": map[string]interface{}{
			"promptTokens":     resp.Usage.PromptTokens,
			"completionTokens": resp.Usage.CompletionTokens,
		},
	}, nil
}

func stringConfig(node *domain.WorkflowNode, key string) (string, bool) {
	if node.Config == nil {
		return "", false
	}
	value, ok := node.Config[key].(string)
	return value, ok
}

func numberConfig(node *domain.WorkflowNode, key string) (float64, bool) {
	if node.Config == nil {
		return 0, false
	}
	switch v := node.Config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
