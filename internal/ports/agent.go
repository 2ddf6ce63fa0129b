package ports

import (
	"context"
)

type CompletionRequest struct {
	AgentID     string                 `json:"agent_id"`
	Prompt      string                 `json:"prompt"`
	Temperature *float64               `json:"temperature,omitempty"`
	MaxTokens   int                    `json:"max_tokens,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type CompletionResponse struct {
	Content string     `json:"content"`
	Model   string     `json:"model,omitempty"`
	Usage   TokenUsage `json:"usage"`
}

// AgentClient invokes the external agent capability. Implementations must
// honor ctx cancellation; streaming backends collect the full response
// before returning, the engine contract is request/response per node.
type AgentClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
