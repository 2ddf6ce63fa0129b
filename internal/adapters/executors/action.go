package executors

import (
	"context"
	"log/slog"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// ActionExecutor resolves a registered action's payload/header templates
// against the node's inputs and params, then performs the single external
// call. Template failures and call failures both collapse to node failure
// but stay distinguishable by error class and message.
type ActionExecutor struct {
	registry ports.ActionRegistry
	logger   *slog.Logger
}

func NewActionExecutor(registry ports.ActionRegistry, logger *slog.Logger) *ActionExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActionExecutor{
		registry: registry,
		logger:   logger.With("component", "action-executor"),
	}
}

func (ax *ActionExecutor) Type() domain.NodeType {
	return domain.NodeTypeAction
}

// GetAvailableActions exposes the registry catalog for graph authors and
// validators. Metadata only, independent of any run.
func (ax *ActionExecutor) GetAvailableActions() []ports.ActionTemplate {
	if ax.registry == nil {
		return nil
	}
	return ax.registry.GetAvailableActions()
}

func (ax *ActionExecutor) Execute(ctx context.Context, node *domain.WorkflowNode, execCtx *domain.ExecutionContext, inputs map[string]interface{}) (interface{}, error) {
	if ax.registry == nil {
		return nil, domain.NewUpstreamError("actions", "action registry not configured")
	}

	name, _ := stringConfig(node, "action")
	if name == "" {
		return nil, domain.NewValidationError("action", "action node requires an action name")
	}

	template, err := ax.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	vars := templateVars(node, inputs)

	url, err := interpolate(template.URL, vars)
	if err != nil {
		return nil, err
	}

	payload := ""
	if template.PayloadTemplate != "" {
		payload, err = interpolate(template.PayloadTemplate, vars)
		if err != nil {
			return nil, err
		}
	}

	headers := make(map[string]string, len(template.Headers))
	for key, value := range template.Headers {
		resolved, err := interpolate(value, vars)
		if err != nil {
			return nil, err
		}
		headers[key] = resolved
	}
	if extra, ok := node.Config["headers"].(map[string]interface{}); ok {
		for key, value := range extra {
			if s, ok := value.(string); ok {
				headers[key] = s
			}
		}
	}

	started := time.Now()
	result, err := ax.registry.Invoke(ctx, ports.ResolvedAction{
		Name:    name,
		Method:  template.Method,
		URL:     url,
		Headers: headers,
		Payload: []byte(payload),
	})
	if err != nil {
		return nil, err
	}

	ax.logger.Debug("action invoked",
		"execution_id", execCtx.ExecutionID,
		"node_id", node.ID,
		"action", name,
		"status", result.StatusCode,
		"duration", time.Since(started),
	)

	return map[string]interface{}{
		"action":   name,
		"status":   result.StatusCode,
		"response": result.Body,
	}, nil
}

// templateVars layers node params over the run inputs: params are
// author-supplied constants and win on key collision.
func templateVars(node *domain.WorkflowNode, inputs map[string]interface{}) map[string]interface{} {
	vars := make(map[string]interface{}, len(inputs))
	for key, value := range inputs {
		vars[key] = value
	}
	if params, ok := node.Config["params"].(map[string]interface{}); ok {
		for key, value := range params {
			vars[key] = value
		}
	}
	return vars
}
