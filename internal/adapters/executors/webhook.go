package executors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
)

// WebhookExecutor validates the inbound trigger payload against the node's
// configured schema and passes it through as the run's seed input. It is
// the only executor that runs with no upstream dependencies.
type WebhookExecutor struct {
	logger *slog.Logger
}

func NewWebhookExecutor(logger *slog.Logger) *WebhookExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookExecutor{logger: logger.With("component", "webhook-executor")}
}

func (we *WebhookExecutor) Type() domain.NodeType {
	return domain.NodeTypeWebhook
}

func (we *WebhookExecutor) Execute(ctx context.Context, node *domain.WorkflowNode, execCtx *domain.ExecutionContext, inputs map[string]interface{}) (interface{}, error) {
	payload := inputs
	if payload == nil {
		payload = map[string]interface{}{}
	}

	if err := we.validate(node, payload); err != nil {
		return nil, err
	}

	we.logger.Debug("trigger payload accepted",
		"execution_id", execCtx.ExecutionID,
		"node_id", node.ID,
		"fields", len(payload),
	)
	return payload, nil
}

func (we *WebhookExecutor) validate(node *domain.WorkflowNode, payload map[string]interface{}) error {
	if node.Config == nil {
		return nil
	}

	if required, ok := node.Config["required"].([]interface{}); ok {
		for _, entry := range required {
			field, ok := entry.(string)
			if !ok {
				return domain.NewConfigError("webhook", fmt.Errorf("required entry %v is not a field name", entry))
			}
			if _, present := payload[field]; !present {
				return domain.NewValidationError(field, fmt.Sprintf("missing required field %q in trigger payload", field))
			}
		}
	}

	schema, ok := node.Config["schema"].(map[string]interface{})
	if !ok {
		return nil
	}

	for field, expected := range schema {
		expectedType, ok := expected.(string)
		if !ok {
			return domain.NewConfigError("webhook", fmt.Errorf("schema entry %q is not a type name", field))
		}
		value, present := payload[field]
		if !present {
			continue
		}
		if !matchesType(value, expectedType) {
			return domain.NewValidationError(field,
				fmt.Sprintf("field %q has type %T, expected %s", field, value, expectedType))
		}
	}
	return nil
}

func matchesType(value interface{}, expected string) bool {
	switch expected {
	case "any":
		return true
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int32, int64:
			return true
		}
		return false
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	default:
		return true
	}
}
