package executors

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

// OutputExecutor is the terminal sink: it collects the full inputs map and
// formats it per config.format. Unrecognized formats fall back to json
// rather than failing a run that otherwise succeeded.
type OutputExecutor struct {
	logger *slog.Logger
}

func NewOutputExecutor(logger *slog.Logger) *OutputExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &OutputExecutor{logger: logger.With("component", "output-executor")}
}

func (oe *OutputExecutor) Type() domain.NodeType {
	return domain.NodeTypeOutput
}

func (oe *OutputExecutor) Execute(ctx context.Context, node *domain.WorkflowNode, execCtx *domain.ExecutionContext, inputs map[string]interface{}) (interface{}, error) {
	format, _ := stringConfig(node, "format")

	oe.logger.Debug("formatting run output",
		"execution_id", execCtx.ExecutionID,
		"node_id", node.ID,
		"format", format,
		"inputs", len(inputs),
	)

	switch format {
	case "text":
		rendered, err := renderText(inputs)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"result": rendered}, nil
	case "summary":
		return map[string]interface{}{
			"nodeCount":     execCtx.Len(),
			"executionTime": execCtx.Elapsed().Milliseconds(),
			"lastInputs":    inputs,
		}, nil
	default:
		return map[string]interface{}{"result": inputs}, nil
	}
}

// renderText emits one "key: value" line per input entry, keys sorted,
// values JSON-rendered so strings stay quoted.
func renderText(inputs map[string]interface{}) (string, error) {
	keys := make([]string, 0, len(inputs))
	for key := range inputs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		raw, err := xjson.Marshal(inputs[key])
		if err != nil {
			return "", domain.NewInternalError(fmt.Sprintf("value for %q is not serializable", key), err)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", key, string(raw)))
	}
	return strings.Join(lines, "\n"), nil
}
