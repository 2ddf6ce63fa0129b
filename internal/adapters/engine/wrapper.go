package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// executionWrapper is the single place node failures are converted into the
// NodeOutput envelope. It owns the try/measure/format discipline so no
// executor reimplements it: capture start on entry, recover panics, apply
// the node-level timeout, and measure duration on every return path.
type executionWrapper struct {
	logger      *slog.Logger
	nodeTimeout time.Duration
}

func newExecutionWrapper(logger *slog.Logger, nodeTimeout time.Duration) *executionWrapper {
	return &executionWrapper{
		logger:      logger.With("component", "execution-wrapper"),
		nodeTimeout: nodeTimeout,
	}
}

func (w *executionWrapper) run(
	ctx context.Context,
	executor ports.NodeExecutor,
	node *domain.WorkflowNode,
	execCtx *domain.ExecutionContext,
	inputs map[string]interface{},
) (output domain.NodeOutput) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("node execution panicked",
				"execution_id", execCtx.ExecutionID,
				"node_id", node.ID,
				"panic_value", r,
				"stack_trace", string(debug.Stack()),
			)
			output = domain.FailedOutput(
				domain.NewInternalError(fmt.Sprintf("node %s panicked: %v", node.ID, r), nil),
				started,
			)
		}
	}()

	timeout := w.nodeTimeout
	if ms, ok := nodeTimeoutOverride(node); ok {
		timeout = ms
	}

	nodeCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		nodeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	data, err := executor.Execute(nodeCtx, node, execCtx, inputs)
	if err != nil {
		err = w.classify(ctx, nodeCtx, node, err, timeout)
		w.logger.Debug("node execution failed",
			"execution_id", execCtx.ExecutionID,
			"node_id", node.ID,
			"node_type", node.Type,
			"error_type", domain.TypeOf(err),
			"error", err.Error(),
			"duration", time.Since(started),
		)
		return domain.FailedOutput(err, started)
	}

	out := domain.SucceededOutput(data, started)
	w.logger.Debug("node execution completed",
		"execution_id", execCtx.ExecutionID,
		"node_id", node.ID,
		"node_type", node.Type,
		"duration", out.Duration,
	)
	return out
}

// classify maps context-driven failures onto the timeout/cancelled classes
// so callers can distinguish them from ordinary upstream errors.
func (w *executionWrapper) classify(parent, nodeCtx context.Context, node *domain.WorkflowNode, err error, timeout time.Duration) error {
	var de domain.Error
	if errors.As(err, &de) && de.Type != domain.ErrorTypeInternal {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(nodeCtx.Err(), context.DeadlineExceeded) {
		if parent.Err() == nil {
			return domain.NewTimeoutError(fmt.Sprintf("node %s", node.ID), timeout.String())
		}
	}
	if errors.Is(err, context.Canceled) || parent.Err() != nil {
		return domain.Error{
			Type:    domain.ErrorTypeCancelled,
			Message: fmt.Sprintf("node %s cancelled: %v", node.ID, err),
			Details: map[string]interface{}{"node_id": node.ID},
		}
	}
	return err
}

func nodeTimeoutOverride(node *domain.WorkflowNode) (time.Duration, bool) {
	if node.Config == nil {
		return 0, false
	}
	switch v := node.Config["timeoutMs"].(type) {
	case float64:
		if v > 0 {
			return time.Duration(v) * time.Millisecond, true
		}
	case int:
		if v > 0 {
			return time.Duration(v) * time.Millisecond, true
		}
	}
	return 0, false
}
