package ports

import (
	"context"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
)

// NodeExecutor is the contract every node kind implements. Execute returns
// the node's data payload or an error; the engine's wrapper owns timing,
// panic recovery and conversion into the NodeOutput envelope, so executors
// never produce the envelope themselves and never let failures escape the
// engine boundary.
//
// Executors read prior results only through the execution context and must
// confine side effects to their own invocation.
type NodeExecutor interface {
	Type() domain.NodeType
	Execute(ctx context.Context, node *domain.WorkflowNode, execCtx *domain.ExecutionContext, inputs map[string]interface{}) (interface{}, error)
}
