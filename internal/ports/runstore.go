package ports

import (
	"context"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
)

type RunRecord struct {
	ExecutionID string           `json:"execution_id"`
	Status      domain.RunStatus `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	NodeCount   int              `json:"node_count"`
	FailedNode  string           `json:"failed_node,omitempty"`
	Error       string           `json:"error,omitempty"`
}

type NodeRecord struct {
	ExecutionID string            `json:"execution_id"`
	Seq         int               `json:"seq"`
	NodeID      string            `json:"node_id"`
	Output      domain.NodeOutput `json:"output"`
}

// RunStore is the external run-history sink. The engine works without one;
// when attached it receives each node output as it is recorded and the run
// summary at termination.
type RunStore interface {
	SaveRun(ctx context.Context, record RunRecord) error
	AppendNodeOutput(ctx context.Context, record NodeRecord) error
	GetRun(ctx context.Context, executionID string) (*RunRecord, []NodeRecord, error)
	Close() error
}
