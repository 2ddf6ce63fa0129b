package domain

import (
	"time"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// ExecutedNode is one node's slot in the run result: either a recorded
// output or a skipped marker for nodes pruned off an untaken branch.
type ExecutedNode struct {
	NodeID  string     `json:"node_id"`
	Type    NodeType   `json:"type"`
	Output  NodeOutput `json:"output"`
	Skipped bool       `json:"skipped,omitempty"`
}

// RunResult is the aggregate of one graph traversal. Outputs maps each
// executed output node's id to its formatted data; Err is the terminal
// error for failed runs (failed node's message, or a run-level
// cancellation or config error).
type RunResult struct {
	ExecutionID string                 `json:"execution_id"`
	Status      RunStatus              `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	Nodes       []ExecutedNode         `json:"nodes"`
	Outputs     map[string]interface{} `json:"outputs"`
	FailedNode  string                 `json:"failed_node,omitempty"`
	Err         error                  `json:"-"`
}
