package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ExecutionContext is the shared per-run state. Node outputs are
// append-only, keyed by node id, insertion order preserved; Claim is the
// single synchronization point guaranteeing a node executes at most once
// per run even under concurrent scheduling.
type ExecutionContext struct {
	ExecutionID string
	StartedAt   time.Time

	mu      sync.RWMutex
	outputs map[string]NodeOutput
	order   []string
	claimed map[string]struct{}
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		ExecutionID: uuid.New().String(),
		StartedAt:   time.Now(),
		outputs:     make(map[string]NodeOutput),
		claimed:     make(map[string]struct{}),
	}
}

// Claim reserves a node for execution. Returns false if the node was
// already claimed in this run; the caller must not execute it again.
func (ec *ExecutionContext) Claim(nodeID string) bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if _, exists := ec.claimed[nodeID]; exists {
		return false
	}
	ec.claimed[nodeID] = struct{}{}
	return true
}

// Record appends a node's output. The node must have been claimed first;
// recording the same node twice is a programming error and is ignored so
// the first result always wins.
func (ec *ExecutionContext) Record(nodeID string, output NodeOutput) bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	if _, exists := ec.outputs[nodeID]; exists {
		return false
	}
	ec.outputs[nodeID] = output
	ec.order = append(ec.order, nodeID)
	return true
}

// Output returns the recorded output for a completed node.
func (ec *ExecutionContext) Output(nodeID string) (NodeOutput, bool) {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	out, ok := ec.outputs[nodeID]
	return out, ok
}

func (ec *ExecutionContext) Completed(nodeID string) bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	_, ok := ec.outputs[nodeID]
	return ok
}

// Len reports how many nodes have completed.
func (ec *ExecutionContext) Len() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return len(ec.outputs)
}

// ExecutionOrder returns node ids in completion order.
func (ec *ExecutionContext) ExecutionOrder() []string {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	order := make([]string, len(ec.order))
	copy(order, ec.order)
	return order
}

// Elapsed reports wall-clock time since the run started.
func (ec *ExecutionContext) Elapsed() time.Duration {
	return time.Since(ec.StartedAt)
}
