package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// Engine walks a workflow graph for one trigger at a time: it validates the
// graph, seeds the execution context, resolves each ready node's inputs
// from upstream outputs, dispatches to the executor matching the node type,
// and folds the resulting NodeOutput back into the context. Executors never
// mutate the context themselves.
type Engine struct {
	config    domain.Config
	logger    *slog.Logger
	executors map[domain.NodeType]ports.NodeExecutor
	runStore  ports.RunStore
	wrapper   *executionWrapper
}

var requiredNodeTypes = []domain.NodeType{
	domain.NodeTypeWebhook,
	domain.NodeTypeAgent,
	domain.NodeTypeAction,
	domain.NodeTypeCondition,
	domain.NodeTypeOutput,
}

// New builds an engine over a closed set of executors. Every node type must
// be covered exactly once; runStore may be nil to disable persistence.
func New(config domain.Config, logger *slog.Logger, executors []ports.NodeExecutor, runStore ports.RunStore) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	byType := make(map[domain.NodeType]ports.NodeExecutor, len(executors))
	for _, executor := range executors {
		if executor == nil {
			return nil, domain.NewConfigError("executors", fmt.Errorf("nil executor"))
		}
		if _, exists := byType[executor.Type()]; exists {
			return nil, domain.NewConfigError("executors", fmt.Errorf("duplicate executor for node type %q", executor.Type()))
		}
		byType[executor.Type()] = executor
	}
	for _, nodeType := range requiredNodeTypes {
		if _, exists := byType[nodeType]; !exists {
			return nil, domain.NewConfigError("executors", fmt.Errorf("no executor registered for node type %q", nodeType))
		}
	}

	engineLogger := logger.With("component", "engine")

	return &Engine{
		config:    config,
		logger:    engineLogger,
		executors: byType,
		runStore:  runStore,
		wrapper:   newExecutionWrapper(engineLogger, config.NodeTimeout),
	}, nil
}

// Run executes one traversal of the graph for the given trigger payload.
// Structural graph errors return before any node executes; node failures
// are folded into the result, never returned as errors.
func (e *Engine) Run(ctx context.Context, def *domain.GraphDefinition, trigger map[string]interface{}) (*domain.RunResult, error) {
	plan, err := buildPlan(def)
	if err != nil {
		return nil, err
	}

	execCtx := domain.NewExecutionContext()
	logger := e.logger.With("execution_id", execCtx.ExecutionID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	state := newRunState(plan, execCtx, trigger, cancel, e.config.MaxConcurrentNodes)

	logger.Info("run started",
		"nodes", len(plan.nodes),
		"roots", len(plan.roots),
	)
	e.persistRunStart(runCtx, execCtx)

	state.mu.Lock()
	e.scheduleLocked(runCtx, state, logger)
	state.mu.Unlock()

	state.wg.Wait()

	result := e.buildResult(ctx, state, logger)
	e.persistRunResult(result)

	logger.Info("run finished",
		"status", result.Status,
		"executed", execCtx.Len(),
		"skipped", len(state.skipped),
		"duration", result.CompletedAt.Sub(result.StartedAt),
	)

	return result, nil
}

type runState struct {
	plan    *graphPlan
	execCtx *domain.ExecutionContext
	trigger map[string]interface{}
	cancel  context.CancelFunc

	mu         sync.Mutex
	scheduled  map[string]bool
	pruned     map[string]bool
	suppressed map[string]bool
	branch     map[string]string
	skipped    []string
	seq        int
	failedNode string
	failErr    error
	halted     bool

	wg  sync.WaitGroup
	sem chan struct{}
}

func newRunState(plan *graphPlan, execCtx *domain.ExecutionContext, trigger map[string]interface{}, cancel context.CancelFunc, maxConcurrent int) *runState {
	return &runState{
		plan:       plan,
		execCtx:    execCtx,
		trigger:    trigger,
		cancel:     cancel,
		scheduled:  make(map[string]bool),
		pruned:     make(map[string]bool),
		suppressed: make(map[string]bool),
		branch:     make(map[string]string),
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// deadEdgeLocked reports whether an edge can no longer deliver data: its
// producer was pruned, its producer failed with continueOnFailure, or a
// condition node took the other branch. Caller holds s.mu.
func (s *runState) deadEdgeLocked(edge domain.Edge) bool {
	if s.pruned[edge.From] || s.suppressed[edge.From] {
		return true
	}
	if taken, decided := s.branch[edge.From]; decided && edge.Branch != "" && edge.Branch != taken {
		return true
	}
	return false
}

// readyLocked: every upstream edge is either satisfied (producer recorded)
// or dead. Roots are trivially ready.
func (s *runState) readyLocked(nodeID string) bool {
	for _, edge := range s.plan.parents[nodeID] {
		if s.deadEdgeLocked(edge) {
			continue
		}
		if !s.execCtx.Completed(edge.From) {
			return false
		}
	}
	return true
}

// scheduleLocked dispatches every unscheduled, unpruned, ready node.
// Caller holds s.mu.
func (e *Engine) scheduleLocked(ctx context.Context, s *runState, logger *slog.Logger) {
	if s.halted {
		return
	}

	for nodeID := range s.plan.nodes {
		if s.scheduled[nodeID] || s.pruned[nodeID] {
			continue
		}
		if !s.readyLocked(nodeID) {
			continue
		}
		s.scheduled[nodeID] = true
		s.wg.Add(1)
		go e.executeNode(ctx, s, nodeID, logger)
	}
}

func (e *Engine) executeNode(ctx context.Context, s *runState, nodeID string, logger *slog.Logger) {
	defer s.wg.Done()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	s.mu.Lock()
	halted := s.halted
	s.mu.Unlock()
	if halted {
		return
	}

	if !s.execCtx.Claim(nodeID) {
		logger.Debug("node already claimed, skipping", "node_id", nodeID)
		return
	}

	node := s.plan.nodes[nodeID]
	logger.Debug("executing node",
		"node_id", nodeID,
		"node_type", node.Type,
	)

	var output domain.NodeOutput
	inputs, err := e.resolveInputs(s, node)
	if err != nil {
		output = domain.FailedOutput(err, time.Now())
	} else {
		output = e.wrapper.run(ctx, e.executors[node.Type], node, s.execCtx, inputs)
	}

	e.onNodeComplete(ctx, s, node, output, logger)
}

// resolveInputs assembles the inputs map from upstream outputs: one entry
// per live producer under its output key, optionally deep-merged into the
// root for flattenInputs consumers. Webhook roots receive the trigger
// payload as their seed input.
func (e *Engine) resolveInputs(s *runState, node *domain.WorkflowNode) (map[string]interface{}, error) {
	if node.Type == domain.NodeTypeWebhook {
		return s.trigger, nil
	}

	inputs := make(map[string]interface{})
	flatten := node.FlattenInputs()

	for _, edge := range s.plan.parents[node.ID] {
		s.mu.Lock()
		dead := s.deadEdgeLocked(edge)
		s.mu.Unlock()
		if dead {
			continue
		}

		output, ok := s.execCtx.Output(edge.From)
		if !ok || !output.Success {
			continue
		}

		producer := s.plan.nodes[edge.From]
		inputs[producer.OutputKey()] = output.Data

		if flatten {
			if payload, isMap := output.Data.(map[string]interface{}); isMap {
				if err := domain.MergeInputs(inputs, payload); err != nil {
					return nil, err
				}
			}
		}
	}

	return inputs, nil
}

func (e *Engine) onNodeComplete(ctx context.Context, s *runState, node *domain.WorkflowNode, output domain.NodeOutput, logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.execCtx.Record(node.ID, output) {
		logger.Error("duplicate node output dropped", "node_id", node.ID)
		return
	}
	s.seq++
	e.persistNodeOutput(s.execCtx.ExecutionID, s.seq, node.ID, output, logger)

	if output.Success {
		if node.Type == domain.NodeTypeCondition {
			s.branch[node.ID] = takenBranch(output)
			logger.Debug("condition branch decided",
				"node_id", node.ID,
				"branch", s.branch[node.ID],
			)
		}
	} else {
		switch {
		case output.ErrorType == domain.ErrorTypeCancelled:
			s.halted = true
			return
		case continueOnFailure(node):
			logger.Debug("node failed, continuing per node policy",
				"node_id", node.ID,
				"error", output.Error,
			)
			s.suppressed[node.ID] = true
		default:
			if s.failErr == nil {
				s.failedNode = node.ID
				s.failErr = domain.Error{
					Type:    output.ErrorType,
					Message: output.Error,
					Details: map[string]interface{}{"node_id": node.ID},
				}
			}
			s.halted = true
			s.cancel()
			return
		}
	}

	e.propagatePruningLocked(s, logger)
	e.scheduleLocked(ctx, s, logger)
}

// propagatePruningLocked marks nodes whose every upstream edge is dead as
// skipped, to fixpoint: pruning a node kills its outgoing edges too.
// Caller holds s.mu.
func (e *Engine) propagatePruningLocked(s *runState, logger *slog.Logger) {
	for changed := true; changed; {
		changed = false
		for nodeID := range s.plan.nodes {
			if s.scheduled[nodeID] || s.pruned[nodeID] {
				continue
			}
			edges := s.plan.parents[nodeID]
			if len(edges) == 0 {
				continue
			}
			allDead := true
			for _, edge := range edges {
				if !s.deadEdgeLocked(edge) {
					allDead = false
					break
				}
			}
			if allDead {
				s.pruned[nodeID] = true
				s.skipped = append(s.skipped, nodeID)
				logger.Debug("node pruned", "node_id", nodeID)
				changed = true
			}
		}
	}
}

func (e *Engine) buildResult(ctx context.Context, s *runState, logger *slog.Logger) *domain.RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &domain.RunResult{
		ExecutionID: s.execCtx.ExecutionID,
		StartedAt:   s.execCtx.StartedAt,
		CompletedAt: time.Now(),
		Outputs:     make(map[string]interface{}),
	}

	for _, nodeID := range s.execCtx.ExecutionOrder() {
		output, _ := s.execCtx.Output(nodeID)
		node := s.plan.nodes[nodeID]
		result.Nodes = append(result.Nodes, domain.ExecutedNode{
			NodeID: nodeID,
			Type:   node.Type,
			Output: output,
		})
		if node.Type == domain.NodeTypeOutput && output.Success {
			result.Outputs[nodeID] = output.Data
		}
	}
	for _, nodeID := range s.skipped {
		result.Nodes = append(result.Nodes, domain.ExecutedNode{
			NodeID:  nodeID,
			Type:    s.plan.nodes[nodeID].Type,
			Skipped: true,
		})
	}

	switch {
	case s.failErr != nil:
		result.Status = domain.RunStatusFailed
		result.FailedNode = s.failedNode
		result.Err = s.failErr
	case ctx.Err() != nil:
		result.Status = domain.RunStatusFailed
		result.Err = domain.NewCancellationError(s.execCtx.ExecutionID)
	case len(result.Outputs) == 0:
		result.Status = domain.RunStatusFailed
		result.Err = domain.NewConfigError("run", fmt.Errorf("run completed without reaching an output node"))
	default:
		result.Status = domain.RunStatusSucceeded
	}

	return result
}

func (e *Engine) persistRunStart(ctx context.Context, execCtx *domain.ExecutionContext) {
	if e.runStore == nil {
		return
	}
	record := ports.RunRecord{
		ExecutionID: execCtx.ExecutionID,
		Status:      domain.RunStatusRunning,
		StartedAt:   execCtx.StartedAt,
	}
	if err := e.runStore.SaveRun(ctx, record); err != nil {
		e.logger.Warn("failed to persist run start",
			"execution_id", execCtx.ExecutionID,
			"error", err.Error(),
		)
	}
}

func (e *Engine) persistNodeOutput(executionID string, seq int, nodeID string, output domain.NodeOutput, logger *slog.Logger) {
	if e.runStore == nil {
		return
	}
	record := ports.NodeRecord{
		ExecutionID: executionID,
		Seq:         seq,
		NodeID:      nodeID,
		Output:      output,
	}
	if err := e.runStore.AppendNodeOutput(context.Background(), record); err != nil {
		logger.Warn("failed to persist node output",
			"node_id", nodeID,
			"error", err.Error(),
		)
	}
}

func (e *Engine) persistRunResult(result *domain.RunResult) {
	if e.runStore == nil {
		return
	}
	record := ports.RunRecord{
		ExecutionID: result.ExecutionID,
		Status:      result.Status,
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
		NodeCount:   len(result.Nodes),
		FailedNode:  result.FailedNode,
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}
	if err := e.runStore.SaveRun(context.Background(), record); err != nil {
		e.logger.Warn("failed to persist run result",
			"execution_id", result.ExecutionID,
			"error", err.Error(),
		)
	}
}

func takenBranch(output domain.NodeOutput) string {
	if data, ok := output.Data.(map[string]interface{}); ok {
		if branch, ok := data["branch"].(string); ok {
			return branch
		}
		if result, ok := data["result"].(bool); ok {
			if result {
				return "true"
			}
			return "false"
		}
	}
	return "true"
}

func continueOnFailure(node *domain.WorkflowNode) bool {
	if node.Config == nil {
		return false
	}
	cont, ok := node.Config["continueOnFailure"].(bool)
	return ok && cont
}
