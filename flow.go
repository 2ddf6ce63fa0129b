// Package flow provides the workflow execution engine behind the
// platform's pipeline builder. A workflow is a directed graph of typed
// nodes (webhook trigger, agent invocation, action, condition, output)
// executed against a shared per-run context with uniform result envelopes,
// per-node failure isolation and condition-driven branch pruning.
//
// Basic usage:
//
//	engine, err := flow.New(flow.Config{}, logger,
//	    flow.WithAgentClient(client),
//	    flow.WithActionRegistry(registry),
//	)
//
//	def, _ := flow.ParseGraphDefinition(raw)
//	result, err := engine.Run(ctx, def, map[string]interface{}{"email": "a@b.co"})
//
// Structural graph problems (cycles, unknown node types, a non-webhook
// root) are returned as errors before any node executes; node failures are
// folded into the RunResult instead.
package flow

import (
	"log/slog"

	"github.com/Flowentxo/agentwebapp-sub017/internal/adapters/actions"
	"github.com/Flowentxo/agentwebapp-sub017/internal/adapters/engine"
	"github.com/Flowentxo/agentwebapp-sub017/internal/adapters/executors"
	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// Engine runs one graph traversal per call to Run.
type Engine = engine.Engine

type options struct {
	agentClient    ports.AgentClient
	actionRegistry ports.ActionRegistry
	runStore       ports.RunStore
}

type Option func(*options)

// WithAgentClient wires the external agent capability used by agent nodes.
func WithAgentClient(client ports.AgentClient) Option {
	return func(o *options) { o.agentClient = client }
}

// WithActionRegistry wires the catalog of registered actions used by
// action nodes.
func WithActionRegistry(registry ports.ActionRegistry) Option {
	return func(o *options) { o.actionRegistry = registry }
}

// WithRunStore attaches a run-history sink. Without one the engine keeps
// no state beyond the lifetime of a traversal.
func WithRunStore(store ports.RunStore) Option {
	return func(o *options) { o.runStore = store }
}

// New assembles an engine with the standard executor set. A nil logger
// falls back to slog.Default; a missing action registry defaults to an
// empty catalog so action nodes fail with a not-found error instead of
// panicking.
func New(config Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var assembled options
	for _, opt := range opts {
		opt(&assembled)
	}
	if assembled.actionRegistry == nil {
		assembled.actionRegistry = actions.NewRegistry(nil, logger)
	}

	nodeExecutors := []ports.NodeExecutor{
		executors.NewWebhookExecutor(logger),
		executors.NewAgentExecutor(assembled.agentClient, config.AgentTimeout, logger),
		executors.NewActionExecutor(assembled.actionRegistry, logger),
		executors.NewConditionExecutor(logger),
		executors.NewOutputExecutor(logger),
	}

	return engine.New(config, logger, nodeExecutors, assembled.runStore)
}

// ParseGraphDefinition decodes a workflow graph from its wire form.
func ParseGraphDefinition(raw []byte) (*GraphDefinition, error) {
	return domain.ParseGraphDefinition(raw)
}
