package flow

import (
	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/Flowentxo/agentwebapp-sub017/internal/ports"
)

// Config holds the engine-level knobs; zero values take defaults.
type Config = domain.Config

// GraphDefinition is the loaded node list + edge list for one workflow.
type GraphDefinition = domain.GraphDefinition

// WorkflowNode is one typed unit of work in the graph.
type WorkflowNode = domain.WorkflowNode

// Edge connects two nodes; condition-node edges may carry a branch label.
type Edge = domain.Edge

// NodeType discriminates the five executor kinds.
type NodeType = domain.NodeType

const (
	NodeTypeWebhook   = domain.NodeTypeWebhook
	NodeTypeAgent     = domain.NodeTypeAgent
	NodeTypeAction    = domain.NodeTypeAction
	NodeTypeCondition = domain.NodeTypeCondition
	NodeTypeOutput    = domain.NodeTypeOutput
)

// NodeOutput is the uniform success/data/error/duration/timestamp envelope
// every executor produces.
type NodeOutput = domain.NodeOutput

// ExecutionContext carries the accumulated node outputs of one run.
type ExecutionContext = domain.ExecutionContext

// RunResult is the aggregate of one graph traversal.
type RunResult = domain.RunResult

// RunStatus is the run state machine: pending, running, succeeded, failed.
type RunStatus = domain.RunStatus

const (
	RunStatusPending   = domain.RunStatusPending
	RunStatusRunning   = domain.RunStatusRunning
	RunStatusSucceeded = domain.RunStatusSucceeded
	RunStatusFailed    = domain.RunStatusFailed
)

// ExecutedNode is one node's slot in a run result.
type ExecutedNode = domain.ExecutedNode

// AgentClient invokes the external agent capability.
type AgentClient = ports.AgentClient

// CompletionRequest/CompletionResponse are the agent capability wire types.
type CompletionRequest = ports.CompletionRequest
type CompletionResponse = ports.CompletionResponse
type TokenUsage = ports.TokenUsage

// ActionRegistry is the catalog and invocation surface for registered
// actions.
type ActionRegistry = ports.ActionRegistry

// ActionTemplate describes one registered action.
type ActionTemplate = ports.ActionTemplate

// RunStore is the external run-history sink.
type RunStore = ports.RunStore

// RunRecord and NodeRecord are the persisted run-history shapes.
type RunRecord = ports.RunRecord
type NodeRecord = ports.NodeRecord
