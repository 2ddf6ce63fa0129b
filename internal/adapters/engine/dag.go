package engine

import (
	"fmt"

	"github.com/Flowentxo/agentwebapp-sub017/internal/domain"
	"github.com/heimdalr/dag"
)

// graphPlan is the validated, indexed form of a graph definition the run
// loop walks. Built once per run before any node executes; every
// structural problem surfaces here as a config error.
type graphPlan struct {
	nodes    map[string]*domain.WorkflowNode
	parents  map[string][]domain.Edge
	children map[string][]domain.Edge
	roots    []string
	outputs  []string
}

func buildPlan(def *domain.GraphDefinition) (*graphPlan, error) {
	if def == nil || len(def.Nodes) == 0 {
		return nil, domain.NewConfigError("graph", fmt.Errorf("graph has no nodes"))
	}

	plan := &graphPlan{
		nodes:    make(map[string]*domain.WorkflowNode, len(def.Nodes)),
		parents:  make(map[string][]domain.Edge),
		children: make(map[string][]domain.Edge),
	}

	workflowDAG := dag.NewDAG()

	for i := range def.Nodes {
		node := &def.Nodes[i]
		if node.ID == "" {
			return nil, domain.NewConfigError("graph", fmt.Errorf("node at index %d has no id", i))
		}
		if !node.Type.Valid() {
			return nil, domain.NewConfigError("graph", fmt.Errorf("node %s has unknown type %q", node.ID, node.Type))
		}
		if _, exists := plan.nodes[node.ID]; exists {
			return nil, domain.NewConfigError("graph", fmt.Errorf("duplicate node id %s", node.ID))
		}
		plan.nodes[node.ID] = node

		if err := workflowDAG.AddVertexByID(node.ID, node); err != nil {
			return nil, domain.NewConfigError("graph", fmt.Errorf("failed to add node %s: %w", node.ID, err))
		}
	}

	for _, edge := range def.Edges {
		from, exists := plan.nodes[edge.From]
		if !exists {
			return nil, domain.NewConfigError("graph", fmt.Errorf("edge references unknown node %s", edge.From))
		}
		if _, exists := plan.nodes[edge.To]; !exists {
			return nil, domain.NewConfigError("graph", fmt.Errorf("edge references unknown node %s", edge.To))
		}

		if edge.Branch != "" {
			if from.Type != domain.NodeTypeCondition {
				return nil, domain.NewConfigError("graph", fmt.Errorf("edge %s -> %s carries branch %q but %s is not a condition node", edge.From, edge.To, edge.Branch, edge.From))
			}
			if edge.Branch != "true" && edge.Branch != "false" {
				return nil, domain.NewConfigError("graph", fmt.Errorf("edge %s -> %s has invalid branch %q", edge.From, edge.To, edge.Branch))
			}
		}

		if err := workflowDAG.AddEdge(edge.From, edge.To); err != nil {
			if _, ok := err.(dag.EdgeLoopError); ok {
				return nil, domain.NewConfigError("graph", fmt.Errorf("edge %s -> %s would create a cycle", edge.From, edge.To))
			}
			if _, ok := err.(dag.EdgeDuplicateError); ok {
				return nil, domain.NewConfigError("graph", fmt.Errorf("duplicate edge %s -> %s", edge.From, edge.To))
			}
			return nil, domain.NewConfigError("graph", fmt.Errorf("failed to add edge %s -> %s: %w", edge.From, edge.To, err))
		}

		plan.parents[edge.To] = append(plan.parents[edge.To], edge)
		plan.children[edge.From] = append(plan.children[edge.From], edge)
	}

	for i := range def.Nodes {
		node := &def.Nodes[i]
		isRoot := len(plan.parents[node.ID]) == 0

		if isRoot && node.Type != domain.NodeTypeWebhook {
			return nil, domain.NewConfigError("graph", fmt.Errorf("node %s has no upstream dependencies but is not a webhook trigger", node.ID))
		}
		if !isRoot && node.Type == domain.NodeTypeWebhook {
			return nil, domain.NewConfigError("graph", fmt.Errorf("webhook node %s cannot have upstream dependencies", node.ID))
		}

		if isRoot {
			plan.roots = append(plan.roots, node.ID)
		}
		if node.Type == domain.NodeTypeOutput {
			plan.outputs = append(plan.outputs, node.ID)
		}
	}

	if len(plan.outputs) == 0 {
		return nil, domain.NewConfigError("graph", fmt.Errorf("graph has no output node"))
	}

	return plan, nil
}
