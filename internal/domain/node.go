package domain

import (
	"fmt"

	"github.com/Flowentxo/agentwebapp-sub017/internal/xjson"
)

type NodeType string

const (
	NodeTypeWebhook   NodeType = "webhook"
	NodeTypeAgent     NodeType = "agent"
	NodeTypeAction    NodeType = "action"
	NodeTypeCondition NodeType = "condition"
	NodeTypeOutput    NodeType = "output"
)

func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeWebhook, NodeTypeAgent, NodeTypeAction, NodeTypeCondition, NodeTypeOutput:
		return true
	}
	return false
}

// WorkflowNode is one unit of work in the graph. Config is a free-form bag
// interpreted only by the executor matching Type; it is never mutated after
// the graph is loaded for a run.
type WorkflowNode struct {
	ID     string                 `json:"id"`
	Type   NodeType               `json:"type"`
	Config map[string]interface{} `json:"config"`
}

// OutputKey is the name under which this node's data appears in downstream
// inputs. Defaults to the node id.
func (n *WorkflowNode) OutputKey() string {
	if n.Config != nil {
		if key, ok := n.Config["outputKey"].(string); ok && key != "" {
			return key
		}
	}
	return n.ID
}

// FlattenInputs reports whether map-valued upstream payloads should be
// deep-merged into the root of this node's inputs.
func (n *WorkflowNode) FlattenInputs() bool {
	if n.Config == nil {
		return false
	}
	flatten, ok := n.Config["flattenInputs"].(bool)
	return ok && flatten
}

// Edge connects From to To. Branch is meaningful only when From is a
// condition node: "true" or "false" selects the branch the edge belongs to.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Branch string `json:"branch,omitempty"`
}

type GraphDefinition struct {
	Nodes []WorkflowNode `json:"nodes"`
	Edges []Edge         `json:"edges"`
}

// wireNode matches the definition store's node shape, which nests the
// config bag under data.config.
type wireNode struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	Data struct {
		Config map[string]interface{} `json:"config"`
	} `json:"data"`
	Config map[string]interface{} `json:"config"`
}

type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	Edges []Edge     `json:"edges"`
}

// ParseGraphDefinition decodes a graph from its wire form. Node config may
// appear either nested under data.config or flat under config.
func ParseGraphDefinition(raw []byte) (*GraphDefinition, error) {
	var wire wireGraph
	if err := xjson.Unmarshal(raw, &wire); err != nil {
		return nil, NewConfigError("graph", fmt.Errorf("malformed graph definition: %w", err))
	}

	def := &GraphDefinition{
		Nodes: make([]WorkflowNode, 0, len(wire.Nodes)),
		Edges: wire.Edges,
	}
	for _, n := range wire.Nodes {
		config := n.Data.Config
		if config == nil {
			config = n.Config
		}
		def.Nodes = append(def.Nodes, WorkflowNode{
			ID:     n.ID,
			Type:   n.Type,
			Config: config,
		})
	}
	return def, nil
}

// Node returns the node with the given id, or nil.
func (g *GraphDefinition) Node(id string) *WorkflowNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}
