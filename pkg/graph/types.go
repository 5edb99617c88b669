package graph

import (
	"encoding/json"
	"slices"
)

// =============================================================================
// Handles
// =============================================================================

// Handle tags. An edge is well-formed only when it leaves its source through
// HandleOutgoing and enters its target through HandleIncoming.
const (
	HandleOutgoing = "right"
	HandleIncoming = "left"
)

// =============================================================================
// Graph
// =============================================================================

// Graph is an ordered snapshot of pipeline nodes and edges.
//
// Order matters only for output: layout results map over Nodes in order.
// Validation treats both sequences as sets keyed by ID.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy of g. The copy never aliases g's slices, and nil
// sequences become empty ones so the JSON form is always "[]".
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// Node returns the node with the given ID and true, or the zero Node and false.
func (g Graph) Node(id string) (Node, bool) {
	i := g.NodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// NodeIndex returns the position of the node with the given ID, or -1.
func (g Graph) NodeIndex(id string) int {
	return slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
}

// EdgeIndex returns the position of the edge with the given ID, or -1.
func (g Graph) EdgeIndex(id string) int {
	return slices.IndexFunc(g.Edges, func(e Edge) bool { return e.ID == id })
}

// NodeIDs returns node IDs in sequence order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// =============================================================================
// Node
// =============================================================================

// Position is a 2D coordinate in layout units. For laid-out nodes it is the
// top-left corner of the node's bounding box, with y growing downward.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a single pipeline step.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label,omitempty" yaml:"label,omitempty"`
	Type     NodeType `json:"type,omitempty" yaml:"type,omitempty"`
	Position Position `json:"position" yaml:"position"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// nodeData is the nested payload used by diagram editors.
type nodeData struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// UnmarshalJSON accepts both the flat form and the editor form in which label
// and type live under "data". A flat label wins over data.label. A flat type
// wins only when it is a known node type; editors put their component name
// ("customNode") there.
func (n *Node) UnmarshalJSON(b []byte) error {
	type plain Node
	var aux struct {
		plain
		Data *nodeData `json:"data,omitempty"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*n = Node(aux.plain)
	if aux.Data != nil {
		if n.Label == "" {
			n.Label = aux.Data.Label
		}
		if !n.Type.Known() && aux.Data.Type != "" {
			n.Type = NodeType(aux.Data.Type)
		}
	}
	return nil
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed connection from Source to Target. SourceHandle and
// TargetHandle name the ports the edge is attached to.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// HasCanonicalHandles reports whether the edge is attached outgoing→incoming.
// A missing handle on either end is not canonical.
func (e Edge) HasCanonicalHandles() bool {
	if e.SourceHandle == "" || e.TargetHandle == "" {
		return false
	}
	return e.SourceHandle == HandleOutgoing && e.TargetHandle == HandleIncoming
}

// Touches reports whether the node with the given ID is an endpoint of e.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }
