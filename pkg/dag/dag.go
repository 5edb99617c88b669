package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] for an empty ID.
	ErrInvalidNodeID = errors.New("dag: empty node ID")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when the ID is taken.
	ErrDuplicateNodeID = errors.New("dag: node ID already in use")

	// ErrUnknownSourceNode and ErrUnknownTargetNode are returned by
	// [DAG.AddEdge] when an endpoint has not been added.
	ErrUnknownSourceNode = errors.New("dag: edge source not in graph")
	ErrUnknownTargetNode = errors.New("dag: edge target not in graph")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] for an edge that
	// does not go from a row to the one directly below it.
	ErrNonConsecutiveRows = errors.New("dag: edge skips or climbs rows")

	// ErrGraphHasCycle is returned by [DAG.DetectCycles] and [DAG.Validate].
	ErrGraphHasCycle = errors.New("dag: graph contains a cycle")
)

// NodeKind tells pipeline steps apart from nodes added during layout.
type NodeKind int

const (
	NodeKindRegular NodeKind = iota
	// NodeKindSubdivider marks a placeholder on an edge that spans rows.
	NodeKindSubdivider
)

// Node is a pipeline step, or a subdivider, placed in a row.
type Node struct {
	ID   string
	Row  int
	Kind NodeKind
}

// IsSubdivider reports whether n was created by subdivision.
func (n Node) IsSubdivider() bool { return n.Kind == NodeKindSubdivider }

// Edge points from an upstream step to a downstream one.
type Edge struct {
	From string
	To   string
}

// DAG is a directed graph of pipeline steps arranged in rows.
//
// It accepts cycles, self-loops and parallel edges; the validator needs to
// see them and the transform package removes them before layering. Every
// method that returns several nodes returns them in insertion order.
//
// Use [New] to create one. A DAG must not be shared between goroutines.
type DAG struct {
	byID  map[string]*Node
	order []string
	edges []Edge
	out   map[string][]string
	in    map[string][]string
	rows  map[int][]*Node
}

// New returns an empty graph.
func New() *DAG {
	return &DAG{
		byID: map[string]*Node{},
		out:  map[string][]string{},
		in:   map[string][]string{},
		rows: map[int][]*Node{},
	}
}

// AddNode inserts a copy of n.
func (d *DAG) AddNode(n Node) error {
	switch {
	case n.ID == "":
		return ErrInvalidNodeID
	case d.byID[n.ID] != nil:
		return ErrDuplicateNodeID
	}
	stored := n
	d.byID[n.ID] = &stored
	d.order = append(d.order, n.ID)
	d.rows[n.Row] = append(d.rows[n.Row], &stored)
	return nil
}

// SetRows moves the listed nodes to new rows. Nodes missing from rows stay
// where they are.
func (d *DAG) SetRows(rows map[string]int) {
	clear(d.rows)
	for _, n := range d.Nodes() {
		if r, ok := rows[n.ID]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// AddEdge connects two existing nodes. Self-loops and parallel edges are
// kept.
func (d *DAG) AddEdge(e Edge) error {
	if d.byID[e.From] == nil {
		return ErrUnknownSourceNode
	}
	if d.byID[e.To] == nil {
		return ErrUnknownTargetNode
	}
	d.edges = append(d.edges, e)
	d.out[e.From] = append(d.out[e.From], e.To)
	d.in[e.To] = append(d.in[e.To], e.From)
	return nil
}

// RemoveEdge drops every from→to edge, if any.
func (d *DAG) RemoveEdge(from, to string) {
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e == Edge{From: from, To: to} })
	d.out[from] = without(d.out[from], to)
	d.in[to] = without(d.in[to], from)
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}

// Nodes returns the graph's own node pointers.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.byID[id])
	}
	return nodes
}

// Edges returns a copy of the edge list.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.order) }
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children lists the downstream neighbours of id, one entry per edge. The
// slice belongs to the graph.
func (d *DAG) Children(id string) []string { return d.out[id] }

// Parents lists the upstream neighbours of id, one entry per edge. The
// slice belongs to the graph.
func (d *DAG) Parents(id string) []string { return d.in[id] }

// Node looks a node up by ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n := d.byID[id]
	return n, n != nil
}

// NodesInRow returns the nodes currently in row.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowCount is the number of non-empty rows.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns the non-empty row indices, ascending.
func (d *DAG) RowIDs() []int { return slices.Sorted(maps.Keys(d.rows)) }

// Sources returns the nodes nothing points to.
func (d *DAG) Sources() []*Node {
	var out []*Node
	for _, n := range d.Nodes() {
		if len(d.in[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Validate reports whether the graph is ready to draw: no cycles, and every
// edge going exactly one row down.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.byID[e.To].Row != d.byID[e.From].Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return d.DetectCycles()
}

// DetectCycles returns [ErrGraphHasCycle] if some node lies on a directed
// cycle, a self-loop included. It walks depth first from each unvisited node
// in insertion order, keeping the nodes on the current path marked; an edge
// back into a marked node closes a cycle. Rows are ignored.
func (d *DAG) DetectCycles() error {
	const (
		unvisited = iota
		onPath
		finished
	)
	type frame struct {
		id   string
		next int
	}

	state := make(map[string]int, len(d.order))
	for _, root := range d.order {
		if state[root] != unvisited {
			continue
		}
		state[root] = onPath
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := d.out[top.id]
			if top.next == len(children) {
				state[top.id] = finished
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case onPath:
				return ErrGraphHasCycle
			case unvisited:
				state[child] = onPath
				stack = append(stack, frame{id: child})
			}
		}
	}
	return nil
}

// PosMap indexes ids by position.
func PosMap(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}

// NodeIDs returns the IDs of nodes, in order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i := range nodes {
		ids[i] = nodes[i].ID
	}
	return ids
}
