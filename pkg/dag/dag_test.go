package dag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pipedag/pkg/graph"
)

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) error: %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) twice = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(x→a) = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(a→x) = %v, want ErrUnknownTargetNode", err)
	}
}

func TestInsertionOrder(t *testing.T) {
	ids := []string{"z", "m", "a", "q", "b"}
	g := New()
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	_ = g.AddEdge(Edge{From: "z", To: "a"})

	if diff := cmp.Diff(ids, NodeIDs(g.Nodes())); diff != "" {
		t.Errorf("Nodes() order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"z", "m", "q", "b"}, NodeIDs(g.Sources())); diff != "" {
		t.Errorf("Sources() mismatch (-want +got):\n%s", diff)
	}

	g.SetRows(map[string]int{"a": 1, "b": 1})
	if diff := cmp.Diff([]string{"z", "m", "q"}, NodeIDs(g.NodesInRow(0))); diff != "" {
		t.Errorf("NodesInRow(0) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, NodeIDs(g.NodesInRow(1))); diff != "" {
		t.Errorf("NodesInRow(1) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, g.RowIDs()); diff != "" || g.RowCount() != 2 {
		t.Errorf("RowIDs() = %v, RowCount() = %d", g.RowIDs(), g.RowCount())
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 || len(g.Children("a")) != 0 || len(g.Parents("b")) != 0 {
		t.Errorf("edges left after RemoveEdge: %v", g.Edges())
	}
	g.RemoveEdge("a", "missing")
}

func TestDetectCycles(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		cycle bool
	}{
		{"empty", nil, nil, false},
		{"chain", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}}, false},
		{"diamond", []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, false},
		{"self loop", []string{"a"}, [][2]string{{"a", "a"}}, true},
		{"two cycle", []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}}, true},
		{"long cycle", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, true},
		{"cycle off a tail", []string{"x", "a", "b"}, [][2]string{{"x", "a"}, {"a", "b"}, {"b", "a"}}, true},
		{"edge into a finished branch", []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}, {"c", "b"}}, false},
		{"cycle reached from a later root", []string{"a", "b", "c"}, [][2]string{{"b", "c"}, {"c", "b"}}, true},
		{"cycle entered from its middle", []string{"c", "a", "b"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, true},
		{"parallel edges", []string{"a", "b"}, [][2]string{{"a", "b"}, {"a", "b"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			for _, id := range tt.nodes {
				_ = g.AddNode(Node{ID: id})
			}
			for _, e := range tt.edges {
				_ = g.AddEdge(Edge{From: e[0], To: e[1]})
			}
			err := g.DetectCycles()
			if got := errors.Is(err, ErrGraphHasCycle); got != tt.cycle {
				t.Errorf("DetectCycles() = %v, want cycle=%v", err, tt.cycle)
			}
		})
	}
}

func TestValidateRows(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a", Row: 0})
	_ = g.AddNode(Node{ID: "b", Row: 2})
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRows) {
		t.Errorf("Validate() = %v, want ErrNonConsecutiveRows", err)
	}
}

func TestFromGraph(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: ""}},
		Edges: []graph.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "a", Target: "nope"},
			{ID: "e3", Source: "", Target: "b"},
		},
	}

	d, skipped := FromGraph(g)
	if d.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", d.NodeCount())
	}
	if d.EdgeCount() != 1 || skipped != 2 {
		t.Errorf("EdgeCount() = %d, skipped = %d, want 1 and 2", d.EdgeCount(), skipped)
	}
}

func TestCountCrossings(t *testing.T) {
	g := New()
	for _, n := range []Node{{ID: "a"}, {ID: "b"}, {ID: "x", Row: 1}, {ID: "y", Row: 1}, {ID: "z", Row: 2}} {
		_ = g.AddNode(n)
	}
	_ = g.AddEdge(Edge{From: "a", To: "y"})
	_ = g.AddEdge(Edge{From: "b", To: "x"})
	_ = g.AddEdge(Edge{From: "x", To: "z"})
	_ = g.AddEdge(Edge{From: "y", To: "z"})

	orders := map[int][]string{0: {"a", "b"}, 1: {"x", "y"}, 2: {"z"}}
	if got := CountCrossings(g, orders); got != 1 {
		t.Errorf("CountCrossings() = %d, want 1", got)
	}
	orders[1] = []string{"y", "x"}
	if got := CountCrossings(g, orders); got != 0 {
		t.Errorf("CountCrossings() after swap = %d, want 0", got)
	}

	if got := CountPairCrossings(g, "x", "y", []string{"a", "b"}, true); got != 1 {
		t.Errorf("CountPairCrossings(x, y) = %d, want 1", got)
	}
	if got := CountPairCrossings(g, "y", "x", []string{"a", "b"}, true); got != 0 {
		t.Errorf("CountPairCrossings(y, x) = %d, want 0", got)
	}
}
