package dag_test

import (
	"fmt"

	"github.com/matzehuels/pipedag/pkg/dag"
	"github.com/matzehuels/pipedag/pkg/graph"
)

func ExampleDAG_basic() {
	// A three-step pipeline: extract → transform → load
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "extract", Row: 0})
	_ = g.AddNode(dag.Node{ID: "transform", Row: 1})
	_ = g.AddNode(dag.Node{ID: "load", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "extract", To: "transform"})
	_ = g.AddEdge(dag.Edge{From: "transform", To: "load"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	fmt.Println("Valid:", g.Validate() == nil)
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
	// Valid: true
}

func ExampleFromGraph() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "a"},
			{ID: "e3", Source: "b", Target: "ghost"},
		},
	}

	d, skipped := dag.FromGraph(g)
	fmt.Println("Edges:", d.EdgeCount(), "skipped:", skipped)
	fmt.Println("Cycle:", d.DetectCycles())
	// Output:
	// Edges: 2 skipped: 1
	// Cycle: dag: graph contains a cycle
}

func ExampleCountLayerCrossings() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})

	// a→y and b→x cross when a is left of b
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	lower := []string{"x", "y"}
	fmt.Println("Crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, lower))
	fmt.Println("After reorder:", dag.CountLayerCrossings(g, []string{"b", "a"}, lower))
	// Output:
	// Crossings: 1
	// After reorder: 0
}
