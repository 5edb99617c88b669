package editor_test

import (
	"fmt"

	"github.com/matzehuels/pipedag/pkg/editor"
	"github.com/matzehuels/pipedag/pkg/graph"
)

func ExampleSession() {
	s := editor.NewSession()
	src, _ := s.AddNode("extract", graph.TypeSource)
	fmt.Println(s.Status().Banner())

	dst, _ := s.AddNode("load", graph.TypeOutput)
	s.Connect(src.ID, dst.ID)
	fmt.Println(s.Status().Banner())

	s.Undo()
	fmt.Println(s.Status().Banner())
	// Output:
	// Invalid DAG: Pipeline must have at least 2 nodes., All nodes must be connected to at least one edge.
	// Valid DAG
	// Invalid DAG: All nodes must be connected to at least one edge.
}
