package transform

import "github.com/matzehuels/pipedag/pkg/dag"

// Layer prepares g for layered drawing and returns the row ordering.
// It reverses cycles, assigns rows, subdivides long edges and orders rows,
// in that order. g is modified in place; the number of reversed back edges
// is returned alongside the ordering.
func Layer(g *dag.DAG, passes int) (map[int][]string, int) {
	reversed := ReverseCycles(g)
	AssignLayers(g)
	Subdivide(g)
	return OrderRows(g, passes), reversed
}
