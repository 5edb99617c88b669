package dag

import "github.com/matzehuels/pipedag/pkg/graph"

// FromGraph builds a DAG from a pipeline graph. All nodes start in row 0.
//
// Input that the DAG cannot represent is skipped rather than rejected:
// nodes with an empty or repeated ID, and edges whose endpoints are not
// declared nodes. The number of skipped edges is returned so callers can
// report it. Edge handles are not consulted.
func FromGraph(g graph.Graph) (*DAG, int) {
	d := New()
	for _, n := range g.Nodes {
		_ = d.AddNode(Node{ID: n.ID})
	}
	skipped := 0
	for _, e := range g.Edges {
		if err := d.AddEdge(Edge{From: e.Source, To: e.Target}); err != nil {
			skipped++
		}
	}
	return d, skipped
}
