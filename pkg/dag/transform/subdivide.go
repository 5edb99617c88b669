package transform

import (
	"fmt"

	"github.com/matzehuels/pipedag/pkg/dag"
)

// Subdivide replaces every edge that skips rows with a chain through
// synthetic [dag.NodeKindSubdivider] nodes, one per skipped row:
//
//	extract (row 0) → report (row 3)
//	extract → extract_sub_1 → extract_sub_2 → report
//
// Crossing reduction only sees edges between neighbouring rows, so it must
// run after this.
//
// Subdivider IDs are "<source>_sub_<row>", with "__<n>" appended on a clash
// with an existing ID.
func Subdivide(g *dag.DAG) {
	taken := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		taken[n.ID] = true
	}

	for _, e := range g.Edges() {
		from, ok1 := g.Node(e.From)
		to, ok2 := g.Node(e.To)
		if !ok1 || !ok2 || to.Row-from.Row < 2 {
			continue
		}

		g.RemoveEdge(e.From, e.To)
		tail := from.ID
		for row := from.Row + 1; row < to.Row; row++ {
			id := subdividerID(taken, from.ID, row)
			mustAdd(g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindSubdivider}))
			mustAdd(g.AddEdge(dag.Edge{From: tail, To: id}))
			tail = id
		}
		mustAdd(g.AddEdge(dag.Edge{From: tail, To: to.ID}))
	}
}

func subdividerID(taken map[string]bool, master string, row int) string {
	base := fmt.Sprintf("%s_sub_%d", master, row)
	id := base
	for n := 1; taken[id]; n++ {
		id = fmt.Sprintf("%s__%d", base, n)
	}
	taken[id] = true
	return id
}

// mustAdd panics on errors that only a broken graph invariant can cause.
func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}
