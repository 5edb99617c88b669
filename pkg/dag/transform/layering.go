package transform

import "github.com/matzehuels/pipedag/pkg/dag"

// AssignLayers sets every node's row to the length of the longest path that
// reaches it, so sources sit in row 0 and each step sits strictly below all
// of its upstream steps. Rows already stored on the graph are replaced.
//
// The graph must be acyclic. A node on a cycle is treated as having no
// parents inside that cycle; call [ReverseCycles] first to get meaningful
// rows.
func AssignLayers(g *dag.DAG) {
	const (
		pending = iota
		visiting
		done
	)

	state := make(map[string]int, g.NodeCount())
	rows := make(map[string]int, g.NodeCount())

	var depth func(id string) int
	depth = func(id string) int {
		switch state[id] {
		case done:
			return rows[id]
		case visiting:
			return -1
		}
		state[id] = visiting
		row := 0
		for _, p := range g.Parents(id) {
			if d := depth(p); d+1 > row {
				row = d + 1
			}
		}
		state[id] = done
		rows[id] = row
		return row
	}

	for _, n := range g.Nodes() {
		depth(n.ID)
	}
	g.SetRows(rows)
}
