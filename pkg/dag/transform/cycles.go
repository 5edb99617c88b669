package transform

import "github.com/matzehuels/pipedag/pkg/dag"

// ReverseCycles flips the back edges found by a depth-first search so the
// graph becomes acyclic while each flipped edge still pulls its endpoints
// into different rows. Self-loops have no direction to flip and are
// removed. The search starts from sources, then from any node left
// unvisited, both in insertion order. It returns the number of edges
// reversed or removed.
func ReverseCycles(g *dag.DAG) int {
	back := findBackEdges(g)
	for _, e := range back {
		g.RemoveEdge(e[0], e[1])
	}
	for _, e := range back {
		if e[0] == e[1] {
			continue
		}
		if err := g.AddEdge(dag.Edge{From: e[1], To: e[0]}); err != nil {
			panic(err)
		}
	}
	return len(back)
}

// findBackEdges walks the graph depth first, sources first and then any
// node still unvisited, and returns the edges that close a cycle.
func findBackEdges(g *dag.DAG) [][2]string {
	const (
		unseen = iota
		open
		closed
	)
	type frame struct {
		id   string
		next int
	}

	state := make(map[string]int, g.NodeCount())
	var back [][2]string

	walk := func(root string) {
		if state[root] != unseen {
			return
		}
		state[root] = open
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.Children(top.id)
			if top.next == len(children) {
				state[top.id] = closed
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch state[child] {
			case unseen:
				state[child] = open
				stack = append(stack, frame{id: child})
			case open:
				back = append(back, [2]string{top.id, child})
			}
		}
	}

	for _, n := range g.Sources() {
		walk(n.ID)
	}
	for _, n := range g.Nodes() {
		walk(n.ID)
	}
	return back
}
