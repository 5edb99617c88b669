package transform

import (
	"slices"

	"github.com/matzehuels/pipedag/pkg/dag"
)

// DefaultOrderPasses is a sweep count that settles typical pipelines.
const DefaultOrderPasses = 8

// OrderRows orders the nodes of each row to reduce edge crossings and returns
// the best ordering found, keyed by row.
//
// The graph must be layered and subdivided so that every edge joins
// consecutive rows. OrderRows alternates downward sweeps, where each node is
// placed at the mean position of its parents, with upward sweeps that use
// children. Each sweep is followed by a transpose pass that swaps adjacent
// nodes while that lowers crossings. The ordering with the fewest crossings
// across all passes wins; ties keep the earlier one.
//
// Nodes without neighbours in the reference row keep their current slot.
// The starting order is insertion order, so the result is deterministic.
func OrderRows(g *dag.DAG, passes int) map[int][]string {
	orders := make(map[int][]string, g.RowCount())
	for _, r := range g.RowIDs() {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}
	rows := g.RowIDs()

	best := cloneOrders(orders)
	bestCross := dag.CountCrossings(g, orders)

	for pass := 0; pass < passes && bestCross > 0; pass++ {
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = byBarycenter(orders[rows[i]], orders[rows[i-1]], g.Parents)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = byBarycenter(orders[rows[i]], orders[rows[i+1]], g.Children)
			}
		}
		transpose(g, rows, orders)

		if c := dag.CountCrossings(g, orders); c < bestCross {
			bestCross = c
			best = cloneOrders(orders)
		}
	}
	return best
}

func byBarycenter(row, ref []string, neighbours func(string) []string) []string {
	refPos := dag.PosMap(ref)
	type weighted struct {
		id  string
		key float64
	}
	ws := make([]weighted, len(row))
	for i, id := range row {
		sum, n := 0, 0
		for _, nb := range neighbours(id) {
			if p, ok := refPos[nb]; ok {
				sum += p
				n++
			}
		}
		key := float64(i)
		if n > 0 {
			key = float64(sum) / float64(n)
		}
		ws[i] = weighted{id, key}
	}
	slices.SortStableFunc(ws, func(a, b weighted) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.id
	}
	return out
}

func transpose(g *dag.DAG, rows []int, orders map[int][]string) {
	for i, r := range rows {
		row := orders[r]
		var upPos, downPos map[string]int
		if i > 0 {
			upPos = dag.PosMap(orders[rows[i-1]])
		}
		if i < len(rows)-1 {
			downPos = dag.PosMap(orders[rows[i+1]])
		}
		cost := func(left, right string) int {
			c := 0
			if upPos != nil {
				c += dag.CountPairCrossingsWithPos(g, left, right, upPos, true)
			}
			if downPos != nil {
				c += dag.CountPairCrossingsWithPos(g, left, right, downPos, false)
			}
			return c
		}

		for round := 0; round < len(row); round++ {
			improved := false
			for j := 0; j+1 < len(row); j++ {
				if cost(row[j+1], row[j]) < cost(row[j], row[j+1]) {
					row[j], row[j+1] = row[j+1], row[j]
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
