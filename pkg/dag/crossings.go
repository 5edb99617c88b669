package dag

import (
	"cmp"
	"maps"
	"slices"
)

// CountCrossings sums the edge crossings between every pair of consecutive
// rows in orders. Each entry lists a row's node IDs left to right; a row
// missing from the map counts as empty.
//
//	orders := map[int][]string{
//	    0: {"extract", "fetch"},
//	    1: {"clean", "join", "dedupe"},
//	}
//	n := dag.CountCrossings(g, orders)
func CountCrossings(g *DAG, orders map[int][]string) int {
	total := 0
	for _, row := range slices.Sorted(maps.Keys(orders)) {
		if next, ok := orders[row+1]; ok {
			total += CountLayerCrossings(g, orders[row], next)
		}
	}
	return total
}

// link is an edge between two adjacent rows, by position.
type link struct{ top, bottom int }

// CountLayerCrossings counts crossings between the edges joining upper to
// lower. Edges (a,b) and (c,d) cross when a is left of c but b is right of d,
// so sorting links by their upper end turns the count into the number of
// inversions among lower ends. A Fenwick tree finds those in O(E log V).
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	bottom := PosMap(lower)
	links := make([]link, 0, len(upper)*2)
	for top, id := range upper {
		for _, child := range g.Children(id) {
			if pos, ok := bottom[child]; ok {
				links = append(links, link{top, pos})
			}
		}
	}
	if len(links) < 2 {
		return 0
	}
	slices.SortFunc(links, func(a, b link) int {
		if c := cmp.Compare(a.top, b.top); c != 0 {
			return c
		}
		return cmp.Compare(a.bottom, b.bottom)
	})

	tree := newFenwick(len(lower))
	crossings := 0
	for seen, l := range links {
		crossings += seen - tree.prefix(l.bottom)
		tree.add(l.bottom)
	}
	return crossings
}

// fenwick counts how many positions at or below an index have been added.
type fenwick []int

func newFenwick(size int) fenwick { return make(fenwick, size+1) }

func (f fenwick) add(pos int) {
	for i := pos + 1; i < len(f); i += i & -i {
		f[i]++
	}
}

func (f fenwick) prefix(pos int) int {
	sum := 0
	for i := pos + 1; i > 0; i -= i & -i {
		sum += f[i]
	}
	return sum
}

// CountPairCrossings counts the crossings between the edges of two
// neighbouring nodes, with left placed before right. adjOrder is the
// adjacent row left to right; useParents selects the row above instead of
// the row below. The graph is not modified.
func CountPairCrossings(g *DAG, left, right string, adjOrder []string, useParents bool) int {
	return CountPairCrossingsWithPos(g, left, right, PosMap(adjOrder), useParents)
}

// CountPairCrossingsWithPos is [CountPairCrossings] with the adjacent row
// already indexed, for callers that test many swaps against one row. IDs
// missing from adjPos are skipped.
func CountPairCrossingsWithPos(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	neighbours := g.Children
	if useParents {
		neighbours = g.Parents
	}

	rightPos := make([]int, 0, 4)
	for _, id := range neighbours(right) {
		if p, ok := adjPos[id]; ok {
			rightPos = append(rightPos, p)
		}
	}

	n := 0
	for _, id := range neighbours(left) {
		lp, ok := adjPos[id]
		if !ok {
			continue
		}
		for _, rp := range rightPos {
			if lp > rp {
				n++
			}
		}
	}
	return n
}
