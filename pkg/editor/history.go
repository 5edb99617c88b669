package editor

import "github.com/matzehuels/pipedag/pkg/graph"

// History is an append-only log of graph snapshots with a cursor.
//
// Undo and Redo move the cursor. Push truncates everything after the cursor
// before appending, so redo is lost once a new edit is made. With a positive
// limit the oldest snapshots are dropped to keep at most limit entries.
//
// History stores snapshots as given; callers must not modify a graph after
// pushing it or after reading it from Current. It is not safe for
// concurrent use.
type History struct {
	entries []graph.Graph
	cursor  int
	limit   int
}

// NewHistory starts a history whose only entry is initial.
func NewHistory(initial graph.Graph, limit int) *History {
	return &History{entries: []graph.Graph{initial}, limit: limit}
}

// Current returns the snapshot under the cursor.
func (h *History) Current() graph.Graph { return h.entries[h.cursor] }

// Push records g as the newest snapshot and moves the cursor to it.
func (h *History) Push(g graph.Graph) {
	h.entries = append(h.entries[:h.cursor+1], g)
	h.cursor++
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([]graph.Graph(nil), h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Undo moves the cursor back one snapshot. It reports false at the start.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor forward one snapshot. It reports false at the end.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	h.cursor++
	return true
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Len returns the number of stored snapshots.
func (h *History) Len() int { return len(h.entries) }
