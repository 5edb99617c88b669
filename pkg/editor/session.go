package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
	"github.com/matzehuels/pipedag/pkg/validate"
)

// Sentinel errors for editing operations.
var (
	ErrEmptyLabel     = errors.New("node label must not be empty")
	ErrSelfConnection = errors.New("cannot connect a node to itself")
	ErrInvalidHandles = errors.New("source and target handles must differ")
	ErrUnknownNode    = errors.New("unknown node")
	ErrDuplicateEdge  = errors.New("connection already exists")
	ErrNotFound       = errors.New("no node or edge with that id")
)

// DefaultPosition is where new nodes are placed until the next layout.
var DefaultPosition = graph.Position{X: 100, Y: 100}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit keeps at most n snapshots. Zero or negative means
// unlimited.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.limit = n }
}

// WithIDGenerator replaces the uuid generator used for new node and edge IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

// WithLayoutFunc replaces the layout function used by AutoLayout.
func WithLayoutFunc(fn LayoutFunc) Option {
	return func(s *Session) { s.layout = fn }
}

// WithInitialGraph starts the session from g instead of an empty graph.
func WithInitialGraph(g graph.Graph) Option {
	return func(s *Session) { s.initial = g.Clone() }
}

// LayoutFunc computes a laid-out copy of a graph.
type LayoutFunc func(ctx context.Context, g graph.Graph, opts layout.Options) (graph.Graph, error)

// Session is an editing session over one pipeline graph.
type Session struct {
	mu      sync.Mutex
	history *History
	limit   int
	initial graph.Graph
	newID   func() string
	layout  LayoutFunc
}

// NewSession starts a session. The initial snapshot is recorded as the first
// history entry.
func NewSession(opts ...Option) *Session {
	s := &Session{
		initial: graph.Graph{}.Clone(),
		newID:   uuid.NewString,
		layout:  layout.ApplyGraph,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = NewHistory(s.initial, s.limit)
	return s
}

// mutate applies fn to a copy of the current graph and records the result.
// Nothing is recorded when fn fails.
func (s *Session) mutate(fn func(g *graph.Graph) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.history.Current().Clone()
	if err := fn(&g); err != nil {
		return err
	}
	s.history.Push(g)
	return nil
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode adds a node with a fresh ID at DefaultPosition. Unknown types are
// stored as normal.
func (s *Session) AddNode(label string, typ graph.NodeType) (graph.Node, error) {
	if err := checkLabel(label); err != nil {
		return graph.Node{}, err
	}
	var added graph.Node
	err := s.mutate(func(g *graph.Graph) error {
		added = graph.Node{
			ID:       s.newID(),
			Label:    strings.TrimSpace(label),
			Type:     graph.ParseNodeType(string(typ)),
			Position: DefaultPosition,
		}
		g.Nodes = append(g.Nodes, added)
		return nil
	})
	return added, err
}

// RemoveNode deletes a node and every edge touching it.
func (s *Session) RemoveNode(id string) error {
	return s.mutate(func(g *graph.Graph) error {
		i := g.NodeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)
		kept := g.Edges[:0]
		for _, e := range g.Edges {
			if !e.Touches(id) {
				kept = append(kept, e)
			}
		}
		g.Edges = kept
		return nil
	})
}

// MoveNode sets a node's position.
func (s *Session) MoveNode(id string, pos graph.Position) error {
	return s.updateNode(id, func(n *graph.Node) error {
		n.Position = pos
		return nil
	})
}

// SetNodeType changes a node's display type. Unknown types are stored as
// normal.
func (s *Session) SetNodeType(id string, typ graph.NodeType) error {
	return s.updateNode(id, func(n *graph.Node) error {
		n.Type = graph.ParseNodeType(string(typ))
		return nil
	})
}

// RenameNode changes a node's label.
func (s *Session) RenameNode(id, label string) error {
	if err := checkLabel(label); err != nil {
		return err
	}
	return s.updateNode(id, func(n *graph.Node) error {
		n.Label = strings.TrimSpace(label)
		return nil
	})
}

func (s *Session) updateNode(id string, fn func(n *graph.Node) error) error {
	return s.mutate(func(g *graph.Graph) error {
		i := g.NodeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fn(&g.Nodes[i])
	})
}

func checkLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return ErrEmptyLabel
	}
	return apperrors.ValidateLabel(label)
}

// =============================================================================
// Edges
// =============================================================================

// Connect joins source to target through the canonical outgoing and incoming
// handles.
func (s *Session) Connect(source, target string) (graph.Edge, error) {
	return s.ConnectHandles(source, graph.HandleOutgoing, target, graph.HandleIncoming)
}

// ConnectHandles joins source to target through the given handles.
//
// It refuses a node connected to itself, equal handles on both ends,
// endpoints that are not nodes, and an exact repeat of an existing
// connection. Handles in the wrong direction are accepted and left for the
// validator to report.
func (s *Session) ConnectHandles(source, sourceHandle, target, targetHandle string) (graph.Edge, error) {
	if source == target {
		return graph.Edge{}, ErrSelfConnection
	}
	if sourceHandle == targetHandle {
		return graph.Edge{}, ErrInvalidHandles
	}
	var added graph.Edge
	err := s.mutate(func(g *graph.Graph) error {
		for _, id := range []string{source, target} {
			if g.NodeIndex(id) < 0 {
				return fmt.Errorf("%w: %s", ErrUnknownNode, id)
			}
		}
		for _, e := range g.Edges {
			if e.Source == source && e.Target == target &&
				e.SourceHandle == sourceHandle && e.TargetHandle == targetHandle {
				return ErrDuplicateEdge
			}
		}
		added = graph.Edge{
			ID:           s.newID(),
			Source:       source,
			Target:       target,
			SourceHandle: sourceHandle,
			TargetHandle: targetHandle,
		}
		g.Edges = append(g.Edges, added)
		return nil
	})
	return added, err
}

// RemoveEdge deletes an edge.
func (s *Session) RemoveEdge(id string) error {
	return s.mutate(func(g *graph.Graph) error {
		i := g.EdgeIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
		return nil
	})
}

// Remove deletes the edge or node with the given ID. Edges are looked up
// first.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	isEdge := s.history.Current().EdgeIndex(id) >= 0
	s.mu.Unlock()

	if isEdge {
		return s.RemoveEdge(id)
	}
	return s.RemoveNode(id)
}

// =============================================================================
// Whole-graph operations
// =============================================================================

// Load replaces the current graph with a copy of g.
func (s *Session) Load(g graph.Graph) {
	_ = s.mutate(func(cur *graph.Graph) error {
		*cur = g.Clone()
		return nil
	})
}

// AutoLayout lays out a copy of the current graph without holding the
// session lock, then records a snapshot with the computed positions. Edits
// made while the layout ran are kept; nodes the layout did not see keep
// their positions. On error the graph is left unchanged.
func (s *Session) AutoLayout(ctx context.Context, opts layout.Options) error {
	out, err := s.layout(ctx, s.Graph(), opts)
	if err != nil {
		return err
	}
	placed := make(map[string]graph.Position, len(out.Nodes))
	for _, n := range out.Nodes {
		placed[n.ID] = n.Position
	}
	return s.mutate(func(g *graph.Graph) error {
		for i := range g.Nodes {
			if pos, ok := placed[g.Nodes[i].ID]; ok {
				g.Nodes[i].Position = pos
			}
		}
		return nil
	})
}

// Graph returns a copy of the current graph.
func (s *Session) Graph() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current().Clone()
}

// Node returns the node with the given ID from the current graph.
func (s *Session) Node(id string) (graph.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current().Node(id)
}

// Status validates the current graph.
func (s *Session) Status() validate.Result {
	s.mu.Lock()
	g := s.history.Current()
	s.mu.Unlock()
	return validate.ValidateGraph(g)
}

// =============================================================================
// History
// =============================================================================

// Undo steps back one snapshot and reports whether it moved.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Undo()
}

// Redo steps forward one snapshot and reports whether it moved.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Redo()
}

// CanUndo reports whether Undo would move.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would move.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// HistoryLen returns the number of stored snapshots, including the initial one.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}
