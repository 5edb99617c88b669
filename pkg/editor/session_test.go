package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
	"github.com/matzehuels/pipedag/pkg/validate"
)

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestSession(opts ...Option) *Session {
	return NewSession(append([]Option{WithIDGenerator(sequentialIDs())}, opts...)...)
}

func TestAddNode(t *testing.T) {
	s := newTestSession()

	n, err := s.AddNode("  extract  ", graph.TypeSource)
	if err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	want := graph.Node{ID: "id-1", Label: "extract", Type: graph.TypeSource, Position: graph.Position{X: 100, Y: 100}}
	if diff := cmp.Diff(want, n); diff != "" {
		t.Errorf("AddNode() mismatch (-want +got):\n%s", diff)
	}

	n2, _ := s.AddNode("mystery", "customNode")
	if n2.Type != graph.TypeNormal {
		t.Errorf("unknown type stored as %q, want normal", n2.Type)
	}

	if _, err := s.AddNode("   ", graph.TypeNormal); !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("AddNode(blank) = %v, want ErrEmptyLabel", err)
	}
	if _, err := s.AddNode("bad\nlabel", graph.TypeNormal); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("AddNode(control char) = %v, want INVALID_INPUT", err)
	}
	if s.HistoryLen() != 3 {
		t.Errorf("HistoryLen() = %d, want 3 (failed edits are not recorded)", s.HistoryLen())
	}
}

func TestAddNode_UUIDs(t *testing.T) {
	s := NewSession()
	a, _ := s.AddNode("a", "")
	b, _ := s.AddNode("b", "")
	if a.ID == "" || a.ID == b.ID || len(a.ID) != 36 {
		t.Errorf("expected distinct uuids, got %q and %q", a.ID, b.ID)
	}
}

func TestConnect(t *testing.T) {
	s := newTestSession()
	a, _ := s.AddNode("a", "")
	b, _ := s.AddNode("b", "")

	e, err := s.Connect(a.ID, b.ID)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if e.SourceHandle != graph.HandleOutgoing || e.TargetHandle != graph.HandleIncoming || e.ID != "id-3" {
		t.Errorf("Connect() = %+v", e)
	}
	if !s.Status().Valid {
		t.Errorf("Status() = %v, want valid", s.Status().Errors)
	}

	tests := []struct {
		name    string
		src, sh string
		dst, th string
		want    error
	}{
		{"self", a.ID, "right", a.ID, "left", ErrSelfConnection},
		{"equal handles", a.ID, "right", b.ID, "right", ErrInvalidHandles},
		{"unknown source", "ghost", "right", b.ID, "left", ErrUnknownNode},
		{"unknown target", a.ID, "right", "ghost", "left", ErrUnknownNode},
		{"duplicate", a.ID, "right", b.ID, "left", ErrDuplicateEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.HistoryLen()
			_, err := s.ConnectHandles(tt.src, tt.sh, tt.dst, tt.th)
			if !errors.Is(err, tt.want) {
				t.Errorf("ConnectHandles() = %v, want %v", err, tt.want)
			}
			if s.HistoryLen() != before {
				t.Error("failed connection was recorded")
			}
		})
	}

	// Reverse handles are accepted and reported by the validator.
	if _, err := s.ConnectHandles(b.ID, "left", a.ID, "right"); err != nil {
		t.Fatalf("ConnectHandles(reversed) error: %v", err)
	}
	st := s.Status()
	if !st.Violated(validate.RuleEdgeDirection) || !st.Violated(validate.RuleAcyclic) {
		t.Errorf("Status() violations = %v", st.Violations)
	}
}

func TestRemove(t *testing.T) {
	s := newTestSession()
	a, _ := s.AddNode("a", "")
	b, _ := s.AddNode("b", "")
	c, _ := s.AddNode("c", "")
	ab, _ := s.Connect(a.ID, b.ID)
	bc, _ := s.Connect(b.ID, c.ID)

	if err := s.Remove(ab.ID); err != nil {
		t.Fatalf("Remove(edge) error: %v", err)
	}
	g := s.Graph()
	if len(g.Nodes) != 3 || len(g.Edges) != 1 || g.Edges[0].ID != bc.ID {
		t.Errorf("after removing edge: %+v", g)
	}

	if err := s.Remove(b.ID); err != nil {
		t.Fatalf("Remove(node) error: %v", err)
	}
	g = s.Graph()
	if diff := cmp.Diff([]string{a.ID, c.ID}, g.NodeIDs()); diff != "" {
		t.Errorf("nodes after cascade (-want +got):\n%s", diff)
	}
	if len(g.Edges) != 0 {
		t.Errorf("incident edges not removed: %+v", g.Edges)
	}

	if err := s.Remove("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(ghost) = %v, want ErrNotFound", err)
	}
	if err := s.RemoveEdge(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveEdge(node id) = %v, want ErrNotFound", err)
	}
}

func TestUpdateNode(t *testing.T) {
	s := newTestSession()
	a, _ := s.AddNode("a", "")

	if err := s.MoveNode(a.ID, graph.Position{X: 5, Y: 7}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetNodeType(a.ID, "Output"); err != nil {
		t.Fatal(err)
	}
	if err := s.RenameNode(a.ID, "load"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Node(a.ID)
	want := graph.Node{ID: a.ID, Label: "load", Type: graph.TypeOutput, Position: graph.Position{X: 5, Y: 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("node mismatch (-want +got):\n%s", diff)
	}

	if err := s.RenameNode(a.ID, ""); !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("RenameNode(empty) = %v, want ErrEmptyLabel", err)
	}
	if err := s.MoveNode("ghost", graph.Position{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("MoveNode(ghost) = %v, want ErrNotFound", err)
	}
}

func TestUndoRedo(t *testing.T) {
	s := newTestSession()
	if s.CanUndo() || s.CanRedo() || s.HistoryLen() != 1 {
		t.Fatal("new session should hold only the initial snapshot")
	}

	a, _ := s.AddNode("a", "")
	b, _ := s.AddNode("b", "")
	s.Connect(a.ID, b.ID)
	full := s.Graph()

	if !s.Undo() {
		t.Fatal("Undo() = false")
	}
	if len(s.Graph().Edges) != 0 {
		t.Error("undo should drop the edge")
	}
	if s.Status().Valid {
		t.Error("status should follow the undone snapshot")
	}
	if !s.Redo() {
		t.Fatal("Redo() = false")
	}
	if diff := cmp.Diff(full, s.Graph()); diff != "" {
		t.Errorf("redo mismatch (-want +got):\n%s", diff)
	}

	for s.Undo() {
	}
	if len(s.Graph().Nodes) != 0 {
		t.Error("undoing everything should return to the empty graph")
	}
	if s.Undo() {
		t.Error("Undo() at start should return false")
	}

	// A new edit after undo discards the redo branch.
	s.Redo()
	s.AddNode("c", "")
	if s.CanRedo() {
		t.Error("new edit should truncate redo history")
	}
	if s.HistoryLen() != 3 {
		t.Errorf("HistoryLen() = %d, want 3", s.HistoryLen())
	}
}

func TestHistoryLimit(t *testing.T) {
	s := newTestSession(WithHistoryLimit(3))
	for _, l := range []string{"a", "b", "c", "d"} {
		s.AddNode(l, "")
	}
	if s.HistoryLen() != 3 {
		t.Errorf("HistoryLen() = %d, want 3", s.HistoryLen())
	}
	s.Undo()
	s.Undo()
	if s.Undo() {
		t.Error("oldest snapshots should have been dropped")
	}
	if n := len(s.Graph().Nodes); n != 2 {
		t.Errorf("oldest kept snapshot has %d nodes, want 2", n)
	}
}

func TestGraphIsACopy(t *testing.T) {
	s := newTestSession()
	a, _ := s.AddNode("a", "")

	g := s.Graph()
	g.Nodes[0].Label = "mutated"
	if n, _ := s.Node(a.ID); n.Label != "a" {
		t.Error("Graph() must return a copy")
	}
}

func TestLoad(t *testing.T) {
	s := newTestSession()
	in := graph.Graph{
		Nodes: []graph.Node{{ID: "1"}, {ID: "2"}},
		Edges: []graph.Edge{{ID: "e", Source: "1", Target: "2", SourceHandle: "right", TargetHandle: "left"}},
	}
	s.Load(in)
	in.Nodes[0].ID = "changed"

	if diff := cmp.Diff([]string{"1", "2"}, s.Graph().NodeIDs()); diff != "" {
		t.Errorf("Load() should copy its input (-want +got):\n%s", diff)
	}
	if !s.Status().Valid {
		t.Errorf("Status() = %v", s.Status().Errors)
	}
	if !s.Undo() || len(s.Graph().Nodes) != 0 {
		t.Error("Load() should be undoable")
	}
}

func TestAutoLayout(t *testing.T) {
	s := newTestSession()
	a, _ := s.AddNode("a", "")
	b, _ := s.AddNode("b", "")
	s.Connect(a.ID, b.ID)

	if err := s.AutoLayout(context.Background(), layout.Options{Engine: layout.EngineLayered}); err != nil {
		t.Fatalf("AutoLayout() error: %v", err)
	}
	g := s.Graph()
	if g.Nodes[0].Position != (graph.Position{X: 0, Y: 0}) || g.Nodes[1].Position != (graph.Position{X: 222, Y: 0}) {
		t.Errorf("positions = %+v, %+v", g.Nodes[0].Position, g.Nodes[1].Position)
	}

	s.Undo()
	if s.Graph().Nodes[0].Position != DefaultPosition {
		t.Error("AutoLayout should be undoable")
	}
}

func TestAutoLayout_Error(t *testing.T) {
	boom := errors.New("boom")
	s := newTestSession(WithLayoutFunc(func(context.Context, graph.Graph, layout.Options) (graph.Graph, error) {
		return graph.Graph{}, boom
	}))
	s.AddNode("a", "")
	before := s.HistoryLen()

	if err := s.AutoLayout(context.Background(), layout.Options{}); !errors.Is(err, boom) {
		t.Errorf("AutoLayout() = %v, want boom", err)
	}
	if s.HistoryLen() != before {
		t.Error("failed layout was recorded")
	}
}

func TestAutoLayout_DoesNotBlockEdits(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := newTestSession(WithLayoutFunc(func(_ context.Context, g graph.Graph, _ layout.Options) (graph.Graph, error) {
		close(entered)
		<-release
		out := g.Clone()
		for i := range out.Nodes {
			out.Nodes[i].Position = graph.Position{X: 7, Y: 9}
		}
		return out, nil
	}))
	a, _ := s.AddNode("a", "")

	done := make(chan error, 1)
	go func() { done <- s.AutoLayout(context.Background(), layout.Options{}) }()
	<-entered

	// The session stays usable while the layout is running.
	if st := s.Status(); !st.Violated(validate.RuleMinimumNodes) {
		t.Errorf("Status() during layout = %+v", st)
	}
	b, err := s.AddNode("b", "")
	if err != nil {
		t.Fatalf("AddNode() during layout: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("AutoLayout() error: %v", err)
	}

	got, _ := s.Node(a.ID)
	if got.Position != (graph.Position{X: 7, Y: 9}) {
		t.Errorf("laid out node position = %+v", got.Position)
	}
	got, ok := s.Node(b.ID)
	if !ok {
		t.Fatal("node added during layout was lost")
	}
	if got.Position != DefaultPosition {
		t.Errorf("node added during layout moved to %+v", got.Position)
	}
}

func TestConcurrentEdits(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddNode("n", "")
			s.Status()
		}()
	}
	wg.Wait()

	if got := len(s.Graph().Nodes); got != 20 {
		t.Errorf("nodes = %d, want 20", got)
	}
	if s.HistoryLen() != 21 {
		t.Errorf("HistoryLen() = %d, want 21", s.HistoryLen())
	}
}
