package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pipedag/pkg/editor"
	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
)

var (
	listDimStyle    = fg(colorFaint)
	listHeaderStyle = fg(colorMuted).Bold(true)
	promptStyle     = fg(colorAccent).Bold(true)
)

const editorHelp = "add <label> [type] · connect <src> <dst> · rm <ref> · move <ref> <x> <y> · " +
	"type <ref> <type> · rename <ref> <label> · layout [dir] · undo · redo · save [path] · quit"

// =============================================================================
// EditorModel - Interactive pipeline editor
// =============================================================================

// layoutDoneMsg reports the end of an auto-layout started from the prompt.
type layoutDoneMsg struct{ err error }

// EditorModel is the bubbletea model for the interactive editor. Commands
// are typed at the prompt and applied to the session; the view re-validates
// after every change.
//
// Nodes are referenced by list position (#1), ID, unique ID prefix, or
// unique label. Edges are referenced by list position (e1) or ID.
type EditorModel struct {
	ctx     context.Context
	session *editor.Session
	opts    layout.Options
	path    string

	input   string
	message string
	failed  bool
	dirty   bool
	busy    bool
	width   int
	quit    bool
}

// NewEditorModel creates an editor over session. Saves go to path unless a
// path is given to the save command.
func NewEditorModel(ctx context.Context, session *editor.Session, opts layout.Options, path string) EditorModel {
	return EditorModel{
		ctx:     ctx,
		session: session,
		opts:    opts,
		path:    path,
		message: "Type help for commands",
	}
}

// Dirty reports whether there are edits since the last save.
func (m EditorModel) Dirty() bool { return m.dirty }

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quit = true
			return m, tea.Quit
		case tea.KeyCtrlZ:
			return m.execute("undo")
		case tea.KeyCtrlY:
			return m.execute("redo")
		case tea.KeyEnter:
			line := m.input
			m.input = ""
			return m.execute(line)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	case layoutDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m.fail(msg.err), nil
		}
		m.dirty = true
		return m.ok("Layout applied"), nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

func (m EditorModel) ok(format string, args ...any) EditorModel {
	m.message = fmt.Sprintf(format, args...)
	m.failed = false
	return m
}

func (m EditorModel) fail(err error) EditorModel {
	m.message = apperrors.UserMessage(err)
	m.failed = true
	return m
}

// execute runs one prompt line.
func (m EditorModel) execute(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}
	if m.busy {
		return m.fail(errors.New("layout in progress")), nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	g := m.session.Graph()

	switch cmd {
	case "quit", "q", "exit":
		m.quit = true
		return m, tea.Quit

	case "help", "?":
		return m.ok("%s", editorHelp), nil

	case "add":
		if len(args) == 0 {
			return m.fail(errors.New("usage: add <label> [type]")), nil
		}
		typ := graph.TypeNormal
		if last := graph.NodeType(strings.ToLower(args[len(args)-1])); len(args) > 1 && last.Known() {
			typ = last
			args = args[:len(args)-1]
		}
		n, err := m.session.AddNode(strings.Join(args, " "), typ)
		if err != nil {
			return m.fail(err), nil
		}
		m.dirty = true
		return m.ok("Added %s (%s)", n.Label, n.Type), nil

	case "connect", "link":
		if len(args) != 2 {
			return m.fail(errors.New("usage: connect <source> <target>")), nil
		}
		src, err := resolveNode(g, args[0])
		if err != nil {
			return m.fail(err), nil
		}
		dst, err := resolveNode(g, args[1])
		if err != nil {
			return m.fail(err), nil
		}
		if _, err := m.session.Connect(src.ID, dst.ID); err != nil {
			return m.fail(err), nil
		}
		m.dirty = true
		return m.ok("Connected %s → %s", src.DisplayLabel(), dst.DisplayLabel()), nil

	case "rm", "remove", "del":
		if len(args) != 1 {
			return m.fail(errors.New("usage: rm <node|edge>")), nil
		}
		if e, ok := resolveEdge(g, args[0]); ok {
			if err := m.session.RemoveEdge(e.ID); err != nil {
				return m.fail(err), nil
			}
			m.dirty = true
			return m.ok("Removed edge %s", args[0]), nil
		}
		n, err := resolveNode(g, args[0])
		if err != nil {
			return m.fail(err), nil
		}
		if err := m.session.RemoveNode(n.ID); err != nil {
			return m.fail(err), nil
		}
		m.dirty = true
		return m.ok("Removed %s", n.DisplayLabel()), nil

	case "move", "mv":
		if len(args) != 3 {
			return m.fail(errors.New("usage: move <node> <x> <y>")), nil
		}
		n, err := resolveNode(g, args[0])
		if err != nil {
			return m.fail(err), nil
		}
		x, errX := strconv.ParseFloat(args[1], 64)
		y, errY := strconv.ParseFloat(args[2], 64)
		if errX != nil || errY != nil {
			return m.fail(fmt.Errorf("invalid position %s,%s", args[1], args[2])), nil
		}
		if err := m.session.MoveNode(n.ID, graph.Position{X: x, Y: y}); err != nil {
			return m.fail(err), nil
		}
		m.dirty = true
		return m.ok("Moved %s to %g,%g", n.DisplayLabel(), x, y), nil

	case "type":
		if len(args) != 2 {
			return m.fail(errors.New("usage: type <node> <type>")), nil
		}
		n, err := resolveNode(g, args[0])
		if err != nil {
			return m.fail(err), nil
		}
		typ := graph.NodeType(strings.ToLower(args[1]))
		if !typ.Known() {
			return m.fail(fmt.Errorf("unknown type %q (want one of %s)", args[1], typeNames())), nil
		}
		if err := m.session.SetNodeType(n.ID, typ); err != nil {
			return m.fail(err), nil
		}
		m.dirty = true
		return m.ok("%s is now %s", n.DisplayLabel(), typ), nil

	case "rename":
		if len(args) < 2 {
			return m.fail(errors.New("usage: rename <node> <label>")), nil
		}
		n, err := resolveNode(g, args[0])
		if err != nil {
			return m.fail(err), nil
		}
		label := strings.Join(args[1:], " ")
		if err := m.session.RenameNode(n.ID, label); err != nil {
			return m.fail(err), nil
		}
		m.dirty = true
		return m.ok("Renamed %s to %s", n.DisplayLabel(), label), nil

	case "undo":
		if !m.session.Undo() {
			return m.fail(errors.New("nothing to undo")), nil
		}
		m.dirty = true
		return m.ok("Undone"), nil

	case "redo":
		if !m.session.Redo() {
			return m.fail(errors.New("nothing to redo")), nil
		}
		m.dirty = true
		return m.ok("Redone"), nil

	case "layout":
		opts := m.opts
		if len(args) > 0 {
			dir, err := layout.ParseDirection(args[0])
			if err != nil {
				return m.fail(err), nil
			}
			opts.Direction = dir
		}
		m.busy = true
		m = m.ok("Computing layout...")
		ctx, session := m.ctx, m.session
		return m, func() tea.Msg {
			return layoutDoneMsg{err: session.AutoLayout(ctx, opts)}
		}

	case "save", "w":
		path := m.path
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return m.fail(errors.New("usage: save <path>")), nil
		}
		if err := apperrors.ValidateOutputPath(path); err != nil {
			return m.fail(err), nil
		}
		if err := graph.WriteFile(m.session.Graph(), path); err != nil {
			return m.fail(err), nil
		}
		m.path = path
		m.dirty = false
		return m.ok("Saved %s", path), nil
	}

	return m.fail(fmt.Errorf("unknown command %q (type help)", cmd)), nil
}

func (m EditorModel) View() string {
	if m.quit {
		return ""
	}
	g := m.session.Graph()
	status := m.session.Status()

	var b strings.Builder

	b.WriteString(StyleTitle.Render("Pipeline Editor"))
	if m.path != "" {
		b.WriteString("  " + listDimStyle.Render(m.path))
	}
	if m.dirty {
		b.WriteString(StyleWarning.Render(" *"))
	}
	b.WriteString("\n")

	if status.Valid {
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + status.Banner()))
	} else {
		b.WriteString(StyleError.Render(iconError + " " + status.Banner()))
	}
	b.WriteString("\n\n")

	if len(g.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  No nodes yet. Try: add extract source"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.nodeTable(g))
		b.WriteString("\n")
	}

	if len(g.Edges) > 0 {
		b.WriteString("\n")
		for i, e := range g.Edges {
			src, dst := endpointLabel(g, e.Source), endpointLabel(g, e.Target)
			line := fmt.Sprintf("  e%-3d %s → %s", i+1, src, dst)
			if !e.HasCanonicalHandles() {
				line += StyleWarning.Render(fmt.Sprintf("  (%s → %s)", e.SourceHandle, e.TargetHandle))
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.failed {
		b.WriteString(StyleError.Render(m.message))
	} else {
		b.WriteString(listDimStyle.Render(m.message))
	}
	b.WriteString("\n")
	b.WriteString(promptStyle.Render("> ") + m.input)
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("ctrl+z undo  ctrl+y redo  esc quit  [%d/%d]",
		len(g.Nodes), len(g.Edges))))

	return b.String()
}

func (m EditorModel) nodeTable(g graph.Graph) string {
	rows := make([][]string, len(g.Nodes))
	for i, n := range g.Nodes {
		rows[i] = []string{
			fmt.Sprintf("#%d", i+1),
			badge(n.Type),
			n.DisplayLabel(),
			shortID(n.ID),
			fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
		}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(fg(colorFaint)).
		Headers("", "", "Label", "ID", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if col == 3 || col == 4 {
				return fg(colorFaint)
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

// resolveNode finds the node named by ref.
func resolveNode(g graph.Graph, ref string) (graph.Node, error) {
	if strings.HasPrefix(ref, "#") {
		i, err := strconv.Atoi(ref[1:])
		if err != nil || i < 1 || i > len(g.Nodes) {
			return graph.Node{}, fmt.Errorf("no node %s", ref)
		}
		return g.Nodes[i-1], nil
	}
	if n, ok := g.Node(ref); ok {
		return n, nil
	}

	var match []graph.Node
	for _, n := range g.Nodes {
		if strings.HasPrefix(n.ID, ref) {
			match = append(match, n)
		}
	}
	if len(match) == 0 {
		for _, n := range g.Nodes {
			if strings.EqualFold(n.Label, ref) {
				match = append(match, n)
			}
		}
	}
	switch len(match) {
	case 0:
		return graph.Node{}, fmt.Errorf("no node %q", ref)
	case 1:
		return match[0], nil
	default:
		return graph.Node{}, fmt.Errorf("%q matches %d nodes, use #n", ref, len(match))
	}
}

// resolveEdge finds the edge named by ref.
func resolveEdge(g graph.Graph, ref string) (graph.Edge, bool) {
	if i := g.EdgeIndex(ref); i >= 0 {
		return g.Edges[i], true
	}
	if rest, ok := strings.CutPrefix(ref, "e"); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 1 && i <= len(g.Edges) {
			return g.Edges[i-1], true
		}
	}
	return graph.Edge{}, false
}

func endpointLabel(g graph.Graph, id string) string {
	if n, ok := g.Node(id); ok {
		return n.DisplayLabel()
	}
	return StyleError.Render(id + "?")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func typeNames() string {
	names := make([]string, len(graph.NodeTypes))
	for i, t := range graph.NodeTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
