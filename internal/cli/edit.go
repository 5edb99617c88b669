package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pipedag/pkg/editor"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
	"github.com/matzehuels/pipedag/pkg/pipeline"
)

// historyLimit bounds the undo history of interactive sessions.
const historyLimit = 500

// editCommand creates the interactive editor command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		direction string
		engine    string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "edit [graph.json|graph.yaml]",
		Short: "Edit a pipeline graph interactively",
		Long: `Edit a pipeline graph in the terminal.

Nodes and edges are added, connected and removed from a command prompt, and
the validation banner updates after every change. A missing file is created
on the first save.

Type help inside the editor for the command list. ctrl+z and ctrl+y undo and
redo, esc quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			opts := c.Config.LayoutOptions()
			if direction != "" {
				opts.Direction = layout.Direction(direction)
			}
			if engine != "" {
				opts.Engine = engine
			}
			return c.runEdit(cmd.Context(), path, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", "auto-layout direction: LR, TB, RL, BT")
	cmd.Flags().StringVarP(&engine, "engine", "e", "", "auto-layout engine")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout caching")

	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, opts layout.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	session, err := c.newSession(runner, path)
	if err != nil {
		return err
	}

	model := NewEditorModel(ctx, session, opts, path)
	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run editor: %w", err)
	}

	if m, ok := final.(EditorModel); ok && m.Dirty() {
		printWarning("Quit with unsaved changes")
	}
	printValidation(session.Status())
	g := session.Graph()
	printStats(len(g.Nodes), len(g.Edges), nil)
	return nil
}

// newSession opens path into a new editor session. Auto-layout runs through
// the cached pipeline runner.
func (c *CLI) newSession(runner *pipeline.Runner, path string) (*editor.Session, error) {
	opts := []editor.Option{
		editor.WithHistoryLimit(historyLimit),
		editor.WithLayoutFunc(func(ctx context.Context, g graph.Graph, opts layout.Options) (graph.Graph, error) {
			out, _, err := runner.Layout(ctx, g, opts)
			return out, err
		}),
	}

	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			g, err := loadGraph(path)
			if err != nil {
				return nil, err
			}
			opts = append(opts, editor.WithInitialGraph(g))
			c.Logger.Debug("opened graph", "path", path, "nodes", len(g.Nodes), "edges", len(g.Edges))
		}
	}
	return editor.NewSession(opts...), nil
}
