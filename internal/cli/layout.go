package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
)

type layoutFlags struct {
	direction string
	engine    string
	output    string
	noCache   bool
}

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [graph.json|graph.yaml|-]",
		Short: "Compute node positions for a pipeline graph",
		Long: `Compute node positions for a pipeline graph.

The laid-out graph is written next to the input as <input>.layout.json
unless -o is given. Positions are the top-left corners of each node's box.

Engines:
  graphviz  dot layout via the embedded Graphviz library (default)
  layered   built-in layered layout, no cgo or wasm

Results are cached, keyed by node IDs, edges and layout options, so renaming
a node does not trigger a new layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.direction, "direction", "d", "", "edge direction: LR, TB, RL, BT (default from config)")
	cmd.Flags().StringVarP(&flags.engine, "engine", "e", "", "layout engine: "+strings.Join(layout.Engines(), ", ")+" (default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags layoutFlags) error {
	opts := c.Config.LayoutOptions()
	if flags.direction != "" {
		opts.Direction = layout.Direction(flags.direction)
	}
	if flags.engine != "" {
		opts.Engine = flags.engine
	}

	outputPath := flags.output
	if outputPath == "" {
		if input == "-" {
			outputPath = "graph.layout.json"
		} else {
			outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
		}
	}
	if err := apperrors.ValidateOutputPath(outputPath); err != nil {
		return err
	}

	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if res := runner.Validate(ctx, g); !res.Valid {
		printWarning("%s", res.Banner())
	}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	out, cacheHit, err := runner.Layout(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := graph.WriteFile(out, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(out.Nodes), len(out.Edges), &cacheHit)
	printNewline()
	printNextStep("Edit", appName+" edit "+outputPath)

	return nil
}
