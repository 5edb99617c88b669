package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipedag/pkg/pipeline"
)

// validateReport is the --json output of the validate command.
type validateReport struct {
	Valid      bool     `json:"valid"`
	Banner     string   `json:"banner"`
	Errors     []string `json:"errors"`
	Violations []string `json:"violations"`
	Nodes      int      `json:"nodes"`
	Edges      int      `json:"edges"`
}

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate [graph.json|graph.yaml|-]",
		Short: "Check a pipeline graph against the structural rules",
		Long: `Check a pipeline graph against the structural rules.

The graph must have at least two nodes, no self-loops, edges that leave
through the outgoing (right) handle and enter through the incoming (left)
handle, no unconnected nodes, and no cycles.

The command exits with status 1 when any rule is broken. Use "-" to read
JSON from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, w io.Writer, input string, asJSON bool) error {
	g, err := loadGraph(input)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	defer runner.Close()
	res := runner.Validate(ctx, g)

	if asJSON {
		report := validateReport{
			Valid:      res.Valid,
			Banner:     res.Banner(),
			Errors:     append([]string{}, res.Errors...),
			Violations: make([]string, len(res.Violations)),
			Nodes:      len(g.Nodes),
			Edges:      len(g.Edges),
		}
		for i, rule := range res.Violations {
			report.Violations[i] = rule.String()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printValidation(res)
		printStats(len(g.Nodes), len(g.Edges), nil)
	}

	if !res.Valid {
		return ErrInvalidPipeline
	}
	return nil
}
