package layout

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
)

// Result is a laid-out graph: the input nodes in order with new positions,
// and a copy of the input edges.
type Result = graph.Graph

// Apply lays out nodes and edges with the engine and direction named in
// opts. Returned positions are top-left corners of each node's box.
//
// Errors carry pkg/errors codes: INVALID_DIRECTION or INVALID_ENGINE for bad
// options, LAYOUT_FAILED when the engine fails. A cancelled context is
// returned as is.
func Apply(ctx context.Context, nodes []graph.Node, edges []graph.Edge, opts Options) (Result, error) {
	opts = opts.WithDefaults()
	dir, err := ParseDirection(string(opts.Direction))
	if err != nil {
		return Result{}, err
	}
	opts.Direction = dir
	engine, err := LookupEngine(opts.Engine)
	if err != nil {
		return Result{}, err
	}

	out := graph.Graph{Nodes: nodes, Edges: edges}.Clone()
	if len(out.Nodes) == 0 {
		return out, nil
	}

	centers, err := engine.Layout(ctx, out, opts)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		return Result{}, errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s layout failed", engine.Name())
	}

	halfW, halfH := opts.NodeWidth/2, opts.NodeHeight/2
	for i, n := range out.Nodes {
		c, ok := centers[n.ID]
		if !ok {
			return Result{}, errors.New(errors.ErrCodeLayoutFailed,
				"%s layout returned no position for node %q", engine.Name(), n.ID)
		}
		out.Nodes[i].Position = graph.Position{X: c.X - halfW, Y: c.Y - halfH}
	}
	return out, nil
}

// ApplyGraph is shorthand for Apply(ctx, g.Nodes, g.Edges, opts).
func ApplyGraph(ctx context.Context, g graph.Graph, opts Options) (Result, error) {
	return Apply(ctx, g.Nodes, g.Edges, opts)
}
