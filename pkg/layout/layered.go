package layout

import (
	"context"

	"github.com/matzehuels/pipedag/pkg/dag"
	"github.com/matzehuels/pipedag/pkg/dag/transform"
	"github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/graph"
)

// Layered lays graphs out with an in-process Sugiyama pipeline: cycles are
// reversed, nodes are ranked by longest path, long edges are subdivided,
// and ranks are ordered by barycenter sweeps.
//
// Ranks advance along the primary axis (x for LR/RL, y for TB/BT). Within a
// rank, nodes occupy consecutive slots on the secondary axis and every rank
// is centered on the widest one. Subdivider nodes take a slot like real
// nodes so long edges get their own lane.
type Layered struct {
	// Passes is the number of ordering sweeps. Zero means
	// transform.DefaultOrderPasses.
	Passes int
}

// Name returns "layered".
func (Layered) Name() string { return EngineLayered }

// Layout ranks and orders g, then assigns box centers.
func (l Layered) Layout(ctx context.Context, g graph.Graph, opts Options) (map[string]graph.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()
	passes := l.Passes
	if passes <= 0 {
		passes = transform.DefaultOrderPasses
	}

	d, _ := dag.FromGraph(g)
	orders, _ := transform.Layer(d, passes)
	if err := checkLayered(d); err != nil {
		return nil, err
	}
	rows := d.RowIDs()

	primaryExt, secondaryExt := opts.NodeWidth, opts.NodeHeight
	if !opts.Direction.Horizontal() {
		primaryExt, secondaryExt = opts.NodeHeight, opts.NodeWidth
	}
	rankStep := primaryExt + opts.RankSep
	slotStep := secondaryExt + opts.NodeSep
	primaryTotal := float64(len(rows))*rankStep - opts.RankSep

	widest := 0
	for _, r := range rows {
		widest = max(widest, len(orders[r]))
	}

	centers := make(map[string]graph.Position, d.NodeCount())
	for rank, r := range rows {
		ids := orders[r]
		offset := float64(widest-len(ids)) * slotStep / 2
		primary := float64(rank)*rankStep + primaryExt/2
		if opts.Direction.Reversed() {
			primary = primaryTotal - primary
		}
		for slot, id := range ids {
			if n, ok := d.Node(id); !ok || n.IsSubdivider() {
				continue
			}
			secondary := offset + float64(slot)*slotStep + secondaryExt/2
			if opts.Direction.Horizontal() {
				centers[id] = graph.Position{X: primary, Y: secondary}
			} else {
				centers[id] = graph.Position{X: secondary, Y: primary}
			}
		}
	}
	return centers, nil
}

// checkLayered rejects a layered graph that still has a cycle or an edge
// that does not join neighbouring rows.
func checkLayered(d *dag.DAG) error {
	if err := d.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeLayoutFailed, err, "layering left an invalid graph")
	}
	return nil
}
