package layout

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pipedag/pkg/graph"
)

// pointsPerInch converts layout units to the inches graphviz expects for
// sizes and separations. Positions come back in points, so one layout unit
// is one point.
const pointsPerInch = 72.0

// Graphviz lays graphs out with graphviz dot, run in-process by go-graphviz.
// Each call starts its own graphviz runtime.
type Graphviz struct{}

// Name returns "graphviz".
func (Graphviz) Name() string { return EngineGraphviz }

// Layout renders g through dot and reads back node centers from the
// positioned graph.
func (Graphviz) Layout(ctx context.Context, g graph.Graph, opts Options) (map[string]graph.Position, error) {
	opts = opts.WithDefaults()
	dot, names := ToDOT(g, opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	in, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer in.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, in, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := graphviz.ParseBytes(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse positioned DOT: %w", err)
	}
	defer out.Close()

	bb, err := parseFloats(out.GetStr("bb"), 4)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}
	llx, ury := bb[0], bb[3]

	centers := make(map[string]graph.Position, len(names))
	for id, name := range names {
		n, err := out.NodeByName(name)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
		if n == nil {
			return nil, fmt.Errorf("node %q missing from graphviz output", id)
		}
		pos, err := parseFloats(strings.TrimSuffix(n.GetStr("pos"), "!"), 2)
		if err != nil {
			return nil, fmt.Errorf("node %q position: %w", id, err)
		}
		// graphviz puts the origin bottom-left with y growing up.
		centers[id] = graph.Position{X: pos[0] - llx, Y: ury - pos[1]}
	}
	return centers, nil
}

// ToDOT converts g to a DOT digraph sized for layout. Nodes are emitted as
// fixed-size, unlabeled boxes named n0, n1, ... in first-occurrence order,
// which keeps arbitrary IDs out of DOT quoting. The returned map gives the
// DOT name of each node ID. Edges whose endpoints are not nodes are skipped.
func ToDOT(g graph.Graph, opts Options) (string, map[string]string) {
	opts = opts.WithDefaults()
	names := make(map[string]string, len(g.Nodes))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Direction)
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, width=%s, height=%s, label=\"\"];\n",
		inches(opts.NodeWidth), inches(opts.NodeHeight))
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		if _, seen := names[n.ID]; seen {
			continue
		}
		name := "n" + strconv.Itoa(len(names))
		names[n.ID] = name
		fmt.Fprintf(&buf, "  %s;\n", name)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		src, okS := names[e.Source]
		dst, okD := names[e.Target]
		if !okS || !okD {
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", src, dst)
	}

	buf.WriteString("}\n")
	return buf.String(), names
}

func inches(units float64) string {
	return strconv.FormatFloat(units/pointsPerInch, 'f', 4, 64)
}

func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", want, s)
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
