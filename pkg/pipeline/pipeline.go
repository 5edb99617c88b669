// Package pipeline runs validation and layout for the CLI and HTTP server.
//
// Validation is always computed fresh, layout results are cached, and every
// run emits observability events.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	defer runner.Close()
//
//	res := runner.Validate(ctx, g)
//	if !res.Valid {
//	    fmt.Println(res.Banner())
//	}
//
//	laidOut, hit, err := runner.Layout(ctx, g, layout.Options{Direction: layout.TopToBottom})
//
// # Caching
//
// Layout keys hash only what the engines read: node IDs and edge endpoints
// in order, plus the layout options. Renaming a node or changing its type
// reuses the cached layout. The cached value is the position map, which is
// applied to a copy of the caller's graph on a hit. Cache failures are
// logged and the layout is recomputed.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipedag/pkg/cache"
	"github.com/matzehuels/pipedag/pkg/graph"
	"github.com/matzehuels/pipedag/pkg/layout"
	"github.com/matzehuels/pipedag/pkg/observability"
	"github.com/matzehuels/pipedag/pkg/validate"
)

// DefaultTTL is the layout cache lifetime set by NewRunner. A zero
// Runner.TTL stores entries without expiration.
const DefaultTTL = 7 * 24 * time.Hour

const keyTypeLayout = "layout"

// Runner executes validation and layout with caching.
//
// The Runner holds no per-call state, so one value may serve concurrent
// requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration

	apply func(context.Context, graph.Graph, layout.Options) (graph.Graph, error)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
		apply:  layout.ApplyGraph,
	}
}

// Validate checks g against the structural rules. It is never cached.
func (r *Runner) Validate(ctx context.Context, g graph.Graph) validate.Result {
	start := time.Now()
	res := validate.ValidateGraph(g)
	elapsed := time.Since(start)

	codes := make([]string, len(res.Violations))
	for i, rule := range res.Violations {
		codes[i] = rule.String()
	}
	observability.Pipeline().OnValidate(ctx, len(g.Nodes), codes, elapsed)

	r.Logger.Debug("validated pipeline",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"valid", res.Valid,
		"violations", codes,
		"duration", elapsed)
	return res
}

// Layout positions the nodes of g and reports whether the result came from
// the cache. Option errors are returned before the cache is consulted.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts layout.Options) (graph.Graph, bool, error) {
	opts = opts.WithDefaults()
	dir, err := layout.ParseDirection(string(opts.Direction))
	if err != nil {
		return graph.Graph{}, false, err
	}
	engine, err := layout.LookupEngine(opts.Engine)
	if err != nil {
		return graph.Graph{}, false, err
	}
	opts.Direction = dir
	opts.Engine = engine.Name()

	if len(g.Nodes) == 0 {
		return g.Clone(), false, nil
	}

	key := r.Keyer.LayoutKey(Fingerprint(g), cache.LayoutKeyOpts{
		Engine:     opts.Engine,
		Direction:  string(opts.Direction),
		NodeWidth:  opts.NodeWidth,
		NodeHeight: opts.NodeHeight,
		NodeSep:    opts.NodeSep,
		RankSep:    opts.RankSep,
	})

	if out, ok := r.fromCache(ctx, key, g); ok {
		observability.Cache().OnCacheHit(ctx, keyTypeLayout)
		r.Logger.Debug("layout cache hit", "engine", opts.Engine, "nodes", len(g.Nodes))
		return out, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeLayout)

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Engine, len(g.Nodes))
	start := time.Now()
	apply := r.apply
	if apply == nil {
		apply = layout.ApplyGraph
	}
	out, err := apply(ctx, g, opts)
	elapsed := time.Since(start)
	hooks.OnLayoutComplete(ctx, opts.Engine, elapsed, err)
	if err != nil {
		return graph.Graph{}, false, err
	}

	r.Logger.Debug("computed layout",
		"engine", opts.Engine,
		"direction", opts.Direction,
		"nodes", len(out.Nodes),
		"duration", elapsed)

	r.store(ctx, key, out)
	return out, false, nil
}

func (r *Runner) fromCache(ctx context.Context, key string, g graph.Graph) (graph.Graph, bool) {
	var positions map[string]graph.Position
	if err := cache.GetJSON(ctx, r.Cache, key, &positions); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.Logger.Warn("layout cache read failed", "err", err)
		}
		return graph.Graph{}, false
	}

	out := g.Clone()
	for i, n := range out.Nodes {
		p, ok := positions[n.ID]
		if !ok {
			return graph.Graph{}, false
		}
		out.Nodes[i].Position = p
	}
	return out, true
}

func (r *Runner) store(ctx context.Context, key string, g graph.Graph) {
	positions := make(map[string]graph.Position, len(g.Nodes))
	for _, n := range g.Nodes {
		positions[n.ID] = n.Position
	}
	data, err := json.Marshal(positions)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("layout cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeLayout, len(data))
}

// Fingerprint hashes the parts of g that influence layout: node IDs and
// edge endpoints, in order.
func Fingerprint(g graph.Graph) string {
	sig := struct {
		Nodes []string    `json:"nodes"`
		Edges [][2]string `json:"edges"`
	}{
		Nodes: g.NodeIDs(),
		Edges: make([][2]string, len(g.Edges)),
	}
	for i, e := range g.Edges {
		sig.Edges[i] = [2]string{e.Source, e.Target}
	}
	data, _ := json.Marshal(sig)
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
