// Package observability decouples pipedag's packages from any metrics
// backend. Validation, layout, the cache and the HTTP server report events
// to whichever hooks are registered; by default they go nowhere.
//
// serve wires the Prometheus implementation:
//
//	hooks, err := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	if err != nil {
//	    return err
//	}
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	observability.SetHTTPHooks(hooks)
//
// and the runner reports each layout:
//
//	observability.Pipeline().OnLayoutStart(ctx, engine, len(g.Nodes))
//	// ... run the engine ...
//	observability.Pipeline().OnLayoutComplete(ctx, engine, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from validation and layout.
type PipelineHooks interface {
	// OnValidate records one validation. violations holds the codes of the
	// failed rules and is empty for a valid pipeline.
	OnValidate(ctx context.Context, nodeCount int, violations []string, duration time.Duration)

	OnLayoutStart(ctx context.Context, engine string, nodeCount int)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives layout cache lookups and writes. keyType names the
// kind of entry, currently always "layout".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events for requests served by the HTTP API.
type HTTPHooks interface {
	// OnResponse records a completed request. route is the matched pattern,
	// not the raw path.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnValidate(context.Context, int, []string, time.Duration)        {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                     {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards request events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

// registry holds the hooks currently in effect. The zero value is unusable;
// start from defaults().
type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var global = newRegistry()

func newRegistry() *registry {
	r := &registry{}
	r.reset()
	return r
}

func (r *registry) reset() {
	r.mu.Lock()
	r.pipeline, r.cache, r.http = NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}
	r.mu.Unlock()
}

// store assigns h to *slot unless h is nil.
func store[T comparable](r *registry, slot *T, h T) {
	var zero T
	if h == zero {
		return
	}
	r.mu.Lock()
	*slot = h
	r.mu.Unlock()
}

func load[T any](r *registry, slot *T) T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *slot
}

// SetPipelineHooks registers pipeline hooks. A nil value is ignored.
func SetPipelineHooks(h PipelineHooks) { store(global, &global.pipeline, h) }

// SetCacheHooks registers cache hooks. A nil value is ignored.
func SetCacheHooks(h CacheHooks) { store(global, &global.cache, h) }

// SetHTTPHooks registers HTTP hooks. A nil value is ignored.
func SetHTTPHooks(h HTTPHooks) { store(global, &global.http, h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return load(global, &global.pipeline) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return load(global, &global.cache) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return load(global, &global.http) }

// Reset puts the no-op hooks back. Tests that register hooks defer it.
func Reset() { global.reset() }
