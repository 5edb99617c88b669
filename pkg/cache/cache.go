// Package cache stores computed layouts between runs.
//
// Layout is deterministic in the graph and its options, so a result can be
// reused whenever both are unchanged. The [Cache] interface has three
// backends:
//
//   - [FileCache]: JSON files under a local directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the HTTP server
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys come from a [Keyer] so that callers never build key strings by hand:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(graphJSON), cache.LayoutKeyOpts{
//	    Engine:    "graphviz",
//	    Direction: "LR",
//	})
//
// Entries are raw bytes. [GetJSON] and [SetJSON] handle the common case of
// JSON-encoded values.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration.
//
// Get reports a miss with hit == false and a nil error; errors are reserved
// for backend failures. A ttl of zero stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
