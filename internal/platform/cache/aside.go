package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Aside implements the cache-aside read path for one entity kind.
// V is the read-only snapshot type stored in the cache; it is never the
// store-backed entity itself.
type Aside[V any] struct {
	cache Cache
	kind  string
	ttl   time.Duration
}

// NewAside creates a cache-aside helper for kind ("user", "project", "issue").
// If ttl is 0 or negative, DefaultTTL is used.
func NewAside[V any](c Cache, kind string, ttl time.Duration) *Aside[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Aside[V]{cache: c, kind: kind, ttl: ttl}
}

// Key returns the cache key for id.
func (a *Aside[V]) Key(id string) string {
	return Key(a.kind, id)
}

// TTL returns the configured snapshot lifetime. It is also the staleness bound
// for snapshots that are never explicitly invalidated.
func (a *Aside[V]) TTL() time.Duration {
	return a.ttl
}

// Load returns the cached snapshot for id. On a miss it calls load, caches the
// result and returns it. Errors from load (including not-found) are returned as-is
// and nothing is cached. Cache failures never reach the caller.
func (a *Aside[V]) Load(ctx context.Context, id string, load func(ctx context.Context) (V, error)) (V, error) {
	key := a.Key(id)

	// 1) Check cache
	if v, ok := a.lookup(ctx, key); ok {
		return v, nil
	}

	// 2) Fallback to the store
	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	// 3) Store the snapshot (best effort)
	a.store(ctx, key, v)
	return v, nil
}

// Invalidate deletes the snapshot for id. It is attempted exactly once and
// failures are only logged.
func (a *Aside[V]) Invalidate(ctx context.Context, id string) {
	if a.cache == nil {
		return
	}
	key := a.Key(id)
	if err := a.cache.Delete(ctx, key); err != nil && !errors.Is(err, ErrUnavailable) {
		slog.Warn("cache invalidation failed", "key", key, "error", err)
	}
}

func (a *Aside[V]) lookup(ctx context.Context, key string) (V, bool) {
	var zero V
	if a.cache == nil {
		return zero, false
	}
	b, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) && !errors.Is(err, ErrUnavailable) {
			slog.Warn("cache read failed, falling back to store", "key", key, "error", err)
		}
		return zero, false
	}
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		// Delete corrupted cache entry
		slog.Warn("discarding corrupted cache entry", "key", key, "error", err)
		if err := a.cache.Delete(ctx, key); err != nil && !errors.Is(err, ErrUnavailable) {
			slog.Warn("cache delete failed", "key", key, "error", err)
		}
		return zero, false
	}
	return v, true
}

func (a *Aside[V]) store(ctx context.Context, key string, v V) {
	if a.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("cache snapshot encoding failed", "key", key, "error", err)
		return
	}
	if err := a.cache.Set(ctx, key, b, a.ttl); err != nil && !errors.Is(err, ErrUnavailable) {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidator drops a cached snapshot by id.
type Invalidator interface {
	Invalidate(ctx context.Context, id string)
}

// CommitThenInvalidate runs the store commit and, only if it succeeds, invalidates
// the snapshot for id. The order is fixed: invalidating first would let a concurrent
// reader repopulate the cache with pre-commit state.
//
// The invalidation ignores cancellation of ctx: once the write is committed the
// stale snapshot must go even if the client has already hung up.
func CommitThenInvalidate[T any](ctx context.Context, inv Invalidator, id string, commit func(ctx context.Context) (T, error)) (T, error) {
	out, err := commit(ctx)
	if err != nil {
		return out, err
	}
	inv.Invalidate(context.WithoutCancel(ctx), id)
	return out, nil
}
