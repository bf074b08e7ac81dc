// Package reportcache memoizes report results for a bounded time. Concurrent
// misses on one key share a single computation, and Invalidate discards both
// stored results and any computation still in flight.
package reportcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

type cached struct {
	value      any
	computedAt time.Time
	generation uint64
}

// Cache is safe for concurrent use. Stored values are shared between callers
// and must be treated as read-only.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.RWMutex
	entries    map[string]cached
	generation uint64

	group singleflight.Group
}

// New returns a cache holding results for ttl. A ttl of zero or less turns
// caching off and every Get computes.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cached),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it is younger than the TTL and
// was computed after the last invalidation. Otherwise it runs compute, at
// most once per key at a time, and stores the result. Errors are not cached.
func (c *Cache) Get(ctx context.Context, key string, compute func(context.Context) (any, error)) (any, error) {
	if c.ttl <= 0 {
		return compute(ctx)
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	gen := c.generation
	c.mu.RUnlock()

	if ok && entry.generation == gen && c.now().Sub(entry.computedAt) < c.ttl {
		return entry.value, nil
	}

	// The flight runs on behalf of every waiter, so it must not die with the
	// first caller's context.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey(gen, key), func() (any, error) {
		startedAt := c.now()
		value, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == gen {
			c.entries[key] = cached{value: value, computedAt: startedAt, generation: gen}
		}
		c.mu.Unlock()
		return value, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops every stored result. Computations that started before the
// call still answer their waiters but are not stored.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.generation++
	clear(c.entries)
	c.mu.Unlock()
}

// Len reports how many results are stored, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func flightKey(gen uint64, key string) string {
	return fmt.Sprintf("%d|%s", gen, key)
}

// Fetch is Get with a typed result.
func Fetch[V any](ctx context.Context, c *Cache, key string, compute func(context.Context) (V, error)) (V, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return compute(ctx)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	typed, ok := v.(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("reportcache: key %q holds %T", key, v)
	}
	return typed, nil
}

// Key joins a report name and its parameters.
func Key(report string, params ...string) string {
	key := report
	for _, p := range params {
		key += "|" + p
	}
	return key
}
