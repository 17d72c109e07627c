// Package cache provides a small read-through cache with per-entry expiry.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache holds values of type V keyed by string. Concurrent loads of the same
// key share one call to the loader.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	group   singleflight.Group
	gen     uint64
	now     func() time.Time

	// LoadTimeout bounds a shared load, which runs detached from any single
	// caller's cancellation.
	LoadTimeout time.Duration
}

// DefaultLoadTimeout is the LoadTimeout of caches built by New.
const DefaultLoadTimeout = 30 * time.Second

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries:     make(map[string]entry[V]),
		now:         time.Now,
		LoadTimeout: DefaultLoadTimeout,
	}
}

// Get returns the cached value for key if it has not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result for ttl. Errors from load are returned and not cached.
//
// Concurrent callers share one load. The load gets ctx without its
// cancellation, bounded by LoadTimeout, so one caller going away does not fail
// the others; each caller still stops waiting when its own ctx is done.
// A load that overlaps Purge or Delete is returned to its callers but not
// stored.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (V, error)) (V, error) {
	var zero V
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	gen := c.generation()
	ch := c.group.DoChan(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.LoadTimeout)
		defer cancel()

		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.setIfGeneration(key, v, ttl, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

func (c *Cache[V]) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *Cache[V]) setIfGeneration(key string, value V, ttl time.Duration, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// Delete drops key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gen++
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.gen++
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
