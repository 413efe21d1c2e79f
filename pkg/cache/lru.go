// Package cache provides the bounded, goroutine-safe caches used by the
// entity resolvers.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Stats is a point-in-time view of one cache's counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// LRU is a fixed-capacity least-recently-used cache. It is safe for
// concurrent use; an insert or eviction never blocks readers of other keys
// for longer than the underlying lock hold.
type LRU[K comparable, V any] struct {
	name  string
	inner *lru.Cache[K, V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewLRU creates a cache holding at most size entries. The name labels the
// cache's prometheus series.
func NewLRU[K comparable, V any](name string, size int) (*LRU[K, V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache %s: size must be positive, got %d", name, size)
	}
	inner, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	return &LRU[K, V]{name: name, inner: inner}, nil
}

// Get returns the cached value and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.inner.Get(key)
	if ok {
		c.hits.Add(1)
		CacheRequests.WithLabelValues(c.name, "hit").Inc()
	} else {
		c.misses.Add(1)
		CacheRequests.WithLabelValues(c.name, "miss").Inc()
	}
	return v, ok
}

// Add stores a value, evicting the least recently used entry when full.
func (c *LRU[K, V]) Add(key K, value V) {
	if evicted := c.inner.Add(key, value); evicted {
		c.evictions.Add(1)
		CacheEvictions.WithLabelValues(c.name).Inc()
	}
}

// Stats returns the cache's counters.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.inner.Len(),
	}
}
