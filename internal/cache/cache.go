// Package cache provides a small TTL cache for remote resources.
//
// Entries go stale after the staleness window and are refetched on next
// read; writes to the underlying resource must invalidate explicitly.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the staleness window for cached resources. Five minutes is
// deliberate: long enough to absorb screen-to-screen navigation, short
// enough that another device's writes show up within a session.
const DefaultTTL = 5 * time.Minute

// Keys for the logical resources this client caches.
const (
	KeyHistory    = "quizHistory"
	KeyCategories = "categories"
)

type entry[V any] struct {
	value   V
	fetched time.Time
}

// Cache is a keyed TTL cache for values of one resource type.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time
}

// New creates a cache with the given staleness window; ttl <= 0 uses
// DefaultTTL.
func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the cached value if present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetched) > c.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores a freshly fetched value.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, fetched: c.now()}
}

// Invalidate drops one key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every entry, e.g. on an auth transition.
func (c *Cache[V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}
