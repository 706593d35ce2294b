// Package cache provides a small in-memory TTL cache used to front
// progress reads for the dashboard. It is an optimization only: callers
// must always be able to bypass it and recompute from the repository.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is a concurrency-safe map with per-entry expiry
type Cache struct {
	mu    sync.RWMutex
	store map[string]entry
	ttl   time.Duration
}

// New creates a Cache with the given default TTL. A non-positive TTL
// disables caching entirely: Set becomes a no-op and Get always misses.
func New(ttl time.Duration) *Cache {
	return &Cache{
		store: make(map[string]entry),
		ttl:   ttl,
	}
}

// Get returns the cached value for key, or false if absent or expired.
// Expired entries are removed lazily.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key with the default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value under key with an explicit TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// Invalidate removes a key
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}
