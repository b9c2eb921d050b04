// Package cache provides the named read-through caches in front of the
// entity store. Entries are keyed by lookup identifier plus one fixed key for
// the "get all" query, and invalidation is always whole-cache: any mutation
// on the owning entity type evicts everything, and a periodic sweeper evicts
// everything again regardless of mutations.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
)

// KeyAll is the cache key of the "get all" query result.
const KeyAll = "all"

// KeyID returns the cache key for a single-entity lookup.
func KeyID(id int) string {
	return "id:" + strconv.Itoa(id)
}

// Cache is one named key-value cache. Values are JSON-encoded so the memory
// and Redis implementations behave identically, and so cached values never
// alias live service data.
type Cache interface {
	Name() string
	// Get decodes the entry for key into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	// EvictAll drops every entry. Coarse on purpose: tracking which keys a
	// graph mutation affects would cost as much as recomputing them.
	EvictAll(ctx context.Context) error
}

// MemoryCache is the in-process Cache used in tests and single-instance
// deployments without Redis.
type MemoryCache struct {
	name    string
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache(name string) *MemoryCache {
	return &MemoryCache{name: name, entries: make(map[string][]byte)}
}

func (c *MemoryCache) Name() string { return c.name }

func (c *MemoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	b, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = b
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) EvictAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.mu.Unlock()
	return nil
}

// Len reports the number of live entries; used by tests.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
