package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache implements Cache with an in-process map. It lives for the
// process lifetime and is deliberately unbounded; entries expire lazily at
// read time. Suitable for single-instance deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache. A non-positive ttl falls back
// to DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get retrieves the entry for key. Entries older than the TTL are treated
// as misses.
func (c *MemoryCache) Get(_ context.Context, key string) (*Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, nil
	}

	return &entry, nil
}

// Set stores the entry under key. A zero CachedAt is stamped with the
// current time.
func (c *MemoryCache) Set(_ context.Context, key string, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *entry
	if stored.CachedAt.IsZero() {
		stored.CachedAt = c.now()
	}
	c.entries[key] = stored
	return nil
}

// Invalidate removes the entry for key.
func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close is a no-op for the memory cache.
func (c *MemoryCache) Close() error {
	return nil
}
