// Package cache provides the time-expiring file content cache.
// Supports an in-memory backend for single-instance deployments and a
// Redis backend for multi-instance deployments.
package cache

import (
	"context"
	"strings"
	"time"
)

// DefaultTTL is the staleness window for cached file content.
const DefaultTTL = 5 * time.Minute

// Entry is cached file content: base64 payload, resolved content type, and
// the time it was fetched. Entries are only written after a successful,
// fully-read upstream response.
type Entry struct {
	Content     string    `json:"content"`
	ContentType string    `json:"content_type"`
	CachedAt    time.Time `json:"cached_at"`
}

// Cache defines the interface for file content cache storage.
// Implementations must be safe for concurrent use. A Get whose entry is
// older than the TTL behaves as a miss; staleness is checked at read time,
// not by background eviction.
type Cache interface {
	// Get retrieves the entry for key. Returns nil, nil on a miss or a
	// stale entry.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores the entry under key.
	Set(ctx context.Context, key string, entry *Entry) error

	// Invalidate removes the entry for key, if present.
	Invalidate(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "_", `\_`)

// KeyFor builds a composite cache key from scope identifiers. Components
// are joined with "_"; any separator or escape character inside a
// component is escaped first, so two tuples that differ in any component
// always produce distinct keys even for adversarial ids.
func KeyFor(ids ...string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = keyEscaper.Replace(id)
	}
	return strings.Join(escaped, "_")
}
