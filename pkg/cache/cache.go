// Package cache provides byte-level caching for HTTP responses and POM
// documents.
//
// The [Cache] interface abstracts over storage backends:
//   - file: On-disk cache for CLI usage (the default)
//   - memory: In-process cache for tests and short-lived runs
//   - redis: Redis-backed cache for serve mode with multiple instances
//   - null: No-op cache when caching is disabled
//
// Keys are arbitrary strings; backends hash them as needed. Entries carry a
// per-entry TTL. Use [Namespace] to scope keys per data source
// ("pom:", "metadata:", ...) without collisions.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw bytes under string keys with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss
	// (including expired entries).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources (connections, file handles).
	Close() error
}

// HashKey derives a filesystem- and backend-safe key from an arbitrary
// string. Long keys (full URLs) are acceptable.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

// Namespaced wraps a Cache, prefixing every key.
type Namespaced struct {
	inner  Cache
	prefix string
}

// Namespace returns a view of c whose keys are all prefixed.
// Prefixes compose: Namespace(Namespace(c, "a:"), "b:") yields "a:b:" keys.
func Namespace(c Cache, prefix string) *Namespaced {
	return &Namespaced{inner: c, prefix: prefix}
}

// Get retrieves a value under the prefixed key.
func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

// Set stores a value under the prefixed key.
func (n *Namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, data, ttl)
}

// Delete removes the prefixed key.
func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

// Close closes the underlying cache.
func (n *Namespaced) Close() error { return n.inner.Close() }

var _ Cache = (*Namespaced)(nil)
