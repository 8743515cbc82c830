// Package cache provides the query-keyed TTL caches shared across requests.
package cache

import (
	"context"
	"strings"
	"time"
)

// Store is a TTL cache keyed by normalized query text.
// Implementations are safe for concurrent use.
type Store[V any] interface {
	// Get returns the cached value, or false on a miss or an expired entry.
	Get(ctx context.Context, key string) (V, bool)
	// Set stores value for ttl. A non-positive ttl stores nothing retrievable.
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	// Clear drops every entry.
	Clear(ctx context.Context)
}

// NormalizeKey trims and lower-cases a query so "  Test  " and "test" share an entry.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Nop is a cache that never hits. Used when caching is disabled.
type Nop[V any] struct{}

// Get always misses.
func (Nop[V]) Get(context.Context, string) (V, bool) {
	var zero V
	return zero, false
}

// Set discards the value.
func (Nop[V]) Set(context.Context, string, V, time.Duration) {}

// Clear is a no-op.
func (Nop[V]) Clear(context.Context) {}
