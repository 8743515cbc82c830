package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries bounds the in-memory cache when no size is configured.
const DefaultMaxEntries = 10_000

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process LRU with per-entry expiry checked lazily on read.
type Memory[V any] struct {
	mu    sync.Mutex
	items *lru.Cache[string, entry[V]]
	now   func() time.Time
}

// NewMemory creates a memory cache holding at most maxEntries keys.
func NewMemory[V any](maxEntries int) (*Memory[V], error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	items, err := lru.New[string, entry[V]](maxEntries)
	if err != nil {
		return nil, err //nolint:wrapcheck // constructor passthrough
	}
	return &Memory[V]{items: items, now: time.Now}, nil
}

// Get returns a live entry. Expired entries are removed on the way out.
func (m *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	k := NormalizeKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	if !m.now().Before(e.expiresAt) {
		m.items.Remove(k)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value until now+ttl.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	k := NormalizeKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.items.Add(k, entry[V]{value: value, expiresAt: m.now().Add(ttl)})
}

// Clear drops every entry.
func (m *Memory[V]) Clear(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.Purge()
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Len()
}
