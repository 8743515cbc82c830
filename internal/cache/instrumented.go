package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented counts hits and misses of a wrapped cache.
type Instrumented[V any] struct {
	inner  Store[V]
	name   string
	lookup *prometheus.CounterVec
}

// NewInstrumented wraps inner. lookup is a counter vec with labels ("cache", "result").
func NewInstrumented[V any](inner Store[V], name string, lookup *prometheus.CounterVec) *Instrumented[V] {
	return &Instrumented[V]{inner: inner, name: name, lookup: lookup}
}

// Get delegates and records the outcome.
func (c *Instrumented[V]) Get(ctx context.Context, key string) (V, bool) {
	v, ok := c.inner.Get(ctx, key)
	if c.lookup != nil {
		result := "miss"
		if ok {
			result = "hit"
		}
		c.lookup.WithLabelValues(c.name, result).Inc()
	}
	return v, ok
}

// Set delegates.
func (c *Instrumented[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	c.inner.Set(ctx, key, value, ttl)
}

// Clear delegates.
func (c *Instrumented[V]) Clear(ctx context.Context) {
	c.inner.Clear(ctx)
}
