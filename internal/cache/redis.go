package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/db"
)

// kvStore is the consumer interface for the shared cache backend (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Redis stores JSON-encoded values in a key-value store. Expiry is enforced
// by the server. Backend failures read as misses and are logged.
type Redis[V any] struct {
	store  kvStore
	prefix string
	logger *zap.Logger
}

// NewRedis creates a cache whose keys live under prefix.
func NewRedis[V any](store kvStore, prefix string, logger *zap.Logger) *Redis[V] {
	return &Redis[V]{store: store, prefix: prefix, logger: logger}
}

// Get decodes a stored value.
func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	k := r.prefix + NormalizeKey(key)

	data, err := r.store.Get(ctx, k)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Cache read failed", zap.String("key", k), zap.Error(err))
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		r.logger.Warn("Cache entry undecodable", zap.String("key", k), zap.Error(err))
		return zero, false
	}
	return v, true
}

// Set encodes and stores value. A non-positive ttl deletes the key instead.
func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	k := r.prefix + NormalizeKey(key)

	if ttl <= 0 {
		if err := r.store.Del(ctx, k); err != nil {
			r.logger.Warn("Cache delete failed", zap.String("key", k), zap.Error(err))
		}
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("Cache entry unencodable", zap.String("key", k), zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, k, data, ttl); err != nil {
		r.logger.Warn("Cache write failed", zap.String("key", k), zap.Error(err))
	}
}

// Clear deletes every key under the prefix.
func (r *Redis[V]) Clear(ctx context.Context) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		r.logger.Warn("Cache scan failed", zap.String("prefix", r.prefix), zap.Error(err))
		return
	}
	for _, k := range keys {
		if err := r.store.Del(ctx, k); err != nil {
			r.logger.Warn("Cache delete failed", zap.String("key", k), zap.Error(err))
		}
	}
}
