package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest wraps a mock rueidis client with a fast readiness interval.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c, readyInterval: time.Millisecond}
}
