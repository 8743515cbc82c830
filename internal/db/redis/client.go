package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	retry "github.com/sethvargo/go-retry"

	"github.com/kailas-cloud/furnsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultReadyInterval is the pause between readiness pings.
const DefaultReadyInterval = 100 * time.Millisecond

// Config holds connection parameters for the product search instance.
type Config struct {
	Addrs         []string
	Username      string
	Password      string
	DB            int
	ReadyInterval time.Duration
}

// Store serves product search and the query caches from one Redis Stack instance.
type Store struct {
	client        rueidis.Client
	readyInterval time.Duration
}

// NewStore connects to Redis. Client-side caching stays off: search results
// and cache entries carry their own TTLs.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   "furnsearch",
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH parsing expects RESP2 arrays
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, readyInterval: cfg.ReadyInterval}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings at a fixed interval until Redis answers or timeout
// elapses. The last ping error is returned on timeout.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	interval := s.readyInterval
	if interval <= 0 {
		interval = DefaultReadyInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var last error
	err := retry.Do(ctx, retry.NewConstant(interval), func(ctx context.Context) error {
		if last = s.Ping(ctx); last != nil {
			return retry.RetryableError(last)
		}
		return nil
	})
	if err != nil {
		if last == nil {
			last = err
		}
		return fmt.Errorf("timeout waiting for database: %w", last)
	}
	return nil
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
