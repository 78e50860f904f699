package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/reading"
)

const (
	// latestKey is the single key the cache uses. One appliance, one entry.
	latestKey = "hearth:reading:latest"

	// connectTimeout bounds the startup ping.
	connectTimeout = 5 * time.Second
)

// Cache holds the most recent reading in Redis.
//
// All methods are safe for concurrent use; go-redis manages its own
// connection pool.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect establishes a connection to the Redis server and verifies it
// with a ping.
//
// Parameters:
//   - cfg: Cache configuration from config.yaml
//   - ttl: Entry lifetime; entries expire rather than outlive the collector
//
// Returns:
//   - *Cache: Connected cache ready for use
//   - error: ErrDisabled if the cache is off, or a connection error
func Connect(cfg config.CacheConfig, ttl time.Duration) (*Cache, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// SetLatest stores a reading as the current entry, replacing any previous
// one and resetting the TTL.
//
// Cache writes are advisory. Callers log failures and move on; the store
// remains the system of record.
func (c *Cache) SetLatest(ctx context.Context, rd reading.Reading) error {
	data, err := json.Marshal(rd)
	if err != nil {
		return fmt.Errorf("encoding reading: %w", err)
	}

	if err := c.client.Set(ctx, latestKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching reading: %w", err)
	}
	return nil
}

// Latest returns the cached reading.
//
// Returns:
//   - *reading.Reading: The cached reading, or nil with ErrNoEntry on a miss
func (c *Cache) Latest(ctx context.Context) (*reading.Reading, error) {
	data, err := c.client.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, fmt.Errorf("fetching cached reading: %w", err)
	}

	var rd reading.Reading
	if err := json.Unmarshal(data, &rd); err != nil {
		return nil, fmt.Errorf("decoding cached reading: %w", err)
	}
	return &rd, nil
}

// HealthCheck verifies the Redis connection is alive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Cache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}
	return nil
}
