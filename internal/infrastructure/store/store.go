package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
)

// connectTimeout bounds the initial connectivity check.
const connectTimeout = 10 * time.Second

// Store wraps a pgx connection pool to the time-series store.
//
// The pool is the only resource shared across concurrently-handled API
// requests and the collector; pgx acquires a connection per operation and
// returns it to the pool on every exit path, which is exactly the
// discipline the persister depends on.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Store struct {
	Pool *pgxpool.Pool

	timescale bool
}

// Open connects to the time-series store and verifies connectivity.
//
// Parameters:
//   - ctx: Context for the connection attempt
//   - cfg: Store configuration from config.yaml
//
// Returns:
//   - *Store: Connected store ready for use
//   - error: If the URL is invalid or the store is unreachable
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return &Store{
		Pool:      pool,
		timescale: cfg.Timescale,
	}, nil
}

// EnsureSchema creates the readings table and its index if absent, and
// promotes the table to a hypertable when Timescale support is enabled.
//
// Bootstrap DDL only — anything beyond this (continuous aggregates,
// compression policies) is managed outside the service.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS readings (
			"time"      TIMESTAMPTZ NOT NULL,
			sender      TEXT NOT NULL,
			location    TEXT NOT NULL,
			air_quality INTEGER NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			humidity    INTEGER NOT NULL,
			nitrogen    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS readings_time_idx ON readings ("time" DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}

	if s.timescale {
		// if_not_exists makes this a no-op on every start after the first.
		if _, err := s.Pool.Exec(ctx,
			`SELECT create_hypertable('readings', 'time', if_not_exists => TRUE)`,
		); err != nil {
			return fmt.Errorf("creating hypertable: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the store is accessible and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
// It should be called when the application shuts down.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}
