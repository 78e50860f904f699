package reading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// latestWindow is how far back Latest will look for a reading before
// declaring the collector silent.
const latestWindow = time.Hour

// querier is the slice of pgxpool.Pool the repository uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists and aggregates readings in the time-series store.
//
// Every method acquires a pooled connection, uses it, and releases it on
// all exit paths — success, empty result, and error alike. Leaked
// connections under repeated store failures are the hazard this layer
// exists to prevent.
type Repository struct {
	pool querier
}

// NewRepository creates a Repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one reading as a single parameterized insert.
//
// Returns:
//   - error: ErrNotRecorded if no row was affected, or the store error.
//     The caller decides whether to swallow it; this layer only reports.
func (r *Repository) Insert(ctx context.Context, rd Reading) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO readings ("time", sender, location, air_quality, temperature, humidity, nitrogen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rd.CapturedAt,
		rd.Source,
		rd.Location,
		rd.AirQuality,
		rd.TemperatureCelsius,
		rd.HumidityPercent,
		rd.NitrogenDioxide,
	)
	if err != nil {
		return fmt.Errorf("inserting reading: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return ErrNotRecorded
	}
	return nil
}

// BucketSeries aggregates readings over the span's lookback window.
//
// Rows are fetched in descending bucket order (the store's natural order
// for recent-first time queries) and reversed before returning, so the
// result is always ascending — oldest bucket first. Display services
// depend on that ordering.
//
// An empty window is not an error: the result is an empty, non-nil slice.
func (r *Repository) BucketSeries(ctx context.Context, span Span) ([]Bucket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT time_bucket(make_interval(secs => $1), "time") AS bucket,
		        avg(temperature)::float8,
		        avg(humidity)::float8,
		        min(air_quality),
		        avg(nitrogen)::float8
		 FROM readings
		 WHERE "time" > now() - make_interval(secs => $2)
		 GROUP BY bucket
		 ORDER BY bucket DESC`,
		span.Bucket.Seconds(),
		span.Lookback.Seconds(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying buckets: %w", err)
	}
	defer rows.Close()

	buckets := make([]Bucket, 0, span.Lookback/span.Bucket)
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.BucketStart, &b.Temperature, &b.Humidity, &b.AirQuality, &b.Nitrogen); err != nil {
			return nil, fmt.Errorf("scanning bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buckets: %w", err)
	}

	reverseBuckets(buckets)
	return buckets, nil
}

// reverseBuckets flips descending store order into the ascending contract.
func reverseBuckets(buckets []Bucket) {
	for i, j := 0, len(buckets)-1; i < j; i, j = i+1, j-1 {
		buckets[i], buckets[j] = buckets[j], buckets[i]
	}
}

// Latest returns the most recent reading captured within the last hour.
//
// Returns:
//   - *Reading: The reading, or nil with ErrNoReadings if the window is empty
func (r *Repository) Latest(ctx context.Context) (*Reading, error) {
	var rd Reading
	err := r.pool.QueryRow(ctx,
		`SELECT "time", sender, location, air_quality, temperature, humidity, nitrogen
		 FROM readings
		 WHERE "time" > now() - make_interval(secs => $1)
		 ORDER BY "time" DESC
		 LIMIT 1`,
		latestWindow.Seconds(),
	).Scan(
		&rd.CapturedAt,
		&rd.Source,
		&rd.Location,
		&rd.AirQuality,
		&rd.TemperatureCelsius,
		&rd.HumidityPercent,
		&rd.NitrogenDioxide,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoReadings
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest reading: %w", err)
	}
	return &rd, nil
}

// PurgeOlderThan deletes readings older than the given age.
//
// Returns:
//   - int64: Number of rows removed
//   - error: If the delete fails
func (r *Repository) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM readings WHERE "time" < now() - make_interval(secs => $1)`,
		age.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("purging readings: %w", err)
	}
	return tag.RowsAffected(), nil
}
