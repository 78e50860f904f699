package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
)

// Cycle outcomes recorded in the journal.
const (
	// OutcomeCompleted means the cycle produced at least one persisted reading.
	OutcomeCompleted = "completed"

	// OutcomeTimedOut means no matching status push arrived within the
	// cycle timeout.
	OutcomeTimedOut = "timed-out"

	// OutcomePublishFailed means the state request never left.
	OutcomePublishFailed = "publish-failed"

	// OutcomeStoreFailed means a reading arrived but could not be persisted.
	OutcomeStoreFailed = "store-failed"
)

// CycleRecord is one journalled poll cycle.
type CycleRecord struct {
	Device    string    `json:"device"`
	StartedAt time.Time `json:"started_at"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

// Recorder writes and reads poll-cycle records.
//
// All methods are safe for concurrent use; the underlying pool serializes
// writers per SQLite's single-writer model.
type Recorder struct {
	db *database.DB
}

// NewRecorder creates a Recorder over an opened, migrated journal database.
func NewRecorder(db *database.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends one cycle record to the journal.
//
// Journal writes are advisory. Callers log failures and move on; a broken
// journal must never stop the collector.
func (r *Recorder) Record(ctx context.Context, rec CycleRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO poll_cycles (device, started_at, outcome, detail) VALUES (?, ?, ?, ?)",
		rec.Device,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.Outcome,
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("recording poll cycle: %w", err)
	}
	return nil
}

// Recent returns the most recent n cycle records, newest first.
func (r *Recorder) Recent(ctx context.Context, n int) ([]CycleRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT device, started_at, outcome, detail FROM poll_cycles ORDER BY id DESC LIMIT ?",
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying poll cycles: %w", err)
	}
	defer rows.Close()

	records := make([]CycleRecord, 0, n)
	for rows.Next() {
		var rec CycleRecord
		var startedAt string
		if err := rows.Scan(&rec.Device, &startedAt, &rec.Outcome, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scanning poll cycle: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, startedAt) //nolint:errcheck // Format is controlled
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating poll cycles: %w", err)
	}
	return records, nil
}

// Counts returns the number of journalled cycles per outcome.
func (r *Recorder) Counts(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT outcome, count(*) FROM poll_cycles GROUP BY outcome",
	)
	if err != nil {
		return nil, fmt.Errorf("counting poll cycles: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scanning outcome count: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcome counts: %w", err)
	}
	return counts, nil
}
