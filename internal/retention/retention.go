// Package retention runs the scheduled purge of aged readings.
//
// A year of five-minute samples is small by TimescaleDB standards, but
// the service targets single-board hardware with finite flash. The
// janitor deletes readings older than the configured age once a day.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
)

// purgeTimeout bounds a single purge run.
const purgeTimeout = 5 * time.Minute

// Store is the purge surface the janitor needs.
// *reading.Repository satisfies it.
type Store interface {
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Janitor deletes readings past their retention age on a daily schedule.
type Janitor struct {
	scheduler *gocron.Scheduler
	store     Store
	maxAge    time.Duration
	at        string
	logger    *logging.Logger
}

// New creates a Janitor. Call Start to schedule it.
func New(cfg config.RetentionConfig, store Store, logger *logging.Logger) *Janitor {
	return &Janitor{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		maxAge:    cfg.MaxAge(),
		at:        cfg.At,
		logger:    logger,
	}
}

// Start schedules the daily purge and starts the scheduler.
//
// Returns:
//   - error: If the configured time of day cannot be scheduled
func (j *Janitor) Start() error {
	_, err := j.scheduler.Every(1).Day().At(j.at).Do(j.purge)
	if err != nil {
		return fmt.Errorf("scheduling retention purge: %w", err)
	}

	j.scheduler.StartAsync()
	j.logger.Info("retention janitor started",
		"at", j.at,
		"max_age_days", int(j.maxAge.Hours()/24),
	)
	return nil
}

// purge runs one retention pass.
func (j *Janitor) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	deleted, err := j.store.PurgeOlderThan(ctx, j.maxAge)
	if err != nil {
		j.logger.Error("retention purge failed", "error", err)
		return
	}

	j.logger.Info("retention purge complete", "deleted", deleted)
}

// Stop stops the scheduler and cancels future runs.
func (j *Janitor) Stop() {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
}
