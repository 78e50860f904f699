package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
	_ "github.com/nerrad567/hearth-core/migrations"
)

func newRecorder(t *testing.T) *Recorder {
	t.Helper()

	db, err := database.Open(config.JournalConfig{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewRecorder(db)
}

func TestRecordAndRecent(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	outcomes := []string{OutcomeCompleted, OutcomeTimedOut, OutcomeCompleted}
	for i, outcome := range outcomes {
		err := r.Record(ctx, CycleRecord{
			Device:    "NN2-EU-ABC1234A",
			StartedAt: base.Add(time.Duration(i) * 5 * time.Minute),
			Outcome:   outcome,
		})
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	records, err := r.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Recent returned %d records, want 2", len(records))
	}

	// Newest first.
	if records[0].Outcome != OutcomeCompleted || !records[0].StartedAt.Equal(base.Add(10*time.Minute)) {
		t.Errorf("records[0] = %+v, want newest completed cycle", records[0])
	}
	if records[1].Outcome != OutcomeTimedOut {
		t.Errorf("records[1].Outcome = %q, want %q", records[1].Outcome, OutcomeTimedOut)
	}
}

func TestRecordKeepsDetail(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()

	err := r.Record(ctx, CycleRecord{
		Device:    "dev",
		StartedAt: time.Now(),
		Outcome:   OutcomeStoreFailed,
		Detail:    "inserting reading: connection reset",
	})
	if err != nil {
		t.Fatal(err)
	}

	records, err := r.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Detail != "inserting reading: connection reset" {
		t.Errorf("Detail = %q", records[0].Detail)
	}
}

func TestCounts(t *testing.T) {
	r := newRecorder(t)
	ctx := context.Background()

	for _, outcome := range []string{
		OutcomeCompleted, OutcomeCompleted, OutcomeTimedOut, OutcomePublishFailed,
	} {
		if err := r.Record(ctx, CycleRecord{Device: "dev", StartedAt: time.Now(), Outcome: outcome}); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := r.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}

	want := map[string]int64{
		OutcomeCompleted:     2,
		OutcomeTimedOut:      1,
		OutcomePublishFailed: 1,
	}
	for outcome, n := range want {
		if counts[outcome] != n {
			t.Errorf("counts[%q] = %d, want %d", outcome, counts[outcome], n)
		}
	}
}

func TestRecentEmptyJournal(t *testing.T) {
	r := newRecorder(t)

	records, err := r.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent on empty journal: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
