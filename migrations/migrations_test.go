package migrations_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/database"
	_ "github.com/nerrad567/hearth-core/migrations"
)

func openMigrated(t *testing.T) *database.DB {
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
	return db
}

func TestMigrateCreatesJournalTable(t *testing.T) {
	db := openMigrated(t)

	var name string
	err := db.QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type='table' AND name='poll_cycles'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("poll_cycles table missing after migrate: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMigrated(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int
	err := db.QueryRowContext(context.Background(),
		"SELECT count(*) FROM schema_migrations",
	).Scan(&count)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("schema_migrations rows = %d, want 1", count)
	}
}
