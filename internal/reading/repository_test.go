package reading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakePool answers Exec with a canned command tag and records the call.
// Query/QueryRow are not expected in these tests.
type fakePool struct {
	execTag pgconn.CommandTag
	execErr error

	gotSQL  string
	gotArgs []any
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.gotSQL = sql
	f.gotArgs = args
	return f.execTag, f.execErr
}

func (f *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (f *fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func sampleReading() Reading {
	return Reading{
		CapturedAt:         time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Source:             "prod",
		Location:           "Bedroom",
		AirQuality:         3,
		TemperatureCelsius: 20.0,
		HumidityPercent:    55,
		NitrogenDioxide:    3,
	}
}

func TestInsert(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	repo := &Repository{pool: pool}

	if err := repo.Insert(context.Background(), sampleReading()); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if len(pool.gotArgs) != 7 {
		t.Errorf("Insert passed %d args, want 7", len(pool.gotArgs))
	}
}

func TestInsertZeroRowsReported(t *testing.T) {
	// A protocol-level success that stored nothing is a failed write,
	// reported as a sentinel the caller can log and swallow.
	pool := &fakePool{execTag: pgconn.NewCommandTag("INSERT 0 0")}
	repo := &Repository{pool: pool}

	err := repo.Insert(context.Background(), sampleReading())
	if !errors.Is(err, ErrNotRecorded) {
		t.Fatalf("Insert() error = %v, want ErrNotRecorded", err)
	}
}

func TestInsertStoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	pool := &fakePool{execErr: storeErr}
	repo := &Repository{pool: pool}

	err := repo.Insert(context.Background(), sampleReading())
	if err == nil {
		t.Fatal("Insert() = nil, want wrapped store error")
	}
	if !errors.Is(err, storeErr) {
		t.Errorf("Insert() error = %v, want wrapped %v", err, storeErr)
	}
	if errors.Is(err, ErrNotRecorded) {
		t.Error("a store error must not read as the zero-rows sentinel")
	}
}

func TestPurgeOlderThan(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("DELETE 12")}
	repo := &Repository{pool: pool}

	deleted, err := repo.PurgeOlderThan(context.Background(), 365*24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan() error = %v", err)
	}
	if deleted != 12 {
		t.Errorf("PurgeOlderThan() = %d, want 12", deleted)
	}
}
