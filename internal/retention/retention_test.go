package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/config"
	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
)

type fakeStore struct {
	mu       sync.Mutex
	ages     []time.Duration
	purgeErr error
}

func (f *fakeStore) PurgeOlderThan(_ context.Context, age time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ages = append(f.ages, age)
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	return 42, nil
}

func TestPurgeUsesConfiguredAge(t *testing.T) {
	store := &fakeStore{}
	j := New(config.RetentionConfig{MaxAgeDays: 365, At: "03:30"}, store, logging.Default())

	j.purge()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.ages) != 1 {
		t.Fatalf("purge calls = %d, want 1", len(store.ages))
	}
	if want := 365 * 24 * time.Hour; store.ages[0] != want {
		t.Errorf("purge age = %v, want %v", store.ages[0], want)
	}
}

func TestPurgeSwallowsStoreError(t *testing.T) {
	store := &fakeStore{purgeErr: errors.New("store down")}
	j := New(config.RetentionConfig{MaxAgeDays: 30, At: "03:30"}, store, logging.Default())

	j.purge() // must not panic; the next scheduled run tries again
}

func TestStartRejectsBadClockTime(t *testing.T) {
	j := New(config.RetentionConfig{MaxAgeDays: 30, At: "not-a-time"}, &fakeStore{}, logging.Default())
	defer j.Stop()

	if err := j.Start(); err == nil {
		t.Error("expected error for invalid schedule time")
	}
}

func TestStartAndStop(t *testing.T) {
	j := New(config.RetentionConfig{MaxAgeDays: 30, At: "03:30"}, &fakeStore{}, logging.Default())

	if err := j.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	j.Stop()
}
