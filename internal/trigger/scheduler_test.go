package trigger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentdeck/agentdeck/internal/config"
)

func newTestScheduler(t *testing.T, fire FireFunc) (*Scheduler, *Store) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "triggers.json"))
	cfg := config.SchedulerConfig{TickSec: 1, MaxConcurrentFires: 2, FireTimeoutSec: 5}
	return NewScheduler(cfg, store, fire), store
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		consecutiveErr int
		want           time.Duration
	}{
		{0, 30 * time.Second},
		{1, 30 * time.Second},
		{2, 1 * time.Minute},
		{3, 5 * time.Minute},
		{4, 15 * time.Minute},
		{5, 60 * time.Minute},
		{100, 60 * time.Minute}, // capped
	}
	for _, tt := range tests {
		got := backoffDelay(tt.consecutiveErr)
		if got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.consecutiveErr, got, tt.want)
		}
	}
}

func TestExecuteFire_Success(t *testing.T) {
	fired := 0
	sched, store := newTestScheduler(t, func(_ context.Context, _ Trigger) error {
		fired++
		return nil
	})

	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	tr := newStoreTrigger(t, "daily", "0 9 * * *", now.Add(-24*time.Hour))
	if err := store.Add(tr); err != nil {
		t.Fatalf("add: %v", err)
	}

	sched.executeFire(context.Background(), tr, now)

	if fired != 1 {
		t.Errorf("fire count = %d, want 1", fired)
	}
	got, ok := store.Get(tr.ID)
	if !ok {
		t.Fatal("trigger missing after fire")
	}
	if got.TriggerCount != 1 {
		t.Errorf("trigger count = %d, want 1", got.TriggerCount)
	}
	if got.NextRunAt == nil || !got.NextRunAt.After(now) {
		t.Errorf("next run %v should be strictly after %v", got.NextRunAt, now)
	}
}

func TestExecuteFire_FailureBacksOff(t *testing.T) {
	sched, store := newTestScheduler(t, func(_ context.Context, _ Trigger) error {
		return errors.New("delivery failed")
	})

	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	tr := newStoreTrigger(t, "daily", "0 9 * * *", now.Add(-24*time.Hour))
	if err := store.Add(tr); err != nil {
		t.Fatalf("add: %v", err)
	}

	sched.executeFire(context.Background(), tr, now)

	got, ok := store.Get(tr.ID)
	if !ok {
		t.Fatal("trigger missing after failed fire")
	}
	if got.TriggerCount != 0 {
		t.Errorf("trigger count = %d, want 0 on failure", got.TriggerCount)
	}
	if got.ConsecutiveErr != 1 {
		t.Errorf("consecutive errors = %d, want 1", got.ConsecutiveErr)
	}
	want := now.Add(30 * time.Second)
	if got.NextRunAt == nil || !got.NextRunAt.Equal(want) {
		t.Errorf("next run = %v, want %v (first backoff step)", got.NextRunAt, want)
	}
}

func TestScheduler_SingletonGuard(t *testing.T) {
	sched, _ := newTestScheduler(t, nil)

	sched.markRunning("trg-1")
	if !sched.isRunning("trg-1") {
		t.Error("trg-1 should be marked running")
	}
	sched.markNotRunning("trg-1")
	if sched.isRunning("trg-1") {
		t.Error("trg-1 should be cleared")
	}
}
