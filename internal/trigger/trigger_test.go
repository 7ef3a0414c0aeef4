package trigger

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tr, err := New("agent-1", "weekly report", "0 8 * * 1", "UTC", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tr.ID == "" {
		t.Error("empty trigger ID")
	}
	if !tr.Enabled {
		t.Error("new trigger should be enabled")
	}
	if tr.Description != "Every Monday at 8:00 AM" {
		t.Errorf("description = %q", tr.Description)
	}
	if tr.NextRunAt == nil || !tr.NextRunAt.After(now) {
		t.Errorf("next run %v should be strictly after %v", tr.NextRunAt, now)
	}
	if tr.TriggerCount != 0 {
		t.Errorf("trigger count = %d, want 0", tr.TriggerCount)
	}
}

func TestNew_InvalidCron(t *testing.T) {
	_, err := New("agent-1", "bad", "60 8 * * 1", "UTC", time.Now())
	if err == nil {
		t.Fatal("expected error for invalid cron")
	}
	var cronErr *InvalidCronError
	if !errors.As(err, &cronErr) {
		t.Fatalf("expected *InvalidCronError, got %T", err)
	}
}

func TestNew_NeverMatchingCron(t *testing.T) {
	// "0 0 30 2 *" parses but Feb 30 never exists; the trigger must be
	// rejected rather than armed with a zero next run.
	_, err := New("agent-1", "impossible", "0 0 30 2 *", "UTC", time.Now())
	if err == nil {
		t.Fatal("expected error for never-matching cron")
	}
	var cronErr *InvalidCronError
	if !errors.As(err, &cronErr) {
		t.Fatalf("expected *InvalidCronError, got %T", err)
	}
}

func TestToggle_NeverMatchingCron(t *testing.T) {
	tr := Trigger{
		ID:             "trg-x",
		CronExpression: "0 0 30 2 *",
		Timezone:       "UTC",
		Enabled:        false,
	}
	if _, err := Toggle(tr, true, time.Now()); err == nil {
		t.Fatal("expected error enabling a never-matching trigger")
	}
}

func TestToggle(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tr, err := New("agent-1", "daily", "0 9 * * *", "UTC", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	disabled, err := Toggle(tr, false, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if disabled.Enabled {
		t.Error("trigger still enabled after toggle off")
	}
	if disabled.NextRunAt != nil {
		t.Errorf("next run = %v, want nil after disable", disabled.NextRunAt)
	}

	later := now.Add(48 * time.Hour)
	enabled, err := Toggle(disabled, true, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !enabled.Enabled {
		t.Error("trigger not enabled after toggle on")
	}
	if enabled.NextRunAt == nil || !enabled.NextRunAt.After(later) {
		t.Errorf("next run %v should be strictly after %v", enabled.NextRunAt, later)
	}
}

func TestRecordFire(t *testing.T) {
	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	tr, err := New("agent-1", "daily", "0 9 * * *", "UTC", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.ConsecutiveErr = 3

	fireAt := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	fired, err := RecordFire(tr, fireAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fired.TriggerCount != tr.TriggerCount+1 {
		t.Errorf("trigger count = %d, want %d", fired.TriggerCount, tr.TriggerCount+1)
	}
	if fired.LastTriggeredAt == nil || !fired.LastTriggeredAt.Equal(fireAt) {
		t.Errorf("last triggered = %v, want %v", fired.LastTriggeredAt, fireAt)
	}
	if fired.NextRunAt == nil || !fired.NextRunAt.After(*fired.LastTriggeredAt) {
		t.Errorf("next run %v should be strictly after last fire %v", fired.NextRunAt, fired.LastTriggeredAt)
	}
	if fired.ConsecutiveErr != 0 {
		t.Errorf("consecutive errors = %d, want reset to 0", fired.ConsecutiveErr)
	}
}

func TestRecordFire_Disabled(t *testing.T) {
	now := time.Now()
	tr, err := New("agent-1", "daily", "0 9 * * *", "UTC", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr, err = Toggle(tr, false, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := RecordFire(tr, now); !errors.Is(err, ErrDisabled) {
		t.Fatalf("got %v, want ErrDisabled", err)
	}
}

func TestReschedule_Disabled(t *testing.T) {
	tr := Trigger{ID: "trg-x", CronExpression: "0 9 * * *", Timezone: "UTC", Enabled: false}
	next := time.Now()
	tr.NextRunAt = &next

	out, err := Reschedule(tr, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.NextRunAt != nil {
		t.Errorf("next run = %v, want nil for disabled trigger", out.NextRunAt)
	}
}
