package trigger

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentdeck/agentdeck/internal/pkg/utils"
)

var ErrDisabled = errors.New("trigger is disabled")

// Trigger is a cron-scheduled trigger owned by a single agent. The engine
// operates on trigger values; persistence is the caller's concern.
type Trigger struct {
	ID             string `json:"id"`
	AgentID        string `json:"agent_id,omitempty"`
	Name           string `json:"name"`
	CronExpression string `json:"cron_expression"`
	Timezone       string `json:"timezone"`
	Description    string `json:"description,omitempty"`
	Enabled        bool   `json:"enabled"`

	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	NextRunAt       *time.Time `json:"next_run_at,omitempty"`
	TriggerCount    int        `json:"trigger_count"`
	// ConsecutiveErr counts delivery failures since the last successful fire;
	// the scheduler uses it for backoff.
	ConsecutiveErr int       `json:"consecutive_err,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// New validates the cron expression and timezone, then builds an enabled
// trigger with its first NextRunAt computed from now.
func New(agentID, name, expression, timezone string, now time.Time) (Trigger, error) {
	parsed, err := ValidateCron(expression)
	if err != nil {
		return Trigger{}, err
	}

	next, err := parsed.NextRun(timezone, now)
	if err != nil {
		return Trigger{}, err
	}

	return Trigger{
		ID:             "trg-" + utils.RandStr(10),
		AgentID:        agentID,
		Name:           name,
		CronExpression: parsed.Expression,
		Timezone:       timezone,
		Description:    parsed.Describe(),
		Enabled:        true,
		NextRunAt:      &next,
		CreatedAt:      now.UTC(),
	}, nil
}

// Toggle flips the enabled state. Disabling clears NextRunAt; enabling
// recomputes it from now.
func Toggle(tr Trigger, enabled bool, now time.Time) (Trigger, error) {
	tr.Enabled = enabled
	if !enabled {
		tr.NextRunAt = nil
		return tr, nil
	}

	next, err := nextRunOf(tr, now)
	if err != nil {
		return Trigger{}, err
	}
	tr.NextRunAt = &next
	return tr, nil
}

// RecordFire registers one firing of an armed trigger: the counter goes up by
// one, LastTriggeredAt is stamped, the error streak resets, and NextRunAt is
// recomputed from now.
func RecordFire(tr Trigger, now time.Time) (Trigger, error) {
	if !tr.Enabled {
		return Trigger{}, fmt.Errorf("record fire for %s: %w", tr.ID, ErrDisabled)
	}

	next, err := nextRunOf(tr, now)
	if err != nil {
		return Trigger{}, err
	}

	fired := now.UTC()
	tr.TriggerCount++
	tr.LastTriggeredAt = &fired
	tr.ConsecutiveErr = 0
	tr.NextRunAt = &next
	return tr, nil
}

// Reschedule recomputes NextRunAt from now without touching fire bookkeeping.
// Used by the scheduler to skip an occurrence whose delivery failed.
func Reschedule(tr Trigger, now time.Time) (Trigger, error) {
	if !tr.Enabled {
		tr.NextRunAt = nil
		return tr, nil
	}
	next, err := nextRunOf(tr, now)
	if err != nil {
		return Trigger{}, err
	}
	tr.NextRunAt = &next
	return tr, nil
}

func nextRunOf(tr Trigger, now time.Time) (time.Time, error) {
	parsed, err := ValidateCron(tr.CronExpression)
	if err != nil {
		return time.Time{}, fmt.Errorf("trigger %s: %w", tr.ID, err)
	}
	return parsed.NextRun(tr.Timezone, now)
}
