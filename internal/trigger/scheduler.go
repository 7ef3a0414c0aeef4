package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	pmetrics "github.com/agentdeck/agentdeck/internal/pkg/prometheus"
	"github.com/agentdeck/agentdeck/internal/pkg/utils"
)

// FireFunc delivers one trigger firing. The actual delivery target (agent
// execution, webhook, message queue) lives outside the engine.
type FireFunc func(ctx context.Context, tr Trigger) error

// Scheduler polls the store for due triggers and fires them through the
// configured FireFunc, recording fires and rescheduling via the engine.
type Scheduler struct {
	store      *Store
	fire       FireFunc
	cfg        config.SchedulerConfig
	concurrent chan struct{} // semaphore sized to MaxConcurrentFires

	runningMu sync.Mutex
	running   map[string]struct{} // trigger IDs currently firing (singleton guard)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cfg config.SchedulerConfig, store *Store, fire FireFunc) *Scheduler {
	maxConcurrent := cfg.MaxConcurrentFires
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Scheduler{
		store:      store,
		fire:       fire,
		cfg:        cfg,
		concurrent: make(chan struct{}, maxConcurrent),
		running:    make(map[string]struct{}),
	}
}

// Start loads persisted triggers and begins the polling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.store.Load(); err != nil {
		return fmt.Errorf("load trigger store: %w", err)
	}

	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	logs.CtxInfo(ctx, "[trigger] scheduler started (max_concurrent=%d, tick=%ds)",
		cap(s.concurrent), s.tickInterval()/time.Second)
	return nil
}

// Stop cancels the polling loop and waits for in-flight fires to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logs.CtxWarn(ctx, "[trigger] stop timed out waiting for running fires")
	}

	if err := s.store.Save(); err != nil {
		logs.CtxWarn(ctx, "[trigger] save store on shutdown: %v", err)
	}
	logs.CtxInfo(ctx, "[trigger] scheduler stopped")
}

func (s *Scheduler) tickInterval() time.Duration {
	if s.cfg.TickSec > 0 {
		return time.Duration(s.cfg.TickSec) * time.Second
	}
	return 15 * time.Second
}

func (s *Scheduler) loop(ctx context.Context) {
	// Jitter the first tick so several instances sharing a host do not
	// wake in lockstep.
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(utils.Jitter(1000)) * time.Millisecond):
	}

	ticker := time.NewTicker(s.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now()
	for _, tr := range s.store.ListDue(now) {
		if !s.tryAcquire() {
			break // hit concurrency limit, try next tick
		}
		if s.isRunning(tr.ID) {
			s.release()
			continue // singleton: skip if still firing
		}

		s.markRunning(tr.ID)
		t := tr // capture for goroutine
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release()
			defer s.markNotRunning(t.ID)
			s.executeFire(ctx, t, now)
		}()
	}
}

func (s *Scheduler) executeFire(ctx context.Context, tr Trigger, now time.Time) {
	timeout := time.Duration(s.cfg.FireTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.fire(ctx, tr); err != nil {
		logs.CtxWarn(ctx, "[trigger] fire %s (%s) failed: %v", tr.Name, tr.ID, err)
		pmetrics.TriggerFires.WithLabelValues("error").Inc()
		tr.ConsecutiveErr++
		s.rescheduleWithBackoff(&tr, now)
		return
	}

	logs.CtxInfo(ctx, "[trigger] fired %s (%s)", tr.Name, tr.ID)
	pmetrics.TriggerFires.WithLabelValues("ok").Inc()

	updated, err := RecordFire(tr, now)
	if err != nil {
		logs.Warn("[trigger] record fire %s failed: %v, disabling", tr.ID, err)
		tr.Enabled = false
		tr.NextRunAt = nil
		updated = tr
	}
	s.persist(updated)
}

func (s *Scheduler) rescheduleWithBackoff(tr *Trigger, from time.Time) {
	delay := backoffDelay(tr.ConsecutiveErr)
	next := from.Add(delay).UTC()
	tr.NextRunAt = &next
	logs.Warn("[trigger] %s backoff %v (errors=%d)", tr.ID, delay, tr.ConsecutiveErr)
	s.persist(*tr)
}

func (s *Scheduler) persist(tr Trigger) {
	s.store.Update(tr)
	if err := s.store.Save(); err != nil {
		logs.Warn("[trigger] persist %s: %v", tr.ID, err)
	}
}

// backoffSteps defines retry delays on consecutive delivery failures.
var backoffSteps = []time.Duration{
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	60 * time.Minute, // cap
}

// backoffDelay returns the retry delay for the given consecutive error count.
func backoffDelay(consecutiveErr int) time.Duration {
	idx := consecutiveErr - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(backoffSteps) {
		idx = len(backoffSteps) - 1
	}
	return backoffSteps[idx]
}

// concurrency helpers

func (s *Scheduler) tryAcquire() bool {
	select {
	case s.concurrent <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) release() {
	<-s.concurrent
}

func (s *Scheduler) isRunning(id string) bool {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	_, ok := s.running[id]
	return ok
}

func (s *Scheduler) markRunning(id string) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	s.running[id] = struct{}{}
}

func (s *Scheduler) markNotRunning(id string) {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	delete(s.running, id)
}
