package cotask

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// passInterval bounds how often Run re-evaluates task eligibility. Periods
// are whole milliseconds, so polling faster buys nothing.
const passInterval = time.Millisecond

// Scheduler executes registered tasks in priority order, one resumption per
// eligible task per pass. Exactly one routine runs at any instant; a routine
// keeps the execution context from one suspension point to the next.
type Scheduler struct {
	clock Clock
	tasks []*Task
}

// NewScheduler creates an empty scheduler. A nil clock means the wall clock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	return &Scheduler{clock: clock}
}

// Add registers a task. Tasks are created once at startup and never removed;
// ties in priority preserve registration order.
func (s *Scheduler) Add(t *Task) {
	s.tasks = append(s.tasks, t)
	sort.SliceStable(s.tasks, func(i, j int) bool {
		return s.tasks[i].priority < s.tasks[j].priority
	})
}

// Tasks returns the registered tasks in scheduling order.
func (s *Scheduler) Tasks() []*Task {
	out := make([]*Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Pass runs one scheduling pass: every non-failed task whose period has
// elapsed is resumed exactly once, in ascending priority order. A fault in
// one task marks it failed and skipped from then on, but never aborts the
// pass for the others.
func (s *Scheduler) Pass() {
	for _, t := range s.tasks {
		if t.failure != nil {
			continue
		}
		now := s.clock.Now()
		if !t.ready(now) {
			continue
		}
		t.lastRun = now
		t.started = true
		s.resume(t)
	}
}

func (s *Scheduler) resume(t *Task) {
	defer func() {
		if r := recover(); r != nil {
			t.failure = fmt.Errorf("cotask: task %q panicked: %v", t.name, r)
		}
	}()

	begin := s.clock.Now()
	err := t.routine.Resume()
	elapsed := s.clock.Now().Sub(begin)

	t.runs++
	t.lastDur = elapsed
	if elapsed > t.maxDur {
		t.maxDur = elapsed
	}
	if err != nil {
		t.failure = fmt.Errorf("cotask: task %q: %w", t.name, err)
	}
}

// Run drives scheduling passes until the context is cancelled. Cancellation
// is the only way the loop ends; it is an orderly shutdown, not an error
// state, and the context's cause is returned so the caller can tell operator
// cancellation apart from a deadline.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(passInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Pass()
		}
	}
}

// TaskStats is a diagnostic snapshot of one task.
type TaskStats struct {
	Name         string
	Priority     int
	Period       time.Duration
	Runs         int
	LastDuration time.Duration
	MaxDuration  time.Duration
	Failure      error
}

// Stats reports per-task diagnostics in scheduling order.
func (s *Scheduler) Stats() []TaskStats {
	stats := make([]TaskStats, 0, len(s.tasks))
	for _, t := range s.tasks {
		stats = append(stats, TaskStats{
			Name:         t.name,
			Priority:     t.priority,
			Period:       t.period,
			Runs:         t.runs,
			LastDuration: t.lastDur,
			MaxDuration:  t.maxDur,
			Failure:      t.failure,
		})
	}
	return stats
}
