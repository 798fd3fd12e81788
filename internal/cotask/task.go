// Package cotask implements a single-threaded cooperative scheduler for
// periodic control tasks. Tasks are resumable routines: each resumption
// performs at most one bounded unit of work and returns control to the
// scheduler, which never preempts a running task.
package cotask

import (
	"errors"
	"fmt"
	"time"
)

// Routine is the resumable body of a task. Resume performs one bounded unit
// of work per call; it must not block on I/O or loop indefinitely, or the
// whole scheduler stalls. A routine that has finished its work keeps
// returning nil so the task stays valid in the schedule.
type Routine interface {
	Resume() error
}

// RoutineFunc adapts a plain function to the Routine interface.
type RoutineFunc func() error

// Resume calls f.
func (f RoutineFunc) Resume() error { return f() }

// Task is a named, prioritized, periodic entry in the scheduler. Lower
// priority values run earlier within a pass.
type Task struct {
	name     string
	priority int
	period   time.Duration
	routine  Routine

	lastRun time.Time
	started bool
	runs    int
	lastDur time.Duration
	maxDur  time.Duration
	failure error
}

// NewTask creates a task. The period must be positive and the routine
// non-nil.
func NewTask(name string, priority int, period time.Duration, routine Routine) (*Task, error) {
	if period <= 0 {
		return nil, fmt.Errorf("cotask: task %q period must be positive, got %v", name, period)
	}
	if routine == nil {
		return nil, errors.New("cotask: task routine is required")
	}
	return &Task{
		name:     name,
		priority: priority,
		period:   period,
		routine:  routine,
	}, nil
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Priority returns the task priority; lower values run first.
func (t *Task) Priority() int { return t.priority }

// Period returns the scheduling period.
func (t *Task) Period() time.Duration { return t.period }

// Runs returns how many times the task has been resumed.
func (t *Task) Runs() int { return t.runs }

// Failed returns the fault that removed the task from scheduling, or nil.
func (t *Task) Failed() error { return t.failure }

// ready reports whether the task's period has elapsed since its last
// resumption. A task that has never run is immediately ready.
func (t *Task) ready(now time.Time) bool {
	if !t.started {
		return true
	}
	return now.Sub(t.lastRun) >= t.period
}
