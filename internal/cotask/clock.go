package cotask

import "time"

// Clock supplies the scheduler's notion of time. Production code uses the
// wall clock; tests drive the scheduler with a manual clock.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// RealClock returns the wall clock.
func RealClock() Clock { return wallClock{} }

// ManualClock is a hand-advanced clock for deterministic scheduling tests
// and simulations.
type ManualClock struct {
	t time.Time
}

// NewManualClock starts a manual clock at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time { return c.t }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
