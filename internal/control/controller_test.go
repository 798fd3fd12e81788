package control

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

type fakeActuator struct {
	calls []float64
}

func (a *fakeActuator) SetDutyCycle(pct float64) { a.calls = append(a.calls, pct) }

type fakeSensor struct {
	positions []int
	idx       int
}

func (s *fakeSensor) Read() int {
	if s.idx >= len(s.positions) {
		return s.positions[len(s.positions)-1]
	}
	p := s.positions[s.idx]
	s.idx++
	return p
}

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestController(t *testing.T, act *fakeActuator, sen *fakeSensor, kp float64, points int) (*Controller, time.Time) {
	t.Helper()
	start := time.Unix(100, 0)
	clk := &stepClock{t: start, step: 10 * time.Millisecond}
	c, err := New(act, sen, Params{Kp: kp, Setpoint: 0, DataPoints: points, Now: clk.now})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, start
}

func TestNewRejectsBadParams(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{0}}

	if _, err := New(act, sen, Params{Kp: 0, DataPoints: 10}); !errors.Is(err, ErrInvalidGain) {
		t.Errorf("expected ErrInvalidGain for kp=0, got %v", err)
	}
	if _, err := New(act, sen, Params{Kp: 1, DataPoints: 0}); err == nil {
		t.Error("expected error for zero data points")
	}
	if _, err := New(nil, sen, Params{Kp: 1, DataPoints: 10}); err == nil {
		t.Error("expected error for nil actuator")
	}
}

func TestSetKp(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{0}}
	c, _ := newTestController(t, act, sen, 2.0, 10)

	if err := c.SetKp(0.05); err != nil {
		t.Fatalf("valid gain rejected: %v", err)
	}
	if c.Kp() != 0.05 {
		t.Errorf("expected kp 0.05, got %g", c.Kp())
	}

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := c.SetKp(bad); !errors.Is(err, ErrInvalidGain) {
			t.Errorf("gain %v should be rejected, got %v", bad, err)
		}
		if c.Kp() != 0.05 {
			t.Errorf("failed SetKp changed the gain to %g", c.Kp())
		}
	}
}

func TestRunControlLaw(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{100}}
	c, start := newTestController(t, act, sen, 0.5, 10)

	out, err := c.Run(8150, start)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := 0.5 * (8150 - 100)
	if out != want {
		t.Errorf("expected output %g, got %g", want, out)
	}
	if len(act.calls) != 1 || act.calls[0] != want {
		t.Errorf("actuator calls %v, want one call of %g", act.calls, want)
	}
	if c.Setpoint() != 8150 {
		t.Errorf("setpoint not assigned: %d", c.Setpoint())
	}
}

func TestRunKeepsQueuesInLockStep(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{10, 20, 30}}
	c, start := newTestController(t, act, sen, 1.0, 3)

	for i := 1; i <= 3; i++ {
		if _, err := c.Run(100, start); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if c.Samples() != i {
			t.Fatalf("after run %d expected %d samples, got %d", i, i, c.Samples())
		}
	}
}

func TestRunRejectsPastCapacity(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{5}}
	c, start := newTestController(t, act, sen, 1.0, 2)

	for i := 0; i < 2; i++ {
		if _, err := c.Run(10, start); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	actCalls := len(act.calls)
	senReads := sen.idx

	if _, err := c.Run(10, start); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if c.Samples() != 2 {
		t.Errorf("rejected run mutated queues: %d samples", c.Samples())
	}
	if len(act.calls) != actCalls {
		t.Error("rejected run drove the actuator")
	}
	if sen.idx != senReads {
		t.Error("rejected run read the sensor")
	}
}

func TestPrintDataRoundTrip(t *testing.T) {
	act := &fakeActuator{}
	positions := []int{0, 2000, 4000, 6000, 8000}
	sen := &fakeSensor{positions: positions}
	c, start := newTestController(t, act, sen, 0.05, len(positions))

	for range positions {
		if _, err := c.Run(8150, start); err != nil {
			t.Fatalf("run: %v", err)
		}
	}

	var buf strings.Builder
	if err := c.PrintData(&buf); err != nil {
		t.Fatalf("print data: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	if len(lines) != len(positions)+1 {
		t.Fatalf("expected %d lines, got %d: %q", len(positions)+1, len(lines), buf.String())
	}
	if lines[len(lines)-1] != "End" {
		t.Errorf("expected terminator End, got %q", lines[len(lines)-1])
	}
	for i, pos := range positions {
		want := fmt.Sprintf("%d,%d", (i+1)*10, pos)
		if lines[i] != want {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want)
		}
	}

	if c.Samples() != 0 {
		t.Errorf("queues not cleared after drain: %d samples", c.Samples())
	}
}

func TestPrintDataEmpty(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{0}}
	c, _ := newTestController(t, act, sen, 1.0, 4)

	var buf strings.Builder
	if err := c.PrintData(&buf); err != nil {
		t.Fatalf("print data: %v", err)
	}
	if buf.String() != "End\r\n" {
		t.Errorf("expected bare terminator, got %q", buf.String())
	}
}

func TestResetQueuesIdempotent(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{1}}
	c, start := newTestController(t, act, sen, 1.0, 4)

	if _, err := c.Run(5, start); err != nil {
		t.Fatal(err)
	}
	c.ResetQueues()
	if c.Samples() != 0 {
		t.Fatalf("expected empty queues, got %d samples", c.Samples())
	}
	c.ResetQueues()
	if c.Samples() != 0 {
		t.Fatalf("second reset changed state: %d samples", c.Samples())
	}
}

func TestSetDataPoints(t *testing.T) {
	act := &fakeActuator{}
	sen := &fakeSensor{positions: []int{1}}
	c, start := newTestController(t, act, sen, 1.0, 2)

	if _, err := c.Run(5, start); err != nil {
		t.Fatal(err)
	}

	if err := c.SetDataPoints(5); err != nil {
		t.Fatalf("set data points: %v", err)
	}
	if c.DataPoints() != 5 {
		t.Errorf("expected capacity 5, got %d", c.DataPoints())
	}
	if c.Samples() != 0 {
		t.Error("resize should discard buffered samples")
	}

	for i := 0; i < 5; i++ {
		if _, err := c.Run(5, start); err != nil {
			t.Fatalf("run %d after resize: %v", i, err)
		}
	}
	if _, err := c.Run(5, start); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull at new capacity, got %v", err)
	}

	if err := c.SetDataPoints(0); err == nil {
		t.Error("expected error for non-positive capacity")
	}
}
