package metrics

import (
	"math"
	"testing"
)

func TestRiseTime(t *testing.T) {
	m := NewRiseTime(100)
	m.Observe(10, 50)
	m.Observe(20, 89)
	m.Observe(30, 91)
	m.Observe(40, 120)

	if got := m.Value(); got != 30 {
		t.Errorf("expected rise at t=30, got %g", got)
	}
}

func TestRiseTimeNeverReached(t *testing.T) {
	m := NewRiseTime(100)
	m.Observe(10, 50)

	if !math.IsNaN(m.Value()) {
		t.Errorf("expected NaN for unreached rise, got %g", m.Value())
	}
}

func TestOvershoot(t *testing.T) {
	m := NewOvershoot(100)
	m.Observe(10, 90)
	m.Observe(20, 110)
	m.Observe(30, 105)

	if got := m.Value(); got != 10 {
		t.Errorf("expected 10%% overshoot, got %g", got)
	}
}

func TestOvershootNoneWithoutCrossing(t *testing.T) {
	m := NewOvershoot(100)
	m.Observe(10, 99)

	if got := m.Value(); got != 0 {
		t.Errorf("expected 0 overshoot, got %g", got)
	}
}

func TestSettlingTime(t *testing.T) {
	m := NewSettlingTime(100, 0.02)
	m.Observe(10, 50)
	m.Observe(20, 99)  // in band
	m.Observe(30, 110) // leaves band again
	m.Observe(40, 101) // settles here
	m.Observe(50, 100)

	if got := m.Value(); got != 40 {
		t.Errorf("expected settling at t=40, got %g", got)
	}
}

func TestSettlingTimeNever(t *testing.T) {
	m := NewSettlingTime(100, 0.02)
	m.Observe(10, 50)
	m.Observe(20, 200)

	if !math.IsNaN(m.Value()) {
		t.Errorf("expected NaN for unsettled response, got %g", m.Value())
	}
}

func TestSteadyStateError(t *testing.T) {
	m := NewSteadyStateError(100)
	// 20 samples; final tenth is the last 2, averaging 98
	for i := 0; i < 18; i++ {
		m.Observe(float64(i), 50)
	}
	m.Observe(18, 97)
	m.Observe(19, 99)

	if got := m.Value(); got != 2 {
		t.Errorf("expected steady-state error 2, got %g", got)
	}
}

func TestSummarize(t *testing.T) {
	times := []float64{10, 20, 30, 40, 50}
	positions := []float64{0, 60, 95, 99, 100}

	got := Summarize(times, positions, 100)

	if got["rise_time"] != 30 {
		t.Errorf("rise_time = %g, want 30", got["rise_time"])
	}
	if got["overshoot_pct"] != 0 {
		t.Errorf("overshoot_pct = %g, want 0", got["overshoot_pct"])
	}
	if got["settling_time"] != 40 {
		t.Errorf("settling_time = %g, want 40", got["settling_time"])
	}
	if math.Abs(got["steady_state_error"]) > 1e-9 {
		t.Errorf("steady_state_error = %g, want 0", got["steady_state_error"])
	}
}

func TestReset(t *testing.T) {
	ms := []Metric{
		NewRiseTime(100),
		NewOvershoot(100),
		NewSettlingTime(100, 0.02),
		NewSteadyStateError(100),
	}
	for _, m := range ms {
		m.Observe(10, 150)
		m.Reset()
	}

	if !math.IsNaN(NewRiseTime(100).Value()) {
		t.Error("fresh rise time should be NaN")
	}
	for _, m := range ms {
		switch v := m.(type) {
		case *Overshoot:
			if v.Value() != 0 {
				t.Error("overshoot not reset")
			}
		case *RiseTime, *SettlingTime:
			if !math.IsNaN(v.Value()) {
				t.Errorf("%s not reset", v.Name())
			}
		case *SteadyStateError:
			if !math.IsNaN(v.Value()) {
				t.Error("steady-state error not reset")
			}
		}
	}
}
