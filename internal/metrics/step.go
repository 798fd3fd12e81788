// Package metrics computes step-response quality figures from a captured
// (time, position) series.
package metrics

import "math"

// Metric accumulates one figure over a sample stream.
type Metric interface {
	Name() string
	Observe(t, position float64)
	Value() float64
	Reset()
}

// RiseTime reports the first time, in the stream's time unit, at which the
// position crosses 90% of the setpoint. NaN if it never does.
type RiseTime struct {
	setpoint float64
	t        float64
	done     bool
}

func NewRiseTime(setpoint float64) *RiseTime {
	return &RiseTime{setpoint: setpoint, t: math.NaN()}
}

func (r *RiseTime) Name() string { return "rise_time" }

func (r *RiseTime) Observe(t, position float64) {
	if r.done {
		return
	}
	if position >= 0.9*r.setpoint {
		r.t = t
		r.done = true
	}
}

func (r *RiseTime) Value() float64 { return r.t }

func (r *RiseTime) Reset() {
	r.t = math.NaN()
	r.done = false
}

// Overshoot reports the peak excursion past the setpoint as a percentage of
// the setpoint. Zero if the response never crosses it.
type Overshoot struct {
	setpoint float64
	peak     float64
}

func NewOvershoot(setpoint float64) *Overshoot {
	return &Overshoot{setpoint: setpoint}
}

func (o *Overshoot) Name() string { return "overshoot_pct" }

func (o *Overshoot) Observe(t, position float64) {
	if position > o.peak {
		o.peak = position
	}
}

func (o *Overshoot) Value() float64 {
	if o.peak <= o.setpoint || o.setpoint == 0 {
		return 0
	}
	return (o.peak - o.setpoint) / o.setpoint * 100
}

func (o *Overshoot) Reset() { o.peak = 0 }

// SettlingTime reports the earliest time after which the position stays
// within the band (a fraction of the setpoint, 0.02 for the usual 2% rule).
// NaN if the response never settles.
type SettlingTime struct {
	setpoint float64
	band     float64
	settled  float64
	inBand   bool
}

func NewSettlingTime(setpoint, band float64) *SettlingTime {
	return &SettlingTime{setpoint: setpoint, band: band, settled: math.NaN()}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(t, position float64) {
	if math.Abs(position-s.setpoint) <= s.band*math.Abs(s.setpoint) {
		if !s.inBand {
			s.settled = t
			s.inBand = true
		}
		return
	}
	s.settled = math.NaN()
	s.inBand = false
}

func (s *SettlingTime) Value() float64 { return s.settled }

func (s *SettlingTime) Reset() {
	s.settled = math.NaN()
	s.inBand = false
}

// SteadyStateError reports setpoint minus the mean of the final tenth of the
// samples.
type SteadyStateError struct {
	setpoint  float64
	times     []float64
	positions []float64
}

func NewSteadyStateError(setpoint float64) *SteadyStateError {
	return &SteadyStateError{setpoint: setpoint}
}

func (e *SteadyStateError) Name() string { return "steady_state_error" }

func (e *SteadyStateError) Observe(t, position float64) {
	e.times = append(e.times, t)
	e.positions = append(e.positions, position)
}

func (e *SteadyStateError) Value() float64 {
	if len(e.positions) == 0 {
		return math.NaN()
	}
	tail := len(e.positions) / 10
	if tail < 1 {
		tail = 1
	}
	sum := 0.0
	for _, p := range e.positions[len(e.positions)-tail:] {
		sum += p
	}
	return e.setpoint - sum/float64(tail)
}

func (e *SteadyStateError) Reset() {
	e.times = e.times[:0]
	e.positions = e.positions[:0]
}

// Summarize runs the standard step metrics over a whole series and returns
// them by name.
func Summarize(times, positions []float64, setpoint float64) map[string]float64 {
	ms := []Metric{
		NewRiseTime(setpoint),
		NewOvershoot(setpoint),
		NewSettlingTime(setpoint, 0.02),
		NewSteadyStateError(setpoint),
	}
	for i := range times {
		for _, m := range ms {
			m.Observe(times[i], positions[i])
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
