package plant

import (
	"math"
	"time"
)

const (
	// DefaultMaxRate is the simulated shaft speed in encoder counts per
	// second at 100% duty.
	DefaultMaxRate = 10000.0

	// DefaultTimeConstant is the first-order lag between commanded duty and
	// shaft speed.
	DefaultTimeConstant = 50 * time.Millisecond
)

// Params configures a SimMotor. Zero values fall back to the defaults.
type Params struct {
	MaxRate      float64
	TimeConstant time.Duration
	Now          func() time.Time
}

// SimMotor approximates a DC motor with an incremental encoder as a
// first-order system: commanded duty sets a target speed, the shaft speed
// lags behind it exponentially, and position is the integrated speed. It is
// both the Actuator and the Sensor of a simulated axis.
//
// The model advances lazily on every call, using the wall-clock (or
// injected) time elapsed since the previous call. It is not safe for
// concurrent use; the cooperative scheduler guarantees serial access.
type SimMotor struct {
	now      func() time.Time
	maxRate  float64
	tau      time.Duration
	duty     float64
	velocity float64
	position float64
	last     time.Time
}

// NewSimMotor creates a stopped motor at position zero.
func NewSimMotor(p Params) *SimMotor {
	if p.MaxRate <= 0 {
		p.MaxRate = DefaultMaxRate
	}
	if p.TimeConstant <= 0 {
		p.TimeConstant = DefaultTimeConstant
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &SimMotor{
		now:     p.Now,
		maxRate: p.MaxRate,
		tau:     p.TimeConstant,
		last:    p.Now(),
	}
}

// SetDutyCycle commands a new duty cycle, clamped to [-100, 100].
func (m *SimMotor) SetDutyCycle(pct float64) {
	m.advance()
	m.duty = math.Max(-100, math.Min(100, pct))
}

// Read returns the current position in encoder counts.
func (m *SimMotor) Read() int {
	m.advance()
	return int(m.position)
}

// Zero resets the encoder count. The shaft keeps its speed.
func (m *SimMotor) Zero() {
	m.advance()
	m.position = 0
}

func (m *SimMotor) advance() {
	now := m.now()
	dt := now.Sub(m.last).Seconds()
	m.last = now
	if dt <= 0 {
		return
	}

	target := m.maxRate * m.duty / 100
	alpha := 1 - math.Exp(-dt/m.tau.Seconds())
	m.velocity += (target - m.velocity) * alpha
	m.position += m.velocity * dt
}
