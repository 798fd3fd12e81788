// Package control implements the proportional position controller and its
// telemetry capture.
package control

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/mechalab/steplab/internal/cqueue"
	"github.com/mechalab/steplab/internal/wire"
)

var (
	// ErrInvalidGain rejects a gain that is not a positive, finite number.
	ErrInvalidGain = errors.New("control: gain must be a positive nonzero number")

	// ErrQueueFull reports a Run call past the planned sample count.
	// Neither queue is mutated and the actuator is not driven.
	ErrQueueFull = errors.New("control: telemetry queues are full")
)

// Actuator is the actuation sink driven by the controller. The controller
// passes the raw control output; clamping to the valid duty range is the
// actuator's contract.
type Actuator interface {
	SetDutyCycle(pct float64)
}

// Sensor is the position source sampled once per Run.
type Sensor interface {
	Read() int
}

// Params configures a Controller.
type Params struct {
	// Kp is the initial control gain. Must be a positive finite number.
	Kp float64

	// Setpoint is the initial target position in encoder counts.
	Setpoint int

	// DataPoints sizes the telemetry queues. It should equal the number of
	// planned Run calls; further calls are rejected with ErrQueueFull.
	DataPoints int

	// Now supplies timestamps for the elapsed-time telemetry axis.
	// Defaults to time.Now.
	Now func() time.Time
}

// Controller drives an actuator proportionally to the error between the
// setpoint and the sensed position, recording an (elapsed ms, position)
// sample on every Run. The time and position queues always hold the same
// number of entries: a Run either appends to both or to neither.
type Controller struct {
	kp         float64
	setpoint   int
	actuator   Actuator
	sensor     Sensor
	now        func() time.Time
	dataPoints int
	timeQ      *cqueue.IntQueue
	positionQ  *cqueue.IntQueue
}

// New creates a controller around the given collaborators. The collaborators
// are borrowed, not owned.
func New(actuator Actuator, sensor Sensor, p Params) (*Controller, error) {
	if err := validGain(p.Kp); err != nil {
		return nil, err
	}
	if p.DataPoints < 1 {
		return nil, fmt.Errorf("control: data points must be positive, got %d", p.DataPoints)
	}
	if actuator == nil || sensor == nil {
		return nil, errors.New("control: actuator and sensor are required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Controller{
		kp:         p.Kp,
		setpoint:   p.Setpoint,
		actuator:   actuator,
		sensor:     sensor,
		now:        p.Now,
		dataPoints: p.DataPoints,
		timeQ:      cqueue.New(p.DataPoints),
		positionQ:  cqueue.New(p.DataPoints),
	}, nil
}

// Kp returns the current control gain.
func (c *Controller) Kp() float64 { return c.kp }

// SetKp replaces the control gain. An invalid gain is rejected with
// ErrInvalidGain and the prior gain is kept.
func (c *Controller) SetKp(kp float64) error {
	if err := validGain(kp); err != nil {
		return err
	}
	c.kp = kp
	return nil
}

// Setpoint returns the current target position.
func (c *Controller) Setpoint() int { return c.setpoint }

// SetSetpoint replaces the target position. The value is trusted to be in
// the sensor's unit space; no validation is applied.
func (c *Controller) SetSetpoint(setpoint int) { c.setpoint = setpoint }

// Samples returns the number of buffered telemetry samples.
func (c *Controller) Samples() int { return c.timeQ.Len() }

// Run executes one step of the control law: it records the time elapsed
// since start and the sensed position, then drives the actuator with
// Kp * (setpoint - position) and returns that output.
//
// If the telemetry queues are already at capacity the step is rejected
// before anything is sampled or actuated, keeping the two queues in
// lock-step.
func (c *Controller) Run(setpoint int, start time.Time) (float64, error) {
	c.setpoint = setpoint

	if c.timeQ.Full() {
		return 0, ErrQueueFull
	}

	elapsed := int(c.now().Sub(start) / time.Millisecond)
	c.timeQ.Put(elapsed)

	position := c.sensor.Read()
	c.positionQ.Put(position)

	output := c.kp * float64(c.setpoint-position)
	c.actuator.SetDutyCycle(output)
	return output, nil
}

// PrintData drains both queues in FIFO order, writing one "time,position"
// line per sample followed by the terminator line, then clears the queues.
func (c *Controller) PrintData(w io.Writer) error {
	for c.timeQ.Any() {
		tm, _ := c.timeQ.Get()
		pos, _ := c.positionQ.Get()
		if _, err := fmt.Fprintf(w, "%d,%d%s", tm, pos, wire.LineEnding); err != nil {
			return fmt.Errorf("control: write telemetry: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "%s%s", wire.Terminator, wire.LineEnding); err != nil {
		return fmt.Errorf("control: write terminator: %w", err)
	}
	c.ResetQueues()
	return nil
}

// ResetQueues discards any buffered samples. Calling it on empty queues is
// a no-op.
func (c *Controller) ResetQueues() {
	c.timeQ.Clear()
	c.positionQ.Clear()
}

// SetDataPoints resizes the telemetry capture. The queue storage is fixed at
// construction, so this allocates fresh queues at the new capacity and
// discards anything currently buffered.
func (c *Controller) SetDataPoints(n int) error {
	if n < 1 {
		return fmt.Errorf("control: data points must be positive, got %d", n)
	}
	c.dataPoints = n
	c.timeQ = cqueue.New(n)
	c.positionQ = cqueue.New(n)
	return nil
}

// DataPoints returns the telemetry capacity.
func (c *Controller) DataPoints() int { return c.dataPoints }

func validGain(kp float64) error {
	if math.IsNaN(kp) || math.IsInf(kp, 0) || kp <= 0 {
		return ErrInvalidGain
	}
	return nil
}
