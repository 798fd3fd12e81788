package device

import (
	"fmt"
	"io"
	"time"

	"github.com/mechalab/steplab/internal/control"
	"github.com/mechalab/steplab/internal/cotask"
	"github.com/mechalab/steplab/internal/plant"
	"github.com/mechalab/steplab/internal/share"
)

// TaskSpec describes one step-response task: which axis it drives, where it
// should go, and whether its telemetry is dumped to the console afterwards.
type TaskSpec struct {
	Name          string
	Priority      int
	Setpoint      int
	DataPoints    int
	EmitTelemetry bool
	Actuator      plant.Actuator
	Sensor        plant.Sensor
}

type phase int

const (
	phaseSetup phase = iota
	phaseSample
	phaseStop
	phaseIdle
)

// stepRoutine is the resumable body of a step-response task. Each resumption
// performs one bounded unit of work:
//
//	setup     construct the controller, zero the sensor, pull the gain
//	sample    one control-law step (runs DataPoints times)
//	stop      stop actuation and optionally dump telemetry
//	idle      no-op, forever, keeping the task valid in the schedule
type stepRoutine struct {
	spec    TaskSpec
	gain    *share.Share
	gainDef float64
	console io.Writer
	clock   cotask.Clock

	phase  phase
	ctrl   *control.Controller
	sample int
	start  time.Time
}

func newStepRoutine(spec TaskSpec, gain *share.Share, gainDefault float64, console io.Writer, clock cotask.Clock) *stepRoutine {
	return &stepRoutine{
		spec:    spec,
		gain:    gain,
		gainDef: gainDefault,
		console: console,
		clock:   clock,
	}
}

func (r *stepRoutine) Resume() error {
	switch r.phase {
	case phaseSetup:
		return r.setup()
	case phaseSample:
		if _, err := r.ctrl.Run(r.spec.Setpoint, r.start); err != nil {
			return fmt.Errorf("device: task %q sample %d: %w", r.spec.Name, r.sample, err)
		}
		r.sample++
		if r.sample >= r.spec.DataPoints {
			r.phase = phaseStop
		}
	case phaseStop:
		r.spec.Actuator.SetDutyCycle(0)
		if r.spec.EmitTelemetry {
			if err := r.ctrl.PrintData(r.console); err != nil {
				return fmt.Errorf("device: task %q: %w", r.spec.Name, err)
			}
		}
		r.phase = phaseIdle
	case phaseIdle:
		// the run is over; suspend without side effects
	}
	return nil
}

// setup runs to completion in a single resumption; it performs no blocking
// I/O.
func (r *stepRoutine) setup() error {
	r.spec.Actuator.SetDutyCycle(0)
	r.spec.Sensor.Zero()

	ctrl, err := control.New(r.spec.Actuator, r.spec.Sensor, control.Params{
		Kp:         r.gain.Get(r.gainDef),
		Setpoint:   0,
		DataPoints: r.spec.DataPoints,
		Now:        r.clock.Now,
	})
	if err != nil {
		return fmt.Errorf("device: task %q setup: %w", r.spec.Name, err)
	}
	r.ctrl = ctrl
	r.start = r.clock.Now()
	r.phase = phaseSample
	return nil
}
