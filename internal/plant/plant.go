// Package plant defines the collaborator interfaces the controller drives
// and a simulated motor implementing them for bench-less runs.
package plant

// Actuator is the actuation sink. Implementations clamp the duty cycle to
// [-100, 100]; callers pass the raw control output.
type Actuator interface {
	SetDutyCycle(pct float64)
}

// Sensor is the position source, reporting position in encoder counts.
type Sensor interface {
	Read() int
	Zero()
}
