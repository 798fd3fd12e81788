// Package wire pins down the byte-level contract between the device firmware
// and the host. Both sides of the serial link import these values; nothing
// else may hardcode them.
package wire

const (
	// KpPrompt is printed by the device when it is waiting for the control
	// gain. The host matches it exactly after trimming whitespace.
	KpPrompt = "Input the desired float type Kp value (control gain value) for the next sample:"

	// PeriodPrompt is printed by the device when it is waiting for the task
	// period in milliseconds.
	PeriodPrompt = "Input the desired integer type period for the task to run:"

	// Terminator ends a telemetry dump. The host stops its read loop on it.
	Terminator = "End"

	// LineEnding terminates every line written to the serial link.
	LineEnding = "\r\n"
)

var (
	// Interrupt stops whatever the device is currently running.
	Interrupt = []byte{0x03}

	// Reboot puts the device interpreter in a receptive state and reboots it.
	Reboot = []byte{0x02, 0x04}
)
