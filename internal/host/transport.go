// Package host implements the PC side of a step-response session: it resets
// the device, answers its configuration prompts, and parses the telemetry
// stream into a dataset.
package host

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Transport is the byte link to the device. The session owns it exclusively
// for the duration of one data collection; there are no concurrent sessions.
type Transport interface {
	io.ReadWriter
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

// OpenSerial opens the named serial endpoint at the given baud rate.
// go.bug.st/serial ports satisfy Transport directly.
func OpenSerial(name string, baud int) (Transport, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("host: open %s: %w", name, err)
	}
	return port, nil
}
