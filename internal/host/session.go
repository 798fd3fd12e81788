package host

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mechalab/steplab/internal/config"
	"github.com/mechalab/steplab/internal/wire"
)

// Option configures a Session.
type Option func(*Session)

// WithSampleObserver registers a callback invoked once per parsed telemetry
// sample, in stream order. Used for progress reporting and live plotting.
func WithSampleObserver(fn func(x, y float64)) Option {
	return func(s *Session) { s.onSample = fn }
}

// WithLogger routes the session's diagnostics (discarded lines, fallbacks).
// The default logger drops them.
func WithLogger(fn func(format string, args ...any)) Option {
	return func(s *Session) { s.logf = fn }
}

// Session drives one data-collection run against the device. Invalid gain or
// period inputs silently fall back to the defaults rather than failing the
// session; correctness depends only on eventually observing the terminator
// token.
type Session struct {
	tr       Transport
	kp       float64
	periodMS int
	onSample func(x, y float64)
	logf     func(format string, args ...any)
}

// NewSession prepares a session that will configure the device with the
// given gain and period.
func NewSession(tr Transport, kp float64, periodMS int, opts ...Option) *Session {
	s := &Session{
		tr:       tr,
		kp:       kp,
		periodMS: periodMS,
		logf:     func(string, ...any) {},
	}
	if s.kp <= 0 || math.IsNaN(s.kp) || math.IsInf(s.kp, 0) {
		s.kp = config.DefaultKp
	}
	if s.periodMS <= 0 {
		s.periodMS = config.DefaultPeriodMS
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run resets the device, negotiates the configuration, and reads telemetry
// until the terminator token, then interrupts the device and closes the
// transport. The returned dataset holds whatever was collected, even on
// error. Cancellation closes the transport to unblock an in-flight read;
// other error paths leave it open so the caller can retry or inspect it.
func (s *Session) Run(ctx context.Context) (*Dataset, error) {
	if err := s.reset(); err != nil {
		return NewDataset(), err
	}

	// a blocked line read cannot observe the context on its own; closing the
	// transport is what wakes it
	stop := context.AfterFunc(ctx, func() { s.tr.Close() })
	defer stop()

	reader := bufio.NewReader(s.tr)
	data := NewDataset()

	for {
		if err := ctx.Err(); err != nil {
			return data, err
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return data, cerr
			}
			return data, fmt.Errorf("host: read line: %w", err)
		}
		text := strings.TrimSpace(line)

		switch {
		case text == wire.KpPrompt:
			if err := s.send(strconv.FormatFloat(s.kp, 'g', -1, 64)); err != nil {
				return data, err
			}
		case text == wire.PeriodPrompt:
			if err := s.send(strconv.Itoa(s.periodMS)); err != nil {
				return data, err
			}
		case text == wire.Terminator:
			// session over: interrupt whatever keeps running on the device
			if _, err := s.tr.Write(wire.Interrupt); err != nil {
				return data, fmt.Errorf("host: final interrupt: %w", err)
			}
			if err := s.tr.Close(); err != nil {
				return data, fmt.Errorf("host: close transport: %w", err)
			}
			return data, nil
		default:
			s.parseLine(text, data)
		}
	}
}

// reset flushes both directions and reboots the device into a receptive
// state. No data is trusted until this completes.
func (s *Session) reset() error {
	if err := s.tr.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("host: flush output: %w", err)
	}
	if _, err := s.tr.Write(wire.Interrupt); err != nil {
		return fmt.Errorf("host: interrupt: %w", err)
	}
	if err := s.tr.ResetInputBuffer(); err != nil {
		return fmt.Errorf("host: flush input: %w", err)
	}
	if _, err := s.tr.Write(wire.Reboot); err != nil {
		return fmt.Errorf("host: reboot: %w", err)
	}
	return nil
}

func (s *Session) send(text string) error {
	if _, err := s.tr.Write([]byte(text + wire.LineEnding)); err != nil {
		return fmt.Errorf("host: send %q: %w", text, err)
	}
	return nil
}

// parseLine treats the line as a time,position sample. Anything that does
// not parse is diagnostic chatter from the device; it is logged and
// discarded, never fatal.
func (s *Session) parseLine(text string, data *Dataset) {
	fields := strings.Split(text, ",")
	if len(fields) < 2 {
		s.logf("discarding line %q: want 2 columns, got %d", text, len(fields))
		return
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if errX != nil || errY != nil {
		s.logf("discarding line %q: non-numeric column", text)
		return
	}
	data.Append(x, y)
	if s.onSample != nil {
		s.onSample(x, y)
	}
}
