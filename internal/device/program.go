// Package device runs the firmware side of a step-response session: it
// negotiates the control gain and task period over its serial console, runs
// the step-response tasks under the cooperative scheduler, and reports
// per-task diagnostics at shutdown.
package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/olekukonko/tablewriter"

	"github.com/mechalab/steplab/internal/config"
	"github.com/mechalab/steplab/internal/cotask"
	"github.com/mechalab/steplab/internal/share"
	"github.com/mechalab/steplab/internal/wire"
)

// Program owns one serial console and a fixed set of step-response tasks.
// Tasks are created at startup and live for the whole program; there is no
// dynamic task creation.
type Program struct {
	console io.ReadWriter
	reader  *bufio.Reader
	clock   cotask.Clock
	specs   []TaskSpec
}

// NewProgram creates a device program speaking on console. A nil clock means
// the wall clock.
func NewProgram(console io.ReadWriter, clock cotask.Clock, specs ...TaskSpec) *Program {
	if clock == nil {
		clock = cotask.RealClock()
	}
	return &Program{
		console: console,
		reader:  bufio.NewReader(console),
		clock:   clock,
		specs:   specs,
	}
}

// Run prompts for the gain and period, schedules the tasks, and drives the
// scheduler until the context is cancelled. Cancellation is an orderly
// shutdown: diagnostics are written to the console and Run returns nil.
func (p *Program) Run(ctx context.Context) error {
	if err := p.awaitReboot(); err != nil {
		return err
	}

	kp, err := p.promptFloat(wire.KpPrompt, config.DefaultKp)
	if err != nil {
		return err
	}
	p.printf("Running test using kp = %g", kp)

	periodMS, err := p.promptInt(wire.PeriodPrompt, config.DefaultPeriodMS)
	if err != nil {
		return err
	}
	p.printf("Running test using period = %d", periodMS)

	shareKp := share.New("Share_Kp")
	shareKp.Put(kp)

	sched := cotask.NewScheduler(p.clock)
	for _, spec := range p.specs {
		routine := newStepRoutine(spec, shareKp, config.DefaultKp, p.console, p.clock)
		period := time.Duration(periodMS) * time.Millisecond
		task, err := cotask.NewTask(spec.Name, spec.Priority, period, routine)
		if err != nil {
			return err
		}
		sched.Add(task)
	}

	err = sched.Run(ctx)

	p.printDiagnostics(sched, shareKp)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// awaitReboot consumes console bytes until the host's reboot sequence
// arrives. The firmware only reaches its prompts after the host has reset
// it; prompting any earlier would race the host's input flush, and a
// flushed-away prompt is never re-issued.
func (p *Program) awaitReboot() error {
	matched := 0
	for matched < len(wire.Reboot) {
		b, err := p.reader.ReadByte()
		if err != nil {
			return fmt.Errorf("device: await re-arm: %w", err)
		}
		switch {
		case b == wire.Reboot[matched]:
			matched++
		case b == wire.Reboot[0]:
			matched = 1
		default:
			matched = 0
		}
	}
	return nil
}

// promptFloat writes the prompt and parses the response as a float. A
// non-numeric or non-positive response falls back to def; bad configuration
// input never kills the session.
func (p *Program) promptFloat(prompt string, def float64) (float64, error) {
	text, err := p.ask(prompt)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(text, 64)
	if perr != nil || v <= 0 {
		p.printf("invalid input %q, using default %g", text, def)
		return def, nil
	}
	return v, nil
}

// promptInt is promptFloat for positive integers.
func (p *Program) promptInt(prompt string, def int) (int, error) {
	text, err := p.ask(prompt)
	if err != nil {
		return 0, err
	}
	v, perr := strconv.Atoi(text)
	if perr != nil || v <= 0 {
		p.printf("invalid input %q, using default %d", text, def)
		return def, nil
	}
	return v, nil
}

func (p *Program) ask(prompt string) (string, error) {
	if _, err := fmt.Fprintf(p.console, "%s%s", prompt, wire.LineEnding); err != nil {
		return "", fmt.Errorf("device: write prompt: %w", err)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("device: read response: %w", err)
	}
	// the host precedes a session with interrupt/reboot control bytes; they
	// are addressed to the interpreter, not to us, so strip them along with
	// the line terminator
	return strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}), nil
}

func (p *Program) printf(format string, args ...any) {
	fmt.Fprintf(p.console, format+wire.LineEnding, args...)
}

// printDiagnostics emits the shutdown summary: one row per task plus the
// shared-value state. The format is human-readable and not wire-critical;
// the host discards these lines.
func (p *Program) printDiagnostics(sched *cotask.Scheduler, shares ...*share.Share) {
	p.printf("")
	table := tablewriter.NewWriter(p.console)
	table.Header("Task", "Pri", "Period", "Runs", "Last", "Max", "State")
	for _, st := range sched.Stats() {
		state := "ok"
		if st.Failure != nil {
			state = st.Failure.Error()
		}
		_ = table.Append(
			st.Name,
			strconv.Itoa(st.Priority),
			st.Period.String(),
			strconv.Itoa(st.Runs),
			st.LastDuration.String(),
			st.MaxDuration.String(),
			state,
		)
	}
	if err := table.Render(); err != nil {
		p.printf("diagnostics table: %v", err)
	}
	for _, s := range shares {
		p.printf("%s", s.String())
	}
}
