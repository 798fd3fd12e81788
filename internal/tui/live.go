// Package tui renders an in-progress capture as a live terminal view.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	plotWidth  = 70
	plotHeight = 16
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

type TickMsg time.Time

// Sample is one telemetry point pushed into the view.
type Sample struct {
	TimeMS   float64
	Position float64
}

// Model polls a sample channel on every tick and plots what has arrived so
// far. Closing the channel marks the capture complete.
type Model struct {
	samples  <-chan Sample
	kp       float64
	periodMS int
	setpoint int

	xs, ys []float64
	done   bool
}

func NewModel(samples <-chan Sample, kp float64, periodMS, setpoint int) Model {
	return Model{
		samples:  samples,
		kp:       kp,
		periodMS: periodMS,
		setpoint: setpoint,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case TickMsg:
		m.drain()
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// drain pulls every sample that arrived since the last tick without blocking
// the render loop.
func (m *Model) drain() {
	for {
		select {
		case s, ok := <-m.samples:
			if !ok {
				m.done = true
				return
			}
			m.xs = append(m.xs, s.TimeMS)
			m.ys = append(m.ys, s.Position)
		default:
			return
		}
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("step response capture"))
	b.WriteString("\n")

	if len(m.ys) > 1 {
		plot := asciigraph.Plot(m.ys,
			asciigraph.Width(plotWidth),
			asciigraph.Height(plotHeight),
			asciigraph.Caption("position (encoder counts)"),
		)
		b.WriteString(graphStyle.Render(plot))
	} else {
		b.WriteString(graphStyle.Render("waiting for telemetry..."))
	}
	b.WriteString("\n")

	b.WriteString(statsStyle.Render(m.stats()))
	b.WriteString("\n")

	if m.done {
		b.WriteString(doneStyle.Render("capture complete"))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) stats() string {
	last := 0.0
	elapsed := 0.0
	if n := len(m.ys); n > 0 {
		last = m.ys[n-1]
		elapsed = m.xs[n-1]
	}
	rows := []struct {
		label string
		value string
	}{
		{"samples", fmt.Sprintf("%d", len(m.ys))},
		{"elapsed", fmt.Sprintf("%.0f ms", elapsed)},
		{"position", fmt.Sprintf("%.0f", last)},
		{"setpoint", fmt.Sprintf("%d", m.setpoint)},
		{"kp", fmt.Sprintf("%g", m.kp)},
		{"period", fmt.Sprintf("%d ms", m.periodMS)},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
