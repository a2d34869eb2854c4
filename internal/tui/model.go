// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/ffx/internal/progress"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
)

// BatchStatus represents the current state of a batch in the TUI.
type BatchStatus int

const (
	StatusWaiting BatchStatus = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusMissing
	StatusSkipped
)

// String returns a string representation of the batch status.
func (s BatchStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusMissing:
		return "missing"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Done reports whether the batch will not change any more.
func (s BatchStatus) Done() bool {
	return s >= StatusSucceeded
}

// BatchRow is one line of the view.
type BatchRow struct {
	Label  string
	Tool   string
	Files  int
	Status BatchStatus
	Start  time.Time
	End    time.Time
	Detail string // Latest output while running, first output line or error once failed
}

// Elapsed returns how long the batch has been, or was, running.
func (r *BatchRow) Elapsed(now time.Time) time.Duration {
	switch {
	case r.Start.IsZero():
		return 0
	case r.End.IsZero():
		return now.Sub(r.Start)
	default:
		return r.End.Sub(r.Start)
	}
}

// Model represents the TUI application state.
type Model struct {
	title     string
	rows      []*BatchRow
	spinner   spinner.Model
	width     int
	height    int
	offset    int // First visible row
	quitting  bool
	completed bool
	report    *runbatch.RunReport
	now       func() time.Time
	styles    *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Waiting lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
	Detail  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Waiting: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Skipped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Strikethrough(true),
		Detail: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a new TUI model.
func NewModel(title string) *Model {
	styles := NewStyles()

	return &Model{
		title:   title,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Running)),
		now:     time.Now,
		styles:  styles,
	}
}

// Rows returns the batch rows in plan order.
func (m *Model) Rows() []*BatchRow {
	return m.rows
}

// Quitting reports whether the user closed the view.
func (m *Model) Quitting() bool {
	return m.quitting
}

// row returns the row for a plan index, growing the table when needed.
func (m *Model) row(e progress.Event) *BatchRow {
	for len(m.rows) <= e.Index {
		m.rows = append(m.rows, &BatchRow{})
	}

	r := m.rows[e.Index]
	r.Label = e.Batch
	r.Tool = e.Tool
	r.Files = e.Files

	return r
}

// processProgressEvent applies an event to its row.
func (m *Model) processProgressEvent(e progress.Event) {
	if e.Index < 0 {
		return
	}

	r := m.row(e)

	switch e.Type {
	case progress.EventPlanned:
		r.Status = StatusWaiting

	case progress.EventStarted:
		r.Status = StatusRunning
		r.Start = e.Timestamp

	case progress.EventOutput:
		if r.Status == StatusRunning {
			r.Detail = e.Data.OutputLine
		}

	case progress.EventCompleted:
		r.Status = StatusSucceeded
		r.End = e.Timestamp
		r.Detail = ""

		if r.Start.IsZero() {
			r.Start = e.Timestamp.Add(-e.Data.Duration)
		}

	case progress.EventFailed:
		r.Status = StatusFailed
		r.End = e.Timestamp

		if e.Message == progress.MsgNotFound {
			r.Status = StatusMissing
		} else if r.Start.IsZero() {
			r.Start = e.Timestamp.Add(-e.Data.Duration)
		}

		switch {
		case e.Data.OutputLine != "":
			r.Detail = e.Data.OutputLine
		case e.Data.Error != nil:
			r.Detail = e.Data.Error.Error()
		default:
			r.Detail = e.Message
		}

	case progress.EventSkipped:
		r.Status = StatusSkipped
		r.Detail = e.Message
	}
}

// counts returns finished and failed batch counts.
func (m *Model) counts() (done, failed int) {
	for _, r := range m.rows {
		if r.Status.Done() {
			done++
		}

		if r.Status == StatusFailed || r.Status == StatusMissing {
			failed++
		}
	}

	return done, failed
}

// viewportHeight returns how many rows fit on screen.
func (m *Model) viewportHeight() int {
	// title, blank, status line, help
	const reservedLines = 5
	if m.height == 0 {
		return len(m.rows)
	}

	return max(1, m.height-reservedLines)
}

func (m *Model) clampOffset() {
	maxOffset := max(0, len(m.rows)-m.viewportHeight())
	m.offset = min(max(m.offset, 0), maxOffset)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}

	r := []rune(s)
	if width <= 1 || len(r) <= 1 {
		return string(r[:min(len(r), width)])
	}

	return strings.TrimSpace(string(r[:min(len(r), width-1)])) + "…"
}
