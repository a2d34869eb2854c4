// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/ffx/internal/progress"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
)

const (
	durationRounding = 100 * time.Millisecond
	labelWidth       = 24
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// RunCompletedMsg indicates that the executor has returned.
type RunCompletedMsg struct {
	Report *runbatch.RunReport
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		m.processProgressEvent(msg.Event)
		m.clampOffset()

		return m, nil

	case RunCompletedMsg:
		m.completed = true
		m.report = msg.Report

		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m.offset--
	case "down", "j":
		m.offset++
	case "pgup":
		m.offset -= m.viewportHeight()
	case "pgdown":
		m.offset += m.viewportHeight()
	case "home", "g":
		m.offset = 0
	case "end", "G":
		m.offset = len(m.rows)
	}

	m.clampOffset()

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Stopping...\n"
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")

	now := m.now()
	end := min(len(m.rows), m.offset+m.viewportHeight())

	for _, r := range m.rows[m.offset:end] {
		b.WriteString(m.renderRow(r, now))
		b.WriteString("\n")
	}

	done, failed := m.counts()
	status := fmt.Sprintf("%d/%d batches done", done, len(m.rows))

	if failed > 0 {
		status += ", " + m.styles.Failed.Render(fmt.Sprintf("%d failed", failed))
	}

	b.WriteString("\n")
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/↓ or j/k to scroll, 'q' to stop"))

	return b.String()
}

// renderRow renders one batch line: icon, label, file count, timing and detail.
func (m *Model) renderRow(r *BatchRow, now time.Time) string {
	var icon, label string

	name := fmt.Sprintf("%-*s", labelWidth, truncate(r.Label, labelWidth))

	switch r.Status {
	case StatusRunning:
		icon = m.spinner.View()
		label = m.styles.Running.Render(name)
	case StatusSucceeded:
		icon = m.styles.Success.Render("✓")
		label = m.styles.Success.Render(name)
	case StatusFailed, StatusMissing:
		icon = m.styles.Failed.Render("✗")
		label = m.styles.Failed.Render(name)
	case StatusSkipped:
		icon = m.styles.Skipped.Render("~")
		label = m.styles.Skipped.Render(name)
	default:
		icon = m.styles.Waiting.Render("·")
		label = m.styles.Waiting.Render(name)
	}

	line := fmt.Sprintf("%s %s %4d files", icon, label, r.Files)

	if !r.Start.IsZero() {
		line += m.styles.Detail.Render(fmt.Sprintf(" (%v)", r.Elapsed(now).Round(durationRounding)))
	}

	if r.Detail != "" && (r.Status == StatusRunning || r.Status == StatusFailed || r.Status == StatusMissing) {
		width := m.width - labelWidth - 30 //nolint:mnd // icon, counts and timing
		line += "  " + m.styles.Detail.Render(truncate(r.Detail, width))
	}

	return line
}
