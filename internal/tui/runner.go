// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/matt-FFFFFF/ffx/internal/progress"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
)

// eventBuffer is the number of progress events held while the UI catches up.
const eventBuffer = 1024

// ErrStoppedByUser is the cancellation cause when the view is closed early.
var ErrStoppedByUser = errors.New("stopped from the terminal UI")

// RunFunc executes a plan, sending progress to reporter.
type RunFunc func(ctx context.Context, reporter progress.Reporter) (*runbatch.RunReport, error)

// Runner manages the TUI program and progress event integration.
type Runner struct {
	model   *Model
	program *tea.Program
}

// forwarder sends progress events to the tea program.
type forwarder struct {
	program *tea.Program
}

// OnEvent implements progress.Listener.
func (f forwarder) OnEvent(event progress.Event) {
	f.program.Send(ProgressEventMsg{Event: event})
}

// NewRunner creates a new TUI runner. Options are applied after the
// defaults, so callers can redirect input and output.
func NewRunner(title string, opts ...tea.ProgramOption) *Runner {
	model := NewModel(title)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)

	return &Runner{
		model:   model,
		program: tea.NewProgram(model, opts...),
	}
}

type runOutcome struct {
	report *runbatch.RunReport
	err    error
}

// Run starts the TUI and calls fn with a reporter feeding it. The view closes
// once fn returns. Closing the view early cancels the run with
// ErrStoppedByUser. If the TUI cannot start, fn still runs to completion.
func (r *Runner) Run(ctx context.Context, fn RunFunc) (*runbatch.RunReport, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	reporter := progress.NewChannelReporter(eventBuffer)
	reporter.Listen(forwarder{program: r.program})

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	resultCh := make(chan runOutcome, 1)

	go func() {
		report, err := fn(ctx, reporter)
		reporter.Close()
		resultCh <- runOutcome{report: report, err: err}
	}()

	select {
	case out := <-resultCh:
		r.program.Send(RunCompletedMsg{Report: out.report})

		if err := <-tuiDone; err != nil {
			ctxlog.Warn(ctx, "terminal UI exited with error", "error", err)
		}

		return out.report, out.err

	case err := <-tuiDone:
		if err != nil {
			ctxlog.Warn(ctx, "terminal UI failed, continuing without it", "error", err)
		} else if r.model.Quitting() {
			cancel(ErrStoppedByUser)
		}

		out := <-resultCh
		if out.err != nil && err != nil {
			return out.report, fmt.Errorf("%w (terminal UI: %w)", out.err, err)
		}

		return out.report, out.err
	}
}
