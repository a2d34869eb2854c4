// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"time"
)

// Runnable is one external invocation.
type Runnable interface {
	// Run executes the process and waits for it, draining its output.
	// It must not return before the output streams are closed.
	Run(ctx context.Context) *ProcessResult
	// GetLabel returns the label used in logs.
	GetLabel() string
}

// OutputNotifier is implemented by Runnables that can report output lines
// while they run.
type OutputNotifier interface {
	NotifyOutput(fn func(line string))
}

// ProcessResult is the raw outcome of a Runnable.
type ProcessResult struct {
	ExitCode int    // -1 when the process could not be started or was killed
	StdOut   []byte // Captured standard output
	StdErr   []byte // Captured standard error
	Err      error  // Spawn, read or signal error, nil on a clean exit
	Duration time.Duration
}
