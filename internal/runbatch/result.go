// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"strings"
	"time"

	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/tool"
)

// Status is the outcome of one batch.
type Status int

const (
	// StatusSucceeded means the process exited zero.
	StatusSucceeded Status = iota
	// StatusFormatterFailed means a non-zero exit, or the process could not be
	// spawned or its output could not be read (see BatchResult.Err).
	StatusFormatterFailed
	// StatusExecutableMissing means the tool's command could not be resolved.
	// No process was spawned.
	StatusExecutableMissing
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFormatterFailed:
		return "failed"
	case StatusExecutableMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// BatchResult is the outcome of one attempted batch. It is written once by the
// executor and not modified afterwards.
type BatchResult struct {
	Batch    plan.Batch
	Status   Status
	Path     string   // Resolved executable, empty when missing
	Args     []string // Arguments after the executable, files included
	ExitCode int
	StdOut   []byte
	StdErr   []byte
	Err      error
	Duration time.Duration
}

// Failed reports whether the batch did not succeed.
func (r *BatchResult) Failed() bool {
	return r.Status != StatusSucceeded
}

// Command renders the invocation as the user would type it.
func (r *BatchResult) Command() string {
	parts := make([]string, 0, len(r.Args)+1)
	parts = append(parts, r.Batch.Tool.Cmd)

	for _, a := range r.Args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$`;&|<>*?()[]{}") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}

		parts = append(parts, a)
	}

	return strings.Join(parts, " ")
}

// Outcome is the overall result of a run, in increasing precedence.
type Outcome int

const (
	// OutcomeSuccess means every attempted batch succeeded.
	OutcomeSuccess Outcome = iota
	// OutcomeFormatterFailure means at least one batch failed and none were missing.
	OutcomeFormatterFailure
	// OutcomeExecutableMissing means at least one tool's command was not found.
	OutcomeExecutableMissing
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFormatterFailure:
		return "formatter failure"
	case OutcomeExecutableMissing:
		return "executable missing"
	default:
		return "unknown"
	}
}

// RunReport is the aggregate of a run.
type RunReport struct {
	ID           string
	Mode         tool.Mode
	Started      time.Time
	Duration     time.Duration
	Planned      int            // Number of batches in the plan
	Results      []*BatchResult // Attempted batches, in plan order
	NotAttempted int            // Batches never started because of fail-fast or cancellation
	Cancelled    bool           // The run was abandoned through its context
}

// Outcome derives the overall outcome: missing beats failed beats success.
func (r *RunReport) Outcome() Outcome {
	out := OutcomeSuccess

	for _, res := range r.Results {
		switch res.Status {
		case StatusExecutableMissing:
			return OutcomeExecutableMissing
		case StatusFormatterFailed:
			out = OutcomeFormatterFailure
		}
	}

	return out
}

// Count returns how many results have status s.
func (r *RunReport) Count(s Status) int {
	n := 0

	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}

	return n
}
