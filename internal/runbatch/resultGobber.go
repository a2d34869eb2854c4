// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/tool"
)

const gobVersion = 1

var (
	// ErrWriteGob is returned when writing the results to a binary format fails.
	ErrWriteGob = errors.New("failed to write binary results")
	// ErrReadGob is returned when reading binary results fails.
	ErrReadGob = errors.New("failed to read binary results")
	// ErrGobVersion is returned for results written by an incompatible version.
	ErrGobVersion = errors.New("unsupported results file version")
)

// gobResult mirrors BatchResult with the error flattened to a string,
// gob cannot encode arbitrary error implementations.
type gobResult struct {
	Batch    plan.Batch
	Status   Status
	Path     string
	Args     []string
	ExitCode int
	StdOut   []byte
	StdErr   []byte
	Err      string
	Duration time.Duration
}

type gobReport struct {
	Version      int
	ID           string
	Mode         tool.Mode
	Started      time.Time
	Duration     time.Duration
	Planned      int
	Results      []gobResult
	NotAttempted int
	Cancelled    bool
}

// WriteBinary persists r to w.
func WriteBinary(w io.Writer, r *RunReport) error {
	g := gobReport{
		Version:      gobVersion,
		ID:           r.ID,
		Mode:         r.Mode,
		Started:      r.Started,
		Duration:     r.Duration,
		Planned:      r.Planned,
		NotAttempted: r.NotAttempted,
		Cancelled:    r.Cancelled,
		Results:      make([]gobResult, len(r.Results)),
	}

	for i, res := range r.Results {
		g.Results[i] = gobResult{
			Batch:    res.Batch,
			Status:   res.Status,
			Path:     res.Path,
			Args:     res.Args,
			ExitCode: res.ExitCode,
			StdOut:   res.StdOut,
			StdErr:   res.StdErr,
			Duration: res.Duration,
		}
		if res.Err != nil {
			g.Results[i].Err = res.Err.Error()
		}
	}

	if err := gob.NewEncoder(w).Encode(g); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// ReadBinary loads a report written by WriteBinary.
// Errors come back as plain errors carrying the original message.
func ReadBinary(rd io.Reader) (*RunReport, error) {
	var g gobReport
	if err := gob.NewDecoder(rd).Decode(&g); err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	if g.Version != gobVersion {
		return nil, fmt.Errorf("%w: %d", ErrGobVersion, g.Version)
	}

	r := &RunReport{
		ID:           g.ID,
		Mode:         g.Mode,
		Started:      g.Started,
		Duration:     g.Duration,
		Planned:      g.Planned,
		NotAttempted: g.NotAttempted,
		Cancelled:    g.Cancelled,
		Results:      make([]*BatchResult, len(g.Results)),
	}

	for i, gr := range g.Results {
		r.Results[i] = &BatchResult{
			Batch:    gr.Batch,
			Status:   gr.Status,
			Path:     gr.Path,
			Args:     gr.Args,
			ExitCode: gr.ExitCode,
			StdOut:   gr.StdOut,
			StdErr:   gr.StdErr,
			Duration: gr.Duration,
		}
		if gr.Err != "" {
			r.Results[i].Err = errors.New(gr.Err)
		}
	}

	return r, nil
}
