// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/ffx/internal/commandinpath"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/progress"
	"github.com/matt-FFFFFF/ffx/internal/tool"
	"golang.org/x/sync/semaphore"
)

// ErrInvalidParallelism is returned when MaxParallel is below one.
var ErrInvalidParallelism = errors.New("max parallel must be at least 1")

// ResolveFunc locates a tool's executable relative to dir.
type ResolveFunc func(command, dir string) (string, error)

// CommandFunc builds the Runnable for one batch.
type CommandFunc func(b plan.Batch, path, dir string, args []string) Runnable

// Executor runs execution plans.
type Executor struct {
	MaxParallel int
	Mode        tool.Mode
	FailFast    bool
	Dir         string            // Working directory of every process, usually the repository root
	Reporter    progress.Reporter // Optional
	Resolve     ResolveFunc       // Defaults to commandinpath.Resolve
	NewCommand  CommandFunc       // Defaults to an OSCommand
}

// DefaultCommand builds an OSCommand for b.
func DefaultCommand(b plan.Batch, path, dir string, args []string) Runnable {
	return &OSCommand{
		Label: b.Label(),
		Path:  path,
		Args:  args,
		Cwd:   dir,
	}
}

type resolution struct {
	path string
	err  error
}

// Execute runs every batch of p and returns the report in plan order.
// A non-nil error is returned for invalid input, or together with a partial
// report when ctx was cancelled.
func (e *Executor) Execute(ctx context.Context, p plan.ExecutionPlan) (*RunReport, error) {
	if e.MaxParallel < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidParallelism, e.MaxParallel)
	}

	resolve := e.Resolve
	if resolve == nil {
		resolve = commandinpath.Resolve
	}

	newCommand := e.NewCommand
	if newCommand == nil {
		newCommand = DefaultCommand
	}

	reporter := e.Reporter
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	report := &RunReport{
		ID:      uuid.NewString(),
		Mode:    e.Mode,
		Started: time.Now(),
		Planned: len(p),
	}

	logger := ctxlog.Logger(ctx).With("runID", report.ID)
	ctx = ctxlog.New(ctx, logger)

	logger.Info("executing plan",
		"batches", len(p),
		"files", p.FileCount(),
		"maxParallel", e.MaxParallel,
		"mode", e.Mode.String(),
		"failFast", e.FailFast)

	reportPlanned(reporter, p)

	var (
		slots    = make([]*BatchResult, len(p))
		failed   atomic.Bool
		wg       sync.WaitGroup
		sem      = semaphore.NewWeighted(int64(e.MaxParallel))
		resolved = make(map[int]resolution)
	)

	halted := func() bool {
		return e.FailFast && failed.Load()
	}

dispatch:
	for i, b := range p {
		if slots[i] != nil {
			continue // recorded as missing with the rest of its tool
		}

		if halted() {
			logger.Info("fail-fast: stopping dispatch", "batch", b.Label())
			break
		}

		res, ok := resolved[b.ToolIndex]
		if !ok {
			path, err := resolve(b.Tool.Cmd, e.Dir)
			res = resolution{path: path, err: err}
			resolved[b.ToolIndex] = res

			if err != nil {
				logger.Warn("executable not found", "tool", b.Tool.Name, "cmd", b.Tool.Cmd, "error", err)
				e.recordMissing(p, i, err, slots, reporter)
				failed.Store(true)

				continue
			}

			logger.Debug("resolved executable", "tool", b.Tool.Name, "path", path)
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			logger.Warn("run cancelled, stopping dispatch", "error", err)
			report.Cancelled = true

			break dispatch
		}

		if halted() {
			sem.Release(1)
			logger.Info("fail-fast: stopping dispatch", "batch", b.Label())

			break
		}

		if ctx.Err() != nil {
			sem.Release(1)
			report.Cancelled = true

			break
		}

		args := slices.Concat(b.Tool.ArgsFor(e.Mode), b.Files)
		cmd := newCommand(b, res.path, e.Dir, args)

		wg.Add(1)

		go func() {
			defer wg.Done()
			defer sem.Release(1)

			r := e.runOne(ctx, i, b, res.path, args, cmd, reporter)
			if r.Failed() {
				failed.Store(true)
			}

			slots[i] = r
		}()
	}

	wg.Wait()

	for i, r := range slots {
		if r == nil {
			report.NotAttempted++
			reportSkipped(reporter, i, p[i])

			continue
		}

		report.Results = append(report.Results, r)
	}

	report.Duration = time.Since(report.Started)

	logger.Info("plan finished",
		"attempted", len(report.Results),
		"notAttempted", report.NotAttempted,
		"outcome", report.Outcome().String(),
		"duration", report.Duration)

	if report.Cancelled {
		return report, context.Cause(ctx)
	}

	return report, nil
}

// recordMissing fills every slot from start on that belongs to the same tool.
func (e *Executor) recordMissing(p plan.ExecutionPlan, start int, err error, slots []*BatchResult, reporter progress.Reporter) {
	toolIndex := p[start].ToolIndex

	for j := start; j < len(p); j++ {
		if p[j].ToolIndex != toolIndex {
			continue
		}

		slots[j] = &BatchResult{
			Batch:    p[j],
			Status:   StatusExecutableMissing,
			Args:     slices.Concat(p[j].Tool.ArgsFor(e.Mode), p[j].Files),
			ExitCode: -1,
			Err:      err,
		}
		reportFinished(reporter, j, slots[j])
	}
}

func (e *Executor) runOne(
	ctx context.Context,
	index int, b plan.Batch, path string, args []string,
	cmd Runnable, reporter progress.Reporter,
) *BatchResult {
	logger := ctxlog.Logger(ctx).With("tool", b.Tool.Name, "batch", b.Label())

	reportStarted(reporter, index, b)
	logger.Debug("batch started", "files", len(b.Files))

	if n, ok := cmd.(OutputNotifier); ok {
		n.NotifyOutput(func(line string) {
			reportOutput(reporter, index, b, line)
		})
	}

	pr := cmd.Run(ctx)

	res := &BatchResult{
		Batch:    b,
		Status:   StatusSucceeded,
		Path:     path,
		Args:     args,
		ExitCode: pr.ExitCode,
		StdOut:   pr.StdOut,
		StdErr:   pr.StdErr,
		Err:      pr.Err,
		Duration: pr.Duration,
	}

	if pr.ExitCode != 0 || pr.Err != nil {
		res.Status = StatusFormatterFailed
		logger.Info("batch failed", "exitCode", pr.ExitCode, "error", pr.Err)
	} else {
		logger.Debug("batch succeeded", "duration", pr.Duration)
	}

	reportFinished(reporter, index, res)

	return res
}
