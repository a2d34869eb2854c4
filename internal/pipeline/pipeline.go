// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline wires one ffx run together: load the config, discover
// candidate files, match them to tools, plan batches and execute them.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/ffx/internal/config"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/matt-FFFFFF/ffx/internal/discover"
	"github.com/matt-FFFFFF/ffx/internal/matcher"
	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/progress"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
	"github.com/matt-FFFFFF/ffx/internal/tool"
)

// MsgNoMatches is shown when files were found but no tool selected any.
const MsgNoMatches = "No files matched any tool patterns"

// ErrInvalidOptions is returned for option values the run cannot use.
var ErrInvalidOptions = errors.New("invalid options")

// DiscoverFunc lists the candidate files.
type DiscoverFunc func(ctx context.Context, dir string, mode discover.Mode) (*discover.Result, error)

// Options control a run.
type Options struct {
	Config    string // Path or go-getter URL, defaults to .ffx.yaml in the working directory
	Dir       string // Where discovery starts, defaults to the working directory
	Discover  discover.Mode
	Mode      tool.Mode
	Jobs      int
	BatchSize int
	FailFast  bool

	// Hooks, nil means the real implementation.
	DiscoverFiles DiscoverFunc
	Resolve       runbatch.ResolveFunc
	NewCommand    runbatch.CommandFunc
}

// Prepared is everything decided before any formatter runs.
type Prepared struct {
	Config  *config.Config
	Root    string   // Directory formatters run in
	Files   []string // Candidate files, relative to Root
	Matches matcher.MatchSet
	Plan    plan.ExecutionPlan
	// Message is set when there is nothing to run, e.g. "No staged files".
	Message string
}

// Nothing reports whether the plan is empty.
func (p *Prepared) Nothing() bool {
	return len(p.Plan) == 0
}

func (o *Options) validate() error {
	var errs []error

	if o.Jobs < 1 {
		errs = append(errs, fmt.Errorf("%w: jobs must be at least 1, got %d", runbatch.ErrInvalidParallelism, o.Jobs))
	}

	if o.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("%w: got %d", plan.ErrInvalidBatchSize, o.BatchSize))
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvalidOptions}, errs...)...)
}

// Prepare loads the config and builds the execution plan.
func Prepare(ctx context.Context, opts Options) (*Prepared, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(ctx, opts.Config)
	if err != nil {
		return nil, err
	}

	tools := cfg.Registry()

	if err := matcher.Validate(tools); err != nil {
		return nil, errors.Join(config.ErrInvalidConfig, err)
	}

	discoverFiles := opts.DiscoverFiles
	if discoverFiles == nil {
		discoverFiles = discover.Discover
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	found, err := discoverFiles(ctx, dir, opts.Discover)
	if err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "files discovered",
		"mode", opts.Discover.String(),
		"root", found.Root,
		"inRepo", found.InRepo,
		"files", len(found.Files),
		"tools", tools.Names())

	p := &Prepared{
		Config: cfg,
		Root:   found.Root,
		Files:  found.Files,
	}

	if len(found.Files) == 0 {
		p.Message = opts.Discover.EmptyMessage()
		return p, nil
	}

	p.Matches = matcher.Match(tools, found.Files)
	if p.Matches.Empty() {
		p.Message = MsgNoMatches
		return p, nil
	}

	p.Plan, err = plan.New(p.Matches, opts.BatchSize)
	if err != nil {
		return nil, err
	}

	ctxlog.Info(ctx, "plan ready",
		"candidates", len(found.Files),
		"matched", p.Matches.FileCount(),
		"batches", len(p.Plan))

	return p, nil
}

// Execute runs the prepared plan.
func (p *Prepared) Execute(ctx context.Context, opts Options, reporter progress.Reporter) (*runbatch.RunReport, error) {
	e := &runbatch.Executor{
		MaxParallel: opts.Jobs,
		Mode:        opts.Mode,
		FailFast:    opts.FailFast,
		Dir:         p.Root,
		Reporter:    reporter,
		Resolve:     opts.Resolve,
		NewCommand:  opts.NewCommand,
	}

	return e.Execute(ctx, p.Plan)
}

// Run prepares and executes in one step. The report is nil when there was
// nothing to run; Prepared.Message says why.
func Run(ctx context.Context, opts Options, reporter progress.Reporter) (*Prepared, *runbatch.RunReport, error) {
	p, err := Prepare(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	if p.Nothing() {
		return p, nil, nil
	}

	r, err := p.Execute(ctx, opts, reporter)

	return p, r, err
}

// IsUsageError reports whether err should exit with the config error code.
func IsUsageError(err error) bool {
	return config.IsConfigError(err) || errors.Is(err, ErrInvalidOptions)
}
