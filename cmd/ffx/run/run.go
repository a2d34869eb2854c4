// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the run command, also the default action of ffx.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/ffx/internal/config"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/matt-FFFFFF/ffx/internal/discover"
	"github.com/matt-FFFFFF/ffx/internal/pipeline"
	"github.com/matt-FFFFFF/ffx/internal/plan"
	"github.com/matt-FFFFFF/ffx/internal/progress"
	"github.com/matt-FFFFFF/ffx/internal/report"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
	"github.com/matt-FFFFFF/ffx/internal/tool"
	"github.com/matt-FFFFFF/ffx/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	allFlag       = "all"
	changedFlag   = "changed"
	configFlag    = "config"
	jobsFlag      = "jobs"
	batchSizeFlag = "batch-size"
	checkFlag     = "check"
	failFastFlag  = "fail-fast"
	verboseFlag   = "verbose"
	tuiFlag       = "tui"
	outFlag       = "out"
)

var (
	// ErrConflictingModes is returned when --all and --changed are both set.
	ErrConflictingModes = errors.New("--all and --changed cannot be used together")
	// ErrWriteResults is returned when --out cannot be written.
	ErrWriteResults = errors.New("failed to write results")
)

// Flags returns the run flags. Each call returns new flag values, so the root
// command and the run subcommand can both carry them.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  allFlag,
			Usage: "Run on all tracked files matching config patterns (default: staged files only)",
		},
		&cli.BoolFlag{
			Name:  changedFlag,
			Usage: "Run on staged, unstaged and untracked files",
		},
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Path to the config file. Supports Hashicorp's go-getter syntax for remote files.",
			Value:     config.DefaultFile,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:    jobsFlag,
			Aliases: []string{"j"},
			Usage:   "Max parallel processes. Defaults to the number of CPUs.",
			Value:   runtime.NumCPU(),
		},
		&cli.IntFlag{
			Name:  batchSizeFlag,
			Usage: "Max files passed to one formatter invocation",
			Value: plan.DefaultBatchSize,
		},
		&cli.BoolFlag{
			Name:  checkFlag,
			Usage: "Check formatting without writing, using each tool's check_args",
		},
		&cli.BoolFlag{
			Name:  failFastFlag,
			Usage: "Stop scheduling new work on first failure",
		},
		&cli.BoolFlag{
			Name:    verboseFlag,
			Aliases: []string{"v"},
			Usage:   "Print full commands and output",
		},
		&cli.BoolFlag{
			Name:    tuiFlag,
			Aliases: []string{"t"},
			Usage:   "Show live progress in a terminal UI",
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Save the results to a file, view them later with 'ffx show'",
			TakesFile: true,
			OnlyOnce:  true,
		},
	}
}

// New returns the run command.
func New() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the configured formatters",
		Description: `Discover files, match them to the tools in the config file and run
each tool on its files in parallel batches.

By default only staged files are formatted. Use --changed to include
unstaged and untracked files, or --all for every tracked file.

Exit codes: 0 success, 1 a formatter failed, 2 config or usage error,
3 a formatter executable was not found.`,
		Flags:  Flags(),
		Action: Action,
	}
}

func optionsFromFlags(cmd *cli.Command) (pipeline.Options, error) {
	opts := pipeline.Options{
		Config:    cmd.String(configFlag),
		Discover:  discover.ModeStaged,
		Mode:      tool.ModeFormat,
		Jobs:      cmd.Int(jobsFlag),
		BatchSize: cmd.Int(batchSizeFlag),
		FailFast:  cmd.Bool(failFastFlag),
	}

	switch {
	case cmd.Bool(allFlag) && cmd.Bool(changedFlag):
		return opts, ErrConflictingModes
	case cmd.Bool(allFlag):
		opts.Discover = discover.ModeAll
	case cmd.Bool(changedFlag):
		opts.Discover = discover.ModeChanged
	}

	if cmd.Bool(checkFlag) {
		opts.Mode = tool.ModeCheck
	}

	return opts, nil
}

// Action runs the pipeline and prints the report.
func Action(ctx context.Context, cmd *cli.Command) error {
	stdout, stderr := cmd.Root().Writer, cmd.Root().ErrWriter
	verbose := cmd.Bool(verboseFlag)

	if verbose {
		ctxlog.Lower(slog.LevelInfo)
	}

	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	opts, err := optionsFromFlags(cmd)
	if err != nil {
		return cli.Exit("Error: "+err.Error(), report.ExitConfigError)
	}

	p, err := pipeline.Prepare(ctx, opts)

	switch {
	case config.IsConfigError(err):
		return cli.Exit(fmt.Sprintf("Error: Failed to load config from %s: %s", opts.Config, err), report.ExitConfigError)
	case err != nil:
		return cli.Exit("Error: "+err.Error(), report.ExitConfigError)
	}

	if verbose {
		printTools(stdout, p.Config.Registry())
	}

	if p.Nothing() {
		fmt.Fprintln(stdout, p.Message) // nolint:errcheck
		return nil
	}

	logger.Info("running formatters", "tools", len(p.Plan.Tools()), "batches", len(p.Plan), "jobs", opts.Jobs)

	rep, runErr := execute(ctx, cmd, p, opts)
	if rep == nil {
		return cli.Exit("Error: "+runErr.Error(), report.ExitConfigError)
	}

	if out := cmd.String(outFlag); out != "" {
		if err := writeResults(out, rep); err != nil {
			return cli.Exit("Error: "+err.Error(), report.ExitConfigError)
		}

		logger.Info("results saved", "file", out)
	}

	output := report.Render(rep, verbose)

	fmt.Fprint(stderr, output.Details) // nolint:errcheck
	fmt.Fprint(stdout, output.Summary) // nolint:errcheck

	code := output.ExitCode

	if runErr != nil {
		logger.Warn("run interrupted", "error", runErr)

		if code == report.ExitSuccess {
			code = report.ExitFormatterFailure
		}
	}

	if code != report.ExitSuccess {
		return cli.Exit("", code)
	}

	return nil
}

func execute(ctx context.Context, cmd *cli.Command, p *pipeline.Prepared, opts pipeline.Options) (*runbatch.RunReport, error) {
	if !cmd.Bool(tuiFlag) {
		return p.Execute(ctx, opts, nil)
	}

	// Log lines would tear through the alternate screen, so hold them until it closes.
	var logs bytes.Buffer

	title := fmt.Sprintf("ffx %s: %s in %s",
		opts.Mode, report.Plural(p.Plan.FileCount(), "file"), report.Plural(len(p.Plan), "batch"))

	r := tui.NewRunner(title, tea.WithoutSignalHandler())

	rep, err := r.Run(ctxlog.NewForTUI(ctx, &logs), func(ctx context.Context, reporter progress.Reporter) (*runbatch.RunReport, error) {
		return p.Execute(ctx, opts, reporter)
	})

	io.Copy(cmd.Root().ErrWriter, &logs) // nolint:errcheck

	return rep, err
}

func printTools(w io.Writer, tools tool.Registry) {
	fmt.Fprintf(w, "Loaded config with %s:\n", report.Plural(len(tools), "tool")) // nolint:errcheck

	for _, t := range tools {
		fmt.Fprintf(w, "  - %s (%s)\n", t.Name, report.Plural(len(t.Include), "pattern")) // nolint:errcheck
	}

	fmt.Fprintln(w) // nolint:errcheck
}

func writeResults(name string, rep *runbatch.RunReport) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteResults, err)
	}

	defer f.Close() //nolint:errcheck

	if err := runbatch.WriteBinary(f, rep); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteResults, name, err)
	}

	return nil
}
