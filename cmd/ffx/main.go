// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the ffx command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/ffx"
	"github.com/matt-FFFFFF/ffx/cmd/ffx/config"
	"github.com/matt-FFFFFF/ffx/cmd/ffx/run"
	"github.com/matt-FFFFFF/ffx/cmd/ffx/show"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/matt-FFFFFF/ffx/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func init() {
	// -v is --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

// newRootCmd builds the root command. Without a subcommand it runs the formatters.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Name:      "ffx",
		Usage:     "Fast parallel formatter runner for staged files",
		UsageText: "ffx [--all | --changed] [--check] [-j N] [-c FILE]",
		Version:   fmt.Sprintf("%s (commit: %s)", ffx.Version, ffx.Commit),
		Description: `ffx runs the formatters declared in .ffx.yaml on the files of a git
repository. Files are routed to every tool whose include patterns match
them, split into batches and formatted in parallel.`,
		Commands: []*cli.Command{
			run.New(),
			config.New(),
			show.New(),
		},
		Flags:     run.Flags(),
		Action:    run.Action,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	// Exit codes are set with cli.Exit and handled by the cli framework.
	if err := newRootCmd().Run(ctx, os.Args); err != nil {
		ctxlog.Error(ctx, "command failed", "error", err)
		os.Exit(2) //nolint:mnd
	}
}
