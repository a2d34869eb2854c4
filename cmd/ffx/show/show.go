// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show contains the show command.
package show

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/ffx/internal/report"
	"github.com/matt-FFFFFF/ffx/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	fileArg     = "file"
	verboseFlag = "verbose"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrNoFile is returned when no file argument is given.
	ErrNoFile = errors.New("please provide a results file, as written by 'ffx run --out'")
)

// New returns the show command.
func New() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show previously saved results",
		Description: "Render results saved with 'ffx run --out FILE' as a normal report.",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      fileArg,
				UsageText: "FILE",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    verboseFlag,
				Aliases: []string{"v"},
				Usage:   "Print full commands and output",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(_ context.Context, cmd *cli.Command) error {
	name := cmd.StringArg(fileArg)
	if name == "" {
		return cli.Exit("Error: "+ErrNoFile.Error(), report.ExitConfigError)
	}

	f, err := os.Open(name)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s: %s", ErrReadFile, err), report.ExitConfigError)
	}

	defer f.Close() // nolint:errcheck

	rep, err := runbatch.ReadBinary(f)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s: %s", name, err), report.ExitConfigError)
	}

	out := report.Render(rep, cmd.Bool(verboseFlag))

	fmt.Fprint(cmd.Root().ErrWriter, out.Details) // nolint:errcheck
	fmt.Fprint(cmd.Root().Writer, out.Summary)    // nolint:errcheck

	return nil
}
