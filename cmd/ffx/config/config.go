// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the config command.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/matt-FFFFFF/ffx/internal/config"
	"github.com/matt-FFFFFF/ffx/internal/report"
	"github.com/matt-FFFFFF/ffx/internal/tool"
	"github.com/urfave/cli/v3"
)

const (
	configFlag   = "config"
	validateFlag = "validate"
	schemaFlag   = "schema"
	toolFlag     = "tool"
)

// ErrUnknownTool is returned when --tool names a tool the config does not define.
var ErrUnknownTool = errors.New("unknown tool")

// New returns the config command.
func New() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show the tools defined in the config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "Path to the config file. Supports Hashicorp's go-getter syntax for remote files.",
				Value:     config.DefaultFile,
				TakesFile: true,
				OnlyOnce:  true,
			},
			&cli.BoolFlag{
				Name:  validateFlag,
				Usage: "Only validate the config file",
			},
			&cli.StringFlag{
				Name:  toolFlag,
				Usage: "Only show the named tool",
			},
			&cli.BoolFlag{
				Name:  schemaFlag,
				Usage: "Print the JSON schema of the config file and exit",
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool(schemaFlag) {
		if err := config.WriteJSONSchema(cmd.Root().Writer); err != nil {
			return cli.Exit("Error: "+err.Error(), 1)
		}

		return nil
	}

	src := cmd.String(configFlag)

	c, err := config.Load(ctx, src)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: Failed to load config from %s: %s", src, err), report.ExitConfigError)
	}

	w := cmd.Root().Writer
	tools := c.Registry()

	if cmd.Bool(validateFlag) {
		fmt.Fprintf(w, "%s is valid: %s\n", src, report.Plural(len(tools), "tool")) // nolint:errcheck
		return nil
	}

	if name := cmd.String(toolFlag); name != "" {
		t, ok := tools.Lookup(name)
		if !ok {
			err := fmt.Errorf("%w %q, defined tools: %s", ErrUnknownTool, name, strings.Join(tools.Names(), ", "))
			return cli.Exit("Error: "+err.Error(), report.ExitConfigError)
		}

		tools = tool.Registry{t}
	}

	writeTools(w, tools)

	return nil
}

func writeTools(w io.Writer, tools tool.Registry) {
	for i, t := range tools {
		if i > 0 {
			fmt.Fprintln(w) // nolint:errcheck
		}

		fmt.Fprintf(w, "%s\n", t.Name)                                      // nolint:errcheck
		fmt.Fprintf(w, "  include:    %s\n", strings.Join(t.Include, ", ")) // nolint:errcheck

		if len(t.Exclude) > 0 {
			fmt.Fprintf(w, "  exclude:    %s\n", strings.Join(t.Exclude, ", ")) // nolint:errcheck
		}

		fmt.Fprintf(w, "  format:     %s\n", command(t, tool.ModeFormat)) // nolint:errcheck
		fmt.Fprintf(w, "  check:      %s\n", command(t, tool.ModeCheck))  // nolint:errcheck
	}
}

func command(t tool.Spec, mode tool.Mode) string {
	return strings.TrimSpace(t.Cmd + " " + strings.Join(t.ArgsFor(mode), " "))
}
