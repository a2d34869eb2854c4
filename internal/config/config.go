// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads and validates the tool definitions from `.ffx.yaml`
// (or `.ffx.hcl`), from the local filesystem or any go-getter source.
package config

import (
	"errors"

	"github.com/matt-FFFFFF/ffx/internal/tool"
)

// SupportedVersion is the only accepted schema version.
const SupportedVersion = 1

// DefaultFile is the config file looked up when none is given.
const DefaultFile = ".ffx.yaml"

var (
	// ErrReadConfig is returned when the config file cannot be read or fetched.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrParseConfig is returned when the config file is not valid YAML or HCL.
	ErrParseConfig = errors.New("failed to parse config file")
	// ErrInvalidConfig wraps every validation problem.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the root of the config file.
type Config struct {
	Version int          `yaml:"version" docdesc:"Config schema version, must be 1" min:"1"`
	Tools   []ToolConfig `yaml:"tools" docdesc:"Formatters, in the order they are reported"`
	// Source is where the config was loaded from.
	Source string `yaml:"-"`
}

// ToolConfig is one entry of `tools`.
type ToolConfig struct {
	Name    string   `yaml:"name" docdesc:"Unique tool name used in output"`
	Include []string `yaml:"include" docdesc:"Glob patterns selecting files, at least one"`
	Exclude []string `yaml:"exclude,omitempty" docdesc:"Glob patterns removing files, these win over include"`
	Cmd     string   `yaml:"cmd" docdesc:"Executable name or path, no shell is used"`
	Args    []string `yaml:"args,omitempty" docdesc:"Arguments before the file list in format mode"`
	// Nil when not set, so check mode can fall back to Args.
	CheckArgs []string `yaml:"check_args,omitempty" docdesc:"Arguments before the file list in check mode, defaults to args"`
}

// Registry converts the loaded tools to the pipeline's read-only form.
func (c *Config) Registry() tool.Registry {
	r := make(tool.Registry, len(c.Tools))
	for i, t := range c.Tools {
		r[i] = tool.Spec{
			Name:      t.Name,
			Include:   t.Include,
			Exclude:   t.Exclude,
			Cmd:       t.Cmd,
			Args:      t.Args,
			CheckArgs: t.CheckArgs,
		}
	}

	return r
}
