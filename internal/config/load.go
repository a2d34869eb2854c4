// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/spf13/afero"
)

// FsFactory returns the filesystem local configs are read from.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load reads, parses and validates the config at src.
// src is a local path or, when no such local file exists, a go-getter URL.
func Load(ctx context.Context, src string) (*Config, error) {
	if src == "" {
		src = DefaultFile
	}

	data, name, err := read(ctx, src)
	if err != nil {
		return nil, err
	}

	c, err := Parse(name, data)
	if err != nil {
		return nil, err
	}

	c.Source = src

	if err := Validate(c); err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "config loaded", "source", src, "tools", len(c.Tools))

	return c, nil
}

func read(ctx context.Context, src string) ([]byte, string, error) {
	fs := FsFactory()

	data, err := afero.ReadFile(fs, src)
	if err == nil {
		return data, src, nil
	}

	if !IsRemote(src) {
		return nil, src, fmt.Errorf("%w: %s: %w", ErrReadConfig, src, err)
	}

	ctxlog.Info(ctx, "fetching remote config", "url", src)

	data, name, err := getURL(ctx, src)
	if err != nil {
		return nil, src, err
	}

	return data, name, nil
}

// IsRemote reports whether src looks like a go-getter URL rather than a path.
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Parse decodes data as HCL when name ends in .hcl, otherwise as YAML.
// It does not validate.
func Parse(name string, data []byte) (*Config, error) {
	if strings.EqualFold(filepath.Ext(name), ".hcl") {
		return parseHCL(name, data)
	}

	return parseYAML(name, data)
}

func parseYAML(name string, data []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalWithOptions(data, &c, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %s:\n%s", ErrParseConfig, name, yaml.FormatError(err, false, true))
	}

	return &c, nil
}

// IsConfigError reports whether err came from reading, parsing or validating a config.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrReadConfig) ||
		errors.Is(err, ErrParseConfig) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrGetConfigFile)
}
