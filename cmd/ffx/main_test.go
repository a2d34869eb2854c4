// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/matt-FFFFFF/ffx/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func TestMain(m *testing.M) {
	color.SetEnabled(false)
	os.Exit(m.Run())
}

type result struct {
	code   int
	msg    string
	stdout string
	stderr string
}

func runFfx(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	res := result{}
	root := newRootCmd()
	root.Writer = &stdout
	root.ErrWriter = &stderr
	root.ExitErrHandler = func(_ context.Context, _ *cli.Command, err error) {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			res.code = ec.ExitCode()
			res.msg = ec.Error()
		}
	}

	err := root.Run(context.Background(), append([]string{"ffx"}, args...))
	if res.code == 0 {
		require.NoError(t, err)
	} else {
		var ec cli.ExitCoder
		require.ErrorAs(t, err, &ec)
		assert.Equal(t, res.code, ec.ExitCode())
	}

	res.stdout = stdout.String()
	res.stderr = stderr.String()

	return res
}

// workspace creates a directory outside any repository holding a config and
// two Go files, and makes it the working directory.
func workspace(t *testing.T, cfg string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses the true and false utilities")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ffx.yaml"), []byte(cfg), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.go"), []byte("package b\n"), 0o644))
	t.Chdir(dir)

	return dir
}

const okConfig = `version: 1
tools:
  - name: gofmt
    include: ["**/*.go"]
    cmd: "true"
    args: [-w]
`

func TestRun_AllSucceed(t *testing.T) {
	workspace(t, okConfig)

	res := runFfx(t, "--all")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "[gofmt] ✓ Formatted 2 files")
	assert.Contains(t, res.stdout, "All formatters succeeded")
}

func TestRun_Subcommand(t *testing.T) {
	workspace(t, okConfig)

	res := runFfx(t, "run", "--all", "--check", "-j", "1", "--batch-size", "1")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "[gofmt] ✓ Checked 2 files")
}

func TestRun_FormatterFails(t *testing.T) {
	workspace(t, `version: 1
tools:
  - name: broken
    include: ["**/*.go"]
    cmd: "false"
`)

	res := runFfx(t, "--all")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "[broken] ✗ 1 batch of 1 failed (2 files)")
	assert.Contains(t, res.stdout, "Some formatters failed")
}

func TestRun_MissingExecutable(t *testing.T) {
	workspace(t, `version: 1
tools:
  - name: gofmt
    include: ["**/*.go"]
    cmd: "true"
  - name: ghost
    include: ["**/*.go"]
    cmd: ffx-test-no-such-formatter
`)

	res := runFfx(t, "--all")

	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stdout, "[ghost] ✗ ffx-test-no-such-formatter not found")
	assert.Contains(t, res.stdout, "Some formatters were not found")
	assert.Contains(t, res.stderr, "executable not found")
}

func TestRun_NoMatches(t *testing.T) {
	workspace(t, `version: 1
tools:
  - name: prettier
    include: ["**/*.md"]
    cmd: "true"
`)

	res := runFfx(t, "--all")

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "No files matched any tool patterns\n", res.stdout)
}

func TestRun_Verbose(t *testing.T) {
	workspace(t, okConfig)

	res := runFfx(t, "--all", "-v")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Loaded config with 1 tool:")
	assert.Contains(t, res.stdout, "  - gofmt (1 pattern)")
	assert.Contains(t, res.stderr, "-w a.go sub/b.go")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  string
		args []string
		msg  string
	}{
		{"conflicting modes", okConfig, []string{"--all", "--changed"}, "cannot be used together"},
		{"zero jobs", okConfig, []string{"--all", "-j", "0"}, "max parallel must be at least 1"},
		{"zero batch size", okConfig, []string{"--all", "--batch-size", "0"}, "batch size must be at least 1"},
		{"bad version", "version: 2\ntools: []\n", []string{"--all"}, "Unsupported config version: 2"},
		{"missing config", okConfig, []string{"--all", "-c", "nope.yaml"}, "Failed to load config from nope.yaml"},
		{"not a repository", okConfig, nil, "not a git repository"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			workspace(t, tc.cfg)

			res := runFfx(t, tc.args...)

			assert.Equal(t, 2, res.code)
			assert.Contains(t, res.msg, tc.msg)
		})
	}
}

func TestRun_OutAndShow(t *testing.T) {
	dir := workspace(t, `version: 1
tools:
  - name: broken
    include: ["**/*.go"]
    cmd: "false"
`)
	out := filepath.Join(dir, "results.gob")

	res := runFfx(t, "--all", "--out", out)
	require.Equal(t, 1, res.code)
	require.FileExists(t, out)

	shown := runFfx(t, "show", out)
	assert.Equal(t, 0, shown.code)
	assert.Equal(t, res.stdout, shown.stdout)

	verbose := runFfx(t, "show", "-v", out)
	assert.Contains(t, verbose.stderr, "[broken#1] $ false a.go sub/b.go")
}

func TestShow_Errors(t *testing.T) {
	dir := workspace(t, okConfig)

	res := runFfx(t, "show")
	assert.Equal(t, 2, res.code)

	res = runFfx(t, "show", filepath.Join(dir, "missing.gob"))
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.msg, "failed to read file")

	res = runFfx(t, "show", filepath.Join(dir, "a.go"))
	assert.Equal(t, 2, res.code)
}

func TestConfigCommand(t *testing.T) {
	workspace(t, `version: 1
tools:
  - name: prettier
    include: ["**/*.md"]
    exclude: ["node_modules/**"]
    cmd: npx
    args: [prettier, --write]
    check_args: [prettier, --check]
`)

	res := runFfx(t, "config")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "prettier\n")
	assert.Contains(t, res.stdout, "  exclude:    node_modules/**")
	assert.Contains(t, res.stdout, "  format:     npx prettier --write")
	assert.Contains(t, res.stdout, "  check:      npx prettier --check")

	res = runFfx(t, "config", "--validate")
	assert.Equal(t, 0, res.code)
	assert.Equal(t, ".ffx.yaml is valid: 1 tool\n", res.stdout)

	res = runFfx(t, "config", "-c", "missing.yaml")
	assert.Equal(t, 2, res.code)
}

func TestConfigCommand_Tool(t *testing.T) {
	workspace(t, `version: 1
tools:
  - name: gofmt
    include: ["**/*.go"]
    cmd: gofmt
    args: [-w]
  - name: prettier
    include: ["**/*.md"]
    cmd: npx
    args: [prettier, --write]
`)

	res := runFfx(t, "config", "--tool", "prettier")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "prettier\n")
	assert.NotContains(t, res.stdout, "gofmt")

	res = runFfx(t, "config", "--tool", "black")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.msg, `unknown tool "black", defined tools: gofmt, prettier`)
}

func TestConfigSchema(t *testing.T) {
	res := runFfx(t, "config", "--schema")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
	assert.Contains(t, res.stdout, `"check_args"`)
}

func TestVersion(t *testing.T) {
	res := runFfx(t, "--version")

	assert.Contains(t, res.stdout, "dev (commit: unknown)")
}
