// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndLogger(t *testing.T) {
	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name   string
		ctx    context.Context
		expect *slog.Logger
	}{
		{
			name:   "empty context falls back to default",
			ctx:    context.Background(),
			expect: DefaultLogger,
		},
		{
			name:   "nil logger stores default",
			ctx:    New(context.Background(), nil),
			expect: DefaultLogger,
		},
		{
			name:   "custom logger is returned",
			ctx:    New(context.Background(), custom),
			expect: custom,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Same(t, tc.expect, Logger(tc.ctx))
		})
	}
}

func TestLevelHelpers(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewConsoleHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, WithDestinationWriter(&buf)))
	ctx := New(context.Background(), logger)

	Debug(ctx, "debug message")
	Info(ctx, "info message")
	Warn(ctx, "warn message")
	Error(ctx, "error message")

	out := buf.String()
	assert.Contains(t, out, "DEBUG: debug message")
	assert.Contains(t, out, "INFO: info message")
	assert.Contains(t, out, "WARN: warn message")
	assert.Contains(t, out, "ERROR: error message")
}

func TestNewForTUI(t *testing.T) {
	orig := LevelVar.Level()
	defer LevelVar.Set(orig)

	LevelVar.Set(slog.LevelInfo)

	var buf bytes.Buffer

	ctx := NewForTUI(context.Background(), &buf)
	Info(ctx, "buffered", "tool", "gofmt")

	assert.Contains(t, buf.String(), "buffered")
	assert.NotContains(t, buf.String(), "\033[", "TUI logger must not colour output")
}

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelWarn},
		{"chatty", slog.LevelWarn},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv(EnvVarName(), tc.value)
			assert.Equal(t, tc.want, LevelFromEnv())
		})
	}
}

func TestLower(t *testing.T) {
	orig := LevelVar.Level()
	defer LevelVar.Set(orig)

	LevelVar.Set(slog.LevelWarn)
	Lower(slog.LevelInfo)
	require.Equal(t, slog.LevelInfo, LevelVar.Level())

	Lower(slog.LevelError)
	assert.Equal(t, slog.LevelInfo, LevelVar.Level(), "Lower must not raise the level")
}

func TestEnvVarName(t *testing.T) {
	name := EnvVarName()
	assert.Regexp(t, `^[A-Z0-9_.]+_LOG_LEVEL$`, name)
}
