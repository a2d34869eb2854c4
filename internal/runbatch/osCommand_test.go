// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

func shCommand(script string, args ...string) *OSCommand {
	return &OSCommand{
		Label: "sh test",
		Path:  "/bin/sh",
		Args:  append([]string{"-c", script, "sh"}, args...),
		sigCh: make(chan os.Signal, 1),
	}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	t.Cleanup(cancel)

	return ctxlog.New(ctx, ctxlog.DefaultLogger)
}

func TestCommandRun_Success(t *testing.T) {
	skipOnWindows(t)

	res := shCommand("echo hello; echo oops >&2").Run(testCtx(t))

	assert.Equal(t, 0, res.ExitCode)
	require.NoError(t, res.Err)
	assert.Equal(t, "hello\n", string(res.StdOut))
	assert.Equal(t, "oops\n", string(res.StdErr))
	assert.Positive(t, res.Duration)
}

func TestCommandRun_Failure(t *testing.T) {
	skipOnWindows(t)

	res := shCommand("echo 'x.go:1: bad' >&2; exit 3").Run(testCtx(t))

	assert.Equal(t, 3, res.ExitCode)
	require.NoError(t, res.Err, "a non-zero exit is not an error of the runner")
	assert.Contains(t, string(res.StdErr), "x.go:1: bad")
}

func TestCommandRun_NotFound(t *testing.T) {
	cmd := &OSCommand{
		Path:  "/not/a/real/command",
		Label: "notfound test",
		sigCh: make(chan os.Signal, 1),
	}

	res := cmd.Run(testCtx(t))

	assert.Equal(t, -1, res.ExitCode)

	var pathErr *os.PathError

	require.ErrorAs(t, res.Err, &pathErr)
	assert.ErrorIs(t, res.Err, ErrCouldNotStartProcess)
}

func TestCommandRun_EnvAndCwd(t *testing.T) {
	skipOnWindows(t)

	tempDir := t.TempDir()
	cmd := shCommand("echo $FOO; pwd")
	cmd.Env = map[string]string{"FOO": "BAR"}
	cmd.Cwd = tempDir

	res := cmd.Run(testCtx(t))
	require.NoError(t, res.Err)

	out := string(res.StdOut)
	assert.Contains(t, out, "BAR")
	assert.Contains(t, out, tempDir)
}

func TestCommandRun_ArgumentsAreNotShellExpanded(t *testing.T) {
	skipOnWindows(t)

	files := []string{"has space.x", "semi;colon.x", "$(echo pwned).x", "*"}
	res := shCommand(`for a in "$@"; do printf '%s\n' "$a"; done`, files...).Run(testCtx(t))

	require.NoError(t, res.Err)
	assert.Equal(t, strings.Join(files, "\n")+"\n", string(res.StdOut))
}

func TestCommandRun_ReportsOutputLines(t *testing.T) {
	skipOnWindows(t)

	var (
		mu    sync.Mutex
		lines []string
	)

	cmd := shCommand("echo first; echo second >&2; printf last")
	cmd.NotifyOutput(func(l string) {
		mu.Lock()
		defer mu.Unlock()

		lines = append(lines, l)
	})

	res := cmd.Run(testCtx(t))

	require.NoError(t, res.Err)
	assert.Equal(t, "first\nlast", string(res.StdOut), "captured output is unchanged")

	mu.Lock()
	defer mu.Unlock()

	require.NotEmpty(t, lines)
	assert.Subset(t, []string{"first", "second", "last"}, lines)
}

func TestCommandRun_LargeOutputOnBothStreams(t *testing.T) {
	skipOnWindows(t)

	// Well beyond a pipe buffer on both streams at once.
	script := `i=0; while [ $i -lt 4000 ]; do echo "line $i of stdout padding padding padding"; echo "line $i of stderr padding padding padding" >&2; i=$((i+1)); done`

	res := shCommand(script).Run(testCtx(t))

	require.NoError(t, res.Err)
	assert.Equal(t, 4000, strings.Count(string(res.StdOut), "\n"))
	assert.Equal(t, 4000, strings.Count(string(res.StdErr), "\n"))
}

func TestCommandRun_OutputLimit(t *testing.T) {
	skipOnWindows(t)

	cmd := shCommand(`i=0; while [ $i -lt 1000 ]; do echo 0123456789; i=$((i+1)); done`)
	cmd.MaxOutput = 100

	res := cmd.Run(testCtx(t))

	assert.Len(t, res.StdOut, 100)
	require.ErrorIs(t, res.Err, ErrBufferOverflow)
	assert.Equal(t, -1, res.ExitCode)
}

func TestCommandRun_ContextCancelled(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	res := shCommand("exec sleep 10").Run(ctx)

	assert.Equal(t, -1, res.ExitCode)
	require.ErrorIs(t, res.Err, ErrContextDone)
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestCommandRun_SigInt(t *testing.T) {
	skipOnWindows(t)

	cmd := shCommand("exec sleep 10")
	ctx := testCtx(t)

	go func() {
		time.Sleep(200 * time.Millisecond)
		cmd.sigCh <- os.Interrupt
	}()

	res := cmd.Run(ctx)

	assert.Equal(t, -1, res.ExitCode)
	require.NoError(t, ctx.Err(), "a forwarded signal does not cancel the run")
	require.ErrorIs(t, res.Err, ErrSignalReceived)
}

func TestReadAllUpToMax(t *testing.T) {
	ctx := context.Background()

	got, err := readAllUpToMax(ctx, strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	got, err = readAllUpToMax(ctx, strings.NewReader("hello world"), 5)
	require.ErrorIs(t, err, ErrBufferOverflow)
	assert.Equal(t, "hello", string(got))
}
