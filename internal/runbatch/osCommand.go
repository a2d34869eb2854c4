// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/matt-FFFFFF/ffx/internal/signalbroker"
	"github.com/matt-FFFFFF/ffx/internal/teereader"
)

const (
	maxBufferSize  = 8 * 1024 * 1024 // 8MB
	outputInterval = 100 * time.Millisecond
)

var _ Runnable = (*OSCommand)(nil)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = errors.New("output exceeds max size")
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrContextDone is returned when the process was killed because the run was abandoned.
	ErrContextDone = errors.New("run abandoned, process killed")
	// ErrSignalReceived is returned when an operating system signal was forwarded to the process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// OSCommand runs one executable with a fixed argument list. No shell is involved.
type OSCommand struct {
	Label     string            // Label used in logs
	Path      string            // Resolved executable path
	Args      []string          // Arguments, not including the executable name
	Cwd       string            // Working directory, empty for the current one
	Env       map[string]string // Added to the inherited environment
	MaxOutput int64             // Per stream capture limit, defaults to 8MB
	OnOutput  func(line string) // Optional, receives the latest output line while running
	sigCh     chan os.Signal    // Allows mocking in test
}

var _ OutputNotifier = (*OSCommand)(nil)

// NotifyOutput implements OutputNotifier.
func (c *OSCommand) NotifyOutput(fn func(line string)) {
	c.OnOutput = fn
}

// GetLabel implements Runnable.
func (c *OSCommand) GetLabel() string {
	return c.Label
}

// Run implements Runnable.
// Both output pipes are drained concurrently while the process runs so a
// chatty child never blocks on a full pipe.
func (c *OSCommand) Run(ctx context.Context) *ProcessResult {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSCommand").
		With("label", c.Label)

	logger.Debug("command info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	limit := c.MaxOutput
	if limit <= 0 {
		limit = maxBufferSize
	}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	res := &ProcessResult{}

	env := os.Environ()
	for k, v := range c.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		return spawnFailure(res, errors.Join(ErrCouldNotStartProcess, err))
	}
	defer stdin.Close() //nolint:errcheck

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return spawnFailure(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return spawnFailure(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	argv := slices.Concat([]string{filepath.Base(c.Path)}, c.Args)

	startTime := time.Now()
	ps, err := os.StartProcess(c.Path, argv, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{stdin, wOut, wErr},
	})

	// The child holds its own copies of the write ends.
	closeAll(wOut, wErr)

	if err != nil {
		closeAll(rOut, rErr)
		return spawnFailure(res, errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", ps.Pid)

	var (
		readers        sync.WaitGroup
		outErr, errErr error
	)

	var outR, errR io.Reader = rOut, rErr
	if c.OnOutput != nil {
		outR = teereader.New(rOut, outputInterval, c.OnOutput)
		errR = teereader.New(rErr, outputInterval, c.OnOutput)
	}

	readers.Add(2)

	go func() {
		defer readers.Done()
		res.StdOut, outErr = readAllUpToMax(ctx, outR, limit)
	}()

	go func() {
		defer readers.Done()
		res.StdErr, errErr = readAllUpToMax(ctx, errR, limit)
	}()

	done := make(chan struct{})
	killed := make(chan error, 1)

	var watchdog sync.WaitGroup

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()

		signalCount := make(map[os.Signal]struct{})
		sig := sigCh

		for {
			select {
			case s, ok := <-sig:
				if !ok {
					sig = nil
					continue
				}

				if _, dup := signalCount[s]; dup {
					logger.Info("received duplicate signal, killing process", "signal", s.String())
					killPs(ctx, ps)
					notify(killed, ErrDuplicateSignalReceived)

					return
				}

				signalCount[s] = struct{}{}

				logger.Info("forwarding signal", "signal", s.String())

				if err := ps.Signal(s); err != nil {
					logger.Info("failed to send signal", "signal", s.String(), "error", err)
				}

				notify(killed, ErrSignalReceived)

			case <-ctx.Done():
				logger.Info("context done, killing process")
				killPs(ctx, ps)
				notify(killed, ErrContextDone)

				return

			case <-done:
				return
			}
		}
	}()

	state, psErr := ps.Wait()

	close(done)
	watchdog.Wait()
	readers.Wait()
	closeAll(rOut, rErr)

	res.Duration = time.Since(startTime)
	res.ExitCode = -1
	res.Err = psErr

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	select {
	case e := <-killed:
		res.Err = errors.Join(res.Err, e)
	default:
	}

	if outErr != nil || errErr != nil {
		res.Err = errors.Join(res.Err, outErr, errErr)
	}

	if res.Err != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}

	logger.Debug("process finished",
		"exitCode", res.ExitCode,
		"stdoutBytes", len(res.StdOut),
		"stderrBytes", len(res.StdErr),
		"duration", res.Duration)

	return res
}

func spawnFailure(res *ProcessResult, err error) *ProcessResult {
	res.ExitCode = -1
	res.Err = err

	return res
}

func notify(ch chan error, err error) {
	select {
	case ch <- err:
	default:
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// readAllUpToMax keeps at most maxBufferSize bytes but always reads r to EOF.
func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return buf.Bytes(), errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		discarded, _ := io.Copy(io.Discard, r)

		ctxlog.Logger(ctx).Debug(
			"buffer overflow in readAllUpToMax",
			"bytesRead", n+discarded,
			"maxBytes", maxBufferSize,
		)

		return buf.Bytes()[:maxBufferSize], fmt.Errorf("%w of %d bytes", ErrBufferOverflow, maxBufferSize)
	}

	return buf.Bytes(), nil
}

func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Logger(ctx).Info("process killed", "pid", ps.Pid)
}
