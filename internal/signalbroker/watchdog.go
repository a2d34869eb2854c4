// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
)

// Watch monitors sigCh until ctx is done or sigCh is closed.
// The second signal of a given type calls cancel and stops delivery to sigCh.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, abandoning run", "signal", sig.String())
				Stop(sigCh)
				cancel()

				return
			}

			ctxlog.Warn(ctx, "watchdog", "detail", "received signal, waiting for running formatters; repeat to abort", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
