// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger inside a context.Context.
//
// The default logger writes human-readable lines to stderr through the
// console handler in this package. The level comes from the
// <EXECUTABLE>_LOG_LEVEL environment variable, e.g. FFX_LOG_LEVEL=DEBUG.
package ctxlog
