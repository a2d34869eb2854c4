// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries per-batch lifecycle events from the executor to
// live displays such as the TUI. Reporting never blocks the executor: events
// are dropped when nobody keeps up.
package progress
