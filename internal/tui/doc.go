// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a live terminal view of a formatter run. It shows one
// row per batch with a spinner while the batch runs, its status once it has
// finished and the first line of output for failures.
//
// The view is driven by progress events. When the run completes the program
// exits on its own so the caller can print the normal report.
package tui
