// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape sequences for the terminal report.
// Output is plain when NO_COLOR is set, or when stdout is not a terminal and
// FORCE_COLOR is not set. Terminal detection uses golang.org/x/term.
package color
