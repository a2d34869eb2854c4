// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader provides a reader that passes data through unchanged while
// tracking the last complete line, so the live output of a formatter can be
// shown while its full output is still being captured.
package teereader
