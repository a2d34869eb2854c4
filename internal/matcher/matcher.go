// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package matcher routes candidate files to the tools whose glob patterns select them.
package matcher

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/ffx/internal/tool"
)

// PatternKind says whether a pattern came from an include or an exclude list.
type PatternKind string

const (
	// KindInclude is an include pattern.
	KindInclude PatternKind = "include"
	// KindExclude is an exclude pattern.
	KindExclude PatternKind = "exclude"
)

// PatternError reports a malformed glob in a tool definition.
type PatternError struct {
	Tool    string
	Kind    PatternKind
	Pattern string
}

// Error implements error.
func (e *PatternError) Error() string {
	return fmt.Sprintf("Tool '%s' has an invalid %s pattern: %q", e.Tool, e.Kind, e.Pattern)
}

// ToolMatch is one tool's selection.
type ToolMatch struct {
	Tool  tool.Spec
	Files []string
}

// MatchSet holds one entry per tool, in declaration order.
// Tools that select nothing are present with no files.
type MatchSet []ToolMatch

// FileCount is the number of (tool, file) pairs in the set.
func (m MatchSet) FileCount() int {
	n := 0
	for _, tm := range m {
		n += len(tm.Files)
	}

	return n
}

// Empty reports whether no tool selected any file.
func (m MatchSet) Empty() bool {
	return m.FileCount() == 0
}

// Validate checks every include and exclude pattern of every tool.
// All malformed patterns are returned, each as a *PatternError.
func Validate(tools []tool.Spec) error {
	var result error

	for _, t := range tools {
		for _, p := range t.Include {
			if !doublestar.ValidatePattern(p) {
				result = multierror.Append(result, &PatternError{Tool: t.Name, Kind: KindInclude, Pattern: p})
			}
		}

		for _, p := range t.Exclude {
			if !doublestar.ValidatePattern(p) {
				result = multierror.Append(result, &PatternError{Tool: t.Name, Kind: KindExclude, Pattern: p})
			}
		}
	}

	return result
}

// Match selects files for every tool independently.
// A file is selected for a tool iff it matches at least one include pattern
// and no exclude pattern. Order within each selection is the order of files.
// Patterns are expected to have passed Validate.
func Match(tools []tool.Spec, files []string) MatchSet {
	ms := make(MatchSet, len(tools))

	for i, t := range tools {
		ms[i].Tool = t

		for _, f := range files {
			if Selects(t, f) {
				ms[i].Files = append(ms[i].Files, f)
			}
		}
	}

	return ms
}

// Selects reports whether t selects file.
func Selects(t tool.Spec, file string) bool {
	return anyMatch(t.Include, file) && !anyMatch(t.Exclude, file)
}

func anyMatch(patterns []string, file string) bool {
	for _, p := range patterns {
		// a malformed pattern never matches
		if ok, err := doublestar.Match(p, file); err == nil && ok {
			return true
		}
	}

	return false
}
