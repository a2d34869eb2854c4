// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tool defines formatter tool specifications and the run mode.
// Specs are loaded by the config package and are read-only afterwards.
package tool

// Mode selects which argument list a tool is invoked with.
type Mode int

const (
	// ModeFormat rewrites files in place.
	ModeFormat Mode = iota
	// ModeCheck reports formatting violations without changing files.
	ModeCheck
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeFormat:
		return "format"
	case ModeCheck:
		return "check"
	default:
		return "unknown"
	}
}

// Spec is one formatter definition.
type Spec struct {
	Name    string   // Unique, used in output
	Include []string // Globs selecting files, at least one
	Exclude []string // Globs removing files, always win over Include
	Cmd     string   // Executable name or path
	Args    []string // Format mode arguments, files are appended after them
	// CheckArgs is used in check mode. Nil means "not defined", fall back to Args.
	CheckArgs []string
}

// ArgsFor returns the configured arguments for mode, without any files.
func (s Spec) ArgsFor(mode Mode) []string {
	if mode == ModeCheck && s.CheckArgs != nil {
		return s.CheckArgs
	}

	return s.Args
}

// Registry is the ordered list of tools. Order is declaration order and drives
// matching, planning and reporting order.
type Registry []Spec

// Names returns the tool names in declaration order.
func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, s := range r {
		names[i] = s.Name
	}

	return names
}

// Lookup returns the spec with the given name.
func (r Registry) Lookup(name string) (Spec, bool) {
	for _, s := range r {
		if s.Name == name {
			return s, true
		}
	}

	return Spec{}, false
}
