// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/ffx/internal/matcher"
)

// ValidationError is a single problem found in a config.
type ValidationError struct {
	Tool string // Empty for file-level problems
	Msg  string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return e.Msg
}

// Validate collects every problem in c rather than stopping at the first.
// The result wraps ErrInvalidConfig.
func Validate(c *Config) error {
	var result *multierror.Error

	if c.Version != SupportedVersion {
		result = multierror.Append(result, &ValidationError{
			Msg: fmt.Sprintf("Unsupported config version: %d. Only version %d is supported.", c.Version, SupportedVersion),
		})
	}

	if len(c.Tools) == 0 {
		result = multierror.Append(result, &ValidationError{Msg: "Config must define at least one tool"})
	}

	seen := make(map[string]struct{}, len(c.Tools))

	for _, t := range c.Tools {
		if t.Name == "" {
			result = multierror.Append(result, &ValidationError{Msg: "Tool name cannot be empty"})
		} else {
			if _, dup := seen[t.Name]; dup {
				result = multierror.Append(result, &ValidationError{Tool: t.Name, Msg: fmt.Sprintf("Tool '%s' is defined more than once", t.Name)})
			}

			seen[t.Name] = struct{}{}
		}

		if len(t.Include) == 0 {
			result = multierror.Append(result, &ValidationError{Tool: t.Name, Msg: fmt.Sprintf("Tool '%s' must have at least one include pattern", t.Name)})
		}

		if t.Cmd == "" {
			result = multierror.Append(result, &ValidationError{Tool: t.Name, Msg: fmt.Sprintf("Tool '%s' must have a cmd", t.Name)})
		}
	}

	var patternErrs *multierror.Error
	if errors.As(matcher.Validate(c.Registry()), &patternErrs) {
		result = multierror.Append(result, patternErrs.Errors...)
	}

	if result.ErrorOrNil() == nil {
		return nil
	}

	result.ErrorFormat = listFormat

	return errors.Join(ErrInvalidConfig, result)
}

func listFormat(es []error) string {
	if len(es) == 1 {
		return es[0].Error()
	}

	s := fmt.Sprintf("%d problems:", len(es))
	for _, e := range es {
		s += "\n  * " + e.Error()
	}

	return s
}
