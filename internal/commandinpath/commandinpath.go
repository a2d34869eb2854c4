// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath resolves a tool's executable to an absolute path
// without spawning it.
package commandinpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	// ErrNotFound is returned when the command cannot be located.
	ErrNotFound = errors.New("executable not found")
	// ErrEmptyCommand is returned for an empty command name.
	ErrEmptyCommand = errors.New("empty command")
)

// Getenv is stubbed in tests.
var Getenv = os.Getenv

// Resolve locates command.
// A command containing a path separator is taken relative to dir,
// anything else is searched for on PATH.
// The result must be a regular file and, outside Windows, executable.
func Resolve(command, dir string) (string, error) {
	if command == "" {
		return "", ErrEmptyCommand
	}

	if strings.ContainsRune(command, '/') || strings.ContainsRune(command, filepath.Separator) {
		p := command
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}

		if found, ok := candidate(p); ok {
			return found, nil
		}

		return "", fmt.Errorf("%w: %s", ErrNotFound, command)
	}

	for _, d := range filepath.SplitList(Getenv("PATH")) {
		if d == "" {
			continue
		}

		if found, ok := candidate(filepath.Join(d, command)); ok {
			return found, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, command)
}

// candidate checks p, and on Windows p with each PATHEXT extension.
func candidate(p string) (string, bool) {
	if isExecutable(p) {
		return p, true
	}

	if runtime.GOOS != "windows" || filepath.Ext(p) != "" {
		return "", false
	}

	exts := Getenv("PATHEXT")
	if exts == "" {
		exts = ".com;.exe;.bat;.cmd"
	}

	for _, ext := range filepath.SplitList(exts) {
		if ext == "" {
			continue
		}

		if isExecutable(p + strings.ToLower(ext)) {
			return p + strings.ToLower(ext), true
		}
	}

	return "", false
}

func isExecutable(p string) bool {
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return false
	}

	if runtime.GOOS != "windows" && info.Mode()&0111 == 0 {
		return false
	}

	return true
}
