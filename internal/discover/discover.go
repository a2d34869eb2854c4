// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package discover lists the candidate files of a run: staged, changed or
// all tracked files of the git repository containing a directory.
package discover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/matt-FFFFFF/ffx/internal/ctxlog"
	"github.com/spf13/afero"
)

var (
	// ErrNotRepository is returned by the git-only modes outside a repository.
	ErrNotRepository = errors.New("not a git repository")
	// ErrGit is returned when the repository cannot be read.
	ErrGit = errors.New("failed to read git repository")
)

// FsFactory returns the filesystem used to check files exist and for the
// walk outside a repository.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Mode selects the candidate set.
type Mode int

const (
	// ModeStaged selects files staged in the index, deletions excluded.
	ModeStaged Mode = iota
	// ModeChanged selects staged, unstaged and untracked files, deletions excluded.
	ModeChanged
	// ModeAll selects every tracked file.
	ModeAll
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeStaged:
		return "staged files"
	case ModeChanged:
		return "changed files"
	case ModeAll:
		return "all files"
	default:
		return "unknown"
	}
}

// EmptyMessage is shown when the mode finds nothing.
func (m Mode) EmptyMessage() string {
	switch m {
	case ModeStaged:
		return "No staged files"
	case ModeChanged:
		return "No changed files"
	default:
		return "No files found"
	}
}

// Result is the discovered candidate list.
type Result struct {
	Root   string   // Directory the paths are relative to, and where formatters run
	Files  []string // Slash-separated, relative to Root
	InRepo bool
}

// Discover lists candidate files for the repository containing dir.
// Files that no longer exist on disk are dropped.
func Discover(ctx context.Context, dir string, mode Mode) (*Result, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGit, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mode != ModeAll {
			return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
		}

		ctxlog.Info(ctx, "not in a git repository, walking the directory", "dir", abs)

		files, err := walk(abs)
		if err != nil {
			return nil, err
		}

		return &Result{Root: abs, Files: files}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGit, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGit, err)
	}

	root := wt.Filesystem.Root()

	var files []string

	switch mode {
	case ModeAll:
		files, err = tracked(repo)
	default:
		files, err = fromStatus(wt, mode)
	}

	if err != nil {
		return nil, err
	}

	files = existing(root, files)

	ctxlog.Debug(ctx, "discovered files", "mode", mode.String(), "root", root, "count", len(files))

	return &Result{Root: root, Files: files, InRepo: true}, nil
}

func tracked(repo *git.Repository) ([]string, error) {
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("%w: reading index: %w", ErrGit, err)
	}

	files := make([]string, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		files = append(files, e.Name)
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

func fromStatus(wt *git.Worktree, mode Mode) ([]string, error) {
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("%w: status: %w", ErrGit, err)
	}

	var files []string

	for path, s := range status {
		if s.Staging == git.Deleted || s.Worktree == git.Deleted {
			continue
		}

		switch mode {
		case ModeStaged:
			if s.Staging == git.Unmodified || s.Staging == git.Untracked {
				continue
			}
		case ModeChanged:
			if s.Staging == git.Unmodified && s.Worktree == git.Unmodified {
				continue
			}
		}

		files = append(files, path)
	}

	slices.Sort(files)

	return files, nil
}

func existing(root string, files []string) []string {
	afs := FsFactory()

	return slices.DeleteFunc(files, func(f string) bool {
		info, err := afs.Stat(filepath.Join(root, filepath.FromSlash(f)))

		return err != nil || info.IsDir()
	})
}

// walk lists regular files under root, skipping .git directories.
func walk(root string) ([]string, error) {
	afs := FsFactory()

	var files []string

	err := afero.Walk(afs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}

			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	slices.Sort(files)

	return files, nil
}
