// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package discover

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// newRepo creates a repository with a.go, b.go and docs/c.md committed.
func newRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for _, f := range []string{"a.go", "b.go", "docs/c.md"} {
		writeFile(t, dir, f, "package x\n")
		_, err = wt.Add(f)
		require.NoError(t, err)
	}

	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir, wt
}

func TestDiscoverAll(t *testing.T) {
	dir, _ := newRepo(t)
	writeFile(t, dir, "untracked.txt", "x")

	res, err := Discover(context.Background(), dir, ModeAll)
	require.NoError(t, err)
	assert.True(t, res.InRepo)
	assert.Equal(t, []string{"a.go", "b.go", "docs/c.md"}, res.Files)
}

func TestDiscoverFromSubdirectory(t *testing.T) {
	dir, _ := newRepo(t)

	res, err := Discover(context.Background(), filepath.Join(dir, "docs"), ModeAll)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "b.go", "docs/c.md"}, res.Files, "paths are relative to the repository root")

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(res.Root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiscoverStaged(t *testing.T) {
	dir, wt := newRepo(t)

	writeFile(t, dir, "a.go", "package y\n")
	_, err := wt.Add("a.go")
	require.NoError(t, err)

	writeFile(t, dir, "new.go", "package x\n")
	_, err = wt.Add("new.go")
	require.NoError(t, err)

	// unstaged edit and untracked file are not staged
	writeFile(t, dir, "docs/c.md", "changed")
	writeFile(t, dir, "untracked.go", "x")

	// staged deletion is excluded
	_, err = wt.Remove("b.go")
	require.NoError(t, err)

	res, err := Discover(context.Background(), dir, ModeStaged)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "new.go"}, res.Files)
}

func TestDiscoverChanged(t *testing.T) {
	dir, wt := newRepo(t)

	writeFile(t, dir, "a.go", "package y\n")
	_, err := wt.Add("a.go")
	require.NoError(t, err)

	writeFile(t, dir, "docs/c.md", "changed")
	writeFile(t, dir, "z.go", "x")
	require.NoError(t, os.Remove(filepath.Join(dir, "b.go")))

	res, err := Discover(context.Background(), dir, ModeChanged)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", "docs/c.md", "z.go"}, res.Files)
}

func TestDiscoverCleanRepo(t *testing.T) {
	dir, _ := newRepo(t)

	for _, m := range []Mode{ModeStaged, ModeChanged} {
		res, err := Discover(context.Background(), dir, m)
		require.NoError(t, err)
		assert.Empty(t, res.Files, m.String())
	}
}

func TestDiscoverOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "x")
	writeFile(t, dir, "a/one.go", "x")
	writeFile(t, dir, "vendor/.git/HEAD", "x")

	res, err := Discover(context.Background(), dir, ModeAll)
	require.NoError(t, err)
	assert.False(t, res.InRepo)
	assert.Equal(t, []string{"a/one.go", "b.txt"}, res.Files)

	_, err = Discover(context.Background(), dir, ModeStaged)
	require.ErrorIs(t, err, ErrNotRepository)

	_, err = Discover(context.Background(), dir, ModeChanged)
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestModeMessages(t *testing.T) {
	assert.Equal(t, "No staged files", ModeStaged.EmptyMessage())
	assert.Equal(t, "No changed files", ModeChanged.EmptyMessage())
	assert.Equal(t, "No files found", ModeAll.EmptyMessage())
	assert.Equal(t, "unknown", Mode(9).String())
}
