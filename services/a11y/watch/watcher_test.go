// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

func TestOp_String(t *testing.T) {
	assert.Equal(t, "create", OpCreate.String())
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "rename", OpRename.String())
	assert.Equal(t, "unknown", Op(42).String())

	assert.True(t, OpRemove.Gone())
	assert.True(t, OpRename.Gone())
	assert.False(t, OpWrite.Gone())
}

func TestConvertOp(t *testing.T) {
	assert.Equal(t, OpCreate, convertOp(fsnotify.Create))
	assert.Equal(t, OpWrite, convertOp(fsnotify.Write))
	assert.Equal(t, OpRemove, convertOp(fsnotify.Remove|fsnotify.Write))
	assert.Equal(t, OpRename, convertOp(fsnotify.Rename))
}

func TestDeduplicate(t *testing.T) {
	t0 := time.Now()
	changes := []Change{
		{Path: "a.html.erb", Op: OpCreate, Time: t0},
		{Path: "b.html.erb", Op: OpWrite, Time: t0},
		{Path: "a.html.erb", Op: OpWrite, Time: t0.Add(time.Millisecond)},
	}

	got := deduplicate(changes)
	require.Len(t, got, 2)
	assert.Equal(t, "a.html.erb", got[0].Path)
	assert.Equal(t, OpWrite, got[0].Op)
	assert.Equal(t, "b.html.erb", got[1].Path)
}

func TestDeduplicate_LatestOpWins(t *testing.T) {
	t0 := time.Now()
	got := deduplicate([]Change{
		{Path: "a.html.erb", Op: OpRemove, Time: t0},
		{Path: "b.html.erb", Op: OpCreate, Time: t0},
		{Path: "a.html.erb", Op: OpCreate, Time: t0.Add(time.Millisecond)},
		{Path: "b.html.erb", Op: OpRemove, Time: t0.Add(2 * time.Millisecond)},
	})

	require.Len(t, got, 2)
	assert.Equal(t, OpCreate, got[0].Op, "re-created file must be re-linted")
	assert.False(t, got[0].Op.Gone())
	assert.Equal(t, OpRemove, got[1].Op)
	assert.True(t, got[1].Op.Gone())
}

func TestNew_Errors(t *testing.T) {
	noop := func(context.Context, []Change) {}

	_, err := New(t.TempDir(), nil)
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing"), noop)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(file, noop)
	assert.Error(t, err)
}

func TestWatcher_Skip(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, func(context.Context, []Change) {}, WithFilter(func(rel string, isDir bool) bool {
		return isDir && rel == "tmp"
	}))
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.skip(filepath.Join(root, ".git"), true))
	assert.True(t, w.skip(filepath.Join(root, "tmp"), true))
	assert.False(t, w.skip(filepath.Join(root, "app"), true))
	assert.False(t, w.skip(filepath.Join(root, "tmp"), false))
}

// collector records batches delivered by a Watcher.
type collector struct {
	mu      sync.Mutex
	batches [][]Change
}

func (c *collector) handle(_ context.Context, changes []Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, changes)
}

func (c *collector) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, b := range c.batches {
		for _, ch := range b {
			out = append(out, filepath.Base(ch.Path))
		}
	}
	return out
}

func TestWatcher_Run(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "views"), 0o755))

	c := &collector{}
	w, err := New(root, c.handle, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Watches are registered asynchronously; keep writing until one lands.
	target := filepath.Join(root, "views", "show.html.erb")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("<a>Link</a>\n"), 0o644)
		return len(c.paths()) > 0
	}, 5*time.Second, 50*time.Millisecond)

	assert.Contains(t, c.paths(), "show.html.erb")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLintChanges(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.html.erb")
	bad := filepath.Join(dir, "bad.html.erb")
	require.NoError(t, os.WriteFile(good, []byte("<a href=\"/\">Home</a>\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("<iframe src=\"/x\"></iframe>\n"), 0o644))

	runner := lint.NewRunner(lint.WithRules(rules.All()...))

	var got []*lint.FileResult
	handler := LintChanges(runner, func(results []*lint.FileResult) {
		got = append(got, results...)
	})

	handler(t.Context(), []Change{
		{Path: good, Op: OpWrite},
		{Path: bad, Op: OpCreate},
		{Path: filepath.Join(dir, "gone.html.erb"), Op: OpRemove},
		{Path: filepath.Join(dir, "notes.txt"), Op: OpWrite},
	})

	require.Len(t, got, 2)
	byPath := map[string]*lint.FileResult{got[0].Path: got[0], got[1].Path: got[1]}
	assert.False(t, byPath[good].HasErrors())
	assert.True(t, byPath[bad].HasErrors())
}

func TestLintChanges_NothingToLint(t *testing.T) {
	runner := lint.NewRunner(lint.WithRules(rules.All()...))
	called := false
	handler := LintChanges(runner, func([]*lint.FileResult) { called = true })

	handler(t.Context(), []Change{{Path: "x.html.erb", Op: OpRemove}})
	assert.False(t, called)
}

func TestRunnerFilter(t *testing.T) {
	cfg := lint.DefaultConfig()
	cfg.Exclude = []string{"app/views/legacy/*"}
	runner := lint.NewRunner(lint.WithConfig(cfg))
	filter := RunnerFilter(runner)

	assert.True(t, filter("node_modules", true))
	assert.True(t, filter("vendor", true))
	assert.True(t, filter("app/views/legacy/a.html.erb", false))
	assert.True(t, filter("app/assets/app.js", false))
	assert.False(t, filter("app/views/show.html.erb", false))
	assert.False(t, filter("app/views", true))
}
