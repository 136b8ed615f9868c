// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-lints templates as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is one debounced file system change.
type Change struct {
	// Path is the changed file.
	Path string

	// Op is the most recent operation seen for Path in the batch.
	Op Op

	// Time is when the change was detected.
	Time time.Time
}

// Op is the kind of file operation.
type Op int

const (
	// OpCreate indicates a file was created.
	OpCreate Op = iota

	// OpWrite indicates a file was modified.
	OpWrite

	// OpRemove indicates a file was deleted.
	OpRemove

	// OpRename indicates a file was renamed away.
	OpRename
)

// String returns the string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Gone reports whether the file no longer exists at Path.
func (op Op) Gone() bool {
	return op == OpRemove || op == OpRename
}

// Handler receives each debounced batch. Batches never overlap.
type Handler func(ctx context.Context, changes []Change)

// Filter reports whether a path should be skipped. rel is slash-separated
// and relative to the watched root.
type Filter func(rel string, isDir bool) bool

// Watcher watches a directory tree and batches changes.
//
// Description:
//
//	Every directory below the root is watched, new directories included.
//	Changes are collected until the debounce window passes with no new
//	events, deduplicated per path, and handed to the handler. Editors that
//	save through several writes therefore trigger one re-lint.
//
// Thread Safety:
//
//	Run must be called once. Close is safe to call concurrently and more
//	than once. The handler is called from the Run goroutine only.
type Watcher struct {
	root     string
	handler  Handler
	debounce time.Duration
	filter   Filter
	logger   *slog.Logger

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a batch is delivered.
// Default: 100ms
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithFilter sets an additional skip predicate. Hidden entries are always
// skipped.
func WithFilter(f Filter) Option {
	return func(w *Watcher) {
		w.filter = f
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for root.
//
// Inputs:
//
//	root - Directory to watch recursively
//	handler - Called with each debounced batch. Must not be nil.
//	opts - Optional configuration
//
// Outputs:
//
//	*Watcher - Ready to Run
//	error - Non-nil if root is not a directory or fsnotify fails
func New(root string, handler Handler, opts ...Option) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: handler must not be nil")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: creating watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		logger:   slog.Default(),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is canceled or Close is called.
//
// Outputs:
//
//	error - Non-nil only if the initial directory walk fails. Cancellation
//	        returns nil and discards a pending batch; Close flushes it.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	if err := w.addRecursive(w.root); err != nil {
		return fmt.Errorf("watch: adding %s: %w", w.root, err)
	}

	var (
		batch  []Change
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(batch) == 0 {
			return
		}
		changes := deduplicate(batch)
		batch = batch[:0]
		w.handler(ctx, changes)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				flush()
				return nil
			}
			change, ok := w.convert(event)
			if !ok {
				continue
			}
			batch = append(batch, change)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", slog.String("error", err.Error()))

		case <-timerC:
			timer, timerC = nil, nil
			flush()
		}
	}
}

// Close stops watching. Run returns shortly after.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(path, true) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) skip(path string, isDir bool) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	if w.filter == nil {
		return false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	return w.filter(filepath.ToSlash(rel), isDir)
}

// convert maps an fsnotify event to a Change, adding watches for new
// directories on the way. Directory events are not reported.
func (w *Watcher) convert(event fsnotify.Event) (Change, bool) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return Change{}, false
	}

	isDir := false
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		if info, err := os.Stat(event.Name); err == nil {
			isDir = info.IsDir()
		}
	}
	if w.skip(event.Name, isDir) {
		return Change{}, false
	}
	if isDir {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watching new directory failed",
					slog.String("path", event.Name),
					slog.String("error", err.Error()),
				)
			}
		}
		return Change{}, false
	}

	return Change{Path: event.Name, Op: convertOp(event.Op), Time: time.Now()}, true
}

// convertOp picks one Op for an event carrying several op bits.
func convertOp(op fsnotify.Op) Op {
	switch {
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpWrite
	}
}

// deduplicate keeps the latest change per path, in first-seen order. The
// latest op describes the file's final state: a remove followed by a
// re-create is a Create, a create followed by a remove is a Remove.
func deduplicate(changes []Change) []Change {
	seen := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if idx, ok := seen[c.Path]; ok {
			out[idx] = c
			continue
		}
		seen[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
