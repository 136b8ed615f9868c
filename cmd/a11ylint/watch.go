// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/report"
	"github.com/AleutianAI/a11ylint/services/a11y/watch"
)

type watchOptions struct {
	debounce time.Duration
	workers  int
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-lint templates whenever they change",
		Long: `Lint every template below path once, then watch the tree and re-lint
each template as it is saved. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runWatch(cmd.Context(), root, opts, dir, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", 200*time.Millisecond, "Quiet period before re-linting")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "Files linted in parallel (0 = configuration or GOMAXPROCS)")
	return cmd
}

func runWatch(ctx context.Context, root *rootOptions, opts *watchOptions, dir string, out io.Writer) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	runner := root.newRunner(cfg, opts.workers)
	ropts := report.Options{Color: colorFor(out)}

	var mu sync.Mutex
	emit := func(results []*lint.FileResult) {
		mu.Lock()
		defer mu.Unlock()
		if err := report.WriteText(out, results, ropts); err != nil {
			slog.Warn("writing report failed", slog.String("error", err.Error()))
		}
	}

	initial, err := runner.LintDirectory(ctx, dir)
	if err != nil {
		return failf("%w", err)
	}
	emit(initial)

	w, err := watch.New(dir, watch.LintChanges(runner, emit),
		watch.WithDebounce(opts.debounce),
		watch.WithFilter(watch.RunnerFilter(runner)),
		watch.WithLogger(slog.Default()),
	)
	if err != nil {
		return failf("%w", err)
	}
	fmt.Fprintf(out, "Watching %s for changes...\n", dir)

	if err := w.Run(ctx); err != nil {
		return failf("%w", err)
	}
	return nil
}
