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
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// RunnerFilter skips what the runner would skip when collecting files:
// vendor and node_modules trees, configured exclusions, and files the
// runner's parser does not handle.
func RunnerFilter(runner *lint.Runner) Filter {
	return func(rel string, isDir bool) bool {
		if isDir {
			name := filepath.Base(rel)
			return name == "vendor" || name == "node_modules" || runner.Config().Excluded(rel)
		}
		return !runner.Handles(rel) || runner.Config().Excluded(rel)
	}
}

// LintChanges returns a Handler that re-lints every changed template and
// passes the results to emit.
//
// Removed and renamed-away files are dropped. Lint failures for single
// files arrive in their FileResult; only cancellation is logged here.
func LintChanges(runner *lint.Runner, emit func([]*lint.FileResult)) Handler {
	return func(ctx context.Context, changes []Change) {
		paths := make([]string, 0, len(changes))
		for _, c := range changes {
			if c.Op.Gone() || !runner.Handles(c.Path) {
				continue
			}
			paths = append(paths, c.Path)
		}
		if len(paths) == 0 {
			return
		}

		slog.Debug("re-linting changed templates",
			slog.Int("count", len(paths)),
			slog.String("files", strings.Join(paths, ",")),
		)
		results, err := runner.LintFiles(ctx, paths)
		if err != nil {
			slog.Info("re-lint interrupted", slog.String("error", err.Error()))
			return
		}
		emit(results)
	}
}
