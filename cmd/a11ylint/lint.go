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
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/report"
)

type lintOptions struct {
	format      string
	autocorrect bool
	diff        bool
	workers     int
	failLevel   string
}

func newLintCmd(root *rootOptions) *cobra.Command {
	opts := &lintOptions{}

	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Lint templates for accessibility defects",
		Long: `Lint ERB templates. Directories are searched recursively for .erb
files; hidden, vendor and node_modules directories are skipped.

Examples:
  a11ylint lint app/views
  a11ylint lint --format sarif app/views > a11y.sarif
  a11ylint lint --diff app/views/home/index.html.erb
  a11ylint lint --autocorrect app/views

Exit Codes:
  0 = No findings at or above the fail level
  1 = Findings at or above the fail level
  2 = Error (invalid configuration, unreadable or unparsable template)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return runLint(cmd.Context(), root, opts, args, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", string(report.FormatText), "Output format: text, json, sarif")
	flags.BoolVarP(&opts.autocorrect, "autocorrect", "a", false, "Rewrite counter directives in place")
	flags.BoolVar(&opts.diff, "diff", false, "Print autocorrections as a unified diff instead of findings")
	flags.IntVarP(&opts.workers, "workers", "j", 0, "Files linted in parallel (0 = configuration or GOMAXPROCS)")
	flags.StringVar(&opts.failLevel, "fail-level", "", "Lowest severity that fails the run: error, warning, info")
	return cmd
}

func runLint(ctx context.Context, root *rootOptions, opts *lintOptions, paths []string, out io.Writer) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return failf("%w", err)
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	failLevel, err := parseFailLevel(opts.failLevel, cfg.FailLevel)
	if err != nil {
		return err
	}
	runner := root.newRunner(cfg, opts.workers)

	files, err := collectTargets(runner, paths)
	if err != nil {
		return err
	}

	results, err := runner.LintFiles(ctx, files)
	if err != nil {
		return failf("%w", err)
	}

	if opts.diff {
		if err := writeDiffs(out, results); err != nil {
			return failf("%w", err)
		}
	}
	if opts.autocorrect {
		results, err = autocorrect(ctx, runner, results)
		if err != nil {
			return err
		}
	}

	if !opts.diff {
		ropts := report.Options{
			Color:       format == report.FormatText && colorFor(out),
			Rules:       ruleDescriptions(),
			ToolVersion: version,
		}
		if err := report.Write(out, format, results, ropts); err != nil {
			return failf("writing report: %w", err)
		}
	}

	return exitFor(results, failLevel)
}

// collectTargets expands directories and keeps explicit files as given.
func collectTargets(runner *lint.Runner, paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, failf("%w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := runner.CollectFiles(p)
		if err != nil {
			return nil, failf("%w", err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// writeDiffs prints what --autocorrect would change, file by file.
func writeDiffs(out io.Writer, results []*lint.FileResult) error {
	for _, r := range results {
		if r.Err != nil || len(r.Edits) == 0 {
			continue
		}
		orig, fixed, err := lint.PendingCorrection(r)
		if err != nil {
			return err
		}
		d, err := report.Diff(r.Path, orig, fixed)
		if err != nil {
			return err
		}
		if _, err := out.Write(d); err != nil {
			return err
		}
	}
	return nil
}

// autocorrect writes every offered edit and re-lints the rewritten files so
// the report reflects what is left.
func autocorrect(ctx context.Context, runner *lint.Runner, results []*lint.FileResult) ([]*lint.FileResult, error) {
	var failed []string
	for i, r := range results {
		changed, err := runner.AutoCorrect(ctx, r)
		if err != nil {
			if ctx.Err() != nil {
				return nil, failf("%w", ctx.Err())
			}
			slog.Warn("autocorrect failed", slog.String("file", r.Path), slog.String("error", err.Error()))
			failed = append(failed, r.Path)
			continue
		}
		if !changed {
			continue
		}
		updated, err := runner.LintFile(ctx, r.Path)
		if updated != nil {
			results[i] = updated
		}
		if err != nil && errors.Is(err, context.Canceled) {
			return nil, failf("%w", err)
		}
	}
	if len(failed) > 0 {
		return results, failf("autocorrect failed for %s", strings.Join(failed, ", "))
	}
	return results, nil
}

func parseFailLevel(flag, configured string) (lint.Severity, error) {
	level := flag
	if level == "" {
		level = configured
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "error":
		return lint.SeverityError, nil
	case "warning":
		return lint.SeverityWarning, nil
	case "info":
		return lint.SeverityInfo, nil
	default:
		return 0, failf("invalid fail level %q (want error, warning or info)", level)
	}
}

// exitFor picks the exit status: unanalyzable files first, then findings.
func exitFor(results []*lint.FileResult, failLevel lint.Severity) error {
	findings := false
	for _, r := range results {
		if r.Err != nil {
			return &exitError{Code: ExitError}
		}
		if r.AtOrAbove(failLevel) {
			findings = true
		}
	}
	if findings {
		return &exitError{Code: ExitFindings}
	}
	return nil
}

func colorFor(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && report.ColorEnabled(f)
}
