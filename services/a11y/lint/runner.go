// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/attrs"
	"github.com/AleutianAI/a11ylint/services/a11y/ruby"
)

// =============================================================================
// RUNNER
// =============================================================================

// Runner analyzes templates with a fixed set of rules.
//
// Description:
//
//	Parses each template once, runs every enabled rule over the immutable
//	document, applies the counter protocol and the severity policy, and
//	collects offered autocorrections. Files are independent: a file that
//	cannot be parsed is reported on its own result and never affects the
//	others.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	rules   []Rule
	config  *Config
	policy  *RulePolicy
	parser  ast.Parser
	code    attrs.ExprParser
	workers int
	logger  *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithRules sets the rules to run.
func WithRules(rules ...Rule) Option {
	return func(r *Runner) {
		r.rules = rules
	}
}

// WithConfig sets the project configuration.
func WithConfig(cfg *Config) Option {
	return func(r *Runner) {
		r.config = cfg
	}
}

// WithPolicy overrides the policy derived from the configuration.
func WithPolicy(policy *RulePolicy) Option {
	return func(r *Runner) {
		r.policy = policy
	}
}

// WithParser sets the template parser.
func WithParser(parser ast.Parser) Option {
	return func(r *Runner) {
		r.parser = parser
	}
}

// WithExprParser sets the embedded-code parser.
func WithExprParser(code attrs.ExprParser) Option {
	return func(r *Runner) {
		r.code = code
	}
}

// WithWorkers bounds the number of files analyzed in parallel.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new runner.
//
// Inputs:
//
//	opts - Optional configuration options. Without WithRules the runner
//	       runs nothing; callers normally pass rules.All().
//
// Outputs:
//
//	*Runner - The configured runner
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		config: DefaultConfig(),
		parser: ast.NewERBParser(),
		code:   ruby.NewParser(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.policy == nil {
		r.policy = r.config.Policy()
	}
	if r.workers <= 0 {
		r.workers = r.config.WorkerCount()
	}
	return r
}

// Rules returns the rules the runner was configured with.
func (r *Runner) Rules() []Rule {
	return r.rules
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config
}

// LintContent analyzes one template held in memory.
//
// Inputs:
//
//	ctx - Context for cancellation
//	path - Template path used for reporting
//	content - The template source
//
// Outputs:
//
//	*FileResult - Findings split by severity, plus offered edits
//	error - A *FileError wrapping ErrMalformedTree (or another parse
//	        failure) when the template cannot be analyzed
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintContent(ctx context.Context, path string, content []byte) (*FileResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	ctx, span := startFileSpan(ctx, path)
	defer span.End()
	start := time.Now()

	doc, err := r.parser.Parse(ctx, content, path)
	if err != nil {
		ferr := NewFileError(path, "parse", err)
		span.RecordError(ferr)
		recordFileMetrics(ctx, time.Since(start), nil, false)
		return &FileResult{Path: path, Err: ferr, Error: ferr.Error(), Duration: time.Since(start)}, ferr
	}

	var surfaced []Finding
	var edits []Edit
	suppressed := 0
	for _, rule := range r.rules {
		cfg := r.config.RuleConfig(rule.ID())
		if !cfg.Enabled {
			continue
		}
		rr := RunRule(ctx, doc, rule, cfg, r.code)
		surfaced = append(surfaced, rr.Findings...)
		suppressed += rr.Suppressed
		if rr.Edit != nil {
			edits = append(edits, *rr.Edit)
		}
	}
	sortFindings(surfaced)
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Range.Start < edits[j].Range.Start
	})

	errs, warnings, infos := ApplyPolicy(surfaced, r.policy)
	result := &FileResult{
		Path:       path,
		Valid:      len(errs) == 0,
		Errors:     errs,
		Warnings:   warnings,
		Infos:      infos,
		Edits:      edits,
		Suppressed: suppressed,
		Hash:       doc.Hash,
		Duration:   time.Since(start),
	}

	setFileSpanResult(span, result)
	recordFileMetrics(ctx, result.Duration, result, true)

	r.logger.Debug("Lint completed",
		slog.String("file", path),
		slog.Duration("duration", result.Duration),
		slog.Int("errors", len(errs)),
		slog.Int("warnings", len(warnings)),
		slog.Int("suppressed", suppressed),
	)
	return result, nil
}

// LintFile reads and analyzes one template.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFile(ctx context.Context, path string) (*FileResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		ferr := NewFileError(path, "read", err)
		return &FileResult{Path: path, Err: ferr, Error: ferr.Error()}, ferr
	}
	return r.LintContent(ctx, path, content)
}

// =============================================================================
// BATCH OPERATIONS
// =============================================================================

// LintFiles analyzes several templates with bounded parallelism.
//
// Description:
//
//	Results are returned in input order. A file that cannot be read or
//	parsed gets a result with Err set; its siblings are unaffected. Only
//	context cancellation aborts the batch.
//
// Inputs:
//
//	ctx - Context for cancellation
//	paths - Template paths
//
// Outputs:
//
//	[]*FileResult - One result per input path
//	error - Non-nil only if ctx was canceled
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintFiles(ctx context.Context, paths []string) ([]*FileResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}

	results := make([]*FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := r.LintFile(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				r.logger.Warn("Skipping template",
					slog.String("file", path),
					slog.String("error", err.Error()),
				)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("linting files: %w", err)
	}
	return results, nil
}

// LintDirectory analyzes every template below dirPath.
//
// Description:
//
//	Recursively collects files with the parser's extensions. Skips hidden,
//	vendor, and node_modules directories and anything matching the
//	configuration's exclude patterns.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) LintDirectory(ctx context.Context, dirPath string) ([]*FileResult, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: ctx must not be nil", ErrInvalidInput)
	}
	files, err := r.CollectFiles(dirPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return r.LintFiles(ctx, files)
}

// CollectFiles lists the templates below dirPath that the runner would lint.
func (r *Runner) CollectFiles(dirPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dirPath, path)
		if relErr != nil {
			rel = path
		}

		if d.IsDir() {
			name := d.Name()
			if path != dirPath && (strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules") {
				return filepath.SkipDir
			}
			if path != dirPath && r.config.Excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if r.Handles(path) && !r.config.Excluded(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return files, nil
}

// Handles reports whether path has one of the parser's extensions.
func (r *Runner) Handles(path string) bool {
	for _, ext := range r.parser.Extensions() {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
