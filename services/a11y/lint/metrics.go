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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for lint operations.
var (
	tracer = otel.Tracer("a11ylint.lint")
	meter  = otel.Meter("a11ylint.lint")
)

// Metrics for lint operations.
var (
	fileLatency       metric.Float64Histogram
	filesTotal        metric.Int64Counter
	findingsTotal     metric.Int64Counter
	suppressedTotal   metric.Int64Counter
	autocorrectsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		fileLatency, err = meter.Float64Histogram(
			"a11ylint_file_duration_seconds",
			metric.WithDescription("Duration of single-template analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesTotal, err = meter.Int64Counter(
			"a11ylint_files_total",
			metric.WithDescription("Total number of templates analyzed"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		findingsTotal, err = meter.Int64Counter(
			"a11ylint_findings_total",
			metric.WithDescription("Total number of surfaced findings"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		suppressedTotal, err = meter.Int64Counter(
			"a11ylint_suppressed_total",
			metric.WithDescription("Raw findings paid for by counter directives"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		autocorrectsTotal, err = meter.Int64Counter(
			"a11ylint_autocorrect_edits_total",
			metric.WithDescription("Autocorrection edits written to disk"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startFileSpan creates a span for one template analysis.
func startFileSpan(ctx context.Context, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Runner.LintContent",
		trace.WithAttributes(
			attribute.String("lint.file_path", filePath),
		),
	)
}

// setFileSpanResult sets the result attributes on a file span.
func setFileSpanResult(span trace.Span, result *FileResult) {
	span.SetAttributes(
		attribute.Int("lint.error_count", len(result.Errors)),
		attribute.Int("lint.warning_count", len(result.Warnings)),
		attribute.Int("lint.suppressed_count", result.Suppressed),
		attribute.Int("lint.edit_count", len(result.Edits)),
	)
}

// recordFileMetrics records metrics for one template analysis.
func recordFileMetrics(ctx context.Context, duration time.Duration, result *FileResult, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	fileLatency.Record(ctx, duration.Seconds(), attrs)
	filesTotal.Add(ctx, 1, attrs)

	if !success || result == nil {
		return
	}
	for _, f := range result.AllFindings() {
		findingsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("rule", f.RuleID),
			attribute.String("severity", f.Severity.String()),
		))
	}
	suppressedTotal.Add(ctx, int64(result.Suppressed))
}

// recordAutoCorrect records edits written by autocorrection.
func recordAutoCorrect(ctx context.Context, edits int) {
	if err := initMetrics(); err != nil {
		return
	}
	autocorrectsTotal.Add(ctx, int64(edits))
}
