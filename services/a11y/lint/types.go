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
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity represents the severity level of a finding.
type Severity int

const (
	// SeverityInfo represents findings that are reported but never fail a run.
	SeverityInfo Severity = iota

	// SeverityWarning represents findings that fail a run only at --fail-level=warning.
	SeverityWarning

	// SeverityError represents findings that fail a run by default.
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SeverityFromString parses a severity string.
//
// Description:
//
//	Accepts the usual aliases. Unknown values default to SeverityError,
//	since every accessibility rule blocks unless configured otherwise.
func SeverityFromString(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "err", "fatal", "critical":
		return SeverityError
	case "warning", "warn":
		return SeverityWarning
	case "info", "note", "hint":
		return SeverityInfo
	default:
		return SeverityError
	}
}

// =============================================================================
// FINDING
// =============================================================================

// Finding is one defect instance.
//
// Thread Safety: Immutable after creation.
type Finding struct {
	// File is the template path.
	File string `json:"file"`

	// RuleID is the fully qualified rule identifier.
	RuleID string `json:"rule"`

	// Message is the human-readable description of the defect.
	Message string `json:"message"`

	// Range is the byte range of the defect in the template.
	Range ast.Range `json:"range"`

	// Line is the 1-indexed line of Range.Start.
	Line int `json:"line"`

	// Column is the 1-indexed column of Range.Start.
	Column int `json:"column"`

	// EndLine is the 1-indexed line of Range.End.
	EndLine int `json:"end_line"`

	// EndColumn is the 1-indexed column of Range.End.
	EndColumn int `json:"end_column"`

	// Severity is assigned by policy after the rule runs.
	Severity Severity `json:"severity"`

	// Context is the payload autocorrection needs, e.g. the corrected
	// counter directive. Empty when the finding has no correction.
	Context string `json:"context,omitempty"`
}

// Location returns a formatted location string (file:line:col).
func (f *Finding) Location() string {
	if f.Column > 0 {
		return f.File + ":" + strconv.Itoa(f.Line) + ":" + strconv.Itoa(f.Column)
	}
	return f.File + ":" + strconv.Itoa(f.Line)
}

// CanAutoCorrect reports whether the finding carries a correction.
func (f *Finding) CanAutoCorrect() bool {
	return f.Context != ""
}

// =============================================================================
// EDIT
// =============================================================================

// Edit is one text replacement produced by autocorrection.
//
// A zero-width Range is an insertion. An empty NewText is a deletion.
type Edit struct {
	// RuleID is the rule whose counter produced the edit.
	RuleID string `json:"rule"`

	// Range is the byte range to replace.
	Range ast.Range `json:"range"`

	// NewText is the replacement text.
	NewText string `json:"new_text"`
}

// =============================================================================
// RESULTS
// =============================================================================

// RuleResult is the output of one rule over one file.
type RuleResult struct {
	// RuleID identifies the rule.
	RuleID string

	// Findings are the surfaced findings in source order.
	Findings []Finding

	// Raw is the number of findings the rule produced before the counter
	// protocol was applied.
	Raw int

	// Suppressed is the number of raw findings paid for by a counter directive.
	Suppressed int

	// Edit is the offered autocorrection, or nil.
	Edit *Edit
}

// FileResult contains the result of linting one template.
//
// Thread Safety: Immutable after creation by the runner.
type FileResult struct {
	// Path is the template that was linted.
	Path string `json:"path"`

	// Valid is true if no error-severity findings were surfaced.
	Valid bool `json:"valid"`

	// Errors are findings with SeverityError.
	Errors []Finding `json:"errors"`

	// Warnings are findings with SeverityWarning.
	Warnings []Finding `json:"warnings"`

	// Infos are findings with SeverityInfo.
	Infos []Finding `json:"infos,omitempty"`

	// Edits are the autocorrections offered for this file, in source order.
	Edits []Edit `json:"edits,omitempty"`

	// Suppressed counts raw findings paid for by counter directives.
	Suppressed int `json:"suppressed"`

	// Hash is the sha256 of the analyzed content. Autocorrection refuses
	// to run against a file whose hash no longer matches.
	Hash string `json:"hash,omitempty"`

	// Duration is how long analysis took.
	Duration time.Duration `json:"duration"`

	// Err is set when the file could not be analyzed at all.
	Err error `json:"-"`

	// Error is Err rendered for serialization.
	Error string `json:"error,omitempty"`
}

// HasErrors returns true if there are any error-severity findings.
func (r *FileResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warnings.
func (r *FileResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllFindings returns all findings in source order.
func (r *FileResult) AllFindings() []Finding {
	all := make([]Finding, 0, r.FindingCount())
	all = append(all, r.Errors...)
	all = append(all, r.Warnings...)
	all = append(all, r.Infos...)
	sortFindings(all)
	return all
}

// FindingCount returns the total number of surfaced findings.
func (r *FileResult) FindingCount() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Infos)
}

// AtOrAbove reports whether any finding reaches the given severity.
func (r *FileResult) AtOrAbove(level Severity) bool {
	switch level {
	case SeverityError:
		return len(r.Errors) > 0
	case SeverityWarning:
		return len(r.Errors) > 0 || len(r.Warnings) > 0
	default:
		return r.FindingCount() > 0
	}
}
