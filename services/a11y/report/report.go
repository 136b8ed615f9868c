// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report renders lint results for people and machines.
//
// Three formats are supported: a terminal-friendly text listing, a JSON
// document mirroring lint.FileResult, and SARIF 2.1.0 for code-scanning
// integrations. Unified diffs of autocorrections are produced by Diff.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// ErrUnknownFormat indicates an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Format names an output format.
type Format string

const (
	// FormatText is the human-readable listing.
	FormatText Format = "text"

	// FormatJSON is a JSON document with one entry per file.
	FormatJSON Format = "json"

	// FormatSARIF is a SARIF 2.1.0 log.
	FormatSARIF Format = "sarif"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatSARIF}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of text, json, sarif)", ErrUnknownFormat, s)
}

// Options configures rendering.
type Options struct {
	// Color enables ANSI styling in text output.
	Color bool

	// Rules describes the rules that ran, keyed by id. Used for SARIF
	// rule metadata; may be nil.
	Rules map[string]string

	// ToolVersion is reported in SARIF output.
	ToolVersion string
}

// Write renders results in the given format.
//
// Inputs:
//
//	w - Destination
//	format - One of Formats
//	results - Per-file results in the order they should appear
//	opts - Rendering options
//
// Outputs:
//
//	error - ErrUnknownFormat or the first write error
func Write(w io.Writer, format Format, results []*lint.FileResult, opts Options) error {
	switch format {
	case FormatText:
		return WriteText(w, results, opts)
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatSARIF:
		return WriteSARIF(w, results, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ColorEnabled reports whether text output to f should be styled.
//
// NO_COLOR (https://no-color.org) always wins.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Summary aggregates counts over many files.
type Summary struct {
	Files      int `json:"files"`
	Failed     int `json:"failed"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
	Infos      int `json:"infos"`
	Suppressed int `json:"suppressed"`
	Fixable    int `json:"fixable"`
}

// Summarize counts findings across results.
func Summarize(results []*lint.FileResult) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Files++
		if r.Err != nil {
			s.Failed++
		}
		s.Errors += len(r.Errors)
		s.Warnings += len(r.Warnings)
		s.Infos += len(r.Infos)
		s.Suppressed += r.Suppressed
		s.Fixable += len(r.Edits)
	}
	return s
}
