// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

const genericRule = "GitHub::Accessibility::AvoidGenericLinkTextCounter"

func sampleResults() []*lint.FileResult {
	return []*lint.FileResult{
		{
			Path: "app/views/home.html.erb",
			Errors: []lint.Finding{{
				File:      "app/views/home.html.erb",
				RuleID:    genericRule,
				Message:   "Avoid using generic link text",
				Range:     ast.Range{Start: 10, End: 20},
				Line:      2,
				Column:    5,
				EndLine:   2,
				EndColumn: 15,
				Severity:  lint.SeverityError,
				Context:   "<%# erblint:counter " + genericRule + " 1 %>",
			}},
			Warnings: []lint.Finding{{
				File:     "app/views/home.html.erb",
				RuleID:   "GitHub::Accessibility::NoTitleAttribute",
				Message:  "title attribute",
				Line:     1,
				Column:   1,
				Severity: lint.SeverityWarning,
			}},
			Edits:      []lint.Edit{{RuleID: genericRule, NewText: "x"}},
			Suppressed: 2,
		},
		{Path: "app/views/clean.html.erb", Valid: true},
		{Path: "app/views/broken.html.erb", Err: errors.New("broken.html.erb:3:1: unterminated ERB block")},
	}
}

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"text", "JSON", " sarif "} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", in, err)
		}
	}

	_, err := ParseFormat("xml")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("yaml"), nil, Options{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(append(sampleResults(), nil))

	want := Summary{Files: 3, Failed: 1, Errors: 1, Warnings: 1, Suppressed: 2, Fixable: 1}
	if sum != want {
		t.Errorf("Summarize() = %+v, want %+v", sum, want)
	}
}

func TestColorEnabled_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ColorEnabled(nil) {
		t.Error("Expected color disabled with NO_COLOR set")
	}
}

// =============================================================================
// TEXT TESTS
// =============================================================================

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleResults(), Options{}); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"app/views/home.html.erb\n",
		"1:1      warning  title attribute",
		"2:5      error    Avoid using generic link text  " + genericRule,
		"app/views/broken.html.erb\n  fatal  broken.html.erb:3:1: unterminated ERB block",
		"3 files, 1 error, 1 warning (2 suppressed), 1 could not be analyzed",
		"1 correction available with --autocorrect",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	if strings.Contains(out, "clean.html.erb") {
		t.Error("Files without findings should not be listed")
	}
	if strings.Index(out, "1:1") > strings.Index(out, "2:5") {
		t.Error("Findings should be listed in source order")
	}
}

func TestWriteText_Clean(t *testing.T) {
	var buf bytes.Buffer
	results := []*lint.FileResult{{Path: "a.html.erb", Valid: true}}
	if err := WriteText(&buf, results, Options{}); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	if buf.String() != "1 file, 0 errors, 0 warnings\n" {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

// =============================================================================
// JSON TESTS
// =============================================================================

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var decoded struct {
		Files []struct {
			Path   string `json:"path"`
			Error  string `json:"error"`
			Errors []struct {
				Rule     string `json:"rule"`
				Severity string `json:"severity"`
				Line     int    `json:"line"`
				Context  string `json:"context"`
			} `json:"errors"`
		} `json:"files"`
		Summary Summary `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if len(decoded.Files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(decoded.Files))
	}
	first := decoded.Files[0].Errors[0]
	if first.Rule != genericRule || first.Severity != "error" || first.Line != 2 {
		t.Errorf("Unexpected first error: %+v", first)
	}
	if !strings.Contains(first.Context, "erblint:counter") {
		t.Errorf("Expected corrected directive in context, got %q", first.Context)
	}
	if !strings.Contains(decoded.Files[2].Error, "unterminated") {
		t.Errorf("Expected error string for broken file, got %q", decoded.Files[2].Error)
	}
	if decoded.Summary.Failed != 1 {
		t.Errorf("Expected 1 failed file in summary, got %d", decoded.Summary.Failed)
	}
}

func TestWriteJSON_DoesNotMutateInput(t *testing.T) {
	results := sampleResults()
	if err := WriteJSON(&bytes.Buffer{}, results); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	if results[2].Error != "" {
		t.Error("WriteJSON should not modify the caller's results")
	}
}

// =============================================================================
// SARIF TESTS
// =============================================================================

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Rules:       map[string]string{genericRule: "Links need text that makes sense out of context"},
		ToolVersion: "1.2.3",
	}
	if err := WriteSARIF(&buf, sampleResults(), opts); err != nil {
		t.Fatalf("WriteSARIF() error: %v", err)
	}

	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Name    string `json:"name"`
					Version string `json:"version"`
					Rules   []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Results []struct {
				RuleID    string `json:"ruleId"`
				Level     string `json:"level"`
				Locations []struct {
					PhysicalLocation struct {
						ArtifactLocation struct {
							URI string `json:"uri"`
						} `json:"artifactLocation"`
						Region struct {
							StartLine   int `json:"startLine"`
							StartColumn int `json:"startColumn"`
						} `json:"region"`
					} `json:"physicalLocation"`
				} `json:"locations"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if log.Version != "2.1.0" {
		t.Errorf("Expected SARIF 2.1.0, got %q", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "a11ylint" || run.Tool.Driver.Version != "1.2.3" {
		t.Errorf("Unexpected driver: %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 3 {
		t.Errorf("Expected 3 rules (declared, discovered, parse failure), got %d", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(run.Results))
	}

	levels := map[string]string{}
	for _, r := range run.Results {
		levels[r.RuleID] = r.Level
	}
	if levels[genericRule] != "error" {
		t.Errorf("Expected error level for %s, got %q", genericRule, levels[genericRule])
	}
	if levels["GitHub::Accessibility::NoTitleAttribute"] != "warning" {
		t.Errorf("Expected warning level, got %q", levels["GitHub::Accessibility::NoTitleAttribute"])
	}
	if levels[ParseFailureRule] != "error" {
		t.Errorf("Expected parse failure result, got %q", levels[ParseFailureRule])
	}

	loc := run.Results[1].Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "app/views/home.html.erb" || loc.Region.StartLine != 2 || loc.Region.StartColumn != 5 {
		t.Errorf("Unexpected location: %+v", loc)
	}
}

func TestSarifLevel(t *testing.T) {
	tests := []struct {
		sev  lint.Severity
		want string
	}{
		{lint.SeverityError, "error"},
		{lint.SeverityWarning, "warning"},
		{lint.SeverityInfo, "note"},
	}
	for _, tt := range tests {
		if got := sarifLevel(tt.sev); got != tt.want {
			t.Errorf("sarifLevel(%v) = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
