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
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

const (
	toolName = "a11ylint"
	toolURI  = "https://github.com/AleutianAI/a11ylint"

	// ParseFailureRule is the SARIF rule id for files that could not be parsed.
	ParseFailureRule = "a11ylint::ParseFailure"
)

// WriteSARIF renders results as a SARIF 2.1.0 log with a single run.
//
// Description:
//
//	Every rule listed in opts.Rules is declared on the driver, plus any
//	rule that produced a finding without being listed. An unanalyzable
//	file becomes a single error result under ParseFailureRule.
func WriteSARIF(w io.Writer, results []*lint.FileResult, opts Options) error {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("creating sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	if opts.ToolVersion != "" {
		version := opts.ToolVersion
		run.Tool.Driver.Version = &version
	}

	ids := make([]string, 0, len(opts.Rules))
	for id := range opts.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		run.AddRule(id).WithDescription(opts.Rules[id])
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		uri := filepath.ToSlash(r.Path)
		if r.Err != nil {
			rule := run.AddRule(ParseFailureRule).WithDescription("The template could not be analyzed")
			run.AddResult(sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(r.Err.Error())).
				WithLevel("error").
				WithLocations([]*sarif.Location{fileLocation(uri)}))
			continue
		}
		for _, f := range r.AllFindings() {
			rule := run.AddRule(f.RuleID)
			region := sarif.NewRegion().
				WithStartLine(f.Line).
				WithStartColumn(f.Column).
				WithEndLine(f.EndLine).
				WithEndColumn(f.EndColumn)
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)).
					WithRegion(region),
			)
			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(f.Message)).
				WithLevel(sarifLevel(f.Severity)).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	log.AddRun(run)

	return log.PrettyWrite(w)
}

func fileLocation(uri string) *sarif.Location {
	return sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)),
	)
}

func sarifLevel(sev lint.Severity) string {
	switch sev {
	case lint.SeverityError:
		return "error"
	case lint.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
