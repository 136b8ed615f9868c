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
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
)

// =============================================================================
// COUNTER DIRECTIVES
// =============================================================================

// DirectiveMarker distinguishes counter directives from ordinary comments.
const DirectiveMarker = "erblint:counter"

// directivePattern matches <%# erblint:counter <body> %>. The body is split
// into fields afterwards so that malformed directives keep their location.
var directivePattern = regexp.MustCompile(`<%#\s*erblint:counter\b([^%]*)%>`)

// Directive is one counter directive found in a template.
type Directive struct {
	// RuleID is the rule the directive names.
	RuleID string

	// Expected is the declared count. Zero when Malformed.
	Expected int

	// Range covers the whole <%# ... %> comment.
	Range ast.Range

	// Malformed is true when the count is missing or not a non-negative
	// integer. A malformed directive counts as zero tolerance.
	Malformed bool
}

// ParseDirectives returns every counter directive in the template, in
// source order. Directives without a rule id are ignored.
func ParseDirectives(src []byte) []Directive {
	var out []Directive
	for _, m := range directivePattern.FindAllSubmatchIndex(src, -1) {
		fields := strings.Fields(string(src[m[2]:m[3]]))
		if len(fields) == 0 {
			continue
		}
		d := Directive{RuleID: fields[0], Range: ast.Range{Start: m[0], End: m[1]}}
		d.Malformed = true
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n >= 0 {
				d.Expected, d.Malformed = n, false
			}
		}
		out = append(out, d)
	}
	return out
}

// FormatDirective renders the directive declaring count findings for ruleID.
func FormatDirective(ruleID string, count int) string {
	return fmt.Sprintf("<%%# %s %s %d %%>", DirectiveMarker, ruleID, count)
}

// =============================================================================
// COUNTER PROTOCOL
// =============================================================================

// CounterOutcome is the result of applying the counter protocol.
type CounterOutcome struct {
	// Surfaced are the findings that should be reported.
	Surfaced []Finding

	// Edit is the autocorrection that converges the directive to Actual, or nil.
	Edit *Edit

	// Expected is the count the directive declared (0 without one).
	Expected int

	// Actual is the number of raw findings.
	Actual int
}

// ApplyCounter reconciles a rule's raw findings with its counter directive.
//
// Description:
//
//	When actual <= expected no finding surfaces; an edit is still offered
//	to tighten the directive when actual < expected. When actual > expected
//	a single synthetic finding surfaces, carrying the corrected directive
//	as its context. The edit always targets the actual count:
//	  - an existing directive is replaced in place
//	  - a missing directive is inserted before the template content
//	  - a directive whose count drops to zero is removed with its line
//	Two or more directives for the same rule are unsupported: all of them
//	are ignored and only an ambiguity finding is reported, with no edit.
//
// Inputs:
//
//	doc - The analyzed document (raw text is read from doc.Source)
//	ruleID - The rule whose directive to look up
//	raw - The rule's raw findings in source order
//
// Outputs:
//
//	CounterOutcome - Surfaced findings and the optional edit
func ApplyCounter(doc *ast.Document, ruleID string, raw []Finding) CounterOutcome {
	var matching []Directive
	for _, d := range ParseDirectives(doc.Source) {
		if d.RuleID == ruleID {
			matching = append(matching, d)
		}
	}

	out := CounterOutcome{Actual: len(raw)}
	corrected := FormatDirective(ruleID, out.Actual)

	if len(matching) > 1 {
		out.Surfaced = append(out.Surfaced, newFinding(doc, ruleID, matching[1].Range,
			fmt.Sprintf("Multiple %s comments for %s. Keep exactly one.", DirectiveMarker, ruleID)))
		return out
	}

	var directive *Directive
	if len(matching) == 1 {
		directive = &matching[0]
		out.Expected = directive.Expected
	}

	if out.Actual > out.Expected {
		var excess Finding
		if directive == nil {
			excess = newFinding(doc, ruleID, raw[0].Range, bypassMessage(ruleID, out.Actual))
		} else {
			excess = newFinding(doc, ruleID, directive.Range, fmt.Sprintf(
				"Incorrect %s number for %s. Expected: %d, actual: %d.",
				DirectiveMarker, ruleID, out.Expected, out.Actual))
		}
		excess.Context = corrected
		out.Surfaced = []Finding{excess}
	}

	switch {
	case directive == nil && out.Actual > 0:
		out.Edit = &Edit{RuleID: ruleID, Range: ast.Range{}, NewText: corrected + "\n"}
	case directive != nil && out.Actual == 0:
		out.Edit = &Edit{RuleID: ruleID, Range: lineExtent(doc.Source, directive.Range)}
	case directive != nil && (directive.Malformed || out.Actual != out.Expected):
		out.Edit = &Edit{RuleID: ruleID, Range: directive.Range, NewText: corrected}
	}
	return out
}

func bypassMessage(ruleID string, actual int) string {
	return fmt.Sprintf("%s: If you must, add %s to bypass this check.", ruleID, FormatDirective(ruleID, actual))
}

// lineExtent widens r over its trailing newline when the directive sits
// alone on its line, so removal leaves no blank line behind.
func lineExtent(src []byte, r ast.Range) ast.Range {
	lineStart := r.Start
	for lineStart > 0 && (src[lineStart-1] == ' ' || src[lineStart-1] == '\t') {
		lineStart--
	}
	if lineStart > 0 && src[lineStart-1] != '\n' {
		return r
	}
	end := r.End
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	switch {
	case end < len(src) && src[end] == '\n':
		return ast.Range{Start: lineStart, End: end + 1}
	case end == len(src):
		return ast.Range{Start: lineStart, End: end}
	default:
		return r
	}
}
