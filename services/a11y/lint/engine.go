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
	"sort"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/attrs"
)

// RunRule runs one rule over one document and applies the counter protocol.
//
// Description:
//
//	Raw findings are ordered by source range. When the rule uses the
//	counter protocol (always, or optionally with counter_enabled) the raw
//	findings are reconciled with the rule's directive; otherwise they are
//	returned unchanged.
//
// Inputs:
//
//	ctx - Context passed to the embedded-code parser
//	doc - The parsed document
//	rule - The rule to run
//	cfg - The rule's configuration
//	code - Embedded-code parser. May be nil, in which case all embedded
//	       code is treated as opaque.
//
// Outputs:
//
//	RuleResult - Surfaced findings, counts, and the optional edit
//
// Thread Safety: Safe for concurrent use; each call owns its Pass.
func RunRule(ctx context.Context, doc *ast.Document, rule Rule, cfg RuleConfig, code attrs.ExprParser) RuleResult {
	pass := NewPass(ctx, doc, rule, cfg, code)
	raw := rule.Check(pass)
	sortFindings(raw)

	result := RuleResult{RuleID: rule.ID(), Raw: len(raw)}
	if !counterActive(rule, cfg) {
		result.Findings = raw
		return result
	}

	outcome := ApplyCounter(doc, rule.ID(), raw)
	result.Findings = outcome.Surfaced
	result.Edit = outcome.Edit
	if outcome.Actual <= outcome.Expected {
		result.Suppressed = outcome.Actual
	}
	return result
}

func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i].Range, findings[j].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
}
