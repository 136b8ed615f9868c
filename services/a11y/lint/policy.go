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
	"strings"
)

// =============================================================================
// RULE POLICY
// =============================================================================

// RulePolicy maps rule identifiers to severities.
//
// Description:
//
//	Patterns match rule ids exactly or as a "::" namespace prefix, so
//	"GitHub::Accessibility" matches every GitHub accessibility rule. When
//	several patterns match, the longest one wins; on a tie Ignore beats
//	BlockOn, which beats WarnOn, which beats InfoOn.
//
// Thread Safety: Treat as immutable after creation.
type RulePolicy struct {
	// BlockOn are rules reported as errors.
	BlockOn []string

	// WarnOn are rules reported as warnings.
	WarnOn []string

	// InfoOn are rules reported as informational.
	InfoOn []string

	// Ignore are rules whose findings are dropped.
	Ignore []string

	// Default is the severity for rules no pattern matches.
	Default Severity
}

// ShouldIgnore returns true if the rule's findings should be dropped.
func (p *RulePolicy) ShouldIgnore(rule string) bool {
	_, ignored := p.resolve(rule)
	return ignored
}

// GetSeverity returns the severity for a rule based on policy.
//
// Ignored rules report SeverityInfo; ApplyPolicy drops them before
// severity matters.
func (p *RulePolicy) GetSeverity(rule string) Severity {
	sev, ignored := p.resolve(rule)
	if ignored {
		return SeverityInfo
	}
	return sev
}

func (p *RulePolicy) resolve(rule string) (Severity, bool) {
	rule = strings.ToLower(rule)
	best, sev, ignored := -1, p.Default, false

	// Listed in precedence order: on equal specificity the first list wins.
	lists := []struct {
		patterns []string
		severity Severity
		ignore   bool
	}{
		{p.Ignore, SeverityInfo, true},
		{p.BlockOn, SeverityError, false},
		{p.WarnOn, SeverityWarning, false},
		{p.InfoOn, SeverityInfo, false},
	}
	for _, list := range lists {
		for _, pattern := range list.patterns {
			pattern = strings.ToLower(pattern)
			if len(pattern) > best && matchesRule(rule, pattern) {
				best, sev, ignored = len(pattern), list.severity, list.ignore
			}
		}
	}
	return sev, ignored
}

// matchesRule checks if a rule matches a pattern.
// Examples:
//   - "github::accessibility::iframehastitle" matches itself
//   - "github::accessibility::iframehastitle" matches "github::accessibility"
//   - "github::accessibilityx::foo" does not match "github::accessibility"
func matchesRule(rule, pattern string) bool {
	if rule == pattern {
		return true
	}
	return strings.HasPrefix(rule, pattern+"::")
}

// =============================================================================
// DEFAULT POLICY
// =============================================================================

// DefaultPolicy blocks on every GitHub accessibility rule.
func DefaultPolicy() *RulePolicy {
	return &RulePolicy{
		BlockOn: []string{"GitHub::Accessibility"},
		Default: SeverityError,
	}
}

// ApplyPolicy applies a policy to findings, setting appropriate severities.
//
// Inputs:
//
//	findings - Surfaced findings from the rule engine
//	policy - The policy to apply. Nil treats every finding as an error.
//
// Outputs:
//
//	errors - Findings that fail the run
//	warnings - Findings that warn
//	infos - Findings that are informational
func ApplyPolicy(findings []Finding, policy *RulePolicy) (errors, warnings, infos []Finding) {
	if policy == nil {
		policy = &RulePolicy{Default: SeverityError}
	}

	errors = make([]Finding, 0)
	warnings = make([]Finding, 0)

	for _, f := range findings {
		severity, ignored := policy.resolve(f.RuleID)
		if ignored {
			continue
		}
		f.Severity = severity

		switch severity {
		case SeverityError:
			errors = append(errors, f)
		case SeverityWarning:
			warnings = append(warnings, f)
		case SeverityInfo:
			infos = append(infos, f)
		}
	}

	return errors, warnings, infos
}
