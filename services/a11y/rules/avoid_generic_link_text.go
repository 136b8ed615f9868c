// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"strings"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/ruby"
)

// bannedLinkText is the generic link text that makes no sense out of context.
var bannedLinkText = []string{
	"Read more",
	"Learn more",
	"Click here",
	"More",
	"Link",
	"Here",
}

var genericLinkTextMessage = "Avoid using generic link text such as " +
	strings.Join(bannedLinkText, ", ") + " which do not make sense in isolation."

// linkHelper is the Rails helper whose first argument is the link text.
const linkHelper = "link_to"

// AvoidGenericLinkTextCounter flags links whose only visible text is generic.
//
// Description:
//
//	Two shapes are checked. Markup links are found with a three-slot window
//	over the top-level siblings: an opening <a>, a text node whose trimmed
//	content is a banned phrase, and the closing </a>. Helper links are
//	link_to calls whose first argument is a banned string literal.
//
//	An accessible name excuses the link when it can be judged statically.
//	For markup, aria-labelledby (non-blank or dynamic) or a dynamic
//	aria-label means abstain; a literal aria-label excuses the link only if
//	it starts with the visible text (WCAG 2.5.3, label in name). For
//	helpers, any aria-label or aria-labelledby key, or label/labelledby
//	inside an aria: hash, means abstain.
//
//	The rule always runs under the counter protocol.
type AvoidGenericLinkTextCounter struct{}

// ID implements lint.Rule.
func (AvoidGenericLinkTextCounter) ID() string { return Namespace + "AvoidGenericLinkTextCounter" }

// Description implements lint.Rule.
func (AvoidGenericLinkTextCounter) Description() string {
	return "Links need text that makes sense out of context"
}

// Counter implements lint.Rule.
func (AvoidGenericLinkTextCounter) Counter() lint.CounterMode { return lint.CounterAlways }

// Check implements lint.Rule.
func (r AvoidGenericLinkTextCounter) Check(pass *lint.Pass) []lint.Finding {
	var findings []lint.Finding
	siblings := pass.Document.Children()

	for i, node := range siblings {
		switch node.Kind() {
		case ast.KindText:
			if i == 0 || i == len(siblings)-1 {
				continue
			}
			if f, ok := r.checkAnchor(pass, siblings[i-1], node, siblings[i+1]); ok {
				findings = append(findings, f)
			}
		case ast.KindCode:
			if f, ok := r.checkHelper(pass, node); ok {
				findings = append(findings, f)
			}
		}
	}
	return findings
}

func (r AvoidGenericLinkTextCounter) checkAnchor(pass *lint.Pass, prev, text, next *ast.Node) (lint.Finding, bool) {
	visible := strings.TrimSpace(text.Text())
	if !isBannedLinkText(visible) {
		return lint.Finding{}, false
	}
	if prev.Kind() != ast.KindTag || next.Kind() != ast.KindTag {
		return lint.Finding{}, false
	}
	open, closing := ast.MustTag(prev), ast.MustTag(next)
	if !open.IsOpeningFor("a") || open.IsSelfClosing() || !closing.IsClosingFor("a") {
		return lint.Finding{}, false
	}

	labelledBy := pass.Resolve(open, "aria-labelledby")
	if labelledBy.IsIndeterminate() || labelledBy.AnyNonBlank() {
		return lint.Finding{}, false
	}

	label := pass.Resolve(open, "aria-label")
	if label.IsIndeterminate() {
		return lint.Finding{}, false
	}
	for _, value := range label.Values {
		if strings.HasPrefix(value, visible) {
			return lint.Finding{}, false
		}
	}

	rng := ast.Range{Start: open.Range.Start, End: text.Range().End}
	return pass.Finding(rng, genericLinkTextMessage), true
}

func (r AvoidGenericLinkTextCounter) checkHelper(pass *lint.Pass, node *ast.Node) (lint.Finding, bool) {
	expr, ok := pass.ParseCode(node)
	if !ok {
		return lint.Finding{}, false
	}
	call := expr.FirstCall()
	if call == nil || call.Method != linkHelper || len(call.Args) == 0 {
		return lint.Finding{}, false
	}
	text, ok := call.Args[0].Literal()
	if !ok || !isBannedLinkText(strings.TrimSpace(text)) {
		return lint.Finding{}, false
	}
	if helperHasAccessibleName(call.Pairs) {
		return lint.Finding{}, false
	}
	return pass.Finding(node.Range(), genericLinkTextMessage), true
}

// helperHasAccessibleName reports whether helper options name the link.
// Values are never inspected: interpolated or dynamic labels cannot be
// compared with the visible text.
func helperHasAccessibleName(pairs []*ruby.Pair) bool {
	for _, pair := range pairs {
		switch pair.Key {
		case "aria-label", "aria-labelledby":
			return true
		case "aria":
			for _, nested := range pair.Value.Pairs() {
				if nested.Key == "label" || nested.Key == "labelledby" {
					return true
				}
			}
		}
	}
	return false
}

func isBannedLinkText(text string) bool {
	for _, banned := range bannedLinkText {
		if strings.EqualFold(text, banned) {
			return true
		}
	}
	return false
}
