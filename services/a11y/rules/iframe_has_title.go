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
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

const iframeHasTitleMessage = "`<iframe>` with meaningful content should have a title attribute " +
	"that identifies the content. If `<iframe>` has no meaningful content, hide it from " +
	"assistive technology with `aria-hidden='true'`."

// IframeHasTitle flags iframes that neither name their content nor hide it.
//
// Description:
//
//	An opening <iframe> is flagged when it has no title attribute and no
//	non-blank aria-hidden. A dynamic aria-hidden counts as present. Any
//	title, even an empty or dynamic one, satisfies the rule.
type IframeHasTitle struct{}

// ID implements lint.Rule.
func (IframeHasTitle) ID() string { return Namespace + "IframeHasTitle" }

// Description implements lint.Rule.
func (IframeHasTitle) Description() string {
	return "iframes must have a title or be hidden from assistive technology"
}

// Counter implements lint.Rule.
func (IframeHasTitle) Counter() lint.CounterMode { return lint.CounterOptional }

// Check implements lint.Rule.
func (IframeHasTitle) Check(pass *lint.Pass) []lint.Finding {
	var findings []lint.Finding
	for tag := range openingTags(pass.Document, "iframe") {
		if !pass.Resolve(tag, "title").IsAbsent() {
			continue
		}
		hidden := pass.Resolve(tag, "aria-hidden")
		if hidden.IsIndeterminate() || hidden.AnyNonBlank() {
			continue
		}
		findings = append(findings, pass.Finding(tag.Range, iframeHasTitleMessage))
	}
	return findings
}
