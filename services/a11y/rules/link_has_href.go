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

const linkHasHrefMessage = "Links should go somewhere, you probably want to use a `<button>` instead."

// LinkHasHref flags anchors that do not link anywhere.
//
// A named anchor (<a name="top">) is a jump target and is allowed.
type LinkHasHref struct{}

// ID implements lint.Rule.
func (LinkHasHref) ID() string { return Namespace + "LinkHasHref" }

// Description implements lint.Rule.
func (LinkHasHref) Description() string {
	return "links must have an href"
}

// Counter implements lint.Rule.
func (LinkHasHref) Counter() lint.CounterMode { return lint.CounterOptional }

// Check implements lint.Rule.
func (LinkHasHref) Check(pass *lint.Pass) []lint.Finding {
	var findings []lint.Finding
	for tag := range openingTags(pass.Document, "a") {
		if !pass.Resolve(tag, "href").IsAbsent() {
			continue
		}
		name := pass.Resolve(tag, "name")
		if name.IsIndeterminate() || name.AnyNonBlank() {
			continue
		}
		findings = append(findings, pass.Finding(tag.Range, linkHasHrefMessage))
	}
	return findings
}
