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

const noTitleAttributeMessage = "The title attribute should never be used unless for an " +
	"`<iframe>` as it is inaccessible for several groups of users."

// NoTitleAttribute flags title attributes on anything but an iframe.
type NoTitleAttribute struct{}

// ID implements lint.Rule.
func (NoTitleAttribute) ID() string { return Namespace + "NoTitleAttribute" }

// Description implements lint.Rule.
func (NoTitleAttribute) Description() string {
	return "title attributes are only allowed on iframes"
}

// Counter implements lint.Rule.
func (NoTitleAttribute) Counter() lint.CounterMode { return lint.CounterOptional }

// Check implements lint.Rule.
func (NoTitleAttribute) Check(pass *lint.Pass) []lint.Finding {
	var findings []lint.Finding
	for tag := range openingTags(pass.Document, "") {
		if tag.Name == "iframe" || pass.Resolve(tag, "title").IsAbsent() {
			continue
		}
		findings = append(findings, pass.Finding(tag.Range, noTitleAttributeMessage))
	}
	return findings
}
