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
	"regexp"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

const noRedundantImageAltMessage = "<img> alt prop should not contain `image` or `picture` " +
	"as screen readers already announce the element as an image"

var redundantAltWords = regexp.MustCompile(`(?i)\b(image|picture)\b`)

// NoRedundantImageAlt flags alt text that repeats the element's role.
type NoRedundantImageAlt struct{}

// ID implements lint.Rule.
func (NoRedundantImageAlt) ID() string { return Namespace + "NoRedundantImageAlt" }

// Description implements lint.Rule.
func (NoRedundantImageAlt) Description() string {
	return "image alt text must not say image or picture"
}

// Counter implements lint.Rule.
func (NoRedundantImageAlt) Counter() lint.CounterMode { return lint.CounterOptional }

// Check implements lint.Rule.
func (NoRedundantImageAlt) Check(pass *lint.Pass) []lint.Finding {
	var findings []lint.Finding
	for tag := range openingTags(pass.Document, "img") {
		alt := pass.Resolve(tag, "alt")
		if !alt.IsKnown() {
			continue
		}
		for _, value := range alt.Values {
			if redundantAltWords.MatchString(value) {
				findings = append(findings, pass.Finding(tag.Range, noRedundantImageAltMessage))
				break
			}
		}
	}
	return findings
}
