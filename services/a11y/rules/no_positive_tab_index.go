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
	"strconv"
	"strings"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

const noPositiveTabIndexMessage = "Do not use positive tabindex as it is error prone and " +
	"can severely disrupt navigation experience for keyboard users"

// NoPositiveTabIndex flags a statically positive tabindex.
//
// Dynamic and non-numeric values are left alone.
type NoPositiveTabIndex struct{}

// ID implements lint.Rule.
func (NoPositiveTabIndex) ID() string { return Namespace + "NoPositiveTabIndex" }

// Description implements lint.Rule.
func (NoPositiveTabIndex) Description() string {
	return "tabindex must not be greater than zero"
}

// Counter implements lint.Rule.
func (NoPositiveTabIndex) Counter() lint.CounterMode { return lint.CounterOptional }

// Check implements lint.Rule.
func (NoPositiveTabIndex) Check(pass *lint.Pass) []lint.Finding {
	var findings []lint.Finding
	for tag := range openingTags(pass.Document, "") {
		values := pass.Resolve(tag, "tabindex")
		if !values.IsKnown() {
			continue
		}
		for _, value := range values.Values {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
				findings = append(findings, pass.Finding(tag.Range, noPositiveTabIndexMessage))
				break
			}
		}
	}
	return findings
}
