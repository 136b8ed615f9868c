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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.severity.String())
	}
}

func TestSeverityFromString(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"error", SeverityError},
		{"ERR", SeverityError},
		{"warning", SeverityWarning},
		{" warn ", SeverityWarning},
		{"info", SeverityInfo},
		{"hint", SeverityInfo},
		{"bogus", SeverityError},
		{"", SeverityError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SeverityFromString(tt.input), tt.input)
	}
}

func TestFinding_JSON(t *testing.T) {
	f := Finding{
		File:     "a.erb",
		RuleID:   testRuleID,
		Message:  "m",
		Range:    ast.Range{Start: 1, End: 4},
		Line:     1,
		Column:   2,
		Severity: SeverityWarning,
	}
	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"warning"`)
	assert.Contains(t, string(data), `"range":{"start":1,"end":4}`)
	assert.NotContains(t, string(data), "context")
	assert.Equal(t, "a.erb:1:2", f.Location())
	assert.False(t, f.CanAutoCorrect())
}

func TestFileResult_Levels(t *testing.T) {
	r := &FileResult{
		Warnings: []Finding{{RuleID: "b", Range: ast.Range{Start: 5}}},
		Infos:    []Finding{{RuleID: "c", Range: ast.Range{Start: 1}}},
	}
	assert.False(t, r.AtOrAbove(SeverityError))
	assert.True(t, r.AtOrAbove(SeverityWarning))
	assert.True(t, r.AtOrAbove(SeverityInfo))
	assert.Equal(t, 2, r.FindingCount())

	all := r.AllFindings()
	require.Len(t, all, 2)
	assert.Equal(t, "c", all[0].RuleID)
}
