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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
)

const testRuleID = "GitHub::Accessibility::TestTag"

// tagRule reports every opening tag with the given name.
type tagRule struct {
	id   string
	tag  string
	mode CounterMode
}

func (r tagRule) ID() string           { return r.id }
func (r tagRule) Description() string  { return "reports <" + r.tag + "> tags" }
func (r tagRule) Counter() CounterMode { return r.mode }

func (r tagRule) Check(p *Pass) []Finding {
	var out []Finding
	for n := range p.Document.Root.Descendants(ast.KindTag) {
		tag := ast.MustTag(n)
		if tag.IsOpeningFor(r.tag) {
			out = append(out, p.Finding(tag.Range, "found <"+r.tag+">"))
		}
	}
	return out
}

func parseDoc(t *testing.T, src string) *ast.Document {
	t.Helper()
	doc, err := ast.NewERBParser().Parse(context.Background(), []byte(src), "test.html.erb")
	require.NoError(t, err)
	return doc
}

func rawFindings(t *testing.T, doc *ast.Document, n int) []Finding {
	t.Helper()
	out := make([]Finding, n)
	for i := range out {
		out[i] = newFinding(doc, testRuleID, ast.Range{Start: i, End: i + 1}, "raw")
	}
	return out
}
