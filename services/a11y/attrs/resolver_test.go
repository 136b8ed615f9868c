// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package attrs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/ruby"
)

func firstTag(t *testing.T, src string) *ast.Tag {
	t.Helper()
	doc, err := ast.NewERBParser().Parse(context.Background(), []byte(src), "test.html.erb")
	require.NoError(t, err)
	for _, n := range doc.Children() {
		if n.Kind() == ast.KindTag {
			return ast.MustTag(n)
		}
	}
	t.Fatalf("no tag in %q", src)
	return nil
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		attr   string
		state  State
		values []string
	}{
		{"absent", `<a href="/">x</a>`, "aria-label", Absent, nil},
		{"literal", `<a aria-label="Learn more about Sponsors">x</a>`, "aria-label", Known, []string{"Learn more about Sponsors"}},
		{"case-insensitive name", `<a ARIA-LABEL="Hi">x</a>`, "aria-label", Known, []string{"Hi"}},
		{"empty value", `<a aria-label="">x</a>`, "aria-label", Known, []string{""}},
		{"boolean", `<input disabled>`, "disabled", Known, []string{""}},
		{"duplicate occurrences", `<a title="a" title="b">x</a>`, "title", Known, []string{"a", "b"}},
		{"string literal code", `<a aria-label="<%= "Learn more" %>">x</a>`, "aria-label", Known, []string{"Learn more"}},
		{"literal concatenation", `<a aria-label="Learn <%= 'more' %> now">x</a>`, "aria-label", Known, []string{"Learn more now"}},
		{"integer literal code", `<div tabindex="<%= 1 %>"></div>`, "tabindex", Known, []string{"1"}},
		{"variable", `<a aria-label="<%= tooltip_text %>">x</a>`, "aria-label", Indeterminate, nil},
		{"interpolation", `<a aria-label="<%= "Learn #{x}" %>">x</a>`, "aria-label", Indeterminate, nil},
		{"statement block", `<a aria-label="<% if x %>a<% end %>">x</a>`, "aria-label", Indeterminate, nil},
		{"partially dynamic", `<a aria-label="Learn <%= topic %>">x</a>`, "aria-label", Indeterminate, nil},
		{"one dynamic occurrence", `<a title="a" title="<%= b %>">x</a>`, "title", Indeterminate, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(ruby.NewParser())
			vs := r.Resolve(context.Background(), firstTag(t, tt.src), tt.attr)
			assert.Equal(t, tt.state, vs.State)
			assert.Equal(t, tt.values, vs.Values)
		})
	}
}

type countingParser struct {
	inner ExprParser
	calls int
}

func (c *countingParser) Parse(ctx context.Context, source string) (*ruby.Expr, error) {
	c.calls++
	return c.inner.Parse(ctx, source)
}

func TestResolver_Memoizes(t *testing.T) {
	parser := &countingParser{inner: ruby.NewParser()}
	r := NewResolver(parser)
	tag := firstTag(t, `<a aria-label="<%= "x" %>">x</a>`)

	first := r.Resolve(context.Background(), tag, "aria-label")
	second := r.Resolve(context.Background(), tag, "ARIA-LABEL")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, parser.calls)
}

func TestResolver_NilParserIsIndeterminate(t *testing.T) {
	r := NewResolver(nil)
	vs := r.Resolve(context.Background(), firstTag(t, `<a aria-label="<%= "x" %>">x</a>`), "aria-label")
	assert.True(t, vs.IsIndeterminate())
}

func TestValueSet_AnyNonBlank(t *testing.T) {
	assert.False(t, ValueSet{State: Known, Values: []string{"", "  "}}.AnyNonBlank())
	assert.True(t, ValueSet{State: Known, Values: []string{"", "id"}}.AnyNonBlank())
	assert.False(t, ValueSet{State: Absent}.AnyNonBlank())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "known", Known.String())
	assert.Equal(t, "indeterminate", Indeterminate.String())
	assert.Equal(t, "unknown", State(9).String())
}
