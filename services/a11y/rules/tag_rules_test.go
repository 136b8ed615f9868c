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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

func TestIframeHasTitle(t *testing.T) {
	runCases(t, IframeHasTitle{}, []ruleCase{
		{"missing title", `<iframe src=".././townhall.html" width="100%" height="300"></iframe>`, 1},
		{"title", `<iframe title="Events" src="/events"></iframe>`, 0},
		{"empty title", `<iframe title=""></iframe>`, 0},
		{"dynamic title", `<iframe title="<%= t(".title") %>"></iframe>`, 0},
		{"aria hidden", `<iframe aria-hidden="true"></iframe>`, 0},
		{"blank aria hidden", `<iframe aria-hidden=""></iframe>`, 1},
		{"dynamic aria hidden", `<iframe aria-hidden="<%= hidden %>"></iframe>`, 0},
		{"uppercase", `<IFRAME SRC="/x"></IFRAME>`, 1},
		{"self closing", `<iframe src="/x" />`, 1},
		{"other tag", `<div></div>`, 0},
	})
}

func TestIframeHasTitle_CounterOptional(t *testing.T) {
	rule := IframeHasTitle{}
	src := `<iframe src="/x"></iframe>`

	res := run(t, rule, lint.RuleConfig{Enabled: true}, src)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, iframeHasTitleMessage, res.Findings[0].Message)
	assert.Equal(t, ast.Range{Start: 0, End: 17}, res.Findings[0].Range)
	assert.Nil(t, res.Edit)

	res = run(t, rule, lint.RuleConfig{Enabled: true, CounterEnabled: true},
		lint.FormatDirective(rule.ID(), 1)+"\n"+src)
	assert.Empty(t, res.Findings)
	assert.Equal(t, 1, res.Suppressed)
}

func TestNoTitleAttribute(t *testing.T) {
	runCases(t, NoTitleAttribute{}, []ruleCase{
		{"img title", `<img title='octopus'></img>`, 1},
		{"iframe title", `<iframe title='Events'></iframe>`, 0},
		{"dynamic title", `<a title="<%= name %>">x</a>`, 1},
		{"no title", `<img alt="octopus">`, 0},
		{"closing tags ignored", `<span>x</span>`, 0},
		{"two tags", `<p title="a">x</p><span title="b">y</span>`, 2},
	})
}

func TestNoPositiveTabIndex(t *testing.T) {
	runCases(t, NoPositiveTabIndex{}, []ruleCase{
		{"positive", `<button tabindex="1">x</button>`, 1},
		{"zero", `<div tabindex="0"></div>`, 0},
		{"negative", `<div tabindex="-1"></div>`, 0},
		{"dynamic", `<div tabindex="<%= index %>"></div>`, 0},
		{"literal in code", `<div tabindex="<%= 3 %>"></div>`, 1},
		{"not a number", `<div tabindex="auto"></div>`, 0},
		{"padded", `<div tabindex=" 2 "></div>`, 1},
	})
}

func TestLinkHasHref(t *testing.T) {
	runCases(t, LinkHasHref{}, []ruleCase{
		{"missing href", `<a>Go</a>`, 1},
		{"href", `<a href="/home">Go</a>`, 0},
		{"dynamic href", `<a href="<%= root_path %>">Go</a>`, 0},
		{"named anchor", `<a name="top"></a>`, 0},
		{"blank name", `<a name="">x</a>`, 1},
		{"other tag", `<button>Go</button>`, 0},
	})
}

func TestNoRedundantImageAlt(t *testing.T) {
	runCases(t, NoRedundantImageAlt{}, []ruleCase{
		{"image", `<img alt="image of a cat">`, 1},
		{"picture", `<img alt="Picture of the team">`, 1},
		{"plain", `<img alt="A cat sleeping">`, 0},
		{"substring only", `<img alt="imagery of the coast">`, 0},
		{"dynamic", `<img alt="<%= alt %>">`, 0},
		{"not img", `<div alt="image"></div>`, 0},
	})
}
