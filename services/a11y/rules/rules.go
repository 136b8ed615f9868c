// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules implements the accessibility checks.
//
// Every rule is registered at build time in All. Rules are stateless values;
// one instance may run over many documents concurrently.
package rules

import (
	"iter"
	"sort"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// Namespace prefixes every rule id.
const Namespace = "GitHub::Accessibility::"

// All returns every registered rule in a stable order.
func All() []lint.Rule {
	return []lint.Rule{
		AvoidGenericLinkTextCounter{},
		IframeHasTitle{},
		LinkHasHref{},
		NoPositiveTabIndex{},
		NoRedundantImageAlt{},
		NoTitleAttribute{},
	}
}

// IDs returns the ids of every registered rule, sorted.
func IDs() []string {
	all := All()
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID()
	}
	sort.Strings(ids)
	return ids
}

// ByID looks up a registered rule.
func ByID(id string) (lint.Rule, bool) {
	for _, r := range All() {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// openingTags yields every opening or self-closing tag, optionally
// restricted to one name.
func openingTags(doc *ast.Document, name string) iter.Seq[*ast.Tag] {
	return func(yield func(*ast.Tag) bool) {
		for node := range doc.Root.Descendants(ast.KindTag) {
			tag := ast.MustTag(node)
			if tag.Closing || (name != "" && tag.Name != name) {
				continue
			}
			if !yield(tag) {
				return
			}
		}
	}
}
