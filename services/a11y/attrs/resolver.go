// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package attrs resolves the possible values of tag attributes whose
// values may mix literal text with embedded code.
//
// Resolution is conservative: anything that is not statically a literal
// makes the whole attribute Indeterminate. Rules abstain on Indeterminate
// values rather than guess.
package attrs

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/ruby"
)

// State is the outcome class of a resolution.
type State int

const (
	// Absent means the tag does not carry the attribute.
	Absent State = iota

	// Known means every fragment of every occurrence is statically known.
	Known

	// Indeterminate means the value depends on dynamic content.
	Indeterminate
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Known:
		return "known"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// ValueSet is the result of resolving one attribute.
type ValueSet struct {
	// State classifies the result.
	State State

	// Values holds one candidate per attribute occurrence, in document
	// order. Only set when State is Known.
	Values []string
}

// IsAbsent reports whether the attribute is missing.
func (v ValueSet) IsAbsent() bool { return v.State == Absent }

// IsKnown reports whether all candidate values are statically known.
func (v ValueSet) IsKnown() bool { return v.State == Known }

// IsIndeterminate reports whether the value depends on dynamic content.
func (v ValueSet) IsIndeterminate() bool { return v.State == Indeterminate }

// AnyNonBlank reports whether some known candidate has non-whitespace content.
func (v ValueSet) AnyNonBlank() bool {
	for _, value := range v.Values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

// ExprParser parses one embedded-code source string.
//
// Implemented by *ruby.Parser.
type ExprParser interface {
	Parse(ctx context.Context, source string) (*ruby.Expr, error)
}

type memoKey struct {
	node *ast.Node
	name string
}

// Resolver resolves attribute values for one lint pass.
//
// Description:
//
//	Results are memoized per (tag node, attribute name). The memo is only
//	valid for the document the resolver was created for.
//
// Thread Safety: Not safe for concurrent use. Create one Resolver per pass.
type Resolver struct {
	code   ExprParser
	memo   map[memoKey]ValueSet
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given expression parser.
func NewResolver(code ExprParser) *Resolver {
	return &Resolver{
		code:   code,
		memo:   make(map[memoKey]ValueSet),
		logger: slog.Default(),
	}
}

// Resolve returns the possible values of the named attribute on tag.
//
// Description:
//
//	Zero occurrences resolve to Absent. A boolean attribute contributes the
//	empty string. Literal fragments concatenate in document order. An
//	output block whose code parses to a bare literal is substituted; any
//	other code (statements, calls, variables, interpolation, parse
//	failures) makes the whole attribute Indeterminate.
//
// Inputs:
//
//	ctx - Context for the embedded-code parser
//	tag - The tag view
//	name - Attribute name, matched case-insensitively
//
// Outputs:
//
//	ValueSet - Absent, Known with one candidate per occurrence, or Indeterminate
func (r *Resolver) Resolve(ctx context.Context, tag *ast.Tag, name string) ValueSet {
	key := memoKey{node: tag.Node, name: strings.ToLower(name)}
	if vs, ok := r.memo[key]; ok {
		return vs
	}
	vs := r.resolve(ctx, tag, key.name)
	r.memo[key] = vs
	return vs
}

func (r *Resolver) resolve(ctx context.Context, tag *ast.Tag, name string) ValueSet {
	occurrences := tag.Lookup(name)
	if len(occurrences) == 0 {
		return ValueSet{State: Absent}
	}

	values := make([]string, 0, len(occurrences))
	for _, attr := range occurrences {
		var sb strings.Builder
		for _, frag := range attr.Fragments {
			if !frag.IsCode() {
				sb.WriteString(frag.Literal)
				continue
			}
			literal, ok := r.codeLiteral(ctx, frag.Code)
			if !ok {
				r.logger.Debug("attribute value is indeterminate",
					slog.String("tag", tag.Name),
					slog.String("attribute", name),
					slog.Int("offset", frag.Range.Start),
				)
				return ValueSet{State: Indeterminate}
			}
			sb.WriteString(literal)
		}
		values = append(values, sb.String())
	}
	return ValueSet{State: Known, Values: values}
}

func (r *Resolver) codeLiteral(ctx context.Context, code *ast.Node) (string, bool) {
	if !code.IsOutput() || r.code == nil {
		return "", false
	}
	expr, err := r.code.Parse(ctx, code.Code())
	if err != nil {
		return "", false
	}
	return expr.Literal()
}
