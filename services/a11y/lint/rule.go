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
	"log/slog"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
	"github.com/AleutianAI/a11ylint/services/a11y/attrs"
	"github.com/AleutianAI/a11ylint/services/a11y/ruby"
)

// =============================================================================
// RULE CONTRACT
// =============================================================================

// CounterMode declares whether a rule participates in the counter protocol.
type CounterMode int

const (
	// CounterNone means raw findings are always surfaced unchanged.
	CounterNone CounterMode = iota

	// CounterOptional means the protocol applies when counter_enabled is set.
	CounterOptional

	// CounterAlways means the protocol always applies.
	CounterAlways
)

// String returns the string representation of the mode.
func (m CounterMode) String() string {
	switch m {
	case CounterNone:
		return "none"
	case CounterOptional:
		return "optional"
	case CounterAlways:
		return "always"
	default:
		return "unknown"
	}
}

// Rule is one accessibility check.
//
// Description:
//
//	A rule is a pure function of the parsed document, the raw template
//	text, and its configuration. It keeps no state across files and may
//	run concurrently with other rules over the same document.
type Rule interface {
	// ID returns the fully qualified rule identifier, e.g.
	// "GitHub::Accessibility::IframeHasTitle".
	ID() string

	// Description returns a one-line summary for listings.
	Description() string

	// Counter returns the rule's counter protocol support.
	Counter() CounterMode

	// Check returns the raw findings for one document.
	Check(pass *Pass) []Finding
}

// RuleConfig is the configuration one rule sees.
type RuleConfig struct {
	// Enabled controls whether the rule runs at all.
	Enabled bool

	// CounterEnabled turns on the counter protocol for CounterOptional rules.
	CounterEnabled bool
}

// counterActive reports whether the counter protocol wraps the rule.
func counterActive(rule Rule, cfg RuleConfig) bool {
	switch rule.Counter() {
	case CounterAlways:
		return true
	case CounterOptional:
		return cfg.CounterEnabled
	default:
		return false
	}
}

// =============================================================================
// PASS
// =============================================================================

// Pass is the state of one rule running over one document.
//
// Thread Safety: Not safe for concurrent use. Each rule gets its own Pass.
type Pass struct {
	// Document is the parsed template.
	Document *ast.Document

	// Config is the rule's configuration.
	Config RuleConfig

	// Code parses embedded Ruby on demand.
	Code attrs.ExprParser

	// Resolver resolves attribute values with per-pass memoization.
	Resolver *attrs.Resolver

	ctx    context.Context
	ruleID string
	logger *slog.Logger
}

// NewPass creates a pass for one rule over one document.
func NewPass(ctx context.Context, doc *ast.Document, rule Rule, cfg RuleConfig, code attrs.ExprParser) *Pass {
	return &Pass{
		Document: doc,
		Config:   cfg,
		Code:     code,
		Resolver: attrs.NewResolver(code),
		ctx:      ctx,
		ruleID:   rule.ID(),
		logger:   slog.Default().With(slog.String("rule", rule.ID()), slog.String("file", doc.Path)),
	}
}

// Context returns the pass context.
func (p *Pass) Context() context.Context {
	return p.ctx
}

// Resolve returns the possible values of an attribute on tag.
func (p *Pass) Resolve(tag *ast.Tag, name string) attrs.ValueSet {
	return p.Resolver.Resolve(p.ctx, tag, name)
}

// ParseCode parses the Ruby inside a code node.
//
// An unparsable block is logged and reported as not ok. Callers skip the
// node and carry on with the rest of the document.
func (p *Pass) ParseCode(node *ast.Node) (*ruby.Expr, bool) {
	if p.Code == nil || node == nil || node.Kind() != ast.KindCode {
		return nil, false
	}
	expr, err := p.Code.Parse(p.ctx, node.Code())
	if err != nil {
		line, _ := p.Document.Position(node.Range().Start)
		p.logger.Debug("skipping unparsable embedded code",
			slog.Int("line", line),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	return expr, true
}

// Finding creates a finding for the pass's rule at r.
func (p *Pass) Finding(r ast.Range, message string) Finding {
	return newFinding(p.Document, p.ruleID, r, message)
}

func newFinding(doc *ast.Document, ruleID string, r ast.Range, message string) Finding {
	line, col := doc.Position(r.Start)
	endLine, endCol := doc.Position(r.End)
	return Finding{
		File:      doc.Path,
		RuleID:    ruleID,
		Message:   message,
		Range:     r,
		Line:      line,
		Column:    col,
		EndLine:   endLine,
		EndColumn: endCol,
	}
}
