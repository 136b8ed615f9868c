// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ruby parses the Ruby source inside embedded-code blocks.
//
// Only the shapes the accessibility rules need are exposed: bare literals,
// the first method call of an expression, its positional arguments, and its
// keyword/hash pairs (one level of nesting).
package ruby

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsruby "github.com/smacker/go-tree-sitter/ruby"
)

// Ruby tree-sitter node types.
const (
	nodeProgram      = "program"
	nodeCall         = "call"
	nodeMethodCall   = "method_call"
	nodeArgumentList = "argument_list"
	nodePair         = "pair"
	nodeHash         = "hash"

	nodeString          = "string"
	nodeStringContent   = "string_content"
	nodeEscapeSequence  = "escape_sequence"
	nodeInterpolation   = "interpolation"
	nodeInteger         = "integer"
	nodeSimpleSymbol    = "simple_symbol"
	nodeHashKeySymbol   = "hash_key_symbol"
	nodeDelimitedSymbol = "delimited_symbol"
	nodeParenthesized   = "parenthesized_statements"
)

// fragmentKeywords open a statement that only makes sense as the tail of a
// construct started in another ERB block, e.g. <% else %> or <% end %>.
// tree-sitter recovers some of these without an ERROR node.
var fragmentKeywords = map[string]bool{
	"end": true, "else": true, "elsif": true, "when": true, "in": true,
	"then": true, "rescue": true, "ensure": true, "do": true,
}

// leadingWord returns the identifier that starts source, if any.
func leadingWord(source string) string {
	trimmed := strings.TrimLeft(source, " \t\r\n")
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return !(r == '_' || r == '?' || r == '!' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})
	if end < 0 {
		return trimmed
	}
	return trimmed[:end]
}

// Parser parses single Ruby expressions.
//
// Thread Safety: Safe for concurrent use. Each Parse call creates its own
// tree-sitter parser.
type Parser struct{}

// NewParser returns a Ruby expression parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses one embedded-code source string.
//
// Inputs:
//
//	ctx - Context for cancellation
//	source - Ruby source without the ERB delimiters
//
// Outputs:
//
//	*Expr - The parsed expression. Never nil on success.
//	error - Wraps ErrUnparsable when the source has a syntax error, is not
//	        exactly one statement, or starts with a keyword that continues a
//	        construct from another block (end, else, when, ...).
func (p *Parser) Parse(ctx context.Context, source string) (*Expr, error) {
	if word := leadingWord(source); fragmentKeywords[word] {
		return nil, fmt.Errorf("%w: %q continues a construct from another block", ErrUnparsable, word)
	}
	src := []byte(source)

	parser := sitter.NewParser()
	parser.SetLanguage(tsruby.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, fmt.Errorf("%w: syntax error in %q", ErrUnparsable, strings.TrimSpace(source))
	}
	if root.Type() != nodeProgram || root.NamedChildCount() != 1 {
		return nil, fmt.Errorf("%w: expected one expression, got %d", ErrUnparsable, root.NamedChildCount())
	}

	return &Expr{node: root.NamedChild(0), src: src}, nil
}

// =============================================================================
// EXPRESSIONS
// =============================================================================

// Expr is one parsed Ruby expression.
type Expr struct {
	node *sitter.Node
	src  []byte
}

// Type returns the tree-sitter node type of the expression.
func (e *Expr) Type() string {
	return e.node.Type()
}

// Source returns the expression's source text.
func (e *Expr) Source() string {
	return e.node.Content(e.src)
}

// Literal returns the value of a bare string or integer literal.
//
// Strings with interpolation are not literals: their runtime value cannot be
// recovered from source.
func (e *Expr) Literal() (string, bool) {
	node := e.node
	for node.Type() == nodeParenthesized && node.NamedChildCount() == 1 {
		node = node.NamedChild(0)
	}
	switch node.Type() {
	case nodeString:
		return stringLiteral(node, e.src)
	case nodeInteger:
		return node.Content(e.src), true
	}
	return "", false
}

// FirstCall returns the first method call in the expression, pre-order, or nil.
func (e *Expr) FirstCall() *Call {
	call := findCall(e.node)
	if call == nil {
		return nil
	}
	return newCall(call, e.src)
}

func findCall(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if t := n.Type(); t == nodeCall || t == nodeMethodCall {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := findCall(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// =============================================================================
// CALLS
// =============================================================================

// Call is a method invocation.
type Call struct {
	// Method is the called method's name, e.g. "link_to".
	Method string

	// Args are the positional arguments in order.
	Args []*Arg

	// Pairs are the keyword/hash arguments in order, from bare trailing
	// pairs and hash literals alike.
	Pairs []*Pair
}

// Arg is one positional call argument.
type Arg struct {
	node *sitter.Node
	src  []byte
}

// Pair is one key/value entry of a keyword argument or hash literal.
type Pair struct {
	// Key is the normalized key: no leading colon, no quotes.
	Key string

	// Value is the entry's value.
	Value *Arg
}

func newCall(n *sitter.Node, src []byte) *Call {
	call := &Call{}
	if method := n.ChildByFieldName("method"); method != nil {
		call.Method = method.Content(src)
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.Type() != nodeArgumentList {
		return call
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		switch child.Type() {
		case nodePair:
			if pair := newPair(child, src); pair != nil {
				call.Pairs = append(call.Pairs, pair)
			}
		case nodeHash:
			call.Pairs = append(call.Pairs, hashPairs(child, src)...)
		default:
			call.Args = append(call.Args, &Arg{node: child, src: src})
		}
	}
	return call
}

func newPair(n *sitter.Node, src []byte) *Pair {
	key := n.ChildByFieldName("key")
	value := n.ChildByFieldName("value")
	if key == nil || value == nil {
		return nil
	}
	return &Pair{Key: keyName(key, src), Value: &Arg{node: value, src: src}}
}

func hashPairs(n *sitter.Node, src []byte) []*Pair {
	var pairs []*Pair
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == nodePair {
			if pair := newPair(child, src); pair != nil {
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

// keyName normalizes label:, :sym, "str":, :"str" and "str" keys.
func keyName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case nodeString, nodeDelimitedSymbol:
		if s, ok := stringLiteral(n, src); ok {
			return s
		}
	}
	key := n.Content(src)
	key = strings.TrimPrefix(key, ":")
	key = strings.TrimSuffix(key, ":")
	return strings.Trim(key, "\"'")
}

// Literal returns the argument's value when it is a plain string literal.
func (a *Arg) Literal() (string, bool) {
	if a.node.Type() != nodeString {
		return "", false
	}
	return stringLiteral(a.node, a.src)
}

// Source returns the argument's source text.
func (a *Arg) Source() string {
	return a.node.Content(a.src)
}

// Pairs returns the entries of a hash-literal argument. Nil otherwise.
func (a *Arg) Pairs() []*Pair {
	if a.node.Type() != nodeHash {
		return nil
	}
	return hashPairs(a.node, a.src)
}

// stringLiteral concatenates a string's content, refusing interpolation.
func stringLiteral(n *sitter.Node, src []byte) (string, bool) {
	var sb strings.Builder
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case nodeStringContent:
			sb.WriteString(child.Content(src))
		case nodeEscapeSequence:
			sb.WriteString(unescape(child.Content(src)))
		default:
			// interpolation, or anything else we cannot evaluate statically
			return "", false
		}
	}
	return sb.String(), true
}

func unescape(seq string) string {
	if s, err := strconv.Unquote(`"` + seq + `"`); err == nil {
		return s
	}
	return strings.TrimPrefix(seq, "\\")
}
