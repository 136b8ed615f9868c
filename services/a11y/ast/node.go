// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"iter"
	"sort"
	"strings"
)

// =============================================================================
// KIND
// =============================================================================

// Kind identifies the variant of a Node.
type Kind int

const (
	// KindDocument is the root of a parsed template.
	KindDocument Kind = iota

	// KindTag is one opening, closing, or self-closing markup tag.
	KindTag

	// KindText is a run of literal text between tags.
	KindText

	// KindCode is one embedded Ruby block (<% %>, <%= %>, <%== %>, <%- %>).
	KindCode

	// KindComment is an HTML comment or an ERB comment block (<%# %>).
	KindComment
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindTag:
		return "tag"
	case KindText:
		return "text"
	case KindCode:
		return "code"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// =============================================================================
// RANGE
// =============================================================================

// Range is a half-open byte range [Start, End) into the template source.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether o lies entirely inside r.
func (r Range) Contains(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

// Join returns the smallest range covering both r and o.
func (r Range) Join(o Range) Range {
	out := r
	if o.Start < out.Start {
		out.Start = o.Start
	}
	if o.End > out.End {
		out.End = o.End
	}
	return out
}

// =============================================================================
// NODE
// =============================================================================

// Node is one element of a parsed template.
//
// Description:
//
//	Node is a closed variant over document, tag, text, code, and comment.
//	The kind decides which payload accessors are meaningful. Nodes are
//	immutable once adopted by a Document.
//
// Thread Safety: Safe for concurrent reads after NewDocument returns.
type Node struct {
	kind     Kind
	rng      Range
	children []*Node
	src      []byte

	// KindCode
	indicator string
	code      Range

	// KindTag
	name  Range
	attrs []AttributeSpan
}

// AttributeSpan locates one attribute inside a tag.
type AttributeSpan struct {
	// Name is the range of the attribute name.
	Name Range

	// Value is the range of the value without surrounding quotes.
	// Ignored when HasValue is false.
	Value Range

	// HasValue is false for boolean attributes such as `disabled`.
	HasValue bool
}

// NewTextNode creates a text node covering r.
func NewTextNode(r Range) *Node {
	return &Node{kind: KindText, rng: r}
}

// NewCommentNode creates a comment node covering r.
func NewCommentNode(r Range) *Node {
	return &Node{kind: KindComment, rng: r}
}

// NewCodeNode creates an embedded-code node.
//
// Inputs:
//
//	r - Range of the whole block including delimiters
//	indicator - The indicator after "<%" ("", "=", "==", "-")
//	code - Range of the Ruby source inside the delimiters
func NewCodeNode(r Range, indicator string, code Range) *Node {
	return &Node{kind: KindCode, rng: r, indicator: indicator, code: code}
}

// NewTagNode creates a tag node.
//
// Inputs:
//
//	r - Range of the whole tag including angle brackets
//	name - Range of the tag name
//	attrs - Attribute spans in document order
//	code - Embedded-code nodes located inside the tag, in document order
func NewTagNode(r Range, name Range, attrs []AttributeSpan, code []*Node) *Node {
	return &Node{kind: KindTag, rng: r, name: name, attrs: attrs, children: code}
}

// Kind returns the node's variant.
func (n *Node) Kind() Kind {
	return n.kind
}

// Range returns the node's byte range in the template.
func (n *Node) Range() Range {
	return n.rng
}

// Source returns the template text covered by the node.
func (n *Node) Source() string {
	return string(n.src[n.rng.Start:n.rng.End])
}

// Children returns the ordered children of the node. Empty for leaves.
//
// The returned slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Descendants yields every descendant of the given kind, depth-first, pre-order.
//
// The sequence is lazy and can be ranged over any number of times.
func (n *Node) Descendants(kind Kind) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(kind, yield)
	}
}

func (n *Node) walk(kind Kind, yield func(*Node) bool) bool {
	for _, child := range n.children {
		if child.kind == kind && !yield(child) {
			return false
		}
		if !child.walk(kind, yield) {
			return false
		}
	}
	return true
}

// Text returns the literal text carried by the node and its text descendants.
//
// Text nodes return their raw source. Documents return the concatenation of
// their text children. Tags, code, and comments carry no visible text.
// The result is never trimmed.
func (n *Node) Text() string {
	switch n.kind {
	case KindText:
		return n.Source()
	case KindDocument:
		var sb strings.Builder
		for _, child := range n.children {
			if child.kind == KindText {
				sb.WriteString(child.Source())
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// Indicator returns the ERB indicator of a code node ("", "=", "==", "-").
func (n *Node) Indicator() string {
	return n.indicator
}

// Code returns the Ruby source inside a code node's delimiters.
func (n *Node) Code() string {
	if n.kind != KindCode {
		return ""
	}
	return string(n.src[n.code.Start:n.code.End])
}

// IsOutput reports whether the code node writes its value into the template.
func (n *Node) IsOutput() bool {
	return n.kind == KindCode && (n.indicator == "=" || n.indicator == "==")
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is one parsed template: the root node plus the raw source.
//
// Thread Safety: Immutable after creation; safe for concurrent reads.
type Document struct {
	// Path identifies the template (for reporting only).
	Path string

	// Source is the raw template text.
	Source []byte

	// Hash is the hex sha256 of Source, used to detect stale autocorrections.
	Hash string

	// Root is the document node. Its children are the flat sibling list.
	Root *Node

	lineStarts []int
}

// NewDocument adopts a sibling list produced by a tokenizer and validates it.
//
// Description:
//
//	Checks the node taxonomy: ranges inside the source, top-level siblings
//	ordered and non-overlapping, only tags carry children, and tag children
//	are code nodes inside the tag. Nodes are bound to source and become
//	immutable.
//
// Inputs:
//
//	path - Template path for reporting
//	source - Raw template bytes
//	children - Top-level nodes in document order
//
// Outputs:
//
//	*Document - The adopted document
//	error - Wraps ErrMalformedTree when the taxonomy is violated
func NewDocument(path string, source []byte, children []*Node) (*Document, error) {
	root := &Node{kind: KindDocument, rng: Range{0, len(source)}, children: children, src: source}

	prev := 0
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("%w: nil child at index %d", ErrMalformedTree, i)
		}
		if err := validateNode(child, source, root.rng); err != nil {
			return nil, err
		}
		if child.rng.Start < prev {
			return nil, fmt.Errorf("%w: %s node at %d overlaps its previous sibling",
				ErrMalformedTree, child.kind, child.rng.Start)
		}
		prev = child.rng.End
	}

	sum := sha256.Sum256(source)
	doc := &Document{
		Path:       path,
		Source:     source,
		Hash:       hex.EncodeToString(sum[:]),
		Root:       root,
		lineStarts: lineStarts(source),
	}
	return doc, nil
}

func validateNode(n *Node, source []byte, parent Range) error {
	if n.rng.Start < 0 || n.rng.Start > n.rng.End || !parent.Contains(n.rng) {
		return fmt.Errorf("%w: %s node range [%d,%d) outside [%d,%d)",
			ErrMalformedTree, n.kind, n.rng.Start, n.rng.End, parent.Start, parent.End)
	}
	n.src = source

	switch n.kind {
	case KindText, KindComment:
		if len(n.children) > 0 {
			return fmt.Errorf("%w: %s node at %d has children", ErrMalformedTree, n.kind, n.rng.Start)
		}
	case KindCode:
		if len(n.children) > 0 || !n.rng.Contains(n.code) {
			return fmt.Errorf("%w: code node at %d is inconsistent", ErrMalformedTree, n.rng.Start)
		}
	case KindTag:
		if !n.rng.Contains(n.name) {
			return fmt.Errorf("%w: tag name outside tag at %d", ErrMalformedTree, n.rng.Start)
		}
		for _, child := range n.children {
			if child == nil || child.kind != KindCode {
				return fmt.Errorf("%w: tag at %d has a non-code child", ErrMalformedTree, n.rng.Start)
			}
			if err := validateNode(child, source, n.rng); err != nil {
				return err
			}
		}
		for _, attr := range n.attrs {
			if !n.rng.Contains(attr.Name) || (attr.HasValue && !n.rng.Contains(attr.Value)) {
				return fmt.Errorf("%w: attribute outside tag at %d", ErrMalformedTree, n.rng.Start)
			}
		}
	default:
		return fmt.Errorf("%w: unexpected %s node at %d", ErrMalformedTree, n.kind, n.rng.Start)
	}
	return nil
}

// Children returns the top-level sibling list.
func (d *Document) Children() []*Node {
	return d.Root.children
}

// Position converts a byte offset into a 1-indexed line and column.
func (d *Document) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Source) {
		offset = len(d.Source)
	}
	idx := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	}) - 1
	return idx + 1, offset - d.lineStarts[idx] + 1
}

func lineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
