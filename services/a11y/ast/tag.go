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
	"fmt"
	"html"
	"strings"
)

// Fragment is one piece of an attribute value: a literal slice or an
// embedded-code block.
type Fragment struct {
	// Literal is the entity-decoded text. Empty for code fragments.
	Literal string

	// Range locates the fragment in the template.
	Range Range

	// Code is the embedded-code node the fragment came from, or nil.
	Code *Node
}

// IsCode reports whether the fragment originates from embedded code.
func (f Fragment) IsCode() bool {
	return f.Code != nil
}

// Attribute is one attribute occurrence on a tag.
type Attribute struct {
	// Name is the lowercased attribute name.
	Name string

	// Range covers the name through the end of the value.
	Range Range

	// HasValue is false for boolean attributes.
	HasValue bool

	// Fragments are the value pieces in document order.
	Fragments []Fragment
}

// Tag is a structured, read-only view of a tag node.
//
// Description:
//
//	Tags are derived on demand and never mutated; many Tags may be
//	derived from the same node across rule passes.
type Tag struct {
	// Name is the lowercased tag name.
	Name string

	// Attributes are the statically named attributes in document order.
	// Attributes whose name comes from embedded code are omitted.
	Attributes []Attribute

	// Closing is true for </name> tags.
	Closing bool

	// SelfClosing is true for <name ... /> tags.
	SelfClosing bool

	// Range covers the whole tag.
	Range Range

	// Node is the tag node this view was built from.
	Node *Node
}

// TagFrom builds a Tag view from a tag node.
//
// Outputs:
//
//	*Tag - The tag view
//	error - Wraps ErrNotATag when node is not a tag node
func TagFrom(node *Node) (*Tag, error) {
	if node == nil || node.kind != KindTag {
		kind := "nil"
		if node != nil {
			kind = node.kind.String()
		}
		return nil, fmt.Errorf("%w: got %s", ErrNotATag, kind)
	}

	src := node.src
	tag := &Tag{
		Name:        strings.ToLower(string(src[node.name.Start:node.name.End])),
		Closing:     node.rng.Len() > 1 && src[node.rng.Start+1] == '/',
		SelfClosing: strings.HasSuffix(strings.TrimSpace(node.Source()), "/>"),
		Range:       node.rng,
		Node:        node,
		Attributes:  make([]Attribute, 0, len(node.attrs)),
	}

	for _, span := range node.attrs {
		if overlapsCode(node.children, span.Name) {
			continue
		}
		attr := Attribute{
			Name:     strings.ToLower(string(src[span.Name.Start:span.Name.End])),
			Range:    span.Name,
			HasValue: span.HasValue,
		}
		if span.HasValue {
			attr.Range = span.Name.Join(span.Value)
			attr.Fragments = splitFragments(src, span.Value, node.children)
		}
		tag.Attributes = append(tag.Attributes, attr)
	}
	return tag, nil
}

// MustTag is TagFrom for callers that already checked the node kind.
func MustTag(node *Node) *Tag {
	tag, err := TagFrom(node)
	if err != nil {
		panic(err)
	}
	return tag
}

// IsOpeningFor reports whether the tag opens an element named name.
func (t *Tag) IsOpeningFor(name string) bool {
	return !t.Closing && t.Name == name
}

// IsClosingFor reports whether the tag closes an element named name.
func (t *Tag) IsClosingFor(name string) bool {
	return t.Closing && t.Name == name
}

// IsSelfClosing reports whether the tag is written as <name ... />.
func (t *Tag) IsSelfClosing() bool {
	return t.SelfClosing
}

// Lookup returns every occurrence of the named attribute in document order.
func (t *Tag) Lookup(name string) []Attribute {
	name = strings.ToLower(name)
	var out []Attribute
	for _, attr := range t.Attributes {
		if attr.Name == name {
			out = append(out, attr)
		}
	}
	return out
}

// Has reports whether the tag carries the named attribute at all.
func (t *Tag) Has(name string) bool {
	return len(t.Lookup(name)) > 0
}

// Fragments returns the value fragments of the first occurrence of name.
func (t *Tag) Fragments(name string) []Fragment {
	attrs := t.Lookup(name)
	if len(attrs) == 0 {
		return nil
	}
	return attrs[0].Fragments
}

func overlapsCode(code []*Node, r Range) bool {
	for _, c := range code {
		if c.rng.Start < r.End && r.Start < c.rng.End {
			return true
		}
	}
	return false
}

// splitFragments cuts a value range into literal runs and code blocks.
func splitFragments(src []byte, value Range, code []*Node) []Fragment {
	if value.Len() == 0 {
		return []Fragment{{Literal: "", Range: value}}
	}

	var out []Fragment
	pos := value.Start
	for _, c := range code {
		if !value.Contains(c.rng) {
			continue
		}
		if c.rng.Start > pos {
			out = append(out, literalFragment(src, Range{pos, c.rng.Start}))
		}
		out = append(out, Fragment{Range: c.rng, Code: c})
		pos = c.rng.End
	}
	if pos < value.End {
		out = append(out, literalFragment(src, Range{pos, value.End}))
	}
	return out
}

func literalFragment(src []byte, r Range) Fragment {
	return Fragment{Literal: html.UnescapeString(string(src[r.Start:r.End])), Range: r}
}
