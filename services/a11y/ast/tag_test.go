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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagFrom_RejectsNonTags(t *testing.T) {
	doc := parseERB(t, "<p>hi</p>")

	_, err := TagFrom(doc.Children()[1])
	assert.ErrorIs(t, err, ErrNotATag)

	_, err = TagFrom(nil)
	assert.ErrorIs(t, err, ErrNotATag)

	assert.Panics(t, func() { MustTag(doc.Children()[1]) })
}

func TestTagFrom_NameIsLowercased(t *testing.T) {
	doc := parseERB(t, "<IFRAME SRC='x'></IFRAME>")

	tag := MustTag(doc.Children()[0])
	assert.Equal(t, "iframe", tag.Name)
	assert.True(t, tag.Has("src"))
	assert.True(t, tag.Has("SRC"))
}

func TestTagFrom_SelfClosing(t *testing.T) {
	doc := parseERB(t, `<img src="a.png" alt="" />`)

	tag := MustTag(doc.Children()[0])
	assert.True(t, tag.IsSelfClosing())
	assert.False(t, tag.Closing)

	frags := tag.Fragments("alt")
	require.Len(t, frags, 1)
	assert.Equal(t, "", frags[0].Literal)
	assert.False(t, frags[0].IsCode())
}

func TestTagFrom_BooleanAttribute(t *testing.T) {
	doc := parseERB(t, "<input disabled>")

	tag := MustTag(doc.Children()[0])
	attrs := tag.Lookup("disabled")
	require.Len(t, attrs, 1)
	assert.False(t, attrs[0].HasValue)
	assert.Empty(t, attrs[0].Fragments)
}

func TestTagFrom_DecodesEntities(t *testing.T) {
	doc := parseERB(t, `<a aria-label="Learn &amp; more">x</a>`)

	frags := MustTag(doc.Children()[0]).Fragments("aria-label")
	require.Len(t, frags, 1)
	assert.Equal(t, "Learn & more", frags[0].Literal)
}

func TestTagFrom_DuplicateAttributes(t *testing.T) {
	doc := parseERB(t, `<a aria-label="one" aria-label="two">x</a>`)

	attrs := MustTag(doc.Children()[0]).Lookup("aria-label")
	require.Len(t, attrs, 2)
	assert.Equal(t, "one", attrs[0].Fragments[0].Literal)
	assert.Equal(t, "two", attrs[1].Fragments[0].Literal)
}

func TestTag_MissingAttribute(t *testing.T) {
	doc := parseERB(t, "<a>x</a>")

	tag := MustTag(doc.Children()[0])
	assert.False(t, tag.Has("href"))
	assert.Nil(t, tag.Fragments("href"))
}
