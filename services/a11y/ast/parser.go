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
	"bytes"
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// Parser turns template source into a Document.
//
// Description:
//
//	Parser implementations produce the flat tag/text/code/comment sibling
//	list that every rule walks. The interface mirrors the language parsers
//	so a registry can select one by extension.
type Parser interface {
	// Parse builds a Document from raw template bytes.
	//
	// Returns an error wrapping ErrMalformedTree when the template cannot
	// be represented, ErrInvalidContent for non-UTF-8 input, and
	// ErrFileTooLarge when the size limit is exceeded.
	Parse(ctx context.Context, content []byte, filePath string) (*Document, error)

	// Language returns the canonical name of the template language.
	Language() string

	// Extensions returns the file extensions this parser handles.
	Extensions() []string
}

// ERBParser parses ERB templates.
//
// Description:
//
//	ERBParser scans the ERB blocks first, masks them with same-length
//	filler, and parses the masked markup with tree-sitter-html. Byte
//	offsets therefore map one-to-one onto the original template.
//
// Thread Safety:
//
//	ERBParser is safe for concurrent use. Each Parse call creates its own
//	tree-sitter parser instance.
type ERBParser struct {
	options ERBParserOptions
}

// ERBParserOptions configures ERBParser behavior.
type ERBParserOptions struct {
	// MaxFileSize is the maximum file size in bytes to parse.
	// Default: 5MB
	MaxFileSize int
}

// DefaultERBParserOptions returns the default options.
func DefaultERBParserOptions() ERBParserOptions {
	return ERBParserOptions{
		MaxFileSize: 5 * 1024 * 1024,
	}
}

// ERBParserOption is a functional option for configuring ERBParser.
type ERBParserOption func(*ERBParserOptions)

// WithMaxFileSize sets the maximum file size for parsing.
func WithMaxFileSize(size int) ERBParserOption {
	return func(o *ERBParserOptions) {
		o.MaxFileSize = size
	}
}

// NewERBParser creates a new ERBParser with the given options.
func NewERBParser(opts ...ERBParserOption) *ERBParser {
	options := DefaultERBParserOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &ERBParser{options: options}
}

// Language returns the language name for this parser.
func (p *ERBParser) Language() string {
	return "erb"
}

// Extensions returns the file extensions this parser handles.
func (p *ERBParser) Extensions() []string {
	return []string{".erb"}
}

// Parse builds a Document from ERB source.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked before and after tree-sitter runs.
//	content - Raw template bytes. Must be valid UTF-8.
//	filePath - Template path, used for error messages only.
//
// Outputs:
//
//	*Document - The flat sibling list over the template. Never nil on success.
//	error - Non-nil for unterminated ERB blocks, invalid input, or cancellation.
//
// Thread Safety: Safe for concurrent use.
func (p *ERBParser) Parse(ctx context.Context, content []byte, filePath string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("erb parse canceled before start: %w", err)
	}
	if len(content) > p.options.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}

	blocks, err := scanERB(content, filePath)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(html.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, maskERB(content, blocks))
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("erb parse canceled after tree-sitter: %w", err)
	}

	var spans []markupSpan
	collectMarkup(tree.RootNode(), &spans)
	spans = normalizeSpans(spans, blocks)

	return NewDocument(filePath, content, buildNodes(content, spans, blocks))
}

// =============================================================================
// ERB SCANNING
// =============================================================================

type erbBlock struct {
	rng       Range
	code      Range
	indicator string
}

func (b erbBlock) isComment() bool {
	return b.indicator == "#"
}

func (b erbBlock) node() *Node {
	if b.isComment() {
		return NewCommentNode(b.rng)
	}
	return NewCodeNode(b.rng, b.indicator, b.code)
}

var (
	erbOpen  = []byte("<%")
	erbClose = []byte("%>")
)

// scanERB finds every <% %> block. "<%%" is a literal and is skipped.
func scanERB(src []byte, filePath string) ([]erbBlock, error) {
	var blocks []erbBlock
	i := 0
	for i < len(src) {
		idx := bytes.Index(src[i:], erbOpen)
		if idx < 0 {
			break
		}
		start := i + idx
		pos := start + len(erbOpen)
		if pos < len(src) && src[pos] == '%' {
			i = pos + 1
			continue
		}

		indicator := ""
		switch {
		case bytes.HasPrefix(src[pos:], []byte("==")):
			indicator = "=="
		case pos < len(src) && (src[pos] == '=' || src[pos] == '-' || src[pos] == '#'):
			indicator = string(src[pos])
		}

		codeStart := pos + len(indicator)
		end := bytes.Index(src[codeStart:], erbClose)
		if end < 0 {
			line, col := offsetPosition(src, start)
			return nil, NewParseErrorWithCause(filePath, line, col, "unterminated ERB block", ErrMalformedTree)
		}
		codeEnd := codeStart + end
		blockEnd := codeEnd + len(erbClose)
		if indicator != "#" && codeEnd > codeStart && src[codeEnd-1] == '-' {
			codeEnd--
		}

		blocks = append(blocks, erbBlock{
			rng:       Range{start, blockEnd},
			code:      Range{codeStart, codeEnd},
			indicator: indicator,
		})
		i = blockEnd
	}
	return blocks, nil
}

// maskERB replaces ERB blocks with filler so the HTML grammar never sees
// Ruby. Newlines survive so tree-sitter rows stay meaningful.
func maskERB(src []byte, blocks []erbBlock) []byte {
	masked := bytes.Clone(src)
	for _, b := range blocks {
		for j := b.rng.Start; j < b.rng.End; j++ {
			if masked[j] != '\n' {
				masked[j] = 'x'
			}
		}
	}
	return masked
}

func offsetPosition(src []byte, offset int) (line, col int) {
	line = 1 + bytes.Count(src[:offset], []byte{'\n'})
	col = offset - bytes.LastIndexByte(src[:offset], '\n')
	return line, col
}

// =============================================================================
// MARKUP FLATTENING
// =============================================================================

type markupSpan struct {
	kind  Kind
	rng   Range
	name  Range
	attrs []AttributeSpan
}

func nodeRange(n *sitter.Node) Range {
	return Range{int(n.StartByte()), int(n.EndByte())}
}

func collectMarkup(n *sitter.Node, out *[]markupSpan) {
	if n == nil {
		return
	}
	switch n.Type() {
	case htmlNodeStartTag, htmlNodeEndTag, htmlNodeSelfClosing, htmlNodeErroneousEndTag:
		if span, ok := tagSpan(n); ok {
			*out = append(*out, span)
		}
		return
	case htmlNodeComment:
		*out = append(*out, markupSpan{kind: KindComment, rng: nodeRange(n)})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectMarkup(n.Child(i), out)
	}
}

func tagSpan(n *sitter.Node) (markupSpan, bool) {
	if n.IsMissing() || n.EndByte() <= n.StartByte() {
		return markupSpan{}, false
	}
	span := markupSpan{kind: KindTag, rng: nodeRange(n), name: Range{-1, -1}}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case htmlNodeTagName, htmlNodeErroneousTagName:
			span.name = nodeRange(child)
		case htmlNodeAttribute:
			if attr, ok := attributeSpan(child); ok {
				span.attrs = append(span.attrs, attr)
			}
		}
	}
	return span, span.name.Start >= 0
}

func attributeSpan(n *sitter.Node) (AttributeSpan, bool) {
	attr := AttributeSpan{Name: Range{-1, -1}}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case htmlNodeAttributeName:
			attr.Name = nodeRange(child)
		case htmlNodeAttributeValue:
			attr.Value = nodeRange(child)
			attr.HasValue = true
		case htmlNodeQuotedAttributeValue:
			// Empty quotes have no attribute_value child.
			start := int(child.StartByte()) + 1
			attr.Value = Range{start, start}
			attr.HasValue = true
			for j := 0; j < int(child.ChildCount()); j++ {
				if gc := child.Child(j); gc.Type() == htmlNodeAttributeValue {
					attr.Value = nodeRange(gc)
				}
			}
		}
	}
	return attr, attr.Name.Start >= 0
}

// normalizeSpans orders spans, drops overlaps, and widens any span whose
// end falls inside an ERB block.
func normalizeSpans(spans []markupSpan, blocks []erbBlock) []markupSpan {
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].rng.Start < spans[j].rng.Start
	})

	out := spans[:0]
	prevEnd := 0
	for _, s := range spans {
		if s.rng.Start < prevEnd || insideBlock(blocks, s.rng.Start) {
			continue
		}
		for _, b := range blocks {
			if b.rng.Start < s.rng.End && s.rng.End < b.rng.End {
				s.rng.End = b.rng.End
			}
		}
		out = append(out, s)
		prevEnd = s.rng.End
	}
	return out
}

func insideBlock(blocks []erbBlock, offset int) bool {
	for _, b := range blocks {
		if offset > b.rng.Start && offset < b.rng.End {
			return true
		}
	}
	return false
}

// buildNodes interleaves markup spans with the text and ERB blocks between them.
func buildNodes(src []byte, spans []markupSpan, blocks []erbBlock) []*Node {
	nodes := make([]*Node, 0, 2*len(spans)+len(blocks)+1)
	pos, bi := 0, 0

	emitGap := func(end int) {
		for pos < end {
			if bi < len(blocks) && blocks[bi].rng.Start < end {
				b := blocks[bi]
				if b.rng.Start > pos {
					nodes = append(nodes, NewTextNode(Range{pos, b.rng.Start}))
				}
				nodes = append(nodes, b.node())
				pos = b.rng.End
				bi++
				continue
			}
			nodes = append(nodes, NewTextNode(Range{pos, end}))
			pos = end
		}
	}

	for _, s := range spans {
		emitGap(s.rng.Start)

		var code []*Node
		for bi < len(blocks) && blocks[bi].rng.Start < s.rng.End {
			if s.kind == KindTag && !blocks[bi].isComment() {
				code = append(code, blocks[bi].node())
			}
			bi++
		}

		if s.kind == KindTag {
			nodes = append(nodes, NewTagNode(s.rng, s.name, s.attrs, code))
		} else {
			nodes = append(nodes, NewCommentNode(s.rng))
		}
		pos = s.rng.End
	}
	emitGap(len(src))

	return nodes
}
