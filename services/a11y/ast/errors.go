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
	"errors"
	"fmt"
)

// Sentinel errors returned by the tokenizer and NewDocument.
var (
	// ErrMalformedTree indicates the node tree violates the
	// document/tag/text/code/comment taxonomy.
	//
	// A malformed tree cannot be partially analyzed. Callers report it
	// and skip the file; sibling files are unaffected.
	ErrMalformedTree = errors.New("malformed template tree")

	// ErrNotATag indicates TagFrom was called with a node that is not a tag.
	ErrNotATag = errors.New("node is not a tag")

	// ErrInvalidContent indicates the template is not valid UTF-8.
	ErrInvalidContent = errors.New("template is not valid UTF-8")

	// ErrFileTooLarge indicates the template exceeds the parser's size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError locates a tokenizer failure in a template.
//
// Use errors.As to get at the position and errors.Is with the wrapped
// sentinel (usually ErrMalformedTree) to classify it:
//
//	var perr *ParseError
//	if errors.As(err, &perr) {
//	    slog.Warn("bad template", "file", perr.FilePath, "line", perr.Line)
//	}
type ParseError struct {
	FilePath string

	// Line and Column are 1-indexed. Zero means unknown.
	Line   int
	Column int

	Message string
	Cause   error
}

// Error renders "path:line:col: message", dropping unknown positions.
func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.FilePath, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseErrorWithCause builds a positioned ParseError around cause.
func NewParseErrorWithCause(filePath string, line, column int, message string, cause error) *ParseError {
	return &ParseError{
		FilePath: filePath,
		Line:     line,
		Column:   column,
		Message:  message,
		Cause:    cause,
	}
}

// IsMalformedTree reports whether err is or wraps ErrMalformedTree.
func IsMalformedTree(err error) bool {
	return errors.Is(err, ErrMalformedTree)
}
