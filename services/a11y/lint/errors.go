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
	"errors"
	"fmt"

	"github.com/AleutianAI/a11ylint/services/a11y/ast"
)

// Sentinel errors for the lint package.
var (
	// ErrInvalidInput indicates invalid input to a lint function.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedTree indicates a template could not be represented as a
	// node tree. The file is skipped; other files are unaffected.
	ErrMalformedTree = ast.ErrMalformedTree

	// ErrEditConflict indicates two autocorrection edits overlap.
	ErrEditConflict = errors.New("conflicting autocorrection edits")

	// ErrStaleContent indicates the file changed between analysis and
	// autocorrection. Edits are never applied against stale offsets.
	ErrStaleContent = errors.New("file changed since analysis")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownRule indicates a rule id that is not registered.
	ErrUnknownRule = errors.New("unknown rule")
)

// FileError wraps a failure that affected one file only.
//
// Thread Safety: Immutable after creation.
type FileError struct {
	// Path is the file that failed.
	Path string

	// Op is the stage that failed (e.g., "read", "parse", "autocorrect").
	Op string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(path, op string, err error) *FileError {
	return &FileError{Path: path, Op: op, Err: err}
}
