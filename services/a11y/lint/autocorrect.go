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
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// =============================================================================
// AUTOCORRECTION
// =============================================================================

// ApplyEdits applies non-overlapping edits to src.
//
// Description:
//
//	Edits are applied in source order. Several zero-width insertions may
//	share an offset; they are applied in the order given. Any other
//	overlap is rejected so that no edit is applied against offsets another
//	edit invalidated.
//
// Inputs:
//
//	src - The analyzed content
//	edits - Edits against src
//
// Outputs:
//
//	[]byte - The corrected content (a new slice)
//	error - ErrEditConflict for overlapping edits, ErrInvalidInput for
//	        ranges outside src
func ApplyEdits(src []byte, edits []Edit) ([]byte, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Range.Start != sorted[j].Range.Start {
			return sorted[i].Range.Start < sorted[j].Range.Start
		}
		return sorted[i].Range.End < sorted[j].Range.End
	})

	var out bytes.Buffer
	out.Grow(len(src))
	pos := 0
	for i, e := range sorted {
		if e.Range.Start < 0 || e.Range.Start > e.Range.End || e.Range.End > len(src) {
			return nil, fmt.Errorf("%w: edit range [%d,%d) outside content of %d bytes",
				ErrInvalidInput, e.Range.Start, e.Range.End, len(src))
		}
		if e.Range.Start < pos {
			return nil, fmt.Errorf("%w: %s edit at %d overlaps %s edit ending at %d",
				ErrEditConflict, e.RuleID, e.Range.Start, sorted[i-1].RuleID, pos)
		}
		out.Write(src[pos:e.Range.Start])
		out.WriteString(e.NewText)
		pos = e.Range.End
	}
	out.Write(src[pos:])
	return out.Bytes(), nil
}

// AutoCorrectContent lints content and applies the offered edits.
//
// Inputs:
//
//	ctx - Context for cancellation
//	path - Template path used for reporting
//	content - The template source
//
// Outputs:
//
//	[]byte - The corrected content
//	*FileResult - The result of linting the original content
//	error - Non-nil if the content could not be analyzed or edits conflict
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) AutoCorrectContent(ctx context.Context, path string, content []byte) ([]byte, *FileResult, error) {
	result, err := r.LintContent(ctx, path, content)
	if err != nil {
		return nil, result, err
	}
	fixed, err := ApplyEdits(content, result.Edits)
	if err != nil {
		return nil, result, NewFileError(path, "autocorrect", err)
	}
	return fixed, result, nil
}

// PendingCorrection re-reads the file behind result and applies its edits
// in memory.
//
// Description:
//
//	The file's current hash must equal the one recorded at analysis time;
//	edit offsets are meaningless against any other content.
//
// Outputs:
//
//	current - The file as it is on disk
//	fixed - current with the edits applied
//	error - A *FileError wrapping ErrStaleContent, ErrEditConflict, or the
//	        read failure
func PendingCorrection(result *FileResult) (current, fixed []byte, err error) {
	if result == nil {
		return nil, nil, fmt.Errorf("%w: result must not be nil", ErrInvalidInput)
	}
	current, err = os.ReadFile(result.Path)
	if err != nil {
		return nil, nil, NewFileError(result.Path, "autocorrect", err)
	}
	if sum := sha256.Sum256(current); hex.EncodeToString(sum[:]) != result.Hash {
		return nil, nil, NewFileError(result.Path, "autocorrect", ErrStaleContent)
	}
	fixed, err = ApplyEdits(current, result.Edits)
	if err != nil {
		return nil, nil, NewFileError(result.Path, "autocorrect", err)
	}
	return current, fixed, nil
}

// AutoCorrect writes the edits of a previous analysis back to its file.
//
// Description:
//
//	Re-reads the file and refuses to write when its hash differs from the
//	one recorded at analysis time. Files without edits are left untouched.
//
// Inputs:
//
//	ctx - Context for cancellation
//	result - The analysis result whose edits to apply
//
// Outputs:
//
//	bool - True if the file was rewritten
//	error - ErrStaleContent if the file changed, ErrEditConflict on overlap
//
// Thread Safety: Safe for concurrent use on different files.
// NOT safe to run on the same file concurrently.
func (r *Runner) AutoCorrect(ctx context.Context, result *FileResult) (bool, error) {
	if ctx == nil || result == nil {
		return false, fmt.Errorf("%w: ctx and result must not be nil", ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if result.Err != nil || len(result.Edits) == 0 {
		return false, nil
	}

	info, err := os.Stat(result.Path)
	if err != nil {
		return false, NewFileError(result.Path, "autocorrect", err)
	}
	current, fixed, err := PendingCorrection(result)
	if err != nil {
		return false, err
	}
	if bytes.Equal(fixed, current) {
		return false, nil
	}
	if err := os.WriteFile(result.Path, fixed, info.Mode().Perm()); err != nil {
		return false, NewFileError(result.Path, "autocorrect", err)
	}

	recordAutoCorrect(ctx, len(result.Edits))
	r.logger.Info("Autocorrected template",
		slog.String("file", result.Path),
		slog.Int("edits", len(result.Edits)),
	)
	return true, nil
}
