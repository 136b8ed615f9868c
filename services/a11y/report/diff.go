// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"
)

// diffContext is the number of unchanged lines kept around a change.
const diffContext = 3

const noNewlineMarker = "\\ No newline at end of file\n"

// Diff returns a unified diff turning orig into updated, or nil when the
// two are identical.
//
// Description:
//
//	Line matching comes from difflib's SequenceMatcher; each group of
//	opcodes with diffContext lines of context becomes one hunk, so
//	corrections far apart in a file print as separate hunks.
//
// Inputs:
//
//	path - File path used in the ---/+++ headers
//	orig - Content before autocorrection
//	updated - Content after autocorrection
//
// Outputs:
//
//	[]byte - The diff text, or nil
//	error - Non-nil if the diff could not be printed
func Diff(path string, orig, updated []byte) ([]byte, error) {
	if bytes.Equal(orig, updated) {
		return nil, nil
	}
	a, b := splitLines(orig), splitLines(updated)

	matcher := difflib.NewMatcher(a, b)
	var hunks []*diff.Hunk
	for _, group := range matcher.GetGroupedOpCodes(diffContext) {
		hunks = append(hunks, hunkFor(group, a, b))
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    hunks,
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return nil, fmt.Errorf("printing diff for %s: %w", path, err)
	}
	return out, nil
}

// hunkFor renders one opcode group.
func hunkFor(group []difflib.OpCode, a, b []string) *diff.Hunk {
	first, last := group[0], group[len(group)-1]

	var body bytes.Buffer
	for _, op := range group {
		switch op.Tag {
		case 'e':
			writeLines(&body, ' ', a[op.I1:op.I2])
		case 'd':
			writeLines(&body, '-', a[op.I1:op.I2])
		case 'i':
			writeLines(&body, '+', b[op.J1:op.J2])
		case 'r':
			writeLines(&body, '-', a[op.I1:op.I2])
			writeLines(&body, '+', b[op.J1:op.J2])
		}
	}

	origLines, newLines := last.I2-first.I1, last.J2-first.J1
	return &diff.Hunk{
		OrigStartLine: hunkStart(first.I1, origLines),
		OrigLines:     int32(origLines),
		NewStartLine:  hunkStart(first.J1, newLines),
		NewLines:      int32(newLines),
		Body:          body.Bytes(),
	}
}

// hunkStart is 1-indexed, except that an empty side points at the line
// before the change.
func hunkStart(start, count int) int32 {
	if count == 0 {
		return int32(start)
	}
	return int32(start + 1)
}

// splitLines keeps line terminators so a missing final newline shows up as
// a changed line.
func splitLines(src []byte) []string {
	lines := strings.SplitAfter(string(src), "\n")
	if last := len(lines) - 1; last >= 0 && lines[last] == "" {
		lines = lines[:last]
	}
	return lines
}

func writeLines(buf *bytes.Buffer, prefix byte, lines []string) {
	for _, line := range lines {
		buf.WriteByte(prefix)
		buf.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			buf.WriteString("\n" + noNewlineMarker)
		}
	}
}
