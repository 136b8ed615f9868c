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
	"encoding/json"
	"io"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// jsonReport is the top-level JSON document.
type jsonReport struct {
	Files   []*lint.FileResult `json:"files"`
	Summary Summary            `json:"summary"`
}

// WriteJSON renders results as one indented JSON document.
//
// The per-file error string is filled from FileResult.Err so that
// unanalyzable files are visible to consumers.
func WriteJSON(w io.Writer, results []*lint.FileResult) error {
	files := make([]*lint.FileResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil && r.Error == "" {
			cp := *r
			cp.Error = r.Err.Error()
			r = &cp
		}
		files = append(files, r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Files: files, Summary: Summarize(results)})
}
