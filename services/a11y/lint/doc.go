// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint runs accessibility rules over parsed ERB templates.
//
// The package owns the shared machinery every rule depends on: the Rule
// contract, the per-pass state rules read from, the counter protocol that
// lets a project carry a bounded number of known findings per rule and file,
// autocorrection of counter directives, and the severity policy.
//
// # Architecture
//
//	template → ast.ERBParser → Document → Rule.Check → counter protocol → policy → FileResult
//
// Each rule is a pure function of one immutable Document and its
// configuration. Files are analyzed in parallel; rules never share state.
//
// # Counter Directives
//
// A directive is an ERB comment naming a rule and the number of findings the
// file is allowed to carry:
//
//	<%# erblint:counter GitHub::Accessibility::AvoidGenericLinkTextCounter 2 %>
//
// If the rule finds at most that many defects, none are reported. If it
// finds more, one finding reports the excess. Autocorrection rewrites the
// directive to the actual count, inserts one when missing, and removes it
// once the count reaches zero.
//
// # Severity Mapping
//
//	| Config severity | Our Severity | Action            |
//	|-----------------|--------------|-------------------|
//	| error (default) | Error        | Fail the run      |
//	| warning         | Warning      | Report, pass      |
//	| info            | Info         | Report only       |
//	| ignore          |              | Drop the finding  |
//
// # Usage
//
//	runner := lint.NewRunner(lint.WithRules(rules.All()...), lint.WithConfig(cfg))
//
//	results, err := runner.LintDirectory(ctx, "app/views")
//	for _, res := range results {
//	    if res.Err != nil {
//	        // template could not be parsed; other files are unaffected
//	    }
//	    if !res.Valid {
//	        // error-severity findings
//	    }
//	}
//
// # Thread Safety
//
// Runner is safe for concurrent use. Pass is owned by a single rule run.
package lint
