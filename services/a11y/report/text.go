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
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
)

// Palette, shared with the rest of the CLI.
var (
	colorError   = lipgloss.Color("#E74C3C")
	colorWarning = lipgloss.Color("#F4D03F")
	colorInfo    = lipgloss.Color("#20B9B4")
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorMuted   = lipgloss.Color("#2C4A54")
)

type textStyles struct {
	path     lipgloss.Style
	location lipgloss.Style
	rule     lipgloss.Style
	error    lipgloss.Style
	warning  lipgloss.Style
	info     lipgloss.Style
	success  lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	if !color {
		plain := lipgloss.NewStyle()
		return textStyles{plain, plain, plain, plain, plain, plain, plain}
	}
	return textStyles{
		path:     lipgloss.NewStyle().Bold(true).Underline(true),
		location: lipgloss.NewStyle().Foreground(colorMuted),
		rule:     lipgloss.NewStyle().Foreground(colorMuted),
		error:    lipgloss.NewStyle().Bold(true).Foreground(colorError),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		info:     lipgloss.NewStyle().Foreground(colorInfo),
		success:  lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	}
}

func (s textStyles) severity(sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return s.error
	case lint.SeverityWarning:
		return s.warning
	default:
		return s.info
	}
}

// WriteText renders results as a grouped, human-readable listing.
//
// Output shape:
//
//	app/views/show.html.erb
//	  3:5  error  Avoid using generic link text ...  GitHub::Accessibility::AvoidGenericLinkTextCounter
//
//	1 file, 1 error, 0 warnings
func WriteText(w io.Writer, results []*lint.FileResult, opts Options) error {
	styles := newTextStyles(opts.Color)
	var sb strings.Builder

	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(&sb, "%s\n  %s  %s\n\n", styles.path.Render(r.Path), styles.error.Render("fatal"), r.Err)
			continue
		}
		findings := r.AllFindings()
		if len(findings) == 0 {
			continue
		}
		sb.WriteString(styles.path.Render(r.Path))
		sb.WriteByte('\n')
		for _, f := range findings {
			loc := fmt.Sprintf("%d:%d", f.Line, f.Column)
			fmt.Fprintf(&sb, "  %s  %s  %s  %s\n",
				styles.location.Render(fmt.Sprintf("%-7s", loc)),
				styles.severity(f.Severity).Render(fmt.Sprintf("%-7s", f.Severity)),
				f.Message,
				styles.rule.Render(f.RuleID),
			)
		}
		sb.WriteByte('\n')
	}

	sum := Summarize(results)
	line := fmt.Sprintf("%s, %s, %s",
		plural(sum.Files, "file"), plural(sum.Errors, "error"), plural(sum.Warnings, "warning"))
	if sum.Infos > 0 {
		line += ", " + plural(sum.Infos, "info")
	}
	if sum.Suppressed > 0 {
		line += fmt.Sprintf(" (%d suppressed)", sum.Suppressed)
	}
	if sum.Failed > 0 {
		line += fmt.Sprintf(", %d could not be analyzed", sum.Failed)
	}

	switch {
	case sum.Errors > 0 || sum.Failed > 0:
		sb.WriteString(styles.error.Render(line))
	case sum.Warnings > 0:
		sb.WriteString(styles.warning.Render(line))
	default:
		sb.WriteString(styles.success.Render(line))
	}
	sb.WriteByte('\n')

	if sum.Fixable > 0 {
		fmt.Fprintf(&sb, "%s\n", styles.location.Render(
			plural(sum.Fixable, "correction")+" available with --autocorrect"))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
