// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/pkg/logging"
	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
	logDir     string

	logger *logging.Logger
}

func newRootCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "a11ylint",
		Short: "Static accessibility linter for ERB templates",
		Long: `a11ylint checks ERB templates for accessibility defects without
rendering them. Attribute values that depend on Ruby code are never guessed:
when a value cannot be known statically, the check abstains.

Counted rules can be acknowledged in a template with a directive such as
  <%# erblint:counter GitHub::Accessibility::AvoidGenericLinkTextCounter 2 %>
and --autocorrect keeps those counts in sync.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(opts.logLevel)
			if err != nil {
				return failf("%w", err)
			}
			opts.logger = logging.New(logging.Config{
				Level:   level,
				JSON:    opts.logJSON,
				LogDir:  opts.logDir,
				Service: "a11ylint",
				Output:  cmd.ErrOrStderr(),
			})
			slog.SetDefault(opts.logger.Slog())
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "",
		"Path to the configuration file (default "+lint.DefaultConfigFile+" if present)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&opts.logDir, "log-dir", "", "Also write JSON logs to this directory")

	cmd.AddCommand(
		newLintCmd(opts),
		newWatchCmd(opts),
		newRulesCmd(opts),
	)
	return cmd
}

// closeLogger releases the log file, if any. Safe to call more than once.
func (o *rootOptions) closeLogger() {
	if o.logger == nil {
		return
	}
	if err := o.logger.Close(); err != nil {
		slog.Warn("closing log file", slog.String("error", err.Error()))
	}
	o.logger = nil
}

// loadConfig reads and validates the configuration, including rule ids.
func (o *rootOptions) loadConfig() (*lint.Config, error) {
	cfg, err := lint.LoadConfig(o.configPath)
	if err != nil {
		return nil, failf("%w", err)
	}
	if err := cfg.CheckRules(rules.IDs()); err != nil {
		return nil, failf("%w", err)
	}
	return cfg, nil
}

// newRunner builds a runner over every registered rule.
func (o *rootOptions) newRunner(cfg *lint.Config, workers int) *lint.Runner {
	opts := []lint.Option{
		lint.WithRules(rules.All()...),
		lint.WithConfig(cfg),
		lint.WithLogger(slog.Default()),
	}
	if workers > 0 {
		opts = append(opts, lint.WithWorkers(workers))
	}
	return lint.NewRunner(opts...)
}

// ruleDescriptions maps every registered rule id to its description.
func ruleDescriptions() map[string]string {
	out := make(map[string]string)
	for _, r := range rules.All() {
		out[r.ID()] = r.Description()
	}
	return out
}
