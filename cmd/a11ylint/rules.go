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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/a11ylint/services/a11y/lint"
	"github.com/AleutianAI/a11ylint/services/a11y/rules"
)

// ruleInfo is one row of the rules listing.
type ruleInfo struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Counter        string `json:"counter"`
	Enabled        bool   `json:"enabled"`
	CounterEnabled bool   `json:"counter_enabled"`
	Severity       string `json:"severity"`
}

func newRulesCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the available rules and their effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			infos := describeRules(cfg)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			return writeRulesTable(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func describeRules(cfg *lint.Config) []ruleInfo {
	policy := cfg.Policy()
	all := rules.All()
	infos := make([]ruleInfo, 0, len(all))
	for _, r := range all {
		rc := cfg.RuleConfig(r.ID())
		severity := policy.GetSeverity(r.ID()).String()
		if policy.ShouldIgnore(r.ID()) {
			severity = "ignore"
		}
		infos = append(infos, ruleInfo{
			ID:             r.ID(),
			Description:    r.Description(),
			Counter:        r.Counter().String(),
			Enabled:        rc.Enabled,
			CounterEnabled: rc.CounterEnabled || r.Counter() == lint.CounterAlways,
			Severity:       severity,
		})
	}
	return infos
}

func writeRulesTable(w io.Writer, infos []ruleInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tENABLED\tCOUNTER\tSEVERITY\tDESCRIPTION")
	for _, info := range infos {
		counter := "off"
		if info.CounterEnabled {
			counter = "on"
		}
		if info.Counter == lint.CounterAlways.String() {
			counter = "always"
		}
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", info.ID, info.Enabled, counter, info.Severity, info.Description)
	}
	return tw.Flush()
}
