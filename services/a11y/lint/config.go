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
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the project root.
const DefaultConfigFile = ".a11ylint.yml"

// configValidate is the validator instance for configuration structs.
var configValidate = validator.New()

// Config is the project configuration.
//
// Example .a11ylint.yml:
//
//	linters:
//	  GitHub::Accessibility::NoTitleAttribute:
//	    counter_enabled: true
//	  GitHub::Accessibility::NoPositiveTabIndex:
//	    enabled: false
//	  GitHub::Accessibility::LinkHasHref:
//	    severity: warning
//	workers: 8
//	exclude:
//	  - "vendor/*"
//	fail_level: error
type Config struct {
	// Linters holds per-rule settings keyed by fully qualified rule id.
	Linters map[string]LinterSettings `yaml:"linters" validate:"dive,keys,required,endkeys"`

	// Workers bounds the number of files analyzed in parallel.
	// Zero means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`

	// Exclude are doublestar glob patterns matched against slash-separated
	// paths relative to the lint root. See Excluded.
	Exclude []string `yaml:"exclude" validate:"dive,required"`

	// FailLevel is the lowest severity that makes a run fail.
	FailLevel string `yaml:"fail_level" validate:"omitempty,oneof=error warning info"`
}

// LinterSettings configures one rule.
type LinterSettings struct {
	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled"`

	// CounterEnabled turns on the counter protocol for rules where it is optional.
	CounterEnabled bool `yaml:"counter_enabled"`

	// Severity overrides the policy severity for this rule.
	Severity string `yaml:"severity" validate:"omitempty,oneof=error warning info ignore"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Linters:   make(map[string]LinterSettings),
		FailLevel: "error",
	}
}

// ParseConfig parses and validates YAML configuration.
//
// Outputs:
//
//	*Config - The configuration with defaults filled in
//	error - Wraps ErrInvalidConfig on malformed YAML or failed validation
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Linters == nil {
		cfg.Linters = make(map[string]LinterSettings)
	}
	if cfg.FailLevel == "" {
		cfg.FailLevel = "error"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads configuration from path.
//
// Description:
//
//	An empty path looks for DefaultConfigFile in the working directory.
//	A missing default file yields DefaultConfig; a missing explicit file
//	is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration's struct constraints.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: exclude pattern %q is not a valid glob", ErrInvalidConfig, pattern)
		}
	}
	return nil
}

// CheckRules reports configured rule ids that are not in known.
func (c *Config) CheckRules(known []string) error {
	set := make(map[string]bool, len(known))
	for _, id := range known {
		set[id] = true
	}
	var unknown []string
	for id := range c.Linters {
		if !set[id] {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRule, strings.Join(unknown, ", "))
	}
	return nil
}

// RuleConfig returns the configuration one rule sees.
func (c *Config) RuleConfig(ruleID string) RuleConfig {
	settings := c.Linters[ruleID]
	return RuleConfig{
		Enabled:        settings.Enabled == nil || *settings.Enabled,
		CounterEnabled: settings.CounterEnabled,
	}
}

// Policy builds the severity policy: the default policy plus per-rule overrides.
func (c *Config) Policy() *RulePolicy {
	policy := DefaultPolicy()
	for id, settings := range c.Linters {
		switch settings.Severity {
		case "error":
			policy.BlockOn = append(policy.BlockOn, id)
		case "warning":
			policy.WarnOn = append(policy.WarnOn, id)
		case "info":
			policy.InfoOn = append(policy.InfoOn, id)
		case "ignore":
			policy.Ignore = append(policy.Ignore, id)
		}
	}
	return policy
}

// WorkerCount returns the effective parallelism.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Excluded reports whether a relative path matches an exclude pattern.
//
// Patterns are doublestar globs ("app/**/legacy/*.erb"). A pattern without
// a slash also matches the base name, and a pattern matching a directory
// excludes everything below it.
func (c *Config) Excluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	base := path.Base(relPath)
	for _, pattern := range c.Exclude {
		if !strings.Contains(pattern, "/") && globMatch(pattern, base) {
			return true
		}
		for dir := relPath; dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
			if globMatch(pattern, dir) {
				return true
			}
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
