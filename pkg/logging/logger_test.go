// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{" warn ", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("verbose"); !errors.Is(err, ErrUnknownLevel) {
		t.Errorf("Expected ErrUnknownLevel, got %v", err)
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	if LevelWarn.toSlogLevel() != slog.LevelWarn {
		t.Error("LevelWarn should map to slog.LevelWarn")
	}
	if Level(99).toSlogLevel() != slog.LevelInfo {
		t.Error("Unknown levels should map to slog.LevelInfo")
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "file", "a.html.erb")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info should be filtered at LevelWarn")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "file=a.html.erb") {
		t.Errorf("Expected warn entry, got: %s", out)
	}
}

func TestLogger_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{JSON: true, Service: "a11ylint", Output: &buf})
	logger.Slog().Info("linted", slog.Int("files", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "a11ylint" {
		t.Errorf("Expected service attribute, got %v", entry["service"])
	}
	if entry["files"] != float64(3) {
		t.Errorf("Expected files=3, got %v", entry["files"])
	}
}

func TestLogger_ZeroConfigLogsInfo(t *testing.T) {
	var zero Level
	if zero != LevelInfo {
		t.Fatalf("zero Level = %v, want INFO", zero)
	}

	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	logger.Debug("hidden")
	logger.Info("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("Debug should be filtered by a zero Config")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("Info should pass a zero Config")
	}
}

func TestLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Quiet: true, Output: &buf})
	logger.Error("nobody hears this")

	if buf.Len() != 0 {
		t.Errorf("Quiet logger wrote to console: %q", buf.String())
	}
}

func TestLogger_LogDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	logger := New(Config{LogDir: dir, Service: "test", Output: &console})
	logger.Debug("below level")
	logger.Info("to both")

	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "test_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("Expected one log file, got %v (%v)", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "\"msg\":\"to both\"") {
		t.Errorf("Expected JSON entry in file, got: %s", data)
	}
	if strings.Contains(string(data), "below level") {
		t.Error("Debug entry should be filtered from file")
	}
	if !strings.Contains(console.String(), "to both") {
		t.Error("Expected entry on console too")
	}
}

func TestLogger_LogDirUnusable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var console bytes.Buffer
	logger := New(Config{LogDir: file, Output: &console})
	defer logger.Close()

	if !strings.Contains(console.String(), "file logging disabled") {
		t.Errorf("Expected warning about file logging, got: %q", console.String())
	}
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestMultiHandler(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}

	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug enabled by first handler")
	}

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("k", "v")}))
	logger.Info("info entry")

	if !strings.Contains(debugBuf.String(), "info entry") || !strings.Contains(debugBuf.String(), "k=v") {
		t.Errorf("Expected entry in debug handler: %q", debugBuf.String())
	}
	if warnBuf.Len() != 0 {
		t.Errorf("Warn handler should skip info: %q", warnBuf.String())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("expandPath(~/logs) = %q", got)
	}
	if got := expandPath("/var/log"); got != "/var/log" {
		t.Errorf("expandPath(/var/log) = %q", got)
	}
}
