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
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
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
		{Level(-1), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"banana", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelDebug,
		LogDir:  dir,
		Service: "glint-test",
		Quiet:   true,
	})
	logger.Info("hello", "key", "value")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	filename := "glint-test_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("file log should be JSON: %v", err)
	}
	if entry["msg"] != "hello" || entry["key"] != "value" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["service"] != "glint-test" {
		t.Errorf("service attribute missing: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "filter-test",
		Quiet:   true,
	})
	logger.Debug("dropped")
	logger.Info("also dropped")
	logger.Warn("kept")
	logger.Close()

	filename := "filter-test_" + time.Now().Format("2006-01-02") + ".log"
	data, _ := os.ReadFile(filepath.Join(dir, filename))
	content := string(data)

	if strings.Contains(content, "dropped") {
		t.Error("below-threshold entries should be filtered")
	}
	if !strings.Contains(content, "kept") {
		t.Error("warn entry should be written")
	}
}

func TestWithAddsAttributes(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{LogDir: dir, Service: "with-test", Quiet: true})
	child := logger.With("component", "ingest")
	child.Info("tagged")
	logger.Close()

	filename := "with-test_" + time.Now().Format("2006-01-02") + ".log"
	data, _ := os.ReadFile(filepath.Join(dir, filename))
	if !strings.Contains(string(data), `"component":"ingest"`) {
		t.Errorf("child attribute missing from %s", data)
	}
}

func TestCloseWithoutFileIsNil(t *testing.T) {
	logger := New(Config{Service: "no-file"})
	if err := logger.Close(); err != nil {
		t.Errorf("Close() without file = %v", err)
	}
}

func TestDefaultIsUsable(t *testing.T) {
	logger := Default()
	defer logger.Close()
	if logger.Slog() == nil {
		t.Fatal("Default() should carry a usable slog.Logger")
	}
}

// =============================================================================
// multiHandler Tests
// =============================================================================

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	}}
	logger := slog.New(h)
	logger.Info("both")

	if !strings.Contains(a.String(), "both") {
		t.Error("text handler missed the record")
	}
	if !strings.Contains(b.String(), "both") {
		t.Error("json handler missed the record")
	}
}

func TestMultiHandlerRespectsPerHandlerLevels(t *testing.T) {
	var quiet, chatty bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&chatty, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("enabled when any handler is enabled")
	}

	slog.New(h).Info("info only")
	if quiet.Len() != 0 {
		t.Error("error-level handler should skip info records")
	}
	if chatty.Len() == 0 {
		t.Error("debug-level handler should receive info records")
	}
}

// =============================================================================
// Path Tests
// =============================================================================

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir in test environment")
	}

	if got := expandPath("~/logs"); got != filepath.Join(home, "logs") {
		t.Errorf("expandPath(~/logs) = %q", got)
	}
	if got := expandPath("/var/log/glint"); got != "/var/log/glint" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
	if got := expandPath("relative/dir"); got != "relative/dir" {
		t.Errorf("relative path should pass through, got %q", got)
	}
}
