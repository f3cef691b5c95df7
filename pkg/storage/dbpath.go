// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// projectMarkers are the files that identify a project root, checked in
// order at each directory level.
var projectMarkers = []string{
	".git",
	"Cargo.toml",
	"package.json",
	"go.mod",
	"pom.xml",
	"build.gradle",
	"pyproject.toml",
	"composer.json",
}

// ConfigDir returns the glint configuration directory, creating it if
// needed: $XDG_CONFIG_HOME/glint or ~/.config/glint on Unix,
// %APPDATA%\glint on Windows.
func ConfigDir() (string, error) {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = "."
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home := os.Getenv("HOME")
			if home == "" {
				home = "."
			}
			base = filepath.Join(home, ".config")
		}
	}
	dir := filepath.Join(base, "glint")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// DataDir returns the glint data directory for databases, creating it if
// needed: $XDG_DATA_HOME/glint or ~/.local/share/glint on Unix,
// %LOCALAPPDATA%\glint on Windows.
func DataDir() (string, error) {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = os.Getenv("APPDATA")
		}
		if base == "" {
			base = "."
		}
	} else {
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home := os.Getenv("HOME")
			if home == "" {
				home = "."
			}
			base = filepath.Join(home, ".local", "share")
		}
	}
	dir := filepath.Join(base, "glint")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

// DetectProjectRoot walks up from the working directory looking for a
// project marker. It returns the working directory itself when no marker
// is found anywhere up the tree.
func DetectProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	dir := cwd
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// projectPathToDBName converts a project path into a safe database file
// name. Separators become underscores; a name over 100 characters
// collapses to a stable hash so the filename stays bounded.
func projectPathToDBName(projectPath string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")
	safe := strings.ToLower(strings.Trim(replacer.Replace(projectPath), "_"))

	if len(safe) > 100 {
		return fmt.Sprintf("project_%x", xxhash.Sum64String(projectPath))
	}
	if safe == "" {
		return "default"
	}
	return safe
}

// ProjectDBPath returns the database path for the current project:
// <data dir>/<project name>.db.
func ProjectDBPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	name := projectPathToDBName(DetectProjectRoot())
	return filepath.Join(dataDir, name+".db"), nil
}

// DefaultDBPath returns <data dir>/default.db.
func DefaultDBPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "default.db"), nil
}
