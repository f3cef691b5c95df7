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
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/glint/pkg/storage"
)

// Config holds the optional settings read from
// ~/.config/glint/config.yaml. Flags given on the command line always
// win over file values.
type Config struct {
	// Port is the query API and UI port.
	Port int `yaml:"port"`

	// GRPCPort is the OTLP/gRPC receiver port.
	GRPCPort int `yaml:"grpc_port"`

	// HTTPPort is the OTLP/HTTP receiver port.
	HTTPPort int `yaml:"http_port"`

	// DBPath overrides per-project database resolution.
	DBPath string `yaml:"db_path"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`

	// LogDir enables file logging when set.
	LogDir string `yaml:"log_dir"`
}

// loadConfig reads the config file if one exists. A missing file is not
// an error; a malformed one is.
func loadConfig() (Config, error) {
	var cfg Config

	dir, err := storage.ConfigDir()
	if err != nil {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
