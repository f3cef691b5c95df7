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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/glint/pkg/storage"
)

func runClean(cmd *cobra.Command, args []string) error {
	if cleanAll {
		return cleanAllDatabases()
	}

	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Nothing to clean:", path)
		return nil
	}
	if !confirm(fmt.Sprintf("Delete %s?", path)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := removeDatabase(path); err != nil {
		return err
	}
	fmt.Println("Deleted", path)
	return nil
}

func cleanAllDatabases() error {
	dataDir, err := storage.DataDir()
	if err != nil {
		return err
	}
	paths, err := filepath.Glob(filepath.Join(dataDir, "*.db"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("Nothing to clean in", dataDir)
		return nil
	}
	if !confirm(fmt.Sprintf("Delete all %d glint databases in %s?", len(paths), dataDir)) {
		fmt.Println("Aborted.")
		return nil
	}

	for _, path := range paths {
		if err := removeDatabase(path); err != nil {
			return err
		}
		fmt.Println("Deleted", path)
	}
	return nil
}

// removeDatabase removes the database file and its WAL sidecars.
func removeDatabase(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", path+suffix, err)
		}
	}
	return nil
}

func confirm(prompt string) bool {
	if cleanConfirm {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
