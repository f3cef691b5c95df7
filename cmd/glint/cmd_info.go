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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/glint/pkg/storage"
)

// Size thresholds for nudging the user toward 'glint clean'.
const (
	sizeWarnBytes  = 100 << 20
	sizeAlertBytes = 500 << 20
)

func runInfo(cmd *cobra.Command, args []string) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}

	fmt.Println(styled(headingStyle, "Project database"))
	fmt.Println("  path:", path)

	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Println("  (not created yet; run 'glint serve' to start collecting)")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("  size:", formatBytes(stat.Size()))

	switch {
	case stat.Size() >= sizeAlertBytes:
		fmt.Println(styled(errStyle, "  database is over 500 MB; run 'glint clean' to reclaim space"))
	case stat.Size() >= sizeWarnBytes:
		fmt.Println(styled(warnStyle, "  database is over 100 MB; consider 'glint clean'"))
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	spans, err := store.CountSpans()
	if err != nil {
		return err
	}
	logs, err := store.CountLogs()
	if err != nil {
		return err
	}
	metrics, err := store.CountMetrics()
	if err != nil {
		return err
	}
	fmt.Printf("  spans: %d, logs: %d, metric points: %d\n", spans, logs, metrics)

	listOtherDatabases(path)
	return nil
}

// listOtherDatabases shows the rest of the data directory so stale
// per-project databases are easy to spot.
func listOtherDatabases(current string) {
	dataDir, err := storage.DataDir()
	if err != nil {
		return
	}
	paths, err := filepath.Glob(filepath.Join(dataDir, "*.db"))
	if err != nil {
		return
	}

	var others []string
	for _, p := range paths {
		if p != current {
			others = append(others, p)
		}
	}
	if len(others) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(styled(headingStyle, "Other project databases"))
	for _, p := range others {
		line := "  " + p
		if stat, err := os.Stat(p); err == nil {
			line += "  (" + formatBytes(stat.Size()) + ")"
		}
		fmt.Println(styled(faintStyle, line))
	}
}
