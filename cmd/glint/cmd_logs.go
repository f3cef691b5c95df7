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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/glint/pkg/model"
)

func runLogs(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	var logs []model.Log
	if levelFlag != "" {
		logs, err = store.ListLogsByLevel(serviceFlag, levelFlag, limitFlag)
	} else {
		logs, err = store.ListLogs(serviceFlag, limitFlag)
	}
	if err != nil {
		return fmt.Errorf("list logs: %w", err)
	}

	if len(logs) == 0 {
		fmt.Println("No logs found.")
		return nil
	}

	for i := range logs {
		l := &logs[i]

		service := "<unknown>"
		if l.ServiceName != nil {
			service = *l.ServiceName
		}
		line := fmt.Sprintf("%s  %-5s %-16s %s",
			l.Time().Format("15:04:05.000"), l.Severity.Class(), service, l.Body)

		switch {
		case l.IsError():
			line = styled(errStyle, line)
		case l.Severity.Class() == "WARN":
			line = styled(warnStyle, line)
		}
		fmt.Println(line)

		if l.IsCorrelated() {
			fmt.Println(styled(faintStyle,
				fmt.Sprintf("               trace=%s span=%s", *l.TraceID, *l.SpanID)))
		}
	}
	return nil
}
