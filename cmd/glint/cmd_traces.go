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
	"time"

	"github.com/spf13/cobra"
)

// slowThresholdMS is what --slow means: anything at or under this is
// considered fast enough to hide.
const slowThresholdMS = 100.0

func runTraces(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	traces, err := store.ListTraces(serviceFlag, limitFlag)
	if err != nil {
		return fmt.Errorf("list traces: %w", err)
	}

	if slowOnly {
		filtered := traces[:0]
		for _, t := range traces {
			if t.DurationMS() > slowThresholdMS {
				filtered = append(filtered, t)
			}
		}
		traces = filtered
	}

	if len(traces) == 0 {
		fmt.Println("No traces found.")
		fmt.Println(styled(faintStyle, "Run 'glint serve' and point an OTLP exporter at localhost:4317."))
		return nil
	}

	fmt.Println(styled(headingStyle,
		fmt.Sprintf("%-13s %-20s %10s %6s  %s", "START", "SERVICE", "DURATION", "SPANS", "TRACE ID")))
	for i := range traces {
		t := &traces[i]

		start := "-"
		if nanos, ok := t.StartTimeNanos(); ok {
			start = time.Unix(0, nanos).Format("15:04:05.000")
		}
		service := "<unknown>"
		if t.ServiceName != nil {
			service = *t.ServiceName
		}

		line := fmt.Sprintf("%-13s %-20s %10s %6d  %s",
			start, service, formatMS(t.DurationMS()), t.SpanCount(), t.TraceID)
		if t.HasErrors() {
			line = styled(errStyle, line+"  ✗")
		}
		fmt.Println(line)
	}
	return nil
}
