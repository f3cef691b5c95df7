// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest counters by signal (traces, logs, metrics). Rejected counts
// records the store refused, mirroring the partial-success numbers sent
// back to exporters.
var (
	recordsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glint_collector_records_received_total",
		Help: "Telemetry records received by the collector.",
	}, []string{"signal"})

	recordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glint_collector_records_rejected_total",
		Help: "Telemetry records rejected during insert.",
	}, []string{"signal"})
)
