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
	"database/sql"
	"fmt"
)

// schemaStatements is applied in order on every open. Every statement is
// idempotent so reopening an existing database is a no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS spans (
		span_id TEXT NOT NULL,
		trace_id TEXT NOT NULL,
		parent_span_id TEXT,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		start_time_unix_nano INTEGER NOT NULL,
		end_time_unix_nano INTEGER NOT NULL,
		attributes TEXT,
		status TEXT,
		service_name TEXT,
		PRIMARY KEY (span_id, trace_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_spans_trace_id ON spans(trace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_spans_service_name ON spans(service_name)`,
	`CREATE INDEX IF NOT EXISTS idx_spans_start_time ON spans(start_time_unix_nano)`,

	`CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		time_unix_nano INTEGER NOT NULL,
		severity_level TEXT NOT NULL,
		severity_text TEXT,
		body TEXT NOT NULL,
		attributes TEXT,
		trace_id TEXT,
		span_id TEXT,
		service_name TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_time ON logs(time_unix_nano)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_trace_id ON logs(trace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_service_name ON logs(service_name)`,
	`CREATE INDEX IF NOT EXISTS idx_logs_severity ON logs(severity_level)`,

	`CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT,
		unit TEXT,
		metric_type TEXT NOT NULL,
		temporality TEXT NOT NULL,
		time_unix_nano INTEGER NOT NULL,
		start_time_unix_nano INTEGER,
		value REAL NOT NULL,
		attributes TEXT,
		service_name TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_name ON metrics(name)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_time ON metrics(time_unix_nano)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_service_name ON metrics(service_name)`,
}

func initSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
