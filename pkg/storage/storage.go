// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package storage persists flattened telemetry in an embedded SQLite
// database, one database file per project. A Storage handle wraps a
// single connection; writes are serialized with a mutex and every handle
// sharing the connection observes all committed writes.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AleutianAI/glint/pkg/model"
)

// ErrNotFound reports a lookup that matched no rows. Callers test with
// errors.Is.
var ErrNotFound = errors.New("not found")

// fileDSNOptions keeps writers from tripping over readers and bounds how
// long a locked database stalls a write.
const fileDSNOptions = "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-64000"

// DefaultTraceLimit applies when a list query passes a non-positive limit.
const DefaultTraceLimit = 100

// Storage is a handle on one project database.
type Storage struct {
	mu   *sync.Mutex
	db   *sql.DB
	path string
}

// Open opens the database for the current project, routing through the
// project-marker walk. The schema is created when missing.
func Open() (*Storage, error) {
	path, err := ProjectDBPath()
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the database at an explicit path, creating parent
// directories and the schema when missing.
func OpenPath(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return open(path, path+fileDSNOptions)
}

// OpenInMemory opens a private in-memory database. Used by tests.
func OpenInMemory() (*Storage, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// One connection: the mutex below is the whole concurrency story.
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{mu: &sync.Mutex{}, db: db, path: path}, nil
}

// Path returns the database file path, or ":memory:".
func (s *Storage) Path() string { return s.path }

// Close releases the underlying connection.
func (s *Storage) Close() error { return s.db.Close() }

// =============================================================================
// Writes
// =============================================================================

const insertSpanSQL = `INSERT INTO spans
	(span_id, trace_id, parent_span_id, name, kind,
	 start_time_unix_nano, end_time_unix_nano, attributes, status, service_name)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertLogSQL = `INSERT INTO logs
	(time_unix_nano, severity_level, severity_text, body, attributes,
	 trace_id, span_id, service_name)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const insertMetricSQL = `INSERT INTO metrics
	(name, description, unit, metric_type, temporality,
	 time_unix_nano, start_time_unix_nano, value, attributes, service_name)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertSpan stores one span. A span with the same (span_id, trace_id)
// as an existing row is rejected by the primary key.
func (s *Storage) InsertSpan(span *model.Span) error {
	attrs, status, err := encodeSpanJSON(span)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(insertSpanSQL,
		span.SpanID, span.TraceID, span.ParentSpanID, span.Name,
		span.Kind.String(), span.StartTimeUnixNano, span.EndTimeUnixNano,
		attrs, status, span.ServiceName)
	if err != nil {
		return fmt.Errorf("insert span %s: %w", span.SpanID, err)
	}
	return nil
}

// InsertSpans stores a batch inside one transaction. The returned slice
// has one entry per input span; a failed row reports its error without
// aborting the rest of the batch.
func (s *Storage) InsertSpans(spans []model.Span) []error {
	errs := make([]error, len(spans))
	s.batch(insertSpanSQL, len(spans), errs, func(stmt *sql.Stmt, i int) error {
		span := &spans[i]
		attrs, status, err := encodeSpanJSON(span)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(
			span.SpanID, span.TraceID, span.ParentSpanID, span.Name,
			span.Kind.String(), span.StartTimeUnixNano, span.EndTimeUnixNano,
			attrs, status, span.ServiceName)
		if err != nil {
			return fmt.Errorf("insert span %s: %w", span.SpanID, err)
		}
		return nil
	})
	return errs
}

// InsertLog stores one log record.
func (s *Storage) InsertLog(l *model.Log) error {
	attrs, err := encodeAttrsJSON(l.Attributes)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(insertLogSQL,
		l.TimeUnixNano, l.Severity.String(), l.SeverityText, l.Body,
		attrs, l.TraceID, l.SpanID, l.ServiceName)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// InsertLogs stores a batch inside one transaction, one error slot per
// record.
func (s *Storage) InsertLogs(logs []model.Log) []error {
	errs := make([]error, len(logs))
	s.batch(insertLogSQL, len(logs), errs, func(stmt *sql.Stmt, i int) error {
		l := &logs[i]
		attrs, err := encodeAttrsJSON(l.Attributes)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(
			l.TimeUnixNano, l.Severity.String(), l.SeverityText, l.Body,
			attrs, l.TraceID, l.SpanID, l.ServiceName)
		if err != nil {
			return fmt.Errorf("insert log: %w", err)
		}
		return nil
	})
	return errs
}

// InsertMetric stores one metric as one row per data point.
func (s *Storage) InsertMetric(m *model.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range m.DataPoints {
		if err := s.insertMetricPoint(s.db, m, &m.DataPoints[i]); err != nil {
			return err
		}
	}
	return nil
}

// InsertMetrics stores a batch of metrics, one error slot per metric. A
// metric fails as a whole when any of its points fails.
func (s *Storage) InsertMetrics(metrics []model.Metric) []error {
	errs := make([]error, len(metrics))
	s.batch(insertMetricSQL, len(metrics), errs, func(stmt *sql.Stmt, i int) error {
		m := &metrics[i]
		for j := range m.DataPoints {
			p := &m.DataPoints[j]
			attrs, err := encodeAttrsJSON(p.Attributes)
			if err != nil {
				return err
			}
			_, err = stmt.Exec(
				m.Name, m.Description, m.Unit, m.Type.String(),
				m.Temporality.String(), p.TimeUnixNano, p.StartTimeUnixNano,
				p.Value, attrs, m.ServiceName)
			if err != nil {
				return fmt.Errorf("insert metric %s: %w", m.Name, err)
			}
		}
		return nil
	})
	return errs
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Storage) insertMetricPoint(db execer, m *model.Metric, p *model.MetricDataPoint) error {
	attrs, err := encodeAttrsJSON(p.Attributes)
	if err != nil {
		return err
	}
	_, err = db.Exec(insertMetricSQL,
		m.Name, m.Description, m.Unit, m.Type.String(), m.Temporality.String(),
		p.TimeUnixNano, p.StartTimeUnixNano, p.Value, attrs, m.ServiceName)
	if err != nil {
		return fmt.Errorf("insert metric %s: %w", m.Name, err)
	}
	return nil
}

// batch runs n inserts through one prepared statement in one transaction.
// Row errors land in their slot; setup errors fill every slot.
func (s *Storage) batch(query string, n int, errs []error, row func(*sql.Stmt, int) error) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fail := func(err error) {
		for i := range errs {
			if errs[i] == nil {
				errs[i] = err
			}
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		fail(fmt.Errorf("begin batch: %w", err))
		return
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		fail(fmt.Errorf("prepare batch: %w", err))
		return
	}
	for i := 0; i < n; i++ {
		errs[i] = row(stmt, i)
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		fail(fmt.Errorf("commit batch: %w", err))
	}
}

func encodeSpanJSON(span *model.Span) (string, string, error) {
	attrs, err := encodeAttrsJSON(span.Attributes)
	if err != nil {
		return "", "", err
	}
	status, err := json.Marshal(span.Status)
	if err != nil {
		return "", "", fmt.Errorf("encode status: %w", err)
	}
	return attrs, string(status), nil
}

func encodeAttrsJSON(attrs model.Attributes) (string, error) {
	if attrs == nil {
		attrs = model.Attributes{}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode attributes: %w", err)
	}
	return string(data), nil
}

// =============================================================================
// Reads
// =============================================================================

const selectSpanColumns = `span_id, trace_id, parent_span_id, name, kind,
	start_time_unix_nano, end_time_unix_nano, attributes, status, service_name`

// GetTraceByID assembles the trace for an id, spans ordered by start
// time. Returns ErrNotFound when no spans exist for the id.
func (s *Storage) GetTraceByID(traceID string) (model.Trace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT `+selectSpanColumns+` FROM spans
		 WHERE trace_id = ? ORDER BY start_time_unix_nano ASC`, traceID)
	if err != nil {
		return model.Trace{}, fmt.Errorf("query trace %s: %w", traceID, err)
	}
	defer rows.Close()

	var spans []model.Span
	for rows.Next() {
		span, err := scanSpan(rows)
		if err != nil {
			return model.Trace{}, err
		}
		spans = append(spans, span)
	}
	if err := rows.Err(); err != nil {
		return model.Trace{}, fmt.Errorf("scan trace %s: %w", traceID, err)
	}
	if len(spans) == 0 {
		return model.Trace{}, fmt.Errorf("trace %s: %w", traceID, ErrNotFound)
	}
	return model.NewTrace(traceID, spans), nil
}

// ListTraces returns up to limit traces, newest first by span start time.
// An empty service matches everything. Trace ids whose hydration fails
// are skipped rather than failing the whole listing.
func (s *Storage) ListTraces(service string, limit int) ([]model.Trace, error) {
	if limit <= 0 {
		limit = DefaultTraceLimit
	}
	ids, err := s.listTraceIDs(service, limit)
	if err != nil {
		return nil, err
	}
	traces := make([]model.Trace, 0, len(ids))
	for _, id := range ids {
		trace, err := s.GetTraceByID(id)
		if err != nil {
			continue
		}
		traces = append(traces, trace)
	}
	return traces, nil
}

func (s *Storage) listTraceIDs(service string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT trace_id FROM spans`
	args := []any{}
	if service != "" {
		query += ` WHERE service_name = ?`
		args = append(args, service)
	}
	query += ` GROUP BY trace_id ORDER BY MAX(start_time_unix_nano) DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan trace id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListLogs returns up to limit logs, newest first. An empty service
// matches everything.
func (s *Storage) ListLogs(service string, limit int) ([]model.Log, error) {
	return s.listLogs(service, nil, limit)
}

// ListLogsByLevel restricts the listing to one severity class (e.g.
// "ERROR"). The class expands to its levels inside the SQL filter, so
// the limit counts matching rows and newer non-matching records cannot
// shorten the page. An unknown class matches nothing.
func (s *Storage) ListLogsByLevel(service, levelClass string, limit int) ([]model.Log, error) {
	levels := model.LevelsInClass(levelClass)
	if len(levels) == 0 {
		return []model.Log{}, nil
	}
	return s.listLogs(service, levels, limit)
}

func (s *Storage) listLogs(service string, levels []model.SeverityLevel, limit int) ([]model.Log, error) {
	if limit <= 0 {
		limit = DefaultTraceLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT time_unix_nano, severity_level, severity_text, body,
		attributes, trace_id, span_id, service_name FROM logs`
	args := []any{}
	var where []string
	if service != "" {
		where = append(where, `service_name = ?`)
		args = append(args, service)
	}
	if len(levels) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(levels)), ",")
		where = append(where, `severity_level IN (`+placeholders+`)`)
		for _, level := range levels {
			args = append(args, level.String())
		}
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY time_unix_nano DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	var logs []model.Log
	for rows.Next() {
		var (
			l        model.Log
			level    string
			sevText  sql.NullString
			attrs    sql.NullString
			traceID  sql.NullString
			spanID   sql.NullString
			svcName  sql.NullString
		)
		if err := rows.Scan(&l.TimeUnixNano, &level, &sevText, &l.Body,
			&attrs, &traceID, &spanID, &svcName); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		l.Severity = model.ParseSeverityLevel(level)
		l.SeverityText = nullableString(sevText)
		l.TraceID = nullableString(traceID)
		l.SpanID = nullableString(spanID)
		l.ServiceName = nullableString(svcName)
		if l.Attributes, err = decodeAttrsJSON(attrs.String); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CountSpans returns the number of stored spans.
func (s *Storage) CountSpans() (int64, error) { return s.countRows("spans") }

// CountLogs returns the number of stored log records.
func (s *Storage) CountLogs() (int64, error) { return s.countRows("logs") }

// CountMetrics returns the number of stored metric data points.
func (s *Storage) CountMetrics() (int64, error) { return s.countRows("metrics") }

func (s *Storage) countRows(table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// table is one of three fixed names, never user input.
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func scanSpan(rows *sql.Rows) (model.Span, error) {
	var (
		span    model.Span
		parent  sql.NullString
		kind    string
		attrs   sql.NullString
		status  sql.NullString
		svcName sql.NullString
	)
	err := rows.Scan(&span.SpanID, &span.TraceID, &parent, &span.Name, &kind,
		&span.StartTimeUnixNano, &span.EndTimeUnixNano, &attrs, &status, &svcName)
	if err != nil {
		return model.Span{}, fmt.Errorf("scan span: %w", err)
	}
	span.ParentSpanID = nullableString(parent)
	span.Kind = model.ParseSpanKind(kind)
	span.ServiceName = nullableString(svcName)
	if span.Attributes, err = decodeAttrsJSON(attrs.String); err != nil {
		return model.Span{}, err
	}
	if status.Valid && status.String != "" {
		if err := json.Unmarshal([]byte(status.String), &span.Status); err != nil {
			return model.Span{}, fmt.Errorf("decode status: %w", err)
		}
	}
	return span, nil
}

func decodeAttrsJSON(raw string) (model.Attributes, error) {
	if raw == "" {
		return model.Attributes{}, nil
	}
	var attrs model.Attributes
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("decode attributes: %w", err)
	}
	return attrs, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
