// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the REST query API and the embedded web UI.
//
// The collector writes telemetry into storage; this package is the read
// side. Every response is JSON; trace and log records serialize exactly
// as their model types do, so the UI and the CLI see identical shapes.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/glint/pkg/model"
	"github.com/AleutianAI/glint/pkg/storage"
)

const (
	// DefaultLimit applies when the client sends no limit parameter.
	DefaultLimit = 100

	// MaxLimit is the hard ceiling on any list endpoint.
	MaxLimit = 1000
)

// TraceInfo is the list-view summary of one trace. The full span tree is
// only returned by the by-id endpoint.
type TraceInfo struct {
	TraceID     string  `json:"trace_id"`
	ServiceName *string `json:"service_name"`
	DurationMS  float64 `json:"duration_ms"`
	SpanCount   int     `json:"span_count"`
	HasErrors   bool    `json:"has_errors"`
	StartTime   *int64  `json:"start_time"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handlers holds the query API endpoints.
type Handlers struct {
	store *storage.Storage
	log   *slog.Logger
}

// NewHandlers creates handlers backed by the given store.
func NewHandlers(store *storage.Storage, log *slog.Logger) *Handlers {
	return &Handlers{store: store, log: log}
}

// newTraceInfo summarizes a trace for the list view.
func newTraceInfo(t *model.Trace) TraceInfo {
	info := TraceInfo{
		TraceID:     t.TraceID,
		ServiceName: t.ServiceName,
		DurationMS:  t.DurationMS(),
		SpanCount:   t.SpanCount(),
		HasErrors:   t.HasErrors(),
	}
	if start, ok := t.StartTimeNanos(); ok {
		info.StartTime = &start
	}
	return info
}

// HandleListTraces handles GET /api/traces.
//
// Query Parameters:
//
//	service      exact service name filter
//	min_duration minimum trace duration in ms (float)
//	max_duration maximum trace duration in ms (float)
//	limit        page size, default 100, capped at 1000
//	offset       number of traces to skip
//
// Response:
//
//	200 OK: {"traces": [TraceInfo...], "total": n}
//	500 Internal Server Error: storage failure
func (h *Handlers) HandleListTraces(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))
	service := c.Query("service")

	traces, err := h.store.ListTraces(service, limit)
	if err != nil {
		h.log.Error("list traces failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	// Duration filters run over the fetched page, not in SQL, because
	// trace duration is an aggregate over spans.
	minDur, hasMin := parseFloat(c.Query("min_duration"))
	maxDur, hasMax := parseFloat(c.Query("max_duration"))

	infos := make([]TraceInfo, 0, len(traces))
	for i := range traces {
		info := newTraceInfo(&traces[i])
		if hasMin && info.DurationMS < minDur {
			continue
		}
		if hasMax && info.DurationMS > maxDur {
			continue
		}
		infos = append(infos, info)
	}

	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		if offset >= len(infos) {
			infos = infos[:0]
		} else {
			infos = infos[offset:]
		}
	}

	c.JSON(http.StatusOK, gin.H{"traces": infos, "total": len(infos)})
}

// HandleGetTrace handles GET /api/traces/:id.
//
// Response:
//
//	200 OK: full Trace JSON with every span
//	404 Not Found: no spans stored under that trace id
//	500 Internal Server Error: storage failure
func (h *Handlers) HandleGetTrace(c *gin.Context) {
	id := c.Param("id")

	trace, err := h.store.GetTraceByID(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "trace not found: " + id})
			return
		}
		h.log.Error("get trace failed", "trace_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, trace)
}

// HandleListLogs handles GET /api/logs.
//
// Query Parameters:
//
//	service exact service name filter
//	level   display class filter (TRACE/DEBUG/INFO/WARN/ERROR/FATAL)
//	limit   page size, default 100, capped at 1000
//
// Response:
//
//	200 OK: JSON array of Log records, newest first
//	500 Internal Server Error: storage failure
func (h *Handlers) HandleListLogs(c *gin.Context) {
	limit := parseLimit(c.Query("limit"))
	service := c.Query("service")

	var logs []model.Log
	var err error
	if level := c.Query("level"); level != "" {
		logs, err = h.store.ListLogsByLevel(service, level, limit)
	} else {
		logs, err = h.store.ListLogs(service, limit)
	}
	if err != nil {
		h.log.Error("list logs failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if logs == nil {
		logs = []model.Log{}
	}

	c.JSON(http.StatusOK, logs)
}

// HandleListServices handles GET /api/services.
//
// Service names are collected from the most recent traces rather than a
// dedicated table, so a service that stopped reporting ages out with its
// data.
//
// Response:
//
//	200 OK: {"services": ["api", "worker", ...]} sorted and deduplicated
//	500 Internal Server Error: storage failure
func (h *Handlers) HandleListServices(c *gin.Context) {
	traces, err := h.store.ListTraces("", MaxLimit)
	if err != nil {
		h.log.Error("list services failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	seen := make(map[string]struct{})
	for i := range traces {
		if traces[i].ServiceName != nil {
			seen[*traces[i].ServiceName] = struct{}{}
		}
	}
	services := make([]string, 0, len(seen))
	for name := range seen {
		services = append(services, name)
	}
	sort.Strings(services)

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "glint-api",
	})
}

// parseLimit clamps the limit parameter to (0, MaxLimit].
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
