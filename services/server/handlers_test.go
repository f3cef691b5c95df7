// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/glint/pkg/model"
	"github.com/AleutianAI/glint/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) (*gin.Engine, *storage.Storage) {
	t.Helper()
	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewRouter(store, testLogger()), store
}

func strPtr(s string) *string { return &s }

// seedTrace inserts one single-span trace with the given duration.
func seedTrace(t *testing.T, store *storage.Storage, traceID, service string, durationMS float64, status model.StatusCode) {
	t.Helper()
	start := int64(1_000_000_000)
	span := model.Span{
		SpanID:            fmt.Sprintf("%016x", len(traceID)+int(durationMS)),
		TraceID:           traceID,
		Name:              "op",
		Kind:              model.SpanKindServer,
		StartTimeUnixNano: start,
		EndTimeUnixNano:   start + int64(durationMS*1e6),
		Status:            model.Status{Code: status},
		ServiceName:       strPtr(service),
	}
	require.NoError(t, store.InsertSpan(&span))
}

func getJSON(t *testing.T, router *gin.Engine, url string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestListTraces(t *testing.T) {
	router, store := setup(t)
	seedTrace(t, store, "aaaa0000000000000000000000000001", "api", 50, model.StatusOK)
	seedTrace(t, store, "aaaa0000000000000000000000000002", "api", 150, model.StatusError)
	seedTrace(t, store, "aaaa0000000000000000000000000003", "worker", 500, model.StatusOK)

	var resp struct {
		Traces []TraceInfo `json:"traces"`
		Total  int         `json:"total"`
	}
	code := getJSON(t, router, "/api/traces", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Traces, 3)
	assert.NotNil(t, resp.Traces[0].StartTime)
}

func TestListTracesDurationFilter(t *testing.T) {
	router, store := setup(t)
	seedTrace(t, store, "bbbb0000000000000000000000000001", "api", 50, model.StatusOK)
	seedTrace(t, store, "bbbb0000000000000000000000000002", "api", 150, model.StatusOK)
	seedTrace(t, store, "bbbb0000000000000000000000000003", "api", 500, model.StatusOK)

	var resp struct {
		Traces []TraceInfo `json:"traces"`
		Total  int         `json:"total"`
	}
	code := getJSON(t, router, "/api/traces?min_duration=100", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Total)
	for _, info := range resp.Traces {
		assert.GreaterOrEqual(t, info.DurationMS, 100.0)
	}

	code = getJSON(t, router, "/api/traces?min_duration=100&max_duration=200", &resp)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, 150.0, resp.Traces[0].DurationMS)
}

func TestListTracesServiceAndOffset(t *testing.T) {
	router, store := setup(t)
	seedTrace(t, store, "cccc0000000000000000000000000001", "api", 10, model.StatusOK)
	seedTrace(t, store, "cccc0000000000000000000000000002", "api", 20, model.StatusOK)
	seedTrace(t, store, "cccc0000000000000000000000000003", "worker", 30, model.StatusOK)

	var resp struct {
		Traces []TraceInfo `json:"traces"`
		Total  int         `json:"total"`
	}
	code := getJSON(t, router, "/api/traces?service=api", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, resp.Total)

	code = getJSON(t, router, "/api/traces?service=api&offset=1", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, resp.Total, "total counts what survives the offset")

	code = getJSON(t, router, "/api/traces?service=api&offset=10", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, resp.Total)
}

func TestGetTrace(t *testing.T) {
	router, store := setup(t)
	traceID := "dddd0000000000000000000000000001"
	seedTrace(t, store, traceID, "api", 100, model.StatusError)

	var trace model.Trace
	code := getJSON(t, router, "/api/traces/"+traceID, &trace)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, traceID, trace.TraceID)
	require.Len(t, trace.Spans, 1)
	assert.True(t, trace.HasErrors())
}

func TestGetTraceNotFound(t *testing.T) {
	router, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/traces/feedfacefeedfacefeedfacefeedface", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "not found")
}

func TestListLogsLevelFilter(t *testing.T) {
	router, store := setup(t)
	require.NoError(t, store.InsertLog(&model.Log{
		TimeUnixNano: 1_000,
		Severity:     model.SeverityInfo,
		Body:         "started",
		ServiceName:  strPtr("api"),
	}))
	require.NoError(t, store.InsertLog(&model.Log{
		TimeUnixNano: 2_000,
		Severity:     model.SeverityError,
		Body:         "boom",
		ServiceName:  strPtr("api"),
	}))

	var logs []model.Log
	code := getJSON(t, router, "/api/logs?level=error", &logs)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, logs, 1)
	assert.Equal(t, "boom", logs[0].Body)

	code = getJSON(t, router, "/api/logs", &logs)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, logs, 2)
	assert.Equal(t, "boom", logs[0].Body, "newest first")
}

func TestListLogsLevelFilterHonorsLimit(t *testing.T) {
	router, store := setup(t)

	// An old error followed by newer info noise. The level filter runs in
	// SQL, so limit=1 still returns the error rather than an empty page.
	require.NoError(t, store.InsertLog(&model.Log{
		TimeUnixNano: 1_000,
		Severity:     model.SeverityError,
		Body:         "disk full",
		ServiceName:  strPtr("api"),
	}))
	for i := 0; i < 5; i++ {
		require.NoError(t, store.InsertLog(&model.Log{
			TimeUnixNano: int64(2_000 + i),
			Severity:     model.SeverityInfo,
			Body:         "heartbeat",
			ServiceName:  strPtr("api"),
		}))
	}

	var logs []model.Log
	code := getJSON(t, router, "/api/logs?level=error&limit=1", &logs)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, logs, 1)
	assert.Equal(t, "disk full", logs[0].Body)
}

func TestListServices(t *testing.T) {
	router, store := setup(t)
	seedTrace(t, store, "eeee0000000000000000000000000001", "worker", 10, model.StatusOK)
	seedTrace(t, store, "eeee0000000000000000000000000002", "api", 20, model.StatusOK)
	seedTrace(t, store, "eeee0000000000000000000000000003", "api", 30, model.StatusOK)

	var resp struct {
		Services []string `json:"services"`
	}
	code := getJSON(t, router, "/api/services", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"api", "worker"}, resp.Services)
}

func TestHealth(t *testing.T) {
	router, _ := setup(t)

	var resp map[string]string
	code := getJSON(t, router, "/api/health", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "glint-api", resp["service"])
}

func TestHealthAtRootPath(t *testing.T) {
	router, _ := setup(t)

	// The root path must answer with the health JSON, not the UI shell.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "glint-api", resp["service"])
}

func TestRequestIDEchoed(t *testing.T) {
	router, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "one is minted when absent")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultLimit},
		{"abc", DefaultLimit},
		{"-5", DefaultLimit},
		{"0", DefaultLimit},
		{"25", 25},
		{"1000", 1000},
		{"5000", MaxLimit},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.raw); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
