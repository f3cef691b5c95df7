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
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	"google.golang.org/protobuf/proto"

	"github.com/AleutianAI/glint/pkg/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postProto(t *testing.T, router *gin.Engine, path string, msg proto.Message) *httptest.ResponseRecorder {
	t.Helper()
	body, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/x-protobuf")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupHTTP(t *testing.T) (*gin.Engine, *storage.Storage) {
	store := testStore(t)
	return NewHTTPRouter(store, testLogger()), store
}

func TestHTTPTracesAccepted(t *testing.T) {
	router, store := setupHTTP(t)

	w := postProto(t, router, "/v1/traces", traceRequest(wireSpan(1, "root")))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", w.Code, w.Body.String())
	}

	n, err := store.CountSpans()
	if err != nil || n != 1 {
		t.Errorf("CountSpans() = %d, %v", n, err)
	}
}

func TestHTTPTracesBadPayload(t *testing.T) {
	router, store := setupHTTP(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/traces",
		bytes.NewReader([]byte("this is not protobuf at all, sorry")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("garbage body status = %d, want 400", w.Code)
	}

	n, _ := store.CountSpans()
	if n != 0 {
		t.Errorf("nothing should be stored, got %d spans", n)
	}
}

func TestHTTPTracesPartialFailureIs500(t *testing.T) {
	router, store := setupHTTP(t)

	w := postProto(t, router, "/v1/traces", traceRequest(
		wireSpan(1, "first"), wireSpan(1, "dup")))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if w.Body.Len() == 0 {
		t.Error("500 body should carry the join of per-record errors")
	}

	n, _ := store.CountSpans()
	if n != 1 {
		t.Errorf("the good span still lands, got %d", n)
	}
}

func TestHTTPLogsAccepted(t *testing.T) {
	router, store := setupHTTP(t)

	req := &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{{
			ScopeLogs: []*logspb.ScopeLogs{{
				LogRecords: []*logspb.LogRecord{{
					TimeUnixNano:   1_000,
					SeverityNumber: logspb.SeverityNumber_SEVERITY_NUMBER_INFO,
					Body:           strVal("hello"),
				}},
			}},
		}},
	}
	w := postProto(t, router, "/v1/logs", req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", w.Code, w.Body.String())
	}

	n, err := store.CountLogs()
	if err != nil || n != 1 {
		t.Errorf("CountLogs() = %d, %v", n, err)
	}
}

func TestHTTPUnknownSignalPath(t *testing.T) {
	router, _ := setupHTTP(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/profiles", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", w.Code)
	}
}
