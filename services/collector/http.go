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
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/protobuf/proto"

	"github.com/AleutianAI/glint/pkg/storage"
)

// httpHandlers serves OTLP/HTTP by decoding the binary protobuf body and
// funneling it through the same receivers the gRPC surface uses, so both
// transports share one set of semantics.
type httpHandlers struct {
	log     *slog.Logger
	traces  *TraceReceiver
	logs    *LogsReceiver
	metrics *MetricsReceiver
}

// NewHTTPRouter builds the OTLP/HTTP router: POST /v1/traces, /v1/logs
// and /v1/metrics, binary protobuf only. An undecodable body is a 400,
// any rejected record turns the response into a 500 carrying the join of
// the per-record errors, and full success is an empty 200.
func NewHTTPRouter(store *storage.Storage, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &httpHandlers{
		log:     log,
		traces:  NewTraceReceiver(store, log),
		logs:    NewLogsReceiver(store, log),
		metrics: NewMetricsReceiver(store, log),
	}
	v1 := router.Group("/v1")
	{
		v1.POST("/traces", h.handleTraces)
		v1.POST("/logs", h.handleLogs)
		v1.POST("/metrics", h.handleMetrics)
	}
	return router
}

func (h *httpHandlers) readBody(c *gin.Context, msg proto.Message) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err == nil {
		err = proto.Unmarshal(body, msg)
	}
	if err != nil {
		h.log.Warn("undecodable OTLP payload",
			"path", c.Request.URL.Path, "error", err)
		c.Status(http.StatusBadRequest)
		return false
	}
	return true
}

func (h *httpHandlers) handleTraces(c *gin.Context) {
	var req coltracepb.ExportTraceServiceRequest
	if !h.readBody(c, &req) {
		return
	}
	resp, _ := h.traces.Export(c.Request.Context(), &req)
	if ps := resp.GetPartialSuccess(); ps != nil && ps.RejectedSpans > 0 {
		c.String(http.StatusInternalServerError, ps.ErrorMessage)
		return
	}
	c.Status(http.StatusOK)
}

func (h *httpHandlers) handleLogs(c *gin.Context) {
	var req collogspb.ExportLogsServiceRequest
	if !h.readBody(c, &req) {
		return
	}
	resp, _ := h.logs.Export(c.Request.Context(), &req)
	if ps := resp.GetPartialSuccess(); ps != nil && ps.RejectedLogRecords > 0 {
		c.String(http.StatusInternalServerError, ps.ErrorMessage)
		return
	}
	c.Status(http.StatusOK)
}

func (h *httpHandlers) handleMetrics(c *gin.Context) {
	var req colmetricspb.ExportMetricsServiceRequest
	if !h.readBody(c, &req) {
		return
	}
	resp, _ := h.metrics.Export(c.Request.Context(), &req)
	if ps := resp.GetPartialSuccess(); ps != nil && ps.RejectedDataPoints > 0 {
		c.String(http.StatusInternalServerError, ps.ErrorMessage)
		return
	}
	c.Status(http.StatusOK)
}
