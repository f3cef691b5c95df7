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
	"context"
	"fmt"
	"log/slog"
	"strings"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	"google.golang.org/grpc"

	"github.com/AleutianAI/glint/pkg/storage"
)

// maxMetricErrorFragments bounds the error text returned for a metrics
// export; one batch can carry thousands of points.
const maxMetricErrorFragments = 5

// TraceReceiver implements the OTLP TraceService.
type TraceReceiver struct {
	coltracepb.UnimplementedTraceServiceServer
	store *storage.Storage
	log   *slog.Logger
}

func NewTraceReceiver(store *storage.Storage, log *slog.Logger) *TraceReceiver {
	return &TraceReceiver{store: store, log: log}
}

// Export stores every span in the request. Spans the store refuses are
// counted in the partial-success block; the RPC itself still succeeds.
func (r *TraceReceiver) Export(
	_ context.Context,
	req *coltracepb.ExportTraceServiceRequest,
) (*coltracepb.ExportTraceServiceResponse, error) {
	spans := convertResourceSpans(req.GetResourceSpans())
	recordsReceived.WithLabelValues("traces").Add(float64(len(spans)))

	errs := r.store.InsertSpans(spans)
	var rejected int64
	var fragments []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		rejected++
		fragments = append(fragments, fmt.Sprintf("span %s: %v", spans[i].SpanID, err))
	}

	resp := &coltracepb.ExportTraceServiceResponse{}
	if rejected > 0 {
		recordsRejected.WithLabelValues("traces").Add(float64(rejected))
		msg := strings.Join(fragments, "; ")
		r.log.Warn("rejected spans during export",
			"rejected", rejected, "received", len(spans), "error", msg)
		resp.PartialSuccess = &coltracepb.ExportTracePartialSuccess{
			RejectedSpans: rejected,
			ErrorMessage:  msg,
		}
	}
	return resp, nil
}

// LogsReceiver implements the OTLP LogsService.
type LogsReceiver struct {
	collogspb.UnimplementedLogsServiceServer
	store *storage.Storage
	log   *slog.Logger
}

func NewLogsReceiver(store *storage.Storage, log *slog.Logger) *LogsReceiver {
	return &LogsReceiver{store: store, log: log}
}

// Export stores every log record in the request, reporting refused
// records through the partial-success block.
func (r *LogsReceiver) Export(
	_ context.Context,
	req *collogspb.ExportLogsServiceRequest,
) (*collogspb.ExportLogsServiceResponse, error) {
	logs := convertResourceLogs(req.GetResourceLogs())
	recordsReceived.WithLabelValues("logs").Add(float64(len(logs)))

	errs := r.store.InsertLogs(logs)
	var rejected int64
	var fragments []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		rejected++
		fragments = append(fragments, fmt.Sprintf("log record %d: %v", i, err))
	}

	resp := &collogspb.ExportLogsServiceResponse{}
	if rejected > 0 {
		recordsRejected.WithLabelValues("logs").Add(float64(rejected))
		msg := strings.Join(fragments, "; ")
		r.log.Warn("rejected log records during export",
			"rejected", rejected, "received", len(logs), "error", msg)
		resp.PartialSuccess = &collogspb.ExportLogsPartialSuccess{
			RejectedLogRecords: rejected,
			ErrorMessage:       msg,
		}
	}
	return resp, nil
}

// MetricsReceiver implements the OTLP MetricsService.
type MetricsReceiver struct {
	colmetricspb.UnimplementedMetricsServiceServer
	store *storage.Storage
	log   *slog.Logger
}

func NewMetricsReceiver(store *storage.Storage, log *slog.Logger) *MetricsReceiver {
	return &MetricsReceiver{store: store, log: log}
}

// Export stores every metric in the request. A metric that fails to
// insert rejects all of its data points; error text is capped at a few
// fragments.
func (r *MetricsReceiver) Export(
	_ context.Context,
	req *colmetricspb.ExportMetricsServiceRequest,
) (*colmetricspb.ExportMetricsServiceResponse, error) {
	metrics := convertResourceMetrics(req.GetResourceMetrics())
	var received int64
	for i := range metrics {
		received += int64(len(metrics[i].DataPoints))
	}
	recordsReceived.WithLabelValues("metrics").Add(float64(received))

	errs := r.store.InsertMetrics(metrics)
	var rejected int64
	var fragments []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		rejected += int64(len(metrics[i].DataPoints))
		if len(fragments) < maxMetricErrorFragments {
			fragments = append(fragments, fmt.Sprintf("error inserting metric: %v", err))
		}
	}

	resp := &colmetricspb.ExportMetricsServiceResponse{}
	if rejected > 0 {
		recordsRejected.WithLabelValues("metrics").Add(float64(rejected))
		msg := strings.Join(fragments, "; ")
		r.log.Warn("rejected metric data points during export",
			"rejected", rejected, "received", received, "error", msg)
		resp.PartialSuccess = &colmetricspb.ExportMetricsPartialSuccess{
			RejectedDataPoints: rejected,
			ErrorMessage:       msg,
		}
	}
	return resp, nil
}

// RegisterGRPC registers all three OTLP services on one gRPC server.
func RegisterGRPC(srv *grpc.Server, store *storage.Storage, log *slog.Logger) {
	coltracepb.RegisterTraceServiceServer(srv, NewTraceReceiver(store, log))
	collogspb.RegisterLogsServiceServer(srv, NewLogsReceiver(store, log))
	colmetricspb.RegisterMetricsServiceServer(srv, NewMetricsReceiver(store, log))
}
