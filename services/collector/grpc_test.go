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
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	colmetricspb "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	coltracepb "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/AleutianAI/glint/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func traceRequest(spans ...*tracepb.Span) *coltracepb.ExportTraceServiceRequest {
	return &coltracepb.ExportTraceServiceRequest{
		ResourceSpans: []*tracepb.ResourceSpans{{
			Resource:   serviceResource("api"),
			ScopeSpans: []*tracepb.ScopeSpans{{Spans: spans}},
		}},
	}
}

func wireSpan(spanID byte, name string) *tracepb.Span {
	return &tracepb.Span{
		TraceId:           []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanId:            []byte{spanID, 2, 3, 4, 5, 6, 7, 8},
		Name:              name,
		Kind:              tracepb.Span_SPAN_KIND_SERVER,
		StartTimeUnixNano: 1_000_000_000,
		EndTimeUnixNano:   2_000_000_000,
	}
}

func TestTraceExportStoresSpans(t *testing.T) {
	store := testStore(t)
	recv := NewTraceReceiver(store, testLogger())

	resp, err := recv.Export(context.Background(), traceRequest(
		wireSpan(1, "root"), wireSpan(2, "child")))
	require.NoError(t, err)
	assert.Nil(t, resp.PartialSuccess, "clean export carries no partial success")

	n, err := store.CountSpans()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTraceExportPartialSuccessOnDuplicate(t *testing.T) {
	store := testStore(t)
	recv := NewTraceReceiver(store, testLogger())

	resp, err := recv.Export(context.Background(), traceRequest(
		wireSpan(1, "first"), wireSpan(1, "dup"), wireSpan(2, "second")))
	require.NoError(t, err, "rejected records must not fail the RPC")
	require.NotNil(t, resp.PartialSuccess)
	assert.Equal(t, int64(1), resp.PartialSuccess.RejectedSpans)
	assert.True(t, strings.Contains(resp.PartialSuccess.ErrorMessage, "0102030405060708"),
		"error message names the span: %s", resp.PartialSuccess.ErrorMessage)

	n, err := store.CountSpans()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "good spans still land")
}

func TestLogsExportStoresRecords(t *testing.T) {
	store := testStore(t)
	recv := NewLogsReceiver(store, testLogger())

	req := &collogspb.ExportLogsServiceRequest{
		ResourceLogs: []*logspb.ResourceLogs{{
			Resource: serviceResource("worker"),
			ScopeLogs: []*logspb.ScopeLogs{{
				LogRecords: []*logspb.LogRecord{
					{
						TimeUnixNano:   1_000,
						SeverityNumber: logspb.SeverityNumber_SEVERITY_NUMBER_WARN,
						Body:           strVal("watch out"),
					},
					{
						TimeUnixNano:   2_000,
						SeverityNumber: logspb.SeverityNumber_SEVERITY_NUMBER_ERROR,
						Body:           strVal("it happened"),
						TraceId:        []byte{0xaa},
						SpanId:         []byte{0xbb},
					},
				},
			}},
		}},
	}
	resp, err := recv.Export(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.PartialSuccess)

	logs, err := store.ListLogs("worker", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "it happened", logs[0].Body, "newest first")
	assert.True(t, logs[0].IsCorrelated())
	assert.False(t, logs[1].IsCorrelated())
}

func TestMetricsExportStoresPoints(t *testing.T) {
	store := testStore(t)
	recv := NewMetricsReceiver(store, testLogger())

	req := &colmetricspb.ExportMetricsServiceRequest{
		ResourceMetrics: []*metricspb.ResourceMetrics{{
			Resource: serviceResource("api"),
			ScopeMetrics: []*metricspb.ScopeMetrics{{
				Metrics: []*metricspb.Metric{
					{
						Name: "requests",
						Data: &metricspb.Metric_Sum{Sum: &metricspb.Sum{
							AggregationTemporality: metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE,
							DataPoints: []*metricspb.NumberDataPoint{
								numberPoint(1_000, 5),
								numberPoint(2_000, 8),
							},
						}},
					},
					{Name: "skipped-no-data"},
				},
			}},
		}},
	}
	resp, err := recv.Export(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.PartialSuccess)

	n, err := store.CountMetrics()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "one row per data point, empty metric skipped")
}
