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
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/AleutianAI/glint/pkg/model"
)

// convertResourceSpans flattens every span in the request, stamping each
// with its resource's service.name. Scope boundaries carry no information
// the model keeps.
func convertResourceSpans(resourceSpans []*tracepb.ResourceSpans) []model.Span {
	var spans []model.Span
	for _, rs := range resourceSpans {
		if rs == nil {
			continue
		}
		serviceName := resourceServiceName(rs.Resource)
		for _, ss := range rs.ScopeSpans {
			if ss == nil {
				continue
			}
			for _, span := range ss.Spans {
				if span == nil {
					continue
				}
				spans = append(spans, convertSpan(span, serviceName))
			}
		}
	}
	return spans
}

func convertSpan(span *tracepb.Span, serviceName *string) model.Span {
	return model.Span{
		SpanID:            bytesToHex(span.SpanId),
		TraceID:           bytesToHex(span.TraceId),
		ParentSpanID:      idOrNil(span.ParentSpanId),
		Name:              span.Name,
		Kind:              convertSpanKind(span.Kind),
		StartTimeUnixNano: int64(span.StartTimeUnixNano),
		EndTimeUnixNano:   int64(span.EndTimeUnixNano),
		Attributes:        convertAttributes(span.Attributes),
		Status:            convertStatus(span.Status),
		ServiceName:       serviceName,
	}
}

func convertSpanKind(kind tracepb.Span_SpanKind) model.SpanKind {
	switch kind {
	case tracepb.Span_SPAN_KIND_INTERNAL:
		return model.SpanKindInternal
	case tracepb.Span_SPAN_KIND_SERVER:
		return model.SpanKindServer
	case tracepb.Span_SPAN_KIND_CLIENT:
		return model.SpanKindClient
	case tracepb.Span_SPAN_KIND_PRODUCER:
		return model.SpanKindProducer
	case tracepb.Span_SPAN_KIND_CONSUMER:
		return model.SpanKindConsumer
	default:
		// Unspecified and any out-of-range value.
		return model.SpanKindUnspecified
	}
}

// convertStatus defaults a missing status to Unset and drops empty
// messages so "no message" is represented one way only.
func convertStatus(status *tracepb.Status) model.Status {
	if status == nil {
		return model.Status{Code: model.StatusUnset}
	}
	var code model.StatusCode
	switch status.Code {
	case tracepb.Status_STATUS_CODE_OK:
		code = model.StatusOK
	case tracepb.Status_STATUS_CODE_ERROR:
		code = model.StatusError
	default:
		code = model.StatusUnset
	}
	var message *string
	if status.Message != "" {
		m := status.Message
		message = &m
	}
	return model.Status{Code: code, Message: message}
}
