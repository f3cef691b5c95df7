// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"fmt"
	"strings"
	"time"
)

// SpanKind mirrors the six OTLP span kinds.
type SpanKind int

const (
	SpanKindUnspecified SpanKind = iota
	SpanKindInternal
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

var spanKindNames = [...]string{
	"Unspecified", "Internal", "Server", "Client", "Producer", "Consumer",
}

// String returns the kind's variant name, e.g. "Server". This is the form
// stored in the spans table.
func (k SpanKind) String() string {
	if k < 0 || int(k) >= len(spanKindNames) {
		return spanKindNames[SpanKindUnspecified]
	}
	return spanKindNames[k]
}

// ParseSpanKind is the inverse of String. Unknown names map to Unspecified.
func ParseSpanKind(s string) SpanKind {
	for i, name := range spanKindNames {
		if s == name {
			return SpanKind(i)
		}
	}
	return SpanKindUnspecified
}

func (k SpanKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToUpper(k.String()) + `"`), nil
}

func (k *SpanKind) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	for i, name := range spanKindNames {
		if strings.EqualFold(s, name) {
			*k = SpanKind(i)
			return nil
		}
	}
	return fmt.Errorf("span kind: unknown value %q", s)
}

// StatusCode is the span-level outcome reported by the instrumented
// application.
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

var statusCodeNames = [...]string{"Unset", "Ok", "Error"}

func (c StatusCode) String() string {
	if c < 0 || int(c) >= len(statusCodeNames) {
		return statusCodeNames[StatusUnset]
	}
	return statusCodeNames[c]
}

func (c StatusCode) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToUpper(c.String()) + `"`), nil
}

func (c *StatusCode) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	for i, name := range statusCodeNames {
		if strings.EqualFold(s, name) {
			*c = StatusCode(i)
			return nil
		}
	}
	return fmt.Errorf("status code: unknown value %q", s)
}

// Status carries the span's status code and an optional message. The
// message is absent rather than empty when instrumentation sent none.
type Status struct {
	Code    StatusCode `json:"code"`
	Message *string    `json:"message"`
}

// Span is one flattened span. Ids are lowercase hex strings; times are
// unix nanoseconds. ParentSpanID is nil on root spans and ServiceName is
// nil when the resource carried no service.name.
type Span struct {
	SpanID            string     `json:"span_id"`
	TraceID           string     `json:"trace_id"`
	ParentSpanID      *string    `json:"parent_span_id"`
	Name              string     `json:"name"`
	Kind              SpanKind   `json:"kind"`
	StartTimeUnixNano int64      `json:"start_time_unix_nano"`
	EndTimeUnixNano   int64      `json:"end_time_unix_nano"`
	Attributes        Attributes `json:"attributes"`
	Status            Status     `json:"status"`
	ServiceName       *string    `json:"service_name"`
}

// DurationNanos is end minus start. Spans with clock skew can report a
// negative duration; callers decide how to render that.
func (s *Span) DurationNanos() int64 {
	return s.EndTimeUnixNano - s.StartTimeUnixNano
}

// DurationMS is the duration in fractional milliseconds.
func (s *Span) DurationMS() float64 {
	return float64(s.DurationNanos()) / 1e6
}

func (s *Span) StartTime() time.Time { return time.Unix(0, s.StartTimeUnixNano) }
func (s *Span) EndTime() time.Time   { return time.Unix(0, s.EndTimeUnixNano) }

// IsRoot reports whether the span has no parent.
func (s *Span) IsRoot() bool { return s.ParentSpanID == nil }

// IsError reports whether the span's status code is Error.
func (s *Span) IsError() bool { return s.Status.Code == StatusError }
