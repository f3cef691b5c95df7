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
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func testSpan() Span {
	return Span{
		SpanID:            "span1",
		TraceID:           "trace1",
		Name:              "GET /users",
		Kind:              SpanKindServer,
		StartTimeUnixNano: 1_000_000_000,
		EndTimeUnixNano:   1_005_000_000,
		Attributes:        Attributes{},
		Status:            Status{Code: StatusOK},
		ServiceName:       strPtr("api"),
	}
}

func TestSpanDuration(t *testing.T) {
	s := testSpan()
	if got := s.DurationNanos(); got != 5_000_000 {
		t.Errorf("DurationNanos() = %d, want 5000000", got)
	}
	if got := s.DurationMS(); got != 5.0 {
		t.Errorf("DurationMS() = %f, want 5.0", got)
	}
}

func TestSpanIsRoot(t *testing.T) {
	s := testSpan()
	if !s.IsRoot() {
		t.Error("span without parent should be root")
	}
	s.ParentSpanID = strPtr("parent1")
	if s.IsRoot() {
		t.Error("span with parent should not be root")
	}
}

func TestSpanIsError(t *testing.T) {
	s := testSpan()
	if s.IsError() {
		t.Error("Ok status should not be an error")
	}
	s.Status = Status{Code: StatusError, Message: strPtr("boom")}
	if !s.IsError() {
		t.Error("Error status should be an error")
	}
}

func TestSpanKindRoundTrip(t *testing.T) {
	for k := SpanKindUnspecified; k <= SpanKindConsumer; k++ {
		if got := ParseSpanKind(k.String()); got != k {
			t.Errorf("ParseSpanKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got := ParseSpanKind("Bogus"); got != SpanKindUnspecified {
		t.Errorf("ParseSpanKind(Bogus) = %v, want Unspecified", got)
	}
}

func TestSpanJSONEnumEncoding(t *testing.T) {
	s := testSpan()
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, `"kind":"SERVER"`) {
		t.Errorf("kind should encode as SERVER: %s", body)
	}
	if !strings.Contains(body, `"code":"OK"`) {
		t.Errorf("status code should encode as OK: %s", body)
	}
	if !strings.Contains(body, `"parent_span_id":null`) {
		t.Errorf("absent parent should encode as null: %s", body)
	}

	var back Span
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != SpanKindServer || back.Status.Code != StatusOK {
		t.Errorf("round trip lost enums: %+v", back)
	}
}
