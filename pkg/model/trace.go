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

// Trace is an aggregate view over every stored span sharing a trace id.
// Traces are assembled at read time; only spans are persisted.
type Trace struct {
	TraceID     string  `json:"trace_id"`
	Spans       []Span  `json:"spans"`
	ServiceName *string `json:"service_name"`
}

// NewTrace builds a trace from its spans. The service name comes from the
// root span when one exists, otherwise from the first span.
func NewTrace(traceID string, spans []Span) Trace {
	t := Trace{TraceID: traceID, Spans: spans}
	if root := t.RootSpan(); root != nil {
		t.ServiceName = root.ServiceName
	} else if len(spans) > 0 {
		t.ServiceName = spans[0].ServiceName
	}
	return t
}

// RootSpan returns the first span with no parent, or nil.
func (t *Trace) RootSpan() *Span {
	for i := range t.Spans {
		if t.Spans[i].IsRoot() {
			return &t.Spans[i]
		}
	}
	return nil
}

// GetSpan returns the span with the given id, or nil.
func (t *Trace) GetSpan(spanID string) *Span {
	for i := range t.Spans {
		if t.Spans[i].SpanID == spanID {
			return &t.Spans[i]
		}
	}
	return nil
}

// ChildrenOf returns the spans whose parent is the given span id.
func (t *Trace) ChildrenOf(spanID string) []*Span {
	var children []*Span
	for i := range t.Spans {
		p := t.Spans[i].ParentSpanID
		if p != nil && *p == spanID {
			children = append(children, &t.Spans[i])
		}
	}
	return children
}

// DurationNanos spans the earliest start to the latest end across all
// spans, not just the root. Zero when the trace is empty.
func (t *Trace) DurationNanos() int64 {
	if len(t.Spans) == 0 {
		return 0
	}
	minStart := t.Spans[0].StartTimeUnixNano
	maxEnd := t.Spans[0].EndTimeUnixNano
	for i := range t.Spans[1:] {
		s := &t.Spans[i+1]
		if s.StartTimeUnixNano < minStart {
			minStart = s.StartTimeUnixNano
		}
		if s.EndTimeUnixNano > maxEnd {
			maxEnd = s.EndTimeUnixNano
		}
	}
	return maxEnd - minStart
}

// DurationMS is the trace duration in fractional milliseconds.
func (t *Trace) DurationMS() float64 {
	return float64(t.DurationNanos()) / 1e6
}

// StartTimeNanos returns the earliest span start. ok is false for an
// empty trace.
func (t *Trace) StartTimeNanos() (int64, bool) {
	if len(t.Spans) == 0 {
		return 0, false
	}
	min := t.Spans[0].StartTimeUnixNano
	for i := range t.Spans[1:] {
		if s := t.Spans[i+1].StartTimeUnixNano; s < min {
			min = s
		}
	}
	return min, true
}

// SpanCount is the number of spans in the trace.
func (t *Trace) SpanCount() int { return len(t.Spans) }

// HasErrors reports whether any span carries an Error status.
func (t *Trace) HasErrors() bool {
	for i := range t.Spans {
		if t.Spans[i].IsError() {
			return true
		}
	}
	return false
}

// ErrorSpans returns every span with an Error status.
func (t *Trace) ErrorSpans() []*Span {
	var errs []*Span
	for i := range t.Spans {
		if t.Spans[i].IsError() {
			errs = append(errs, &t.Spans[i])
		}
	}
	return errs
}
