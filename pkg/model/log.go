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

// SeverityLevel is the 25-valued OTLP severity number: Unspecified plus
// four fine-grained steps within each of the six classes.
type SeverityLevel int

const (
	SeverityUnspecified SeverityLevel = iota
	SeverityTrace
	SeverityTrace2
	SeverityTrace3
	SeverityTrace4
	SeverityDebug
	SeverityDebug2
	SeverityDebug3
	SeverityDebug4
	SeverityInfo
	SeverityInfo2
	SeverityInfo3
	SeverityInfo4
	SeverityWarn
	SeverityWarn2
	SeverityWarn3
	SeverityWarn4
	SeverityError
	SeverityError2
	SeverityError3
	SeverityError4
	SeverityFatal
	SeverityFatal2
	SeverityFatal3
	SeverityFatal4
)

var severityNames = [...]string{
	"Unspecified",
	"Trace", "Trace2", "Trace3", "Trace4",
	"Debug", "Debug2", "Debug3", "Debug4",
	"Info", "Info2", "Info3", "Info4",
	"Warn", "Warn2", "Warn3", "Warn4",
	"Error", "Error2", "Error3", "Error4",
	"Fatal", "Fatal2", "Fatal3", "Fatal4",
}

// String returns the level's variant name, e.g. "Info2". This is the form
// stored in the logs table.
func (l SeverityLevel) String() string {
	if l < 0 || int(l) >= len(severityNames) {
		return severityNames[SeverityUnspecified]
	}
	return severityNames[l]
}

// ParseSeverityLevel is the inverse of String. Unknown names map to
// Unspecified.
func ParseSeverityLevel(s string) SeverityLevel {
	for i, name := range severityNames {
		if s == name {
			return SeverityLevel(i)
		}
	}
	return SeverityUnspecified
}

// Class folds the level to its six-way class name: TRACE, DEBUG, INFO,
// WARN, ERROR or FATAL, with UNSPECIFIED for the zero level.
func (l SeverityLevel) Class() string {
	switch {
	case l >= SeverityTrace && l <= SeverityTrace4:
		return "TRACE"
	case l >= SeverityDebug && l <= SeverityDebug4:
		return "DEBUG"
	case l >= SeverityInfo && l <= SeverityInfo4:
		return "INFO"
	case l >= SeverityWarn && l <= SeverityWarn4:
		return "WARN"
	case l >= SeverityError && l <= SeverityError4:
		return "ERROR"
	case l >= SeverityFatal && l <= SeverityFatal4:
		return "FATAL"
	default:
		return "UNSPECIFIED"
	}
}

// LevelsInClass returns every level that folds to the given class name,
// matched case-insensitively. Unknown classes return nil.
func LevelsInClass(class string) []SeverityLevel {
	var levels []SeverityLevel
	for l := SeverityUnspecified; l <= SeverityFatal4; l++ {
		if strings.EqualFold(l.Class(), class) {
			levels = append(levels, l)
		}
	}
	return levels
}

func (l SeverityLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToUpper(l.String()) + `"`), nil
}

func (l *SeverityLevel) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	for i, name := range severityNames {
		if strings.EqualFold(s, name) {
			*l = SeverityLevel(i)
			return nil
		}
	}
	return fmt.Errorf("severity level: unknown value %q", s)
}

// Log is one flattened log record. TraceID and SpanID are nil unless the
// record arrived with non-empty correlation ids.
type Log struct {
	TimeUnixNano int64         `json:"time_unix_nano"`
	Severity     SeverityLevel `json:"severity_level"`
	SeverityText *string       `json:"severity_text"`
	Body         string        `json:"body"`
	Attributes   Attributes    `json:"attributes"`
	TraceID      *string       `json:"trace_id"`
	SpanID       *string       `json:"span_id"`
	ServiceName  *string       `json:"service_name"`
}

func (l *Log) Time() time.Time { return time.Unix(0, l.TimeUnixNano) }

// IsCorrelated reports whether both a trace id and a span id are present.
func (l *Log) IsCorrelated() bool { return l.TraceID != nil && l.SpanID != nil }

// IsError reports whether the level is in the Error or Fatal class.
func (l *Log) IsError() bool {
	return l.Severity >= SeverityError && l.Severity <= SeverityFatal4
}
