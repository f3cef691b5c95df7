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

// MetricType identifies the metric family a data point came from.
type MetricType int

const (
	MetricGauge MetricType = iota
	MetricSum
	MetricHistogram
	MetricSummary
)

var metricTypeNames = [...]string{"Gauge", "Sum", "Histogram", "Summary"}

// String returns the type's variant name, e.g. "Gauge". This is the form
// stored in the metrics table.
func (t MetricType) String() string {
	if t < 0 || int(t) >= len(metricTypeNames) {
		return metricTypeNames[MetricGauge]
	}
	return metricTypeNames[t]
}

// ParseMetricType is the inverse of String. Unknown names map to Gauge.
func ParseMetricType(s string) MetricType {
	for i, name := range metricTypeNames {
		if s == name {
			return MetricType(i)
		}
	}
	return MetricGauge
}

func (t MetricType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToUpper(t.String()) + `"`), nil
}

func (t *MetricType) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	for i, name := range metricTypeNames {
		if strings.EqualFold(s, name) {
			*t = MetricType(i)
			return nil
		}
	}
	return fmt.Errorf("metric type: unknown value %q", s)
}

// Temporality says how successive data points relate: deltas since the
// previous point or cumulative since a start time. Gauges and summaries
// report Unspecified.
type Temporality int

const (
	TemporalityUnspecified Temporality = iota
	TemporalityDelta
	TemporalityCumulative
)

var temporalityNames = [...]string{"Unspecified", "Delta", "Cumulative"}

func (t Temporality) String() string {
	if t < 0 || int(t) >= len(temporalityNames) {
		return temporalityNames[TemporalityUnspecified]
	}
	return temporalityNames[t]
}

// ParseTemporality is the inverse of String. Unknown names map to
// Unspecified.
func ParseTemporality(s string) Temporality {
	for i, name := range temporalityNames {
		if s == name {
			return Temporality(i)
		}
	}
	return TemporalityUnspecified
}

func (t Temporality) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToUpper(t.String()) + `"`), nil
}

func (t *Temporality) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	for i, name := range temporalityNames {
		if strings.EqualFold(s, name) {
			*t = Temporality(i)
			return nil
		}
	}
	return fmt.Errorf("temporality: unknown value %q", s)
}

// MetricDataPoint is one measurement. Histogram and summary points
// collapse to a single float value at conversion time.
type MetricDataPoint struct {
	TimeUnixNano      int64      `json:"time_unix_nano"`
	StartTimeUnixNano *int64     `json:"start_time_unix_nano"`
	Value             float64    `json:"value"`
	Attributes        Attributes `json:"attributes"`
}

func (p *MetricDataPoint) Time() time.Time { return time.Unix(0, p.TimeUnixNano) }

// Metric is one flattened metric with its data points.
type Metric struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Unit        string            `json:"unit"`
	Type        MetricType        `json:"metric_type"`
	Temporality Temporality       `json:"temporality"`
	DataPoints  []MetricDataPoint `json:"data_points"`
	ServiceName *string           `json:"service_name"`
}
