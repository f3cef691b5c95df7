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
	metricspb "go.opentelemetry.io/proto/otlp/metrics/v1"

	"github.com/AleutianAI/glint/pkg/model"
)

// convertResourceMetrics flattens every metric in the request. Metrics
// carrying a data shape the model cannot hold (exponential histograms,
// or no data at all) are skipped entirely.
func convertResourceMetrics(resourceMetrics []*metricspb.ResourceMetrics) []model.Metric {
	var metrics []model.Metric
	for _, rm := range resourceMetrics {
		if rm == nil {
			continue
		}
		serviceName := resourceServiceName(rm.Resource)
		for _, sm := range rm.ScopeMetrics {
			if sm == nil {
				continue
			}
			for _, m := range sm.Metrics {
				if m == nil {
					continue
				}
				if conv, ok := convertMetric(m, serviceName); ok {
					metrics = append(metrics, conv)
				}
			}
		}
	}
	return metrics
}

func convertMetric(m *metricspb.Metric, serviceName *string) (model.Metric, bool) {
	out := model.Metric{
		Name:        m.Name,
		Description: m.Description,
		Unit:        m.Unit,
		ServiceName: serviceName,
	}

	switch data := m.Data.(type) {
	case *metricspb.Metric_Gauge:
		out.Type = model.MetricGauge
		out.Temporality = model.TemporalityUnspecified
		if data.Gauge != nil {
			for _, dp := range data.Gauge.DataPoints {
				out.DataPoints = append(out.DataPoints, convertNumberPoint(dp))
			}
		}
	case *metricspb.Metric_Sum:
		out.Type = model.MetricSum
		if data.Sum != nil {
			out.Temporality = convertTemporality(data.Sum.AggregationTemporality)
			for _, dp := range data.Sum.DataPoints {
				out.DataPoints = append(out.DataPoints, convertNumberPoint(dp))
			}
		}
	case *metricspb.Metric_Histogram:
		out.Type = model.MetricHistogram
		if data.Histogram != nil {
			out.Temporality = convertTemporality(data.Histogram.AggregationTemporality)
			for _, dp := range data.Histogram.DataPoints {
				out.DataPoints = append(out.DataPoints, convertHistogramPoint(dp))
			}
		}
	case *metricspb.Metric_Summary:
		out.Type = model.MetricSummary
		out.Temporality = model.TemporalityUnspecified
		if data.Summary != nil {
			for _, dp := range data.Summary.DataPoints {
				out.DataPoints = append(out.DataPoints, convertSummaryPoint(dp))
			}
		}
	default:
		return model.Metric{}, false
	}
	return out, true
}

func convertNumberPoint(dp *metricspb.NumberDataPoint) model.MetricDataPoint {
	var value float64
	switch v := dp.Value.(type) {
	case *metricspb.NumberDataPoint_AsDouble:
		value = v.AsDouble
	case *metricspb.NumberDataPoint_AsInt:
		value = float64(v.AsInt)
	}
	return model.MetricDataPoint{
		TimeUnixNano:      int64(dp.TimeUnixNano),
		StartTimeUnixNano: startTimeOrNil(dp.StartTimeUnixNano),
		Value:             value,
		Attributes:        convertAttributes(dp.Attributes),
	}
}

// convertHistogramPoint collapses a histogram point to a single value:
// the sum when recorded, the observation count otherwise.
func convertHistogramPoint(dp *metricspb.HistogramDataPoint) model.MetricDataPoint {
	value := float64(dp.Count)
	if dp.Sum != nil {
		value = *dp.Sum
	}
	return model.MetricDataPoint{
		TimeUnixNano:      int64(dp.TimeUnixNano),
		StartTimeUnixNano: startTimeOrNil(dp.StartTimeUnixNano),
		Value:             value,
		Attributes:        convertAttributes(dp.Attributes),
	}
}

func convertSummaryPoint(dp *metricspb.SummaryDataPoint) model.MetricDataPoint {
	return model.MetricDataPoint{
		TimeUnixNano:      int64(dp.TimeUnixNano),
		StartTimeUnixNano: startTimeOrNil(dp.StartTimeUnixNano),
		Value:             dp.Sum,
		Attributes:        convertAttributes(dp.Attributes),
	}
}

func convertTemporality(t metricspb.AggregationTemporality) model.Temporality {
	switch t {
	case metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_DELTA:
		return model.TemporalityDelta
	case metricspb.AggregationTemporality_AGGREGATION_TEMPORALITY_CUMULATIVE:
		return model.TemporalityCumulative
	default:
		return model.TemporalityUnspecified
	}
}

func startTimeOrNil(n uint64) *int64 {
	if n == 0 {
		return nil
	}
	v := int64(n)
	return &v
}
