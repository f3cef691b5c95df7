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
	logspb "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/AleutianAI/glint/pkg/model"
)

// convertResourceLogs flattens every log record in the request, stamping
// each with its resource's service.name.
func convertResourceLogs(resourceLogs []*logspb.ResourceLogs) []model.Log {
	var logs []model.Log
	for _, rl := range resourceLogs {
		if rl == nil {
			continue
		}
		serviceName := resourceServiceName(rl.Resource)
		for _, sl := range rl.ScopeLogs {
			if sl == nil {
				continue
			}
			for _, record := range sl.LogRecords {
				if record == nil {
					continue
				}
				logs = append(logs, convertLogRecord(record, serviceName))
			}
		}
	}
	return logs
}

func convertLogRecord(record *logspb.LogRecord, serviceName *string) model.Log {
	level := convertSeverityNumber(record.SeverityNumber)
	text := level.Class()

	body := ""
	if s, ok := convertAnyValueToString(record.Body); ok {
		body = s
	}

	return model.Log{
		TimeUnixNano: int64(record.TimeUnixNano),
		Severity:     level,
		SeverityText: &text,
		Body:         body,
		Attributes:   convertAttributes(record.Attributes),
		TraceID:      idOrNil(record.TraceId),
		SpanID:       idOrNil(record.SpanId),
		ServiceName:  serviceName,
	}
}

// convertSeverityNumber maps the protocol's severity number directly;
// the numeric ranges agree. Out-of-range numbers become Unspecified.
func convertSeverityNumber(n logspb.SeverityNumber) model.SeverityLevel {
	if n >= logspb.SeverityNumber_SEVERITY_NUMBER_TRACE &&
		n <= logspb.SeverityNumber_SEVERITY_NUMBER_FATAL4 {
		return model.SeverityLevel(n)
	}
	return model.SeverityUnspecified
}
