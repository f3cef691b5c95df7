// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package collector receives OTLP traffic over gRPC and HTTP, flattens
// the wire envelopes into the internal model, and writes the result to
// storage. Per-record failures are reported back to exporters through
// OTLP partial-success blocks; a bad record never fails the whole export.
package collector

import (
	"encoding/hex"
	"strings"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"

	"github.com/AleutianAI/glint/pkg/model"
)

// bytesToHex renders ids as lowercase hex, the canonical id form
// everywhere downstream of the receivers.
func bytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// idOrNil converts an id byte slice to its hex form, or nil when the
// exporter sent no id. Empty bytes never become an empty string.
func idOrNil(b []byte) *string {
	if len(b) == 0 {
		return nil
	}
	s := bytesToHex(b)
	return &s
}

// convertAnyValue maps an OTLP AnyValue onto the internal variant type.
// Unset values and nested key-value lists are unrepresentable and report
// false; inside arrays they are silently dropped.
func convertAnyValue(v *commonpb.AnyValue) (model.AttributeValue, bool) {
	if v == nil || v.Value == nil {
		return model.AttributeValue{}, false
	}
	switch val := v.Value.(type) {
	case *commonpb.AnyValue_StringValue:
		return model.StringValue(val.StringValue), true
	case *commonpb.AnyValue_BoolValue:
		return model.BoolValue(val.BoolValue), true
	case *commonpb.AnyValue_IntValue:
		return model.IntValue(val.IntValue), true
	case *commonpb.AnyValue_DoubleValue:
		return model.DoubleValue(val.DoubleValue), true
	case *commonpb.AnyValue_BytesValue:
		return model.BytesValue(val.BytesValue), true
	case *commonpb.AnyValue_ArrayValue:
		var values []model.AttributeValue
		if val.ArrayValue != nil {
			values = make([]model.AttributeValue, 0, len(val.ArrayValue.Values))
			for _, el := range val.ArrayValue.Values {
				if conv, ok := convertAnyValue(el); ok {
					values = append(values, conv)
				}
			}
		}
		return model.ArrayValue(values), true
	default:
		// Kvlist values have no flat representation.
		return model.AttributeValue{}, false
	}
}

// convertAnyValueToString renders an AnyValue for contexts that only
// accept text, like a log body. Reports false when the value is unset.
func convertAnyValueToString(v *commonpb.AnyValue) (string, bool) {
	if v == nil || v.Value == nil {
		return "", false
	}
	switch val := v.Value.(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue, true
	case *commonpb.AnyValue_BoolValue:
		if val.BoolValue {
			return "true", true
		}
		return "false", true
	case *commonpb.AnyValue_IntValue:
		return model.IntValue(val.IntValue).String(), true
	case *commonpb.AnyValue_DoubleValue:
		return model.DoubleValue(val.DoubleValue).String(), true
	case *commonpb.AnyValue_BytesValue:
		return bytesToHex(val.BytesValue), true
	case *commonpb.AnyValue_ArrayValue:
		var parts []string
		if val.ArrayValue != nil {
			for _, el := range val.ArrayValue.Values {
				if s, ok := convertAnyValueToString(el); ok {
					parts = append(parts, s)
				}
			}
		}
		return "[" + strings.Join(parts, ",") + "]", true
	default:
		return "<kvlist unsupported>", true
	}
}

// convertAttributes flattens a KeyValue list, dropping entries whose
// value is unset or unrepresentable.
func convertAttributes(kvs []*commonpb.KeyValue) model.Attributes {
	attrs := make(model.Attributes, len(kvs))
	for _, kv := range kvs {
		if kv == nil {
			continue
		}
		if v, ok := convertAnyValue(kv.Value); ok {
			attrs[kv.Key] = v
		}
	}
	return attrs
}

func convertResource(r *resourcepb.Resource) model.Resource {
	if r == nil {
		return model.Resource{Attributes: model.Attributes{}}
	}
	return model.Resource{Attributes: convertAttributes(r.Attributes)}
}

// resourceServiceName pulls service.name off the resource so it can be
// stamped onto every record in the batch.
func resourceServiceName(r *resourcepb.Resource) *string {
	if r == nil {
		return nil
	}
	res := convertResource(r)
	if name, ok := res.ServiceName(); ok {
		return &name
	}
	return nil
}
