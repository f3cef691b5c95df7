// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model defines the flat internal telemetry model shared by the
// collector, the store, and the query API. Spans, logs and metrics arrive
// as OTLP wire messages, are flattened into these types, and persist and
// serve in this shape.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValueKind discriminates the variants of AttributeValue.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindDouble
	KindBool
	KindBytes
	KindArray
)

// AttributeValue is a closed variant type for telemetry attribute values:
// string, 64-bit int, double, bool, byte slice, or a list of values.
// Nested key-value lists are not representable; the collector drops them
// at conversion time.
type AttributeValue struct {
	kind  ValueKind
	str   string
	num   int64
	dbl   float64
	bln   bool
	bytes []byte
	arr   []AttributeValue
}

func StringValue(s string) AttributeValue { return AttributeValue{kind: KindString, str: s} }
func IntValue(i int64) AttributeValue     { return AttributeValue{kind: KindInt, num: i} }
func DoubleValue(f float64) AttributeValue {
	return AttributeValue{kind: KindDouble, dbl: f}
}
func BoolValue(b bool) AttributeValue    { return AttributeValue{kind: KindBool, bln: b} }
func BytesValue(b []byte) AttributeValue { return AttributeValue{kind: KindBytes, bytes: b} }
func ArrayValue(vs []AttributeValue) AttributeValue {
	return AttributeValue{kind: KindArray, arr: vs}
}

// Kind reports which variant this value holds.
func (v AttributeValue) Kind() ValueKind { return v.kind }

func (v AttributeValue) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v AttributeValue) AsInt() (int64, bool)     { return v.num, v.kind == KindInt }
func (v AttributeValue) AsDouble() (float64, bool) {
	return v.dbl, v.kind == KindDouble
}
func (v AttributeValue) AsBool() (bool, bool)    { return v.bln, v.kind == KindBool }
func (v AttributeValue) AsBytes() ([]byte, bool) { return v.bytes, v.kind == KindBytes }
func (v AttributeValue) AsArray() ([]AttributeValue, bool) {
	return v.arr, v.kind == KindArray
}

// String renders a value for display: strings verbatim, numbers and bools
// in decimal form, bytes as lowercase hex, arrays comma-joined in brackets.
func (v AttributeValue) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindDouble:
		return strconv.FormatFloat(v.dbl, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.bln)
	case KindBytes:
		var b strings.Builder
		for _, c := range v.bytes {
			fmt.Fprintf(&b, "%02x", c)
		}
		return b.String()
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return ""
	}
}

// MarshalJSON encodes the value untagged: each variant serializes as its
// natural JSON form. Bytes become an array of numbers, not base64, so
// UnmarshalJSON can recover them. The encoding is not fully reversible:
// bytes and an int array whose elements all fit in [0,255] share one JSON
// shape, and the decoder picks a variant as documented on unmarshalList.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	case KindDouble:
		return json.Marshal(v.dbl)
	case KindBool:
		return json.Marshal(v.bln)
	case KindBytes:
		ints := make([]int, len(v.bytes))
		for i, c := range v.bytes {
			ints[i] = int(c)
		}
		return json.Marshal(ints)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	default:
		return nil, fmt.Errorf("attribute value: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON decodes an untagged value. Ambiguity is resolved the same
// way it was written: an integral number is an int, a fractional one a
// double, and an array whose elements are all integers in [0,255] is a
// byte slice.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return fmt.Errorf("attribute value: cannot decode %q", trimmed)
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
		return nil
	case '[':
		return v.unmarshalList(data)
	case '{':
		return fmt.Errorf("attribute value: objects are not supported")
	default:
		if !strings.ContainsAny(trimmed, ".eE") {
			i, err := strconv.ParseInt(trimmed, 10, 64)
			if err == nil {
				*v = IntValue(i)
				return nil
			}
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("attribute value: bad number %q", trimmed)
		}
		*v = DoubleValue(f)
		return nil
	}
}

// unmarshalList decodes a JSON array. A non-empty array whose elements
// are all integers in [0,255] decodes as bytes, anything else as an
// array. Two inputs are therefore ambiguous and resolve against the
// byte-heavy common case: an int array within [0,255] comes back as
// bytes, and empty bytes come back as an empty array.
func (v *AttributeValue) unmarshalList(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	bytes := make([]byte, 0, len(raw))
	isBytes := len(raw) > 0
	for _, r := range raw {
		n, err := strconv.ParseInt(strings.TrimSpace(string(r)), 10, 64)
		if err != nil || n < 0 || n > 255 {
			isBytes = false
			break
		}
		bytes = append(bytes, byte(n))
	}
	if isBytes {
		*v = BytesValue(bytes)
		return nil
	}
	arr := make([]AttributeValue, len(raw))
	for i, r := range raw {
		if err := arr[i].UnmarshalJSON(r); err != nil {
			return err
		}
	}
	*v = ArrayValue(arr)
	return nil
}

// Attributes maps attribute keys to values.
type Attributes map[string]AttributeValue

// GetString returns the value for key if it is a string. A key holding a
// different variant reports false, same as a missing key.
func (a Attributes) GetString(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetInt returns the value for key if it is an int.
func (a Attributes) GetInt(key string) (int64, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// GetDouble returns the value for key if it is a double.
func (a Attributes) GetDouble(key string) (float64, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	return v.AsDouble()
}

// GetBool returns the value for key if it is a bool.
func (a Attributes) GetBool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}
