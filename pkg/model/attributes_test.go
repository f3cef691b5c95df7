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
	"testing"
)

func TestAttributesTypedGetters(t *testing.T) {
	attrs := Attributes{
		"str":  StringValue("hello"),
		"int":  IntValue(42),
		"dbl":  DoubleValue(3.5),
		"bool": BoolValue(true),
	}

	if v, ok := attrs.GetString("str"); !ok || v != "hello" {
		t.Errorf("GetString(str) = %q, %v", v, ok)
	}
	if v, ok := attrs.GetInt("int"); !ok || v != 42 {
		t.Errorf("GetInt(int) = %d, %v", v, ok)
	}
	if v, ok := attrs.GetDouble("dbl"); !ok || v != 3.5 {
		t.Errorf("GetDouble(dbl) = %f, %v", v, ok)
	}
	if v, ok := attrs.GetBool("bool"); !ok || !v {
		t.Errorf("GetBool(bool) = %v, %v", v, ok)
	}
}

func TestAttributesGetterKindMismatch(t *testing.T) {
	attrs := Attributes{"int": IntValue(42)}

	if _, ok := attrs.GetString("int"); ok {
		t.Error("GetString on an int value should report false")
	}
	if _, ok := attrs.GetDouble("int"); ok {
		t.Error("GetDouble on an int value should report false")
	}
	if _, ok := attrs.GetInt("missing"); ok {
		t.Error("GetInt on a missing key should report false")
	}
}

func TestAttributeValueString(t *testing.T) {
	tests := []struct {
		name string
		v    AttributeValue
		want string
	}{
		{"string", StringValue("plain"), "plain"},
		{"int", IntValue(-7), "-7"},
		{"double", DoubleValue(2.5), "2.5"},
		{"bool", BoolValue(false), "false"},
		{"bytes", BytesValue([]byte{0x00, 0xab, 0xff}), "00abff"},
		{
			"array",
			ArrayValue([]AttributeValue{StringValue("a"), IntValue(1)}),
			"[a,1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttributeValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    AttributeValue
	}{
		{"string", StringValue("hello")},
		{"int", IntValue(123)},
		{"double", DoubleValue(1.25)},
		{"bool", BoolValue(true)},
		{"array", ArrayValue([]AttributeValue{StringValue("x"), BoolValue(true)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got AttributeValue
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal %s: %v", data, err)
			}
			if got.Kind() != tt.v.Kind() || got.String() != tt.v.String() {
				t.Errorf("round trip: got %v (%q), want %v (%q)",
					got.Kind(), got.String(), tt.v.Kind(), tt.v.String())
			}
		})
	}
}

func TestAttributeValueJSONUntaggedForms(t *testing.T) {
	var v AttributeValue

	if err := json.Unmarshal([]byte(`"text"`), &v); err != nil || v.Kind() != KindString {
		t.Errorf("string form decoded as %v, err %v", v.Kind(), err)
	}
	if err := json.Unmarshal([]byte(`42`), &v); err != nil || v.Kind() != KindInt {
		t.Errorf("integral number decoded as %v, err %v", v.Kind(), err)
	}
	if err := json.Unmarshal([]byte(`4.5`), &v); err != nil || v.Kind() != KindDouble {
		t.Errorf("fractional number decoded as %v, err %v", v.Kind(), err)
	}
	// Small integer arrays read back as bytes, matching how byte values
	// are written.
	if err := json.Unmarshal([]byte(`[1,2,3]`), &v); err != nil || v.Kind() != KindBytes {
		t.Errorf("byte array decoded as %v, err %v", v.Kind(), err)
	}
	if err := json.Unmarshal([]byte(`["a","b"]`), &v); err != nil || v.Kind() != KindArray {
		t.Errorf("string array decoded as %v, err %v", v.Kind(), err)
	}
	if err := json.Unmarshal([]byte(`{"k":1}`), &v); err == nil {
		t.Error("object form should fail to decode")
	}
}

func TestAttributeValueListDecodeAmbiguity(t *testing.T) {
	// The untagged list encoding has two known collision points; pin the
	// documented resolution so a codec change cannot drift silently.
	var v AttributeValue

	// Empty bytes marshal to [] and come back as an empty array.
	data, err := json.Marshal(BytesValue([]byte{}))
	if err != nil || string(data) != "[]" {
		t.Fatalf("BytesValue([]) marshaled to %q, err %v", data, err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode []: %v", err)
	}
	if v.Kind() != KindArray {
		t.Errorf("empty list decoded as %v, want KindArray", v.Kind())
	}
	if arr, _ := v.AsArray(); len(arr) != 0 {
		t.Errorf("empty list decoded with %d elements", len(arr))
	}

	// An int array within [0,255] comes back as bytes.
	data, err = json.Marshal(ArrayValue([]AttributeValue{IntValue(7), IntValue(200)}))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindBytes {
		t.Errorf("small-int array decoded as %v, want KindBytes", v.Kind())
	}
	if b, _ := v.AsBytes(); string(b) != string([]byte{7, 200}) {
		t.Errorf("decoded bytes = %v", b)
	}

	// One out-of-range element keeps the array an array.
	if err := json.Unmarshal([]byte(`[1,256]`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Kind() != KindArray {
		t.Errorf("[1,256] decoded as %v, want KindArray", v.Kind())
	}
}
