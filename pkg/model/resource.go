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

// Resource is the entity that produced a batch of telemetry, described
// entirely by its attributes.
type Resource struct {
	Attributes Attributes `json:"attributes"`
}

// ServiceName returns the standard service.name attribute.
func (r *Resource) ServiceName() (string, bool) {
	return r.Attributes.GetString("service.name")
}

// ServiceVersion returns the standard service.version attribute.
func (r *Resource) ServiceVersion() (string, bool) {
	return r.Attributes.GetString("service.version")
}

// ServiceInstanceID returns the standard service.instance.id attribute.
func (r *Resource) ServiceInstanceID() (string, bool) {
	return r.Attributes.GetString("service.instance.id")
}
