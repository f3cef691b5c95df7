// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"embed"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed all:dist
var distFS embed.FS

// serveUI serves the embedded single-page dashboard. Routes the client
// router owns (extensionless paths) fall back to index.html; missing
// real assets stay 404 so a bad bundle reference fails loudly.
func serveUI(c *gin.Context) {
	reqPath := c.Request.URL.Path

	if strings.Contains(reqPath, "..") {
		c.String(http.StatusBadRequest, "invalid path")
		return
	}
	if reqPath == "/" || strings.HasSuffix(reqPath, "/") {
		reqPath = "/index.html"
	}

	assetPath := "dist/" + strings.TrimPrefix(reqPath, "/")
	data, err := distFS.ReadFile(assetPath)
	if err != nil {
		if path.Ext(reqPath) != "" {
			c.String(http.StatusNotFound, "not found")
			return
		}
		// SPA route like /traces/abc: hand the app shell back and let
		// the client router take it from here.
		data, err = distFS.ReadFile("dist/index.html")
		if err != nil {
			c.String(http.StatusNotFound, "not found")
			return
		}
		reqPath = "/index.html"
	}

	contentType := mime.TypeByExtension(path.Ext(reqPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}
