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
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/glint/pkg/storage"
)

// NewRouter builds the API engine: CORS, request ids, the /api routes,
// Prometheus metrics, and the embedded UI for everything else.
func NewRouter(store *storage.Storage, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())

	// The UI is served from the same origin in normal use; permissive
	// CORS keeps local dashboards and curl-from-anywhere workflows easy.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	router.Use(cors.New(corsConfig))

	handlers := NewHandlers(store, log)
	RegisterRoutes(router.Group("/api"), handlers)

	// Monitors probe the root path; keep it answering alongside
	// /api/health so the UI catch-all never swallows it.
	router.GET("/health", handlers.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(serveUI)

	return router
}

// RegisterRoutes registers the query API endpoints.
//
// Endpoints:
//   - GET /api/traces - List recent traces with filters
//   - GET /api/traces/:id - Get one trace with all spans
//   - GET /api/logs - List recent log records with filters
//   - GET /api/services - List known service names
//   - GET /api/health - Health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	rg.GET("/traces", handlers.HandleListTraces)
	rg.GET("/traces/:id", handlers.HandleGetTrace)
	rg.GET("/logs", handlers.HandleListLogs)
	rg.GET("/services", handlers.HandleListServices)
	rg.GET("/health", handlers.HandleHealth)
}

// requestIDMiddleware echoes the caller's X-Request-ID or mints one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
