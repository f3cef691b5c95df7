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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/glint/pkg/storage"
)

// Config holds the API server settings.
type Config struct {
	// Port is the HTTP listen port for the API and UI.
	Port int

	// ShutdownTimeout bounds how long a graceful stop may take.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the standard API port.
func DefaultConfig() Config {
	return Config{
		Port:            7070,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Service runs the query API and UI server.
type Service struct {
	cfg   Config
	store *storage.Storage
	log   *slog.Logger
}

func NewService(cfg Config, store *storage.Storage, log *slog.Logger) *Service {
	return &Service{cfg: cfg, store: store, log: log}
}

// Run serves until ctx is cancelled, then stops gracefully. A clean
// shutdown returns nil.
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: NewRouter(s.store, s.log),
	}

	s.log.Info("api listening", "addr", srv.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("api shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
