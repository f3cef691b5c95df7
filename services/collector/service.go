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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/AleutianAI/glint/pkg/storage"
)

// Config holds the collector's listen ports.
type Config struct {
	// GRPCPort is the OTLP/gRPC listen port.
	GRPCPort int

	// HTTPPort is the OTLP/HTTP listen port.
	HTTPPort int

	// ShutdownTimeout bounds how long a graceful stop may take.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the standard OTLP ports.
func DefaultConfig() Config {
	return Config{
		GRPCPort:        4317,
		HTTPPort:        4318,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Service runs the gRPC and HTTP receivers against one store.
type Service struct {
	cfg   Config
	store *storage.Storage
	log   *slog.Logger
}

func NewService(cfg Config, store *storage.Storage, log *slog.Logger) *Service {
	return &Service{cfg: cfg, store: store, log: log}
}

// Run serves until ctx is cancelled, then stops both listeners
// gracefully. A clean shutdown returns nil.
func (s *Service) Run(ctx context.Context) error {
	grpcSrv := grpc.NewServer()
	RegisterGRPC(grpcSrv, s.store, s.log)

	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc :%d: %w", s.cfg.GRPCPort, err)
	}

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.HTTPPort),
		Handler: NewHTTPRouter(s.store, s.log),
	}

	s.log.Info("collector listening",
		"grpc", grpcLis.Addr().String(), "http", httpSrv.Addr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcSrv.Serve(grpcLis)
	})
	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.log.Info("collector shutting down")
		grpcSrv.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
