// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/glint/services/collector"
	"github.com/AleutianAI/glint/services/server"
)

// runServe starts the three listeners on shared storage and blocks until
// a listener fails or the process receives SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	logger := newLogger("glint")
	defer logger.Close()
	log := logger.Slog()

	log.Info("starting glint",
		"db", store.Path(),
		"api_port", apiPort,
		"grpc_port", grpcPort,
		"http_port", httpPort)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collectorCfg := collector.DefaultConfig()
	collectorCfg.GRPCPort = grpcPort
	collectorCfg.HTTPPort = httpPort

	apiCfg := server.DefaultConfig()
	apiCfg.Port = apiPort

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return collector.NewService(collectorCfg, store, log).Run(ctx)
	})
	g.Go(func() error {
		return server.NewService(apiCfg, store, log).Run(ctx)
	})

	fmt.Printf("glint is up\n")
	fmt.Printf("  dashboard  http://localhost:%d\n", apiPort)
	fmt.Printf("  otlp/grpc  localhost:%d\n", grpcPort)
	fmt.Printf("  otlp/http  localhost:%d\n", httpPort)
	fmt.Printf("  database   %s\n", store.Path())

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("glint stopped")
	return nil
}
