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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	dbPath   string
	apiPort  int
	grpcPort int
	httpPort int
	logLevel string

	slowOnly     bool
	limitFlag    int
	serviceFlag  string
	levelFlag    string
	cleanAll     bool
	cleanConfirm bool

	cfg Config

	rootCmd = &cobra.Command{
		Use:   "glint",
		Short: "A local-first observability backend for development",
		Long: `Glint receives OpenTelemetry traces, logs, and metrics and stores
them in a per-project SQLite database. No agents, no cloud, no config
required: run 'glint serve' and point your OTLP exporter at localhost.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			applyConfig(cmd)
			return nil
		},
	}

	// --- Serve ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the collector, query API, and dashboard",
		Long: `Starts the OTLP gRPC receiver (default :4317), the OTLP HTTP
receiver (default :4318), and the query API with the web dashboard
(default :7070), all sharing one database. Runs until interrupted.`,
		RunE: runServe, // Defined in cmd_serve.go
	}

	// --- Query ---
	tracesCmd = &cobra.Command{
		Use:   "traces",
		Short: "List recent traces from the current project's database",
		RunE:  runTraces, // Defined in cmd_traces.go
	}
	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "List recent log records from the current project's database",
		RunE:  runLogs, // Defined in cmd_logs.go
	}

	// --- Maintenance ---
	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Delete the current project's database",
		RunE:  runClean, // Defined in cmd_clean.go
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show database location, size, and record counts",
		RunE:  runInfo, // Defined in cmd_info.go
	}

	// --- TUI ---
	tuiCmd = &cobra.Command{
		Use:   "tui",
		Short: "Browse stored telemetry in the terminal",
		RunE:  runTUI, // Defined in cmd_tui.go
	}
)

// applyConfig backfills file-config values onto flags the user did not
// set on the command line.
func applyConfig(cmd *cobra.Command) {
	flags := cmd.Flags()
	if cfg.DBPath != "" && !flags.Changed("db-path") {
		dbPath = cfg.DBPath
	}
	if cfg.Port != 0 && !flags.Changed("port") {
		apiPort = cfg.Port
	}
	if cfg.GRPCPort != 0 && !flags.Changed("grpc-port") {
		grpcPort = cfg.GRPCPort
	}
	if cfg.HTTPPort != 0 && !flags.Changed("http-port") {
		httpPort = cfg.HTTPPort
	}
	if cfg.LogLevel != "" && !flags.Changed("log-level") {
		logLevel = cfg.LogLevel
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "",
		"Database file to use instead of the per-project default")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&apiPort, "port", 7070, "Query API and dashboard port")
	serveCmd.Flags().IntVar(&grpcPort, "grpc-port", 4317, "OTLP gRPC receiver port")
	serveCmd.Flags().IntVar(&httpPort, "http-port", 4318, "OTLP HTTP receiver port")

	rootCmd.AddCommand(tracesCmd)
	tracesCmd.Flags().BoolVar(&slowOnly, "slow", false, "Only traces slower than 100ms")
	tracesCmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum traces to show")
	tracesCmd.Flags().StringVar(&serviceFlag, "service", "", "Filter by service name")

	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().StringVar(&serviceFlag, "service", "", "Filter by service name")
	logsCmd.Flags().StringVar(&levelFlag, "level", "", "Filter by level class (e.g. ERROR)")
	logsCmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum records to show")

	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "Delete every glint database, not just this project's")
	cleanCmd.Flags().BoolVarP(&cleanConfirm, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(tuiCmd)
}
