//-------------------------------------------------------------------------
//
// pgEdge Search Server
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pgEdge/pgedge-search-server/internal/catalog"
	"github.com/pgEdge/pgedge-search-server/internal/config"
	"github.com/pgEdge/pgedge-search-server/internal/engine"
	"github.com/pgEdge/pgedge-search-server/internal/server"
)

// Version information - set via ldflags during build
var (
	version   = "1.0.0-alpha1"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help message")
		showOpenAPI = flag.Bool("openapi", false, "Output OpenAPI specification and exit")
		configPath  = flag.String("config", "", "Path to configuration file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `pgEdge Search Server - Multilingual document search

Usage:
    pgedge-search-server [options]

Options:
    -config string
        Path to configuration file. If not specified, searches:
        1. /etc/pgedge/pgedge-search-server.yaml
        2. pgedge-search-server.yaml (in binary directory)

    -openapi
        Output OpenAPI v3 specification as JSON and exit

    -debug
        Enable debug logging

    -version
        Show version information and exit

    -help
        Show this help message and exit

For more information, visit: https://github.com/pgEdge/pgedge-search-server
`)
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("pgEdge Search Server\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Build Time: %s\n", buildTime)
		fmt.Printf("  Git Commit: %s\n", gitCommit)
		os.Exit(0)
	}

	if *showOpenAPI {
		spec := server.BuildOpenAPISpec()
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(spec); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode OpenAPI spec: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Info("configuration loaded",
		"model", cfg.Model.Name,
		"languages", len(cfg.Languages),
		"snippet_sentences", cfg.Snippet.Sentences)

	ctx := context.Background()

	store, err := catalog.Open(ctx, cfg.Catalog, logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}

	start := time.Now()
	eng, err := engine.New(ctx, engine.Options{
		Config:  cfg,
		Logger:  logger,
		Catalog: store,
	})
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to build search engine: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			logger.Error("failed to close search engine", "error", err)
		}
	}()
	logger.Info("models built", "duration", time.Since(start))

	srv := server.New(cfg, eng, logger)

	// Handle graceful shutdown
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-shutdownCh:
		logger.Info("received shutdown signal", "signal", sig)

		// Give 30 seconds for graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(ctx)
	}
}
