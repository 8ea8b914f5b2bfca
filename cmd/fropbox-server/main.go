// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// fropbox-server receives delta-encoded uploads and materializes them
// into plain files in a destination directory. It exposes two
// endpoints: POST /upload/{name} appends a literal chunk to a file,
// and POST /copy appends a byte range copied from a previously
// uploaded file. Together the two operations let a client reconstruct
// any file while only ever transferring content the server has not
// seen before.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/benzlock/fropbox/lib/config"
	"github.com/benzlock/fropbox/lib/store"
	"github.com/benzlock/fropbox/lib/storehttp"
	"github.com/benzlock/fropbox/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
		listen      string
		storeDir    string
	)
	flagSet := pflag.NewFlagSet("fropbox-server", pflag.ContinueOnError)
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.StringVar(&configPath, "config", "", "path to YAML configuration file")
	flagSet.StringVar(&listen, "listen", "", "listen address (overrides configuration)")
	flagSet.StringVar(&storeDir, "store-dir", "", "destination directory for received files (overrides configuration)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("fropbox-server %s\n", version.Info())
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if storeDir != "" {
		cfg.Server.StoreDir = storeDir
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	local, err := store.NewLocal(cfg.Server.StoreDir)
	if err != nil {
		return fmt.Errorf("opening store directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           storehttp.NewHandler(local, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()
	logger.Info("server listening", "address", cfg.Server.Listen, "store_dir", local.Root())

	select {
	case err := <-serveErr:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// loadConfig reads configuration from the --config flag when given,
// falling back to the FROPBOX_CONFIG environment variable and then
// to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
