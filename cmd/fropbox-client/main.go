// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// fropbox-client watches a source directory and uploads new files to
// a fropbox-server. Each upload is planned as a delta against the
// files already on the server: byte ranges the server has seen before
// are sent as copy references, and only genuinely new content travels
// over the wire as literal data. Upload history is persisted next to
// the source files so restarts do not re-upload.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/benzlock/fropbox/lib/clock"
	"github.com/benzlock/fropbox/lib/config"
	"github.com/benzlock/fropbox/lib/history"
	"github.com/benzlock/fropbox/lib/storehttp"
	"github.com/benzlock/fropbox/lib/uploader"
	"github.com/benzlock/fropbox/lib/version"
	"github.com/benzlock/fropbox/lib/watcher"
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
		sourceDir   string
		serverURL   string
		interval    string
	)
	flagSet := pflag.NewFlagSet("fropbox-client", pflag.ContinueOnError)
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.StringVar(&configPath, "config", "", "path to YAML configuration file")
	flagSet.StringVar(&sourceDir, "source", "", "directory to watch for new files (overrides configuration)")
	flagSet.StringVar(&serverURL, "server", "", "base URL of the fropbox server (overrides configuration)")
	flagSet.StringVar(&interval, "interval", "", "directory poll interval, e.g. 100ms (overrides configuration)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("fropbox-client %s\n", version.Info())
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
	if sourceDir != "" {
		cfg.Client.SourceDir = sourceDir
	}
	if serverURL != "" {
		cfg.Client.ServerURL = serverURL
	}
	if interval != "" {
		cfg.Client.Interval = interval
	}
	if err := cfg.Client.Validate(); err != nil {
		return err
	}
	pollInterval, err := cfg.Client.PollInterval()
	if err != nil {
		return err
	}

	hist, err := history.Load(cfg.Client.HistoryPath)
	if err != nil {
		return fmt.Errorf("loading upload history: %w", err)
	}

	client, err := storehttp.NewClient(storehttp.ClientConfig{
		BaseURL: cfg.Client.ServerURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	up, err := uploader.New(uploader.Config{
		Appender:       client,
		SourceDir:      cfg.Client.SourceDir,
		History:        hist,
		HistoryPath:    cfg.Client.HistoryPath,
		MinMatchLength: cfg.Client.MinMatchLength,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	watch, err := watcher.New(watcher.Config{
		Dir:      cfg.Client.SourceDir,
		Uploader: up,
		History:  hist,
		Interval: pollInterval,
		Clock:    clock.Real(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for new files",
		"source_dir", cfg.Client.SourceDir,
		"server_url", cfg.Client.ServerURL,
		"interval", pollInterval.String(),
		"known_files", hist.Len())

	if err := watch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
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
