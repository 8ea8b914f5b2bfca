// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package watcher polls a source directory and uploads files that
// have not been uploaded before. Detection is by name against the
// upload history: a file already in history is never re-examined, so
// mutating or deleting a known file is outside the contract (the
// store is append-only and could not represent either).
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/benzlock/fropbox/lib/clock"
	"github.com/benzlock/fropbox/lib/history"
	"github.com/benzlock/fropbox/lib/store"
)

// Uploader is the single operation the watcher needs from the upload
// pipeline.
type Uploader interface {
	Upload(ctx context.Context, name string) error
}

// Config holds configuration for creating a Watcher.
type Config struct {
	// Dir is the directory to poll. Only regular files directly in
	// the directory are considered; subdirectories are ignored.
	Dir string

	// Uploader uploads a newly discovered file.
	Uploader Uploader

	// History is the record of completed uploads, shared with the
	// uploader. The watcher only reads it.
	History *history.History

	// Interval is the polling period.
	Interval time.Duration

	// Clock abstracts time for tests. If nil, clock.Real() is used.
	Clock clock.Clock

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Watcher polls a directory and uploads new files.
type Watcher struct {
	dir      string
	uploader Uploader
	history  *history.History
	interval time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a Watcher.
func New(config Config) (*Watcher, error) {
	if config.Dir == "" {
		return nil, fmt.Errorf("watcher: Dir is required")
	}
	if config.Uploader == nil {
		return nil, fmt.Errorf("watcher: Uploader is required")
	}
	if config.History == nil {
		return nil, fmt.Errorf("watcher: History is required")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("watcher: Interval must be positive, got %v", config.Interval)
	}
	c := config.Clock
	if c == nil {
		c = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		dir:      config.Dir,
		uploader: config.Uploader,
		history:  config.History,
		interval: config.Interval,
		clock:    c,
		logger:   logger,
	}, nil
}

// Check scans the directory once and uploads every file not yet in
// history. A failed upload is logged and skipped — it stays out of
// history, so the next Check retries it. Only a failed directory scan
// is returned as an error.
func (w *Watcher) Check(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", w.dir, err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			// Hidden files, including the client's own history file
			// when it lives in the watched directory.
			continue
		}
		if err := store.ValidateName(name); err != nil {
			w.logger.Debug("skipping file with unusable name", "name", name, "error", err)
			continue
		}
		if w.history.Known(name) {
			continue
		}

		w.logger.Info("uploading new file", "name", name)
		if err := w.uploader.Upload(ctx, name); err != nil {
			w.logger.Error("upload failed", "name", name, "error", err)
		}
	}
	return nil
}

// Run checks immediately, then on every tick of the polling interval,
// until ctx is canceled. Scan errors are logged, not fatal — a
// transiently unreadable directory should not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Check(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("directory scan failed", "dir", w.dir, "error", err)
	}

	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Check(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("directory scan failed", "dir", w.dir, "error", err)
			}
		}
	}
}
