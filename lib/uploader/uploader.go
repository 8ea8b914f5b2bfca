// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package uploader turns a local file into appends on the remote
// store. It loads the file and every candidate from upload history
// into memory, asks the planner for a transfer plan, and applies the
// plan's steps strictly in order through a store.Appender — literal
// steps as raw byte uploads, reference steps as server-side copies.
package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"

	"github.com/benzlock/fropbox/lib/history"
	"github.com/benzlock/fropbox/lib/plan"
	"github.com/benzlock/fropbox/lib/store"
)

// Config holds configuration for creating an Uploader.
type Config struct {
	// Appender is the store the plan is applied through.
	Appender store.Appender

	// SourceDir is the directory holding the files being uploaded.
	// Candidate files from history are read from here too.
	SourceDir string

	// History records previously uploaded files. Required: it is
	// both the candidate set and the record of completed uploads.
	History *history.History

	// HistoryPath, when non-empty, is where History is persisted
	// after each successful upload.
	HistoryPath string

	// MinMatchLength is the smallest shared run worth a reference
	// step. Zero or below selects plan.DefaultMinMatchLength.
	MinMatchLength int

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Uploader uploads files from a source directory, reusing remote
// bytes recorded in its history. Not safe for concurrent use: uploads
// mutate the shared history and candidates must reflect completed
// uploads only.
type Uploader struct {
	appender    store.Appender
	sourceDir   string
	history     *history.History
	historyPath string
	minMatch    int
	logger      *slog.Logger
}

// New creates an Uploader.
func New(config Config) (*Uploader, error) {
	if config.Appender == nil {
		return nil, fmt.Errorf("uploader: Appender is required")
	}
	if config.SourceDir == "" {
		return nil, fmt.Errorf("uploader: SourceDir is required")
	}
	if config.History == nil {
		return nil, fmt.Errorf("uploader: History is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		appender:    config.Appender,
		sourceDir:   config.SourceDir,
		history:     config.History,
		historyPath: config.HistoryPath,
		minMatch:    config.MinMatchLength,
		logger:      logger,
	}, nil
}

// Upload plans and applies the transfer of the named file, then
// records it in history. Read failures — the file itself or any
// candidate — abort before anything is sent. An append failure aborts
// mid-file and leaves the file out of history, so a later retry
// re-plans from scratch; the bytes already appended on the server are
// then duplicated, which the append-only protocol cannot avoid.
func (u *Uploader) Upload(ctx context.Context, name string) error {
	if err := store.ValidateName(name); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	target, closeTarget, err := u.mapFile(name)
	if err != nil {
		return err
	}
	defer closeTarget()

	sources, closeSources, err := u.mapCandidates(name)
	if err != nil {
		return err
	}
	defer closeSources()

	steps := plan.Build(target, sources, u.minMatch)
	if err := plan.Validate(steps, len(target)); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	var literalBytes, reusedBytes int
	for _, p := range plan.Payloads(target, steps) {
		if p.Step.IsLiteral() {
			if err := u.appender.AppendLiteral(ctx, name, p.Data); err != nil {
				return fmt.Errorf("upload %s: %w", name, err)
			}
			literalBytes += p.Step.Length
			continue
		}
		err := u.appender.AppendCopy(ctx, name, p.Step.SourceID,
			int64(p.Step.SourceStart), int64(p.Step.Length))
		if err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
		reusedBytes += p.Step.Length
	}

	u.history.Record(history.Entry{
		Name: name,
		Size: int64(len(target)),
		Hash: history.HashContent(target),
	})
	if u.historyPath != "" {
		if err := u.history.Save(u.historyPath); err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
	}

	u.logger.Info("uploaded file",
		"name", name,
		"size", len(target),
		"steps", len(steps),
		"literal_bytes", literalBytes,
		"reused_bytes", reusedBytes,
	)
	return nil
}

// mapFile memory-maps a file in the source directory for random
// access during matching. Empty files are returned as a nil slice —
// a zero-length mapping is not representable.
func (u *Uploader) mapFile(name string) ([]byte, func(), error) {
	path := filepath.Join(u.sourceDir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return nil, func() { f.Close() }, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return m, func() {
		m.Unmap()
		f.Close()
	}, nil
}

// mapCandidates maps every history file except the one being
// uploaded, in sorted name order — the order candidates are handed to
// the planner is fixed by the history, never by directory listing.
func (u *Uploader) mapCandidates(exclude string) ([]plan.Source, func(), error) {
	var sources []plan.Source
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, name := range u.history.Names() {
		if name == exclude {
			continue
		}
		data, closeFile, err := u.mapFile(name)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("candidate %s: %w", name, err)
		}
		closers = append(closers, closeFile)
		sources = append(sources, plan.Source{ID: name, Data: data})
	}
	return sources, closeAll, nil
}
