// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local implements Appender on a filesystem directory. Every stored
// file is a plain file directly under the root; appends use O_APPEND
// so a file's write position is always its current size.
//
// Local is safe for concurrent appends to different files. Appends to
// the same file must be serialized by the caller — the protocol
// already requires plan steps to be applied strictly in order.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir, creating the directory
// if it does not exist.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return &Local{root: dir}, nil
}

// Root returns the store's root directory.
func (l *Local) Root() string { return l.root }

// AppendLiteral appends data to the end of target, creating it if
// absent.
func (l *Local) AppendLiteral(ctx context.Context, target string, data []byte) error {
	if err := ValidateName(target); err != nil {
		return fmt.Errorf("append literal: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(l.root, target), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s for append: %w", target, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("appending %d bytes to %s: %w", len(data), target, err)
	}
	return nil
}

// AppendCopy reads [offset, offset+length) from source and appends it
// to the end of target, creating target if absent. A source that does
// not exist or holds fewer than offset+length bytes is an error — the
// referenced range was recorded when source was uploaded, so a miss
// means the store no longer matches the client's history.
func (l *Local) AppendCopy(ctx context.Context, target, source string, offset, length int64) error {
	if err := ValidateName(target); err != nil {
		return fmt.Errorf("append copy: %w", err)
	}
	if err := ValidateName(source); err != nil {
		return fmt.Errorf("append copy: %w", err)
	}
	if offset < 0 || length < 0 {
		return fmt.Errorf("append copy: negative range %d+%d", offset, length)
	}

	src, err := os.Open(filepath.Join(l.root, source))
	if err != nil {
		return fmt.Errorf("opening copy source %s: %w", source, err)
	}
	defer src.Close()

	data := make([]byte, length)
	if _, err := io.ReadFull(io.NewSectionReader(src, offset, length), data); err != nil {
		return fmt.Errorf("reading %d bytes at offset %d of %s: %w", length, offset, source, err)
	}

	return l.AppendLiteral(ctx, target, data)
}
