// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"strings"
)

// Appender is the append-only store contract. Both operations create
// the target file if it does not exist yet and append at its current
// end; neither can modify bytes already written.
//
// File identity is by name only. The caller must guarantee that a
// source named in AppendCopy still exists and is unchanged since it
// was recorded — the contract leaves behavior undefined when the
// source lacks length bytes at offset, and implementations here
// surface that as an error.
type Appender interface {
	// AppendLiteral appends data to the end of the file named target.
	AppendLiteral(ctx context.Context, target string, data []byte) error

	// AppendCopy appends length bytes read from source starting at
	// offset to the end of the file named target.
	AppendCopy(ctx context.Context, target, source string, offset, length int64) error
}

// ValidateName rejects file names that could escape a store root or
// collide with path syntax: empty names, path separators, and the
// dot and dot-dot components. Both Local and the HTTP server validate
// every name through this before touching the filesystem.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("file name is empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("file name %q contains a path separator", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("file name %q is a path component", name)
	}
	return nil
}
