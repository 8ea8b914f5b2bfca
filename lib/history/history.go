// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package history records which files have already been uploaded to
// the server, so the client can offer them as copy candidates for
// later uploads and can skip files it already sent. The record is
// persisted as CBOR so a restarted client does not re-upload (and the
// server does not re-append) files from earlier runs.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// Version is the current on-disk record format version.
const Version = 1

// Entry describes one uploaded file.
type Entry struct {
	// Name is the file's name on the server (and in the source
	// directory — the two are the same by protocol).
	Name string `json:"name"`

	// Size is the file's content length in bytes at upload time.
	Size int64 `json:"size"`

	// Hash is the BLAKE3 hash of the content at upload time. Used
	// only to recognize an already-uploaded file after a restart —
	// never for matching, which is pure sequence alignment.
	Hash [32]byte `json:"hash"`
}

// record is the on-disk CBOR structure.
type record struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// History is the set of uploaded files, keyed by name. Not safe for
// concurrent use; the watcher owns it and uploads sequentially.
type History struct {
	entries map[string]Entry
}

// New creates an empty history.
func New() *History {
	return &History{entries: make(map[string]Entry)}
}

// HashContent computes the content hash recorded for uploaded files.
func HashContent(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// Known reports whether a file with this name has been uploaded.
func (h *History) Known(name string) bool {
	_, ok := h.entries[name]
	return ok
}

// Lookup returns the entry for name, if present.
func (h *History) Lookup(name string) (Entry, bool) {
	e, ok := h.entries[name]
	return e, ok
}

// Record adds or replaces the entry for e.Name.
func (h *History) Record(e Entry) {
	h.entries[e.Name] = e
}

// Names returns the recorded file names in sorted order. The order is
// part of plan determinism: candidates are always offered to the
// planner in this order.
func (h *History) Names() []string {
	names := make([]string, 0, len(h.entries))
	for name := range h.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of recorded files.
func (h *History) Len() int { return len(h.entries) }

// cborEncMode uses Core Deterministic Encoding so the same history
// always produces identical bytes on disk.
var cborEncMode cbor.EncMode

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("history: CBOR encoder initialization failed: " + err.Error())
	}
	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("history: CBOR decoder initialization failed: " + err.Error())
	}
}

// Load reads a history file. A missing file is not an error — it
// yields an empty history, the state of a first run.
func Load(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	}

	var rec record
	if err := cborDecMode.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding history %s: %w", path, err)
	}
	if rec.Version < 1 {
		return nil, fmt.Errorf("history %s: version %d is invalid (minimum 1)", path, rec.Version)
	}

	h := New()
	for _, e := range rec.Entries {
		h.entries[e.Name] = e
	}
	return h, nil
}

// Save writes the history to path atomically (write to a temp file in
// the same directory, then rename).
func (h *History) Save(path string) error {
	rec := record{Version: Version, Entries: make([]Entry, 0, len(h.entries))}
	for _, name := range h.Names() {
		rec.Entries = append(rec.Entries, h.entries[name])
	}

	data, err := cborEncMode.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing history: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing history %s: %w", path, err)
	}
	return nil
}
