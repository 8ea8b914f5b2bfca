// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

// Package store defines the append-only store contract that transfer
// plans are applied through, and its two non-network implementations.
//
// The contract is exactly two operations: append literal bytes to a
// named file, or append a byte range copied from another file the
// store already holds. Files are created on first append and only ever
// grow; there is no truncation, overwrite, or delete. Applying a plan
// is therefore a strict in-order sequence of appends — each step lands
// at the write position the previous step left behind.
//
// Local implements the contract on a filesystem directory and is what
// the server wraps. Recorder implements it as an ordered in-memory log
// of invocations for tests. The live HTTP adapter lives in
// lib/storehttp; everything above this layer depends only on the
// Appender interface.
package store
