// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"sync"
)

// Op kinds recorded by Recorder.
const (
	OpLiteral = "literal"
	OpCopy    = "copy"
)

// Op is one recorded Appender invocation with its arguments. For
// literal appends Data is a copy of the appended bytes and the copy
// fields are zero; for copy appends Data is nil.
type Op struct {
	Kind   string
	Target string
	Data   []byte
	Source string
	Offset int64
	Length int64
}

// Recorder implements Appender by recording every invocation in an
// ordered log. Tests assert directly on the Ops slice. The zero value
// is ready to use.
//
// Err, when set, is returned by every subsequent call (the call is
// still recorded), so tests can exercise failure paths.
type Recorder struct {
	mu  sync.Mutex
	ops []Op

	Err error
}

var _ Appender = (*Recorder)(nil)

// AppendLiteral records the literal append and returns Err.
func (r *Recorder) AppendLiteral(ctx context.Context, target string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	r.ops = append(r.ops, Op{Kind: OpLiteral, Target: target, Data: buf})
	return r.Err
}

// AppendCopy records the copy append and returns Err.
func (r *Recorder) AppendCopy(ctx context.Context, target, source string, offset, length int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: OpCopy, Target: target, Source: source, Offset: offset, Length: length})
	return r.Err
}

// Ops returns the recorded invocations in call order.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Reset clears the recorded log.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}
