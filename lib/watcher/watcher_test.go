// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/benzlock/fropbox/lib/clock"
	"github.com/benzlock/fropbox/lib/history"
)

// fakeUploader records upload calls and mimics the real uploader's
// contract: successful uploads land in history, failed ones do not.
type fakeUploader struct {
	mu      sync.Mutex
	history *history.History
	uploads []string
	err     error
}

func (f *fakeUploader) Upload(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name)
	if f.err != nil {
		return f.err
	}
	f.history.Record(history.Entry{Name: name})
	return nil
}

func (f *fakeUploader) uploaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.uploads))
	copy(out, f.uploads)
	return out
}

func newTestWatcher(t *testing.T, dir string, c clock.Clock) (*Watcher, *fakeUploader) {
	t.Helper()
	h := history.New()
	fake := &fakeUploader{history: h}
	w, err := New(Config{
		Dir:      dir,
		Uploader: fake,
		History:  h,
		Interval: time.Second,
		Clock:    c,
	})
	if err != nil {
		t.Fatal(err)
	}
	return w, fake
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckUploadsNewFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "b.txt")
	writeFile(t, dir, "a.txt")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, ".hidden")

	w, fake := newTestWatcher(t, dir, nil)
	if err := w.Check(ctx); err != nil {
		t.Fatal(err)
	}

	// ReadDir returns sorted entries; the subdirectory and the hidden
	// file are ignored.
	want := []string{"a.txt", "b.txt"}
	if got := fake.uploaded(); !reflect.DeepEqual(got, want) {
		t.Errorf("uploads = %v, want %v", got, want)
	}
}

func TestCheckSkipsKnownFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "old.txt")

	w, fake := newTestWatcher(t, dir, nil)
	if err := w.Check(ctx); err != nil {
		t.Fatal(err)
	}
	if err := w.Check(ctx); err != nil {
		t.Fatal(err)
	}

	if got := fake.uploaded(); len(got) != 1 {
		t.Errorf("uploads = %v, want old.txt exactly once", got)
	}
}

func TestCheckRetriesFailedUploads(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "flaky.txt")

	w, fake := newTestWatcher(t, dir, nil)
	fake.err = errors.New("server down")

	if err := w.Check(ctx); err != nil {
		t.Fatal(err)
	}
	fake.err = nil
	if err := w.Check(ctx); err != nil {
		t.Fatal(err)
	}

	want := []string{"flaky.txt", "flaky.txt"}
	if got := fake.uploaded(); !reflect.DeepEqual(got, want) {
		t.Errorf("uploads = %v, want the failed upload retried: %v", got, want)
	}
}

func TestRunUploadsOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()
	fakeClock := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	w, fake := newTestWatcher(t, dir, fakeClock)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Wait for the loop to register its ticker, then drop a file in
	// and advance past one interval.
	waitFor(t, func() bool { return fakeClock.TickerCount() == 1 })
	writeFile(t, dir, "late.txt")
	fakeClock.Advance(time.Second)

	waitFor(t, func() bool {
		uploads := fake.uploaded()
		return len(uploads) == 1 && uploads[0] == "late.txt"
	})

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestRunChecksImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()
	writeFile(t, dir, "present.txt")
	fakeClock := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	w, fake := newTestWatcher(t, dir, fakeClock)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The file present at startup is uploaded without any clock
	// advance.
	waitFor(t, func() bool {
		uploads := fake.uploaded()
		return len(uploads) == 1 && uploads[0] == "present.txt"
	})

	cancel()
	<-done
}

// waitFor polls condition until it holds or the test deadline budget
// is spent. The fake clock controls the watcher's schedule; real time
// here only bounds how long we wait for goroutine handoff.
func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestNewValidation(t *testing.T) {
	h := history.New()
	fake := &fakeUploader{history: h}

	tests := []struct {
		name   string
		config Config
	}{
		{"missing dir", Config{Uploader: fake, History: h, Interval: time.Second}},
		{"missing uploader", Config{Dir: "x", History: h, Interval: time.Second}},
		{"missing history", Config{Dir: "x", Uploader: fake, Interval: time.Second}},
		{"zero interval", Config{Dir: "x", Uploader: fake, History: h}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.config); err == nil {
				t.Error("New = nil, want error")
			}
		})
	}
}
