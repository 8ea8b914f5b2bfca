// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistoryRecordAndLookup(t *testing.T) {
	h := New()
	if h.Known("a.txt") {
		t.Error("empty history knows a.txt")
	}

	entry := Entry{Name: "a.txt", Size: 42, Hash: HashContent([]byte("content"))}
	h.Record(entry)

	if !h.Known("a.txt") {
		t.Error("recorded file not known")
	}
	got, ok := h.Lookup("a.txt")
	if !ok || got != entry {
		t.Errorf("Lookup = %+v, %v; want %+v, true", got, ok, entry)
	}
}

func TestHistoryNamesSorted(t *testing.T) {
	h := New()
	for _, name := range []string{"zebra", "apple", "mango"} {
		h.Record(Entry{Name: name})
	}
	want := []string{"apple", "mango", "zebra"}
	if got := h.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names = %v, want %v", got, want)
	}
}

func TestHistorySaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.cbor")

	h := New()
	h.Record(Entry{Name: "one.bin", Size: 10, Hash: HashContent([]byte("one"))})
	h.Record(Entry{Name: "two.bin", Size: 20, Hash: HashContent([]byte("two"))})
	if err := h.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded %d entries, want 2", loaded.Len())
	}
	for _, name := range []string{"one.bin", "two.bin"} {
		want, _ := h.Lookup(name)
		got, ok := loaded.Lookup(name)
		if !ok || got != want {
			t.Errorf("Lookup(%q) = %+v, %v; want %+v, true", name, got, ok, want)
		}
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	h, err := Load(filepath.Join(t.TempDir(), "does-not-exist.cbor"))
	if err != nil {
		t.Fatalf("Load of missing file = %v, want empty history", err)
	}
	if h.Len() != 0 {
		t.Errorf("history has %d entries, want 0", h.Len())
	}
}

func TestHistoryLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.cbor")
	if err := os.WriteFile(path, []byte("not cbor at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of corrupt file = nil, want error")
	}
}

func TestHashContentDistinguishesContent(t *testing.T) {
	if HashContent([]byte("a")) == HashContent([]byte("b")) {
		t.Error("different content produced identical hashes")
	}
	if HashContent([]byte("same")) != HashContent([]byte("same")) {
		t.Error("identical content produced different hashes")
	}
}
