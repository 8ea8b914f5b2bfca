// Copyright 2026 The Fropbox Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLocalAppendLiteral(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := local.AppendLiteral(ctx, "a.txt", []byte("hello ")); err != nil {
		t.Fatal(err)
	}
	if err := local.AppendLiteral(ctx, "a.txt", []byte("world")); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(local.Root(), "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Errorf("file content = %q, want %q", got, "hello world")
	}
}

func TestLocalAppendCopy(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := local.AppendLiteral(ctx, "source.bin", []byte("0123456789")); err != nil {
		t.Fatal(err)
	}
	if err := local.AppendLiteral(ctx, "target.bin", []byte("AB")); err != nil {
		t.Fatal(err)
	}
	if err := local.AppendCopy(ctx, "target.bin", "source.bin", 3, 4); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(local.Root(), "target.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "AB3456" {
		t.Errorf("file content = %q, want %q", got, "AB3456")
	}
}

func TestLocalAppendCopyCreatesTarget(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := local.AppendLiteral(ctx, "source.bin", bytes.Repeat([]byte{0x42}, 64)); err != nil {
		t.Fatal(err)
	}
	if err := local.AppendCopy(ctx, "fresh.bin", "source.bin", 0, 64); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(filepath.Join(local.Root(), "fresh.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 64 {
		t.Errorf("created target has %d bytes, want 64", len(got))
	}
}

func TestLocalAppendCopyErrors(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := local.AppendLiteral(ctx, "short.bin", []byte("abc")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		target, source string
		offset, length int64
	}{
		{"missing source", "t", "nosuchfile", 0, 1},
		{"range past end", "t", "short.bin", 0, 10},
		{"offset past end", "t", "short.bin", 5, 1},
		{"negative offset", "t", "short.bin", -1, 1},
		{"negative length", "t", "short.bin", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := local.AppendCopy(ctx, tt.target, tt.source, tt.offset, tt.length); err == nil {
				t.Error("AppendCopy = nil, want error")
			}
		})
	}
}

func TestLocalRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	local, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "../escape"} {
		if err := local.AppendLiteral(ctx, name, []byte("x")); err == nil {
			t.Errorf("AppendLiteral(%q) = nil, want error", name)
		}
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"a.txt", "UPPER", "dots.in.name", "no-extension"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
	if err := ValidateName("a/b"); err == nil || !strings.Contains(err.Error(), "separator") {
		t.Errorf("ValidateName(%q) = %v, want separator error", "a/b", err)
	}
}

func TestRecorderLogsInOrder(t *testing.T) {
	ctx := context.Background()
	rec := &Recorder{}

	if err := rec.AppendLiteral(ctx, "f", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := rec.AppendCopy(ctx, "f", "g", 7, 21); err != nil {
		t.Fatal(err)
	}

	ops := rec.Ops()
	if len(ops) != 2 {
		t.Fatalf("ops = %+v, want two", ops)
	}
	want0 := Op{Kind: OpLiteral, Target: "f", Data: []byte("one")}
	if ops[0].Kind != want0.Kind || ops[0].Target != want0.Target || !bytes.Equal(ops[0].Data, want0.Data) {
		t.Errorf("ops[0] = %+v, want %+v", ops[0], want0)
	}
	want1 := Op{Kind: OpCopy, Target: "f", Source: "g", Offset: 7, Length: 21}
	if !reflect.DeepEqual(ops[1], want1) {
		t.Errorf("ops[1] = %+v, want %+v", ops[1], want1)
	}
}
