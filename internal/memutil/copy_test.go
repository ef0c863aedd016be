// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package memutil_test

import (
	"bytes"
	"testing"

	"github.com/cosnicolaou/goblosc/internal/memutil"
)

func TestCopyBounded(t *testing.T) {
	dst := make([]byte, 10)
	n := memutil.CopyBounded(dst, []byte("hello world"), 5)
	if n != 5 || string(dst[:5]) != "hello" {
		t.Fatalf("got n=%v dst=%q", n, dst[:5])
	}
}

func TestCopyMatchNonOverlapping(t *testing.T) {
	out := make([]byte, 12)
	copy(out, []byte("abcd"))
	memutil.CopyMatch(out, 4, 4, 4)
	if got, want := string(out[:8]), "abcdabcd"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCopyMatchOverlapping(t *testing.T) {
	// distance 1 repeats the last byte forward: classic RLE case.
	out := make([]byte, 8)
	out[0] = 'z'
	memutil.CopyMatch(out, 1, 1, 7)
	if !bytes.Equal(out, []byte("zzzzzzzz")) {
		t.Fatalf("got %q", out)
	}
}

func TestCopyMatchOverlappingPattern(t *testing.T) {
	// distance 3, length 7: "abc" repeated, overlapping the source.
	out := make([]byte, 10)
	copy(out, []byte("abc"))
	memutil.CopyMatch(out, 3, 3, 7)
	if got, want := string(out[:10]), "abcabcabca"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBroadcastEqual8(t *testing.T) {
	if !memutil.BroadcastEqual8([]byte{9, 9, 9, 9, 9, 9, 9, 9, 1}, 9) {
		t.Error("expected true")
	}
	if memutil.BroadcastEqual8([]byte{9, 9, 9, 9, 9, 9, 9, 8}, 9) {
		t.Error("expected false")
	}
	if memutil.BroadcastEqual8([]byte{1, 2}, 1) {
		t.Error("short input should be false")
	}
}
