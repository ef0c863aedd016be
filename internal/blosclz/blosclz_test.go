// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package blosclz_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/cosnicolaou/goblosc/internal/blosclz"
)

func roundTrip(t *testing.T, src []byte) {
	t.Helper()
	dst := make([]byte, len(src)+64)
	n, err := blosclz.Encode(src, dst)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if n == 0 {
		// Incompressible is a valid outcome; nothing further to check
		// for the round trip since the caller would store raw.
		return
	}
	out := make([]byte, len(src))
	got, err := blosclz.Decode(dst[:n], out)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got != len(src) {
		t.Fatalf("decode length = %v, want %v", got, len(src))
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("round trip mismatch: got %x want %x", out, src)
	}
}

func TestRoundTripPatterns(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{1},
		{1, 2},
		[]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"),
		bytes.Repeat([]byte("abcabcabc"), 200),
		bytes.Repeat([]byte{0x00}, 100000),
	}
	for i, c := range cases {
		roundTrip(t, c)
		_ = i
	}
}

func TestRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, n := range []int{0, 1, 2, 3, 100, 999, 1 << 16, 1 << 20} {
		src := make([]byte, n)
		r.Read(src)
		roundTrip(t, src)
	}
}

func TestRoundTripLongMatches(t *testing.T) {
	// Forces the length-extension path (matches longer than 9 bytes) and
	// the far-distance path (repeats separated by more than ~7900 bytes).
	src := make([]byte, 0, 200000)
	pattern := bytes.Repeat([]byte("0123456789"), 200) // 2000-byte run
	src = append(src, pattern...)
	src = append(src, bytes.Repeat([]byte{0xAB}, 9000)...)
	src = append(src, pattern...)
	roundTrip(t, src)
}

func TestEncodeRespectsMaxOut(t *testing.T) {
	src := make([]byte, 10000)
	r := rand.New(rand.NewSource(99))
	r.Read(src)
	dst := make([]byte, 4) // far too small to hold anything useful
	n, err := blosclz.Encode(src, dst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected incompressible (0), got %v", n)
	}
}

func TestDecodeRejectsTruncatedLiteral(t *testing.T) {
	// ctrl says 5 literal bytes follow, but only 2 are present.
	src := []byte{4, 1, 2}
	dst := make([]byte, 5)
	if _, err := blosclz.Decode(src, dst); err == nil {
		t.Fatal("expected an error for a truncated literal run")
	}
}

func TestDecodeRejectsBackReferenceBeforeStart(t *testing.T) {
	// A match token with a distance larger than the bytes produced so far.
	src := []byte{byte(1<<5) | 0x00, 0x05}
	dst := make([]byte, 4)
	if _, err := blosclz.Decode(src, dst); err == nil {
		t.Fatal("expected an error for an out-of-range back-reference")
	}
}

func TestDecodeRejectsOverrunningOutput(t *testing.T) {
	src := []byte{31} // literal run of 32 bytes, but none follow and dst is tiny
	dst := make([]byte, 4)
	if _, err := blosclz.Decode(src, dst); err == nil {
		t.Fatal("expected an error when the literal run would overrun dst")
	}
}
