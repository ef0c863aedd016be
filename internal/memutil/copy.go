// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package memutil provides the bounded, overlap-aware copy primitives that
// the blosclz codec builds on: a fast bounded
// memcpy-equivalent, and a back-reference copy that must tolerate
// overlapping source/destination ranges the way an LZ77 decoder does.
package memutil

// CopyBounded copies min(len(src), room) bytes of src into dst, where room
// is the number of bytes remaining in the logical output buffer (which may
// be smaller than len(dst)). It never writes beyond room bytes and returns
// the number of bytes actually copied.
func CopyBounded(dst, src []byte, room int) int {
	n := len(src)
	if n > room {
		n = room
	}
	if n > len(dst) {
		n = len(dst)
	}
	if n <= 0 {
		return 0
	}
	copy(dst[:n], src[:n])
	return n
}

// CopyMatch copies length bytes from out[pos-distance:] to out[pos:],
// emulating LZ77 back-reference semantics: when distance < length the
// source range overlaps the destination range and must be copied forward
// one byte at a time so that newly written bytes become part of the
// pattern being repeated (Go's built-in copy does not guarantee this for
// overlapping slices that advance in the same direction).
//
// It is the caller's responsibility to ensure pos-distance >= 0 and
// pos+length <= len(out); CopyMatch itself does not bounds-check, matching
// the internal helper role it plays inside the already bounds-checked
// blosclz decoder.
func CopyMatch(out []byte, pos, distance, length int) {
	src := pos - distance
	if distance >= length {
		// Non-overlapping: a single bulk copy is both correct and faster.
		copy(out[pos:pos+length], out[src:src+length])
		return
	}
	for i := 0; i < length; i++ {
		out[pos+i] = out[src+i]
	}
}

// BroadcastEqual8 reports whether the 8 bytes of a run starting at p all
// equal a single byte value, comparing them one byte at a time and
// returning false if p is shorter than 8 bytes. It is used by the RLE fast
// path to extend a distance-1 match 8 bytes at a time.
func BroadcastEqual8(p []byte, b byte) bool {
	if len(p) < 8 {
		return false
	}
	for i := 0; i < 8; i++ {
		if p[i] != b {
			return false
		}
	}
	return true
}
