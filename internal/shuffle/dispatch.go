// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package shuffle

import (
	"github.com/klauspost/cpuid/v2"

	"github.com/cosnicolaou/goblosc/internal/alloc"
)

// Kind identifies a fast-path transpose variant. There is no true SIMD
// assembly behind these in this module (Go forbids intrinsics outside of
// per-architecture .s files); a Kind only records which set of
// preconditions (unit size, destination alignment) selectFast checked, and
// both Kinds run the same word-at-a-time transpose in fast.go. Both are
// required, and verified by shuffle_test.go, to be byte-identical to
// Generic.
type Kind int

const (
	// V128 models a 128-bit kernel: it requires typesize*16 to divide the
	// buffer length and a 16-byte aligned destination.
	V128 Kind = iota
	// V256 models a 256-bit kernel: it requires typesize*32 to divide the
	// buffer length and a 32-byte aligned destination.
	V256
)

func (k Kind) unit() int {
	if k == V256 {
		return 32
	}
	return 16
}

func (k Kind) alignment() int {
	if k == V256 {
		return alloc.WideAlignment
	}
	return alloc.DefaultAlignment
}

// hasAVX2 and hasSSE2 are variables so tests can force a code path
// regardless of the host CPU.
var (
	hasAVX2 = cpuid.CPU.Supports(cpuid.AVX2)
	hasSSE2 = cpuid.CPU.Supports(cpuid.SSE2)
)

// supportedTypesize reports the only typesizes for which a fast path exists;
// spec.md restricts these to the widths a numerical array is actually ever
// laid out in (16/32/64-bit scalars, 128-bit vectors/complex-double pairs).
func supportedTypesize(t int) bool {
	switch t {
	case 2, 4, 8, 16:
		return true
	}
	return false
}

// selectFast decides whether a fast-path Kind may be used for a transpose
// of n bytes of typesize t writing into dst, per spec.md 4.3's
// preconditions: supported typesize, size >= 256 bytes, size a multiple of
// the kind's unit, and a suitably aligned destination.
func selectFast(t, n int, dst []byte) (Kind, bool) {
	if !supportedTypesize(t) || n < 256 {
		return 0, false
	}
	if hasAVX2 {
		if k := V256; n%(t*k.unit()) == 0 && alloc.IsAligned(dst, k.alignment()) {
			return k, true
		}
	}
	if hasSSE2 {
		if k := V128; n%(t*k.unit()) == 0 && alloc.IsAligned(dst, k.alignment()) {
			return k, true
		}
	}
	return 0, false
}
