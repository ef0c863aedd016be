// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package shuffle implements the byte-transposition filter: given N bytes
// representing M = N/T elements of width T, Shuffle writes T contiguous
// byte streams of length M, stream j holding byte j of every element in
// original order. Unshuffle is the exact inverse. Both are total functions
// over all T in [1,255] and all N; neither can fail.
package shuffle

// Shuffle writes the shuffled form of src (typesize T) into dst. dst must
// be at least len(src) bytes. The trailing len(src)%T bytes, if any, are
// copied verbatim after the T streams, per the format's definition of
// what happens when T does not evenly divide the block length.
func Shuffle(typesize int, src, dst []byte) {
	n := len(src)
	if typesize <= 1 || n == 0 {
		copy(dst[:n], src[:n])
		return
	}
	if kind, ok := selectFast(typesize, n, dst); ok {
		fastShuffle(kind, typesize, src, dst)
		return
	}
	genericShuffle(typesize, src, dst)
}

// Unshuffle is the inverse of Shuffle: given the shuffled layout in src, it
// reconstructs the original array-of-structs layout into dst.
func Unshuffle(typesize int, src, dst []byte) {
	n := len(src)
	if typesize <= 1 || n == 0 {
		copy(dst[:n], src[:n])
		return
	}
	if kind, ok := selectFast(typesize, n, dst); ok {
		fastUnshuffle(kind, typesize, src, dst)
		return
	}
	genericUnshuffle(typesize, src, dst)
}

// genericShuffle is the scalar reference implementation mandated by the
// format's correctness contract: every fast path must agree with it byte
// for byte.
func genericShuffle(typesize int, src, dst []byte) {
	n := len(src)
	m := n / typesize
	rem := n - m*typesize
	for j := 0; j < typesize; j++ {
		out := dst[j*m : j*m+m]
		for i := 0; i < m; i++ {
			out[i] = src[i*typesize+j]
		}
	}
	if rem > 0 {
		copy(dst[typesize*m:typesize*m+rem], src[typesize*m:typesize*m+rem])
	}
}

func genericUnshuffle(typesize int, src, dst []byte) {
	n := len(src)
	m := n / typesize
	rem := n - m*typesize
	for j := 0; j < typesize; j++ {
		in := src[j*m : j*m+m]
		for i := 0; i < m; i++ {
			dst[i*typesize+j] = in[i]
		}
	}
	if rem > 0 {
		copy(dst[typesize*m:typesize*m+rem], src[typesize*m:typesize*m+rem])
	}
}
