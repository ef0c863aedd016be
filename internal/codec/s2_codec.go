// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package codec

import "github.com/klauspost/compress/s2"

// S2 adapts github.com/klauspost/compress/s2, the Snappy-compatible but
// faster codec shipped alongside klauspost/compress's zstd implementation,
// to the Codec interface. It stands in for spec.md §6's Snappy/LZ4-class
// "fast, low-ratio" alternative back end.
type S2 struct{}

// NewS2 returns the s2-backed codec, registered under ID 2.
func NewS2() *S2 { return &S2{} }

func (*S2) Name() string  { return "s2" }
func (*S2) ID() byte      { return 2 }
func (*S2) Version() byte { return 1 }

func (*S2) Encode(clevel int, src, dst []byte) (int, error) {
	var out []byte
	if clevel >= 7 {
		out = s2.EncodeBetter(make([]byte, 0, len(dst)), src)
	} else {
		out = s2.Encode(make([]byte, 0, len(dst)), src)
	}
	if len(out) > len(dst) {
		return 0, nil
	}
	copy(dst, out)
	return len(out), nil
}

func (*S2) Decode(src, dst []byte) (int, error) {
	n, err := s2.DecodedLen(src)
	if err != nil {
		return 0, ErrBackendCorrupt
	}
	if n != len(dst) {
		return 0, ErrBackendCorrupt
	}
	out, err := s2.Decode(make([]byte, 0, len(dst)), src)
	if err != nil {
		return 0, ErrBackendCorrupt
	}
	copy(dst, out)
	return len(out), nil
}
