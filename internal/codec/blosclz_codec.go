// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package codec

import "github.com/cosnicolaou/goblosc/internal/blosclz"

// Blosclz adapts internal/blosclz to the Codec interface. It is always
// registered and is the default back end (ID 0), matching spec.md's
// "absence falls back to the built-in LZ77 codec".
type Blosclz struct{}

// NewBlosclz returns the default entropy codec.
func NewBlosclz() *Blosclz { return &Blosclz{} }

func (*Blosclz) Name() string    { return "blosclz" }
func (*Blosclz) ID() byte        { return 0 }
func (*Blosclz) Version() byte   { return 1 }
func (*Blosclz) Encode(_ int, src, dst []byte) (int, error) {
	return blosclz.Encode(src, dst)
}
func (*Blosclz) Decode(src, dst []byte) (int, error) {
	return blosclz.Decode(src, dst)
}
