// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package codec

import (
	"errors"

	"github.com/klauspost/compress/zstd"
)

// Zstd adapts github.com/klauspost/compress/zstd to the Codec interface,
// one of the pluggable third-party back ends spec.md §6 names as a valid
// drop-in replacement for blosclz.
type Zstd struct{}

// NewZstd returns the zstd-backed codec, registered under ID 1.
func NewZstd() *Zstd { return &Zstd{} }

func (*Zstd) Name() string  { return "zstd" }
func (*Zstd) ID() byte      { return 1 }
func (*Zstd) Version() byte { return zstdFormatVersion }

// zstdFormatVersion is a nominal sub-format version for the header's
// version_lz field; zstd's own frame format is self-describing, so this
// only needs to distinguish "this stream was produced by the zstd codec
// adapter" from other adapters' versions, which the codec ID already
// does — it is carried for parity with blosclz's own Version().
const zstdFormatVersion = 1

// Both the writer and the reader pin their internal goroutine concurrency
// to 1: klauspost/compress/zstd defaults to runtime.GOMAXPROCS(0) workers
// per stream, which would give this back end its own internal parallelism
// on top of the worker pool that already fans this call out across blocks,
// violating the "free of internal threading" back-end contract.
func (*Zstd) Encode(clevel int, src, dst []byte) (int, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstdLevel(clevel)),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return 0, err
	}
	defer enc.Close()
	out := enc.EncodeAll(src, make([]byte, 0, len(dst)))
	if len(out) > len(dst) {
		return 0, nil
	}
	copy(dst, out)
	return len(out), nil
}

func (*Zstd) Decode(src, dst []byte) (int, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return 0, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(src, make([]byte, 0, len(dst)))
	if err != nil {
		return 0, errors.Join(ErrBackendCorrupt, err)
	}
	if len(out) != len(dst) {
		return 0, ErrBackendCorrupt
	}
	copy(dst, out)
	return len(out), nil
}

// zstdLevel maps the module's 0-9 clevel onto zstd's coarser speed/ratio
// presets, the way spec.md says clevel "need only influence blocksize and
// whether to attempt compression" for the default codec — for a
// third-party codec that does have its own internal level concept, it is
// reasonable (and harmless to the format, which doesn't encode clevel) to
// let clevel drive that codec's own preset too.
func zstdLevel(clevel int) zstd.EncoderLevel {
	switch {
	case clevel <= 0:
		return zstd.SpeedFastest
	case clevel <= 3:
		return zstd.SpeedDefault
	case clevel <= 6:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
