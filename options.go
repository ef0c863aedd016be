// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package blosc

import (
	"os"

	"github.com/cosnicolaou/goblosc/internal/codec"
)

// compressorEnvVar is the single named variable spec.md §6 allows for
// overriding the default entropy back end at init time.
const compressorEnvVar = "BLOSC_COMPRESSOR"

// Option configures a Context at construction time.
type Option func(*ctxOpts)

type ctxOpts struct {
	nthreads   int
	compressor string
	blockSize  int
}

// WithThreads sets the worker pool size. n <= 1 forces the serial
// fallback described in spec.md §4.6.
func WithThreads(n int) Option {
	return func(o *ctxOpts) { o.nthreads = n }
}

// WithCompressor selects the named entropy back end ("blosclz", "zstd",
// or "s2"); an unknown name is rejected at Compress time with
// ErrParameterOutOfRange. Decompress does not use it: it picks the codec
// recorded in the stream's header.
func WithCompressor(name string) Option {
	return func(o *ctxOpts) { o.compressor = name }
}

// WithBlockSize forces a block size rather than letting the blocking
// policy derive one from clevel; it is clamped to a 128-byte minimum.
func WithBlockSize(n int) Option {
	return func(o *ctxOpts) { o.blockSize = n }
}

func defaultCtxOpts() ctxOpts {
	name := os.Getenv(compressorEnvVar)
	if name == "" {
		name = codec.DefaultName
	}
	return ctxOpts{
		nthreads:   1,
		compressor: name,
	}
}
