// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package codec defines the pluggable entropy back-end interface spec.md
// §6 requires (so that LZ4/Zstd/Zlib/Snappy-style codecs can be swapped
// in for the default blosclz back end) and a small registry realizing the
// public set_compressor/get_compressor surface.
package codec

import (
	"errors"
	"fmt"
)

// DefaultName is the compressor selected when neither a Context option
// nor the BLOSC_COMPRESSOR environment variable names one.
const DefaultName = "blosclz"

// ErrBackendCorrupt is returned by a third-party codec adapter's Decode
// when the wrapped library reports a format error or returns a length
// that disagrees with the split length the block engine asked for.
var ErrBackendCorrupt = errors.New("codec: back end reported corrupt data")

// Codec is the entropy back-end contract: deterministic, free of internal
// threading (the worker pool is the module's only source of concurrency),
// and using the same outcome conventions as blosclz itself: Encode
// returning 0 means "gave up, caller stores raw", not an error.
type Codec interface {
	// Name identifies the codec for SetCompressor/GetCompressor and for
	// diagnostics; it is not persisted in the stream (the numeric ID is).
	Name() string

	// ID is the small integer recorded in the header's flags field so
	// Decode can find the matching codec without external metadata.
	ID() byte

	// Version is reported as the stream's version_lz field.
	Version() byte

	// Encode compresses src into dst (len(dst) is the maxout budget) and
	// returns the number of bytes written, or 0 if the codec judged the
	// input incompressible within budget.
	Encode(clevel int, src, dst []byte) (int, error)

	// Decode decompresses src into dst, which has exactly the expected
	// output length as its capacity; it returns the number of bytes
	// written, which must equal len(dst) on success.
	Decode(src, dst []byte) (int, error)
}

// Registry holds the set of codecs a Context may choose between. The zero
// Registry is not usable; construct one with NewRegistry, which always
// registers the default blosclz codec at ID 0.
type Registry struct {
	byName map[string]Codec
	byID   map[byte]Codec
}

// NewRegistry returns a Registry pre-populated with every codec built into
// this module.
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]Codec{}, byID: map[byte]Codec{}}
	for _, c := range []Codec{
		NewBlosclz(),
		NewZstd(),
		NewS2(),
	} {
		r.Register(c)
	}
	return r
}

// Register adds c to the registry, indexed by both its name and its ID.
func (r *Registry) Register(c Codec) {
	r.byName[c.Name()] = c
	r.byID[c.ID()] = c
}

// ByName returns the codec registered under name.
func (r *Registry) ByName(name string) (Codec, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("codec: unknown compressor %q", name)
	}
	return c, nil
}

// ByID returns the codec registered under the header's numeric codec ID.
func (r *Registry) ByID(id byte) (Codec, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("codec: unknown compressor id %d", id)
	}
	return c, nil
}
