// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package engine implements the per-block pipeline: shuffle, split into S
// independently entropy-coded slices, and the mirror operation on decode.
// It has no knowledge of the worker pool or the stream header; it is
// driven one block at a time by internal/worker.
package engine

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cosnicolaou/goblosc/internal/codec"
	"github.com/cosnicolaou/goblosc/internal/shuffle"
)

// ErrInternal signals an invariant violation that spec.md classifies as
// "impossible state" — a codec returning a negative/error result is not
// something a correctly operating back end should ever do against a
// well-formed split, so the block engine treats it as fatal rather than
// as an "incompressible" outcome.
var ErrInternal = errors.New("engine: internal invariant violated")

// SplitCount returns the number of splits a block of bsize bytes with the
// given typesize should use, per spec.md 4.1's invariant: S equals T when
// T <= 16 and bsize/T >= 128 and the block is not a leftover block;
// otherwise S is 1.
func SplitCount(typesize, bsize int, leftover bool) int {
	if !leftover && typesize >= 1 && typesize <= 16 && bsize/typesize >= 128 {
		return typesize
	}
	return 1
}

// Params bundles the per-operation configuration the engine needs to
// compress or decompress a single block; it is built once per
// Compress/Decompress call and shared read-only across all worker
// goroutines.
type Params struct {
	Typesize  int
	Shuffle   bool
	Codec     codec.Codec
	CLevel    int
	BlockSize int // the configured (non-leftover) block size
}

// CompressBlock compresses one block: src is the bsize-byte raw block
// (already read from the caller's buffer), dst has capacity maxOut bytes
// to receive the block's framed payload (length-prefixed splits), and tmp
// is scratch space of at least len(src) bytes used for the shuffled copy.
// It returns the number of bytes written to dst, or 0 if the block should
// be considered incompressible (spec.md's documented non-error outcome).
func CompressBlock(p Params, leftover bool, src, dst, tmp []byte) (int, error) {
	bsize := len(src)
	shuffled := src
	if p.Shuffle && p.Typesize > 1 {
		shuffle.Shuffle(p.Typesize, src, tmp[:bsize])
		shuffled = tmp[:bsize]
	}

	splits := SplitCount(p.Typesize, bsize, leftover)
	neblock := bsize / splits

	maxOut := len(dst)
	written := 0
	for j := 0; j < splits; j++ {
		part := shuffled[j*neblock : j*neblock+neblock]
		if written+4 > maxOut {
			return 0, nil
		}
		splitMax := neblock - 1
		if room := maxOut - (written + 4); room < splitMax {
			splitMax = room
		}
		if splitMax < 0 {
			splitMax = 0
		}
		n, err := p.Codec.Encode(p.CLevel, part, dst[written+4:written+4+splitMax])
		switch {
		case err != nil:
			return 0, fmt.Errorf("%w: %v", ErrInternal, err)
		case n < 0:
			return 0, fmt.Errorf("%w: codec returned negative length", ErrInternal)
		case n == 0:
			if written+4+neblock > maxOut {
				return 0, nil
			}
			binary.LittleEndian.PutUint32(dst[written:], uint32(neblock))
			copy(dst[written+4:written+4+neblock], part)
			written += 4 + neblock
		default:
			binary.LittleEndian.PutUint32(dst[written:], uint32(n))
			written += 4 + n
		}
	}
	return written, nil
}

// DecompressBlock reverses CompressBlock: src is exactly one block's framed
// payload (as delimited by the stream's bstarts table), dst receives bsize
// decompressed bytes, and tmp is scratch space of at least bsize bytes
// used to hold the still-shuffled data before the final unshuffle pass.
func DecompressBlock(p Params, leftover bool, bsize int, src, dst, tmp []byte) error {
	splits := SplitCount(p.Typesize, bsize, leftover)
	neblock := bsize / splits

	pos := 0
	for j := 0; j < splits; j++ {
		if pos+4 > len(src) {
			return fmt.Errorf("%w: truncated split header", ErrInternal)
		}
		splitLen := int(binary.LittleEndian.Uint32(src[pos:]))
		pos += 4
		out := tmp[j*neblock : j*neblock+neblock]
		if splitLen == neblock {
			if pos+neblock > len(src) {
				return fmt.Errorf("%w: truncated raw split", ErrInternal)
			}
			copy(out, src[pos:pos+neblock])
			pos += neblock
			continue
		}
		if pos+splitLen > len(src) {
			return fmt.Errorf("%w: truncated compressed split", ErrInternal)
		}
		n, err := p.Codec.Decode(src[pos:pos+splitLen], out)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if n != neblock {
			return fmt.Errorf("%w: split decoded to %d bytes, want %d", ErrInternal, n, neblock)
		}
		pos += splitLen
	}

	if p.Shuffle && p.Typesize > 1 {
		shuffle.Unshuffle(p.Typesize, tmp[:bsize], dst[:bsize])
	} else {
		copy(dst[:bsize], tmp[:bsize])
	}
	return nil
}
