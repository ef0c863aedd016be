// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package blosc implements a block-oriented compressor specialized for
// arrays of fixed-size typed elements. It interleaves a byte-transposition
// shuffle filter with a fast LZ77-style entropy codec so that per-byte
// streams of a multi-byte type compress faster and smaller than
// byte-agnostic codecs. Values are compressed in blocks sized to fit the
// L1 cache, optionally across a pool of worker goroutines, and the
// resulting stream carries a self-describing header enabling round-trip
// decompression without external metadata.
package blosc

import (
	"context"
	"errors"

	"github.com/cosnicolaou/goblosc/internal/alloc"
	"github.com/cosnicolaou/goblosc/internal/engine"
	"github.com/cosnicolaou/goblosc/internal/worker"
)

// minCompressibleInput below this size compression is never attempted;
// the caller is expected to store the buffer raw.
const minCompressibleInput = 128

// Compress compresses src into dst, returning the number of bytes
// written. A return of 0 (with a nil error) means the input was judged
// incompressible, or too small, or dst lacked room even for the header;
// the caller should store src verbatim. typesize > 255 is clamped to 1,
// matching the documented fallback for callers that don't know their
// element width.
func (c *Context) Compress(ctx context.Context, clevel int, shuffle bool, typesize int, src, dst []byte) (int, error) {
	if clevel < 0 || clevel > 9 {
		return 0, newError(ErrParameterOutOfRange, "clevel must be in [0,9], got %d", clevel)
	}
	if clevel == 0 || len(src) < minCompressibleInput {
		return 0, nil
	}
	if typesize > 255 || typesize < 1 {
		typesize = 1
	}

	c.mu.Lock()
	nthreads := c.nthreads
	compressorName := c.compressor
	forcedBlockSize := c.blockSize
	c.mu.Unlock()

	cod, err := c.registry.ByName(compressorName)
	if err != nil {
		return 0, newError(ErrParameterOutOfRange, "%v", err)
	}

	blockSize := computeBlockSize(clevel, typesize, len(src), forcedBlockSize)
	layout := newBlockLayout(blockSize, len(src))

	frameStart := headerSize + bstartsSize(layout.nblocks)
	if frameStart > len(dst) {
		return 0, nil
	}

	h := header{
		version:   formatVersion,
		versionLZ: cod.Version(),
		flags:     encodeFlags(shuffle, cod.ID()),
		typesize:  encodeTypesize(typesize),
		nbytes:    uint32(len(src)),
		blockSize: uint32(blockSize),
	}
	encodeHeader(dst, h)

	staging := make([][]byte, layout.nblocks)
	params := engine.Params{Typesize: typesize, Shuffle: shuffle, Codec: cod, CLevel: clevel, BlockSize: blockSize}

	err = worker.Run(ctx, nthreads, layout.nblocks, func(i int) error {
		size, leftover := layout.size(i)
		srcBlock := src[layout.offset(i) : layout.offset(i)+size]
		tmp := alloc.New(size, alloc.WideAlignment).Bytes
		splits := engine.SplitCount(typesize, size, leftover)
		scratch := make([]byte, size+4*splits)
		n, err := engine.CompressBlock(params, leftover, srcBlock, scratch, tmp)
		if err != nil {
			return err
		}
		staging[i] = scratch[:n]
		return nil
	})
	if err != nil {
		return 0, newError(ErrInternal, "%v", err)
	}

	cursor := frameStart
	for i, block := range staging {
		if cursor+len(block) > len(dst) {
			return 0, nil
		}
		writeBstart(dst, i, uint32(cursor))
		copy(dst[cursor:cursor+len(block)], block)
		cursor += len(block)
	}
	cbytes := cursor
	if cbytes >= len(src) {
		return 0, nil
	}
	h.cbytes = uint32(cbytes)
	encodeHeader(dst, h)
	return cbytes, nil
}

// Decompress decompresses src into dst, returning the number of bytes
// written. It returns ErrOutputTooSmall if dst cannot hold the original
// size recorded in the header, ErrHeaderCorrupt when the header or the
// bstarts table is invalid, and ErrCodecFailure when a block fails to
// decode.
func (c *Context) Decompress(ctx context.Context, src, dst []byte) (int, error) {
	h, err := decodeHeader(src)
	if err != nil {
		return 0, err
	}
	nbytes := int(h.nbytes)
	if nbytes > len(dst) {
		return 0, newError(ErrOutputTooSmall, "dst has %d bytes, need %d", len(dst), nbytes)
	}

	cod, err := c.registry.ByID(h.codecID())
	if err != nil {
		return 0, newError(ErrHeaderCorrupt, "%v", err)
	}
	if int(h.cbytes) > len(src) {
		return 0, newError(ErrHeaderCorrupt, "cbytes %d exceeds buffer length %d", h.cbytes, len(src))
	}

	typesize := h.typesizeValue()
	blockSize := int(h.blockSize)
	if nbytes == 0 {
		return 0, nil
	}
	if blockSize <= 0 {
		return 0, newError(ErrHeaderCorrupt, "blocksize %d is not positive", blockSize)
	}
	layout := newBlockLayout(blockSize, nbytes)

	c.mu.Lock()
	nthreads := c.nthreads
	c.mu.Unlock()

	params := engine.Params{Typesize: typesize, Shuffle: h.shuffled(), Codec: cod, BlockSize: blockSize}

	err = worker.Run(ctx, nthreads, layout.nblocks, func(i int) error {
		start := readBstart(src, i)
		var end uint32
		if i+1 < layout.nblocks {
			end = readBstart(src, i+1)
		} else {
			end = h.cbytes
		}
		if end < start || int(end) > len(src) {
			return newError(ErrHeaderCorrupt, "block %d has an invalid bstarts range", i)
		}
		size, leftover := layout.size(i)
		tmp := alloc.New(size, alloc.WideAlignment).Bytes
		dstOff := layout.offset(i)
		return engine.DecompressBlock(params, leftover, size, src[start:end], dst[dstOff:dstOff+size], tmp)
	})
	if err != nil {
		var be *Error
		if errors.As(err, &be) {
			return 0, be
		}
		return 0, newError(ErrCodecFailure, "%v", err)
	}
	return nbytes, nil
}
