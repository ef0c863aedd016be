// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package blosc

import "encoding/binary"

// headerSize is the fixed size of the baseline format-version-1 header,
// not counting the variable-length bstarts table that follows it.
const headerSize = 16

// formatVersion is the only framing version this module writes or reads.
const formatVersion = 1

const (
	flagShuffle = 1 << 0
	// flagCodecShift and flagCodecMask carve bits 1-3 out of the header's
	// flags byte to record which registered codec produced the stream,
	// since the baseline format has no dedicated field for it.
	flagCodecShift = 1
	flagCodecMask  = 0x7 << flagCodecShift
)

func encodeFlags(shuffled bool, codecID byte) byte {
	var f byte
	if shuffled {
		f |= flagShuffle
	}
	f |= (codecID << flagCodecShift) & flagCodecMask
	return f
}

func (h header) codecID() byte {
	return (h.flags & flagCodecMask) >> flagCodecShift
}

// header mirrors the 16-byte on-disk layout byte for byte; it is never
// serialized as a struct directly (field order/padding in Go gives no
// such guarantee) — encodeHeader/decodeHeader do the little-endian
// marshaling explicitly.
type header struct {
	version    byte
	versionLZ  byte
	flags      byte
	typesize   byte // 0 means 256, matching the on-disk convention
	nbytes     uint32
	blockSize  uint32
	cbytes     uint32
}

func (h header) shuffled() bool { return h.flags&flagShuffle != 0 }

func (h header) typesizeValue() int {
	if h.typesize == 0 {
		return 256
	}
	return int(h.typesize)
}

func encodeTypesize(t int) byte {
	if t == 256 {
		return 0
	}
	return byte(t)
}

// encodeHeader writes the 16-byte header to dst[:16].
func encodeHeader(dst []byte, h header) {
	dst[0] = h.version
	dst[1] = h.versionLZ
	dst[2] = h.flags
	dst[3] = h.typesize
	binary.LittleEndian.PutUint32(dst[4:], h.nbytes)
	binary.LittleEndian.PutUint32(dst[8:], h.blockSize)
	binary.LittleEndian.PutUint32(dst[12:], h.cbytes)
}

// decodeHeader parses the 16-byte header from src[:16]. It rejects a
// buffer shorter than the header and an unknown format version, but does
// not check cbytes against len(src); Decompress does that itself.
func decodeHeader(src []byte) (header, error) {
	if len(src) < headerSize {
		return header{}, newError(ErrHeaderCorrupt, "buffer shorter than the header")
	}
	h := header{
		version:   src[0],
		versionLZ: src[1],
		flags:     src[2],
		typesize:  src[3],
		nbytes:    binary.LittleEndian.Uint32(src[4:]),
		blockSize: binary.LittleEndian.Uint32(src[8:]),
		cbytes:    binary.LittleEndian.Uint32(src[12:]),
	}
	if h.version != formatVersion {
		return header{}, newError(ErrHeaderCorrupt, "unsupported format version %d", h.version)
	}
	return h, nil
}

func bstartsOffset(nblocks int) int { return headerSize }

func bstartsSize(nblocks int) int { return 4 * nblocks }

func readBstart(src []byte, i int) uint32 {
	off := bstartsOffset(0) + 4*i
	return binary.LittleEndian.Uint32(src[off:])
}

func writeBstart(dst []byte, i int, v uint32) {
	off := bstartsOffset(0) + 4*i
	binary.LittleEndian.PutUint32(dst[off:], v)
}

// CBufferSizes reports the triple (nbytes, cbytes, blocksize) encoded in
// a compressed buffer's header, mirroring spec.md's cbuffer_sizes entry
// point.
func CBufferSizes(compressed []byte) (nbytes, cbytes, blockSize int, err error) {
	h, err := decodeHeader(compressed)
	if err != nil {
		return 0, 0, 0, err
	}
	return int(h.nbytes), int(h.cbytes), int(h.blockSize), nil
}

// CBufferMetainfo reports the typesize and whether the shuffle filter was
// applied, mirroring spec.md's cbuffer_metainfo entry point.
func CBufferMetainfo(compressed []byte) (typesize int, shuffled bool, err error) {
	h, err := decodeHeader(compressed)
	if err != nil {
		return 0, false, err
	}
	return h.typesizeValue(), h.shuffled(), nil
}

// CBufferVersions reports the format version and entropy-codec sub-format
// version recorded in a compressed buffer's header, mirroring spec.md's
// cbuffer_versions entry point.
func CBufferVersions(compressed []byte) (version, versionLZ int, err error) {
	h, err := decodeHeader(compressed)
	if err != nil {
		return 0, 0, err
	}
	return int(h.version), int(h.versionLZ), nil
}
