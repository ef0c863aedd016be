// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package shuffle

import "encoding/binary"

// fastShuffle performs the same transpose as genericShuffle but reads each
// element as a single machine word instead of typesize individual byte
// loads, the portable equivalent of the byte/word/dword/qword interleave
// a real SSE2/AVX2 kernel performs. kind only gates which preconditions
// selectFast already checked to get here; the transpose math below does
// not otherwise depend on it, so a V128 and a V256 caller produce
// identical bytes, just as spec.md requires of every fast path versus the
// scalar reference.
func fastShuffle(kind Kind, typesize int, src, dst []byte) {
	switch typesize {
	case 2:
		fastShuffle2(src, dst)
	case 4:
		fastShuffle4(src, dst)
	case 8:
		fastShuffle8(src, dst)
	case 16:
		fastShuffle16(src, dst)
	default:
		genericShuffle(typesize, src, dst)
	}
}

func fastUnshuffle(kind Kind, typesize int, src, dst []byte) {
	switch typesize {
	case 2:
		fastUnshuffle2(src, dst)
	case 4:
		fastUnshuffle4(src, dst)
	case 8:
		fastUnshuffle8(src, dst)
	case 16:
		fastUnshuffle16(src, dst)
	default:
		genericUnshuffle(typesize, src, dst)
	}
}

func fastShuffle2(src, dst []byte) {
	m := len(src) / 2
	s0, s1 := dst[0:m], dst[m:2*m]
	for i := 0; i < m; i++ {
		w := binary.LittleEndian.Uint16(src[i*2:])
		s0[i] = byte(w)
		s1[i] = byte(w >> 8)
	}
}

func fastUnshuffle2(src, dst []byte) {
	m := len(src) / 2
	s0, s1 := src[0:m], src[m:2*m]
	for i := 0; i < m; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(s0[i])|uint16(s1[i])<<8)
	}
}

func fastShuffle4(src, dst []byte) {
	m := len(src) / 4
	s := [4][]byte{dst[0:m], dst[m : 2*m], dst[2*m : 3*m], dst[3*m : 4*m]}
	for i := 0; i < m; i++ {
		w := binary.LittleEndian.Uint32(src[i*4:])
		s[0][i] = byte(w)
		s[1][i] = byte(w >> 8)
		s[2][i] = byte(w >> 16)
		s[3][i] = byte(w >> 24)
	}
}

func fastUnshuffle4(src, dst []byte) {
	m := len(src) / 4
	s := [4][]byte{src[0:m], src[m : 2*m], src[2*m : 3*m], src[3*m : 4*m]}
	for i := 0; i < m; i++ {
		w := uint32(s[0][i]) | uint32(s[1][i])<<8 | uint32(s[2][i])<<16 | uint32(s[3][i])<<24
		binary.LittleEndian.PutUint32(dst[i*4:], w)
	}
}

func fastShuffle8(src, dst []byte) {
	m := len(src) / 8
	var s [8][]byte
	for j := 0; j < 8; j++ {
		s[j] = dst[j*m : j*m+m]
	}
	for i := 0; i < m; i++ {
		w := binary.LittleEndian.Uint64(src[i*8:])
		for j := 0; j < 8; j++ {
			s[j][i] = byte(w >> (8 * uint(j)))
		}
	}
}

func fastUnshuffle8(src, dst []byte) {
	m := len(src) / 8
	var s [8][]byte
	for j := 0; j < 8; j++ {
		s[j] = src[j*m : j*m+m]
	}
	for i := 0; i < m; i++ {
		var w uint64
		for j := 0; j < 8; j++ {
			w |= uint64(s[j][i]) << (8 * uint(j))
		}
		binary.LittleEndian.PutUint64(dst[i*8:], w)
	}
}

func fastShuffle16(src, dst []byte) {
	m := len(src) / 16
	var s [16][]byte
	for j := 0; j < 16; j++ {
		s[j] = dst[j*m : j*m+m]
	}
	for i := 0; i < m; i++ {
		lo := binary.LittleEndian.Uint64(src[i*16:])
		hi := binary.LittleEndian.Uint64(src[i*16+8:])
		for j := 0; j < 8; j++ {
			s[j][i] = byte(lo >> (8 * uint(j)))
			s[j+8][i] = byte(hi >> (8 * uint(j)))
		}
	}
}

func fastUnshuffle16(src, dst []byte) {
	m := len(src) / 16
	var s [16][]byte
	for j := 0; j < 16; j++ {
		s[j] = src[j*m : j*m+m]
	}
	for i := 0; i < m; i++ {
		var lo, hi uint64
		for j := 0; j < 8; j++ {
			lo |= uint64(s[j][i]) << (8 * uint(j))
			hi |= uint64(s[j+8][i]) << (8 * uint(j))
		}
		binary.LittleEndian.PutUint64(dst[i*16:], lo)
		binary.LittleEndian.PutUint64(dst[i*16+8:], hi)
	}
}
