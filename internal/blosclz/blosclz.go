// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package blosclz implements the default LZ77-style entropy back end used
// on each shuffled split: a single HASH_LOG-bit hash table recording the
// most recent position for a 3-byte prefix, a byte-oriented token stream
// of literal runs and back-references, an RLE fast path for distance-1
// runs, and an early-abandon heuristic for incompressible input.
package blosclz

import (
	"errors"

	"github.com/cosnicolaou/goblosc/internal/memutil"
)

// HashLog is fixed at 13 bits, per spec.md's resolution of the open
// question between the 8-bit and 13-bit variants found in different
// upstream source trees.
const HashLog = 13

// HashSize is the number of entries in the single hash table.
const HashSize = 1 << HashLog

const (
	minMatchNear = 3
	minMatchFar  = 5
	maxLiteral   = 32
	// maxNearDist is the largest distance the 5-bit-high/8-bit-low near
	// encoding can express: low5 in [0,0x1E] (0x1F is reserved as the
	// far-distance sentinel), low byte in [0,0xFF], plus the format's
	// 1-based distance bias.
	maxNearDist = 0x1E<<8 | 0xFF + 1
	// maxFarDist is the largest distance the 2-byte far extension can
	// express on top of maxNearDist.
	maxFarDist = maxNearDist + 1<<16
)

// ErrCorrupt is returned by Decode when the input stream is malformed in a
// way that a bounds check can detect: truncated tokens, a back-reference
// that would read before the output's start, or one that would write past
// the caller's maxout.
var ErrCorrupt = errors.New("blosclz: corrupt stream")

// hash folds a 3-byte prefix into a HashLog-bit bucket index using
// Fibonacci (multiplicative) hashing; any 3-byte window maps to exactly
// one bucket, and distinct windows may collide, in which case the table
// simply keeps the most recently seen position, matching spec.md's
// "distinct positions may collide; the table stores the most recent".
func hash(p []byte) uint32 {
	v := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
	return (v * 2654435761) >> (32 - HashLog)
}

// Encode compresses src into dst, which must have capacity maxout. It
// returns the number of bytes written. A return of (0, nil) means the
// codec gave up because the output would not fit in maxout or because the
// early-abandon heuristic judged the input incompressible; per spec.md
// this is not an error, it is the documented "caller should store raw"
// signal. A non-nil error indicates an internal invariant was violated
// (spec.md's "codec bug" case) and should propagate as a hard failure.
func Encode(src []byte, dst []byte) (int, error) {
	maxout := len(dst)
	n := len(src)
	if n < minMatchNear || maxout == 0 {
		return literalOnly(src, dst)
	}

	table := make([]int32, HashSize)
	for i := range table {
		table[i] = -1
	}

	op := 0
	litStart := 0
	ip := 0
	abandonAt := HashSize + 16

	flushLiterals := func(upto int) bool {
		for litStart < upto {
			run := upto - litStart
			if run > maxLiteral {
				run = maxLiteral
			}
			if op+1+run > maxout {
				return false
			}
			dst[op] = byte(run - 1)
			op++
			op += memutil.CopyBounded(dst[op:], src[litStart:litStart+run], run)
			litStart += run
		}
		return true
	}

	for ip+3 <= n {
		// RLE fast path: three consecutive bytes already equal to the
		// byte at ip-1 signal a distance-1 run; extend it with 8-byte
		// broadcast compares before falling back to byte-at-a-time.
		if ip > 0 && src[ip-1] == src[ip] && src[ip] == src[ip+1] && ip+2 < n && src[ip+1] == src[ip+2] {
			matchLen := 2
			for ip+matchLen+8 <= n && memutil.BroadcastEqual8(src[ip+matchLen:], src[ip-1]) {
				matchLen += 8
			}
			for ip+matchLen < n && src[ip+matchLen] == src[ip-1] {
				matchLen++
			}
			if !flushLiterals(ip) {
				return 0, nil
			}
			if !emitMatch(dst, &op, maxout, 1, matchLen) {
				return 0, nil
			}
			ip += matchLen
			litStart = ip
			if op > maxout {
				return 0, nil
			}
			if abandon(ip, op, abandonAt) {
				return 0, nil
			}
			continue
		}

		h := hash(src[ip:])
		cand := table[h]
		table[h] = int32(ip)

		if cand >= 0 {
			dist := ip - int(cand)
			if dist >= 1 && dist <= maxFarDist {
				minLen := minMatchNear
				if dist > maxNearDist {
					minLen = minMatchFar
				}
				matchLen := matchLength(src, int(cand), ip, minLen)
				if matchLen >= minLen {
					if !flushLiterals(ip) {
						return 0, nil
					}
					if !emitMatch(dst, &op, maxout, dist, matchLen) {
						return 0, nil
					}
					ip += matchLen
					litStart = ip
					if abandon(ip, op, abandonAt) {
						return 0, nil
					}
					continue
				}
			}
		}
		ip++
		if abandon(ip, op, abandonAt) {
			return 0, nil
		}
	}

	if !flushLiterals(n) {
		return 0, nil
	}
	if op >= maxout {
		return 0, nil
	}
	return op, nil
}

func abandon(processed, written, threshold int) bool {
	return processed > threshold && written > processed/2
}

// matchLength returns the number of bytes src[cand:] and src[ip:] have in
// common, capped at the remaining length of src. It always scans the full
// match; minLen is not consulted, and the caller compares the result
// against the near/far minimum itself.
func matchLength(src []byte, cand, ip, minLen int) int {
	n := len(src)
	l := 0
	for ip+l < n && src[cand+l] == src[ip+l] {
		l++
	}
	return l
}

// emitMatch writes a match token (and any length-extension / far-distance
// bytes it requires) to dst[*op:], advancing *op. It returns false if the
// token would not fit within maxout.
func emitMatch(dst []byte, op *int, maxout int, dist, length int) bool {
	sel := length - 2
	extra := 0
	if sel > 7 {
		extra = sel - 7
		sel = 7
	}
	far := dist > maxNearDist
	size := 1 // ctrl byte
	if sel == 7 {
		size += extra/255 + 1
	}
	if far {
		size += 2
	} else {
		size += 1
	}
	if *op+size > maxout {
		return false
	}
	fardist := dist - 1 - maxNearDist
	low5 := uint8((dist - 1) >> 8 & 0x1F)
	if far {
		low5 = 0x1F
	}
	dst[*op] = byte(sel<<5) | low5
	*op++
	if sel == 7 {
		rem := extra
		for rem >= 255 {
			dst[*op] = 0xFF
			*op++
			rem -= 255
		}
		dst[*op] = byte(rem)
		*op++
	}
	if far {
		dst[*op] = byte(fardist)
		dst[*op+1] = byte(fardist >> 8)
		*op += 2
	} else {
		dst[*op] = byte((dist - 1) & 0xFF)
		*op++
	}
	return true
}

// literalOnly encodes src as a sequence of pure literal runs: used when
// src is too short to ever contain a match.
func literalOnly(src, dst []byte) (int, error) {
	op := 0
	maxout := len(dst)
	for pos := 0; pos < len(src); {
		run := len(src) - pos
		if run > maxLiteral {
			run = maxLiteral
		}
		if op+1+run > maxout {
			return 0, nil
		}
		dst[op] = byte(run - 1)
		op++
		n := memutil.CopyBounded(dst[op:], src[pos:pos+run], run)
		op += n
		pos += run
	}
	if op >= maxout && maxout > 0 && len(src) > 0 {
		return 0, nil
	}
	return op, nil
}

// Decode decompresses src into dst, expecting exactly len(dst) bytes of
// output (the block engine always knows the exact split length up front).
// Every literal copy and back-reference is bounds-checked against dst and
// against the invariant that a reference may never point before dst's
// start; any violation returns ErrCorrupt rather than reading or writing
// out of range.
func Decode(src, dst []byte) (int, error) {
	ip, op := 0, 0
	n := len(src)
	want := len(dst)
	for ip < n {
		ctrl := src[ip]
		ip++
		sel := ctrl >> 5
		if sel == 0 {
			run := int(ctrl&0x1F) + 1
			if ip+run > n || op+run > want {
				return 0, ErrCorrupt
			}
			op += memutil.CopyBounded(dst[op:], src[ip:ip+run], run)
			ip += run
			continue
		}

		length := int(sel) + 2
		if sel == 7 {
			for {
				if ip >= n {
					return 0, ErrCorrupt
				}
				b := src[ip]
				ip++
				length += int(b)
				if b != 0xFF {
					break
				}
			}
		}

		low5 := ctrl & 0x1F
		var dist int
		if low5 == 0x1F {
			if ip+2 > n {
				return 0, ErrCorrupt
			}
			ext := int(src[ip]) | int(src[ip+1])<<8
			ip += 2
			dist = maxNearDist + 1 + ext
		} else {
			if ip+1 > n {
				return 0, ErrCorrupt
			}
			dist = (int(low5)<<8 | int(src[ip])) + 1
			ip++
		}

		if dist > op || length < 0 || op+length > want {
			return 0, ErrCorrupt
		}
		memutil.CopyMatch(dst, op, dist, length)
		op += length
	}
	if op != want {
		return 0, ErrCorrupt
	}
	return op, nil
}
