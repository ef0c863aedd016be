// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package blosc

// l1CacheSize is the nominal per-core L1 data cache size this module
// targets when picking a default block size; it is a tuning constant,
// not something the stream format records.
const l1CacheSize = 32 * 1024

const minBlockSize = 128

// computeBlockSize derives blocksize from (clevel, typesize, nbytes) per
// the blocking policy: start from a clevel-scaled multiple of the L1
// cache size, then clamp into [minBlockSize, nbytes] and round down to a
// multiple of typesize so every non-leftover block splits evenly.
func computeBlockSize(clevel, typesize, nbytes, forced int) int {
	blockSize := nbytes
	if forced > 0 {
		blockSize = forced
		if blockSize < minBlockSize {
			blockSize = minBlockSize
		}
	} else if nbytes >= l1CacheSize*typesize {
		blockSize = l1CacheSize * typesize
		switch {
		case clevel == 1:
			blockSize /= 8
		case clevel >= 2 && clevel <= 3:
			blockSize /= 4
		case clevel >= 4 && clevel <= 6:
			blockSize /= 2
		case clevel == 9:
			blockSize *= 2
		}
	}

	if blockSize > nbytes {
		blockSize = nbytes
	}
	if blockSize < minBlockSize {
		blockSize = minBlockSize
	}
	if typesize > 1 {
		blockSize -= blockSize % typesize
		// TODO: when typesize > nbytes (e.g. typesize=200, nbytes=100),
		// blockSize rounds down to 0 here and gets bumped back up to
		// typesize, which can exceed nbytes and momentarily step outside
		// the documented [128, nbytes] clamp before newBlockLayout treats
		// it as a single leftover block. Revisit if a caller ever needs
		// the clamp to hold exactly in this corner case.
		if blockSize == 0 {
			blockSize = typesize
		}
	}
	return blockSize
}

// blockLayout describes how nbytes is partitioned into blocks of
// blockSize, with the final block possibly shorter ("leftover").
type blockLayout struct {
	blockSize int
	nblocks   int
	leftover  int // 0 when nbytes is an exact multiple of blockSize
}

func newBlockLayout(blockSize, nbytes int) blockLayout {
	if nbytes == 0 {
		return blockLayout{blockSize: blockSize, nblocks: 0}
	}
	nblocks := (nbytes + blockSize - 1) / blockSize
	leftover := nbytes % blockSize
	return blockLayout{blockSize: blockSize, nblocks: nblocks, leftover: leftover}
}

// size returns the length of block i and whether it is the leftover
// block.
func (l blockLayout) size(i int) (size int, leftover bool) {
	if l.leftover != 0 && i == l.nblocks-1 {
		return l.leftover, true
	}
	return l.blockSize, false
}

// offset returns the byte offset of block i within the raw buffer.
func (l blockLayout) offset(i int) int {
	return i * l.blockSize
}
