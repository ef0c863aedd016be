// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package blosc_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"testing"

	"github.com/cosnicolaou/goblosc"
	"github.com/cosnicolaou/goblosc/internal/shuffle"
)

func compressRoundTrip(t *testing.T, c *blosc.Context, clevel int, shuffle bool, typesize int, src []byte) ([]byte, int) {
	t.Helper()
	dst := make([]byte, len(src)+16+4*((len(src)/128)+2))
	n, err := c.Compress(context.Background(), clevel, shuffle, typesize, src, dst)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	return dst, n
}

func TestRoundTripAllSizesAllShufflesAllLevels(t *testing.T) {
	c := blosc.NewContext()
	sizes := []int{0, 1, 127, 128, 129, 4096, 4095, 4097}
	types := []int{1, 2, 4, 8, 16, 24, 32}
	for _, T := range types {
		for _, shuffle := range []bool{false, true} {
			for _, clevel := range []int{1, 5, 9} {
				for _, n := range sizes {
					src := make([]byte, n)
					mrand.New(mrand.NewSource(int64(n + T))).Read(src)
					dst, cn := compressRoundTrip(t, c, clevel, shuffle, T, src)
					var out []byte
					if cn == 0 {
						out = append([]byte(nil), src...) // caller stores raw
					} else {
						out = make([]byte, len(src))
						got, err := c.Decompress(context.Background(), dst[:cn], out)
						if err != nil {
							t.Fatalf("T=%d shuffle=%v clevel=%d n=%d: Decompress: %v", T, shuffle, clevel, n, err)
						}
						if got != len(src) {
							t.Fatalf("T=%d shuffle=%v clevel=%d n=%d: got %d bytes, want %d", T, shuffle, clevel, n, got, len(src))
						}
					}
					if !bytes.Equal(out, src) {
						t.Fatalf("T=%d shuffle=%v clevel=%d n=%d: round trip mismatch", T, shuffle, clevel, n)
					}
				}
			}
		}
	}
}

func TestThreadInvariance(t *testing.T) {
	src := make([]byte, 1<<20)
	mrand.New(mrand.NewSource(99)).Read(src)
	for i := range src {
		src[i] = byte(i / 4)
	}
	var results [][]byte
	for _, threads := range []int{1, 2, 8} {
		c := blosc.NewContext(blosc.WithThreads(threads))
		dst, n := compressRoundTrip(t, c, 5, true, 4, src)
		out := make([]byte, len(src))
		if _, err := c.Decompress(context.Background(), dst[:n], out); err != nil {
			t.Fatalf("threads=%d: Decompress: %v", threads, err)
		}
		results = append(results, out)
	}
	for i := 1; i < len(results); i++ {
		if !bytes.Equal(results[0], results[i]) {
			t.Fatalf("decompressed output differs between thread counts")
		}
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	c := blosc.NewContext()
	src := bytes.Repeat([]byte{1, 2, 3, 4}, 100000)
	dst, n := compressRoundTrip(t, c, 5, true, 4, src)
	if n == 0 {
		t.Fatal("expected compressible input")
	}
	nbytes, cbytes, _, err := blosc.CBufferSizes(dst[:n])
	if err != nil {
		t.Fatal(err)
	}
	if nbytes != len(src) {
		t.Errorf("nbytes = %d, want %d", nbytes, len(src))
	}
	if cbytes != n {
		t.Errorf("cbytes = %d, want %d", cbytes, n)
	}
}

func TestIncompressibleRandomData(t *testing.T) {
	c := blosc.NewContext()
	src := make([]byte, 65536)
	if _, err := rand.Read(src); err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, len(src)+16)
	n, err := c.Compress(context.Background(), 5, true, 4, src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Logf("random data happened to compress to %d bytes; not a failure but unusual", n)
	}
}

func TestCapacityRespected(t *testing.T) {
	c := blosc.NewContext()
	src := make([]byte, 65536)
	if _, err := rand.Read(src); err != nil {
		t.Fatal(err)
	}
	dst := make([]byte, len(src)+16)
	n, err := c.Compress(context.Background(), 5, true, 4, src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 && n != len(src)+16 {
		t.Fatalf("compress wrote %d bytes, want 0 or exactly %d", n, len(src)+16)
	}
}

func TestMonotoneBstarts(t *testing.T) {
	c := blosc.NewContext()
	src := bytes.Repeat([]byte{9, 8, 7, 6, 5}, 200000)
	dst, n := compressRoundTrip(t, c, 5, true, 4, src)
	if n == 0 {
		t.Fatal("expected compressible input")
	}
	_, cbytes, blockSize, err := blosc.CBufferSizes(dst[:n])
	if err != nil {
		t.Fatal(err)
	}
	nblocks := (len(src) + blockSize - 1) / blockSize
	prev := -1
	for i := 0; i < nblocks; i++ {
		off := 16 + 4*i
		v := int(binary.LittleEndian.Uint32(dst[off:]))
		if v <= prev {
			t.Fatalf("bstarts[%d] = %d is not greater than bstarts[%d] = %d", i, v, i-1, prev)
		}
		prev = v
	}
	if cbytes != n {
		t.Fatalf("cbytes %d != returned length %d", cbytes, n)
	}
}

// S2/S3 from the spec's concrete scenarios: whether dst_capacity leaves
// exactly enough room for the header to fit the raw-stored fallback.
func TestScenarioS2S3HeaderCapacityBoundary(t *testing.T) {
	c := blosc.NewContext()
	src := make([]byte, 999)
	mrand.New(mrand.NewSource(3)).Read(src)

	dstTooSmall := make([]byte, len(src)+15)
	n, err := c.Compress(context.Background(), 1, false, 4, src, dstTooSmall)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("S2: expected 0 when dst_capacity is one byte short of N+16, got %d", n)
	}

	dstJustEnough := make([]byte, len(src)+16)
	n, err = c.Compress(context.Background(), 1, false, 4, src, dstJustEnough)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, len(src))
	if n == 0 {
		copy(out, src)
	} else {
		if _, err := c.Decompress(context.Background(), dstJustEnough[:n], out); err != nil {
			t.Fatalf("S3: Decompress: %v", err)
		}
	}
	if !bytes.Equal(out, src) {
		t.Fatal("S3: round trip mismatch")
	}
}

// S4 from the spec: an explicit byte-layout check for the shuffle filter
// at T=8, N=256.
func TestScenarioS4ShuffleLayout(t *testing.T) {
	src := make([]byte, 256)
	for i := range src {
		src[i] = byte(i)
	}
	out := make([]byte, 256)
	shuffle.Shuffle(8, src, out)
	for j := 0; j < 8; j++ {
		stream := out[j*32 : j*32+32]
		for k := 0; k < 32; k++ {
			want := byte(j + 8*k)
			if stream[k] != want {
				t.Fatalf("stream %d byte %d = %d, want %d", j, k, stream[k], want)
			}
		}
	}
}

// S6 from the spec: corrupting a previously valid compressed buffer must
// not cause Decompress to write beyond dst or silently fabricate data.
func TestScenarioS6CorruptedBuffer(t *testing.T) {
	c := blosc.NewContext()
	src := bytes.Repeat([]byte("corruption-resilience-probe"), 5000)
	dst, n := compressRoundTrip(t, c, 5, true, 4, src)
	if n == 0 {
		t.Fatal("expected compressible input")
	}

	corrupted := append([]byte(nil), dst[:n]...)
	corrupted[20] ^= 0xFF // flip a byte inside the bstarts table

	out := make([]byte, len(src))
	got, err := c.Decompress(context.Background(), corrupted, out)
	if err == nil && got > len(src) {
		t.Fatalf("Decompress wrote %d bytes beyond nbytes=%d without an error", got, len(src))
	}
}
