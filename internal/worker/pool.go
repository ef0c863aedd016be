// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package worker implements the block-level worker pool shared by
// compression and decompression: a fixed number of goroutines pull block
// indices from a shared cursor, run a caller-supplied per-block function
// against each, and give up early the first time any block reports a
// hard error. It is grounded in the dispatch/worker goroutine shape of a
// classic fan-out pipeline, simplified because this module's blocks write
// into disjoint, pre-sized regions rather than needing order-preserving
// reassembly.
package worker

import (
	"context"
	"sync"
)

// Run executes fn(i) for every block index in [0, nblocks), using up to
// nthreads goroutines. If nthreads <= 1 or nblocks <= 1 it runs serially
// in the calling goroutine, matching spec.md's documented single-threaded
// fallback (and keeping the common case free of goroutine overhead).
//
// Blocks are claimed from a shared cursor under a mutex, so a fast
// goroutine that finishes block 2 before a slow one finishes block 0 goes
// on to claim block 3 rather than idling — this is the "next available
// block" scheduling spec.md describes, not a static range split.
//
// The first error returned by any fn(i) call is recorded and returned
// once every in-flight call has finished; once an error has been
// recorded, goroutines stop claiming new blocks (the "giveup" flag) but
// Run still waits for work already in flight to complete before
// returning, so fn must be safe to call concurrently with itself for
// different indices and must not touch shared state outside the region
// identified by its index argument.
func Run(ctx context.Context, nthreads, nblocks int, fn func(i int) error) error {
	if nblocks <= 0 {
		return nil
	}
	if nthreads <= 1 || nblocks <= 1 {
		for i := 0; i < nblocks; i++ {
			if err := fn(i); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	}

	p := &pool{nblocks: nblocks, fn: fn, ctx: ctx}
	if nthreads > nblocks {
		nthreads = nblocks
	}
	var wg sync.WaitGroup
	wg.Add(nthreads)
	for t := 0; t < nthreads; t++ {
		go func() {
			defer wg.Done()
			p.drain()
		}()
	}
	wg.Wait()
	return p.err
}

// pool holds the shared dispatch state for one Run call: the next block
// index to hand out and the first error seen, both protected by mu.
type pool struct {
	ctx     context.Context
	fn      func(i int) error
	nblocks int

	mu     sync.Mutex
	next   int
	giveup bool
	err    error
}

// drain is the body of a single worker goroutine: claim blocks one at a
// time until none remain or another goroutine has already recorded a
// hard error.
func (p *pool) drain() {
	for {
		i, ok := p.claim()
		if !ok {
			return
		}
		err := p.fn(i)
		if err == nil {
			err = p.ctx.Err()
		}
		if err != nil {
			p.mu.Lock()
			if p.err == nil {
				p.err = err
			}
			p.giveup = true
			p.mu.Unlock()
			return
		}
	}
}

// claim returns the next unclaimed block index, or ok=false if the pool
// is exhausted or another goroutine has already triggered giveup.
func (p *pool) claim() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.giveup || p.next >= p.nblocks {
		return 0, false
	}
	i := p.next
	p.next++
	return i, true
}
