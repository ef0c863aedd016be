// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package blosc

import (
	"context"
	"sync"

	"github.com/cosnicolaou/goblosc/internal/codec"
)

// Context is a re-entrant compression/decompression engine: spec.md §5
// notes that the classic API shares one global pool and parameter record,
// so only one operation may run at a time, while "context" entry points
// allocate their scratch per call and may run concurrently with each
// other. Context implements the latter; the package-level Compress and
// Decompress functions use a shared default Context for the former. The
// mutex guards only the configuration fields: operations on one Context,
// including the default one, may run concurrently.
type Context struct {
	mu sync.Mutex

	nthreads   int
	compressor string
	blockSize  int // 0 means "derive from clevel"

	registry *codec.Registry
}

// NewContext builds a Context from opts, applying the module's defaults
// (single-threaded, blosclz unless BLOSC_COMPRESSOR says otherwise,
// automatic block sizing) first.
func NewContext(opts ...Option) *Context {
	o := defaultCtxOpts()
	for _, fn := range opts {
		fn(&o)
	}
	return &Context{
		nthreads:   o.nthreads,
		compressor: o.compressor,
		blockSize:  o.blockSize,
		registry:   codec.NewRegistry(),
	}
}

// defaultContext is the process-wide engine behind the package-level
// Compress/Decompress functions.
var defaultContext = NewContext()

// SetNThreads sets the worker pool size used by subsequent operations on
// c. It is the Context analogue of spec.md's set_nthreads.
func (c *Context) SetNThreads(n int) error {
	if n < 1 {
		return newError(ErrParameterOutOfRange, "nthreads must be >= 1, got %d", n)
	}
	c.mu.Lock()
	c.nthreads = n
	c.mu.Unlock()
	return nil
}

// SetCompressor selects the entropy back end by name for subsequent
// operations on c, mirroring spec.md's set_compressor.
func (c *Context) SetCompressor(name string) error {
	if _, err := c.registry.ByName(name); err != nil {
		return newError(ErrParameterOutOfRange, "%v", err)
	}
	c.mu.Lock()
	c.compressor = name
	c.mu.Unlock()
	return nil
}

// GetCompressor reports the name of the entropy back end c currently
// uses, mirroring spec.md's get_compressor.
func (c *Context) GetCompressor() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.compressor
}

// SetBlockSize forces subsequent operations on c to use the given block
// size rather than deriving one from clevel; 0 restores automatic
// sizing.
func (c *Context) SetBlockSize(n int) error {
	if n < 0 {
		return newError(ErrParameterOutOfRange, "blocksize must be >= 0, got %d", n)
	}
	c.mu.Lock()
	c.blockSize = n
	c.mu.Unlock()
	return nil
}

// FreeResources is a no-op maintained for API parity with spec.md's
// free_resources: the scratch buffers and (optional) worker pool this
// module uses are owned per-call by Compress/Decompress, not cached
// across calls on c, so there is nothing persistent to release. It
// exists so callers porting code that calls free_resources at shutdown
// have somewhere to call it.
func (c *Context) FreeResources() {}

// Compress compresses src into dst using the process-wide default
// Context, mirroring spec.md's compress entry point.
func Compress(clevel int, shuffle bool, typesize int, src, dst []byte) (int, error) {
	return defaultContext.Compress(context.Background(), clevel, shuffle, typesize, src, dst)
}

// Decompress decompresses src into dst using the process-wide default
// Context, mirroring spec.md's decompress entry point.
func Decompress(src, dst []byte) (int, error) {
	return defaultContext.Decompress(context.Background(), src, dst)
}

// SetNThreads configures the process-wide default Context's worker pool
// size, mirroring spec.md's set_nthreads.
func SetNThreads(n int) error { return defaultContext.SetNThreads(n) }

// SetCompressor configures the process-wide default Context's entropy
// back end, mirroring spec.md's set_compressor.
func SetCompressor(name string) error { return defaultContext.SetCompressor(name) }

// GetCompressor reports the process-wide default Context's entropy back
// end, mirroring spec.md's get_compressor.
func GetCompressor() string { return defaultContext.GetCompressor() }

// SetBlockSize configures the process-wide default Context's block size
// override, mirroring spec.md's set_blocksize.
func SetBlockSize(n int) error { return defaultContext.SetBlockSize(n) }

// FreeResources calls FreeResources on the process-wide default Context,
// which is a no-op, mirroring spec.md's free_resources.
func FreeResources() { defaultContext.FreeResources() }
