// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command blpack packs and unpacks files using the blosc stream format:
// a small demonstration client for the goblosc package, not a benchmark
// suite.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"
	"github.com/schollz/progressbar/v2"
	"golang.org/x/crypto/ssh/terminal"

	blosc "github.com/cosnicolaou/goblosc"
)

type commonFlags struct {
	Concurrency int `subcmd:"concurrency,4,'number of worker goroutines to use'"`
	Verbose     bool `subcmd:"verbose,false,log per-file progress to stderr"`
}

type packFlags struct {
	commonFlags
	Typesize    int    `subcmd:"typesize,4,'element size in bytes for the shuffle filter'"`
	Level       int    `subcmd:"level,5,'compression level, 0-9'"`
	Shuffle     bool   `subcmd:"shuffle,true,'apply the byte-shuffle filter before compressing'"`
	Compressor  string `subcmd:"compressor,blosclz,'entropy back end: blosclz, zstd or s2'"`
	BlockSize   int    `subcmd:"blocksize,,'force a block size instead of deriving one from level'"`
	ProgressBar bool   `subcmd:"progress,true,'display a progress bar while packing'"`
	Output      string `subcmd:"output,,'output file, omit for stdout'"`
}

type unpackFlags struct {
	commonFlags
	Output string `subcmd:"output,,'output file, omit for stdout'"`
}

var cmdSet *subcmd.CommandSet

func init() {
	defaultConcurrency := map[string]interface{}{
		"concurrency": runtime.GOMAXPROCS(-1),
	}

	packCmd := subcmd.NewCommand("pack",
		subcmd.MustRegisterFlagStruct(&packFlags{}, defaultConcurrency, nil),
		pack, subcmd.ExactlyNumArguments(1))
	packCmd.Document(`compress a file using the blosc stream format.`)

	unpackCmd := subcmd.NewCommand("unpack",
		subcmd.MustRegisterFlagStruct(&unpackFlags{}, defaultConcurrency, nil),
		unpack, subcmd.ExactlyNumArguments(1))
	unpackCmd.Document(`decompress a blosc stream produced by pack.`)

	infoCmd := subcmd.NewCommand("info",
		subcmd.MustRegisterFlagStruct(&commonFlags{}, nil, nil),
		info, subcmd.ExactlyNumArguments(1))
	infoCmd.Document(`print the header fields of a blosc stream.`)

	cmdSet = subcmd.NewCommandSet(packCmd, unpackCmd, infoCmd)
	cmdSet.Document(`pack and unpack files using the blosc block-compression format.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func openInput(name string) (*os.File, int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func createOutput(name string) (io.WriteCloser, error) {
	if len(name) == 0 {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(name)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func pack(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	cl := values.(*packFlags)
	errs := errors.M{}

	in, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	src := make([]byte, size)
	if _, err := io.ReadFull(in, src); err != nil {
		return err
	}

	out, err := createOutput(cl.Output)
	if err != nil {
		return err
	}
	defer func() { errs.Append(out.Close()) }()

	c := blosc.NewContext(
		blosc.WithThreads(cl.Concurrency),
		blosc.WithCompressor(cl.Compressor),
	)
	if cl.BlockSize > 0 {
		errs.Append(c.SetBlockSize(cl.BlockSize))
	}

	dst := make([]byte, size+16+4*(int(size)/128+2))
	n, err := c.Compress(ctx, cl.Level, cl.Shuffle, cl.Typesize, src, dst)
	if err != nil {
		return err
	}

	isTTY := terminal.IsTerminal(int(os.Stderr.Fd()))
	if cl.ProgressBar && !isTTY {
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetBytes64(size),
			progressbar.OptionSetWriter(os.Stderr))
		bar.Add64(size)
	}

	if n == 0 {
		if cl.Verbose {
			fmt.Fprintf(os.Stderr, "%s: incompressible, storing raw\n", args[0])
		}
		_, err = out.Write(src)
		errs.Append(err)
		return errs.Err()
	}
	if cl.Verbose {
		fmt.Fprintf(os.Stderr, "%s: %d -> %d bytes\n", args[0], size, n)
	}
	_, err = out.Write(dst[:n])
	errs.Append(err)
	return errs.Err()
}

func unpack(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cmdutil.HandleSignals(cancel, os.Interrupt)

	cl := values.(*unpackFlags)
	errs := errors.M{}

	in, size, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	src := make([]byte, size)
	if _, err := io.ReadFull(in, src); err != nil {
		return err
	}

	nbytes, _, _, err := blosc.CBufferSizes(src)
	if err != nil {
		return err
	}

	out, err := createOutput(cl.Output)
	if err != nil {
		return err
	}
	defer func() { errs.Append(out.Close()) }()

	c := blosc.NewContext(blosc.WithThreads(cl.Concurrency))
	dst := make([]byte, nbytes)
	if _, err := c.Decompress(ctx, src, dst); err != nil {
		return err
	}
	_, err = out.Write(dst)
	errs.Append(err)
	return errs.Err()
}

func info(ctx context.Context, values interface{}, args []string) error {
	f, _, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 16)
	if _, err := io.ReadFull(f, head); err != nil {
		return err
	}

	nbytes, cbytes, blockSize, err := blosc.CBufferSizes(head)
	if err != nil {
		return err
	}
	typesize, shuffled, err := blosc.CBufferMetainfo(head)
	if err != nil {
		return err
	}
	version, versionLZ, err := blosc.CBufferVersions(head)
	if err != nil {
		return err
	}
	fmt.Printf("nbytes:    %d\n", nbytes)
	fmt.Printf("cbytes:    %d\n", cbytes)
	fmt.Printf("blocksize: %d\n", blockSize)
	fmt.Printf("typesize:  %d\n", typesize)
	fmt.Printf("shuffled:  %v\n", shuffled)
	fmt.Printf("version:   %d (codec sub-format %d)\n", version, versionLZ)
	return nil
}
