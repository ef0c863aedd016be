// Copyright 2024 The goblosc Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenInputReportsSize(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "data")
	if err := os.WriteFile(name, []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, size, err := openInput(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if size != 11 {
		t.Errorf("size = %d, want 11", size)
	}
}

func TestCreateOutputEmptyNameIsStdout(t *testing.T) {
	out, err := createOutput("")
	if err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("nopCloser.Close should never fail: %v", err)
	}
}

func TestCreateOutputWritesFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out")
	out, err := createOutput(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := out.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
}
