// Copyright 2026 The Kestrel Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fstest provides a call-counting fs.FileSystem wrapper for tests
// that assert the kernel did, or did not, reach the filesystem
// collaborator.
package fstest

import (
	"sync/atomic"

	"kestrel.dev/kestrel/pkg/fs"
)

// Counts holds per-operation call counts.
type Counts struct {
	Create atomic.Int64
	Open   atomic.Int64
	Remove atomic.Int64
	Read   atomic.Int64
	Write  atomic.Int64
	Seek   atomic.Int64
	Tell   atomic.Int64
	Length atomic.Int64
	Close  atomic.Int64
}

// CountingFS wraps an fs.FileSystem, counting every call that reaches it
// and every call reaching files it opened.
type CountingFS struct {
	// Inner is the wrapped filesystem.
	Inner fs.FileSystem

	// Counts is incremented on every forwarded call.
	Counts Counts
}

// NewCountingFS wraps inner.
func NewCountingFS(inner fs.FileSystem) *CountingFS {
	return &CountingFS{Inner: inner}
}

// Create implements fs.FileSystem.Create.
func (c *CountingFS) Create(name string, size uint64) error {
	c.Counts.Create.Add(1)
	return c.Inner.Create(name, size)
}

// Open implements fs.FileSystem.Open.
func (c *CountingFS) Open(name string) (fs.File, error) {
	c.Counts.Open.Add(1)
	f, err := c.Inner.Open(name)
	if err != nil {
		return nil, err
	}
	return &countingFile{inner: f, counts: &c.Counts}, nil
}

// Remove implements fs.FileSystem.Remove.
func (c *CountingFS) Remove(name string) error {
	c.Counts.Remove.Add(1)
	return c.Inner.Remove(name)
}

type countingFile struct {
	inner  fs.File
	counts *Counts
}

func (f *countingFile) Read(dst []byte) (int, error) {
	f.counts.Read.Add(1)
	return f.inner.Read(dst)
}

func (f *countingFile) Write(src []byte) (int, error) {
	f.counts.Write.Add(1)
	return f.inner.Write(src)
}

func (f *countingFile) Seek(pos int64) {
	f.counts.Seek.Add(1)
	f.inner.Seek(pos)
}

func (f *countingFile) Tell() int64 {
	f.counts.Tell.Add(1)
	return f.inner.Tell()
}

func (f *countingFile) Length() int64 {
	f.counts.Length.Add(1)
	return f.inner.Length()
}

func (f *countingFile) Close() {
	f.counts.Close.Add(1)
	f.inner.Close()
}
