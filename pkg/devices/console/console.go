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

// Package console provides the console device consumed by the kernel:
// byte-wise input and bulk output.
package console

import (
	"bufio"
	"io"

	"kestrel.dev/kestrel/pkg/sync"
)

// Device is the console the kernel reads keyboard input from and writes
// program output to.
type Device interface {
	// ReadByte blocks until one input byte is available and returns it.
	ReadByte() (byte, error)

	// Write writes p to the console as a single operation.
	Write(p []byte) (int, error)
}

// Console is a Device backed by a host reader and writer, typically the
// process's stdin and stdout.
type Console struct {
	in *bufio.Reader

	mu  sync.Mutex
	out io.Writer
}

// New returns a Console reading from in and writing to out.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ReadByte implements Device.ReadByte.
func (c *Console) ReadByte() (byte, error) {
	return c.in.ReadByte()
}

// Write implements Device.Write.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}
