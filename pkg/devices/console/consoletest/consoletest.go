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

// Package consoletest provides a console device double for tests.
package consoletest

import (
	"bytes"
	"io"

	"kestrel.dev/kestrel/pkg/sync"
)

// Device is a console device backed by in-memory buffers. It records
// every write and serves reads from a fixed input script. All methods are
// safe for concurrent use.
type Device struct {
	mu sync.Mutex

	in  *bytes.Reader
	out bytes.Buffer

	// Reads counts ReadByte calls, Writes counts Write calls.
	Reads  int
	Writes int
}

// NewDevice returns a Device whose reads drain input.
func NewDevice(input string) *Device {
	return &Device{in: bytes.NewReader([]byte(input))}
}

// ReadByte returns the next input byte, or io.EOF when the script is
// exhausted.
func (d *Device) ReadByte() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Reads++
	return d.in.ReadByte()
}

// Write appends p to the recorded output.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Writes++
	return d.out.Write(p)
}

// Output returns everything written so far.
func (d *Device) Output() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.out.String()
}

var _ io.Writer = (*Device)(nil)
