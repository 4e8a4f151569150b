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

// Package kerneltest builds fully wired kernels on test doubles.
package kerneltest

import (
	"sync/atomic"
	"testing"

	"kestrel.dev/kestrel/pkg/devices/console/consoletest"
	"kestrel.dev/kestrel/pkg/fs/fstest"
	"kestrel.dev/kestrel/pkg/fs/memfs"
	"kestrel.dev/kestrel/pkg/kernel"
	"kestrel.dev/kestrel/pkg/syscalls/kestrel"
)

// Platform records power-off requests.
type Platform struct {
	poweredOff atomic.Bool
}

// PowerOff implements kernel.Platform.PowerOff.
func (p *Platform) PowerOff() {
	p.poweredOff.Store(true)
}

// PoweredOff reports whether PowerOff was called.
func (p *Platform) PoweredOff() bool {
	return p.poweredOff.Load()
}

// Machine is a kernel wired to observable collaborators.
type Machine struct {
	Kernel   *kernel.Kernel
	FS       *fstest.CountingFS
	Console  *consoletest.Device
	Platform *Platform
}

// NewMachine returns a Machine running the default syscall table over an
// empty in-memory filesystem. Console reads drain input.
func NewMachine(tb testing.TB, input string) *Machine {
	tb.Helper()
	m := &Machine{
		FS:       fstest.NewCountingFS(memfs.New()),
		Console:  consoletest.NewDevice(input),
		Platform: &Platform{},
	}
	k, err := kernel.New(kernel.Args{
		FS:       m.FS,
		Console:  m.Console,
		Platform: m.Platform,
		Table:    kestrel.Table,
	})
	if err != nil {
		tb.Fatalf("kernel.New: %v", err)
	}
	m.Kernel = k
	return m
}
