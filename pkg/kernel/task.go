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

package kernel

import (
	"sync/atomic"

	"kestrel.dev/kestrel/pkg/fs"
	"kestrel.dev/kestrel/pkg/log"
	"kestrel.dev/kestrel/pkg/sync"
	"kestrel.dev/kestrel/pkg/usermem"
)

// Task is one process's kernel-side control block: its identity, address
// space, handle ownership set, and exit state. Each task runs its program
// image on a dedicated goroutine and enters the kernel only through Trap.
type Task struct {
	k       *Kernel
	tid     ThreadID
	cmdline string
	image   Program
	parent  *Task

	// mm is the task's address space. All validation of user-supplied
	// addresses happens against it.
	mm *AddressSpace

	// fdTable is the task's handle ownership set.
	fdTable *FDTable

	// mu guards children.
	mu       sync.Mutex
	children map[ThreadID]*Task

	// waited is set by the parent's first successful wait; a child is
	// never waitable twice.
	waited atomic.Bool

	// exitOnce makes teardown idempotent across exit paths.
	exitOnce sync.Once

	// exitStatus is valid once exited is closed.
	exitStatus int32
	exited     chan struct{}
}

// TID returns the task's process identifier.
func (t *Task) TID() ThreadID {
	return t.tid
}

// Cmdline returns the command line the process was started with.
func (t *Task) Cmdline() string {
	return t.cmdline
}

// Kernel returns the owning kernel.
func (t *Task) Kernel() *Kernel {
	return t.k
}

// AddressSpace returns the task's address space.
func (t *Task) AddressSpace() *AddressSpace {
	return t.mm
}

// Memory returns the task's user memory. Addresses handed to it must have
// been validated against the task's AddressSpace first.
func (t *Task) Memory() usermem.IO {
	return t.mm.IO()
}

// FDTable returns the task's handle ownership set.
func (t *Task) FDTable() *FDTable {
	return t.fdTable
}

// NewHandle allocates a handle for file owned by t. On error the caller
// must close file.
func (t *Task) NewHandle(file fs.File) (FD, error) {
	return t.fdTable.NewHandle(t, file)
}

// GetHandle resolves fd in t's ownership set, or nil.
func (t *Task) GetHandle(fd FD) *Handle {
	return t.fdTable.Get(fd)
}

// ReleaseHandle releases fd if t owns it; otherwise it has no effect.
func (t *Task) ReleaseHandle(fd FD) {
	t.fdTable.Release(fd)
}

// LockFS acquires the kernel's filesystem lock on behalf of t.
func (t *Task) LockFS() {
	t.k.fileMu.Lock(int64(t.tid))
}

// UnlockFS releases the filesystem lock.
func (t *Task) UnlockFS() {
	t.k.fileMu.Unlock()
}

// ExitStatus returns the task's exit status. Only meaningful after the
// task has exited.
func (t *Task) ExitStatus() int32 {
	return t.exitStatus
}

// run is the task goroutine: it runs the program image and routes every
// way out (normal return, exit syscall, fatal validation failure, runtime
// fault) through the same teardown in Exit.
func (t *Task) run() {
	defer func() {
		if r := recover(); r != nil {
			if r == errExitUnwind {
				// Already torn down by Trap.
				return
			}
			log.Warningf("[%d] runtime fault: %v", t.tid, r)
			t.Exit(-1)
		}
	}()
	status := t.image(t)
	t.Exit(status)
}
