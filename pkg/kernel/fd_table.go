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
	"kestrel.dev/kestrel/pkg/errors/kernelerr"
	"kestrel.dev/kestrel/pkg/fs"
	"kestrel.dev/kestrel/pkg/sync"
)

// FD is a syscall-visible handle identifier.
type FD int32

// Identifiers 0 and 1 are reserved for the console streams. They never
// appear in any handle table.
const (
	STDIN  FD = 0
	STDOUT FD = 1

	// firstFD is the first allocatable identifier.
	firstFD FD = 2
)

// maxHandles bounds the number of simultaneously open handles across all
// processes. Allocation beyond it fails the way an exhausted bookkeeping
// allocator would.
const maxHandles = 4096

// A Handle binds an identifier to one open file. The Handle exclusively
// owns the file object: no two Handles reference the same fs.File. Handles
// are immutable after creation; only the file's own cursor state changes,
// and that is the filesystem's business.
type Handle struct {
	fd    FD
	file  fs.File
	owner *Task
}

// FD returns the handle's identifier.
func (h *Handle) FD() FD {
	return h.fd
}

// File returns the owned open file.
func (h *Handle) File() fs.File {
	return h.file
}

// HandleRegistry is the kernel-wide handle set. It exists purely as the
// allocation mechanism: identifiers are assigned from a single monotonic
// counter and are never reused while any process that saw them lives.
// Resolution of an identifier always goes through the owning task's
// FDTable, never through the registry, so one process can never reach
// another's handles.
type HandleRegistry struct {
	mu sync.Mutex

	// nextFD is monotonic and starts at firstFD.
	nextFD FD

	// handles is every live Handle, keyed by identifier. Each entry has
	// exactly one corresponding entry in exactly one task's FDTable.
	handles map[FD]*Handle
}

// NewHandleRegistry returns an empty registry.
func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{
		nextFD:  firstFD,
		handles: make(map[FD]*Handle),
	}
}

// Size returns the number of live handles across all processes.
func (r *HandleRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// allocate assigns the next identifier to file on behalf of owner. It does
// not close file on failure; the caller owns that cleanup.
func (r *HandleRegistry) allocate(owner *Task, file fs.File) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.handles) >= maxHandles {
		return nil, kernelerr.ENOMEM
	}
	h := &Handle{
		fd:    r.nextFD,
		file:  file,
		owner: owner,
	}
	r.nextFD++
	r.handles[h.fd] = h
	return h, nil
}

// remove drops h from the registry.
func (r *HandleRegistry) remove(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, h.fd)
}

// FDTable is one process's ownership set: the handles its identifiers
// resolve to. Only the owning task mutates its own table, but other
// threads of the same process may look up concurrently.
type FDTable struct {
	registry *HandleRegistry

	mu      sync.Mutex
	handles map[FD]*Handle
}

func newFDTable(registry *HandleRegistry) *FDTable {
	return &FDTable{
		registry: registry,
		handles:  make(map[FD]*Handle),
	}
}

// NewHandle allocates an identifier for file owned by owner and inserts the
// Handle into both the registry and this table. On failure nothing is
// inserted and the caller must close file (no handle leak).
func (f *FDTable) NewHandle(owner *Task, file fs.File) (FD, error) {
	h, err := f.registry.allocate(owner, file)
	if err != nil {
		return -1, err
	}
	f.mu.Lock()
	f.handles[h.fd] = h
	f.mu.Unlock()
	return h.fd, nil
}

// Get resolves fd strictly within this ownership set. It returns nil if fd
// was never opened by this process or was already closed.
func (f *FDTable) Get(fd FD) *Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handles[fd]
}

// Release closes fd's file and removes the Handle from both the registry
// and this table. It is a no-op on an unknown identifier: already closed
// means closed.
func (f *FDTable) Release(fd FD) {
	f.mu.Lock()
	h := f.handles[fd]
	delete(f.handles, fd)
	f.mu.Unlock()

	if h == nil {
		return
	}
	f.registry.remove(h)
	h.file.Close()
}

// ReleaseAll releases every handle in the table. It runs once per process
// exit, on every exit path, and leaves the table empty with every file
// closed. Taking one handle at a time keeps it safe against Release calls
// interleaved by the same (only mutating) thread.
func (f *FDTable) ReleaseAll() {
	for {
		f.mu.Lock()
		var fd FD
		found := false
		for id := range f.handles {
			fd = id
			found = true
			break
		}
		f.mu.Unlock()
		if !found {
			return
		}
		f.Release(fd)
	}
}

// Size returns the number of handles currently owned.
func (f *FDTable) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}
