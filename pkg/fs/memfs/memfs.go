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

// Package memfs is an in-memory filesystem implementing the fs contract.
// Files are flat (no directories) and fixed-size: a file's length is set
// at creation and writes past it are cut short. Removing a name unlinks it
// immediately; files already open stay usable until closed.
package memfs

import (
	"github.com/google/btree"

	"kestrel.dev/kestrel/pkg/errors/kernelerr"
	"kestrel.dev/kestrel/pkg/fs"
	"kestrel.dev/kestrel/pkg/sync"
)

// maxFileSize bounds a single file's initial size.
const maxFileSize = 8 << 20

// btreeDegree is the branching factor of the namespace index.
const btreeDegree = 16

// inode holds a file's bytes. Open files reference the inode; unlinking
// the name does not free it.
type inode struct {
	mu   sync.Mutex
	data []byte
}

// dentry binds a name to an inode in the namespace index.
type dentry struct {
	name  string
	inode *inode
}

func dentryLess(a, b *dentry) bool {
	return a.name < b.name
}

// MemFS implements fs.FileSystem in memory.
type MemFS struct {
	mu    sync.Mutex
	names *btree.BTreeG[*dentry]
}

// New returns an empty filesystem.
func New() *MemFS {
	return &MemFS{
		names: btree.NewG(btreeDegree, dentryLess),
	}
}

// Create implements fs.FileSystem.Create.
func (m *MemFS) Create(name string, size uint64) error {
	if name == "" {
		return kernelerr.EINVAL
	}
	if size > maxFileSize {
		return kernelerr.ENOSPC
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.names.Get(&dentry{name: name}); ok {
		return kernelerr.EEXIST
	}
	m.names.ReplaceOrInsert(&dentry{
		name:  name,
		inode: &inode{data: make([]byte, size)},
	})
	return nil
}

// Install creates name with the given contents, replacing any existing
// file. It is the preload path used when populating the filesystem from a
// host directory at boot.
func (m *MemFS) Install(name string, data []byte) error {
	if name == "" {
		return kernelerr.EINVAL
	}
	if uint64(len(data)) > maxFileSize {
		return kernelerr.ENOSPC
	}
	ino := &inode{data: make([]byte, len(data))}
	copy(ino.data, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names.ReplaceOrInsert(&dentry{name: name, inode: ino})
	return nil
}

// Open implements fs.FileSystem.Open. Every open carries its own cursor.
func (m *MemFS) Open(name string) (fs.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.names.Get(&dentry{name: name})
	if !ok {
		return nil, kernelerr.ENOENT
	}
	return &file{inode: d.inode}, nil
}

// Remove implements fs.FileSystem.Remove.
func (m *MemFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.names.Delete(&dentry{name: name}); !ok {
		return kernelerr.ENOENT
	}
	return nil
}

// Names returns every file name in order.
func (m *MemFS) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, m.names.Len())
	m.names.Ascend(func(d *dentry) bool {
		names = append(names, d.name)
		return true
	})
	return names
}

// file is one open file: an inode reference plus a private cursor.
type file struct {
	inode *inode

	mu     sync.Mutex
	cursor int64
	closed bool
}

// Read implements fs.File.Read.
func (f *file) Read(dst []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, kernelerr.EBADF
	}
	f.inode.mu.Lock()
	defer f.inode.mu.Unlock()
	if f.cursor >= int64(len(f.inode.data)) {
		return 0, nil
	}
	n := copy(dst, f.inode.data[f.cursor:])
	f.cursor += int64(n)
	return n, nil
}

// Write implements fs.File.Write. Writes stop at the end of the file.
func (f *file) Write(src []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, kernelerr.EBADF
	}
	f.inode.mu.Lock()
	defer f.inode.mu.Unlock()
	if f.cursor >= int64(len(f.inode.data)) {
		return 0, nil
	}
	n := copy(f.inode.data[f.cursor:], src)
	f.cursor += int64(n)
	return n, nil
}

// Seek implements fs.File.Seek.
func (f *file) Seek(pos int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	f.cursor = pos
}

// Tell implements fs.File.Tell.
func (f *file) Tell() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Length implements fs.File.Length.
func (f *file) Length() int64 {
	f.inode.mu.Lock()
	defer f.inode.mu.Unlock()
	return int64(len(f.inode.data))
}

// Close implements fs.File.Close.
func (f *file) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
