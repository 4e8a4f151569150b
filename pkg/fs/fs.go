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

// Package fs declares the filesystem contract the kernel consumes. The
// kernel never touches storage directly; it resolves names and moves bytes
// only through these interfaces. The kernel's filesystem lock serializes
// calls that touch file content or the namespace, so implementations need
// only be safe for the concurrency the kernel actually produces: namespace
// operations are serialized, but cursor operations on distinct open files
// may be concurrent.
package fs

// A File is one open file. Each open carries its own cursor; two opens of
// the same name never share cursor state.
type File interface {
	// Read reads up to len(dst) bytes from the cursor, advancing it by the
	// number of bytes read. It returns 0, nil at end of file.
	Read(dst []byte) (int, error)

	// Write writes up to len(src) bytes at the cursor, advancing it by the
	// number of bytes written. A write reaching the end of the file stops
	// there and returns the short count.
	Write(src []byte) (int, error)

	// Seek moves the cursor to pos. Seeking past the end of the file is
	// allowed; subsequent reads return 0 bytes.
	Seek(pos int64)

	// Tell returns the current cursor position.
	Tell() int64

	// Length returns the file's length in bytes.
	Length() int64

	// Close releases the open file. The File must not be used afterwards.
	Close()
}

// A FileSystem resolves names to files.
type FileSystem interface {
	// Create creates a new empty file of the given initial size. It
	// returns EEXIST if the name is taken and ENOSPC if there is no room.
	Create(name string, size uint64) error

	// Open opens the named file. It returns ENOENT if it does not exist.
	Open(name string) (File, error)

	// Remove removes the named file. Files already open stay usable until
	// closed; only the name disappears. It returns ENOENT if the name
	// does not exist.
	Remove(name string) error
}
