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

package kestrel

import (
	"kestrel.dev/kestrel/pkg/arch"
	"kestrel.dev/kestrel/pkg/errors/kernelerr"
	"kestrel.dev/kestrel/pkg/kernel"
	"kestrel.dev/kestrel/pkg/usermem"
)

// Read implements the read syscall.
//
// Identifier 0 reads up to size bytes from the console, one byte at a
// time, and returns the count actually read: input that ends before size
// bytes yields a short count. Identifier 1 is not readable and returns
// -1. Any other
// identifier is resolved strictly in the caller's ownership set; if
// unowned, -1 is returned and the filesystem is never invoked.
func Read(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := kernel.FD(args[0].Int())
	addr := args[1].Pointer()
	size := uint64(args[2].SizeT())

	t.LockFS()
	defer t.UnlockFS()

	switch fd {
	case kernel.STDIN:
		// The destination is written through before any file handle is
		// involved, so it is validated the same way as a file buffer.
		if !t.AddressSpace().IsValidRange(addr, size) {
			return 0, kernel.CtrlKill, nil
		}
		for i := uint64(0); i < size; i++ {
			b, err := t.Kernel().Console().ReadByte()
			if err != nil {
				return uintptr(i), nil, nil
			}
			if _, err := t.Memory().CopyOut(addr+usermem.Addr(i), []byte{b}); err != nil {
				return 0, kernel.CtrlKill, nil
			}
		}
		return uintptr(size), nil, nil

	case kernel.STDOUT:
		return 0, nil, kernelerr.EBADF

	default:
		if !t.AddressSpace().IsValidRange(addr, size) {
			return 0, kernel.CtrlKill, nil
		}
		h := t.GetHandle(fd)
		if h == nil {
			return 0, nil, kernelerr.EBADF
		}
		buf := make([]byte, size)
		n, err := h.File().Read(buf)
		if err != nil {
			return 0, nil, err
		}
		if _, err := t.Memory().CopyOut(addr, buf[:n]); err != nil {
			return 0, kernel.CtrlKill, nil
		}
		return uintptr(n), nil, nil
	}
}

// Write implements the write syscall.
//
// Identifier 1 forwards the buffer to the console as a single operation
// and never touches the handle registry. Identifier 0 is not writable and
// returns -1. Any other identifier is resolved strictly in the caller's
// ownership set; if unowned, -1 is returned and no write is attempted.
func Write(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	fd := kernel.FD(args[0].Int())
	addr := args[1].Pointer()
	length := uint64(args[2].SizeT())

	t.LockFS()
	defer t.UnlockFS()

	switch fd {
	case kernel.STDOUT:
		if !t.AddressSpace().IsValidRange(addr, length) {
			return 0, kernel.CtrlKill, nil
		}
		buf := make([]byte, length)
		if _, err := t.Memory().CopyIn(addr, buf); err != nil {
			return 0, kernel.CtrlKill, nil
		}
		if _, err := t.Kernel().Console().Write(buf); err != nil {
			return 0, nil, kernelerr.EIO
		}
		return uintptr(length), nil, nil

	case kernel.STDIN:
		return 0, nil, kernelerr.EBADF

	default:
		if !t.AddressSpace().IsValidRange(addr, length) {
			return 0, kernel.CtrlKill, nil
		}
		h := t.GetHandle(fd)
		if h == nil {
			return 0, nil, kernelerr.EBADF
		}
		buf := make([]byte, length)
		if _, err := t.Memory().CopyIn(addr, buf); err != nil {
			return 0, kernel.CtrlKill, nil
		}
		n, err := h.File().Write(buf)
		if err != nil {
			return 0, nil, err
		}
		return uintptr(n), nil, nil
	}
}
