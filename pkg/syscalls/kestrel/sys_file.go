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
	"kestrel.dev/kestrel/pkg/cleanup"
	"kestrel.dev/kestrel/pkg/errors/kernelerr"
	"kestrel.dev/kestrel/pkg/kernel"
	"kestrel.dev/kestrel/pkg/usermem"
)

// copyInPath copies the NUL-terminated path at addr. A path that crosses
// out of the caller's address space is a protocol violation, reported with
// a non-nil control; any other failure is an ordinary error.
func copyInPath(t *kernel.Task, addr usermem.Addr) (string, *kernel.SyscallControl, error) {
	if !t.AddressSpace().IsValid(addr) {
		return "", kernel.CtrlKill, nil
	}
	path, err := usermem.CopyStringIn(t.Memory(), addr, maxStringLen)
	if err != nil {
		if err == kernelerr.EFAULT {
			return "", kernel.CtrlKill, nil
		}
		return "", nil, err
	}
	return path, nil, nil
}

// Create implements the create syscall: it creates a new file of the given
// initial size and returns whether creation succeeded. A null path fails
// the process.
func Create(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	addr := args[0].Pointer()
	if addr == 0 {
		return 0, kernel.CtrlKill, nil
	}
	path, ctrl, err := copyInPath(t, addr)
	if ctrl != nil {
		return 0, ctrl, nil
	}
	if err != nil {
		return 0, nil, nil // false
	}

	t.LockFS()
	defer t.UnlockFS()
	if err := t.Kernel().FS().Create(path, args[1].Uint64()); err != nil {
		return 0, nil, nil // false
	}
	return 1, nil, nil
}

// Remove implements the remove syscall: it removes the named file and
// returns whether removal succeeded. A null path returns false; an invalid
// path fails the process.
func Remove(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	addr := args[0].Pointer()
	if addr == 0 {
		return 0, nil, nil // false
	}
	path, ctrl, err := copyInPath(t, addr)
	if ctrl != nil {
		return 0, ctrl, nil
	}
	if err != nil {
		return 0, nil, nil // false
	}

	t.LockFS()
	defer t.UnlockFS()
	if err := t.Kernel().FS().Remove(path); err != nil {
		return 0, nil, nil // false
	}
	return 1, nil, nil
}

// Open implements the open syscall: it opens the named file, allocates a
// handle, and returns its identifier. A null path returns -1; an invalid
// path fails the process.
func Open(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	addr := args[0].Pointer()
	if addr == 0 {
		return 0, nil, kernelerr.ENOENT
	}
	path, ctrl, err := copyInPath(t, addr)
	if ctrl != nil {
		return 0, ctrl, nil
	}
	if err != nil {
		return 0, nil, err
	}

	t.LockFS()
	defer t.UnlockFS()
	file, err := t.Kernel().FS().Open(path)
	if err != nil {
		return 0, nil, err
	}

	// If handle bookkeeping fails the just-opened file must be closed:
	// no leak on this path.
	cu := cleanup.Make(file.Close)
	defer cu.Clean()
	fd, err := t.NewHandle(file)
	if err != nil {
		return 0, nil, err
	}
	cu.Release()
	return uintptr(fd), nil, nil
}

// Close implements the close syscall. An identifier the caller does not
// own has no observable effect.
func Close(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	t.ReleaseHandle(kernel.FD(args[0].Int()))
	return 0, nil, nil
}

// Filesize implements the filesize syscall: the length in bytes of the
// file behind the identifier, or -1 if the caller does not own it.
func Filesize(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	h := t.GetHandle(kernel.FD(args[0].Int()))
	if h == nil {
		return 0, nil, kernelerr.EBADF
	}
	return uintptr(h.File().Length()), nil, nil
}

// Tell implements the tell syscall: the current cursor position, or -1 if
// the caller does not own the identifier.
func Tell(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	h := t.GetHandle(kernel.FD(args[0].Int()))
	if h == nil {
		return 0, nil, kernelerr.EBADF
	}
	return uintptr(h.File().Tell()), nil, nil
}

// Seek implements the seek syscall. An unowned identifier fails the
// process: this is deliberately stricter than read and write, which return
// -1, preserving the ABI's historical asymmetry.
func Seek(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	h := t.GetHandle(kernel.FD(args[0].Int()))
	if h == nil {
		return 0, kernel.CtrlKill, nil
	}
	h.File().Seek(args[1].Int64())
	return 0, nil, nil
}
