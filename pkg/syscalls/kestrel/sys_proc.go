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

// Halt implements the halt syscall: it powers the machine off and never
// returns control to the caller.
func Halt(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	t.Kernel().PowerOff()
	// Emulated platforms return from PowerOff; the calling process still
	// never observes a return value.
	return 0, kernel.CtrlHalt, nil
}

// Exit implements the exit syscall. Teardown (releasing the filesystem
// lock if held, closing every owned handle, recording the status) happens
// on the single exit path in Task.Exit, shared with fatal validation
// failures and runtime faults.
func Exit(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	return 0, kernel.CtrlDoExit(args[0].Int()), nil
}

// Exec implements the exec syscall: it starts a new process from the
// command line at args[0] and returns its process identifier, or -1 if
// creation failed.
func Exec(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	addr := args[0].Pointer()
	if !t.AddressSpace().IsValid(addr) {
		return 0, kernel.CtrlKill, nil
	}
	cmdline, err := usermem.CopyStringIn(t.Memory(), addr, maxStringLen)
	if err != nil {
		if err == kernelerr.EFAULT {
			return 0, kernel.CtrlKill, nil
		}
		return 0, nil, err
	}

	// Process creation may itself perform filesystem I/O.
	t.LockFS()
	defer t.UnlockFS()
	pid, err := t.Kernel().Execute(cmdline, t)
	if err != nil {
		return 0, nil, err
	}
	return uintptr(int64(pid)), nil, nil
}

// Wait implements the wait syscall: it blocks until the child identified
// by args[0] terminates and returns its exit status, or -1 if args[0] does
// not identify a waitable child of the caller.
func Wait(t *kernel.Task, args arch.SyscallArguments) (uintptr, *kernel.SyscallControl, error) {
	status, err := t.Wait(kernel.ThreadID(args[0].Int()))
	if err != nil {
		return 0, nil, err
	}
	return uintptr(int64(status)), nil, nil
}
