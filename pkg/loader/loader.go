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

// Package loader provides the user side of the syscall ABI: program images
// are Go functions, and Env gives them a stack in their task's address
// space plus one stub per syscall. Stubs build the calling convention,
// with the syscall number and three argument words in consecutive words
// above the stack pointer, exactly the way compiled user code would, and
// enter the kernel through the real trap path.
package loader

import (
	"strings"

	"kestrel.dev/kestrel/pkg/abi/sysno"
	"kestrel.dev/kestrel/pkg/arch"
	"kestrel.dev/kestrel/pkg/kernel"
	"kestrel.dev/kestrel/pkg/usermem"
)

// Env is a program's view of its own process.
type Env struct {
	t  *kernel.Task
	sp usermem.Addr
}

// NewEnv returns an Env whose stack starts at the top of t's address
// space.
func NewEnv(t *kernel.Task) *Env {
	return &Env{t: t, sp: t.AddressSpace().StackTop()}
}

// Task returns the process's task.
func (e *Env) Task() *kernel.Task {
	return e.t
}

// Args returns the command line split into fields, program name first.
func (e *Env) Args() []string {
	return strings.Fields(e.t.Cmdline())
}

// Alloc reserves n bytes of stack and returns their address, word-aligned.
func (e *Env) Alloc(n uint64) usermem.Addr {
	e.sp -= usermem.Addr(n)
	e.sp &^= usermem.WordSize - 1
	return e.sp
}

// Push copies data onto the stack and returns its address.
func (e *Env) Push(data []byte) usermem.Addr {
	addr := e.Alloc(uint64(len(data)))
	e.t.Memory().CopyOut(addr, data)
	return addr
}

// PushString copies a NUL-terminated string onto the stack and returns its
// address.
func (e *Env) PushString(s string) usermem.Addr {
	return e.Push(append([]byte(s), 0))
}

// Syscall lays out the trap frame words for no and up to three arguments,
// and traps. It returns the kernel's result value. It does not return if
// the syscall terminates the process.
func (e *Env) Syscall(no sysno.Sysno, a ...uint64) int64 {
	frame := e.Alloc(4 * usermem.WordSize)
	mem := e.t.Memory()
	usermem.CopyWordOut(mem, frame, uint64(no))
	for i := 0; i < 3; i++ {
		var w uint64
		if i < len(a) {
			w = a[i]
		}
		usermem.CopyWordOut(mem, frame+usermem.Addr((i+1)*usermem.WordSize), w)
	}
	f := &arch.TrapFrame{SP: frame}
	e.t.Trap(f)
	return f.Return()
}

// Halt powers off the machine.
func (e *Env) Halt() {
	e.Syscall(sysno.Halt)
}

// Exit terminates the process with status. It does not return.
func (e *Env) Exit(status int32) {
	e.Syscall(sysno.Exit, uint64(uint32(status)))
}

// Exec starts a process from cmdline and returns its pid, or -1.
func (e *Env) Exec(cmdline string) int64 {
	return e.Syscall(sysno.Exec, uint64(e.PushString(cmdline)))
}

// Wait blocks until child pid exits and returns its status, or -1.
func (e *Env) Wait(pid int64) int64 {
	return e.Syscall(sysno.Wait, uint64(pid))
}

// Create creates a file of the given size.
func (e *Env) Create(path string, size uint64) bool {
	return e.Syscall(sysno.Create, uint64(e.PushString(path)), size) != 0
}

// Remove removes a file.
func (e *Env) Remove(path string) bool {
	return e.Syscall(sysno.Remove, uint64(e.PushString(path))) != 0
}

// Open opens a file and returns its handle identifier, or -1.
func (e *Env) Open(path string) int64 {
	return e.Syscall(sysno.Open, uint64(e.PushString(path)))
}

// Close closes a handle identifier.
func (e *Env) Close(fd int64) {
	e.Syscall(sysno.Close, uint64(fd))
}

// Read reads size bytes from fd into the buffer at addr and returns the
// count actually read, or -1.
func (e *Env) Read(fd int64, addr usermem.Addr, size uint64) int64 {
	return e.Syscall(sysno.Read, uint64(fd), uint64(addr), size)
}

// Write writes length bytes from the buffer at addr to fd and returns the
// count actually written, or -1.
func (e *Env) Write(fd int64, addr usermem.Addr, length uint64) int64 {
	return e.Syscall(sysno.Write, uint64(fd), uint64(addr), length)
}

// WriteString pushes s and writes it to fd.
func (e *Env) WriteString(fd int64, s string) int64 {
	return e.Write(fd, e.Push([]byte(s)), uint64(len(s)))
}

// Seek moves fd's cursor to pos.
func (e *Env) Seek(fd int64, pos int64) {
	e.Syscall(sysno.Seek, uint64(fd), uint64(pos))
}

// Tell returns fd's cursor position, or -1.
func (e *Env) Tell(fd int64) int64 {
	return e.Syscall(sysno.Tell, uint64(fd))
}

// Filesize returns fd's length in bytes, or -1.
func (e *Env) Filesize(fd int64) int64 {
	return e.Syscall(sysno.Filesize, uint64(fd))
}
