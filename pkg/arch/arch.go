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

// Package arch describes the machine-dependent state handed to the kernel
// on a trap, and the accessors handlers use to reinterpret raw argument
// words.
package arch

import (
	"fmt"

	"kestrel.dev/kestrel/pkg/usermem"
)

// TrapFrame is the interrupted program state delivered with a syscall trap.
// SP is the user stack pointer at trap time; the syscall number lives in
// the word at SP and the three argument words directly above it. The
// kernel delivers the result by writing Ret before returning to user mode.
type TrapFrame struct {
	// SP is the user stack pointer at the time of the trap.
	SP usermem.Addr

	// Ret is the result register.
	Ret uint64
}

// SetReturn stores a signed syscall return value in the result register.
func (f *TrapFrame) SetReturn(v int64) {
	f.Ret = uint64(v)
}

// Return reads the result register as a signed value.
func (f *TrapFrame) Return() int64 {
	return int64(f.Ret)
}

// SyscallArgument is an argument supplied to a syscall implementation. The
// methods used to access the arguments are named after the ***C type name***
// and they convert to the closest Go type available. For example, Int()
// refers to a 32-bit signed integer argument represented in Go as an int32.
//
// Using the accessor methods guarantees that the conversion between types
// is correct, taking into account size and signedness (i.e., zero-extension
// vs signed-extension).
type SyscallArgument struct {
	// Prefer to use accessor methods instead of 'Value' directly.
	Value uintptr
}

// SyscallArguments represents the set of arguments passed to a syscall.
type SyscallArguments [3]SyscallArgument

// String implements fmt.Stringer.String.
func (a SyscallArguments) String() string {
	return fmt.Sprintf("[%#x, %#x, %#x]", a[0].Value, a[1].Value, a[2].Value)
}

// Pointer returns the usermem.Addr representation of a pointer argument.
func (a SyscallArgument) Pointer() usermem.Addr {
	return usermem.Addr(a.Value)
}

// Int returns the int32 representation of a 32-bit signed integer argument.
func (a SyscallArgument) Int() int32 {
	return int32(a.Value)
}

// Uint returns the uint32 representation of a 32-bit unsigned integer
// argument.
func (a SyscallArgument) Uint() uint32 {
	return uint32(a.Value)
}

// Int64 returns the int64 representation of a 64-bit signed integer
// argument.
func (a SyscallArgument) Int64() int64 {
	return int64(a.Value)
}

// Uint64 returns the uint64 representation of a 64-bit unsigned integer
// argument.
func (a SyscallArgument) Uint64() uint64 {
	return uint64(a.Value)
}

// SizeT returns the uint representation of a size_t argument.
func (a SyscallArgument) SizeT() uint {
	return uint(a.Value)
}
