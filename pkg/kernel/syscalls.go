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
	"fmt"

	"kestrel.dev/kestrel/pkg/abi/sysno"
	"kestrel.dev/kestrel/pkg/arch"
)

// SyscallControl is returned by syscalls to control the fate of the calling
// process. A nil control means the syscall returns normally.
type SyscallControl struct {
	// status is the exit status the process terminates with.
	status int32
}

// CtrlKill terminates the calling process with status -1. It is the
// response to a protocol violation: a process that handed the kernel an
// unsafe address or a corrupted call convention cannot be trusted to
// interpret an error return.
var CtrlKill = &SyscallControl{status: -1}

// CtrlHalt is returned by halt after powering the machine off, for
// platforms whose PowerOff returns (emulated ones).
var CtrlHalt = &SyscallControl{status: 0}

// CtrlDoExit terminates the calling process with the given status.
func CtrlDoExit(status int32) *SyscallControl {
	return &SyscallControl{status: status}
}

// SyscallFn is a syscall implementation. It consumes raw argument words,
// reinterpreting each as integer, pointer or size per its own contract, and
// returns either a value destined for the trap frame's result register, a
// control transferring the process to termination, or an error the
// dispatcher reports to the caller as -1.
type SyscallFn func(t *Task, args arch.SyscallArguments) (uintptr, *SyscallControl, error)

// Syscall is one entry in a SyscallTable.
type Syscall struct {
	// Name is the syscall's name, used in logs.
	Name string

	// Fn is the implementation.
	Fn SyscallFn
}

// SyscallTable is the fixed mapping from syscall number to implementation.
// It is populated once, before any trap can occur; the valid number range
// the trap path checks is derived from the sysno enumeration the table is
// keyed by, so the range check and the registered handlers cannot drift
// apart.
type SyscallTable struct {
	// Name is the table's name, used in logs.
	Name string

	// Table maps syscall numbers to implementations.
	Table map[sysno.Sysno]Syscall

	// lookup is the dense form of Table, built by Init.
	lookup [sysno.Max + 1]Syscall
}

// Init builds the dense lookup array. It must be called before the table
// serves any trap, and fails if the table is missing an implementation for
// any defined syscall number: a number inside the checked range with no
// handler behind it would be dispatchable garbage.
func (s *SyscallTable) Init() error {
	for no, sc := range s.Table {
		if no > sysno.Max {
			return fmt.Errorf("syscall table %q: number %d is outside the ABI", s.Name, no)
		}
		s.lookup[no] = sc
	}
	for no := sysno.Sysno(0); no <= sysno.Max; no++ {
		if s.lookup[no].Fn == nil {
			return fmt.Errorf("syscall table %q: %s is not implemented", s.Name, no)
		}
	}
	return nil
}

// Lookup returns the implementation for no, or nil if no is outside the
// table.
func (s *SyscallTable) Lookup(no sysno.Sysno) SyscallFn {
	if no > sysno.Max {
		return nil
	}
	return s.lookup[no].Fn
}

// LookupName returns the name of syscall no.
func (s *SyscallTable) LookupName(no sysno.Sysno) string {
	if no <= sysno.Max && s.lookup[no].Name != "" {
		return s.lookup[no].Name
	}
	return fmt.Sprintf("sys_%d", uintptr(no))
}
