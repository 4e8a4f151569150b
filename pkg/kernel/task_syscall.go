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
	"kestrel.dev/kestrel/pkg/abi/sysno"
	"kestrel.dev/kestrel/pkg/arch"
	"kestrel.dev/kestrel/pkg/log"
	"kestrel.dev/kestrel/pkg/usermem"
)

// Trap is the kernel entry point for a syscall raised by t's program. A
// well-formed trap always produces exactly one of: a return value written
// into the frame, or process termination. It never silently drops a
// syscall.
//
// On termination Trap does not return; it unwinds the program goroutine
// after teardown.
func (t *Task) Trap(f *arch.TrapFrame) {
	ctrl := t.doSyscall(f)
	if ctrl == nil {
		return
	}
	t.Exit(ctrl.status)
	panic(errExitUnwind)
}

// doSyscall decodes, validates and dispatches the syscall described by f.
// A non-nil control means the process must terminate instead of resuming.
//
// Nothing is read through a user-supplied address, the stack pointer
// included, before that address passes validation. A failure here is a
// protocol violation and maps to termination with status -1, not to an
// error return: a process that corrupted its own call convention cannot be
// trusted to run further.
func (t *Task) doSyscall(f *arch.TrapFrame) *SyscallControl {
	// The stack pointer itself first.
	if !t.mm.IsValidRange(f.SP, usermem.WordSize) {
		log.Debugf("[%d] trap with invalid stack pointer %#x", t.tid, f.SP)
		return CtrlKill
	}
	num, err := usermem.CopyWordIn(t.Memory(), f.SP)
	if err != nil {
		return CtrlKill
	}

	// The number range is derived from the same enumeration the dispatch
	// table is built over, so there is a handler behind every number that
	// passes this check.
	no := sysno.Sysno(num)
	fn := t.k.table.Lookup(no)
	if fn == nil {
		log.Debugf("[%d] unknown syscall %d", t.tid, num)
		return CtrlKill
	}

	// The three argument slots hold plain words, but they still live in
	// user memory: reading them is only safe if their addresses are.
	argBase := f.SP + usermem.WordSize
	if !t.mm.IsValidRange(argBase, 3*usermem.WordSize) {
		log.Debugf("[%d] %s: invalid argument slots at %#x", t.tid, t.k.table.LookupName(no), argBase)
		return CtrlKill
	}
	var args arch.SyscallArguments
	for i := range args {
		w, err := usermem.CopyWordIn(t.Memory(), argBase+usermem.Addr(i*usermem.WordSize))
		if err != nil {
			return CtrlKill
		}
		args[i] = arch.SyscallArgument{Value: uintptr(w)}
	}

	if log.IsLogging(log.Debug) {
		log.Debugf("[%d] %s%s", t.tid, t.k.table.LookupName(no), args)
	}

	rval, ctrl, err := fn(t, args)
	if ctrl != nil {
		return ctrl
	}
	if err != nil {
		// Ordinary failure: reported to the caller, not fatal.
		f.SetReturn(-1)
		return nil
	}
	f.Ret = uint64(rval)
	return nil
}
