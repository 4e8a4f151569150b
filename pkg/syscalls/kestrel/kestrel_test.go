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

package kestrel_test

import (
	"testing"

	"kestrel.dev/kestrel/pkg/abi/sysno"
	"kestrel.dev/kestrel/pkg/arch"
	"kestrel.dev/kestrel/pkg/kernel"
	"kestrel.dev/kestrel/pkg/kernel/kerneltest"
	"kestrel.dev/kestrel/pkg/loader"
	"kestrel.dev/kestrel/pkg/usermem"
)

// run executes image as the root process and returns its exit status.
func run(t *testing.T, m *kerneltest.Machine, image kernel.Program) int32 {
	t.Helper()
	m.Kernel.RegisterProgram("test", image)
	status, err := m.Kernel.Run("test")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return status
}

func TestFileRoundTrip(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if !e.Create("notes.txt", 32) {
			return 1
		}
		fd := e.Open("notes.txt")
		if fd < 0 {
			return 2
		}
		if e.WriteString(fd, "hello") != 5 {
			return 3
		}
		e.Seek(fd, 0)
		buf := e.Alloc(5)
		if e.Read(fd, buf, 5) != 5 {
			return 4
		}
		var got [5]byte
		if _, err := task.Memory().CopyIn(buf, got[:]); err != nil {
			return 5
		}
		if string(got[:]) != "hello" {
			return 6
		}
		if e.Filesize(fd) != 32 {
			return 7
		}
		e.Close(fd)
		return 0
	})
	if status != 0 {
		t.Errorf("round trip failed at step %d", status)
	}
	if got := m.FS.Counts.Create.Load(); got != 1 {
		t.Errorf("Create calls: got %d, want 1", got)
	}
	if got := m.FS.Counts.Open.Load(); got != 1 {
		t.Errorf("Open calls: got %d, want 1", got)
	}
}

func TestDoubleOpenIndependentCursors(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Create("f", 8)
		fd1 := e.Open("f")
		fd2 := e.Open("f")
		if fd1 < 0 || fd2 < 0 || fd1 == fd2 {
			return 1
		}
		e.WriteString(fd1, "abcd")
		if e.Tell(fd1) != 4 {
			return 2
		}
		if e.Tell(fd2) != 0 {
			return 3
		}
		buf := e.Alloc(4)
		if e.Read(fd2, buf, 4) != 4 {
			return 4
		}
		var got [4]byte
		task.Memory().CopyIn(buf, got[:])
		if string(got[:]) != "abcd" {
			return 5
		}
		return 0
	})
	if status != 0 {
		t.Errorf("double open failed at step %d", status)
	}
}

func TestConsoleWrite(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if e.WriteString(int64(kernel.STDOUT), "hi") != 2 {
			return 1
		}
		return 0
	})
	if status != 0 {
		t.Errorf("console write failed at step %d", status)
	}
	if got := m.Console.Output(); got != "hi" {
		t.Errorf("console output: got %q, want %q", got, "hi")
	}
	// The whole buffer goes out as one device operation.
	if m.Console.Writes != 1 {
		t.Errorf("console Write calls: got %d, want 1", m.Console.Writes)
	}
	// Console identifiers never touch the handle registry or the
	// filesystem.
	if got := m.Kernel.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size: got %d, want 0", got)
	}
	if got := m.FS.Counts.Open.Load(); got != 0 {
		t.Errorf("FS Open calls: got %d, want 0", got)
	}
}

func TestConsoleRead(t *testing.T) {
	m := kerneltest.NewMachine(t, "abc")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		buf := e.Alloc(3)
		if e.Read(int64(kernel.STDIN), buf, 3) != 3 {
			return 1
		}
		var got [3]byte
		task.Memory().CopyIn(buf, got[:])
		if string(got[:]) != "abc" {
			return 2
		}
		return 0
	})
	if status != 0 {
		t.Errorf("console read failed at step %d", status)
	}
}

func TestConsoleReadShortInput(t *testing.T) {
	// Input ending before the requested size yields a short count, not
	// an error.
	m := kerneltest.NewMachine(t, "ab")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		buf := e.Alloc(5)
		if e.Read(int64(kernel.STDIN), buf, 5) != 2 {
			return 1
		}
		var got [2]byte
		task.Memory().CopyIn(buf, got[:])
		if string(got[:]) != "ab" {
			return 2
		}
		return 0
	})
	if status != 0 {
		t.Errorf("short console read failed at step %d", status)
	}
}

func TestConsoleStreamDirections(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		buf := e.Alloc(1)
		// Reading the output stream and writing the input stream both
		// fail without killing the process.
		if e.Read(int64(kernel.STDOUT), buf, 1) != -1 {
			return 1
		}
		if e.Write(int64(kernel.STDIN), buf, 1) != -1 {
			return 2
		}
		return 0
	})
	if status != 0 {
		t.Errorf("stream direction check failed at step %d", status)
	}
}

func TestUnresolvedHandle(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		buf := e.Alloc(8)
		// fd 2 was never opened by anyone.
		if e.Read(2, buf, 8) != -1 {
			return 1
		}
		if e.Write(2, buf, 8) != -1 {
			return 2
		}
		if e.Filesize(2) != -1 {
			return 3
		}
		if e.Tell(2) != -1 {
			return 4
		}
		return 0
	})
	if status != 0 {
		t.Errorf("unresolved handle failed at step %d", status)
	}
	// The filesystem must never have been consulted.
	if got := m.FS.Counts.Open.Load(); got != 0 {
		t.Errorf("FS Open calls: got %d, want 0", got)
	}
}

func TestReadWriteAfterClose(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Create("f", 8)
		fd := e.Open("f")
		if fd < 0 {
			return 1
		}
		e.Close(fd)
		buf := e.Alloc(8)
		if e.Read(fd, buf, 8) != -1 {
			return 2
		}
		if e.Write(fd, buf, 8) != -1 {
			return 3
		}
		// Double close has no effect.
		e.Close(fd)
		return 0
	})
	if status != 0 {
		t.Errorf("closed handle failed at step %d", status)
	}
}

func TestOpenMissingFile(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if e.Open("nope") != -1 {
			return 1
		}
		return 0
	})
	if status != 0 {
		t.Errorf("open missing file failed at step %d", status)
	}
	// A failed open allocates nothing.
	if got := m.Kernel.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size: got %d, want 0", got)
	}
}

func TestOpenAtRegistryCapacity(t *testing.T) {
	// The registry caps simultaneously open handles at 4096.
	const handleLimit = 4096

	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if !e.Create("f", 4) {
			return 1
		}
		first := int64(-1)
		for i := 0; i < handleLimit; i++ {
			fd := e.Open("f")
			if fd < 0 {
				return 2
			}
			if first < 0 {
				first = fd
			}
		}

		// One more open fails without killing the process and without
		// leaking the just-opened file: the filesystem delivered it, so
		// the failing path must have closed it.
		if e.Open("f") != -1 {
			return 3
		}
		if m.Kernel.HandleRegistry().Size() != handleLimit {
			return 4
		}
		if m.FS.Counts.Close.Load() != 1 {
			return 5
		}

		// The ownership set is unchanged: a surviving handle still works.
		if e.Filesize(first) != 4 {
			return 6
		}
		return 0
	})
	if status != 0 {
		t.Fatalf("registry capacity failed at step %d", status)
	}
	if got := m.FS.Counts.Open.Load(); got != handleLimit+1 {
		t.Errorf("FS Open calls: got %d, want %d", got, handleLimit+1)
	}
	// Exit closed the other handleLimit files.
	if got := m.FS.Counts.Close.Load(); got != handleLimit+1 {
		t.Errorf("FS Close calls: got %d, want %d", got, handleLimit+1)
	}
	if got := m.Kernel.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size after exit: got %d, want 0", got)
	}
}

func TestRemoveWithOpenHandle(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Create("f", 4)
		fd := e.Open("f")
		if fd < 0 {
			return 1
		}
		e.WriteString(fd, "data")
		if !e.Remove("f") {
			return 2
		}
		// The name is gone but the open handle still works.
		if e.Open("f") != -1 {
			return 3
		}
		e.Seek(fd, 0)
		buf := e.Alloc(4)
		if e.Read(fd, buf, 4) != 4 {
			return 4
		}
		return 0
	})
	if status != 0 {
		t.Errorf("remove with open handle failed at step %d", status)
	}
}

func TestExitClosesEverything(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Create("a", 1)
		e.Create("b", 1)
		if e.Open("a") < 0 || e.Open("b") < 0 {
			return 1
		}
		e.Exit(7)
		return 99 // unreachable
	})
	if status != 7 {
		t.Errorf("exit status: got %d, want 7", status)
	}
	if got := m.Kernel.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size after exit: got %d, want 0", got)
	}
}

func TestImplicitExitClosesEverything(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Create("a", 1)
		if e.Open("a") < 0 {
			return 1
		}
		// Returning from the image is an implicit exit.
		return 0
	})
	if status != 0 {
		t.Errorf("exit status: got %d, want 0", status)
	}
	if got := m.Kernel.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size after return: got %d, want 0", got)
	}
}

func TestExecWait(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	m.Kernel.RegisterProgram("child", func(task *kernel.Task) int32 {
		return 5
	})
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		pid := e.Exec("child")
		if pid < 0 {
			return 1
		}
		if e.Wait(pid) != 5 {
			return 2
		}
		// A child is waitable exactly once.
		if e.Wait(pid) != -1 {
			return 3
		}
		return 0
	})
	if status != 0 {
		t.Errorf("exec/wait failed at step %d", status)
	}
}

func TestExecUnknownProgram(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if e.Exec("no-such-program") != -1 {
			return 1
		}
		return 0
	})
	if status != 0 {
		t.Errorf("exec unknown program failed at step %d", status)
	}
}

func TestWaitNonChild(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	block := make(chan struct{})
	defer close(block)
	m.Kernel.RegisterProgram("sleeper", func(task *kernel.Task) int32 {
		<-block
		return 0
	})
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		pid := e.Exec("sleeper")
		if pid < 0 {
			return 1
		}
		// An identifier that is not our child must fail immediately,
		// even while the sleeper is still alive.
		if e.Wait(pid+1000) != -1 {
			return 2
		}
		return 0
	})
	if status != 0 {
		t.Errorf("wait non-child failed at step %d", status)
	}
}

func TestHalt(t *testing.T) {
	m := kerneltest.NewMachine(t, "")
	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Halt()
		return 99 // unreachable
	})
	if status != 0 {
		t.Errorf("halt status: got %d, want 0", status)
	}
	if !m.Platform.PoweredOff() {
		t.Errorf("platform not powered off")
	}
}

func TestNullPathAsymmetry(t *testing.T) {
	m := kerneltest.NewMachine(t, "")

	// create with a null path is fatal.
	m.Kernel.RegisterProgram("create-null", func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Syscall(sysno.Create, 0)
		return 99
	})
	status, err := m.Kernel.Run("create-null")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != -1 {
		t.Errorf("create(NULL): status %d, want -1", status)
	}

	// remove with a null path just reports false; open reports -1.
	status = run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if e.Syscall(sysno.Remove, 0) != 0 {
			return 1
		}
		if e.Syscall(sysno.Open, 0) != -1 {
			return 2
		}
		return 0
	})
	if status != 0 {
		t.Errorf("null path failed at step %d", status)
	}
}

func TestInvalidPointerKills(t *testing.T) {
	for _, test := range []struct {
		name  string
		image kernel.Program
	}{
		{"create guard page path", func(task *kernel.Task) int32 {
			loader.NewEnv(task).Syscall(sysno.Create, 0x800, 0)
			return 99
		}},
		{"open out of range path", func(task *kernel.Task) int32 {
			e := loader.NewEnv(task)
			e.Syscall(sysno.Open, uint64(task.AddressSpace().Size()))
			return 99
		}},
		{"read into guard page", func(task *kernel.Task) int32 {
			e := loader.NewEnv(task)
			e.Create("f", 4)
			fd := e.Open("f")
			e.Read(fd, 0x10, 4)
			return 99
		}},
		{"write buffer crossing top", func(task *kernel.Task) int32 {
			e := loader.NewEnv(task)
			top := uint64(task.AddressSpace().Size())
			e.Write(int64(kernel.STDOUT), usermem.Addr(top-2), 4)
			return 99
		}},
		{"seek unowned handle", func(task *kernel.Task) int32 {
			e := loader.NewEnv(task)
			e.Seek(42, 0)
			return 99
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			m := kerneltest.NewMachine(t, "")
			m.Kernel.RegisterProgram("violate", test.image)
			status, err := m.Kernel.Run("violate")
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if status != -1 {
				t.Errorf("status: got %d, want -1", status)
			}
			if got := m.Kernel.HandleRegistry().Size(); got != 0 {
				t.Errorf("registry size after kill: got %d, want 0", got)
			}
		})
	}
}

func TestMalformedTrap(t *testing.T) {
	for _, test := range []struct {
		name  string
		frame func(task *kernel.Task) *arch.TrapFrame
	}{
		{"null stack pointer", func(task *kernel.Task) *arch.TrapFrame {
			return &arch.TrapFrame{SP: 0}
		}},
		{"stack pointer in guard page", func(task *kernel.Task) *arch.TrapFrame {
			return &arch.TrapFrame{SP: 0xff8}
		}},
		{"stack pointer above top", func(task *kernel.Task) *arch.TrapFrame {
			return &arch.TrapFrame{SP: usermem.Addr(task.AddressSpace().Size())}
		}},
		{"argument slots cross top", func(task *kernel.Task) *arch.TrapFrame {
			// The number word fits but the three argument words do not.
			top := usermem.Addr(task.AddressSpace().Size())
			return &arch.TrapFrame{SP: top - usermem.WordSize}
		}},
		{"unknown syscall number", func(task *kernel.Task) *arch.TrapFrame {
			e := loader.NewEnv(task)
			frame := e.Alloc(4 * usermem.WordSize)
			usermem.CopyWordOut(task.Memory(), frame, uint64(sysno.Max)+1)
			return &arch.TrapFrame{SP: frame}
		}},
		{"garbage syscall number", func(task *kernel.Task) *arch.TrapFrame {
			e := loader.NewEnv(task)
			frame := e.Alloc(4 * usermem.WordSize)
			usermem.CopyWordOut(task.Memory(), frame, 0xdeadbeef)
			return &arch.TrapFrame{SP: frame}
		}},
	} {
		t.Run(test.name, func(t *testing.T) {
			m := kerneltest.NewMachine(t, "")
			m.Kernel.RegisterProgram("malformed", func(task *kernel.Task) int32 {
				task.Trap(test.frame(task))
				return 99
			})
			status, err := m.Kernel.Run("malformed")
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if status != -1 {
				t.Errorf("status: got %d, want -1", status)
			}
		})
	}
}

func TestKillReleasesFilesystemLockIndirectly(t *testing.T) {
	// A process killed mid-syscall must leave the filesystem lock free
	// for the next process.
	m := kerneltest.NewMachine(t, "")
	m.Kernel.RegisterProgram("violate", func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		e.Read(2, 0x10, 4) // unowned fd with a guard page buffer: fatal
		return 99
	})
	if status, err := m.Kernel.Run("violate"); err != nil || status != -1 {
		t.Fatalf("Run(violate): status %d, err %v", status, err)
	}

	status := run(t, m, func(task *kernel.Task) int32 {
		e := loader.NewEnv(task)
		if !e.Create("after", 1) {
			return 1
		}
		return 0
	})
	if status != 0 {
		t.Errorf("create after kill failed at step %d", status)
	}
}
