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

// Package kernel implements the user-to-kernel syscall boundary: the trap
// entry point that decodes and validates requests from user memory, the
// dispatch table routing them to handlers, and the handle registry backing
// file-based syscalls. Everything below the boundary (filesystem, console,
// power) is a collaborator passed in at initialization.
package kernel

import (
	"fmt"
	"strings"

	"kestrel.dev/kestrel/pkg/devices/console"
	"kestrel.dev/kestrel/pkg/errors/kernelerr"
	"kestrel.dev/kestrel/pkg/fs"
	"kestrel.dev/kestrel/pkg/log"
	"kestrel.dev/kestrel/pkg/sync"
)

// ThreadID is a process identifier as seen by the exec and wait syscalls.
type ThreadID int32

// Platform controls the machine the kernel runs on.
type Platform interface {
	// PowerOff powers the machine off. Emulated platforms may return, in
	// which case the calling process is torn down and no further activity
	// is expected.
	PowerOff()
}

// A Program is a user program image: the code a process runs. Programs
// interact with the kernel only by trapping; when a program function
// returns, the process exits with the returned status as if it had called
// exit.
type Program func(t *Task) int32

// Args configures a Kernel.
type Args struct {
	// FS is the filesystem collaborator.
	FS fs.FileSystem

	// Console is the console device behind identifiers 0 and 1.
	Console console.Device

	// Platform controls machine power.
	Platform Platform

	// Table is the syscall dispatch table.
	Table *SyscallTable

	// UserMemory is the per-process address space size in bytes.
	// DefaultUserMemory if zero.
	UserMemory uint64
}

// Kernel owns the global state of the syscall boundary.
type Kernel struct {
	fs       fs.FileSystem
	console  console.Device
	platform Platform
	table    *SyscallTable
	userMem  uint64

	// registry is the kernel-wide handle set.
	registry *HandleRegistry

	// fileMu is the filesystem lock: one instance, kernel lifetime. It
	// serializes every syscall that touches file content or the
	// namespace (create, remove, open, read, write, exec). It tracks its
	// holder so the exit path can release it when a process dies while
	// inside the filesystem.
	fileMu *sync.OwnedMutex

	// mu guards the fields below.
	mu       sync.Mutex
	tasks    map[ThreadID]*Task
	programs map[string]Program
	nextTID  ThreadID
}

// New creates a Kernel. The dispatch table is initialized here, before any
// trap can occur.
func New(args Args) (*Kernel, error) {
	if args.FS == nil || args.Console == nil || args.Platform == nil || args.Table == nil {
		return nil, fmt.Errorf("kernel: all collaborators must be provided")
	}
	if err := args.Table.Init(); err != nil {
		return nil, err
	}
	userMem := args.UserMemory
	if userMem == 0 {
		userMem = DefaultUserMemory
	}
	return &Kernel{
		fs:       args.FS,
		console:  args.Console,
		platform: args.Platform,
		table:    args.Table,
		userMem:  userMem,
		registry: NewHandleRegistry(),
		fileMu:   sync.NewOwnedMutex(),
		tasks:    make(map[ThreadID]*Task),
		programs: make(map[string]Program),
		nextTID:  1,
	}, nil
}

// RegisterProgram makes a program image available to exec under name.
func (k *Kernel) RegisterProgram(name string, p Program) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.programs[name] = p
}

// FS returns the filesystem collaborator.
func (k *Kernel) FS() fs.FileSystem {
	return k.fs
}

// Console returns the console device.
func (k *Kernel) Console() console.Device {
	return k.console
}

// PowerOff powers the machine off.
func (k *Kernel) PowerOff() {
	log.Infof("Machine powering off")
	k.platform.PowerOff()
}

// HandleRegistry returns the kernel-wide handle set.
func (k *Kernel) HandleRegistry() *HandleRegistry {
	return k.registry
}

// Execute starts a new process from cmdline as a child of parent (nil for
// the root process) and returns its identifier. The first cmdline field
// names a registered program; the process observes the full cmdline.
func (k *Kernel) Execute(cmdline string, parent *Task) (ThreadID, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(cmdline), " ")
	k.mu.Lock()
	image, ok := k.programs[name]
	k.mu.Unlock()
	if !ok {
		return -1, kernelerr.ENOENT
	}

	t := k.newTask(cmdline, image, parent)
	log.Debugf("[%d] exec %q -> pid %d", parentID(parent), cmdline, t.tid)
	go t.run()
	return t.tid, nil
}

// Run starts the root process from cmdline and blocks until it exits,
// returning its exit status. It is the boot path used by the machine
// runner and by tests.
func (k *Kernel) Run(cmdline string) (int32, error) {
	tid, err := k.Execute(cmdline, nil)
	if err != nil {
		return -1, err
	}
	k.mu.Lock()
	t := k.tasks[tid]
	k.mu.Unlock()
	if t == nil {
		return -1, kernelerr.ESRCH
	}
	<-t.exited
	return t.ExitStatus(), nil
}

func (k *Kernel) newTask(cmdline string, image Program, parent *Task) *Task {
	k.mu.Lock()
	defer k.mu.Unlock()

	t := &Task{
		k:        k,
		tid:      k.nextTID,
		cmdline:  cmdline,
		image:    image,
		parent:   parent,
		mm:       NewAddressSpace(k.userMem),
		children: make(map[ThreadID]*Task),
		exited:   make(chan struct{}),
	}
	t.fdTable = newFDTable(k.registry)
	k.nextTID++
	k.tasks[t.tid] = t

	if parent != nil {
		parent.mu.Lock()
		parent.children[t.tid] = t
		parent.mu.Unlock()
	}
	return t
}

func (k *Kernel) removeTask(t *Task) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.tasks, t.tid)
}

func parentID(parent *Task) ThreadID {
	if parent == nil {
		return 0
	}
	return parent.tid
}
