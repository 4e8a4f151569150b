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
	"testing"

	"kestrel.dev/kestrel/pkg/errors/kernelerr"
)

func TestExitClosesHandles(t *testing.T) {
	k := newTestKernel(t)
	task := k.newTask("test", nil, nil)

	files := []*testFile{{}, {}, {}}
	for _, f := range files {
		if _, err := task.NewHandle(f); err != nil {
			t.Fatalf("NewHandle: %v", err)
		}
	}
	if got := k.HandleRegistry().Size(); got != len(files) {
		t.Fatalf("registry size: got %d, want %d", got, len(files))
	}

	task.Exit(0)

	if got := task.FDTable().Size(); got != 0 {
		t.Errorf("table size after exit: got %d, want 0", got)
	}
	if got := k.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size after exit: got %d, want 0", got)
	}
	for i, f := range files {
		if f.closed != 1 {
			t.Errorf("file %d: closed %d times, want 1", i, f.closed)
		}
	}
}

func TestExitRunsOnce(t *testing.T) {
	k := newTestKernel(t)
	task := k.newTask("test", nil, nil)

	task.Exit(3)
	task.Exit(7)
	if got := task.ExitStatus(); got != 3 {
		t.Errorf("ExitStatus: got %d, want 3", got)
	}
}

func TestExitReleasesFilesystemLock(t *testing.T) {
	k := newTestKernel(t)
	holder := k.newTask("holder", nil, nil)
	other := k.newTask("other", nil, nil)

	holder.LockFS()
	holder.Exit(0)

	// The lock must be free again or this deadlocks.
	other.LockFS()
	other.UnlockFS()
}

func TestWaitChild(t *testing.T) {
	k := newTestKernel(t)
	parent := k.newTask("parent", nil, nil)
	child := k.newTask("child", nil, parent)

	child.Exit(5)
	status, err := parent.Wait(child.TID())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status != 5 {
		t.Errorf("Wait: got status %d, want 5", status)
	}

	// A child is waitable exactly once.
	if _, err := parent.Wait(child.TID()); err != kernelerr.ECHILD {
		t.Errorf("second Wait: got %v, want ECHILD", err)
	}
}

func TestWaitNonChild(t *testing.T) {
	k := newTestKernel(t)
	parent := k.newTask("parent", nil, nil)
	stranger := k.newTask("stranger", nil, nil)

	// Must fail immediately even though the stranger never exits.
	if _, err := parent.Wait(stranger.TID()); err != kernelerr.ECHILD {
		t.Errorf("Wait(stranger): got %v, want ECHILD", err)
	}
	if _, err := parent.Wait(9999); err != kernelerr.ECHILD {
		t.Errorf("Wait(bogus pid): got %v, want ECHILD", err)
	}
}

func TestWaitBlocksUntilExit(t *testing.T) {
	k := newTestKernel(t)
	parent := k.newTask("parent", nil, nil)
	child := k.newTask("child", nil, parent)

	done := make(chan int32, 1)
	go func() {
		status, _ := parent.Wait(child.TID())
		done <- status
	}()

	child.Exit(9)
	if status := <-done; status != 9 {
		t.Errorf("Wait: got status %d, want 9", status)
	}
}
