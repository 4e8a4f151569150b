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

func TestFDAllocationMonotonic(t *testing.T) {
	k := newTestKernel(t)
	task := k.newTask("test", nil, nil)

	fd1, err := task.NewHandle(&testFile{})
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	if fd1 != firstFD {
		t.Errorf("first fd: got %d, want %d", fd1, firstFD)
	}

	fd2, err := task.NewHandle(&testFile{})
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	if fd2 <= fd1 {
		t.Errorf("second fd %d not above first %d", fd2, fd1)
	}

	// Identifiers are never reused, even after release.
	task.ReleaseHandle(fd1)
	fd3, err := task.NewHandle(&testFile{})
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	if fd3 <= fd2 {
		t.Errorf("fd %d reused after release of %d", fd3, fd1)
	}
}

func TestFDCrossTaskIsolation(t *testing.T) {
	k := newTestKernel(t)
	t1 := k.newTask("one", nil, nil)
	t2 := k.newTask("two", nil, nil)

	fd, err := t1.NewHandle(&testFile{})
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}

	if h := t1.GetHandle(fd); h == nil {
		t.Errorf("owner cannot resolve its own fd %d", fd)
	}
	if h := t2.GetHandle(fd); h != nil {
		t.Errorf("fd %d resolvable from a foreign task", fd)
	}

	// Identifier allocation is global: the next fd is unique across
	// tasks even though the tables are disjoint.
	fd2, err := t2.NewHandle(&testFile{})
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	if fd2 == fd {
		t.Errorf("tasks share identifier %d", fd)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	k := newTestKernel(t)
	task := k.newTask("test", nil, nil)

	f := &testFile{}
	fd, err := task.NewHandle(f)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}

	task.ReleaseHandle(fd)
	task.ReleaseHandle(fd)
	if f.closed != 1 {
		t.Errorf("file closed %d times, want 1", f.closed)
	}
	if got := k.HandleRegistry().Size(); got != 0 {
		t.Errorf("registry size: got %d, want 0", got)
	}

	// Releasing an identifier that was never allocated is a no-op.
	task.ReleaseHandle(12345)
}

func TestForeignReleaseNoOp(t *testing.T) {
	k := newTestKernel(t)
	t1 := k.newTask("one", nil, nil)
	t2 := k.newTask("two", nil, nil)

	f := &testFile{}
	fd, err := t1.NewHandle(f)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}

	// A foreign task releasing someone else's identifier does nothing.
	t2.ReleaseHandle(fd)
	if f.closed != 0 {
		t.Errorf("foreign release closed the file")
	}
	if h := t1.GetHandle(fd); h == nil {
		t.Errorf("fd %d vanished from its owner's table", fd)
	}
}

func TestRegistryExhaustion(t *testing.T) {
	registry := NewHandleRegistry()
	table := newFDTable(registry)
	for i := 0; i < maxHandles; i++ {
		if _, err := table.NewHandle(nil, &testFile{}); err != nil {
			t.Fatalf("NewHandle %d: %v", i, err)
		}
	}
	if _, err := table.NewHandle(nil, &testFile{}); err != kernelerr.ENOMEM {
		t.Errorf("NewHandle over limit: got %v, want ENOMEM", err)
	}

	// Releasing makes room again.
	table.ReleaseAll()
	if _, err := table.NewHandle(nil, &testFile{}); err != nil {
		t.Errorf("NewHandle after ReleaseAll: %v", err)
	}
}
