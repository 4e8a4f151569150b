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
	"errors"

	"kestrel.dev/kestrel/pkg/errors/kernelerr"
	"kestrel.dev/kestrel/pkg/log"
)

// errExitUnwind is the panic value Trap uses to unwind a program whose
// process has been terminated. Task.run recovers it; nothing else may.
var errExitUnwind = errors.New("kernel: task exiting")

// Exit terminates the process: it releases the filesystem lock if this
// task holds it, closes every handle the task owns, records status, and
// marks the task exited. It runs at most once no matter how many exit
// paths race to it, and it never blocks on a lock the dying task may
// itself be holding.
//
// Exit tears state down but does not stop the program goroutine; Trap
// unwinds it, and Task.run calls Exit only as its final act.
func (t *Task) Exit(status int32) {
	t.exitOnce.Do(func() {
		// A task must never disappear while holding the filesystem
		// lock: no future acquirer could ever take it again.
		if t.k.fileMu.UnlockIfHeldBy(int64(t.tid)) {
			log.Warningf("[%d] exited holding the filesystem lock; released", t.tid)
		}

		t.fdTable.ReleaseAll()

		t.exitStatus = status
		t.k.removeTask(t)
		log.Debugf("[%d] exit status %d", t.tid, status)
		close(t.exited)
	})
}

// Wait blocks until the child identified by pid terminates and returns its
// exit status. It returns ECHILD without blocking if pid is not an
// un-waited child of t: children are waitable exactly once, and only by
// their parent.
func (t *Task) Wait(pid ThreadID) (int32, error) {
	t.mu.Lock()
	child := t.children[pid]
	t.mu.Unlock()
	if child == nil {
		return -1, kernelerr.ECHILD
	}
	if !child.waited.CompareAndSwap(false, true) {
		return -1, kernelerr.ECHILD
	}

	<-child.exited

	t.mu.Lock()
	delete(t.children, pid)
	t.mu.Unlock()
	return child.exitStatus, nil
}
