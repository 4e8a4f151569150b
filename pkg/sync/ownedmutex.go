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

package sync

import (
	"sync"
	"sync/atomic"
)

// noOwner is stored in OwnedMutex.owner while the mutex is unlocked.
const noOwner = int64(-1)

// OwnedMutex is a Mutex that records which holder locked it, identified by
// an int64 supplied by the caller. It exists for locks that must be
// released on an exit path by code that cannot know statically whether the
// dying holder acquired them.
//
// OwnedMutex is not reentrant: a holder that locks it twice deadlocks, as
// with sync.Mutex.
type OwnedMutex struct {
	m     sync.Mutex
	owner atomic.Int64
}

// NewOwnedMutex returns an unlocked OwnedMutex.
func NewOwnedMutex() *OwnedMutex {
	om := &OwnedMutex{}
	om.owner.Store(noOwner)
	return om
}

// Lock acquires the mutex on behalf of id.
func (om *OwnedMutex) Lock(id int64) {
	om.m.Lock()
	om.owner.Store(id)
}

// Unlock releases the mutex. The caller must be the current owner.
func (om *OwnedMutex) Unlock() {
	om.owner.Store(noOwner)
	om.m.Unlock()
}

// HeldBy returns true if the mutex is currently held on behalf of id.
func (om *OwnedMutex) HeldBy(id int64) bool {
	return om.owner.Load() == id
}

// UnlockIfHeldBy releases the mutex if it is held on behalf of id, and
// reports whether it did. This is the exit-path escape hatch: a holder must
// never vanish while the mutex is locked.
func (om *OwnedMutex) UnlockIfHeldBy(id int64) bool {
	if !om.HeldBy(id) {
		return false
	}
	om.Unlock()
	return true
}
