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
	"kestrel.dev/kestrel/pkg/usermem"
)

const (
	// DefaultUserMemory is the per-process address space size used when
	// the kernel is not configured otherwise.
	DefaultUserMemory = 1 << 20

	// guardSize is the size of the unmapped region at the bottom of every
	// address space. Null and near-null pointers land in it and fail
	// validation.
	guardSize = 0x1000
)

// AddressSpace is one process's emulated user address space: a flat region
// of backing memory and the set of ranges mapped into it. Everything the
// kernel reads or writes on behalf of a process goes through the backing
// IO, and only after the address passed validation here.
//
// The validator itself is a pure predicate. It never terminates anything;
// every call site decides what a false return means (see Task.doSyscall and
// the handlers).
type AddressSpace struct {
	mem      *usermem.BytesIO
	mappings []usermem.AddrRange
}

// NewAddressSpace returns an address space of the given size with a single
// mapping covering everything above the null guard region.
func NewAddressSpace(size uint64) *AddressSpace {
	if size < 2*guardSize {
		size = 2 * guardSize
	}
	return &AddressSpace{
		mem: &usermem.BytesIO{Bytes: make([]byte, size)},
		mappings: []usermem.AddrRange{
			{Start: guardSize, End: usermem.Addr(size)},
		},
	}
}

// IsValid returns true if the kernel may dereference addr on behalf of the
// owning process: addr is below the top of the user region and lies in a
// mapped range.
func (as *AddressSpace) IsValid(addr usermem.Addr) bool {
	return as.IsValidRange(addr, 1)
}

// IsValidRange returns true if every byte of [addr, addr+length) is valid.
// A zero length checks addr alone.
func (as *AddressSpace) IsValidRange(addr usermem.Addr, length uint64) bool {
	if length == 0 {
		length = 1
	}
	ar, ok := addr.ToRange(length)
	if !ok {
		return false
	}
	for _, m := range as.mappings {
		if m.IsSupersetOf(ar) {
			return true
		}
	}
	return false
}

// IO returns the backing memory. Callers must have validated any address
// they hand to it.
func (as *AddressSpace) IO() usermem.IO {
	return as.mem
}

// Size returns the size of the user region in bytes.
func (as *AddressSpace) Size() uint64 {
	return uint64(len(as.mem.Bytes))
}

// StackTop returns the exclusive upper bound of the initial user stack.
// Stacks grow down from here.
func (as *AddressSpace) StackTop() usermem.Addr {
	return usermem.Addr(len(as.mem.Bytes))
}
