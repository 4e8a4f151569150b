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

package usermem

import (
	"kestrel.dev/kestrel/pkg/errors/kernelerr"
)

// BytesIO implements IO using a byte slice. Addr 0 in the address space
// covered by the BytesIO maps to index 0 in the slice. It is used to back
// emulated user address spaces and test memory.
type BytesIO struct {
	Bytes []byte
}

// CopyOut implements IO.CopyOut.
func (b *BytesIO) CopyOut(addr Addr, src []byte) (int, error) {
	rngN, rngErr := b.rangeCheck(addr, len(src))
	n := copy(b.Bytes[int(addr):int(addr)+rngN], src[:rngN])
	return n, rngErr
}

// CopyIn implements IO.CopyIn.
func (b *BytesIO) CopyIn(addr Addr, dst []byte) (int, error) {
	rngN, rngErr := b.rangeCheck(addr, len(dst))
	n := copy(dst[:rngN], b.Bytes[int(addr):int(addr)+rngN])
	return n, rngErr
}

// rangeCheck returns the number of bytes of [addr, addr+length) that are
// backed by b, and EFAULT if that is fewer than length.
func (b *BytesIO) rangeCheck(addr Addr, length int) (int, error) {
	if length == 0 {
		return 0, nil
	}
	max := Addr(len(b.Bytes))
	if addr >= max {
		return 0, kernelerr.EFAULT
	}
	end, ok := addr.AddLength(uint64(length))
	if !ok || end > max {
		return int(max - addr), kernelerr.EFAULT
	}
	return length, nil
}
