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

// Package usermem governs access to user memory. All reads and writes of
// user memory go through an IO, never through a raw pointer; callers are
// responsible for validating addresses against the task's address space
// before asking an IO to touch them.
package usermem

import (
	"encoding/binary"

	"kestrel.dev/kestrel/pkg/errors/kernelerr"
)

// WordSize is the size in bytes of one stack word in the syscall calling
// convention: arguments live in consecutive words above the stack pointer.
const WordSize = 8

// IO provides access to the contents of a virtual address space.
type IO interface {
	// CopyOut copies len(src) bytes from src to the memory mapped at addr.
	// It returns the number of bytes copied. If the range is not entirely
	// backed, it copies what it can and returns kernelerr.EFAULT.
	CopyOut(addr Addr, src []byte) (int, error)

	// CopyIn copies len(dst) bytes from the memory mapped at addr to dst.
	// It returns the number of bytes copied. If the range is not entirely
	// backed, it copies what it can and returns kernelerr.EFAULT.
	CopyIn(addr Addr, dst []byte) (int, error)
}

// CopyWordIn reads one stack word at addr.
func CopyWordIn(uio IO, addr Addr) (uint64, error) {
	var buf [WordSize]byte
	if _, err := uio.CopyIn(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// CopyWordOut writes one stack word at addr.
func CopyWordOut(uio IO, addr Addr, word uint64) error {
	var buf [WordSize]byte
	binary.LittleEndian.PutUint64(buf[:], word)
	_, err := uio.CopyOut(addr, buf[:])
	return err
}

// copyStringIncrement is the maximum number of bytes CopyStringIn reads per
// CopyIn call while scanning for the terminating NUL.
const copyStringIncrement = 64

// CopyStringIn copies a NUL-terminated string of unknown length from the
// memory mapped at addr and returns it without the trailing NUL. If the
// string extends beyond maxlen bytes, ENOMEM is returned; if it extends
// beyond the backed address range, EFAULT is returned.
func CopyStringIn(uio IO, addr Addr, maxlen int) (string, error) {
	var out []byte
	for done := 0; done < maxlen; {
		attempt := copyStringIncrement
		if attempt > maxlen-done {
			attempt = maxlen - done
		}
		buf := make([]byte, attempt)
		n, err := uio.CopyIn(addr+Addr(done), buf)
		// Look for a terminating NUL in whatever did copy before
		// considering the error.
		for i := 0; i < n; i++ {
			if buf[i] == 0 {
				return string(append(out, buf[:i]...)), nil
			}
		}
		out = append(out, buf[:n]...)
		done += n
		if err != nil {
			return string(out), err
		}
	}
	return string(out), kernelerr.ENOMEM
}
