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

// Package kernelerr contains the error values returned across the syscall
// boundary, exported as error interface pointers. A *errors.Error carries an
// errno number so that it can be compared against unix.Errno constants
// (e.g. unix.Errno(kernelerr.EBADF.Errno()) == unix.EBADF).
//
// Errors here fall into two classes with very different consequences, see
// the kernel package: ordinary failures surface to the caller as a -1 (or
// false) return value, while protocol violations (EFAULT, ENOSYS) terminate
// the offending process.
package kernelerr

import (
	"golang.org/x/sys/unix"

	"kestrel.dev/kestrel/pkg/errors"
)

// The errors the syscall layer can produce.
var (
	ENOENT = errors.New(unix.ENOENT, "no such file or directory")
	EIO    = errors.New(unix.EIO, "I/O error")
	EBADF  = errors.New(unix.EBADF, "bad handle identifier")
	ECHILD = errors.New(unix.ECHILD, "no child processes")
	ENOMEM = errors.New(unix.ENOMEM, "out of memory")
	EFAULT = errors.New(unix.EFAULT, "bad address")
	EEXIST = errors.New(unix.EEXIST, "file exists")
	EINVAL = errors.New(unix.EINVAL, "invalid argument")
	EMFILE = errors.New(unix.EMFILE, "too many open files")
	ENOSPC = errors.New(unix.ENOSPC, "no space left on device")
	ENOSYS = errors.New(unix.ENOSYS, "invalid system call number")
	ESRCH  = errors.New(unix.ESRCH, "no such process")
)
