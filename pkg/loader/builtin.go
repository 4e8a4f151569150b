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

package loader

import (
	"strings"

	"kestrel.dev/kestrel/pkg/kernel"
)

// catBufSize is the read granularity of the cat builtin.
const catBufSize = 512

// RegisterBuiltins registers the built-in program images on k.
func RegisterBuiltins(k *kernel.Kernel) {
	k.RegisterProgram("echo", Echo)
	k.RegisterProgram("cat", Cat)
}

// Echo writes its arguments, space-separated and newline-terminated, to
// the console.
func Echo(t *kernel.Task) int32 {
	e := NewEnv(t)
	line := strings.Join(e.Args()[1:], " ") + "\n"
	e.WriteString(int64(kernel.STDOUT), line)
	return 0
}

// Cat copies each named file to the console. It fails with status 1 on
// the first file that cannot be opened.
func Cat(t *kernel.Task) int32 {
	e := NewEnv(t)
	buf := e.Alloc(catBufSize)
	for _, path := range e.Args()[1:] {
		fd := e.Open(path)
		if fd < 0 {
			return 1
		}
		for {
			n := e.Read(fd, buf, catBufSize)
			if n <= 0 {
				break
			}
			e.Write(int64(kernel.STDOUT), buf, uint64(n))
		}
		e.Close(fd)
	}
	return 0
}
