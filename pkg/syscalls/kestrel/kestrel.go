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

// Package kestrel provides the syscall table of the kestrel user ABI.
package kestrel

import (
	"kestrel.dev/kestrel/pkg/abi/sysno"
	"kestrel.dev/kestrel/pkg/kernel"
)

// maxStringLen bounds path and command line strings copied in from user
// memory.
const maxStringLen = 4096

// Table is the kestrel syscall table. Every number the sysno enumeration
// defines has an entry; kernel.SyscallTable.Init enforces that, so the
// trap range check and the registered handlers cannot disagree.
var Table = &kernel.SyscallTable{
	Name: "kestrel",
	Table: map[sysno.Sysno]kernel.Syscall{
		sysno.Halt:     {Name: "halt", Fn: Halt},
		sysno.Exit:     {Name: "exit", Fn: Exit},
		sysno.Exec:     {Name: "exec", Fn: Exec},
		sysno.Wait:     {Name: "wait", Fn: Wait},
		sysno.Create:   {Name: "create", Fn: Create},
		sysno.Remove:   {Name: "remove", Fn: Remove},
		sysno.Open:     {Name: "open", Fn: Open},
		sysno.Filesize: {Name: "filesize", Fn: Filesize},
		sysno.Read:     {Name: "read", Fn: Read},
		sysno.Write:    {Name: "write", Fn: Write},
		sysno.Seek:     {Name: "seek", Fn: Seek},
		sysno.Tell:     {Name: "tell", Fn: Tell},
		sysno.Close:    {Name: "close", Fn: Close},
	},
}
