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

// Package sysno enumerates the system call numbers of the kestrel user ABI.
// The numbering is part of the ABI and can never change.
package sysno

import (
	"fmt"
)

// Sysno is a system call number.
type Sysno uintptr

// The system calls. This is a closed set: the dispatch table and the trap
// range check are both derived from it, so a number outside [Halt, Close]
// cannot name a handler.
const (
	Halt Sysno = iota
	Exit
	Exec
	Wait
	Create
	Remove
	Open
	Filesize
	Read
	Write
	Seek
	Tell
	Close
)

// Max is the largest defined system call number.
const Max = Close

var names = [...]string{
	Halt:     "halt",
	Exit:     "exit",
	Exec:     "exec",
	Wait:     "wait",
	Create:   "create",
	Remove:   "remove",
	Open:     "open",
	Filesize: "filesize",
	Read:     "read",
	Write:    "write",
	Seek:     "seek",
	Tell:     "tell",
	Close:    "close",
}

// String implements fmt.Stringer.String.
func (s Sysno) String() string {
	if s > Max {
		return fmt.Sprintf("unknown(%d)", uintptr(s))
	}
	return names[s]
}
