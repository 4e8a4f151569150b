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

	"kestrel.dev/kestrel/pkg/abi/sysno"
)

func TestTableInitComplete(t *testing.T) {
	table := newTestTable()
	if err := table.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for no := sysno.Sysno(0); no <= sysno.Max; no++ {
		if table.Lookup(no) == nil {
			t.Errorf("Lookup(%s): no implementation", no)
		}
	}
}

func TestTableInitMissingEntry(t *testing.T) {
	table := newTestTable()
	delete(table.Table, sysno.Seek)
	if err := table.Init(); err == nil {
		t.Errorf("Init with missing entry succeeded")
	}
}

func TestTableInitOutOfRange(t *testing.T) {
	table := newTestTable()
	table.Table[sysno.Max+1] = table.Table[sysno.Halt]
	if err := table.Init(); err == nil {
		t.Errorf("Init with out-of-range entry succeeded")
	}
}

func TestTableLookupBounds(t *testing.T) {
	table := newTestTable()
	if err := table.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	// The checked range is derived from the number enumeration, so the
	// first number past it must not dispatch.
	if table.Lookup(sysno.Max+1) != nil {
		t.Errorf("Lookup(Max+1) returned an implementation")
	}
	if table.Lookup(sysno.Sysno(1000)) != nil {
		t.Errorf("Lookup(1000) returned an implementation")
	}
}

func TestTableLookupName(t *testing.T) {
	table := newTestTable()
	if err := table.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := table.LookupName(sysno.Open); got != "open" {
		t.Errorf("LookupName(Open): got %q, want %q", got, "open")
	}
	if got := table.LookupName(sysno.Max + 1); got != "sys_13" {
		t.Errorf("LookupName(Max+1): got %q, want %q", got, "sys_13")
	}
}
