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

package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "krun.toml")
	contents := `
root = "/srv/machine"
user_memory = 2097152
debug = true
log_format = "json"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := Default()
	if err := c.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Root:       "/srv/machine",
		UserMemory: 2097152,
		Debug:      true,
		LogFormat:  "json",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "krun.toml")
	if err := os.WriteFile(path, []byte(`log_format = "xml"`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := Default().Load(path); err == nil {
		t.Errorf("Load accepted an invalid log format")
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "krun.toml")
	if err := os.WriteFile(path, []byte(`debug = true`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := Default()
	if err := c.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-debug=false", "-root=/data"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if c.Debug {
		t.Errorf("Debug: flag did not override file value")
	}
	if c.Root != "/data" {
		t.Errorf("Root: got %q, want %q", c.Root, "/data")
	}
}
