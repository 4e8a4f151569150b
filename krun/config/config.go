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

// Package config holds the configuration of the krun machine runner. Every
// field can be set from a flag, and a TOML file can supply defaults that
// flags override.
package config

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the runner configuration.
type Config struct {
	// Root is a host directory whose regular files are installed into the
	// machine's filesystem before boot. Empty means boot with an empty
	// filesystem.
	Root string `toml:"root"`

	// UserMemory is the per-process address space size in bytes. Zero
	// selects the kernel default.
	UserMemory uint64 `toml:"user_memory"`

	// Debug enables debug logging.
	Debug bool `toml:"debug"`

	// LogFormat is the debug log format: "text" or "json".
	LogFormat string `toml:"log_format"`

	// LogFilename is the file to write logs to. Empty means stderr.
	LogFilename string `toml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogFormat: "text",
	}
}

// Load replaces c with the contents of the TOML file at path.
func (c *Config) Load(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("decoding config file %q: %w", path, err)
	}
	return c.validate()
}

// RegisterFlags registers one flag per field on fs, with c supplying the
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Root, "root", c.Root, "host directory to install into the machine filesystem before boot")
	fs.Uint64Var(&c.UserMemory, "user-memory", c.UserMemory, "per-process address space size in bytes (0 = default)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "enable debug logging")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")
	fs.StringVar(&c.LogFilename, "log", c.LogFilename, "file path to write logs to, empty for stderr")
}

// Validate checks the configuration after flag parsing.
func (c *Config) Validate() error {
	return c.validate()
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be 'text' or 'json'", c.LogFormat)
	}
	return nil
}
