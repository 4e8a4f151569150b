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

package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"

	"kestrel.dev/kestrel/krun/config"
	"kestrel.dev/kestrel/pkg/devices/console"
	"kestrel.dev/kestrel/pkg/fs/memfs"
	"kestrel.dev/kestrel/pkg/kernel"
	"kestrel.dev/kestrel/pkg/loader"
	"kestrel.dev/kestrel/pkg/log"
	"kestrel.dev/kestrel/pkg/syscalls/kestrel"
)

// Run implements subcommands.Command for the "run" command.
type Run struct{}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "boot a machine and run a command line as its root process"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run [flags] <cmdline> - boot a machine and run a command line as its root process.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Run) SetFlags(f *flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (r *Run) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	cmdline := strings.Join(f.Args(), " ")
	conf := args[0].(*config.Config)
	exitStatus := args[1].(*int)

	mfs := memfs.New()
	if conf.Root != "" {
		if err := installRoot(mfs, conf.Root); err != nil {
			Fatalf("error installing root directory: %v", err)
		}
	}

	k, err := kernel.New(kernel.Args{
		FS:         mfs,
		Console:    console.New(os.Stdin, os.Stdout),
		Platform:   &hostPlatform{},
		Table:      kestrel.Table,
		UserMemory: conf.UserMemory,
	})
	if err != nil {
		Fatalf("error creating kernel: %v", err)
	}
	loader.RegisterBuiltins(k)

	status, err := k.Run(cmdline)
	if err != nil {
		Fatalf("error running %q: %v", cmdline, err)
	}
	*exitStatus = int(status)
	return subcommands.ExitSuccess
}

// installRoot installs every regular file directly under dir into mfs
// under its base name.
func installRoot(mfs *memfs.MemFS, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		if err := mfs.Install(entry.Name(), data); err != nil {
			return err
		}
		log.Debugf("Installed %q (%d bytes)", entry.Name(), len(data))
	}
	return nil
}

// hostPlatform is the machine platform when running on a host: power-off
// is observed when the root process finishes, so it only needs recording.
type hostPlatform struct{}

// PowerOff implements kernel.Platform.PowerOff.
func (*hostPlatform) PowerOff() {
	log.Infof("Platform power-off requested")
}
