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

// Package cli is the main entrypoint for krun.
package cli

import (
	"context"
	"flag"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/google/subcommands"

	"kestrel.dev/kestrel/krun/cmd"
	"kestrel.dev/kestrel/krun/config"
	"kestrel.dev/kestrel/krun/version"
	"kestrel.dev/kestrel/pkg/log"
)

var configFile = flag.String("config-file", "", "TOML file supplying configuration defaults; flags override it.")

// Main is the main entrypoint. It does not return.
func Main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(cmd.Run), "")
	subcommands.Register(new(cmd.Version), "")

	// The config file has to be read before flag parsing so that flags
	// override its values.
	conf := config.Default()
	if path := configFilePath(os.Args[1:]); path != "" {
		if err := conf.Load(path); err != nil {
			cmd.Fatalf("%v", err)
		}
	}
	conf.RegisterFlags(flag.CommandLine)

	// All subcommands must be registered before flag parsing.
	flag.Parse()

	if err := conf.Validate(); err != nil {
		cmd.Fatalf("%v", err)
	}

	// Set up logging.
	logFile := io.Writer(os.Stderr)
	if conf.LogFilename != "" {
		f, err := os.OpenFile(conf.LogFilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			cmd.Fatalf("error opening log file %q: %v", conf.LogFilename, err)
		}
		logFile = f
	}
	log.SetTarget(newEmitter(conf.LogFormat, logFile))
	if conf.Debug {
		log.SetLevel(log.Debug)
	}

	log.Infof("***************** krun *****************")
	log.Infof("Version %s, %s, %s, %d CPUs, %s, PID %d", version.Version(), runtime.Version(), runtime.GOARCH, runtime.NumCPU(), runtime.GOOS, os.Getpid())
	log.Infof("Args: %v", os.Args)

	var exitStatus int
	switch code := subcommands.Execute(context.Background(), conf, &exitStatus); code {
	case subcommands.ExitSuccess:
		log.Infof("Exiting with status: %d", exitStatus)
		os.Exit(exitStatus)
	default:
		os.Exit(int(code))
	}
}

// configFilePath extracts the -config-file value from args ahead of flag
// parsing.
func configFilePath(args []string) string {
	for i, arg := range args {
		for _, name := range []string{"-config-file", "--config-file"} {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
			if v, ok := strings.CutPrefix(arg, name+"="); ok {
				return v
			}
		}
	}
	return ""
}

func newEmitter(format string, logFile io.Writer) log.Emitter {
	switch format {
	case "", "text":
		return &log.Writer{Next: logFile}
	case "json":
		return log.JSONEmitter{Writer: &log.Writer{Next: logFile}}
	}
	cmd.Fatalf("invalid log format %q, must be 'text' or 'json'", format)
	panic("unreachable")
}
