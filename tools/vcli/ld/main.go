// Copyright 2024 Google Inc. All rights reserved.
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

// The ld command line tool compiles shape tables into SPARQL CONSTRUCT queries
// and evaluates them against N-Triples data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/ldsparql/sparql/planner"
	"github.com/google/ldsparql/tools/vcli/ld/assert"
	"github.com/google/ldsparql/tools/vcli/ld/benchmark"
	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/compile"
	"github.com/google/ldsparql/tools/vcli/ld/export"
	"github.com/google/ldsparql/tools/vcli/ld/load"
	"github.com/google/ldsparql/tools/vcli/ld/run"
	"github.com/google/ldsparql/tools/vcli/ld/server"
	"github.com/google/ldsparql/tools/vcli/ld/version"
)

func registeredCommands() []*command.Command {
	return []*command.Command{
		compile.New(os.Stdout),
		run.New(os.Stdout, planner.DefaultChannelSize),
		load.New(os.Stdout),
		export.New(os.Stdout),
		assert.New(os.Stdout, planner.DefaultChannelSize),
		benchmark.New(os.Stdout, planner.DefaultChannelSize),
		server.New(planner.DefaultChannelSize),
		version.New(os.Stdout),
	}
}

func main() {
	os.Exit(eval(context.Background(), os.Args, registeredCommands()))
}

func eval(ctx context.Context, args []string, cmds []*command.Command) int {
	// Retrieve the provided command.
	cmd := ""
	if len(args) >= 2 {
		cmd = args[1]
	}
	// Check for help request.
	if cmd == "help" {
		return help(args, cmds)
	}
	// Run the requested command.
	for _, c := range cmds {
		if c.Name() == cmd && c.Runnable() {
			return c.Run(ctx, args)
		}
	}
	// The command was not found.
	if cmd == "" {
		fmt.Fprintf(os.Stderr, "missing command. Usage:\n\n\t$ ld [command]\n\nPlease run\n\n\t$ ld help\n\n")
	} else {
		fmt.Fprintf(os.Stderr, "command %q not recognized. Usage:\n\n\t$ ld [command]\n\nPlease run\n\n\t$ ld help\n\n", cmd)
	}
	return 1
}

func help(args []string, cmds []*command.Command) int {
	var cmd string
	if len(args) >= 3 {
		cmd = args[2]
	}
	// Prints the help if the command exist.
	for _, c := range cmds {
		if c.Name() == cmd {
			c.Usage()
			return 0
		}
	}
	if cmd == "" {
		fmt.Fprintf(os.Stderr, "missing help command. Usage:\n\n\t$ ld help [command]\n\nAvailable help commands\n\n")
		for _, c := range cmds {
			fmt.Fprintf(os.Stderr, "\t%s\t- %s\n", c.Name(), c.Short)
		}
		fmt.Fprintln(os.Stderr, "")
		return 0
	}
	fmt.Fprintf(os.Stderr, "help command %q not recognized. Usage:\n\n\t$ ld help\n\n", cmd)
	return 2
}
