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

// Package command contains the definition of the commands run by the ld tool.
package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Command represents a ld command.
type Command struct {
	// Run runs the command. The args are the arguments starting with the tool
	// name. Run returns the exit code to be used.
	Run func(ctx context.Context, args []string) int

	// UsageLine is the one-line usage message.
	// The first word in the line is taken to be the command name.
	UsageLine string

	// Short is the short description shown in the 'ld help' output.
	Short string

	// Long is the long message shown in the 'ld help <this-command>' output.
	Long string

	// Flag lists the flags of the command. It is nil for commands without
	// flags.
	Flag *pflag.FlagSet
}

// Name returns the command's name: the first word in the usage line.
func (c *Command) Name() string {
	name := c.UsageLine
	i := strings.Index(name, " ")
	if i >= 0 {
		name = name[:i]
	}
	return name
}

// Usage prints the usage message of the command and returns the exit code
// to use.
func (c *Command) Usage() int {
	fmt.Fprintf(os.Stderr, "usage:\n\n\t$ ld %s\n\n", c.UsageLine)
	fmt.Fprintf(os.Stderr, "%s\n", strings.TrimSpace(c.Long))
	if c.Flag != nil && c.Flag.HasFlags() {
		fmt.Fprintf(os.Stderr, "\nflags:\n\n%s", c.Flag.FlagUsages())
	}
	return 2
}

// Runnable reports whether the command can be run; otherwise it is a
// documentation pseudo-command.
func (c *Command) Runnable() bool {
	return c.Run != nil
}
