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

// Package version contains the command that prints the ld version.
package version

import (
	"context"
	"fmt"
	"io"

	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/version"
)

// New creates the version command.
func New(w io.Writer) *command.Command {
	return &command.Command{
		Run: func(ctx context.Context, args []string) int {
			fmt.Fprintf(w, "ld vCli (%s)\n", version.String())
			return 0
		},
		UsageLine: "version",
		Short:     "prints the current version.",
		Long:      "Prints the current version of the ld command line tool.",
	}
}
