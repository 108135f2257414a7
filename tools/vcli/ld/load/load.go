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

// Package load contains the command that bulk loads N-Triples into a
// persistent store.
package load

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"
	"github.com/spf13/pflag"

	ldio "github.com/google/ldsparql/io"
)

// New creates the load command.
func New(w io.Writer) *command.Command {
	cmd := &command.Command{
		UsageLine: "load <data.nt> <badger_dir> [flags]",
		Short:     "load triples in bulk stored in a file.",
		Long: `Loads all the triples stored in a N-Triples file into the provided
graphs of the BadgerDB store in the given directory. Graph names need to be
separated by commas with no whitespaces. Lines starting with # are treated as
comments. If the load fails you may end up with partially loaded data.
`,
	}
	cmd.Flag, _ = newFlags(cmd.Name())
	cmd.Run = func(ctx context.Context, args []string) int {
		return Eval(ctx, cmd.UsageLine+"\n\n"+cmd.Long, args, w)
	}
	return cmd
}

func newFlags(name string) (*pflag.FlagSet, *[]string) {
	fs := common.NewFlagSet(name)
	return fs, fs.StringSlice("graph", []string{"?data"}, "graphs to load the data into")
}

// Eval runs the load command.
func Eval(ctx context.Context, usage string, args []string, w io.Writer) int {
	fs, graphs := newFlags("load")
	if err := fs.Parse(args); err != nil {
		log.Printf("[ERROR] %v\n\n%s", err, usage)
		return 2
	}
	pos := fs.Args()
	if len(pos) < 4 {
		log.Printf("[ERROR] Missing required file path and/or store directory.\n\n%s", usage)
		return 2
	}
	path, dir := pos[2], pos[3]
	st, release, err := common.OpenStore("badger:"+dir, false)
	if err != nil {
		log.Printf("[ERROR] Failed to open store %q: %v", dir, err)
		return 2
	}
	defer release()
	for _, gid := range *graphs {
		g, err := common.GraphOrNew(ctx, st, gid)
		if err != nil {
			log.Printf("[ERROR] %v", err)
			return 2
		}
		f, err := os.Open(path)
		if err != nil {
			log.Printf("[ERROR] Failed to open %q: %v", path, err)
			return 2
		}
		cnt, err := ldio.ReadIntoGraph(ctx, g, f)
		f.Close()
		if err != nil {
			common.Fail(w, "Failed to process file %q: %v", path, err)
			return 2
		}
		common.OK(w, "%d triples from %q loaded into graph %s", cnt, path, gid)
	}
	return 0
}
