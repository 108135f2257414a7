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

// Package export contains the command that writes the graphs of a persistent
// store as N-Triples.
package export

import (
	"context"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"

	ldio "github.com/google/ldsparql/io"
)

// New creates the export command.
func New(w io.Writer) *command.Command {
	cmd := &command.Command{
		UsageLine: "export <badger_dir> <graph_names_separated_by_commas> <file_path>",
		Short:     "export triples in bulk from graphs into a file.",
		Long: `Export all the triples in the provided graphs of the BadgerDB store
in the given directory into the provided N-Triples file.`,
	}
	cmd.Run = func(ctx context.Context, args []string) int {
		return Eval(ctx, cmd.UsageLine+"\n\n"+cmd.Long, args, w)
	}
	return cmd
}

// Eval runs the export command.
func Eval(ctx context.Context, usage string, args []string, w io.Writer) int {
	if len(args) < 5 {
		log.Printf("[ERROR] Missing required store directory, graph names, and/or file path.\n\n%s", usage)
		return 2
	}
	dir, graphs, path := args[2], strings.Split(args[3], ","), args[4]
	st, release, err := common.OpenStore("badger:"+dir, false)
	if err != nil {
		log.Printf("[ERROR] Failed to open store %q: %v", dir, err)
		return 2
	}
	defer release()
	f, err := os.Create(path)
	if err != nil {
		log.Printf("[ERROR] Failed to open target file %q with error %v.\n\n", path, err)
		return 2
	}
	defer f.Close()
	cnt := 0
	for _, gid := range graphs {
		g, err := st.Graph(ctx, gid)
		if err != nil {
			log.Printf("[ERROR] Failed to retrieve graph %q with error %v.\n\n", gid, err)
			return 2
		}
		n, err := ldio.WriteGraph(ctx, f, g)
		if err != nil {
			common.Fail(w, "Failed to export graph %q: %v", gid, err)
			return 2
		}
		cnt += n
	}
	common.OK(w, "Successfully written %d triples to file %q.\nTriples exported from graphs:\n\t- %s", cnt, path, strings.Join(graphs, "\n\t- "))
	return 0
}
