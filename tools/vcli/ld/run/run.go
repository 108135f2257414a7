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

// Package run contains the command that constructs the graph of a subject.
package run

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/sparql/planner"
	"github.com/google/ldsparql/sparql/table"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"
	"github.com/google/ldsparql/tools/vcli/ld/compile"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
	"github.com/spf13/pflag"

	ldio "github.com/google/ldsparql/io"
)

// New creates the run command writing its results to w.
func New(w io.Writer, chanSize int) *command.Command {
	cmd := &command.Command{
		UsageLine: "run <shapes.yaml> <type> <data.nt> <subject> [flags]",
		Short:     "constructs the graph describing a subject.",
		Long: `Compiles the named type of the shape table, loads the N-Triples data
into the selected store, and prints the triples the CONSTRUCT query returns for
the subject. The subject binds the root of the query unless --filter_ids is
set, in which case it is pinned with a FILTER. Use - as data file to query a
persistent store without loading anything.
`,
	}
	cmd.Flag, _ = newFlags(cmd.Name(), chanSize)
	cmd.Run = func(ctx context.Context, args []string) int {
		return Eval(ctx, cmd.UsageLine+"\n\n"+cmd.Long, args, w, chanSize)
	}
	return cmd
}

type flags struct {
	store    common.StoreFlags
	shape    compile.ShapeFlags
	format   string
	chanSize int
	trace    bool
}

func newFlags(name string, chanSize int) (*pflag.FlagSet, *flags) {
	f := &flags{}
	fs := common.NewFlagSet(name)
	f.store.AddFlags(fs, true)
	f.shape.AddFlags(fs)
	fs.StringVar(&f.format, "format", "nt", "output format: nt or table")
	fs.IntVar(&f.chanSize, "channel_size", chanSize, "buffer of the lookup channels")
	fs.BoolVar(&f.trace, "trace", false, "trace compilation and execution to stderr")
	return fs, f
}

// Eval runs the run command.
func Eval(ctx context.Context, usage string, args []string, w io.Writer, chanSize int) int {
	fs, f := newFlags("run", chanSize)
	if err := fs.Parse(args); err != nil {
		log.Printf("[ERROR] %v\n\n%s", err, usage)
		return 2
	}
	pos := fs.Args()
	if len(pos) < 6 {
		log.Printf("[ERROR] Missing required arguments.\n\n%s", usage)
		return 2
	}
	path, name, data, subject := pos[2], pos[3], pos[4], term.NewNamedNode(pos[5])
	opts := f.shape.Options(pos[5])
	if f.trace {
		opts.Tracer = os.Stderr
	}
	if err := common.CheckChannelSize(f.chanSize); err != nil {
		log.Printf("[ERROR] %v", err)
		return 2
	}
	if f.format != "nt" && f.format != "table" {
		log.Printf("[ERROR] Unknown format %q.\n\n%s", f.format, usage)
		return 2
	}

	tbl, err := shape.LoadFile(path)
	if err != nil {
		log.Printf("[ERROR] Failed to load shapes %q: %v", path, err)
		return 2
	}
	cq, root, err := tbl.Compile(name, opts)
	if err != nil {
		log.Printf("[ERROR] Failed to compile %q: %v", name, err)
		return 2
	}

	st, release, err := f.store.Open()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 2
	}
	defer release()
	g, err := common.GraphOrNew(ctx, st, f.store.Graph)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 2
	}
	if data != "-" {
		cnt, err := load(ctx, g, data)
		if err != nil {
			log.Printf("[ERROR] Failed to load %q: %v", data, err)
			return 2
		}
		common.OK(w, "%d triples loaded from %q", cnt, data)
	}

	pln := planner.New([]storage.Graph{g}, cq.Query()).WithChannelSize(f.chanSize)
	if opts.Identifiers != shape.FilterIdentifiers {
		pln.Bind(root, subject)
	}
	if f.trace {
		pln.WithTracer(os.Stderr)
	}
	ts, err := pln.Execute(ctx)
	if err != nil {
		common.Fail(w, "%v", err)
		return 2
	}
	if len(ts) == 0 {
		common.Warn(w, "no triples describe %s as %s", subject, name)
		return 0
	}
	common.OK(w, "%d triples constructed", len(ts))
	if f.format == "table" {
		err = Render(w, ts)
	} else {
		_, err = ldio.WriteTriples(w, ts)
	}
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 2
	}
	return 0
}

func load(ctx context.Context, g storage.Graph, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ldio.ReadIntoGraph(ctx, g, f)
}

// Render writes the triples as a subject, predicate, object table.
func Render(w io.Writer, ts []*triple.Triple) error {
	tbl, err := table.New([]string{"subject", "predicate", "object"})
	if err != nil {
		return err
	}
	for _, t := range ts {
		tbl.AddRow(table.Row{"subject": t.S(), "predicate": t.P(), "object": t.O()})
	}
	tbl.Sort(table.SortConfig{{Binding: "subject"}, {Binding: "predicate"}})
	if err := tbl.Render(w); err != nil {
		return fmt.Errorf("rendering %d triples: %w", len(ts), err)
	}
	return nil
}
