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

// Package compile contains the command that prints the CONSTRUCT query of a
// shape.
package compile

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/sparql/optimizer"
	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"
	"github.com/google/ldsparql/triple/term"
	"github.com/spf13/pflag"
)

// New creates the compile command writing the query to w.
func New(w io.Writer) *command.Command {
	cmd := &command.Command{
		UsageLine: "compile <shapes.yaml> <type> [flags]",
		Short:     "prints the CONSTRUCT query of a shape.",
		Long: `Compiles the named type of the shape table into a SPARQL CONSTRUCT
query and prints it. --subject together with --filter_ids pins the root node
with a FILTER. --no_optimize prints the pattern as built. --normalize renames
the generated variables in order of appearance. --max_depth bounds the
unfolding of recursive shapes.
`,
	}
	cmd.Flag, _ = newFlags(cmd.Name())
	cmd.Run = func(ctx context.Context, args []string) int {
		return Eval(ctx, cmd.UsageLine+"\n\n"+cmd.Long, args, w)
	}
	return cmd
}

type flags struct {
	shape      ShapeFlags
	subject    string
	noOptimize bool
	normalize  bool
}

func newFlags(name string) (*pflag.FlagSet, *flags) {
	f := &flags{}
	fs := common.NewFlagSet(name)
	f.shape.AddFlags(fs)
	fs.StringVar(&f.subject, "subject", "", "IRI of the root node")
	fs.BoolVar(&f.noOptimize, "no_optimize", false, "print the pattern as built")
	fs.BoolVar(&f.normalize, "normalize", false, "rename variables in order of appearance")
	return fs, f
}

// Eval runs the compile command.
func Eval(ctx context.Context, usage string, args []string, w io.Writer) int {
	fs, f := newFlags("compile")
	if err := fs.Parse(args); err != nil {
		log.Printf("[ERROR] %v\n\n%s", err, usage)
		return 2
	}
	pos := fs.Args()
	if len(pos) < 4 {
		log.Printf("[ERROR] Missing required shapes file and/or type.\n\n%s", usage)
		return 2
	}
	path, name := pos[2], pos[3]
	opts := f.shape.Options(f.subject)
	tbl, err := shape.LoadFile(path)
	if err != nil {
		log.Printf("[ERROR] Failed to load shapes %q: %v", path, err)
		return 2
	}
	cq, _, err := tbl.Compile(name, opts)
	if err != nil {
		log.Printf("[ERROR] Failed to compile %q: %v", name, err)
		return 2
	}
	var opt optimizer.Optimizer = optimizer.Default()
	if f.noOptimize {
		opt = optimizer.Identity()
	}
	q := cq.QueryWith(opt)
	if f.normalize {
		q = q.Normalize()
	}
	if err := q.Validate(); err != nil {
		common.Warn(w, "%v", err)
	}
	fmt.Fprintln(w, q)
	return 0
}

// ShapeFlags steer the compilation of a shape.
type ShapeFlags struct {
	FilterIDs bool
	MaxDepth  int
}

// AddFlags registers --filter_ids and --max_depth.
func (s *ShapeFlags) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.FilterIDs, "filter_ids", false, "pin the root node with a FILTER")
	fs.IntVar(&s.MaxDepth, "max_depth", 0, "bound on the unfolding of recursive shapes")
}

// Options returns the compile options for the subject. An empty subject
// leaves the root unconstrained.
func (s *ShapeFlags) Options(subject string) shape.Options {
	var opts shape.Options
	if subject != "" {
		iri := term.NewNamedNode(subject)
		opts.Subject = &iri
	}
	if s.FilterIDs {
		opts.Identifiers = shape.FilterIdentifiers
	}
	opts.MaxDepth = s.MaxDepth
	return opts
}
