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

// Package common contains shared functionality for the ld commands.
package common

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/storage/badger"
	"github.com/google/ldsparql/storage/memoization"
	"github.com/google/ldsparql/storage/memory"
	"github.com/spf13/pflag"
)

// NewFlagSet returns an empty flag set for the named command. Parse errors
// are returned to the caller instead of being printed.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// StoreFlags select the store and the graph a command works on.
type StoreFlags struct {
	Store   string
	Graph   string
	Memoize bool
}

// AddFlags registers --store, --memoize and, when withGraph is set, --graph.
func (s *StoreFlags) AddFlags(fs *pflag.FlagSet, withGraph bool) {
	fs.StringVar(&s.Store, "store", "memory", "store to use: memory or badger:<dir>")
	fs.BoolVar(&s.Memoize, "memoize", false, "memoize the lookups of the store")
	if withGraph {
		fs.StringVar(&s.Graph, "graph", "?data", "graph holding the data")
	}
}

// Open opens the selected store.
func (s *StoreFlags) Open() (storage.Store, func() error, error) {
	return OpenStore(s.Store, s.Memoize)
}

// CheckChannelSize rejects negative channel sizes.
func CheckChannelSize(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid channel size %d", n)
	}
	return nil
}

// OpenStore opens the store described by desc: "memory" for a fresh in
// memory store or "badger:<dir>" for a persistent one. The returned function
// releases the store.
func OpenStore(desc string, memoize bool) (storage.Store, func() error, error) {
	var (
		st      storage.Store
		release = func() error { return nil }
	)
	switch {
	case desc == "" || desc == "memory":
		st = memory.NewStore()
	case strings.HasPrefix(desc, "badger:"):
		b, err := badger.New(strings.TrimPrefix(desc, "badger:"))
		if err != nil {
			return nil, nil, err
		}
		st, release = b, b.Close
	default:
		return nil, nil, fmt.Errorf("unknown store %q; use memory or badger:<dir>", desc)
	}
	if memoize {
		st = memoization.New(st)
	}
	return st, release, nil
}

// GraphOrNew returns the requested graph creating it if it does not exist.
func GraphOrNew(ctx context.Context, st storage.Store, id string) (storage.Graph, error) {
	if g, err := st.Graph(ctx, id); err == nil {
		return g, nil
	}
	return st.NewGraph(ctx, id)
}

// OK prints a green status line.
func OK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.GreenString("[OK] ")+fmt.Sprintf(format, args...))
}

// Warn prints a yellow status line.
func Warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.YellowString("[WARN] ")+fmt.Sprintf(format, args...))
}

// Fail prints a red status line.
func Fail(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, color.RedString("[FAIL] ")+fmt.Sprintf(format, args...))
}
