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

// Package io contains helper functions for reading and writing graphs as
// N-Triples.
package io

import (
	"context"
	"fmt"
	"io"

	"github.com/cayleygraph/quad/nquads"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// batchSize is the number of triples added to a graph at once while reading.
const batchSize = 1000

// ReadTriples parses the N-Triples contained in the reader. Empty lines and
// comments are skipped. Blank nodes are relabelled so that labels from
// different documents never meet.
func ReadTriples(r io.Reader) ([]*triple.Triple, error) {
	var ts []*triple.Triple
	err := scan(r, func(t *triple.Triple) error {
		ts = append(ts, t)
		return nil
	})
	return ts, err
}

func scan(r io.Reader, f func(*triple.Triple) error) error {
	qr := nquads.NewReader(r, false)
	blanks := make(map[term.Blank]term.Blank)
	relabel := func(tm term.Term) term.Term {
		b, ok := tm.(term.Blank)
		if !ok {
			return tm
		}
		nb, ok := blanks[b]
		if !ok {
			nb = term.MintBlankNode()
			blanks[b] = nb
		}
		return nb
	}
	for n := 1; ; n++ {
		q, err := qr.ReadQuad()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("statement %d: %w", n, err)
		}
		t, err := triple.FromQuad(q)
		if err != nil {
			return fmt.Errorf("statement %d: %w", n, err)
		}
		t, err = triple.New(relabel(t.S()), t.P(), relabel(t.O()))
		if err != nil {
			return fmt.Errorf("statement %d: %w", n, err)
		}
		if err := f(t); err != nil {
			return err
		}
	}
}

// ReadIntoGraph reads a graph out of the provided reader. The data on the
// reader is interpreted as N-Triples, one per line. It returns the number of
// triples read.
func ReadIntoGraph(ctx context.Context, g storage.Graph, r io.Reader) (int, error) {
	cnt := 0
	var batch []*triple.Triple
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := g.AddTriples(ctx, batch); err != nil {
			return err
		}
		batch = nil
		return nil
	}
	err := scan(r, func(t *triple.Triple) error {
		cnt++
		batch = append(batch, t)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return 0, fmt.Errorf("io.ReadIntoGraph: %w", err)
	}
	return cnt, nil
}

// WriteTriples writes the triples as N-Triples and returns how many were
// written.
func WriteTriples(w io.Writer, ts []*triple.Triple) (int, error) {
	qw := nquads.NewWriter(w)
	cnt := 0
	for _, t := range ts {
		if err := qw.WriteQuad(t.Quad()); err != nil {
			return cnt, err
		}
		cnt++
	}
	return cnt, qw.Close()
}

// WriteGraph serializes the graph into the writer where each triple is
// marshaled into a separate line. It returns the number of triples written.
func WriteGraph(ctx context.Context, w io.Writer, g storage.Graph) (int, error) {
	var (
		cnt  int
		werr error
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	qw := nquads.NewWriter(w)
	trpls := make(chan *triple.Triple)
	errc := make(chan error, 1)
	go func() {
		errc <- g.Triples(ctx, storage.DefaultLookup, trpls)
	}()
	for t := range trpls {
		if werr != nil {
			continue
		}
		if err := qw.WriteQuad(t.Quad()); err != nil {
			werr = err
			cancel()
			continue
		}
		cnt++
	}
	if werr != nil {
		return cnt, werr
	}
	if err := <-errc; err != nil {
		return cnt, err
	}
	return cnt, qw.Close()
}
