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

package planner

import (
	"context"
	"fmt"

	"github.com/google/ldsparql/sparql/table"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
	"golang.org/x/sync/errgroup"
)

// lookup streams the triples of a graph that may match a fully substituted
// pattern into trpls. The selected storage call depends on which positions
// are bound.
type lookup func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error

// selectLookup returns the cheapest storage lookup able to answer the
// provided pattern. It returns false if the pattern cannot match anything,
// for instance when its predicate is bound to something other than an IRI.
func selectLookup(cls triple.Pattern, lo *storage.LookupOptions) (lookup, bool) {
	s, p, o := cls.S, cls.P, cls.O
	sb, pb, ob := s.Kind() != term.Variable, p.Kind() != term.Variable, o.Kind() != term.Variable
	var pi term.IRI
	if pb {
		n, ok := p.(term.IRI)
		if !ok {
			return nil, false
		}
		pi = n
	}
	if sb && s.Kind() == term.Literal {
		return nil, false
	}
	switch {
	case sb && pb && ob:
		// Fully qualified triple.
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			defer close(trpls)
			t, err := triple.New(s, pi, o)
			if err != nil {
				return nil
			}
			ok, err := g.Exist(ctx, t)
			if err != nil || !ok {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case trpls <- t:
			}
			return nil
		}, true
	case sb && pb:
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			return g.TriplesForSubjectAndPredicate(ctx, s, pi, lo, trpls)
		}, true
	case pb && ob:
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			return g.TriplesForPredicateAndObject(ctx, pi, o, lo, trpls)
		}, true
	case sb:
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			return g.TriplesForSubject(ctx, s, lo, trpls)
		}, true
	case ob:
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			return g.TriplesForObject(ctx, o, lo, trpls)
		}, true
	case pb:
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			return g.TriplesForPredicate(ctx, pi, lo, trpls)
		}, true
	default:
		// Full data request.
		return func(ctx context.Context, g storage.Graph, trpls chan<- *triple.Triple) error {
			return g.Triples(ctx, lo, trpls)
		}, true
	}
}

// fetch retrieves the candidate triples of all the provided graphs. Graphs
// are scanned concurrently and the result is the set union of their triples.
func fetch(ctx context.Context, gs []storage.Graph, cls triple.Pattern, lo *storage.LookupOptions, chanSize int) ([]*triple.Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := selectLookup(cls, lo)
	if !ok {
		return nil, nil
	}
	res := make([][]*triple.Triple, len(gs))
	eg, ctx := errgroup.WithContext(ctx)
	for i, g := range gs {
		i, g := i, g
		eg.Go(func() error {
			ch := make(chan *triple.Triple, chanSize)
			errc := make(chan error, 1)
			go func() {
				errc <- f(ctx, g, ch)
			}()
			for t := range ch {
				res[i] = append(res[i], t)
			}
			if err := <-errc; err != nil {
				return fmt.Errorf("planner.fetch(%v) on graph %q: %w", cls, g.ID(ctx), err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if len(gs) == 1 {
		return res[0], nil
	}
	var ts []*triple.Triple
	seen := make(map[string]bool)
	for _, gts := range res {
		for _, t := range gts {
			if k := t.GUID(); !seen[k] {
				seen[k] = true
				ts = append(ts, t)
			}
		}
	}
	return ts, nil
}

// tripleToRow extends the provided row with the bindings obtained by matching
// the pattern against the triple. It returns false if the triple does not
// match, for instance when a repeated variable would need two values.
func tripleToRow(t *triple.Triple, cls triple.Pattern, r table.Row) (table.Row, bool) {
	nr := make(table.Row, len(r)+3)
	for k, v := range r {
		nr[k] = v
	}
	vals := [3]term.Term{t.S(), t.P(), t.O()}
	for i, ct := range cls.Terms() {
		v := vals[i]
		if ct.Kind() != term.Variable {
			if ct.Kind() != v.Kind() || ct.String() != v.String() {
				return nil, false
			}
			continue
		}
		k := ct.String()
		if old, ok := nr[k]; ok {
			if old.Kind() != v.Kind() || old.String() != v.String() {
				return nil, false
			}
			continue
		}
		nr[k] = v
	}
	return nr, true
}

// substitute replaces the variables of the pattern already bound in the row.
func substitute(cls triple.Pattern, r table.Row) triple.Pattern {
	var ts [3]term.Term
	for i, t := range cls.Terms() {
		if t.Kind() == term.Variable {
			if v, ok := r[t.String()]; ok {
				t = v
			}
		}
		ts[i] = t
	}
	return triple.Pattern{S: ts[0], P: ts[1], O: ts[2]}
}
