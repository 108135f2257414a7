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

// Package memoization implements a passthrough driver with memoization
// of the partial query results.
package memoization

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
	"github.com/pborman/uuid"
	"golang.org/x/sync/singleflight"
)

// storeMemoizer implements the memoization.
type storeMemoizer struct {
	s storage.Store

	mu     sync.Mutex
	graphs map[string]*graphMemoizer
}

// New returns a new memoized driver.
func New(s storage.Store) storage.Store {
	return &storeMemoizer{
		s:      s,
		graphs: make(map[string]*graphMemoizer),
	}
}

// Name returns the ID of the backend being used.
func (s *storeMemoizer) Name(ctx context.Context) string {
	return s.s.Name(ctx)
}

// Version returns the version of the driver implementation.
func (s *storeMemoizer) Version(ctx context.Context) string {
	return s.s.Version(ctx)
}

// memoizer returns the memoizer for the graph, reusing the existing one so
// memoized results survive across Graph calls.
func (s *storeMemoizer) memoizer(g storage.Graph, id string) *graphMemoizer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.graphs[id]; ok {
		return m
	}
	m := &graphMemoizer{g: g}
	m.reset()
	s.graphs[id] = m
	return m
}

// NewGraph creates a new graph. Creating an already existing graph
// should return an error.
func (s *storeMemoizer) NewGraph(ctx context.Context, id string) (storage.Graph, error) {
	g, err := s.s.NewGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.memoizer(g, id), nil
}

// Graph returns an existing graph if available. Getting a non existing
// graph should return an error.
func (s *storeMemoizer) Graph(ctx context.Context, id string) (storage.Graph, error) {
	g, err := s.s.Graph(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.memoizer(g, id), nil
}

// DeleteGraph deletes an existing graph. Deleting a non existing graph
// should return an error.
func (s *storeMemoizer) DeleteGraph(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.graphs, id)
	s.mu.Unlock()
	return s.s.DeleteGraph(ctx, id)
}

// GraphNames returns the current available graph names in the store.
func (s *storeMemoizer) GraphNames(ctx context.Context, names chan<- string) error {
	return s.s.GraphNames(ctx, names)
}

// graphMemoizer memoizes partial query results. Concurrent identical lookups
// share a single call to the underlying graph.
type graphMemoizer struct {
	g  storage.Graph
	sf singleflight.Group

	mu   sync.RWMutex
	gen  uint64
	memN map[string][]term.Term
	memT map[string][]*triple.Triple
	memE map[string]bool
}

// reset drops every memoized result. Callers must hold the lock or own the
// memoizer exclusively.
func (g *graphMemoizer) reset() {
	g.gen++
	g.memN = make(map[string][]term.Term)
	g.memT = make(map[string][]*triple.Triple)
	g.memE = make(map[string]bool)
}

// ID returns the id for this graph.
func (g *graphMemoizer) ID(ctx context.Context) string {
	return g.g.ID(ctx)
}

// AddTriples adds the triples to the storage. Adding a triple that already
// exists should not fail.
func (g *graphMemoizer) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	g.mu.Lock()
	// Update operations reset the memoization.
	g.reset()
	g.mu.Unlock()

	return g.g.AddTriples(ctx, ts)
}

// RemoveTriples removes the triples from the storage. Removing triples that
// are not present on the store should not fail.
func (g *graphMemoizer) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	g.mu.Lock()
	// Update operations reset the memoization.
	g.reset()
	g.mu.Unlock()

	return g.g.RemoveTriples(ctx, ts)
}

// termUUID returns a stable identifier for a term.
func termUUID(t term.Term) uuid.UUID {
	return uuid.NewSHA1(uuid.NIL, []byte(t.String()))
}

func combinedUUID(op string, lo *storage.LookupOptions, uuids ...uuid.UUID) string {
	if lo == nil {
		lo = storage.DefaultLookup
	}
	var ss []string
	for _, id := range uuids {
		ss = append(ss, id.String())
	}
	return fmt.Sprintf("%s:%s:%s", op, lo.UUID().String(), strings.Join(ss, ":"))
}

// memoized pushes the memoized results for the key, fetching and memoizing
// them first if needed. Concurrent callers share a single fetch, which does
// not stop when the caller that started it gives up.
func memoized[T any](ctx context.Context, g *graphMemoizer, k string, mem func() map[string][]T, fetch func(context.Context, chan<- T) error, out chan<- T) error {
	defer close(out)
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.RLock()
	v, ok := mem()[k]
	gen := g.gen
	g.mu.RUnlock()
	if !ok {
		fctx := context.WithoutCancel(ctx)
		resc := g.sf.DoChan(fmt.Sprintf("%d:%s", gen, k), func() (interface{}, error) {
			c := make(chan T)
			errc := make(chan error, 1)
			go func() {
				errc <- fetch(fctx, c)
			}()
			var vs []T
			for e := range c {
				vs = append(vs, e)
			}
			if err := <-errc; err != nil {
				return nil, err
			}
			g.mu.Lock()
			// Results fetched before an update are not memoized.
			if g.gen == gen {
				mem()[k] = vs
			}
			g.mu.Unlock()
			return vs, nil
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-resc:
			if res.Err != nil {
				return res.Err
			}
			v = res.Val.([]T)
		}
	}
	for _, e := range v {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- e:
		}
	}
	return nil
}

func (g *graphMemoizer) terms() map[string][]term.Term        { return g.memN }
func (g *graphMemoizer) triples() map[string][]*triple.Triple { return g.memT }

// Objects pushes the objects for the given subject and predicate.
func (g *graphMemoizer) Objects(ctx context.Context, s term.Term, p term.IRI, lo *storage.LookupOptions, objs chan<- term.Term) error {
	k := combinedUUID("Objects", lo, termUUID(s), termUUID(p))
	return memoized(ctx, g, k, g.terms, func(ctx context.Context, c chan<- term.Term) error {
		return g.g.Objects(ctx, s, p, lo, c)
	}, objs)
}

// Subjects pushes the subjects for the given predicate and object.
func (g *graphMemoizer) Subjects(ctx context.Context, p term.IRI, o term.Term, lo *storage.LookupOptions, subs chan<- term.Term) error {
	k := combinedUUID("Subjects", lo, termUUID(p), termUUID(o))
	return memoized(ctx, g, k, g.terms, func(ctx context.Context, c chan<- term.Term) error {
		return g.g.Subjects(ctx, p, o, lo, c)
	}, subs)
}

// TriplesForSubject pushes all triples available for a given subject.
func (g *graphMemoizer) TriplesForSubject(ctx context.Context, s term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	k := combinedUUID("TriplesForSubject", lo, termUUID(s))
	return memoized(ctx, g, k, g.triples, func(ctx context.Context, c chan<- *triple.Triple) error {
		return g.g.TriplesForSubject(ctx, s, lo, c)
	}, trpls)
}

// TriplesForPredicate pushes all triples available for a given predicate.
func (g *graphMemoizer) TriplesForPredicate(ctx context.Context, p term.IRI, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	k := combinedUUID("TriplesForPredicate", lo, termUUID(p))
	return memoized(ctx, g, k, g.triples, func(ctx context.Context, c chan<- *triple.Triple) error {
		return g.g.TriplesForPredicate(ctx, p, lo, c)
	}, trpls)
}

// TriplesForObject pushes all triples available for a given object.
func (g *graphMemoizer) TriplesForObject(ctx context.Context, o term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	k := combinedUUID("TriplesForObject", lo, termUUID(o))
	return memoized(ctx, g, k, g.triples, func(ctx context.Context, c chan<- *triple.Triple) error {
		return g.g.TriplesForObject(ctx, o, lo, c)
	}, trpls)
}

// TriplesForSubjectAndPredicate pushes all triples available for the given
// subject and predicate.
func (g *graphMemoizer) TriplesForSubjectAndPredicate(ctx context.Context, s term.Term, p term.IRI, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	k := combinedUUID("TriplesForSubjectAndPredicate", lo, termUUID(s), termUUID(p))
	return memoized(ctx, g, k, g.triples, func(ctx context.Context, c chan<- *triple.Triple) error {
		return g.g.TriplesForSubjectAndPredicate(ctx, s, p, lo, c)
	}, trpls)
}

// TriplesForPredicateAndObject pushes all triples available for the given
// predicate and object.
func (g *graphMemoizer) TriplesForPredicateAndObject(ctx context.Context, p term.IRI, o term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	k := combinedUUID("TriplesForPredicateAndObject", lo, termUUID(p), termUUID(o))
	return memoized(ctx, g, k, g.triples, func(ctx context.Context, c chan<- *triple.Triple) error {
		return g.g.TriplesForPredicateAndObject(ctx, p, o, lo, c)
	}, trpls)
}

// Exist checks if the provided triple exists on the store.
func (g *graphMemoizer) Exist(ctx context.Context, t *triple.Triple) (bool, error) {
	k := combinedUUID("Exist", storage.DefaultLookup, termUUID(t.S()), termUUID(t.P()), termUUID(t.O()))
	g.mu.RLock()
	v, ok := g.memE[k]
	gen := g.gen
	g.mu.RUnlock()
	if ok {
		return v, nil
	}
	v, err := g.g.Exist(ctx, t)
	if err != nil {
		return false, err
	}
	g.mu.Lock()
	if g.gen == gen {
		g.memE[k] = v
	}
	g.mu.Unlock()
	return v, nil
}

// Triples pushes all available triples.
func (g *graphMemoizer) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	k := combinedUUID("Triples", lo)
	return memoized(ctx, g, k, g.triples, func(ctx context.Context, c chan<- *triple.Triple) error {
		return g.g.Triples(ctx, lo, c)
	}, trpls)
}
