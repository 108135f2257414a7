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

package memoization

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/storage/memory"
	"github.com/google/ldsparql/tools/testutil"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
	"github.com/pborman/uuid"
)

func TestCombinedUUID(t *testing.T) {
	got := combinedUUID("op", storage.DefaultLookup, uuid.NIL, uuid.NIL)
	want := "op:" + storage.DefaultLookup.UUID().String() + ":00000000-0000-0000-0000-000000000000:00000000-0000-0000-0000-000000000000"
	if got != want {
		t.Errorf("combinedUUID returned the wrong value; got %v, want %v", got, want)
	}
	if a, b := combinedUUID("op", &storage.LookupOptions{MaxElements: 1}), combinedUUID("op", storage.DefaultLookup); a == b {
		t.Errorf("different lookup options should not share a key; got %v twice", a)
	}
}

func TestTermUUID(t *testing.T) {
	a := termUUID(term.NewNamedNode("urn:a"))
	if !uuid.Equal(a, termUUID(term.NewNamedNode("urn:a"))) {
		t.Errorf("termUUID should be stable")
	}
	if uuid.Equal(a, termUUID(term.NewLiteral("urn:a", term.XSDString))) {
		t.Errorf("termUUID should tell terms of different kinds apart")
	}
}

func TestMemoizedStore(t *testing.T) {
	testutil.StoreSuite(t, New(memory.NewStore()))
}

// countingStore counts the lookups reaching the wrapped graphs.
type countingStore struct {
	storage.Store
	n *int64
}

func (s *countingStore) NewGraph(ctx context.Context, id string) (storage.Graph, error) {
	g, err := s.Store.NewGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	return &countingGraph{Graph: g, n: s.n}, nil
}

type countingGraph struct {
	storage.Graph
	n *int64
}

func (g *countingGraph) TriplesForSubject(ctx context.Context, s term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	atomic.AddInt64(g.n, 1)
	return g.Graph.TriplesForSubject(ctx, s, lo, trpls)
}

func TestLookupsAreMemoized(t *testing.T) {
	var n int64
	ctx := context.Background()
	ms := New(&countingStore{Store: memory.NewStore(), n: &n})
	g, err := ms.NewGraph(ctx, "?test")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddTriples(ctx, testutil.MustParseTriples(t,
		`<urn:john> <urn:knows> <urn:mary> .`,
		`<urn:john> <urn:knows> <urn:peter> .`,
	)); err != nil {
		t.Fatal(err)
	}
	john := term.NewNamedNode("urn:john")
	lookup := func(c chan<- *triple.Triple) error {
		return g.TriplesForSubject(ctx, john, storage.DefaultLookup, c)
	}

	for i := 0; i < 3; i++ {
		if got, want := len(testutil.Collect(t, lookup)), 2; got != want {
			t.Errorf("TriplesForSubject returned %d triples, want %d", got, want)
		}
	}
	if got, want := atomic.LoadInt64(&n), int64(1); got != want {
		t.Errorf("the underlying graph was queried %d times, want %d", got, want)
	}

	if err := g.AddTriples(ctx, testutil.MustParseTriples(t, `<urn:john> <urn:knows> <urn:alice> .`)); err != nil {
		t.Fatal(err)
	}
	if got, want := len(testutil.Collect(t, lookup)), 3; got != want {
		t.Errorf("TriplesForSubject after an update returned %d triples, want %d", got, want)
	}
	if got, want := atomic.LoadInt64(&n), int64(2); got != want {
		t.Errorf("updates should reset the memoization; got %d queries, want %d", got, want)
	}

	// The memoized results are shared by later Graph calls.
	g2, err := ms.Graph(ctx, "?test")
	if err != nil {
		t.Fatal(err)
	}
	testutil.Collect(t, func(c chan<- *triple.Triple) error {
		return g2.TriplesForSubject(ctx, john, storage.DefaultLookup, c)
	})
	if got, want := atomic.LoadInt64(&n), int64(2); got != want {
		t.Errorf("Graph should reuse the memoized results; got %d queries, want %d", got, want)
	}
}

func TestConcurrentLookups(t *testing.T) {
	ctx := context.Background()
	g, err := New(memory.NewStore()).NewGraph(ctx, "?test")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddTriples(ctx, testutil.MustParseTriples(t,
		`<urn:a> <urn:p> "1" .`,
		`<urn:a> <urn:p> "2" .`,
		`<urn:a> <urn:q> "3" .`,
	)); err != nil {
		t.Fatal(err)
	}
	a, p := term.NewNamedNode("urn:a"), term.NewNamedNode("urn:p")
	var wg sync.WaitGroup
	res := make([]string, 16)
	for i := range res {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := make(chan term.Term)
			go g.Objects(ctx, a, p, storage.DefaultLookup, c)
			var ss []string
			for o := range c {
				ss = append(ss, o.String())
			}
			res[i] = strings.Join(ss, ",")
		}(i)
	}
	wg.Wait()
	for i, r := range res {
		if len(strings.Split(r, ",")) != 2 {
			t.Errorf("lookup %d returned %q, want two objects", i, r)
		}
	}
}

// blockingStore wraps every graph in a blockingGraph.
type blockingStore struct {
	storage.Store
	bg *blockingGraph
}

func (s *blockingStore) NewGraph(ctx context.Context, id string) (storage.Graph, error) {
	g, err := s.Store.NewGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	s.bg.Graph = g
	return s.bg, nil
}

// blockingGraph holds subject lookups until released and reports the state
// of the context they ran with.
type blockingGraph struct {
	storage.Graph
	entered chan struct{}
	release chan struct{}
	errs    chan error
}

func (g *blockingGraph) TriplesForSubject(ctx context.Context, s term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	g.entered <- struct{}{}
	<-g.release
	g.errs <- ctx.Err()
	return g.Graph.TriplesForSubject(ctx, s, lo, trpls)
}

func TestCancelledCallerDoesNotCancelSharedLookup(t *testing.T) {
	bg := &blockingGraph{
		entered: make(chan struct{}, 2),
		release: make(chan struct{}),
		errs:    make(chan error, 2),
	}
	g, err := New(&blockingStore{Store: memory.NewStore(), bg: bg}).NewGraph(context.Background(), "?test")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.AddTriples(context.Background(), testutil.MustParseTriples(t,
		`<urn:john> <urn:knows> <urn:mary> .`,
		`<urn:john> <urn:knows> <urn:peter> .`,
	)); err != nil {
		t.Fatal(err)
	}
	john := term.NewNamedNode("urn:john")

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	c := make(chan *triple.Triple)
	go func() {
		errc <- g.TriplesForSubject(ctx, john, storage.DefaultLookup, c)
	}()
	go func() {
		for range c {
		}
	}()
	<-bg.entered
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("TriplesForSubject with a cancelled context returned %v; want %v", err, context.Canceled)
	}
	close(bg.release)
	if err := <-bg.errs; err != nil {
		t.Errorf("the shared lookup ran with a context that failed with %v; want none", err)
	}

	got := testutil.Collect(t, func(c chan<- *triple.Triple) error {
		return g.TriplesForSubject(context.Background(), john, storage.DefaultLookup, c)
	})
	if len(got) != 2 {
		t.Errorf("TriplesForSubject returned %d triples after the cancellation; want 2", len(got))
	}
}
