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

// Package testutil implements utility functions used in testing.
package testutil

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// MustParseTerm builds a term out of its textual form or makes the given test
// to fail.
func MustParseTerm(t testing.TB, text string) term.Term {
	t.Helper()
	tm, err := term.Parse(text)
	if err != nil {
		t.Fatalf("could not parse term %q, got error: %v", text, err)
	}
	return tm
}

// MustBuildLiteral builds a literal out of its textual form or makes the given
// test to fail.
func MustBuildLiteral(t testing.TB, text string) term.Lit {
	t.Helper()
	l, ok := MustParseTerm(t, text).(term.Lit)
	if !ok {
		t.Fatalf("%q is not a literal", text)
	}
	return l
}

// MustParseTriples parses one N-Triples statement per line, skipping blank
// lines and comments, or makes the given test to fail.
func MustParseTriples(t testing.TB, lines ...string) []*triple.Triple {
	t.Helper()
	var ts []*triple.Triple
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		trpl, err := triple.Parse(l)
		if err != nil {
			t.Fatalf("could not parse triple %q, got error: %v", l, err)
		}
		ts = append(ts, trpl)
	}
	return ts
}

// Collect runs a lookup in its own goroutine and returns what it pushed.
func Collect(t testing.TB, lookup func(chan<- *triple.Triple) error) []*triple.Triple {
	t.Helper()
	c := make(chan *triple.Triple)
	errc := make(chan error, 1)
	go func() {
		errc <- lookup(c)
	}()
	var ts []*triple.Triple
	for trpl := range c {
		ts = append(ts, trpl)
	}
	if err := <-errc; err != nil {
		t.Fatalf("lookup failed with error %v", err)
	}
	return ts
}

// CollectTerms runs a term lookup in its own goroutine and returns what it
// pushed.
func CollectTerms(t testing.TB, lookup func(chan<- term.Term) error) []term.Term {
	t.Helper()
	c := make(chan term.Term)
	errc := make(chan error, 1)
	go func() {
		errc <- lookup(c)
	}()
	var ts []term.Term
	for tm := range c {
		ts = append(ts, tm)
	}
	if err := <-errc; err != nil {
		t.Fatalf("lookup failed with error %v", err)
	}
	return ts
}

// Sorted returns the N-Triples lines of the triples, sorted.
func Sorted(ts []*triple.Triple) []string {
	var res []string
	for _, trpl := range ts {
		res = append(res, trpl.String())
	}
	sort.Strings(res)
	return res
}

// StoreSuite exercises the contract every storage driver has to honor. The
// provided store must not contain a graph named "?suite".
func StoreSuite(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()
	const id = "?suite"

	g, err := s.NewGraph(ctx, id)
	if err != nil {
		t.Fatalf("%s.NewGraph(%q) failed with error %v", s.Name(ctx), id, err)
	}
	if _, err := s.NewGraph(ctx, id); err == nil {
		t.Errorf("%s.NewGraph(%q) should fail for an existing graph", s.Name(ctx), id)
	}
	if got, want := g.ID(ctx), id; got != want {
		t.Errorf("ID() = %q, want %q", got, want)
	}

	ts := MustParseTriples(t,
		`<urn:a> <urn:knows> <urn:b> .`,
		`<urn:a> <urn:knows> <urn:c> .`,
		`<urn:a> <urn:name> "a" .`,
		`<urn:b> <urn:name> "b b"@en .`,
		`_:x <urn:knows> <urn:a> .`,
		`<urn:a> <urn:knows> <urn:b> .`,
	)
	if err := g.AddTriples(ctx, ts); err != nil {
		t.Fatalf("AddTriples failed with error %v", err)
	}

	a, b := MustParseTerm(t, "<urn:a>"), MustParseTerm(t, "<urn:b>")
	knows := MustParseTerm(t, "<urn:knows>").(term.IRI)
	name := MustParseTerm(t, "<urn:name>").(term.IRI)
	lo := storage.DefaultLookup

	table := []struct {
		op     string
		lookup func(chan<- *triple.Triple) error
		want   int
	}{
		{"Triples", func(c chan<- *triple.Triple) error { return g.Triples(ctx, lo, c) }, 5},
		{"TriplesForSubject", func(c chan<- *triple.Triple) error { return g.TriplesForSubject(ctx, a, lo, c) }, 3},
		{"TriplesForPredicate", func(c chan<- *triple.Triple) error { return g.TriplesForPredicate(ctx, knows, lo, c) }, 3},
		{"TriplesForObject", func(c chan<- *triple.Triple) error { return g.TriplesForObject(ctx, a, lo, c) }, 1},
		{"TriplesForSubjectAndPredicate", func(c chan<- *triple.Triple) error { return g.TriplesForSubjectAndPredicate(ctx, a, knows, lo, c) }, 2},
		{"TriplesForPredicateAndObject", func(c chan<- *triple.Triple) error { return g.TriplesForPredicateAndObject(ctx, knows, b, lo, c) }, 1},
		{"TriplesForObject(literal)", func(c chan<- *triple.Triple) error {
			return g.TriplesForObject(ctx, MustParseTerm(t, `"b b"@en`), lo, c)
		}, 1},
		{"TriplesForSubject(limited)", func(c chan<- *triple.Triple) error {
			return g.TriplesForSubject(ctx, a, &storage.LookupOptions{MaxElements: 2}, c)
		}, 2},
	}
	for _, entry := range table {
		if got := Collect(t, entry.lookup); len(got) != entry.want {
			t.Errorf("%s returned %v, want %d triples", entry.op, Sorted(got), entry.want)
		}
	}

	objs := CollectTerms(t, func(c chan<- term.Term) error { return g.Objects(ctx, a, name, lo, c) })
	if len(objs) != 1 || objs[0].String() != `"a"` {
		t.Errorf("Objects(%v, %v) = %v, want [\"a\"]", a, name, objs)
	}
	subs := CollectTerms(t, func(c chan<- term.Term) error { return g.Subjects(ctx, knows, a, lo, c) })
	if len(subs) != 1 || subs[0].Kind() != term.BlankNode {
		t.Errorf("Subjects(%v, %v) = %v, want the blank node", knows, a, subs)
	}

	if ok, err := g.Exist(ctx, ts[0]); err != nil || !ok {
		t.Errorf("Exist(%v) = %v, %v; want true, nil", ts[0], ok, err)
	}
	if err := g.RemoveTriples(ctx, ts[:1]); err != nil {
		t.Fatalf("RemoveTriples failed with error %v", err)
	}
	if ok, err := g.Exist(ctx, ts[0]); err != nil || ok {
		t.Errorf("Exist(%v) after removal = %v, %v; want false, nil", ts[0], ok, err)
	}
	if got := Collect(t, func(c chan<- *triple.Triple) error { return g.TriplesForSubjectAndPredicate(ctx, a, knows, lo, c) }); len(got) != 1 {
		t.Errorf("TriplesForSubjectAndPredicate after removal returned %v, want 1 triple", Sorted(got))
	}
	if err := g.RemoveTriples(ctx, ts[:1]); err != nil {
		t.Errorf("removing a missing triple should not fail; got %v", err)
	}

	names := make(chan string)
	errc := make(chan error, 1)
	go func() { errc <- s.GraphNames(ctx, names) }()
	found := false
	for n := range names {
		if n == id {
			found = true
		}
	}
	if err := <-errc; err != nil {
		t.Errorf("GraphNames failed with error %v", err)
	}
	if !found {
		t.Errorf("GraphNames did not return %q", id)
	}

	if _, err := s.Graph(ctx, id); err != nil {
		t.Errorf("Graph(%q) failed with error %v", id, err)
	}
	if err := s.DeleteGraph(ctx, id); err != nil {
		t.Errorf("DeleteGraph(%q) failed with error %v", id, err)
	}
	if _, err := s.Graph(ctx, id); err == nil {
		t.Errorf("Graph(%q) should fail after deletion", id)
	}
	if err := s.DeleteGraph(ctx, id); err == nil {
		t.Errorf("DeleteGraph(%q) should fail for a missing graph", id)
	}
}
