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

package triple

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/google/ldsparql/triple/term"
)

func getTestData(t *testing.T) (term.Term, term.IRI, term.Term) {
	return term.NewNamedNode("urn:s"), term.NewNamedNode("http://ex/p"), term.NewLiteral("foo", "")
}

func TestInvalidTripleFail(t *testing.T) {
	s, p, o := getTestData(t)
	table := []struct {
		s term.Term
		p term.IRI
		o term.Term
	}{
		{nil, p, o},
		{s, p, nil},
		{o, p, o},
		{s, term.NewNamedNode(""), o},
		{s, p, term.MustNewVariable("x")},
		{term.MustNewVariable("x"), p, o},
	}
	for _, tc := range table {
		if tr, err := New(tc.s, tc.p, tc.o); err == nil {
			t.Errorf("triple.New should have never created an invalid triple as %s", tr)
		}
	}
}

func TestPrettyTriple(t *testing.T) {
	s, p, o := getTestData(t)
	tr, err := New(s, p, o)
	if err != nil {
		t.Fatalf("triple.New should not fail to create triple with error %v", err)
	}
	if got, want := tr.String(), `<urn:s> <http://ex/p> "foo" .`; got != want {
		t.Errorf("triple.String failed to return a valid pretty printed string; got %s, want %s", got, want)
	}
}

func TestParse(t *testing.T) {
	ss := []string{
		`<urn:s> <http://ex/p> <urn:o> .`,
		`<urn:s> <http://ex/p> "bar" .`,
		`_:b0 <http://ex/p> "bar"@en .`,
		`<urn:s> <http://ex/p> "1"^^<http://www.w3.org/2001/XMLSchema#integer> .`,
		`  <urn:s>	<http://ex/p>	_:b1 .  `,
	}
	for _, s := range ss {
		tr, err := Parse(s)
		if err != nil {
			t.Errorf("triple.Parse failed to parse valid triple %s with error %v", s, err)
			continue
		}
		again, err := Parse(tr.String())
		if err != nil {
			t.Errorf("triple.Parse failed to parse its own output %s with error %v", tr, err)
			continue
		}
		if !again.Equal(tr) {
			t.Errorf("triple.Parse did not round trip; got %s, want %s", again, tr)
		}
	}
	bad := []string{
		`<urn:s> <http://ex/p> <urn:o>`,
		`"lit" <http://ex/p> <urn:o> .`,
		`<urn:s> _:p <urn:o> .`,
		`<urn:s> <http://ex/p> ?o .`,
		`<urn:s> <http://ex/p> <urn:o> . extra`,
	}
	for _, s := range bad {
		if tr, err := Parse(s); err == nil {
			t.Errorf("triple.Parse should have rejected %q; got %s", s, tr)
		}
	}
}

func TestQuadRoundTrip(t *testing.T) {
	for _, s := range []string{
		`<urn:s> <http://ex/p> <urn:o> .`,
		`_:b0 <http://ex/p> "bar"@en .`,
		`<urn:s> <http://ex/p> "2024-01-02"^^<http://www.w3.org/2001/XMLSchema#date> .`,
	} {
		tr, err := Parse(s)
		if err != nil {
			t.Fatalf("triple.Parse(%q) failed with error %v", s, err)
		}
		got, err := FromQuad(tr.Quad())
		if err != nil {
			t.Fatalf("triple.FromQuad(%v) failed with error %v", tr.Quad(), err)
		}
		if !got.Equal(tr) {
			t.Errorf("triple.FromQuad(Quad()) = %s; want %s", got, tr)
		}
	}
}

func TestFromQuadRejects(t *testing.T) {
	table := []quad.Quad{
		{Subject: quad.IRI("urn:s"), Predicate: quad.IRI("http://ex/p"), Object: quad.IRI("urn:o"), Label: quad.IRI("urn:g")},
		{Subject: quad.IRI("urn:s"), Predicate: quad.BNode("p"), Object: quad.IRI("urn:o")},
		{Subject: quad.IRI("urn:s"), Predicate: quad.IRI("http://ex/p")},
	}
	for _, q := range table {
		if tr, err := FromQuad(q); err == nil {
			t.Errorf("triple.FromQuad(%v) should have failed; got %s", q, tr)
		}
	}
}

func TestGUIDIsStable(t *testing.T) {
	s, p, o := getTestData(t)
	t1, _ := New(s, p, o)
	t2, _ := New(s, p, o)
	if got, want := t1.GUID(), t2.GUID(); got != want {
		t.Errorf("triple.GUID should be the same for equal triples; got %q, want %q", got, want)
	}
}

func TestNewPatternPanics(t *testing.T) {
	lit, iri := term.NewLiteral("x", ""), term.NewNamedNode("http://ex/p")
	table := []struct {
		s, p, o term.Term
	}{
		{lit, iri, iri},
		{iri, lit, iri},
		{iri, term.NewBlankNode("b"), iri},
		{iri, iri, nil},
	}
	for _, tc := range table {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("triple.NewPattern(%v, %v, %v) should have panicked", tc.s, tc.p, tc.o)
				}
			}()
			NewPattern(tc.s, tc.p, tc.o)
		}()
	}
}

func TestPatternVariablesAndInstantiate(t *testing.T) {
	x, y := term.MustNewVariable("x"), term.MustNewVariable("y")
	p := NewPattern(x, term.NewNamedNode("http://ex/p"), y)
	if got, want := len(p.Variables()), 2; got != want {
		t.Fatalf("Variables returned the wrong number of variables; got %d, want %d", got, want)
	}
	if got, want := p.Bound(), 1; got != want {
		t.Errorf("Bound returned the wrong count; got %d, want %d", got, want)
	}
	if got, want := NewPattern(x, term.NewNamedNode("http://ex/p"), x).Variables(), []term.Var{x}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("Variables should not repeat variables; got %v, want %v", got, want)
	}
	binding := map[term.Var]term.Term{
		x: term.NewNamedNode("urn:s"),
		y: term.NewLiteral("v", ""),
	}
	lookup := func(v term.Var) (term.Term, bool) {
		tm, ok := binding[v]
		return tm, ok
	}
	tr, ok := p.Instantiate(lookup)
	if !ok {
		t.Fatalf("Instantiate failed for complete binding %v", binding)
	}
	if got, want := tr.String(), `<urn:s> <http://ex/p> "v" .`; got != want {
		t.Errorf("Instantiate returned the wrong triple; got %s, want %s", got, want)
	}
	delete(binding, y)
	if tr, ok := p.Instantiate(lookup); ok {
		t.Errorf("Instantiate should fail on unbound variables; got %s", tr)
	}
	binding[x], binding[y] = term.NewLiteral("s", ""), term.NewLiteral("v", "")
	if tr, ok := p.Instantiate(lookup); ok {
		t.Errorf("Instantiate should fail on literal subjects; got %s", tr)
	}
}
