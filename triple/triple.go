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

// Package triple implements and allows to manipulate ground triples and the
// triple patterns used to query them.
package triple

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/google/ldsparql/triple/term"
)

// Triple describes a ground <subject predicate object> statement.
type Triple struct {
	s term.Term
	p term.IRI
	o term.Term
}

// New creates a new triple. The subject needs to be a named or blank node, and
// the object cannot be a variable.
func New(s term.Term, p term.IRI, o term.Term) (*Triple, error) {
	if !term.IsNode(s) || o == nil {
		return nil, fmt.Errorf("triple.New cannot create triples from invalid components in <%v %v %v>", s, p, o)
	}
	if p.Value() == "" {
		return nil, fmt.Errorf("triple.New cannot create triples with an empty predicate in <%v %v %v>", s, p, o)
	}
	if o.Kind() == term.Variable {
		return nil, fmt.Errorf("triple.New cannot create triples with variable object %v", o)
	}
	return &Triple{
		s: s,
		p: p,
		o: o,
	}, nil
}

// S returns the subject of the triple.
func (t *Triple) S() term.Term {
	return t.s
}

// P returns the predicate of the triple.
func (t *Triple) P() term.IRI {
	return t.p
}

// O returns the object of the triple.
func (t *Triple) O() term.Term {
	return t.o
}

// String marshals the triple into an N-Triples line without the trailing new
// line.
func (t *Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.s, t.p, t.o)
}

// Equal returns true if both triples contain the same terms.
func (t *Triple) Equal(o *Triple) bool {
	return t.s == o.s && t.p == o.p && t.o == o.o
}

// GUID returns a global unique identifier for the given triple. It is
// implemented as the base64 encoded stringified version of the triple.
func (t *Triple) GUID() string {
	return base64.StdEncoding.EncodeToString([]byte(t.String()))
}

// Parse process the provided N-Triples line and tries to create a triple. It
// assumes that the provided text contains only one triple.
func Parse(line string) (*Triple, error) {
	raw := strings.TrimSpace(line)
	q, err := nquads.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("triple.Parse failed to parse %q; %v", raw, err)
	}
	t, err := FromQuad(q)
	if err != nil {
		return nil, fmt.Errorf("triple.Parse(%q): %v", raw, err)
	}
	return t, nil
}

// FromQuad returns the triple stated by a quad of the default graph.
func FromQuad(q quad.Quad) (*Triple, error) {
	if q.Label != nil {
		return nil, fmt.Errorf("triple.FromQuad: named graph %v is not supported", q.Label)
	}
	s, err := term.FromValue(q.Subject)
	if err != nil {
		return nil, err
	}
	p, err := term.FromValue(q.Predicate)
	if err != nil {
		return nil, err
	}
	pn, ok := p.(term.IRI)
	if !ok {
		return nil, fmt.Errorf("triple.FromQuad requires the predicate %v to be an IRI", p)
	}
	o, err := term.FromValue(q.Object)
	if err != nil {
		return nil, err
	}
	return New(s, pn, o)
}

// Quad returns the triple as a quad of the default graph.
func (t *Triple) Quad() quad.Quad {
	return quad.Quad{
		Subject:   term.ToValue(t.s),
		Predicate: term.ToValue(t.p),
		Object:    term.ToValue(t.o),
	}
}

// Pattern is a triple whose positions may hold variables.
type Pattern struct {
	S term.Term
	P term.Term
	O term.Term
}

// NewPattern returns a triple pattern. The subject must be a variable, named
// node, or blank node, and the predicate a named node or a variable. Violating
// those restrictions is a programming error and panics.
func NewPattern(s, p, o term.Term) Pattern {
	if s == nil || s.Kind() == term.Literal {
		panic(fmt.Sprintf("triple.NewPattern: invalid subject %v", s))
	}
	if p == nil || (p.Kind() != term.NamedNode && p.Kind() != term.Variable) {
		panic(fmt.Sprintf("triple.NewPattern: invalid predicate %v", p))
	}
	if o == nil {
		panic("triple.NewPattern: missing object")
	}
	return Pattern{S: s, P: p, O: o}
}

// String returns the pattern in SPARQL syntax without the trailing dot.
func (p Pattern) String() string {
	return fmt.Sprintf("%s %s %s", p.S, p.P, p.O)
}

// Terms returns the subject, predicate, and object in order.
func (p Pattern) Terms() [3]term.Term {
	return [3]term.Term{p.S, p.P, p.O}
}

// Variables returns the variables used in the pattern in position order.
// Repeated variables are only listed once.
func (p Pattern) Variables() []term.Var {
	var vs []term.Var
	for _, t := range p.Terms() {
		v, ok := t.(term.Var)
		if !ok {
			continue
		}
		dup := false
		for _, e := range vs {
			if e == v {
				dup = true
			}
		}
		if !dup {
			vs = append(vs, v)
		}
	}
	return vs
}

// Bound returns the number of positions holding a constant.
func (p Pattern) Bound() int {
	n := 0
	for _, t := range p.Terms() {
		if t.Kind() != term.Variable {
			n++
		}
	}
	return n
}

// Instantiate replaces the variables of the pattern using the provided lookup
// and returns the resulting ground triple. It returns false if a variable is
// unbound or if the result is not a valid triple.
func (p Pattern) Instantiate(lookup func(term.Var) (term.Term, bool)) (*Triple, bool) {
	var ts [3]term.Term
	for i, t := range p.Terms() {
		if v, ok := t.(term.Var); ok {
			bt, ok := lookup(v)
			if !ok || bt == nil {
				return nil, false
			}
			t = bt
		}
		ts[i] = t
	}
	pn, ok := ts[1].(term.IRI)
	if !ok {
		return nil, false
	}
	trpl, err := New(ts[0], pn, ts[2])
	if err != nil {
		return nil, false
	}
	return trpl, true
}
