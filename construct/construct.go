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

// Package construct builds CONSTRUCT queries incrementally. A ConstructQuery
// pairs a template with the graph pattern that binds it, and every operation
// returns a new value composed from its operands.
package construct

import (
	"github.com/google/ldsparql/sparql/algebra"
	"github.com/google/ldsparql/sparql/optimizer"
	"github.com/google/ldsparql/sparql/query"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// ConstructQuery is the value being composed. The zero value is the identity
// query: it has an empty template and matches the empty basic pattern.
type ConstructQuery struct {
	Template []triple.Pattern
	Pattern  algebra.GraphPattern
}

// Func produces the query describing the node bound to a variable.
type Func func(binding term.Var) ConstructQuery

// Empty returns the identity query contributed by values that add no graph
// structure, such as literals.
func Empty() ConstructQuery {
	return ConstructQuery{Pattern: algebra.NewBasic()}
}

// New returns the query whose template and pattern are the single triple
// pattern (s, p, o).
func New(s, p, o term.Term) ConstructQuery {
	tp := triple.NewPattern(s, p, o)
	return ConstructQuery{
		Template: []triple.Pattern{tp},
		Pattern:  algebra.NewBasic(tp),
	}
}

// NewWithBinding links s to a fresh variable through p and joins the query
// f produces for that variable.
func NewWithBinding(s term.Var, p term.IRI, f Func) ConstructQuery {
	x := term.Fresh()
	return New(s, p, x).Join(f(x))
}

// IsEmpty returns true for the identity query.
func (q ConstructQuery) IsEmpty() bool {
	return len(q.Template) == 0 && (q.Pattern == nil || algebra.IsEmpty(q.Pattern))
}

// pattern returns the graph pattern, treating nil as the empty basic pattern.
func (q ConstructQuery) pattern() algebra.GraphPattern {
	if q.Pattern == nil {
		return algebra.NewBasic()
	}
	return q.Pattern
}

func concat(a, b []triple.Pattern) []triple.Pattern {
	res := make([]triple.Pattern, 0, len(a)+len(b))
	res = append(res, a...)
	return append(res, b...)
}

// Join returns the conjunction of both queries. The identity query is
// neutral on either side.
func (q ConstructQuery) Join(o ConstructQuery) ConstructQuery {
	switch {
	case o.IsEmpty():
		return q.clone()
	case q.IsEmpty():
		return o.clone()
	}
	return ConstructQuery{
		Template: concat(q.Template, o.Template),
		Pattern:  algebra.NewJoin(q.pattern(), o.pattern()),
	}
}

// Union returns the disjunction of both queries. The identity query is
// neutral on either side.
func (q ConstructQuery) Union(o ConstructQuery) ConstructQuery {
	switch {
	case o.IsEmpty():
		return q.clone()
	case q.IsEmpty():
		return o.clone()
	}
	return ConstructQuery{
		Template: concat(q.Template, o.Template),
		Pattern:  algebra.NewUnion(q.pattern(), o.pattern()),
	}
}

// JoinWithBinding joins q with NewWithBinding(s, p, f). It describes a record
// field whose value has its own structure.
func (q ConstructQuery) JoinWithBinding(s term.Var, p term.IRI, f Func) ConstructQuery {
	return q.Join(NewWithBinding(s, p, f))
}

// UnionWithBinding adds NewWithBinding(s, p, f) as an alternative to q. It
// describes one variant of a tagged choice.
func (q ConstructQuery) UnionWithBinding(s term.Var, p term.IRI, f Func) ConstructQuery {
	return q.Union(NewWithBinding(s, p, f))
}

// JoinWith joins q with the constant triple pattern (s, p, o).
func (q ConstructQuery) JoinWith(s term.Var, p term.IRI, o term.IRI) ConstructQuery {
	return q.Join(New(s, p, o))
}

// FilterVariable restricts the solutions of q to the ones where v is bound
// to id. The template is left untouched.
func (q ConstructQuery) FilterVariable(v term.Var, id term.IRI) ConstructQuery {
	return ConstructQuery{
		Template: concat(q.Template, nil),
		Pattern:  algebra.NewFilter(algebra.VarEquals(v, id), q.pattern()),
	}
}

func (q ConstructQuery) clone() ConstructQuery {
	return ConstructQuery{
		Template: concat(q.Template, nil),
		Pattern:  q.pattern(),
	}
}

// Query optimizes the pattern with the default optimizer and returns the
// executable query.
func (q ConstructQuery) Query() *query.Query {
	return q.QueryWith(optimizer.Default())
}

// QueryWith optimizes the pattern with opt and returns the executable query.
func (q ConstructQuery) QueryWith(opt optimizer.Optimizer) *query.Query {
	return query.Compile(q.Template, q.pattern(), opt)
}

// String returns the unoptimized query in SPARQL syntax.
func (q ConstructQuery) String() string {
	return q.QueryWith(optimizer.Identity()).String()
}
