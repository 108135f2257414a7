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

// Package algebra contains the graph pattern algebra used to express the
// WHERE clause of a query. The constructors are purely structural: they never
// flatten, reorder, or simplify the trees they build. Rewrites belong to the
// optimizer.
package algebra

import (
	"fmt"
	"strings"

	"github.com/google/ldsparql/triple"
)

// GraphPattern is a node of a graph pattern tree. Graph patterns are never
// mutated once built.
type GraphPattern interface {
	// String returns an s-expression describing the tree.
	String() string

	isGraphPattern()
}

// Basic is a basic graph pattern: an ordered sequence of triple patterns that
// must all match.
type Basic struct {
	Patterns []triple.Pattern
}

// Join requires both sides to match over a shared binding.
type Join struct {
	Left  GraphPattern
	Right GraphPattern
}

// Union matches if either side matches.
type Union struct {
	Left  GraphPattern
	Right GraphPattern
}

// Filter restricts the solutions of Inner to the ones where Expr holds.
type Filter struct {
	Expr  Expression
	Inner GraphPattern
}

func (*Basic) isGraphPattern()  {}
func (*Join) isGraphPattern()   {}
func (*Union) isGraphPattern()  {}
func (*Filter) isGraphPattern() {}

// NewBasic returns a basic graph pattern holding a copy of the provided
// triple patterns.
func NewBasic(ps ...triple.Pattern) *Basic {
	cps := make([]triple.Pattern, len(ps))
	copy(cps, ps)
	return &Basic{Patterns: cps}
}

// NewJoin returns the conjunction of both patterns.
func NewJoin(left, right GraphPattern) *Join {
	return &Join{Left: left, Right: right}
}

// NewUnion returns the disjunction of both patterns.
func NewUnion(left, right GraphPattern) *Union {
	return &Union{Left: left, Right: right}
}

// NewFilter returns inner restricted by expr.
func NewFilter(expr Expression, inner GraphPattern) *Filter {
	return &Filter{Expr: expr, Inner: inner}
}

// IsEmpty returns true if the pattern is the empty basic graph pattern, the
// identity of the join.
func IsEmpty(p GraphPattern) bool {
	b, ok := p.(*Basic)
	return ok && len(b.Patterns) == 0
}

// String returns the s-expression for the basic graph pattern.
func (b *Basic) String() string {
	var ps []string
	for _, p := range b.Patterns {
		ps = append(ps, "("+p.String()+")")
	}
	if len(ps) == 0 {
		return "(bgp)"
	}
	return "(bgp " + strings.Join(ps, " ") + ")"
}

// String returns the s-expression for the join.
func (j *Join) String() string {
	return fmt.Sprintf("(join %s %s)", j.Left, j.Right)
}

// String returns the s-expression for the union.
func (u *Union) String() string {
	return fmt.Sprintf("(union %s %s)", u.Left, u.Right)
}

// String returns the s-expression for the filter.
func (f *Filter) String() string {
	return fmt.Sprintf("(filter (%s) %s)", f.Expr, f.Inner)
}
