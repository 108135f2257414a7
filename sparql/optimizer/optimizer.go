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

// Package optimizer rewrites graph patterns into logically equivalent ones
// that are cheaper to evaluate.
package optimizer

import (
	"sort"

	"github.com/google/ldsparql/sparql/algebra"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// Optimizer rewrites a graph pattern. Implementations must be total over well
// formed patterns, return a logically equivalent pattern, and never mutate
// their input.
type Optimizer interface {
	Optimize(p algebra.GraphPattern) algebra.GraphPattern
}

// Rule rewrites a single node whose children are already rewritten.
type Rule func(p algebra.GraphPattern) algebra.GraphPattern

// Rewriter applies its rules bottom-up.
type Rewriter struct {
	rules []Rule
}

// New returns an optimizer applying the provided rules, in order, to every
// node of the tree after its children are rewritten.
func New(rules ...Rule) *Rewriter {
	return &Rewriter{rules: rules}
}

// Default returns the optimizer used to finalize queries.
func Default() *Rewriter {
	return New(FlattenJoins, DedupPatterns, ReorderBySelectivity)
}

type identity struct{}

func (identity) Optimize(p algebra.GraphPattern) algebra.GraphPattern { return p }

// Identity returns an optimizer that returns patterns unchanged.
func Identity() Optimizer {
	return identity{}
}

// Optimize returns the rewritten pattern.
func (r *Rewriter) Optimize(p algebra.GraphPattern) algebra.GraphPattern {
	if p == nil {
		return algebra.NewBasic()
	}
	switch n := p.(type) {
	case *algebra.Join:
		p = algebra.NewJoin(r.Optimize(n.Left), r.Optimize(n.Right))
	case *algebra.Union:
		p = algebra.NewUnion(r.Optimize(n.Left), r.Optimize(n.Right))
	case *algebra.Filter:
		p = algebra.NewFilter(n.Expr, r.Optimize(n.Inner))
	case *algebra.Basic:
		p = algebra.NewBasic(n.Patterns...)
	}
	for _, rule := range r.rules {
		p = rule(p)
	}
	return p
}

// FlattenJoins collapses a tree of joins into a left deep chain. The empty
// basic pattern is dropped since it is the identity of the join, and all basic
// operands are merged into a single one placed first. The remaining operands
// keep their relative order.
func FlattenJoins(p algebra.GraphPattern) algebra.GraphPattern {
	if _, ok := p.(*algebra.Join); !ok {
		return p
	}
	var (
		bgp    []triple.Pattern
		others []algebra.GraphPattern
	)
	var collect func(algebra.GraphPattern)
	collect = func(g algebra.GraphPattern) {
		switch n := g.(type) {
		case *algebra.Join:
			collect(n.Left)
			collect(n.Right)
		case *algebra.Basic:
			bgp = append(bgp, n.Patterns...)
		default:
			others = append(others, g)
		}
	}
	collect(p)

	var res algebra.GraphPattern
	if len(bgp) > 0 || len(others) == 0 {
		res = algebra.NewBasic(bgp...)
	}
	for _, o := range others {
		if res == nil {
			res = o
			continue
		}
		res = algebra.NewJoin(res, o)
	}
	return res
}

// DedupPatterns drops repeated triple patterns inside a basic pattern.
func DedupPatterns(p algebra.GraphPattern) algebra.GraphPattern {
	b, ok := p.(*algebra.Basic)
	if !ok {
		return p
	}
	seen := make(map[triple.Pattern]bool, len(b.Patterns))
	var ps []triple.Pattern
	for _, tp := range b.Patterns {
		if seen[tp] {
			continue
		}
		seen[tp] = true
		ps = append(ps, tp)
	}
	if len(ps) == len(b.Patterns) {
		return p
	}
	return algebra.NewBasic(ps...)
}

// ReorderBySelectivity orders the patterns of a basic pattern so the most
// selective ones run first. After the first pick, patterns sharing a variable
// with the already scheduled ones are preferred so intermediate results stay
// connected. Ties keep their original order.
func ReorderBySelectivity(p algebra.GraphPattern) algebra.GraphPattern {
	b, ok := p.(*algebra.Basic)
	if !ok || len(b.Patterns) < 2 {
		return p
	}
	pending := make([]triple.Pattern, len(b.Patterns))
	copy(pending, b.Patterns)
	sort.SliceStable(pending, func(i, j int) bool {
		return Selectivity(pending[i]) < Selectivity(pending[j])
	})

	bound := make(map[term.Var]bool)
	ordered := make([]triple.Pattern, 0, len(pending))
	for len(pending) > 0 {
		next := 0
		for i, tp := range pending {
			if connected(tp, bound) {
				next = i
				break
			}
		}
		tp := pending[next]
		pending = append(pending[:next], pending[next+1:]...)
		ordered = append(ordered, tp)
		for _, v := range tp.Variables() {
			bound[v] = true
		}
	}
	return algebra.NewBasic(ordered...)
}

func connected(tp triple.Pattern, bound map[term.Var]bool) bool {
	for _, v := range tp.Variables() {
		if bound[v] {
			return true
		}
	}
	return false
}

// Selectivity estimates the fraction of the store a pattern matches. Lower
// values are more selective.
func Selectivity(tp triple.Pattern) float64 {
	s := 1.0
	if tp.S.Kind() != term.Variable {
		s *= 0.01
	}
	if tp.P.Kind() != term.Variable {
		s *= 0.1
	}
	if tp.O.Kind() != term.Variable {
		s *= 0.1
	}
	return s
}
