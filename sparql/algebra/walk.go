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

package algebra

import (
	"strings"

	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// Walk traverses the tree in pre-order calling fn on every node. Children of
// a node are skipped when fn returns false.
func Walk(p GraphPattern, fn func(GraphPattern) bool) {
	if p == nil || !fn(p) {
		return
	}
	switch n := p.(type) {
	case *Join:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Union:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Filter:
		Walk(n.Inner, fn)
	}
}

// Patterns returns every triple pattern in the tree, left to right.
func Patterns(p GraphPattern) []triple.Pattern {
	var res []triple.Pattern
	Walk(p, func(n GraphPattern) bool {
		if b, ok := n.(*Basic); ok {
			res = append(res, b.Patterns...)
		}
		return true
	})
	return res
}

// Variables returns the variables appearing in the tree in order of first
// appearance. Variables only read by filters are included.
func Variables(p GraphPattern) []term.Var {
	var vs []term.Var
	Walk(p, func(n GraphPattern) bool {
		switch n := n.(type) {
		case *Basic:
			for _, tp := range n.Patterns {
				vs = appendUnique(vs, tp.Variables()...)
			}
		case *Filter:
			vs = appendUnique(vs, n.Expr.Variables()...)
		}
		return true
	})
	return vs
}

// Renaming tracks a bijection between the variables of two trees.
type Renaming struct {
	fwd map[term.Var]term.Var
	bwd map[term.Var]term.Var
}

// NewRenaming returns an empty bijection.
func NewRenaming() *Renaming {
	return &Renaming{
		fwd: make(map[term.Var]term.Var),
		bwd: make(map[term.Var]term.Var),
	}
}

// Terms returns true if a and b are the same constant, or variables that are
// consistently mapped onto each other. New variable pairs extend the mapping.
func (r *Renaming) Terms(a, b term.Term) bool {
	va, aok := a.(term.Var)
	vb, bok := b.(term.Var)
	if aok != bok {
		return false
	}
	if !aok {
		return a.Kind() == b.Kind() && a.String() == b.String()
	}
	f, fok := r.fwd[va]
	g, gok := r.bwd[vb]
	switch {
	case !fok && !gok:
		r.fwd[va], r.bwd[vb] = vb, va
		return true
	case fok && gok:
		return f == vb && g == va
	default:
		return false
	}
}

// Patterns returns true if the triple pattern lists match position by
// position under the renaming.
func (r *Renaming) Patterns(a, b []triple.Pattern) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		at, bt := a[i].Terms(), b[i].Terms()
		for j := range at {
			if !r.Terms(at[j], bt[j]) {
				return false
			}
		}
	}
	return true
}

// Graph returns true if both trees have the same shape and their leaves match
// under the renaming.
func (r *Renaming) Graph(a, b GraphPattern) bool {
	switch x := a.(type) {
	case *Basic:
		y, ok := b.(*Basic)
		return ok && r.Patterns(x.Patterns, y.Patterns)
	case *Join:
		y, ok := b.(*Join)
		return ok && r.Graph(x.Left, y.Left) && r.Graph(x.Right, y.Right)
	case *Union:
		y, ok := b.(*Union)
		return ok && r.Graph(x.Left, y.Left) && r.Graph(x.Right, y.Right)
	case *Filter:
		y, ok := b.(*Filter)
		return ok && r.expression(x.Expr, y.Expr) && r.Graph(x.Inner, y.Inner)
	}
	return false
}

func (r *Renaming) expression(a, b Expression) bool {
	switch x := a.(type) {
	case VariableExpr:
		y, ok := b.(VariableExpr)
		return ok && r.Terms(x.Var, y.Var)
	case NamedNodeExpr:
		y, ok := b.(NamedNodeExpr)
		return ok && x.IRI == y.IRI
	case *Equal:
		y, ok := b.(*Equal)
		return ok && r.expression(x.Left, y.Left) && r.expression(x.Right, y.Right)
	}
	return false
}

// Equivalent returns true if both trees are structurally equal up to a
// bijective renaming of their variables.
func Equivalent(a, b GraphPattern) bool {
	return NewRenaming().Graph(a, b)
}

// Render returns the body of the SPARQL group graph pattern for p, one
// element per line, indented by the provided prefix.
func Render(p GraphPattern, indent string) string {
	var b strings.Builder
	render(&b, p, indent)
	return b.String()
}

const tab = "  "

func render(b *strings.Builder, p GraphPattern, indent string) {
	switch n := p.(type) {
	case *Basic:
		for _, tp := range n.Patterns {
			b.WriteString(indent + tp.String() + " .\n")
		}
	case *Join:
		for _, c := range []GraphPattern{n.Left, n.Right} {
			if _, ok := c.(*Filter); ok {
				// A FILTER scopes over the whole group, so it needs its own.
				b.WriteString(indent + "{\n")
				render(b, c, indent+tab)
				b.WriteString(indent + "}\n")
				continue
			}
			render(b, c, indent)
		}
	case *Union:
		b.WriteString(indent + "{\n")
		render(b, n.Left, indent+tab)
		b.WriteString(indent + "} UNION {\n")
		render(b, n.Right, indent+tab)
		b.WriteString(indent + "}\n")
	case *Filter:
		render(b, n.Inner, indent)
		b.WriteString(indent + "FILTER(" + n.Expr.String() + ")\n")
	}
}

// Rename returns a copy of the tree where every variable is replaced by the
// result of fn.
func Rename(p GraphPattern, fn func(term.Var) term.Var) GraphPattern {
	switch n := p.(type) {
	case *Basic:
		return NewBasic(RenamePatterns(n.Patterns, fn)...)
	case *Join:
		return NewJoin(Rename(n.Left, fn), Rename(n.Right, fn))
	case *Union:
		return NewUnion(Rename(n.Left, fn), Rename(n.Right, fn))
	case *Filter:
		return NewFilter(renameExpr(n.Expr, fn), Rename(n.Inner, fn))
	}
	return p
}

// RenamePatterns returns a renamed copy of the triple patterns.
func RenamePatterns(ps []triple.Pattern, fn func(term.Var) term.Var) []triple.Pattern {
	res := make([]triple.Pattern, 0, len(ps))
	for _, tp := range ps {
		ts := tp.Terms()
		for i, t := range ts {
			if v, ok := t.(term.Var); ok {
				ts[i] = fn(v)
			}
		}
		res = append(res, triple.Pattern{S: ts[0], P: ts[1], O: ts[2]})
	}
	return res
}

func renameExpr(e Expression, fn func(term.Var) term.Var) Expression {
	switch x := e.(type) {
	case VariableExpr:
		return VariableExpr{Var: fn(x.Var)}
	case *Equal:
		return NewEqual(renameExpr(x.Left, fn), renameExpr(x.Right, fn))
	}
	return e
}
