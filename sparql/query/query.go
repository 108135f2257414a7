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

// Package query contains the executable CONSTRUCT query and the compiler that
// assembles it from a template and a graph pattern.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/ldsparql/sparql/algebra"
	"github.com/google/ldsparql/sparql/optimizer"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// Dataset lists the graphs a query is evaluated against.
type Dataset struct {
	Default []term.IRI
	Named   []term.IRI
}

// Query is an executable CONSTRUCT query.
type Query struct {
	// Template contains the triple patterns instantiated for each solution.
	Template []triple.Pattern
	// Pattern is the WHERE clause.
	Pattern algebra.GraphPattern
	// Dataset is nil when the query runs against the default graph.
	Dataset *Dataset
	// BaseIRI is nil when no BASE declaration is emitted.
	BaseIRI *term.IRI
}

// Compile optimizes the pattern with opt and assembles the query. A nil
// optimizer uses optimizer.Default. The template is copied.
func Compile(template []triple.Pattern, pattern algebra.GraphPattern, opt optimizer.Optimizer) *Query {
	if opt == nil {
		opt = optimizer.Default()
	}
	if pattern == nil {
		pattern = algebra.NewBasic()
	}
	tmpl := make([]triple.Pattern, len(template))
	copy(tmpl, template)
	return &Query{
		Template: tmpl,
		Pattern:  opt.Optimize(pattern),
	}
}

// String returns the query in SPARQL syntax.
func (q *Query) String() string {
	var b strings.Builder
	if q.BaseIRI != nil {
		b.WriteString("BASE " + q.BaseIRI.String() + "\n")
	}
	b.WriteString("CONSTRUCT {\n")
	for _, tp := range q.Template {
		b.WriteString("  " + tp.String() + " .\n")
	}
	b.WriteString("}\n")
	if q.Dataset != nil {
		for _, g := range q.Dataset.Default {
			b.WriteString("FROM " + g.String() + "\n")
		}
		for _, g := range q.Dataset.Named {
			b.WriteString("FROM NAMED " + g.String() + "\n")
		}
	}
	b.WriteString("WHERE {\n")
	b.WriteString(algebra.Render(q.Pattern, "  "))
	b.WriteString("}\n")
	return b.String()
}

// Variables returns the variables of the query, template first, in order of
// first appearance.
func (q *Query) Variables() []term.Var {
	var vs []term.Var
	seen := make(map[term.Var]bool)
	add := func(v term.Var) {
		if !seen[v] {
			seen[v] = true
			vs = append(vs, v)
		}
	}
	for _, tp := range q.Template {
		for _, v := range tp.Variables() {
			add(v)
		}
	}
	for _, v := range algebra.Variables(q.Pattern) {
		add(v)
	}
	return vs
}

// Validate checks that every variable of the template is bound by a triple
// pattern of the WHERE clause.
func (q *Query) Validate() error {
	bound := make(map[term.Var]bool)
	for _, tp := range algebra.Patterns(q.Pattern) {
		for _, v := range tp.Variables() {
			bound[v] = true
		}
	}
	var missing []string
	reported := make(map[term.Var]bool)
	for _, tp := range q.Template {
		for _, v := range tp.Variables() {
			if !bound[v] && !reported[v] {
				reported[v] = true
				missing = append(missing, v.String())
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("query.Validate: template variables %s are not bound by the WHERE clause", strings.Join(missing, ", "))
	}
	return nil
}

// Normalize returns a copy of the query where generated variables are renamed
// in order of first appearance. Two queries built the same way normalize to
// the same text regardless of how many variables were generated before.
func (q *Query) Normalize() *Query {
	gen := term.NewGenerator("")
	names := make(map[term.Var]term.Var)
	for _, v := range q.Variables() {
		if v.IsFresh() {
			names[v] = gen.Next()
		}
	}
	rename := func(v term.Var) term.Var {
		if n, ok := names[v]; ok {
			return n
		}
		return v
	}
	return &Query{
		Template: algebra.RenamePatterns(q.Template, rename),
		Pattern:  algebra.Rename(q.Pattern, rename),
		Dataset:  q.Dataset,
		BaseIRI:  q.BaseIRI,
	}
}
