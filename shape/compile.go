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

package shape

import (
	"fmt"
	"io"

	"github.com/google/ldsparql/construct"
	"github.com/google/ldsparql/sparql/planner/tracer"
	"github.com/google/ldsparql/triple/term"
)

// IdentifierPolicy selects what happens to identifier fields when a query is
// compiled for a known subject.
type IdentifierPolicy int

const (
	// IgnoreIdentifiers leaves identifiers unconstrained. The caller seeds
	// the root binding when executing the query.
	IgnoreIdentifiers IdentifierPolicy = iota
	// FilterIdentifiers pins the root binding to the subject with a filter.
	FilterIdentifiers
)

// DefaultMaxDepth bounds the unfolding of recursive types.
const DefaultMaxDepth = 8

// Options configure Compile.
type Options struct {
	// Subject is the identifier of the root node, if known.
	Subject *term.IRI
	// Identifiers selects how Subject is used.
	Identifiers IdentifierPolicy
	// MaxDepth is the number of predicate hops recursive types unfold before
	// contributing the identity query. Zero means DefaultMaxDepth. Data
	// nested deeper than MaxDepth is silently left out of the results. A type
	// with several recursive fields grows exponentially with the depth.
	MaxDepth int
	// Tracer, if not nil, receives a line for every type whose unfolding was
	// cut off by MaxDepth.
	Tracer io.Writer
}

// Compile returns the query describing a value of the named type and the
// variable bound to its root.
func (t *Table) Compile(name string, opts Options) (construct.ConstructQuery, term.Var, error) {
	b, err := t.builder(name, opts.MaxDepth, opts.Tracer)
	if err != nil {
		return construct.ConstructQuery{}, term.Var{}, err
	}
	if opts.Identifiers == FilterIdentifiers && opts.Subject == nil {
		return construct.ConstructQuery{}, term.Var{}, fmt.Errorf("shape.Compile(%q): filtering identifiers requires a subject", name)
	}
	q, root := construct.Root(b)
	if opts.Identifiers == FilterIdentifiers {
		q = q.FilterVariable(root, *opts.Subject)
	}
	return q, root, nil
}

// Builder returns the builder for the named type.
func (t *Table) Builder(name string) (construct.Builder, error) {
	return t.builder(name, 0, nil)
}

func (t *Table) builder(name string, maxDepth int, w io.Writer) (construct.Builder, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if _, ok := t.Types[name]; !ok && !builtins[name] {
		return nil, fmt.Errorf("shape.Builder: unknown type %q", name)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	c := &compiler{table: t, maxDepth: maxDepth, w: w}
	return construct.BuilderFunc(c.build(name, 0)), nil
}

// compiler issues builder calls for a validated table.
type compiler struct {
	table    *Table
	maxDepth int
	w        io.Writer
}

// iri expands a compact IRI validated beforehand.
func (c *compiler) iri(s string) term.IRI {
	e, err := c.table.Expand(s)
	if err != nil {
		panic(fmt.Sprintf("shape: %v in a validated table", err))
	}
	return term.NewNamedNode(e)
}

// build returns the continuation for the named type reached after depth
// predicate hops.
func (c *compiler) build(name string, depth int) construct.Func {
	if c.table.isLeaf(name) {
		return construct.Leaf.Build
	}
	if depth > c.maxDepth {
		tracer.Trace(c.w, func() []string {
			return []string{fmt.Sprintf("type %q cut off after %d predicate hop(s)", name, c.maxDepth)}
		})
		return construct.Leaf.Build
	}
	typ := c.table.Types[name]
	return func(binding term.Var) construct.ConstructQuery {
		q := construct.Empty()
		switch typ.Kind {
		case Struct:
			for _, f := range typ.Fields {
				switch {
				case f.Ignore, f.ID:
				case f.Flatten:
					q = q.Join(c.build(f.Type, depth)(binding))
				default:
					q = q.JoinWithBinding(binding, c.iri(f.Predicate), c.build(f.Type, depth+1))
				}
			}
			if typ.TypeIRI != "" {
				q = q.JoinWith(binding, term.RDFType, c.iri(typ.TypeIRI))
			}
		case Enum:
			for _, v := range typ.Variants {
				next := c.build(v.Type, depth+1)
				if v.Inner != "" {
					next = construct.WithPredicate(c.iri(v.Inner), next)
				}
				q = q.UnionWithBinding(binding, c.iri(v.Predicate), next)
			}
		}
		return q
	}
}
