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

// Package planner evaluates compiled CONSTRUCT queries against storage graphs.
package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/google/ldsparql/sparql/algebra"
	"github.com/google/ldsparql/sparql/planner/tracer"
	"github.com/google/ldsparql/sparql/query"
	"github.com/google/ldsparql/sparql/table"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// DefaultChannelSize is the buffer used for the lookup channels.
const DefaultChannelSize = 128

// Plan encapsulates the sequence of instructions that need to be executed in
// order to answer a CONSTRUCT query over a set of graphs. Plans are not safe
// for concurrent use.
type Plan struct {
	gs       []storage.Graph
	q        *query.Query
	seed     table.Row
	lo       *storage.LookupOptions
	chanSize int
	w        io.Writer
}

// New returns a plan for the query over the provided graphs. The graphs are
// merged into a single default graph.
func New(gs []storage.Graph, q *query.Query) *Plan {
	return &Plan{
		gs:       gs,
		q:        q,
		seed:     table.Row{},
		lo:       storage.DefaultLookup,
		chanSize: DefaultChannelSize,
	}
}

// Bind seeds the initial solution with the provided binding. Executing a
// query for a single subject binds its root variable this way.
func (p *Plan) Bind(v term.Var, t term.Term) *Plan {
	p.seed[v.String()] = t
	return p
}

// WithChannelSize sets the buffer of the lookup channels.
func (p *Plan) WithChannelSize(n int) *Plan {
	if n >= 0 {
		p.chanSize = n
	}
	return p
}

// WithTracer writes an execution trace to w.
func (p *Plan) WithTracer(w io.Writer) *Plan {
	p.w = w
	return p
}

// Solutions evaluates the WHERE clause and returns the table of solutions.
func (p *Plan) Solutions(ctx context.Context) (*table.Table, error) {
	in, err := p.seedTable()
	if err != nil {
		return nil, err
	}
	tracer.Trace(p.w, func() []string {
		return []string{fmt.Sprintf("evaluating %v over %d graph(s)", p.q.Pattern, len(p.gs))}
	})
	out, err := p.eval(ctx, p.q.Pattern, in)
	if err != nil {
		return nil, err
	}
	out.Dedup()
	tracer.Trace(p.w, func() []string {
		return []string{fmt.Sprintf("%d solution(s) found", out.NumRows())}
	})
	return out, nil
}

// Execute evaluates the query and returns the instantiated template. Triples
// are returned once, in solution order. Template patterns with variables left
// unbound by a solution are skipped for that solution.
func (p *Plan) Execute(ctx context.Context) ([]*triple.Triple, error) {
	tbl, err := p.Solutions(ctx)
	if err != nil {
		return nil, err
	}
	var res []*triple.Triple
	seen := make(map[string]bool)
	for _, r := range tbl.Rows() {
		for _, tp := range p.q.Template {
			t, ok := tp.Instantiate(r.Value)
			if !ok {
				continue
			}
			if k := t.GUID(); !seen[k] {
				seen[k] = true
				res = append(res, t)
			}
		}
	}
	tracer.Trace(p.w, func() []string {
		return []string{fmt.Sprintf("%d triple(s) constructed", len(res))}
	})
	return res, nil
}

// eval returns the solutions of the pattern compatible with the input
// solutions.
func (p *Plan) eval(ctx context.Context, gp algebra.GraphPattern, in *table.Table) (*table.Table, error) {
	switch v := gp.(type) {
	case *algebra.Basic:
		return p.evalBasic(ctx, v, in)
	case *algebra.Join:
		l, err := p.eval(ctx, v.Left, in)
		if err != nil {
			return nil, err
		}
		return p.eval(ctx, v.Right, l)
	case *algebra.Union:
		l, err := p.eval(ctx, v.Left, in)
		if err != nil {
			return nil, err
		}
		r, err := p.eval(ctx, v.Right, in)
		if err != nil {
			return nil, err
		}
		l.AppendTable(r)
		return l, nil
	case *algebra.Filter:
		// The filtered group is evaluated on its own and only then merged
		// with the solutions reaching it.
		seed, err := p.seedTable()
		if err != nil {
			return nil, err
		}
		res, err := p.eval(ctx, v.Inner, seed)
		if err != nil {
			return nil, err
		}
		ev, ok := v.Expr.(algebra.Evaluator)
		if !ok {
			return nil, fmt.Errorf("planner.eval: expression %v cannot be evaluated", v.Expr)
		}
		if err := res.Filter(func(r table.Row) (bool, error) { return ev.Evaluate(r.Value) }); err != nil {
			return nil, fmt.Errorf("planner.eval: %w", err)
		}
		res.Join(in)
		return res, nil
	default:
		return nil, fmt.Errorf("planner.eval: unknown graph pattern %T", gp)
	}
}

// evalBasic extends each input solution with the matches of every pattern in
// order, substituting the bindings found so far before each lookup.
func (p *Plan) evalBasic(ctx context.Context, b *algebra.Basic, in *table.Table) (*table.Table, error) {
	cur := in
	for _, cls := range b.Patterns {
		next, err := table.New(cur.Bindings())
		if err != nil {
			return nil, err
		}
		var bs []string
		for _, v := range cls.Variables() {
			bs = append(bs, v.String())
		}
		next.AddBindings(bs)
		for _, r := range cur.Rows() {
			sc := substitute(cls, r)
			ts, err := fetch(ctx, p.gs, sc, p.lo, p.chanSize)
			if err != nil {
				return nil, err
			}
			for _, t := range ts {
				if nr, ok := tripleToRow(t, sc, r); ok {
					next.AddRow(nr)
				}
			}
		}
		tracer.Trace(p.w, func() []string {
			return []string{fmt.Sprintf("pattern %v: %d solution(s)", cls, next.NumRows())}
		})
		cur = next
	}
	if cur == in {
		// An empty group returns its input unchanged.
		res, err := table.New(in.Bindings())
		if err != nil {
			return nil, err
		}
		for _, r := range in.Rows() {
			res.AddRow(r)
		}
		return res, nil
	}
	return cur, nil
}

// seedTable returns the table holding the initial solution.
func (p *Plan) seedTable() (*table.Table, error) {
	if len(p.seed) == 0 {
		return table.Unit(), nil
	}
	t, err := table.New(bindings(p.seed))
	if err != nil {
		return nil, err
	}
	t.AddRow(p.seed)
	return t, nil
}

func bindings(r table.Row) []string {
	var bs []string
	for k := range r {
		bs = append(bs, k)
	}
	return bs
}
