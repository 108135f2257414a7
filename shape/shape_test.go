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
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/google/ldsparql/construct"
	"github.com/google/ldsparql/sparql/algebra"
	"github.com/google/ldsparql/triple/term"
)

var (
	field0 = term.NewNamedNode("http://ex/field_0")
	field1 = term.NewNamedNode("http://ex/field_1")
	left   = term.NewNamedNode("http://ex/left")
	right  = term.NewNamedNode("http://ex/right")
	value  = term.NewNamedNode("http://ex/value")
)

func mustLoad(t *testing.T) *Table {
	t.Helper()
	tbl, err := LoadFile("testdata/shapes.yaml")
	if err != nil {
		t.Fatalf("LoadFile failed with error %v", err)
	}
	return tbl
}

func mustCompile(t *testing.T, tbl *Table, name string, opts Options) (construct.ConstructQuery, term.Var) {
	t.Helper()
	q, root, err := tbl.Compile(name, opts)
	if err != nil {
		t.Fatalf("Compile(%q) failed with error %v", name, err)
	}
	return q, root
}

func equivalent(a, b construct.ConstructQuery) bool {
	r := algebra.NewRenaming()
	return r.Patterns(a.Template, b.Template) && r.Graph(a.Pattern, b.Pattern)
}

func record(b term.Var) construct.ConstructQuery {
	return construct.Empty().
		JoinWithBinding(b, field0, construct.Leaf.Build).
		JoinWithBinding(b, field1, construct.Leaf.Build)
}

func TestLoad(t *testing.T) {
	tbl := mustLoad(t)
	want := []string{"Chained", "ComplexStruct", "Enum", "List", "Struct", "StructFlatten", "Timestamp"}
	if got := tbl.TypeNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("TypeNames() = %v, want %v", got, want)
	}
	if got, want := tbl.Types["Struct"].Kind, Struct; got != want {
		t.Errorf("Validate should default the kind; got %q, want %q", got, want)
	}
	if got, want := tbl.Types["Enum"].Name, "Enum"; got != want {
		t.Errorf("Validate should fill in names; got %q, want %q", got, want)
	}
}

func TestCompileScenarios(t *testing.T) {
	tbl := mustLoad(t)
	table := []struct {
		name string
		want construct.Func
	}{
		{
			name: "Struct",
			want: record,
		},
		{
			name: "Enum",
			want: func(b term.Var) construct.ConstructQuery {
				return construct.Empty().
					UnionWithBinding(b, left, construct.Leaf.Build).
					UnionWithBinding(b, right, record)
			},
		},
		{
			name: "Chained",
			want: func(b term.Var) construct.ConstructQuery {
				return construct.Empty().
					UnionWithBinding(b, left, construct.WithPredicate(value, construct.Leaf.Build))
			},
		},
		{
			name: "ComplexStruct",
			want: func(b term.Var) construct.ConstructQuery {
				return construct.Empty().
					JoinWithBinding(b, term.NewNamedNode("http://ex/struct_flatten"), func(y term.Var) construct.ConstructQuery {
						return construct.Empty().Join(record(y))
					}).
					JoinWith(b, term.RDFType, term.NewNamedNode("http://ex/Type"))
			},
		},
		{
			name: "Timestamp",
			want: construct.Leaf.Build,
		},
		{
			name: "string",
			want: construct.Leaf.Build,
		},
	}
	for _, entry := range table {
		got, root := mustCompile(t, tbl, entry.name, Options{})
		if want := entry.want(root); !equivalent(got, want) {
			t.Errorf("Compile(%q) = %v, want %v", entry.name, got, want)
		}
	}
}

func TestCompileRecursionIsBounded(t *testing.T) {
	tbl := mustLoad(t)
	for _, depth := range []int{1, 2, 5} {
		q, _ := mustCompile(t, tbl, "List", Options{MaxDepth: depth})
		if got, want := len(q.Template), 2*(depth+1); got != want {
			t.Errorf("Compile(List) with depth %d returned %d template patterns, want %d", depth, got, want)
		}
		if err := q.Query().Validate(); err != nil {
			t.Errorf("Compile(List) produced an invalid query: %v", err)
		}
	}
	q, _ := mustCompile(t, tbl, "List", Options{})
	if got, want := len(q.Template), 2*(DefaultMaxDepth+1); got != want {
		t.Errorf("Compile(List) returned %d template patterns, want %d", got, want)
	}
}

func TestIdentifierPolicy(t *testing.T) {
	tbl := mustLoad(t)
	subject := term.NewNamedNode("urn:s")

	q, _ := mustCompile(t, tbl, "ComplexStruct", Options{Subject: &subject})
	if _, ok := q.Pattern.(*algebra.Filter); ok {
		t.Errorf("IgnoreIdentifiers should not filter; got %v", q.Pattern)
	}

	q, root := mustCompile(t, tbl, "ComplexStruct", Options{Subject: &subject, Identifiers: FilterIdentifiers})
	f, ok := q.Pattern.(*algebra.Filter)
	if !ok {
		t.Fatalf("FilterIdentifiers should filter the root; got %v", q.Pattern)
	}
	if got, want := f.Expr.String(), root.String()+" = <urn:s>"; got != want {
		t.Errorf("filter expression = %q, want %q", got, want)
	}

	if _, _, err := tbl.Compile("ComplexStruct", Options{Identifiers: FilterIdentifiers}); err == nil {
		t.Errorf("FilterIdentifiers without a subject should fail")
	}
}

func TestBuilder(t *testing.T) {
	tbl := mustLoad(t)
	b, err := tbl.Builder("Struct")
	if err != nil {
		t.Fatalf("Builder failed with error %v", err)
	}
	v := term.MustNewVariable("v")
	if got, want := b.Build(v), record(v); !equivalent(got, want) {
		t.Errorf("Builder(Struct).Build(%v) = %v, want %v", v, got, want)
	}
	if _, err := tbl.Builder("Missing"); err == nil {
		t.Errorf("Builder should fail for unknown types")
	}
}

func TestValidateErrors(t *testing.T) {
	table := []struct {
		yaml string
		want string
	}{
		{
			yaml: "types:\n  A:\n    fields:\n      - name: f\n        predicate: ex:f\n",
			want: `unknown prefix "ex"`,
		},
		{
			yaml: "types:\n  A:\n    fields:\n      - name: f\n        predicate: <http://ex/f>\n        type: B\n",
			want: `unknown type "B"`,
		},
		{
			yaml: "types:\n  A:\n    fields:\n      - name: f\n        flatten: true\n        predicate: <http://ex/f>\n        type: A\n",
			want: "exactly one of",
		},
		{
			yaml: "types:\n  A:\n    fields:\n      - name: f\n        flatten: true\n        type: B\n  B:\n    fields:\n      - name: g\n        flatten: true\n        type: A\n",
			want: "A -> B -> A",
		},
		{
			yaml: "types:\n  A:\n    kind: enum\n",
			want: "has no variants",
		},
		{
			yaml: "types:\n  A:\n    kind: record\n",
			want: `unknown kind "record"`,
		},
		{
			yaml: "types:\n  string:\n    kind: leaf\n",
			want: "shadows a built-in type",
		},
		{
			yaml: "types:\n  A:\n    colour: red\n",
			want: "failed to decode",
		},
	}
	for _, entry := range table {
		_, err := Load(strings.NewReader(entry.yaml))
		if err == nil {
			t.Errorf("Load(%q) should have failed", entry.yaml)
			continue
		}
		if !strings.Contains(err.Error(), entry.want) {
			t.Errorf("Load(%q) failed with %q, want it to mention %q", entry.yaml, err, entry.want)
		}
	}
}

func TestExpand(t *testing.T) {
	tbl := &Table{Prefixes: map[string]string{"ex": "http://ex/"}}
	table := []struct {
		in, want string
	}{
		{"ex:a", "http://ex/a"},
		{"<http://other/b>", "http://other/b"},
		{"http://other/c", "http://other/c"},
		{"urn:isbn:123", "urn:isbn:123"},
	}
	for _, entry := range table {
		got, err := tbl.Expand(entry.in)
		if err != nil {
			t.Errorf("Expand(%q) failed with error %v", entry.in, err)
			continue
		}
		if got != entry.want {
			t.Errorf("Expand(%q) = %q, want %q", entry.in, got, entry.want)
		}
	}
	for _, bad := range []string{"nocolon", "foo:bar"} {
		if _, err := tbl.Expand(bad); err == nil {
			t.Errorf("Expand(%q) should have failed", bad)
		}
	}
}

func TestEncodeLoad(t *testing.T) {
	tbl := mustLoad(t)
	var buf bytes.Buffer
	if err := tbl.Encode(&buf); err != nil {
		t.Fatalf("Encode failed with error %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load of the encoded table failed with error %v", err)
	}
	a, ra := mustCompile(t, tbl, "ComplexStruct", Options{})
	b, rb := mustCompile(t, got, "ComplexStruct", Options{})
	r := algebra.NewRenaming()
	if !r.Terms(ra, rb) || !r.Patterns(a.Template, b.Template) || !r.Graph(a.Pattern, b.Pattern) {
		t.Errorf("the encoded table compiles to %v, want %v", b, a)
	}
}

func TestCompileConcurrently(t *testing.T) {
	for _, tbl := range []*Table{mustLoad(t), {
		Prefixes: map[string]string{"ex": "http://ex/"},
		Types: map[string]*Type{
			"Enum": {Variants: []*Variant{{Name: "Left", Predicate: "ex:left", Type: "string"}}},
		},
	}} {
		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, _, err := tbl.Compile("Enum", Options{}); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Errorf("concurrent Compile(Enum) failed with error %v", err)
		}
		if got, want := tbl.Types["Enum"].Kind, Enum; got != want {
			t.Errorf("Enum kind = %q; want %q", got, want)
		}
	}
}

func TestCompileTracesCutOff(t *testing.T) {
	tbl := mustLoad(t)
	var buf bytes.Buffer
	mustCompile(t, tbl, "List", Options{MaxDepth: 1, Tracer: &buf})
	if got, want := strings.Count(buf.String(), "\n"), 1; got != want {
		t.Errorf("Compile(List) traced %d line(s); want %d\n%s", got, want, buf.String())
	}
	if !strings.Contains(buf.String(), `type "List" cut off after 1 predicate hop(s)`) {
		t.Errorf("trace %q does not report the cut off List", buf.String())
	}
	buf.Reset()
	mustCompile(t, tbl, "Struct", Options{MaxDepth: 1, Tracer: &buf})
	if buf.Len() != 0 {
		t.Errorf("Compile(Struct) traced %q; want nothing", buf.String())
	}
}
