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

package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/ldsparql/triple/term"
)

func iri(s string) term.Term { return term.NewNamedNode("http://ex/" + s) }

func mustNew(t *testing.T, bs ...string) *Table {
	t.Helper()
	tbl, err := New(bs)
	if err != nil {
		t.Fatalf("table.New(%v) failed with error %v", bs, err)
	}
	return tbl
}

func TestNew(t *testing.T) {
	testTable := []struct {
		bs  []string
		err bool
	}{
		{[]string{}, false},
		{[]string{"?foo"}, false},
		{[]string{"?foo", "?bar"}, false},
		{[]string{"?foo", "?bar", "?foo", "?bar"}, true},
	}
	for _, entry := range testTable {
		if _, err := New(entry.bs); (err == nil) == entry.err {
			t.Errorf("table.New failed; want %v for %v ", entry.err, entry.bs)
		}
	}
}

func TestRowValue(t *testing.T) {
	r := Row{"?s": iri("a")}
	if got, ok := r.Value(term.MustNewVariable("s")); !ok || got.String() != "<http://ex/a>" {
		t.Errorf("Row.Value(?s) = %v, %v; want <http://ex/a>, true", got, ok)
	}
	if _, ok := r.Value(term.MustNewVariable("o")); ok {
		t.Errorf("Row.Value(?o) should be unbound")
	}
}

func TestAddRowAndBindings(t *testing.T) {
	tbl := mustNew(t, "?s")
	tbl.AddRow(Row{"?s": iri("a")})
	tbl.AddBindings([]string{"?s", "?o"})
	if got, want := tbl.NumRows(), 1; got != want {
		t.Errorf("tbl.NumRows() = %d; want %d", got, want)
	}
	if got, want := strings.Join(tbl.Bindings(), ","), "?s,?o"; got != want {
		t.Errorf("tbl.Bindings() = %q; want %q", got, want)
	}
	if !tbl.HasBinding("?o") || tbl.HasBinding("?p") {
		t.Errorf("tbl.HasBinding returned the wrong answer for %v", tbl.Bindings())
	}
	if _, ok := tbl.Row(1); ok {
		t.Errorf("tbl.Row(1) should not exist")
	}
}

func TestToText(t *testing.T) {
	tbl := mustNew(t, "?s", "?o")
	tbl.AddRow(Row{"?s": iri("a"), "?o": term.NewLiteral("x", term.XSDString)})
	tbl.AddRow(Row{"?s": iri("b")})
	got, err := tbl.ToText(", ")
	if err != nil {
		t.Fatal(err)
	}
	want := "?s, ?o\n<http://ex/a>, \"x\"\n<http://ex/b>, <NULL>\n"
	if got.String() != want {
		t.Errorf("tbl.ToText() = %q; want %q", got.String(), want)
	}
}

func TestJoin(t *testing.T) {
	left := mustNew(t, "?s", "?o")
	left.AddRow(Row{"?s": iri("a"), "?o": iri("x")})
	left.AddRow(Row{"?s": iri("b"), "?o": iri("y")})
	right := mustNew(t, "?o", "?n")
	right.AddRow(Row{"?o": iri("x"), "?n": iri("1")})
	right.AddRow(Row{"?o": iri("x"), "?n": iri("2")})
	right.AddRow(Row{"?o": iri("z"), "?n": iri("3")})

	left.Join(right)
	if got, want := left.NumRows(), 2; got != want {
		t.Fatalf("Join returned %d rows; want %d\n%s", got, want, left)
	}
	for _, r := range left.Rows() {
		if r["?s"].String() != "<http://ex/a>" {
			t.Errorf("Join produced an incompatible row %v", r)
		}
	}
	if got, want := len(left.Bindings()), 3; got != want {
		t.Errorf("Join bindings = %v; want %d of them", left.Bindings(), want)
	}
}

func TestJoinDisjointIsProduct(t *testing.T) {
	left := mustNew(t, "?a")
	left.AddRow(Row{"?a": iri("1")})
	left.AddRow(Row{"?a": iri("2")})
	right := mustNew(t, "?b")
	right.AddRow(Row{"?b": iri("3")})
	right.AddRow(Row{"?b": iri("4")})
	right.AddRow(Row{"?b": iri("5")})
	left.Join(right)
	if got, want := left.NumRows(), 6; got != want {
		t.Errorf("Join of disjoint tables returned %d rows; want %d", got, want)
	}
}

func TestJoinUnit(t *testing.T) {
	u := Unit()
	other := mustNew(t, "?a")
	other.AddRow(Row{"?a": iri("1")})
	u.Join(other)
	if got, want := u.NumRows(), 1; got != want {
		t.Errorf("Unit().Join returned %d rows; want %d", got, want)
	}
}

func TestAppendTable(t *testing.T) {
	t1 := mustNew(t, "?a")
	t1.AddRow(Row{"?a": iri("1")})
	t2 := mustNew(t, "?b")
	t2.AddRow(Row{"?b": iri("2")})
	t1.AppendTable(t2)
	if got, want := t1.NumRows(), 2; got != want {
		t.Errorf("AppendTable returned %d rows; want %d", got, want)
	}
	if !t1.HasBinding("?b") {
		t.Errorf("AppendTable should carry over ?b; got %v", t1.Bindings())
	}
}

func TestFilter(t *testing.T) {
	tbl := mustNew(t, "?a")
	tbl.AddRow(Row{"?a": iri("1")})
	tbl.AddRow(Row{"?a": iri("2")})
	err := tbl.Filter(func(r Row) (bool, error) {
		return r["?a"].String() == "<http://ex/2>", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tbl.NumRows(), 1; got != want {
		t.Errorf("Filter kept %d rows; want %d", got, want)
	}
	boom := errors.New("boom")
	if err := tbl.Filter(func(Row) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Errorf("Filter returned %v; want %v", err, boom)
	}
	if got, want := tbl.NumRows(), 1; got != want {
		t.Errorf("failed Filter changed the table to %d rows; want %d", got, want)
	}
}

func TestDedup(t *testing.T) {
	tbl := mustNew(t, "?a", "?b")
	tbl.AddRow(Row{"?a": iri("1"), "?b": iri("2")})
	tbl.AddRow(Row{"?b": iri("2"), "?a": iri("1")})
	tbl.AddRow(Row{"?a": iri("1")})
	tbl.Dedup()
	if got, want := tbl.NumRows(), 2; got != want {
		t.Errorf("Dedup kept %d rows; want %d", got, want)
	}
}

func TestSort(t *testing.T) {
	tbl := mustNew(t, "?a", "?b")
	tbl.AddRow(Row{"?a": iri("1"), "?b": iri("y")})
	tbl.AddRow(Row{"?a": iri("2"), "?b": iri("x")})
	tbl.AddRow(Row{"?a": iri("1"), "?b": iri("x")})
	tbl.Sort(SortConfig{{Binding: "?a"}, {Binding: "?b", Desc: true}})
	var got []string
	for _, r := range tbl.Rows() {
		got = append(got, r["?a"].Value()+r["?b"].Value())
	}
	want := "http://ex/1http://ex/y,http://ex/1http://ex/x,http://ex/2http://ex/x"
	if strings.Join(got, ",") != want {
		t.Errorf("Sort = %v; want %v", got, want)
	}
}

func TestRender(t *testing.T) {
	tbl := mustNew(t, "?s")
	tbl.AddRow(Row{"?s": iri("a")})
	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render failed with error %v", err)
	}
	if !strings.Contains(buf.String(), "http://ex/a") {
		t.Errorf("Render output %q does not contain the row", buf.String())
	}
}
