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

// Package table contains the solution tables produced while evaluating the
// WHERE clause of a query.
package table

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/ldsparql/triple/term"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Table contains the solutions of a graph pattern. This table implementation
// is not safe for concurrency. You should take appropriate precautions if you
// want to access it concurrently.
type Table struct {
	bs   []string
	mbs  map[string]bool
	data []Row
}

// New returns a new table that can hold data for the given bindings. The
// table creation will fail if there are repeated bindings.
func New(bs []string) (*Table, error) {
	m := make(map[string]bool)
	for _, b := range bs {
		m[b] = true
	}
	if len(m) != len(bs) {
		return nil, fmt.Errorf("table.New does not allow duplicated bindings in %s", bs)
	}
	return &Table{
		bs:  append([]string{}, bs...),
		mbs: m,
	}, nil
}

// Unit returns a table with no bindings and a single empty row, the identity
// of the join.
func Unit() *Table {
	t, _ := New(nil)
	t.AddRow(Row{})
	return t
}

// Row represents a solution. Bindings missing from the map are unbound.
type Row map[string]term.Term

// Value returns the term bound to the variable.
func (r Row) Value(v term.Var) (term.Term, bool) {
	t, ok := r[v.String()]
	return t, ok
}

// ToTextLine converts a row into line of text. To do so, it requires the list
// of bindings of the table, and the separator you want to use. If the separator
// is empty tabs will be used.
func (r Row) ToTextLine(res *bytes.Buffer, bs []string, sep string) error {
	if sep == "" {
		sep = "\t"
	}
	var vs []string
	for _, b := range bs {
		v := "<NULL>"
		if c, ok := r[b]; ok {
			v = c.String()
		}
		vs = append(vs, v)
	}
	_, err := res.WriteString(strings.Join(vs, sep))
	return err
}

// AddRow adds a row to the end of a table. For performance reasons, it does
// not check that the bindings of the row are declared on the table.
func (t *Table) AddRow(r Row) {
	t.data = append(t.data, r)
}

// NumRows returns the number of rows currently available on the table.
func (t *Table) NumRows() int {
	return len(t.data)
}

// Row returns the requested row. Rows start at 0. Also, if you request a row
// beyond it will return nil, and the ok boolean will be false.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.data) {
		return nil, false
	}
	return t.data[i], true
}

// Rows returns all the available rows.
func (t *Table) Rows() []Row {
	return t.data
}

// AddBindings add the new bindings provided to the table.
func (t *Table) AddBindings(bs []string) {
	for _, b := range bs {
		if _, ok := t.mbs[b]; !ok {
			t.mbs[b] = true
			t.bs = append(t.bs, b)
		}
	}
}

// HasBinding returns true if the binding currently exist on the table.
func (t *Table) HasBinding(b string) bool {
	return t.mbs[b]
}

// Bindings returns the bindings contained on the tables.
func (t *Table) Bindings() []string {
	return t.bs
}

// ToText convert the table into a readable text versions. It requires the
// separator to be used between cells.
func (t *Table) ToText(sep string) (*bytes.Buffer, error) {
	res, row := &bytes.Buffer{}, &bytes.Buffer{}
	res.WriteString(strings.Join(t.bs, sep))
	res.WriteString("\n")
	for _, r := range t.data {
		if err := r.ToTextLine(row, t.bs, sep); err != nil {
			return nil, err
		}
		res.Write(row.Bytes())
		res.WriteString("\n")
		row.Reset()
	}
	return res, nil
}

// String attempts to force serialize the table into a string.
func (t *Table) String() string {
	b, err := t.ToText("\t")
	if err != nil {
		return fmt.Sprintf("Failed to serialize to text! Error: %s", err)
	}
	return b.String()
}

// Render writes the table as markdown.
func (t *Table) Render(w io.Writer) error {
	alignment := make([]tw.Align, len(t.bs))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	tbl := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	tbl.Header(t.bs)
	for _, r := range t.data {
		var cells []string
		for _, b := range t.bs {
			v := ""
			if c, ok := r[b]; ok {
				v = c.String()
			}
			cells = append(cells, v)
		}
		if err := tbl.Append(cells); err != nil {
			return fmt.Errorf("table.Render: %w", err)
		}
	}
	if err := tbl.Render(); err != nil {
		return fmt.Errorf("table.Render: %w", err)
	}
	return nil
}

// AppendTable appends the rows of the provided table. Bindings only present
// in one of the tables stay unbound in the rows of the other, which is how
// the union of two graph patterns behaves.
func (t *Table) AppendTable(t2 *Table) {
	t.AddBindings(t2.bs)
	t.data = append(t.data, t2.data...)
}

// MergeRows takes a list of rows and returns a new row containing all of
// them.
func MergeRows(ms []Row) Row {
	res := make(Row)
	for _, om := range ms {
		for k, v := range om {
			res[k] = v
		}
	}
	return res
}

// compatible returns true if both rows agree on the bindings they share.
func compatible(r1, r2 Row) bool {
	for k, v := range r1 {
		if v2, ok := r2[k]; ok && (v.Kind() != v2.Kind() || v.String() != v2.String()) {
			return false
		}
	}
	return true
}

// Join keeps the merge of every pair of compatible rows of both tables.
func (t *Table) Join(t2 *Table) {
	t.AddBindings(t2.bs)
	td := t.data
	t.data = nil
	for _, r1 := range td {
		for _, r2 := range t2.data {
			if compatible(r1, r2) {
				t.data = append(t.data, MergeRows([]Row{r1, r2}))
			}
		}
	}
}

// Filter drops the rows for which keep returns false. It stops at the first
// error, leaving the table untouched.
func (t *Table) Filter(keep func(Row) (bool, error)) error {
	var res []Row
	for _, r := range t.data {
		ok, err := keep(r)
		if err != nil {
			return err
		}
		if ok {
			res = append(res, r)
		}
	}
	t.data = res
	return nil
}

// SortConfig contains the sorting information. Contains the binding order
// to use while sorting as well as the direction for each of them to use.
type SortConfig []struct {
	Binding string
	Desc    bool
}

func cell(r Row, b string) string {
	if c, ok := r[b]; ok {
		return c.String()
	}
	return ""
}

func rowLess(ri, rj Row, c SortConfig) bool {
	for _, cfg := range c {
		si, sj := cell(ri, cfg.Binding), cell(rj, cfg.Binding)
		if si == sj {
			continue
		}
		if cfg.Desc {
			return si > sj
		}
		return si < sj
	}
	return false
}

// Sort sorts the table given a sort configuration.
func (t *Table) Sort(cfg SortConfig) {
	if cfg == nil {
		return
	}
	sort.SliceStable(t.data, func(i, j int) bool {
		return rowLess(t.data[i], t.data[j], cfg)
	})
}

// Dedup removes repeated rows keeping the first occurrence.
func (t *Table) Dedup() {
	seen := make(map[string]bool)
	var res []Row
	buf := &bytes.Buffer{}
	for _, r := range t.data {
		buf.Reset()
		bs := make([]string, 0, len(r))
		for k := range r {
			bs = append(bs, k)
		}
		sort.Strings(bs)
		for _, b := range bs {
			buf.WriteString(b)
			buf.WriteString("=")
			buf.WriteString(r[b].String())
			buf.WriteString("\x00")
		}
		k := buf.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		res = append(res, r)
	}
	t.data = res
}
