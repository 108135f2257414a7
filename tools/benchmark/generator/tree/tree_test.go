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

package tree

import (
	"reflect"
	"testing"

	"github.com/google/ldsparql/tools/testutil"
)

func TestNew(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Errorf("New(0) should fail with an invalid branch factor")
	}
}

func TestGenerate(t *testing.T) {
	tg2, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	tg5, err := New(5)
	if err != nil {
		t.Fatal(err)
	}
	testData := []struct {
		g    *treeGenerator
		n    int
		want []string
	}{
		{
			g:    tg2.(*treeGenerator),
			n:    0,
			want: nil,
		},
		{
			g: tg5.(*treeGenerator),
			n: 3,
			want: []string{
				"<urn:tn:0> <http://ex/parent_of> <urn:tn:0/0> .",
				"<urn:tn:0> <http://ex/parent_of> <urn:tn:0/1> .",
				"<urn:tn:0> <http://ex/parent_of> <urn:tn:0/2> .",
			},
		},
	}
	for _, td := range testData {
		ts, err := td.g.Generate(td.n)
		if err != nil {
			t.Fatal(err)
		}
		if got := len(ts); got != td.n {
			t.Errorf("Generate(%d) returned %d triples", td.n, got)
		}
		var got []string
		if len(ts) > 0 {
			got = testutil.Sorted(ts)
		}
		if !reflect.DeepEqual(got, td.want) {
			t.Errorf("Generate(%d) = %v; want %v", td.n, got, td.want)
		}
	}
}

func TestGenerateBreadthFirst(t *testing.T) {
	tg, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	ts, err := tg.Generate(4)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"<urn:tn:0> <http://ex/parent_of> <urn:tn:0/0> .",
		"<urn:tn:0> <http://ex/parent_of> <urn:tn:0/1> .",
		"<urn:tn:0/0> <http://ex/parent_of> <urn:tn:0/0/0> .",
		"<urn:tn:0/0> <http://ex/parent_of> <urn:tn:0/0/1> .",
	}
	for i, trpl := range ts {
		if got := trpl.String(); got != want[i] {
			t.Errorf("Generate(4)[%d] = %q; want %q", i, got, want[i])
		}
	}
	if got := Root().String(); got != "<urn:tn:0>" {
		t.Errorf("Root() = %s; want <urn:tn:0>", got)
	}
}
