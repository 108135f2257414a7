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

package shapes

import (
	"testing"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/sparql/query"
)

func compile(t *testing.T, tbl *shape.Table, name string, opts shape.Options) *query.Query {
	t.Helper()
	q, _, err := tbl.Compile(name, opts)
	if err != nil {
		t.Fatalf("Compile(%q) failed with error %v", name, err)
	}
	return q.Query()
}

func TestDeep(t *testing.T) {
	for _, size := range []struct{ depth, width int }{{0, 1}, {3, 2}, {6, 4}} {
		tbl, err := Deep(size.depth, size.width)
		if err != nil {
			t.Fatalf("Deep(%d, %d) failed with error %v", size.depth, size.width, err)
		}
		if got, want := len(tbl.Types), size.depth+1; got != want {
			t.Errorf("Deep(%d, %d) returned %d types; want %d", size.depth, size.width, got, want)
		}
		q := compile(t, tbl, DeepRoot, shape.Options{})
		if got, want := len(q.Template), (size.depth+1)*size.width+size.depth; got != want {
			t.Errorf("Deep(%d, %d) template has %d patterns; want %d", size.depth, size.width, got, want)
		}
		if err := q.Validate(); err != nil {
			t.Errorf("Deep(%d, %d) produced an invalid query: %v", size.depth, size.width, err)
		}
	}
	if _, err := Deep(-1, 1); err == nil {
		t.Errorf("Deep(-1, 1) should fail")
	}
}

func TestWide(t *testing.T) {
	tbl, err := Wide(5)
	if err != nil {
		t.Fatalf("Wide(5) failed with error %v", err)
	}
	q := compile(t, tbl, WideRoot, shape.Options{})
	// Every variant adds its predicate and either the value field or the
	// inner hop.
	if got, want := len(q.Template), 10; got != want {
		t.Errorf("Wide(5) template has %d patterns; want %d", got, want)
	}
	if _, err := Wide(0); err == nil {
		t.Errorf("Wide(0) should fail")
	}
}

func TestTree(t *testing.T) {
	q := compile(t, Tree(), TreeRoot, shape.Options{MaxDepth: 2})
	if got, want := len(q.Template), 3; got != want {
		t.Errorf("Tree() template with depth 2 has %d patterns; want %d", got, want)
	}
}
