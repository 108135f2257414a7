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

// Package compliance provides the tools to validate the shape compiler and the
// query evaluation against stories made of shapes, facts, and the triples a
// query must construct.
package compliance

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/triple"
)

// Graph contains the graph binding name and the list of parseable triples
// that define it.
type Graph struct {
	// ID of the binding name to use for the graph.
	ID string

	// Facts contains the N-Triples which define the graph.
	Facts []string
}

// Assertion contains a shape to compile, the subject it is executed for, and
// the triples the resulting CONSTRUCT query must return.
type Assertion struct {
	// Requires contains a short description of what the assertion checks.
	Requires string

	// Type is the name of the shape type to compile.
	Type string

	// Subject is the IRI of the root node. If empty the query runs for every
	// candidate subject.
	Subject string

	// FilterIdentifiers pins the root with a FILTER instead of binding it
	// before evaluation.
	FilterIdentifiers bool

	// MaxDepth bounds the unfolding of recursive shapes. Zero uses the
	// default.
	MaxDepth int

	// Graphs lists the source graphs to query. Empty means all of them.
	Graphs []string

	// WillFail indicates if compiling or executing should fail with an error.
	WillFail bool

	// MustReturn contains the N-Triples the query must construct, in any
	// order.
	MustReturn []string
}

// Story contains the available shapes, graph sources, and the assertions to
// run against them.
type Story struct {
	// Name of the story.
	Name string

	// Shapes contains the YAML shape table used by the assertions.
	Shapes string

	// Sources contains the list of graphs used in the story.
	Sources []*Graph

	// Assertions that need to be validated against the provided sources.
	Assertions []*Assertion
}

// Marshal serializes the story into a JSON readable string.
func (s *Story) Marshal() (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Unmarshal rebuilds a story from a JSON readable string.
func (s *Story) Unmarshal(ss string) error {
	if err := json.Unmarshal([]byte(ss), s); err != nil {
		return err
	}
	return nil
}

// ShapeTable decodes and validates the story shapes.
func (s *Story) ShapeTable() (*shape.Table, error) {
	t, err := shape.Load(strings.NewReader(s.Shapes))
	if err != nil {
		return nil, fmt.Errorf("story %q: %w", s.Name, err)
	}
	return t, nil
}

// Expected returns the sorted N-Triples lines the assertion must produce.
func (a *Assertion) Expected() ([]string, error) {
	var res []string
	seen := make(map[string]bool)
	for _, l := range a.MustReturn {
		t, err := triple.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("assertion %q: %w", a.Requires, err)
		}
		if k := t.String(); !seen[k] {
			seen[k] = true
			res = append(res, k)
		}
	}
	sort.Strings(res)
	return res, nil
}
