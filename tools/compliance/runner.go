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

package compliance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/sparql/planner"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// getGraphFromStore returns the requested graph. If the graph does not exist
// it creates it.
func getGraphFromStore(ctx context.Context, st storage.Store, id string) (storage.Graph, error) {
	g, err := st.Graph(ctx, id)
	if err == nil {
		return g, nil
	}
	return st.NewGraph(ctx, id)
}

// populateSources creates all the graph required by the story and loads the
// provided facts into them.
func (s *Story) populateSources(ctx context.Context, st storage.Store) (map[string]storage.Graph, error) {
	gs := make(map[string]storage.Graph)
	for _, src := range s.Sources {
		g, err := getGraphFromStore(ctx, st, src.ID)
		if err != nil {
			return nil, err
		}
		var trps []*triple.Triple
		for _, trp := range src.Facts {
			t, err := triple.Parse(trp)
			if err != nil {
				return nil, err
			}
			trps = append(trps, t)
		}
		if err := g.AddTriples(ctx, trps); err != nil {
			return nil, err
		}
		gs[src.ID] = g
	}
	return gs, nil
}

// cleanSources removes all the graphs used by the story.
func (s *Story) cleanSources(ctx context.Context, st storage.Store) error {
	for _, src := range s.Sources {
		if err := st.DeleteGraph(ctx, src.ID); err != nil {
			return err
		}
	}
	return nil
}

// graphs returns the graphs the assertion queries.
func (a *Assertion) graphs(all map[string]storage.Graph) ([]storage.Graph, error) {
	ids := a.Graphs
	if len(ids) == 0 {
		for id := range all {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	var gs []storage.Graph
	for _, id := range ids {
		g, ok := all[id]
		if !ok {
			return nil, fmt.Errorf("unknown graph %q", id)
		}
		gs = append(gs, g)
	}
	return gs, nil
}

// runAssertion compiles and executes the assertion. It returns true if the
// constructed triples are the expected ones.
func (a *Assertion) runAssertion(ctx context.Context, tbl *shape.Table, all map[string]storage.Graph, chanSize int) (bool, []string, []string, error) {
	errorizer := func(e error) (bool, []string, []string, error) {
		if a.WillFail && e != nil {
			return true, nil, nil, nil
		}
		return false, nil, nil, e
	}

	opts := shape.Options{MaxDepth: a.MaxDepth}
	var subject term.IRI
	if a.Subject != "" {
		subject = term.NewNamedNode(a.Subject)
		opts.Subject = &subject
	}
	if a.FilterIdentifiers {
		opts.Identifiers = shape.FilterIdentifiers
	}
	q, root, err := tbl.Compile(a.Type, opts)
	if err != nil {
		return errorizer(err)
	}
	gs, err := a.graphs(all)
	if err != nil {
		return errorizer(err)
	}
	pln := planner.New(gs, q.Query()).WithChannelSize(chanSize)
	if a.Subject != "" && !a.FilterIdentifiers {
		pln.Bind(root, subject)
	}
	ts, err := pln.Execute(ctx)
	if err != nil {
		return errorizer(fmt.Errorf("planner.Execute: failed to execute assertion %q with error %v", a.Requires, err))
	}
	if a.WillFail {
		return false, nil, nil, nil
	}

	want, err := a.Expected()
	if err != nil {
		return false, nil, nil, err
	}
	var got []string
	for _, t := range ts {
		got = append(got, t.String())
	}
	sort.Strings(got)
	return strings.Join(got, "\n") == strings.Join(want, "\n"), got, want, nil
}

// AssertionOutcome contains the result of running one assertion of a given
// story.
type AssertionOutcome struct {
	Equal bool
	Got   []string
	Want  []string
}

// Run evaluates a story. Returns if the story is true or not. It will also
// return an error if something wrong happen along the way. It is worth
// mentioning that Run does not clear any data available in the provided
// storage.
func (s *Story) Run(ctx context.Context, st storage.Store, chanSize int) (map[string]*AssertionOutcome, error) {
	tbl, err := s.ShapeTable()
	if err != nil {
		return nil, err
	}
	// Populate the sources.
	gs, err := s.populateSources(ctx, st)
	if err != nil {
		return nil, err
	}
	// Run assertions.
	m := make(map[string]*AssertionOutcome)
	for _, a := range s.Assertions {
		b, got, want, err := a.runAssertion(ctx, tbl, gs, chanSize)
		if err != nil {
			return nil, err
		}
		aName := fmt.Sprintf("requires %s", strings.TrimSpace(a.Requires))
		m[aName] = &AssertionOutcome{
			Equal: b,
			Got:   got,
			Want:  want,
		}
	}
	// Clean the sources.
	if err := s.cleanSources(ctx, st); err != nil {
		return nil, err
	}
	return m, nil
}

// AssertionBattery contains the result of running a collection of stories.
type AssertionBattery struct {
	Entries []*AssertionBatteryEntry
}

// AssertionBatteryEntry contains the outcome of running a single story.
type AssertionBatteryEntry struct {
	Story   *Story
	Outcome map[string]*AssertionOutcome
	Err     error
}

// RunStories runs all the provided stories and returns the outcome of each of
// them.
func RunStories(ctx context.Context, st storage.Store, stories []*Story, chanSize int) *AssertionBattery {
	results := &AssertionBattery{}
	for _, s := range stories {
		o, err := s.Run(ctx, st, chanSize)
		results.Entries = append(results.Entries, &AssertionBatteryEntry{
			Story:   s,
			Outcome: o,
			Err:     err,
		})
	}
	return results
}
