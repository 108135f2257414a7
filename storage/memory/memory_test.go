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

package memory

import (
	"context"
	"testing"

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/tools/testutil"
	"github.com/google/ldsparql/triple"
)

func TestMemoryStore(t *testing.T) {
	testutil.StoreSuite(t, NewStore())
}

func TestDefaultStore(t *testing.T) {
	ctx := context.Background()
	if got, want := DefaultStore.Name(ctx), "MEMORY_STORE"; got != want {
		t.Errorf("DefaultStore.Name() = %q, want %q", got, want)
	}
}

func TestGraphNamesAreSorted(t *testing.T) {
	gs, ctx := []string{"?foo", "?bar", "?test"}, context.Background()
	s := NewStore()
	for _, g := range gs {
		if _, err := s.NewGraph(ctx, g); err != nil {
			t.Errorf("memoryStore.NewGraph: should never fail to create a graph %s; %s", g, err)
		}
	}
	// To avoid blocking on the test. On a real usage of the driver you would like
	// to call the graph operation on a separated goroutine.
	gns := make(chan string, len(gs))
	if err := s.GraphNames(ctx, gns); err != nil {
		t.Errorf("memoryStore.GraphNames: failed with error %v", err)
	}
	var got []string
	for g := range gns {
		got = append(got, g)
	}
	want := []string{"?bar", "?foo", "?test"}
	if len(got) != len(want) {
		t.Fatalf("memoryStore.GraphNames: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("memoryStore.GraphNames: got %v, want %v", got, want)
		}
	}
}

func TestDefaultLookupChecker(t *testing.T) {
	c := newChecker(storage.DefaultLookup)
	for i := 0; i < 10; i++ {
		if !c.CheckAndUpdate() {
			t.Errorf("the default lookup should never be exhausted")
		}
	}
}

func TestLimitedItemsLookupChecker(t *testing.T) {
	blu := &storage.LookupOptions{MaxElements: 1}
	c := newChecker(blu)
	if !c.CheckAndUpdate() {
		t.Errorf("The first element should always succeed on bounded lookup %v", blu)
	}
	for i := 0; i < 10; i++ {
		if c.CheckAndUpdate() {
			t.Errorf("Bounded lookup %v should never succeed after being exhausted", blu)
		}
	}
}

func TestCancelledLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, err := NewStore().NewGraph(ctx, "?g")
	if err != nil {
		t.Fatal(err)
	}
	ts := testutil.MustParseTriples(t,
		`<urn:a> <urn:p> <urn:b> .`,
		`<urn:a> <urn:p> <urn:c> .`,
	)
	if err := g.AddTriples(ctx, ts); err != nil {
		t.Fatal(err)
	}
	cancel()
	// Nobody reads from the channel, so the lookup can only return because
	// of the cancellation.
	c := make(chan *triple.Triple)
	if err := g.Triples(ctx, storage.DefaultLookup, c); err == nil {
		t.Errorf("Triples should fail once the context is cancelled")
	}
	if _, ok := <-c; ok {
		t.Errorf("Triples should close the channel")
	}
}
