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

// Package memory provides a volatile memory-based implementation of the
// storage.Store and storage.Graph interfaces.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// DefaultStore provides a volatile in memory store.
var DefaultStore storage.Store

func init() {
	DefaultStore = NewStore()
}

type memoryStore struct {
	graphs map[string]storage.Graph
	rwmu   sync.RWMutex
}

// NewStore creates a new memory store.
func NewStore() storage.Store {
	return &memoryStore{
		graphs: make(map[string]storage.Graph),
	}
}

// Name returns the ID of the backend being used.
func (s *memoryStore) Name(ctx context.Context) string {
	return "MEMORY_STORE"
}

// Version returns the version of the driver implementation.
func (s *memoryStore) Version(ctx context.Context) string {
	return "0.2.ld"
}

// NewGraph creates a new graph.
func (s *memoryStore) NewGraph(ctx context.Context, id string) (storage.Graph, error) {
	g := &memory{
		id:    id,
		idx:   make(map[string]*triple.Triple),
		idxS:  make(map[string]map[string]*triple.Triple),
		idxP:  make(map[string]map[string]*triple.Triple),
		idxO:  make(map[string]map[string]*triple.Triple),
		idxSP: make(map[string]map[string]*triple.Triple),
		idxPO: make(map[string]map[string]*triple.Triple),
	}

	s.rwmu.Lock()
	defer s.rwmu.Unlock()
	if _, ok := s.graphs[id]; ok {
		return nil, fmt.Errorf("memory.NewGraph(%q): graph already exists", id)
	}
	s.graphs[id] = g
	return g, nil
}

// Graph returns an existing graph if available. Getting a non existing
// graph should return an error.
func (s *memoryStore) Graph(ctx context.Context, id string) (storage.Graph, error) {
	s.rwmu.RLock()
	defer s.rwmu.RUnlock()
	if g, ok := s.graphs[id]; ok {
		return g, nil
	}
	return nil, fmt.Errorf("memory.Graph(%q): graph does not exist", id)
}

// DeleteGraph deletes an existing graph. Deleting a non existing graph
// should return an error.
func (s *memoryStore) DeleteGraph(ctx context.Context, id string) error {
	s.rwmu.Lock()
	defer s.rwmu.Unlock()
	if _, ok := s.graphs[id]; ok {
		delete(s.graphs, id)
		return nil
	}
	return fmt.Errorf("memory.DeleteGraph(%q): graph does not exist", id)
}

// GraphNames pushes the sorted names of the available graphs.
func (s *memoryStore) GraphNames(ctx context.Context, names chan<- string) error {
	defer close(names)
	s.rwmu.RLock()
	var ns []string
	for n := range s.graphs {
		ns = append(ns, n)
	}
	s.rwmu.RUnlock()
	sort.Strings(ns)
	for _, n := range ns {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case names <- n:
		}
	}
	return nil
}

// memory provides an in memory volatile implementation of the storage API.
type memory struct {
	id    string
	rwmu  sync.RWMutex
	idx   map[string]*triple.Triple
	idxS  map[string]map[string]*triple.Triple
	idxP  map[string]map[string]*triple.Triple
	idxO  map[string]map[string]*triple.Triple
	idxSP map[string]map[string]*triple.Triple
	idxPO map[string]map[string]*triple.Triple
}

// ID returns the id for this graph.
func (m *memory) ID(ctx context.Context) string {
	return m.id
}

func pairKey(a, b string) string {
	return a + " " + b
}

func add(idx map[string]map[string]*triple.Triple, key, guid string, t *triple.Triple) {
	if _, ok := idx[key]; !ok {
		idx[key] = make(map[string]*triple.Triple)
	}
	idx[key][guid] = t
}

func remove(idx map[string]map[string]*triple.Triple, key, guid string) {
	delete(idx[key], guid)
	if len(idx[key]) == 0 {
		delete(idx, key)
	}
}

// AddTriples adds the triples to the storage.
func (m *memory) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	m.rwmu.Lock()
	defer m.rwmu.Unlock()
	for _, t := range ts {
		guid := t.GUID()
		sKey, pKey, oKey := storage.Key(t.S()), storage.Key(t.P()), storage.Key(t.O())
		m.idx[guid] = t
		add(m.idxS, sKey, guid, t)
		add(m.idxP, pKey, guid, t)
		add(m.idxO, oKey, guid, t)
		add(m.idxSP, pairKey(sKey, pKey), guid, t)
		add(m.idxPO, pairKey(pKey, oKey), guid, t)
	}
	return nil
}

// RemoveTriples removes the triples from the storage.
func (m *memory) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	m.rwmu.Lock()
	defer m.rwmu.Unlock()
	for _, t := range ts {
		guid := t.GUID()
		sKey, pKey, oKey := storage.Key(t.S()), storage.Key(t.P()), storage.Key(t.O())
		delete(m.idx, guid)
		remove(m.idxS, sKey, guid)
		remove(m.idxP, pKey, guid)
		remove(m.idxO, oKey, guid)
		remove(m.idxSP, pairKey(sKey, pKey), guid)
		remove(m.idxPO, pairKey(pKey, oKey), guid)
	}
	return nil
}

// checker provides the mechanics to check if a triple should be considered
// on a certain operation.
type checker struct {
	max bool
	c   int
}

// newChecker creates a new checker for a given LookupOptions configuration.
func newChecker(o *storage.LookupOptions) *checker {
	if o == nil {
		o = storage.DefaultLookup
	}
	return &checker{
		max: o.MaxElements > 0,
		c:   o.MaxElements,
	}
}

// CheckAndUpdate checks if one more element should be returned and updates
// the internal counts.
func (c *checker) CheckAndUpdate() bool {
	if c.max {
		if c.c <= 0 {
			return false
		}
		c.c--
	}
	return true
}

// snapshot copies the triples of an index entry so they can be pushed without
// holding the lock.
func (m *memory) snapshot(idx map[string]map[string]*triple.Triple, key string, lo *storage.LookupOptions) []*triple.Triple {
	m.rwmu.RLock()
	defer m.rwmu.RUnlock()
	var src map[string]*triple.Triple
	if idx == nil {
		src = m.idx
	} else {
		src = idx[key]
	}
	ckr := newChecker(lo)
	res := make([]*triple.Triple, 0, len(src))
	for _, t := range src {
		if !ckr.CheckAndUpdate() {
			break
		}
		res = append(res, t)
	}
	return res
}

func push(ctx context.Context, ts []*triple.Triple, trpls chan<- *triple.Triple) error {
	defer close(trpls)
	for _, t := range ts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case trpls <- t:
		}
	}
	return nil
}

func pushTerms(ctx context.Context, ts []*triple.Triple, pick func(*triple.Triple) term.Term, terms chan<- term.Term) error {
	defer close(terms)
	for _, t := range ts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case terms <- pick(t):
		}
	}
	return nil
}

// Objects pushes the objects for the given subject and predicate.
func (m *memory) Objects(ctx context.Context, s term.Term, p term.IRI, lo *storage.LookupOptions, objs chan<- term.Term) error {
	ts := m.snapshot(m.idxSP, pairKey(storage.Key(s), storage.Key(p)), lo)
	return pushTerms(ctx, ts, (*triple.Triple).O, objs)
}

// Subjects pushes the subjects for the given predicate and object.
func (m *memory) Subjects(ctx context.Context, p term.IRI, o term.Term, lo *storage.LookupOptions, subs chan<- term.Term) error {
	ts := m.snapshot(m.idxPO, pairKey(storage.Key(p), storage.Key(o)), lo)
	return pushTerms(ctx, ts, (*triple.Triple).S, subs)
}

// TriplesForSubject pushes all triples available for a given subject.
func (m *memory) TriplesForSubject(ctx context.Context, s term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return push(ctx, m.snapshot(m.idxS, storage.Key(s), lo), trpls)
}

// TriplesForPredicate pushes all triples available for a given predicate.
func (m *memory) TriplesForPredicate(ctx context.Context, p term.IRI, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return push(ctx, m.snapshot(m.idxP, storage.Key(p), lo), trpls)
}

// TriplesForObject pushes all triples available for a given object.
func (m *memory) TriplesForObject(ctx context.Context, o term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return push(ctx, m.snapshot(m.idxO, storage.Key(o), lo), trpls)
}

// TriplesForSubjectAndPredicate pushes all triples available for the given
// subject and predicate.
func (m *memory) TriplesForSubjectAndPredicate(ctx context.Context, s term.Term, p term.IRI, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return push(ctx, m.snapshot(m.idxSP, pairKey(storage.Key(s), storage.Key(p)), lo), trpls)
}

// TriplesForPredicateAndObject pushes all triples available for the given
// predicate and object.
func (m *memory) TriplesForPredicateAndObject(ctx context.Context, p term.IRI, o term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return push(ctx, m.snapshot(m.idxPO, pairKey(storage.Key(p), storage.Key(o)), lo), trpls)
}

// Exist checks if the provided triple exist on the store.
func (m *memory) Exist(ctx context.Context, t *triple.Triple) (bool, error) {
	guid := t.GUID()
	m.rwmu.RLock()
	_, ok := m.idx[guid]
	m.rwmu.RUnlock()
	return ok, nil
}

// Triples pushes all available triples.
func (m *memory) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return push(ctx, m.snapshot(nil, "", lo), trpls)
}
