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

// Package badger provides a persistent implementation of the storage.Store
// and storage.Graph interfaces on top of BadgerDB.
//
// Every triple is written under three index keys (spo, pos, and osp) so any
// lookup with one or two bound positions is a prefix scan. Key components
// are base64 encoded terms, which keeps the separators unambiguous.
package badger

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

const sep = "\x00"

// Index names.
const (
	spo = "spo"
	pos = "pos"
	osp = "osp"
	reg = "graph"
)

// Store is a BadgerDB backed store. It must be closed once no longer used.
type Store struct {
	db *badgerdb.DB
}

// New opens the store at the provided directory. An empty path opens a
// volatile in memory database.
func New(path string) (*Store, error) {
	opts := badgerdb.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger.New(%q): %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the ID of the backend being used.
func (s *Store) Name(ctx context.Context) string {
	return "BADGER_STORE"
}

// Version returns the version of the driver implementation.
func (s *Store) Version(ctx context.Context) string {
	return "0.1.ld"
}

func regKey(id string) []byte {
	return []byte(reg + sep + id)
}

// NewGraph creates a new graph.
func (s *Store) NewGraph(ctx context.Context, id string) (storage.Graph, error) {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if _, err := txn.Get(regKey(id)); err == nil {
			return fmt.Errorf("badger.NewGraph(%q): graph already exists", id)
		} else if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}
		return txn.Set(regKey(id), nil)
	})
	if err != nil {
		return nil, err
	}
	return &graph{id: id, db: s.db}, nil
}

// Graph returns an existing graph if available.
func (s *Store) Graph(ctx context.Context, id string) (storage.Graph, error) {
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(regKey(id))
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, fmt.Errorf("badger.Graph(%q): graph does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("badger.Graph(%q): %w", id, err)
	}
	return &graph{id: id, db: s.db}, nil
}

// DeleteGraph deletes an existing graph and all its triples.
func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	if _, err := s.Graph(ctx, id); err != nil {
		return fmt.Errorf("badger.DeleteGraph(%q): graph does not exist", id)
	}
	keys := [][]byte{regKey(id)}
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for _, idx := range []string{spo, pos, osp} {
			prefix := []byte(idx + sep + id + sep)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger.DeleteGraph(%q): %w", id, err)
	}
	wb := s.db.NewWriteBatch()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			wb.Cancel()
			return fmt.Errorf("badger.DeleteGraph(%q): %w", id, err)
		}
	}
	return wb.Flush()
}

// GraphNames pushes the sorted names of the available graphs.
func (s *Store) GraphNames(ctx context.Context, names chan<- string) error {
	defer close(names)
	prefix := []byte(reg + sep)
	return s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n := string(bytes.TrimPrefix(it.Item().KeyCopy(nil), prefix))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case names <- n:
			}
		}
		return nil
	})
}

// graph is a view over the keys of one graph.
type graph struct {
	id string
	db *badgerdb.DB
}

// ID returns the id for this graph.
func (g *graph) ID(ctx context.Context) string {
	return g.id
}

func enc(t term.Term) string {
	return base64.RawURLEncoding.EncodeToString([]byte(t.String()))
}

// prefix returns the key prefix for the index followed by the provided
// terms.
func (g *graph) prefix(idx string, ts ...term.Term) []byte {
	var b bytes.Buffer
	b.WriteString(idx + sep + g.id + sep)
	for _, t := range ts {
		b.WriteString(enc(t) + sep)
	}
	return b.Bytes()
}

func (g *graph) keys(t *triple.Triple) [][]byte {
	return [][]byte{
		g.prefix(spo, t.S(), t.P(), t.O()),
		g.prefix(pos, t.P(), t.O(), t.S()),
		g.prefix(osp, t.O(), t.S(), t.P()),
	}
}

// AddTriples adds the triples to the storage.
func (g *graph) AddTriples(ctx context.Context, ts []*triple.Triple) error {
	wb := g.db.NewWriteBatch()
	for _, t := range ts {
		v := []byte(t.String())
		for _, k := range g.keys(t) {
			if err := wb.Set(k, v); err != nil {
				wb.Cancel()
				return fmt.Errorf("badger.AddTriples: %w", err)
			}
		}
	}
	return wb.Flush()
}

// RemoveTriples removes the triples from the storage.
func (g *graph) RemoveTriples(ctx context.Context, ts []*triple.Triple) error {
	wb := g.db.NewWriteBatch()
	for _, t := range ts {
		for _, k := range g.keys(t) {
			if err := wb.Delete(k); err != nil {
				wb.Cancel()
				return fmt.Errorf("badger.RemoveTriples: %w", err)
			}
		}
	}
	return wb.Flush()
}

// scan pushes every triple stored under the prefix, honoring the lookup
// options.
func (g *graph) scan(ctx context.Context, prefix []byte, lo *storage.LookupOptions, push func(*triple.Triple) bool) error {
	if lo == nil {
		lo = storage.DefaultLookup
	}
	return g.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()
		n := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if lo.MaxElements > 0 && n >= lo.MaxElements {
				return nil
			}
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			t, err := triple.Parse(string(v))
			if err != nil {
				return fmt.Errorf("badger: corrupted triple %q: %w", v, err)
			}
			if !push(t) {
				return ctx.Err()
			}
			n++
		}
		return nil
	})
}

func (g *graph) triples(ctx context.Context, prefix []byte, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	defer close(trpls)
	return g.scan(ctx, prefix, lo, func(t *triple.Triple) bool {
		select {
		case <-ctx.Done():
			return false
		case trpls <- t:
			return true
		}
	})
}

func (g *graph) terms(ctx context.Context, prefix []byte, lo *storage.LookupOptions, pick func(*triple.Triple) term.Term, terms chan<- term.Term) error {
	defer close(terms)
	return g.scan(ctx, prefix, lo, func(t *triple.Triple) bool {
		select {
		case <-ctx.Done():
			return false
		case terms <- pick(t):
			return true
		}
	})
}

// Objects pushes the objects for the given subject and predicate.
func (g *graph) Objects(ctx context.Context, s term.Term, p term.IRI, lo *storage.LookupOptions, objs chan<- term.Term) error {
	return g.terms(ctx, g.prefix(spo, s, p), lo, (*triple.Triple).O, objs)
}

// Subjects pushes the subjects for the given predicate and object.
func (g *graph) Subjects(ctx context.Context, p term.IRI, o term.Term, lo *storage.LookupOptions, subs chan<- term.Term) error {
	return g.terms(ctx, g.prefix(pos, p, o), lo, (*triple.Triple).S, subs)
}

// TriplesForSubject pushes all triples available for a given subject.
func (g *graph) TriplesForSubject(ctx context.Context, s term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return g.triples(ctx, g.prefix(spo, s), lo, trpls)
}

// TriplesForPredicate pushes all triples available for a given predicate.
func (g *graph) TriplesForPredicate(ctx context.Context, p term.IRI, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return g.triples(ctx, g.prefix(pos, p), lo, trpls)
}

// TriplesForObject pushes all triples available for a given object.
func (g *graph) TriplesForObject(ctx context.Context, o term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return g.triples(ctx, g.prefix(osp, o), lo, trpls)
}

// TriplesForSubjectAndPredicate pushes all triples available for the given
// subject and predicate.
func (g *graph) TriplesForSubjectAndPredicate(ctx context.Context, s term.Term, p term.IRI, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return g.triples(ctx, g.prefix(spo, s, p), lo, trpls)
}

// TriplesForPredicateAndObject pushes all triples available for the given
// predicate and object.
func (g *graph) TriplesForPredicateAndObject(ctx context.Context, p term.IRI, o term.Term, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return g.triples(ctx, g.prefix(pos, p, o), lo, trpls)
}

// Exist checks if the provided triple exist on the store.
func (g *graph) Exist(ctx context.Context, t *triple.Triple) (bool, error) {
	err := g.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(g.prefix(spo, t.S(), t.P(), t.O()))
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("badger.Exist(%v): %w", t, err)
	}
	return true, nil
}

// Triples pushes all available triples.
func (g *graph) Triples(ctx context.Context, lo *storage.LookupOptions, trpls chan<- *triple.Triple) error {
	return g.triples(ctx, g.prefix(spo), lo, trpls)
}
