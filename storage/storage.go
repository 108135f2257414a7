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

// Package storage provides the abstraction to build drivers that hold the
// graphs queries are evaluated against.
package storage

import (
	"context"
	"fmt"

	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
	"github.com/pborman/uuid"
)

// LookupOptions allows to specify the behavior of the lookup operations.
type LookupOptions struct {
	// MaxElements list the maximum number of elements to return. If not
	// set it returns all the lookup results.
	MaxElements int
}

// DefaultLookup provides the default lookup behavior.
var DefaultLookup = &LookupOptions{}

// UUID returns a stable identifier for the lookup options.
func (l *LookupOptions) UUID() uuid.UUID {
	return uuid.NewSHA1(uuid.NIL, []byte(fmt.Sprintf("max=%d", l.MaxElements)))
}

// Store interface describes the low level API that allows to create new
// graphs.
type Store interface {
	// Name returns the ID of the backend being used.
	Name(ctx context.Context) string

	// Version returns the version of the driver implementation.
	Version(ctx context.Context) string

	// NewGraph creates a new graph. Creating an already existing graph
	// should return an error.
	NewGraph(ctx context.Context, id string) (Graph, error)

	// Graph returns an existing graph if available. Getting a non existing
	// graph should return an error.
	Graph(ctx context.Context, id string) (Graph, error)

	// DeleteGraph deletes an existing graph. Deleting a non existing graph
	// should return an error.
	DeleteGraph(ctx context.Context, id string) error

	// GraphNames pushes to the provided channel the names of the available
	// graphs and closes it when done.
	GraphNames(ctx context.Context, names chan<- string) error
}

// Graph interface describes the low level API that storage drivers need
// to implement to provide a compliant graph storage.
//
// Lookup methods push their results to the provided channel and close it
// once done. They block until all results are delivered or the context is
// done, so callers are expected to detach them into a goroutine.
type Graph interface {
	// ID returns the id for this graph.
	ID(ctx context.Context) string

	// AddTriples adds the triples to the storage. Adding a triple that already
	// exist should not fail.
	AddTriples(ctx context.Context, ts []*triple.Triple) error

	// RemoveTriples removes the triples from the storage. Removing triples that
	// are not present on the store should not fail.
	RemoveTriples(ctx context.Context, ts []*triple.Triple) error

	// Objects pushes the objects of the triples with the given subject and
	// predicate. If the lookup options provide a max number of elements the
	// function will return a sample of the available objects. There is no
	// requirement on how to sample the returned max elements.
	Objects(ctx context.Context, s term.Term, p term.IRI, lo *LookupOptions, objs chan<- term.Term) error

	// Subjects pushes the subjects of the triples with the given predicate and
	// object. Same sampling considerations as Objects apply.
	Subjects(ctx context.Context, p term.IRI, o term.Term, lo *LookupOptions, subs chan<- term.Term) error

	// TriplesForSubject pushes all triples available for a given subject.
	TriplesForSubject(ctx context.Context, s term.Term, lo *LookupOptions, trpls chan<- *triple.Triple) error

	// TriplesForPredicate pushes all triples available for a given predicate.
	TriplesForPredicate(ctx context.Context, p term.IRI, lo *LookupOptions, trpls chan<- *triple.Triple) error

	// TriplesForObject pushes all triples available for a given object.
	TriplesForObject(ctx context.Context, o term.Term, lo *LookupOptions, trpls chan<- *triple.Triple) error

	// TriplesForSubjectAndPredicate pushes all triples available for the given
	// subject and predicate.
	TriplesForSubjectAndPredicate(ctx context.Context, s term.Term, p term.IRI, lo *LookupOptions, trpls chan<- *triple.Triple) error

	// TriplesForPredicateAndObject pushes all triples available for the given
	// predicate and object.
	TriplesForPredicateAndObject(ctx context.Context, p term.IRI, o term.Term, lo *LookupOptions, trpls chan<- *triple.Triple) error

	// Exist checks if the provided triple exist on the store.
	Exist(ctx context.Context, t *triple.Triple) (bool, error)

	// Triples pushes all available triples.
	Triples(ctx context.Context, lo *LookupOptions, trpls chan<- *triple.Triple) error
}

// Key returns the identifier drivers index a term by. Terms of different
// kinds never share a key.
func Key(t term.Term) string {
	return t.String()
}
