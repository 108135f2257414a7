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

// Package graph contains the data generator to build arbitrary graph
// benchmark data.
package graph

import (
	"fmt"
	"math/rand"

	"github.com/google/ldsparql/tools/benchmark/generator"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// Predicate links nodes of the random graph.
const Predicate = "http://ex/follow"

type randomGraph struct {
	nodes     int
	predicate term.IRI
	rnd       *rand.Rand
}

// NewRandomGraph creates a generator of random graphs with the given number
// of nodes. The same seed always produces the same graphs.
func NewRandomGraph(n int, seed int64) (generator.Generator, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid number of nodes %d<1", n)
	}
	return &randomGraph{
		nodes:     n,
		predicate: term.NewNamedNode(Predicate),
		rnd:       rand.New(rand.NewSource(seed)),
	}, nil
}

func (r *randomGraph) newNode(i int) term.IRI {
	return term.NewNamedNode(fmt.Sprintf("urn:gn:%d", i))
}

// Generate returns n distinct edges picked at random among all the possible
// ones.
func (r *randomGraph) Generate(n int) ([]*triple.Triple, error) {
	maxEdges := r.nodes * r.nodes
	if n > maxEdges {
		return nil, fmt.Errorf("current configuration only allow a max of %d triples (%d requested)", maxEdges, n)
	}
	var trpls []*triple.Triple
	for _, idx := range r.rnd.Perm(maxEdges)[:n] {
		i, j := idx/r.nodes, idx%r.nodes
		t, err := triple.New(r.newNode(i), r.predicate, r.newNode(j))
		if err != nil {
			return nil, err
		}
		trpls = append(trpls, t)
	}
	return trpls, nil
}
