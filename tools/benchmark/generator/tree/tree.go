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

// Package tree generates trees of parent_of relations.
package tree

import (
	"fmt"

	"github.com/google/ldsparql/tools/benchmark/generator"
	"github.com/google/ldsparql/triple"
	"github.com/google/ldsparql/triple/term"
)

// Predicate links every node to its children.
const Predicate = "http://ex/parent_of"

type treeGenerator struct {
	branch    int
	predicate term.IRI
}

// New creates a new tree generator with the provided branching factor.
func New(branch int) (generator.Generator, error) {
	if branch < 1 {
		return nil, fmt.Errorf("invalid branch factor %d", branch)
	}
	return &treeGenerator{
		branch:    branch,
		predicate: term.NewNamedNode(Predicate),
	}, nil
}

// Root returns the root node of all generated trees.
func Root() term.IRI {
	return newNode("0")
}

func newNode(path string) term.IRI {
	return term.NewNamedNode("urn:tn:" + path)
}

// Generate creates n parent_of triples filling the tree breadth first. Nodes
// are named after the path from the root.
func (t *treeGenerator) Generate(n int) ([]*triple.Triple, error) {
	var trpls []*triple.Triple
	queue := []string{"0"}
	for len(trpls) < n {
		parent := queue[0]
		queue = queue[1:]
		for i := 0; i < t.branch && len(trpls) < n; i++ {
			child := fmt.Sprintf("%s/%d", parent, i)
			trpl, err := triple.New(newNode(parent), t.predicate, newNode(child))
			if err != nil {
				return nil, err
			}
			trpls = append(trpls, trpl)
			queue = append(queue, child)
		}
	}
	return trpls, nil
}
