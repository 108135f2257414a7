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

// Package batteries contains the benchmark batteries run by the ld tool.
package batteries

import (
	"fmt"

	"github.com/google/ldsparql/tools/benchmark/generator"
	"github.com/google/ldsparql/tools/benchmark/generator/graph"
	"github.com/google/ldsparql/tools/benchmark/generator/tree"
	"github.com/google/ldsparql/triple"
)

// Config sizes the generated benchmark batteries.
type Config struct {
	// BranchFactors of the generated trees.
	BranchFactors []int
	// Nodes of the generated random graphs.
	Nodes []int
	// Sizes is the number of triples generated for each data set.
	Sizes []int
	// Depths and Widths of the generated shape tables.
	Depths []int
	Widths []int
	// Reps is the number of repetitions of each entry.
	Reps int
	// ChanSize is the buffer of the lookup channels used while querying.
	ChanSize int
}

// DefaultConfig returns the configuration used by the ld tool.
func DefaultConfig() Config {
	return Config{
		BranchFactors: []int{2, 20},
		Nodes:         []int{317, 1000},
		Sizes:         []int{10, 1000, 100000},
		Depths:        []int{1, 4, 8},
		Widths:        []int{1, 8, 32},
		Reps:          10,
		ChanSize:      128,
	}
}

// dataSet is a named collection of generated triples.
type dataSet struct {
	id      string
	gid     string
	triples []*triple.Triple
}

func getTreeGenerators(bFactors []int) ([]generator.Generator, error) {
	var gens []generator.Generator
	for _, b := range bFactors {
		t, err := tree.New(b)
		if err != nil {
			return nil, err
		}
		gens = append(gens, t)
	}
	return gens, nil
}

func getGraphGenerators(nodes []int) ([]generator.Generator, error) {
	var gens []generator.Generator
	for i, n := range nodes {
		g, err := graph.NewRandomGraph(n, int64(i))
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}

// dataSets generates a data set per generator and size. Sizes the generator
// cannot satisfy are skipped.
func dataSets(cfg Config) ([]*dataSet, error) {
	var res []*dataSet
	tgs, err := getTreeGenerators(cfg.BranchFactors)
	if err != nil {
		return nil, err
	}
	for idx, g := range tgs {
		for _, s := range cfg.Sizes {
			ts, err := g.Generate(s)
			if err != nil {
				return nil, err
			}
			res = append(res, &dataSet{
				id:      fmt.Sprintf("tg branch_factor=%04d, size=%07d", cfg.BranchFactors[idx], s),
				gid:     fmt.Sprintf("tree_b%d_s%d", cfg.BranchFactors[idx], s),
				triples: ts,
			})
		}
	}
	ggs, err := getGraphGenerators(cfg.Nodes)
	if err != nil {
		return nil, err
	}
	for idx, g := range ggs {
		for _, s := range cfg.Sizes {
			if s > cfg.Nodes[idx]*cfg.Nodes[idx] {
				continue
			}
			ts, err := g.Generate(s)
			if err != nil {
				return nil, err
			}
			res = append(res, &dataSet{
				id:      fmt.Sprintf("rg nodes=%04d, size=%07d", cfg.Nodes[idx], s),
				gid:     fmt.Sprintf("graph_n%d_s%d", cfg.Nodes[idx], s),
				triples: ts,
			})
		}
	}
	return res, nil
}
