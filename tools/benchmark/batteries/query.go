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

package batteries

import (
	"context"
	"fmt"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/sparql/planner"
	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/tools/benchmark/generator/shapes"
	"github.com/google/ldsparql/tools/benchmark/generator/tree"
	"github.com/google/ldsparql/tools/benchmark/runtime"
)

// compileEntry times compiling and optimizing the root type of the table.
func compileEntry(battery, id string, reps int, tbl *shape.Table, root string) *runtime.BenchEntry {
	return &runtime.BenchEntry{
		BatteryID: battery,
		ID:        fmt.Sprintf("%s, reps=%02d", id, reps),
		Reps:      reps,
		F: func() error {
			q, _, err := tbl.Compile(root, shape.Options{})
			if err != nil {
				return err
			}
			return q.Query().Validate()
		},
	}
}

// CompileBenchmark times the compilation of deep and wide shape tables.
func CompileBenchmark(ctx context.Context, st storage.Store, cfg Config) ([]*runtime.BenchEntry, error) {
	var bes []*runtime.BenchEntry
	for _, d := range cfg.Depths {
		for _, w := range cfg.Widths {
			tbl, err := shapes.Deep(d, w)
			if err != nil {
				return nil, err
			}
			bes = append(bes, compileEntry("Compile deep shapes", fmt.Sprintf("depth=%02d, width=%02d", d, w), cfg.Reps, tbl, shapes.DeepRoot))
		}
	}
	for _, w := range cfg.Widths {
		tbl, err := shapes.Wide(w)
		if err != nil {
			return nil, err
		}
		bes = append(bes, compileEntry("Compile wide shapes", fmt.Sprintf("width=%02d", w), cfg.Reps, tbl, shapes.WideRoot))
	}
	return bes, nil
}

// TreeWalkingBenchmark times constructing the subtree below the root of
// generated trees with the recursive Node shape unfolded to each depth.
func TreeWalkingBenchmark(ctx context.Context, st storage.Store, cfg Config) ([]*runtime.BenchEntry, error) {
	gens, err := getTreeGenerators(cfg.BranchFactors)
	if err != nil {
		return nil, err
	}
	tbl := shapes.Tree()
	var bes []*runtime.BenchEntry
	for idx, g := range gens {
		for _, s := range cfg.Sizes {
			data, err := g.Generate(s)
			if err != nil {
				return nil, err
			}
			for _, d := range cfg.Depths {
				q, root, err := tbl.Compile(shapes.TreeRoot, shape.Options{MaxDepth: d})
				if err != nil {
					return nil, err
				}
				cq := q.Query()
				var gr storage.Graph
				gID := fmt.Sprintf("?walk_b%d_s%d_d%d", cfg.BranchFactors[idx], s, d)
				bes = append(bes, &runtime.BenchEntry{
					BatteryID: "Tree walking",
					ID:        fmt.Sprintf("tg branch_factor=%04d, size=%07d, depth=%02d, reps=%02d", cfg.BranchFactors[idx], s, d, cfg.Reps),
					Triples:   len(data),
					Reps:      cfg.Reps,
					Setup: func() error {
						var err error
						if gr, err = st.NewGraph(ctx, gID); err != nil {
							return err
						}
						return gr.AddTriples(ctx, data)
					},
					F: func() error {
						_, err := planner.New([]storage.Graph{gr}, cq).
							Bind(root, tree.Root()).
							WithChannelSize(cfg.ChanSize).
							Execute(ctx)
						return err
					},
					TearDown: func() error {
						return st.DeleteGraph(ctx, gID)
					},
				})
			}
		}
	}
	return bes, nil
}
