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

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/tools/benchmark/runtime"
	"github.com/google/ldsparql/triple"
)

type mutation func(ctx context.Context, g storage.Graph, ts []*triple.Triple) error

func addTriples(ctx context.Context, g storage.Graph, ts []*triple.Triple) error {
	return g.AddTriples(ctx, ts)
}

func removeTriples(ctx context.Context, g storage.Graph, ts []*triple.Triple) error {
	return g.RemoveTriples(ctx, ts)
}

// mutationBenchmark times f over every data set. When preload is set the
// graph already contains the data before f runs.
func mutationBenchmark(ctx context.Context, st storage.Store, cfg Config, battery, prefix string, preload bool, f mutation) ([]*runtime.BenchEntry, error) {
	dss, err := dataSets(cfg)
	if err != nil {
		return nil, err
	}
	var bes []*runtime.BenchEntry
	for i, ds := range dss {
		var g storage.Graph
		gID := fmt.Sprintf("?%s_%s_i%d", prefix, ds.gid, i)
		data := ds.triples
		bes = append(bes, &runtime.BenchEntry{
			BatteryID: battery,
			ID:        fmt.Sprintf("%s, reps=%02d", ds.id, cfg.Reps),
			Triples:   len(data),
			Reps:      cfg.Reps,
			Setup: func() error {
				var err error
				g, err = st.NewGraph(ctx, gID)
				if err != nil || !preload {
					return err
				}
				return g.AddTriples(ctx, data)
			},
			F: func() error {
				return f(ctx, g, data)
			},
			TearDown: func() error {
				return st.DeleteGraph(ctx, gID)
			},
		})
	}
	return bes, nil
}

// AddTriplesBenchmark times adding triples to empty graphs.
func AddTriplesBenchmark(ctx context.Context, st storage.Store, cfg Config) ([]*runtime.BenchEntry, error) {
	return mutationBenchmark(ctx, st, cfg, "Add triples", "add", false, addTriples)
}

// AddExistingTriplesBenchmark times adding triples already in the graph.
func AddExistingTriplesBenchmark(ctx context.Context, st storage.Store, cfg Config) ([]*runtime.BenchEntry, error) {
	return mutationBenchmark(ctx, st, cfg, "Add existing triples", "add_existing", true, addTriples)
}

// RemoveTriplesBenchmark times removing triples from empty graphs.
func RemoveTriplesBenchmark(ctx context.Context, st storage.Store, cfg Config) ([]*runtime.BenchEntry, error) {
	return mutationBenchmark(ctx, st, cfg, "Remove non-existing triples", "remove", false, removeTriples)
}

// RemoveExistingTriplesBenchmark times removing all the triples of a graph.
func RemoveExistingTriplesBenchmark(ctx context.Context, st storage.Store, cfg Config) ([]*runtime.BenchEntry, error) {
	return mutationBenchmark(ctx, st, cfg, "Remove existing triples", "remove_existing", true, removeTriples)
}
