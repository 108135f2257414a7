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

// Package benchmark contains the command that runs the benchmark batteries.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/google/ldsparql/storage"
	"github.com/google/ldsparql/tools/benchmark/batteries"
	"github.com/google/ldsparql/tools/benchmark/runtime"
	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"
	"github.com/spf13/pflag"
)

// New creates the bench command.
func New(w io.Writer, chanSize int) *command.Command {
	cmd := &command.Command{
		UsageLine: "bench [<depth> <width> <reps>] [flags]",
		Short:     "runs a set of precanned benchmarks.",
		Long: `Times the compilation of generated shape tables of the given depth and
width. With --all it also runs the data batteries: bulk addition and removal
of generated tree and random graph triples, and walking generated trees with
a recursive shape. Data batteries run against the selected store.
`,
	}
	cmd.Flag, _ = newFlags(cmd.Name())
	cmd.Run = func(ctx context.Context, args []string) int {
		return Eval(ctx, cmd.UsageLine+"\n\n"+cmd.Long, args, w, chanSize)
	}
	return cmd
}

type battery struct {
	name string
	f    func(context.Context, storage.Store, batteries.Config) ([]*runtime.BenchEntry, error)
}

type flags struct {
	store common.StoreFlags
	all   bool
}

func newFlags(name string) (*pflag.FlagSet, *flags) {
	f := &flags{}
	fs := common.NewFlagSet(name)
	f.store.AddFlags(fs, false)
	fs.BoolVar(&f.all, "all", false, "also run the data batteries")
	return fs, f
}

// Eval runs the bench command.
func Eval(ctx context.Context, usage string, args []string, w io.Writer, chanSize int) int {
	fs, f := newFlags("bench")
	if err := fs.Parse(args); err != nil {
		log.Printf("[ERROR] %v\n\n%s", err, usage)
		return 2
	}
	pos := fs.Args()
	cfg := batteries.DefaultConfig()
	cfg.ChanSize = chanSize
	if len(pos) >= 5 {
		var nums [3]int
		for i, a := range pos[2:5] {
			n, err := strconv.Atoi(a)
			if err != nil || n < 0 {
				log.Printf("[ERROR] Invalid number %q.\n\n%s", a, usage)
				return 2
			}
			nums[i] = n
		}
		cfg.Depths, cfg.Widths, cfg.Reps = []int{nums[0]}, []int{nums[1]}, nums[2]
	}
	bs := []battery{{"compiling shapes", batteries.CompileBenchmark}}
	if f.all {
		bs = append(bs,
			battery{"adding unexisting triples", batteries.AddTriplesBenchmark},
			battery{"adding existing triples", batteries.AddExistingTriplesBenchmark},
			battery{"removing unexisting triples", batteries.RemoveTriplesBenchmark},
			battery{"removing existing triples", batteries.RemoveExistingTriplesBenchmark},
			battery{"walking trees", batteries.TreeWalkingBenchmark},
		)
	}
	st, release, err := f.store.Open()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		return 2
	}
	defer release()
	var out int
	for _, b := range bs {
		out += runBattery(ctx, w, st, cfg, b)
	}
	return out
}

func runBattery(ctx context.Context, w io.Writer, st storage.Store, cfg batteries.Config, b battery) int {
	fmt.Fprintf(w, "Creating %s benchmark... ", b.name)
	bes, err := b.f(ctx, st, cfg)
	if err != nil {
		common.Fail(w, "%v", err)
		return 2
	}
	fmt.Fprintf(w, "%d entries created\n", len(bes))

	fmt.Fprintf(w, "Run %s benchmark sequentially... ", b.name)
	ts := time.Now()
	brs := runtime.RunBenchmarkBatterySequentially(bes)
	fmt.Fprintf(w, "(%v) done\n", time.Since(ts))

	fmt.Fprintf(w, "Run %s benchmark concurrently... ", b.name)
	tc := time.Now()
	brc := runtime.RunBenchmarkBatteryConcurrently(bes)
	fmt.Fprintf(w, "(%v) done\n\n", time.Since(tc))

	failed := false
	format := func(br *runtime.BenchResult) string {
		if br.Err != nil {
			failed = true
			return fmt.Sprintf("%20s - %20s -[ERROR] %v", br.BatteryID, br.ID, br.Err)
		}
		if br.Triples == 0 || br.Mean == 0 {
			return fmt.Sprintf("%20s - %20s - %v/%v", br.BatteryID, br.ID, br.Mean, br.StdDev)
		}
		tps := float64(br.Triples) / (float64(br.Mean) / float64(time.Second))
		return fmt.Sprintf("%20s - %20s - %05.2f triples/sec - %v/%v", br.BatteryID, br.ID, tps, br.Mean, br.StdDev)
	}
	printStats := func(title string, brs []*runtime.BenchResult) {
		fmt.Fprintf(w, "Stats for %s run %s benchmark\n", title, b.name)
		var ss []string
		for _, br := range brs {
			ss = append(ss, format(br))
		}
		sort.Strings(ss)
		for _, s := range ss {
			fmt.Fprintln(w, s)
		}
		fmt.Fprintln(w)
	}
	printStats("sequentially", brs)
	printStats("concurrently", brc)
	if failed {
		return 2
	}
	return 0
}
