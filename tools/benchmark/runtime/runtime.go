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

// Package runtime contains common utilities use to meter time for benchmarks.
package runtime

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// timeNow is replaced by a fake clock in tests.
var timeNow = time.Now

// TrackDuration measures the time spent running the provided function.
func TrackDuration(f func() error) (time.Duration, error) {
	ts := timeNow()
	err := f()
	return timeNow().Sub(ts), err
}

// RepetitionDurationStats runs f reps times and returns the mean and the
// standard deviation of the measured durations. setup and tearDown run before
// and after each repetition and are not measured.
func RepetitionDurationStats(reps int, setup, f, tearDown func() error) (time.Duration, time.Duration, error) {
	if reps < 1 {
		return 0, 0, fmt.Errorf("repetions need to be %d >= 1", reps)
	}
	var ds []float64
	for i := 0; i < reps; i++ {
		if err := setup(); err != nil {
			return 0, 0, err
		}
		d, err := TrackDuration(f)
		if err != nil {
			return 0, 0, err
		}
		ds = append(ds, float64(d))
		if err := tearDown(); err != nil {
			return 0, 0, err
		}
	}
	mean := 0.0
	for _, d := range ds {
		mean += d
	}
	mean /= float64(len(ds))
	variance := 0.0
	for _, d := range ds {
		variance += (d - mean) * (d - mean)
	}
	variance /= float64(len(ds))
	return time.Duration(mean), time.Duration(math.Sqrt(variance)), nil
}

// BenchEntry contains a benchmark to run.
type BenchEntry struct {
	BatteryID string
	ID        string
	// Triples is the number of triples the benchmark processes per run. It is
	// zero for benchmarks that do not touch data.
	Triples  int
	Reps     int
	Setup    func() error
	F        func() error
	TearDown func() error
}

// BenchResult contains the outcome of running a benchmark entry.
type BenchResult struct {
	BatteryID string
	ID        string
	Triples   int
	Err       error
	Mean      time.Duration
	StdDev    time.Duration
}

func nop() error { return nil }

func runEntry(be *BenchEntry) *BenchResult {
	setup, tearDown := be.Setup, be.TearDown
	if setup == nil {
		setup = nop
	}
	if tearDown == nil {
		tearDown = nop
	}
	m, d, err := RepetitionDurationStats(be.Reps, setup, be.F, tearDown)
	return &BenchResult{
		BatteryID: be.BatteryID,
		ID:        be.ID,
		Triples:   be.Triples,
		Err:       err,
		Mean:      m,
		StdDev:    d,
	}
}

// RunBenchmarkBatterySequentially runs the entries one after the other.
func RunBenchmarkBatterySequentially(entries []*BenchEntry) []*BenchResult {
	var res []*BenchResult
	for _, be := range entries {
		res = append(res, runEntry(be))
	}
	return res
}

// RunBenchmarkBatteryConcurrently runs all the entries at once. Results keep
// the order of the entries.
func RunBenchmarkBatteryConcurrently(entries []*BenchEntry) []*BenchResult {
	res := make([]*BenchResult, len(entries))
	var wg sync.WaitGroup
	for i, be := range entries {
		wg.Add(1)
		go func(i int, be *BenchEntry) {
			defer wg.Done()
			res[i] = runEntry(be)
		}(i, be)
	}
	wg.Wait()
	return res
}
