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

package runtime

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock only moves forward when advanced.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func useFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	c := &fakeClock{now: time.Unix(0, 0)}
	old := timeNow
	timeNow = c.Now
	t.Cleanup(func() { timeNow = old })
	return c
}

func TestTrackDuration(t *testing.T) {
	clk := useFakeClock(t)
	d, err := TrackDuration(func() error {
		clk.advance(3 * time.Second)
		return nil
	})
	if err != nil || d != 3*time.Second {
		t.Errorf("TrackDuration = %v, %v; want %v, nil", d, err, 3*time.Second)
	}
	boom := errors.New("boom")
	if _, err := TrackDuration(func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("TrackDuration returned error %v; want %v", err, boom)
	}
}

func TestRepetitionDurationStats(t *testing.T) {
	table := []struct {
		runs     []time.Duration
		mean, sd time.Duration
	}{
		{[]time.Duration{time.Second, 3 * time.Second}, 2 * time.Second, time.Second},
		{[]time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, 2 * time.Second, 0},
		{[]time.Duration{time.Second, time.Second, 4 * time.Second, 4 * time.Second}, 2500 * time.Millisecond, 1500 * time.Millisecond},
	}
	for _, entry := range table {
		clk := useFakeClock(t)
		var setups, tearDowns, i int
		setup := func() error {
			setups++
			clk.advance(time.Minute)
			return nil
		}
		f := func() error {
			clk.advance(entry.runs[i])
			i++
			return nil
		}
		tearDown := func() error {
			tearDowns++
			clk.advance(time.Hour)
			return nil
		}
		mean, sd, err := RepetitionDurationStats(len(entry.runs), setup, f, tearDown)
		if err != nil {
			t.Fatalf("RepetitionDurationStats(%v) failed with error %v", entry.runs, err)
		}
		if mean != entry.mean || sd != entry.sd {
			t.Errorf("RepetitionDurationStats(%v) = %v, %v; want %v, %v", entry.runs, mean, sd, entry.mean, entry.sd)
		}
		if got, want := setups, len(entry.runs); got != want {
			t.Errorf("setup ran %d times; want %d", got, want)
		}
		if got, want := tearDowns, len(entry.runs); got != want {
			t.Errorf("tear down ran %d times; want %d", got, want)
		}
	}
}

func TestRepetitionDurationStatsErrors(t *testing.T) {
	boom := errors.New("boom")
	nop := func() error { return nil }
	fail := func() error { return boom }
	table := []struct {
		name               string
		reps               int
		setup, f, tearDown func() error
	}{
		{"no repetitions", 0, nop, nop, nop},
		{"setup", 3, fail, nop, nop},
		{"run", 3, nop, fail, nop},
		{"tear down", 3, nop, nop, fail},
	}
	for _, entry := range table {
		if _, _, err := RepetitionDurationStats(entry.reps, entry.setup, entry.f, entry.tearDown); err == nil {
			t.Errorf("RepetitionDurationStats with a failing %s should have failed", entry.name)
		}
	}
}

func TestRunBenchmarkBattery(t *testing.T) {
	clk := useFakeClock(t)
	var mu sync.Mutex
	tearDowns := make(map[string]int)
	var entries []*BenchEntry
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("entry_%d", i)
		entries = append(entries, &BenchEntry{
			BatteryID: "battery",
			ID:        id,
			Triples:   i,
			Reps:      2,
			F: func() error {
				clk.advance(time.Millisecond)
				return nil
			},
			TearDown: func() error {
				mu.Lock()
				defer mu.Unlock()
				tearDowns[id]++
				return nil
			},
		})
	}
	for name, run := range map[string]func([]*BenchEntry) []*BenchResult{
		"sequentially": RunBenchmarkBatterySequentially,
		"concurrently": RunBenchmarkBatteryConcurrently,
	} {
		res := run(entries)
		if got, want := len(res), len(entries); got != want {
			t.Fatalf("running %s returned %d results; want %d", name, got, want)
		}
		for i, br := range res {
			if br.Err != nil || br.ID != entries[i].ID || br.Triples != entries[i].Triples {
				t.Errorf("running %s returned %+v for entry %q", name, br, entries[i].ID)
			}
		}
	}
	for _, be := range entries {
		if got, want := tearDowns[be.ID], 4; got != want {
			t.Errorf("entry %q was torn down %d times; want %d", be.ID, got, want)
		}
	}
}

func TestRunEntryPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	br := runEntry(&BenchEntry{ID: "fails", Reps: 2, F: func() error { return boom }})
	if !errors.Is(br.Err, boom) {
		t.Errorf("runEntry returned %v; want %v", br.Err, boom)
	}
}
