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

package command

import (
	"context"
	"testing"
)

func TestName(t *testing.T) {
	table := []struct {
		usage string
		want  string
	}{
		{"run <shapes.yaml> <type>", "run"},
		{"version", "version"},
		{"", ""},
	}
	for _, entry := range table {
		c := &Command{UsageLine: entry.usage}
		if got := c.Name(); got != entry.want {
			t.Errorf("Command{UsageLine: %q}.Name() = %q; want %q", entry.usage, got, entry.want)
		}
	}
}

func TestRunnable(t *testing.T) {
	if (&Command{}).Runnable() {
		t.Errorf("a command without Run should not be runnable")
	}
	c := &Command{Run: func(context.Context, []string) int { return 0 }}
	if !c.Runnable() {
		t.Errorf("a command with Run should be runnable")
	}
}
