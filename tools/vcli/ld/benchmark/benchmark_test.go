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

package benchmark

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestEval(t *testing.T) {
	var buf bytes.Buffer
	if got := Eval(context.Background(), "usage", []string{"ld", "bench", "2", "3", "1"}, &buf, 0); got != 0 {
		t.Fatalf("bench returned %d\n%s", got, buf.String())
	}
	for _, want := range []string{"Compile deep shapes", "depth=02, width=03", "Compile wide shapes"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("bench output does not contain %q\n%s", want, buf.String())
		}
	}
}

func TestEvalInvalidArguments(t *testing.T) {
	var buf bytes.Buffer
	if got := Eval(context.Background(), "usage", []string{"ld", "bench", "2", "x", "1"}, &buf, 0); got != 2 {
		t.Errorf("bench with an invalid width returned %d; want 2", got)
	}
	if got := Eval(context.Background(), "usage", []string{"ld", "bench", "--nope"}, &buf, 0); got != 2 {
		t.Errorf("bench with an unknown flag returned %d; want 2", got)
	}
}
