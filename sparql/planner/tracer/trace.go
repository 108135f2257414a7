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

// Package tracer writes timestamped execution traces for the planner.
package tracer

import (
	"io"
	"strings"
	"time"
)

// Trace writes the messages returned by msgs to w, one per line, prefixed by
// the current time. msgs is only called when w is not nil.
func Trace(w io.Writer, msgs func() []string) {
	if w == nil {
		return
	}
	now := time.Now().Format("2006-01-02T15:04:05.999999-07:00")
	var b strings.Builder
	for _, msg := range msgs() {
		b.WriteString("[")
		b.WriteString(now)
		b.WriteString("] ")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	io.WriteString(w, b.String())
}
