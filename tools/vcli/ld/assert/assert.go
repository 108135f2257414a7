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

// Package assert contains the command that runs compliance stories.
package assert

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/ldsparql/storage/memory"
	"github.com/google/ldsparql/tools/compliance"
	"github.com/google/ldsparql/tools/vcli/ld/command"
	"github.com/google/ldsparql/tools/vcli/ld/common"
)

// New creates the assert command.
func New(w io.Writer, chanSize int) *command.Command {
	cmd := &command.Command{
		UsageLine: "assert <folder_path>",
		Short:     "asserts all the stories in the indicated folder.",
		Long: `Asserts all the stories in the folder. Each story is stored in a JSON
file containing the shapes, all the sources, and all the assertions to run.
`,
	}
	cmd.Run = func(ctx context.Context, args []string) int {
		return Eval(ctx, cmd.UsageLine+"\n\n"+cmd.Long, args, w, chanSize)
	}
	return cmd
}

// Eval runs the assert command. It returns 1 if any assertion does not hold.
func Eval(ctx context.Context, usage string, args []string, w io.Writer, chanSize int) int {
	if len(args) < 3 {
		log.Printf("[ERROR] Missing required folder path.\n\n%s", usage)
		return 2
	}
	folder := strings.TrimSpace(args[len(args)-1])
	paths, err := filepath.Glob(filepath.Join(folder, "*.json"))
	if err != nil {
		log.Printf("[ERROR] Failed to read folder %s\n\n\t%v\n\n", folder, err)
		return 2
	}
	sort.Strings(paths)
	fmt.Fprintln(w, "-------------------------------------------------------------")
	fmt.Fprintf(w, "Processing folder %q...\n", folder)
	var stories []*compliance.Story
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			log.Printf("[ERROR] Failed to read file %q with error %v", p, err)
			return 2
		}
		s := &compliance.Story{}
		if err := s.Unmarshal(string(b)); err != nil {
			log.Printf("[ERROR] Failed to unmarshal story %q with error %v", p, err)
			return 2
		}
		stories = append(stories, s)
		fmt.Fprintf(w, "\tProcessed file %q\n", filepath.Base(p))
	}
	if len(stories) == 0 {
		common.Warn(w, "No stories found!")
		return 2
	}
	fmt.Fprintln(w, "-------------------------------------------------------------")
	fmt.Fprintf(w, "Evaluating %d stories...\n", len(stories))
	results := compliance.RunStories(ctx, memory.NewStore(), stories, chanSize)
	failed := false
	for i, entry := range results.Entries {
		fmt.Fprintf(w, "(%d/%d) Story %q...\n", i+1, len(stories), entry.Story.Name)
		if entry.Err != nil {
			common.Fail(w, "Failed to run story %q with error %v", entry.Story.Name, entry.Err)
			failed = true
			continue
		}
		var aids []string
		for aid := range entry.Outcome {
			aids = append(aids, aid)
		}
		sort.Strings(aids)
		for _, aid := range aids {
			o := entry.Outcome[aid]
			if o.Equal {
				common.OK(w, "%s", aid)
				continue
			}
			failed = true
			common.Fail(w, "%s\n\nGot:\n\n%s\n\nWant:\n\n%s\n", aid, strings.Join(o.Got, "\n"), strings.Join(o.Want, "\n"))
		}
	}
	fmt.Fprintln(w, "-------------------------------------------------------------")
	if failed {
		return 1
	}
	return 0
}
