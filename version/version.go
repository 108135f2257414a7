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

// Package version contains the version of the ld tool and libraries.
package version

import "fmt"

const (
	// Major version of the ld tool.
	Major = 0
	// Minor version of the ld tool.
	Minor = 3
	// Patch version of the ld tool.
	Patch = 0
	// Release label of the ld tool.
	Release = "dev"
)

// String returns the version in major.minor.patch-release form.
func String() string {
	return fmt.Sprintf("%d.%d.%d-%s", Major, Minor, Patch, Release)
}
