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

package term

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
)

// ReservedPrefix is the variable name prefix owned by the fresh variable
// generator. User supplied variables cannot use it, which keeps generated
// names disjoint from any externally authored one.
const ReservedPrefix = "_ld"

// NewVariable returns a variable with the provided name. It fails if the name
// is not a valid SPARQL variable name or if it uses the reserved prefix.
func NewVariable(name string) (Var, error) {
	name = strings.TrimPrefix(name, "?")
	if err := validVarName(name); err != nil {
		return Var{}, fmt.Errorf("term.NewVariable(%q): %v", name, err)
	}
	if IsReserved(name) {
		return Var{}, fmt.Errorf("term.NewVariable(%q): prefix %q is reserved for generated variables", name, ReservedPrefix)
	}
	return Var{name: name}, nil
}

// MustNewVariable returns a variable or panics if the name is not valid.
func MustNewVariable(name string) Var {
	v, err := NewVariable(name)
	if err != nil {
		panic(err)
	}
	return v
}

// IsReserved returns true if the variable name belongs to the generated
// namespace.
func IsReserved(name string) bool {
	return strings.HasPrefix(strings.TrimPrefix(name, "?"), ReservedPrefix)
}

// IsFresh returns true if the variable was minted by a Generator.
func (v Var) IsFresh() bool {
	return IsReserved(v.name)
}

// validVarName checks the SPARQL VARNAME production restricted to letters,
// digits, and underscores.
func validVarName(name string) error {
	if name == "" {
		return fmt.Errorf("empty variable name")
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		if i > 0 && (r == '·' || unicode.Is(unicode.Mn, r)) {
			continue
		}
		return fmt.Errorf("invalid character %q at position %d", r, i)
	}
	return nil
}

// Generator mints variables that are never returned twice for the lifetime
// of the generator. It is safe for concurrent use.
type Generator struct {
	prefix string
	cnt    uint64
}

// NewGenerator returns a generator whose names live under the reserved
// prefix followed by the provided qualifier. The qualifier may only contain
// ASCII letters, so different qualifiers produce disjoint name sets.
func NewGenerator(qualifier string) *Generator {
	for _, r := range qualifier {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			panic(fmt.Sprintf("term.NewGenerator(%q): qualifiers only allow ASCII letters", qualifier))
		}
	}
	return &Generator{prefix: ReservedPrefix + qualifier}
}

// Next returns a new variable.
func (g *Generator) Next() Var {
	n := atomic.AddUint64(&g.cnt, 1)
	return Var{name: g.prefix + strconv.FormatUint(n, 10)}
}

// The process wide generator used by Fresh.
var defaultGenerator = NewGenerator("")

// Fresh returns a variable that no previous call to Fresh has returned.
func Fresh() Var {
	return defaultGenerator.Next()
}
