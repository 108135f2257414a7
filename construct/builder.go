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

package construct

import (
	"github.com/google/ldsparql/triple/term"
)

// Builder produces the query describing the node bound to a variable. Every
// mapped type provides one.
type Builder interface {
	Build(binding term.Var) ConstructQuery
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(binding term.Var) ConstructQuery

// Build calls f.
func (f BuilderFunc) Build(binding term.Var) ConstructQuery {
	return f(binding)
}

// Leaf is the builder of values that are literals themselves and add no
// further graph structure.
var Leaf Builder = BuilderFunc(func(term.Var) ConstructQuery { return Empty() })

// Root mints a fresh binding for the root node and returns the query b builds
// for it along with the binding.
func Root(b Builder) (ConstructQuery, term.Var) {
	root := term.Fresh()
	return b.Build(root), root
}

// ToQuery returns the query b builds for a fresh root binding.
func ToQuery(b Builder) ConstructQuery {
	q, _ := Root(b)
	return q
}

// WithPredicate returns a Func that links its subject to a fresh intermediate
// node through p and continues with next from that node. It describes a two
// hop path and can be passed wherever a Func is expected.
func WithPredicate(p term.IRI, next Func) Func {
	return func(s term.Var) ConstructQuery {
		return NewWithBinding(s, p, next)
	}
}
