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

// Package shapes generates shape tables of configurable depth and width.
package shapes

import (
	"fmt"

	"github.com/google/ldsparql/shape"
	"github.com/google/ldsparql/tools/benchmark/generator/tree"
)

func table() *shape.Table {
	return &shape.Table{
		Prefixes: map[string]string{"ex": "http://ex/"},
		Types:    make(map[string]*shape.Type),
	}
}

// DeepRoot is the root type of the tables returned by Deep.
const DeepRoot = "T0"

// Deep returns a table of nested structs. T0 holds width string fields and a
// next field leading to T1, down to T<depth> which only holds string fields.
func Deep(depth, width int) (*shape.Table, error) {
	if depth < 0 || width < 0 {
		return nil, fmt.Errorf("shapes.Deep(%d, %d): negative size", depth, width)
	}
	t := table()
	for i := 0; i <= depth; i++ {
		typ := &shape.Type{Kind: shape.Struct}
		for j := 0; j < width; j++ {
			typ.Fields = append(typ.Fields, &shape.Field{
				Name:      fmt.Sprintf("f%d", j),
				Predicate: fmt.Sprintf("ex:t%d_f%d", i, j),
				Type:      "string",
			})
		}
		if i < depth {
			typ.Fields = append(typ.Fields, &shape.Field{
				Name:      "next",
				Predicate: "ex:next",
				Type:      fmt.Sprintf("T%d", i+1),
			})
		}
		t.Types[fmt.Sprintf("T%d", i)] = typ
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// WideRoot is the root type of the tables returned by Wide.
const WideRoot = "Wide"

// Wide returns a table with an enum of width variants. Odd variants are
// chained through an intermediate node.
func Wide(width int) (*shape.Table, error) {
	if width < 1 {
		return nil, fmt.Errorf("shapes.Wide(%d): at least one variant is required", width)
	}
	t := table()
	wide := &shape.Type{Kind: shape.Enum}
	for j := 0; j < width; j++ {
		v := &shape.Variant{
			Name:      fmt.Sprintf("V%d", j),
			Predicate: fmt.Sprintf("ex:v%d", j),
			Type:      "Value",
		}
		if j%2 == 1 {
			v.Inner = "ex:inner"
			v.Type = "string"
		}
		wide.Variants = append(wide.Variants, v)
	}
	t.Types[WideRoot] = wide
	t.Types["Value"] = &shape.Type{
		Kind:   shape.Struct,
		Fields: []*shape.Field{{Name: "value", Predicate: "ex:value", Type: "string"}},
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// TreeRoot is the root type of the table returned by Tree.
const TreeRoot = "Node"

// Tree returns the recursive table describing the data produced by the tree
// generator.
func Tree() *shape.Table {
	t := table()
	t.Types[TreeRoot] = &shape.Type{
		Kind: shape.Struct,
		Fields: []*shape.Field{
			{Name: "children", Predicate: "<" + tree.Predicate + ">", Type: TreeRoot},
		},
	}
	if err := t.Validate(); err != nil {
		panic(fmt.Sprintf("shapes.Tree: %v", err))
	}
	return t
}
