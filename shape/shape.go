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

// Package shape describes mapped types in a configuration table and issues
// the construct builder calls for them.
package shape

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind is the kind of a mapped type.
type Kind string

const (
	// Struct types conjoin the graphs of their fields.
	Struct Kind = "struct"
	// Enum types describe a choice between their variants.
	Enum Kind = "enum"
	// Leaf types are literals and add no graph structure.
	Leaf Kind = "leaf"
)

// builtins lists the leaf types every table knows about.
var builtins = map[string]bool{
	"string":   true,
	"int8":     true,
	"int16":    true,
	"int32":    true,
	"int64":    true,
	"uint8":    true,
	"uint16":   true,
	"uint32":   true,
	"uint64":   true,
	"datetime": true,
	"iri":      true,
	"bool":     true,
	"float64":  true,
}

// Table holds the mapped types and the prefixes used by their compact IRIs.
type Table struct {
	Prefixes map[string]string `yaml:"prefixes,omitempty"`
	Types    map[string]*Type  `yaml:"types"`

	once sync.Once
	verr error
}

// Type describes a mapped type.
type Type struct {
	Name     string     `yaml:"-"`
	Kind     Kind       `yaml:"kind,omitempty"`
	TypeIRI  string     `yaml:"type,omitempty"`
	Fields   []*Field   `yaml:"fields,omitempty"`
	Variants []*Variant `yaml:"variants,omitempty"`
}

// Field is a member of a struct type. A field is either ignored, the
// identifier of the node, flattened into its parent, or reached through a
// predicate.
type Field struct {
	Name      string `yaml:"name"`
	Predicate string `yaml:"predicate,omitempty"`
	Type      string `yaml:"type,omitempty"`
	Ignore    bool   `yaml:"ignore,omitempty"`
	Flatten   bool   `yaml:"flatten,omitempty"`
	ID        bool   `yaml:"id,omitempty"`
}

// Variant is an alternative of an enum type. When Inner is set the value is
// reached through an intermediate node: Predicate leads to it and Inner leads
// from it to the value.
type Variant struct {
	Name      string `yaml:"name"`
	Predicate string `yaml:"predicate"`
	Inner     string `yaml:"inner,omitempty"`
	Type      string `yaml:"type,omitempty"`
}

// Load decodes and validates a YAML table.
func Load(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	t := &Table{}
	if err := dec.Decode(t); err != nil {
		return nil, fmt.Errorf("shape.Load: failed to decode table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate runs Validate the first time it is called and returns its result
// from then on. Tables are read only afterwards, so compiling the same table
// from several goroutines is safe.
func (t *Table) validate() error {
	t.once.Do(func() { t.verr = t.Validate() })
	return t.verr
}

// LoadFile loads the table stored in the provided file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shape.LoadFile(%q): %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Encode writes the table as YAML.
func (t *Table) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("shape.Encode: %w", err)
	}
	return enc.Close()
}

// TypeNames returns the sorted names of the mapped types.
func (t *Table) TypeNames() []string {
	var ns []string
	for n := range t.Types {
		ns = append(ns, n)
	}
	sort.Strings(ns)
	return ns
}

// isLeaf returns true for built-in types and leaf kinds.
func (t *Table) isLeaf(name string) bool {
	if name == "" || builtins[name] {
		return true
	}
	typ, ok := t.Types[name]
	return ok && typ.Kind == Leaf
}

// Validate checks that every reference resolves, every compact IRI expands,
// and flattened fields do not form cycles. It also fills in defaults, so it
// must not run concurrently with Compile on the same table.
func (t *Table) Validate() error {
	var errs []string
	addf := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}
	checkRef := func(owner, name string) {
		if name == "" || builtins[name] {
			return
		}
		if _, ok := t.Types[name]; !ok {
			addf("%s references unknown type %q", owner, name)
		}
	}
	checkIRI := func(owner, iri string) {
		if _, err := t.Expand(iri); err != nil {
			addf("%s: %v", owner, err)
		}
	}

	for _, name := range t.TypeNames() {
		typ := t.Types[name]
		if typ == nil {
			addf("type %q is empty", name)
			continue
		}
		typ.Name = name
		if builtins[name] {
			addf("type %q shadows a built-in type", name)
		}
		if typ.Kind == "" {
			typ.Kind = Struct
			if len(typ.Variants) > 0 {
				typ.Kind = Enum
			}
		}
		switch typ.Kind {
		case Struct:
			if len(typ.Variants) > 0 {
				addf("struct %q cannot have variants", name)
			}
			if typ.TypeIRI != "" {
				checkIRI(fmt.Sprintf("struct %q", name), typ.TypeIRI)
			}
			for i, f := range typ.Fields {
				owner := fmt.Sprintf("field %s.%s", name, f.Name)
				if f.Name == "" {
					owner = fmt.Sprintf("field %s[%d]", name, i)
				}
				n := 0
				for _, b := range []bool{f.Ignore, f.ID, f.Flatten, f.Predicate != ""} {
					if b {
						n++
					}
				}
				if n != 1 {
					addf("%s must be exactly one of ignore, id, flatten, or have a predicate", owner)
					continue
				}
				if f.Predicate != "" {
					checkIRI(owner, f.Predicate)
				}
				if f.Flatten && f.Type == "" {
					addf("%s is flattened but has no type", owner)
				}
				checkRef(owner, f.Type)
			}
		case Enum:
			if len(typ.Fields) > 0 {
				addf("enum %q cannot have fields", name)
			}
			if typ.TypeIRI != "" {
				addf("enum %q cannot carry a type IRI", name)
			}
			if len(typ.Variants) == 0 {
				addf("enum %q has no variants", name)
			}
			for _, v := range typ.Variants {
				owner := fmt.Sprintf("variant %s.%s", name, v.Name)
				if v.Predicate == "" {
					addf("%s has no predicate", owner)
				} else {
					checkIRI(owner, v.Predicate)
				}
				if v.Inner != "" {
					checkIRI(owner, v.Inner)
				}
				checkRef(owner, v.Type)
			}
		case Leaf:
			if len(typ.Fields) > 0 || len(typ.Variants) > 0 || typ.TypeIRI != "" {
				addf("leaf %q cannot have fields, variants, or a type IRI", name)
			}
		default:
			addf("type %q has unknown kind %q", name, typ.Kind)
		}
	}
	if len(errs) == 0 {
		if cycle := t.flattenCycle(); cycle != nil {
			addf("flattened fields form a cycle: %s", strings.Join(cycle, " -> "))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shape.Validate: %s", strings.Join(errs, "; "))
	}
	return nil
}

// flattenCycle returns the first cycle found following flattened fields, or
// nil if there is none.
func (t *Table) flattenCycle() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	var path []string
	var visit func(string) []string
	visit = func(name string) []string {
		switch state[name] {
		case visiting:
			for i, p := range path {
				if p == name {
					return append(append([]string{}, path[i:]...), name)
				}
			}
		case done:
			return nil
		}
		typ, ok := t.Types[name]
		if !ok {
			return nil
		}
		state[name] = visiting
		path = append(path, name)
		for _, f := range typ.Fields {
			if !f.Flatten {
				continue
			}
			if c := visit(f.Type); c != nil {
				return c
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}
	for _, name := range t.TypeNames() {
		if c := visit(name); c != nil {
			return c
		}
	}
	return nil
}

// Expand returns the absolute IRI for a compact IRI, an IRI between angle
// brackets, or an absolute IRI.
func (t *Table) Expand(iri string) (string, error) {
	if strings.HasPrefix(iri, "<") && strings.HasSuffix(iri, ">") {
		return iri[1 : len(iri)-1], nil
	}
	i := strings.Index(iri, ":")
	if i < 0 {
		return "", fmt.Errorf("%q is not an IRI", iri)
	}
	prefix, local := iri[:i], iri[i+1:]
	if ns, ok := t.Prefixes[prefix]; ok {
		return ns + local, nil
	}
	if strings.HasPrefix(local, "//") || prefix == "urn" {
		return iri, nil
	}
	return "", fmt.Errorf("unknown prefix %q in %q", prefix, iri)
}
