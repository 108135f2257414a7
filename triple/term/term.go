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

// Package term provides the RDF terms used to build triples and triple
// patterns: variables, named nodes, blank nodes, and literals. All terms are
// immutable values and can be compared with ==.
package term

import (
	"strings"

	"github.com/pborman/uuid"
)

// Kind describes the kind of a term.
type Kind uint8

const (
	// Variable kind.
	Variable Kind = iota
	// NamedNode kind.
	NamedNode
	// BlankNode kind.
	BlankNode
	// Literal kind.
	Literal
)

// String returns a readable version of the Kind.
func (k Kind) String() string {
	switch k {
	case Variable:
		return "VARIABLE"
	case NamedNode:
		return "NAMED_NODE"
	case BlankNode:
		return "BLANK_NODE"
	case Literal:
		return "LITERAL"
	default:
		return "UNKNOWN"
	}
}

// Term is the box for any of the RDF terms that can appear in a triple or in
// a triple pattern.
type Term interface {
	// Kind returns the kind of the term.
	Kind() Kind

	// Value returns the raw value of the term: the variable name, the IRI, the
	// blank node label, or the literal lexical form.
	Value() string

	// String returns the N-Triples (and SPARQL) representation of the term.
	String() string
}

// Var is a query variable.
type Var struct {
	name string
}

// Kind returns Variable.
func (v Var) Kind() Kind { return Variable }

// Value returns the name of the variable without the leading '?'.
func (v Var) Value() string { return v.name }

// String returns the variable as ?name.
func (v Var) String() string { return "?" + v.name }

// IRI is a named node.
type IRI struct {
	iri string
}

// NewNamedNode returns a named node for the provided IRI. The IRI is not
// validated; passing a malformed IRI is a caller contract violation.
func NewNamedNode(iri string) IRI {
	return IRI{iri: iri}
}

// Kind returns NamedNode.
func (n IRI) Kind() Kind { return NamedNode }

// Value returns the IRI.
func (n IRI) Value() string { return n.iri }

// String returns the IRI enclosed in angle brackets.
func (n IRI) String() string { return "<" + n.iri + ">" }

// Blank is a blank node.
type Blank struct {
	label string
}

// NewBlankNode returns a blank node with the provided label.
func NewBlankNode(label string) Blank {
	return Blank{label: label}
}

// MintBlankNode returns a new blank node whose label is guaranteed to be
// unique. Used when loading data that contains anonymous resources.
func MintBlankNode() Blank {
	return Blank{label: "b" + strings.Replace(uuid.NewRandom().String(), "-", "", -1)}
}

// Kind returns BlankNode.
func (b Blank) Kind() Kind { return BlankNode }

// Value returns the blank node label.
func (b Blank) Value() string { return b.label }

// String returns the blank node as _:label.
func (b Blank) String() string { return "_:" + b.label }

// Lit is an RDF literal.
type Lit struct {
	lexical  string
	datatype string
	lang     string
}

// NewLiteral returns a literal for the lexical form and datatype IRI. An empty
// datatype defaults to xsd:string.
func NewLiteral(lexical, datatype string) Lit {
	if datatype == "" {
		datatype = XSDString
	}
	return Lit{lexical: lexical, datatype: datatype}
}

// NewLangLiteral returns a language tagged string literal.
func NewLangLiteral(lexical, lang string) Lit {
	return Lit{lexical: lexical, datatype: RDFLangString, lang: strings.ToLower(lang)}
}

// Kind returns Literal.
func (l Lit) Kind() Kind { return Literal }

// Value returns the lexical form of the literal.
func (l Lit) Value() string { return l.lexical }

// Datatype returns the datatype IRI of the literal.
func (l Lit) Datatype() IRI { return IRI{iri: l.datatype} }

// Lang returns the language tag, if any.
func (l Lit) Lang() string { return l.lang }

// String returns the N-Triples representation of the literal. Plain
// xsd:string literals are printed without the datatype.
func (l Lit) String() string {
	s := `"` + escape(l.lexical) + `"`
	switch {
	case l.lang != "":
		return s + "@" + l.lang
	case l.datatype == XSDString:
		return s
	default:
		return s + "^^<" + l.datatype + ">"
	}
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escape(s string) string {
	return escaper.Replace(s)
}

// IsNode returns true if the term can be used as the subject of a ground
// triple.
func IsNode(t Term) bool {
	if t == nil {
		return false
	}
	k := t.Kind()
	return k == NamedNode || k == BlankNode
}
