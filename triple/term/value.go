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
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// statementPrefix completes the statement Parse reads a single term from.
const statementPrefix = "<urn:ld:s> <urn:ld:p> "

// Parse returns the term represented by the provided N-Triples token. It
// accepts <iri>, _:label, ?variable, and quoted literals with optional
// language tag or datatype.
func Parse(s string) (Term, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "?") || strings.HasPrefix(s, "$") {
		return NewVariable(s[1:])
	}
	q, err := nquads.Parse(statementPrefix + s + " .")
	if err != nil {
		return nil, fmt.Errorf("term.Parse(%q): %v", s, err)
	}
	if q.Label != nil {
		return nil, fmt.Errorf("term.Parse(%q): unexpected trailing text", s)
	}
	return FromValue(q.Object)
}

// FromValue returns the term for a value decoded by the quad package. Values
// the decoder converted to native types are returned with the matching XSD
// datatype and their canonical lexical form.
func FromValue(v quad.Value) (Term, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("term.FromValue: missing value")
	case quad.IRI:
		return NewNamedNode(string(v)), nil
	case quad.BNode:
		return NewBlankNode(string(v)), nil
	case quad.String:
		return NewLiteral(string(v), XSDString), nil
	case quad.LangString:
		return NewLangLiteral(string(v.Value), v.Lang), nil
	case quad.TypedString:
		return NewLiteral(string(v.Value), string(v.Type.Full())), nil
	case quad.Int:
		return NewLiteral(strconv.FormatInt(int64(v), 10), XSDInteger), nil
	case quad.Float:
		return NewLiteral(strconv.FormatFloat(float64(v), 'g', -1, 64), XSDDouble), nil
	case quad.Bool:
		return NewLiteral(strconv.FormatBool(bool(v)), XSDBoolean), nil
	case quad.Time:
		return NewLiteral(time.Time(v).Format(time.RFC3339Nano), XSDDateTime), nil
	default:
		return nil, fmt.Errorf("term.FromValue: unsupported value %v of type %T", v, v)
	}
}

// ToValue returns the quad value for the term. Variables have no value and
// return nil.
func ToValue(t Term) quad.Value {
	switch t := t.(type) {
	case IRI:
		return quad.IRI(t.iri)
	case Blank:
		return quad.BNode(t.label)
	case Lit:
		switch {
		case t.lang != "":
			return quad.LangString{Value: quad.String(t.lexical), Lang: t.lang}
		case t.datatype == XSDString:
			return quad.String(t.lexical)
		default:
			return quad.TypedString{Value: quad.String(t.lexical), Type: quad.IRI(t.datatype)}
		}
	}
	return nil
}
