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

package algebra

import (
	"fmt"

	"github.com/google/ldsparql/triple/term"
)

// Lookup returns the value bound to a variable in a solution.
type Lookup func(term.Var) (term.Term, bool)

// Expression is a boolean or value expression used by filters.
type Expression interface {
	// String returns the expression in SPARQL syntax.
	String() string

	// Variables returns the variables the expression reads.
	Variables() []term.Var

	isExpression()
}

// Evaluator evaluates boolean expressions against a solution.
type Evaluator interface {
	Evaluate(l Lookup) (bool, error)
}

// VariableExpr evaluates to the value bound to the variable.
type VariableExpr struct {
	Var term.Var
}

// NamedNodeExpr evaluates to a constant named node.
type NamedNodeExpr struct {
	IRI term.IRI
}

// Equal holds when both operands evaluate to the same term.
type Equal struct {
	Left  Expression
	Right Expression
}

func (VariableExpr) isExpression()  {}
func (NamedNodeExpr) isExpression() {}
func (*Equal) isExpression()        {}

// NewEqual returns the equality of both expressions.
func NewEqual(l, r Expression) *Equal {
	return &Equal{Left: l, Right: r}
}

// VarEquals returns the expression restricting v to the named node id.
func VarEquals(v term.Var, id term.IRI) *Equal {
	return NewEqual(VariableExpr{Var: v}, NamedNodeExpr{IRI: id})
}

// String returns the variable in SPARQL syntax.
func (e VariableExpr) String() string { return e.Var.String() }

// Variables returns the variable.
func (e VariableExpr) Variables() []term.Var { return []term.Var{e.Var} }

// String returns the named node in SPARQL syntax.
func (e NamedNodeExpr) String() string { return e.IRI.String() }

// Variables returns nothing; constants read no variables.
func (NamedNodeExpr) Variables() []term.Var { return nil }

// String returns the equality in SPARQL syntax.
func (e *Equal) String() string {
	return fmt.Sprintf("%s = %s", e.Left, e.Right)
}

// Variables returns the variables of both operands.
func (e *Equal) Variables() []term.Var {
	return appendUnique(append([]term.Var{}, e.Left.Variables()...), e.Right.Variables()...)
}

// Evaluate returns true if both operands evaluate to the same term. An
// unbound variable makes the equality false, as an error would in SPARQL.
func (e *Equal) Evaluate(l Lookup) (bool, error) {
	lv, lok, err := value(e.Left, l)
	if err != nil {
		return false, err
	}
	rv, rok, err := value(e.Right, l)
	if err != nil {
		return false, err
	}
	if !lok || !rok {
		return false, nil
	}
	return lv.Kind() == rv.Kind() && lv.String() == rv.String(), nil
}

// value returns the term an operand evaluates to.
func value(e Expression, l Lookup) (term.Term, bool, error) {
	switch ex := e.(type) {
	case VariableExpr:
		t, ok := l(ex.Var)
		return t, ok && t != nil, nil
	case NamedNodeExpr:
		return ex.IRI, true, nil
	default:
		return nil, false, fmt.Errorf("algebra.Equal.Evaluate: %v is not a value expression", e)
	}
}

func appendUnique(vs []term.Var, ns ...term.Var) []term.Var {
	for _, n := range ns {
		found := false
		for _, v := range vs {
			if v == n {
				found = true
				break
			}
		}
		if !found {
			vs = append(vs, n)
		}
	}
	return vs
}
