// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package eval

import (
	"strings"

	"github.com/partiql-core/pql/ion"
)

// binding is one name/value pair of a Scope, kept in insertion order
// so that "SELECT *" over a scope can reproduce its source column
// order (§5's ordering guarantee).
type binding struct {
	name   string
	quoted bool
	value  Value
}

// Scope is one level of binding environment: a FROM source's row
// variable and positional alias, a LET-like projection alias, or the
// root environment passed in to a compiled query.
type Scope struct {
	bindings []binding
}

// NewScope builds an empty Scope.
func NewScope() *Scope { return &Scope{} }

// Bind adds or replaces a binding. quoted controls whether later
// lookups must match name's case exactly (quoted identifiers) or
// fold case (bare identifiers), mirroring expr.Ident's own rule.
func (s *Scope) Bind(name string, quoted bool, v Value) *Scope {
	for i, b := range s.bindings {
		if sameIdent(b.name, b.quoted, name, quoted) {
			s.bindings[i].value = v
			return s
		}
	}
	s.bindings = append(s.bindings, binding{name: name, quoted: quoted, value: v})
	return s
}

func sameIdent(a string, aQuoted bool, b string, bQuoted bool) bool {
	if aQuoted || bQuoted {
		return aQuoted == bQuoted && a == b
	}
	return strings.EqualFold(a, b)
}

// lookup finds a binding by name within this scope alone.
func (s *Scope) lookup(name string, quoted bool) (Value, bool) {
	for _, b := range s.bindings {
		if sameIdent(b.name, b.quoted, name, quoted) {
			return b.value, true
		}
	}
	return Value{}, false
}

// Names reports this scope's bound names in insertion order.
func (s *Scope) Names() []string {
	names := make([]string, len(s.bindings))
	for i, b := range s.bindings {
		names[i] = b.name
	}
	return names
}

// Struct renders this scope's bindings as a STRUCT, the shape
// "SELECT *" produces for each row.
func (s *Scope) Struct() ion.Datum {
	fields := make([]ion.Field, len(s.bindings))
	for i, b := range s.bindings {
		fields[i] = ion.Field{Label: b.name, Value: b.value.Datum}
	}
	return ion.NewStruct(fields)
}

// Env is the evaluator's binding environment: a stack of scopes,
// innermost (most recently pushed) last. Resolution is lexical by
// default -- the innermost scope that declares a name wins -- except
// that a positional ("@name") reference forces lookup against the
// innermost scope alone, even when an outer scope declares the same
// name (§4.3).
type Env struct {
	scopes []*Scope
}

// NewEnv builds an Env with root as its outermost (and, so far, only)
// scope.
func NewEnv(root *Scope) *Env {
	return &Env{scopes: []*Scope{root}}
}

// Push returns a new Env with s as its innermost scope; e itself is
// left unchanged, so pushes can be chained at call sites that build up
// nested FROM/JOIN scopes.
func (e *Env) Push(s *Scope) *Env {
	child := &Env{scopes: append(append([]*Scope{}, e.scopes...), s)}
	return child
}

// Top returns the innermost scope.
func (e *Env) Top() *Scope {
	return e.scopes[len(e.scopes)-1]
}

// Resolve looks up name, honoring the @ prefix per §4.3: atPrefix
// limits the search to the innermost scope; otherwise every scope
// from innermost to outermost is tried in turn.
func (e *Env) Resolve(name string, quoted, atPrefix bool) (Value, bool) {
	if len(e.scopes) == 0 {
		return Value{}, false
	}
	if atPrefix {
		return e.Top().lookup(name, quoted)
	}
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].lookup(name, quoted); ok {
			return v, true
		}
	}
	return Value{}, false
}
