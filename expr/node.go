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

// Package expr defines the AST produced by the parser: a tagged sum of
// Go types satisfying Node. Every Node can render itself as source
// text (for diagnostics) and as a document-model s-expression (for
// the AST-as-data encoding the evaluator and conformance tests share).
package expr

import (
	"strings"

	"github.com/partiql-core/pql/ion"
)

// Printable is the textual-rendering half of Node.
type Printable interface {
	text(dst *strings.Builder)
}

// Node is a single AST node: an expression, a query, or a clause of a
// query. Every concrete node type in this package implements Node.
type Node interface {
	Printable

	// Equals reports whether this node is syntactically equivalent to
	// another, treating equal literal values as equal regardless of
	// their concrete Go type.
	Equals(Node) bool

	// Datum renders the node as the document model's own s-expression
	// shape, "(op arg ...)", per the AST-as-data convention.
	Datum() ion.Datum

	walk(Visitor)
}

// Visitor is implemented by callers of Walk.
type Visitor interface {
	Visit(Node) Visitor
}

// Walk traverses an AST in depth-first order: it calls v.Visit(n),
// and if the returned Visitor w is non-nil, recurses into n's children
// with w before calling w.Visit(nil).
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// Equal reports whether a and b are equivalent, treating two nils as equal.
func Equal(a, b Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// Text renders n as source-like text, suitable for diagnostics.
func Text(n Node) string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	n.text(&b)
	return b.String()
}

// sexp is a convenience for building an s-expression Datum from an
// operator name and a run of child nodes and/or raw Datum values.
func sexp(op string, args ...any) ion.Datum {
	items := make([]ion.Datum, 0, len(args)+1)
	items = append(items, ion.Symbol(op))
	for _, a := range args {
		switch v := a.(type) {
		case nil:
			continue
		case Node:
			items = append(items, v.Datum())
		case ion.Datum:
			items = append(items, v)
		case []Node:
			for _, n := range v {
				items = append(items, n.Datum())
			}
		case string:
			items = append(items, ion.Symbol(v))
		default:
			panic("sexp: unsupported argument type")
		}
	}
	return ion.NewSexp(items)
}
