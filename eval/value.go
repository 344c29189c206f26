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

// Package eval is the tree-walking evaluator: the runtime value model
// with its facet extensions, the lazy sequence type, the environment
// stack, and the walker that executes an expr.Node AST against a root
// environment to produce a document-model result.
package eval

import "github.com/partiql-core/pql/ion"

// Value is a runtime value: a document-model Datum plus whatever
// optional facets the evaluator has attached to it along the way.
// Facets are carried as plain fields rather than as a capability
// interface hierarchy -- wrapping one (Name, WithBindNames) always
// copies the Value and only ever adds a facet, never drops one that
// was already set, and Unnamed is the one place a facet is masked
// rather than added.
type Value struct {
	Datum ion.Datum

	name      *ion.Datum
	bindNames []string
}

// Of wraps a bare Datum as a facet-less Value.
func Of(d ion.Datum) Value { return Value{Datum: d} }

// Type reports the wrapped Datum's type, a convenience so callers
// don't have to unwrap Datum first.
func (v Value) Type() ion.Type { return v.Datum.Type() }

// Name returns a copy of v with its Named facet set to name, keeping
// any OrderedBindNames facet v already carries.
func (v Value) Name(name ion.Datum) Value {
	v.name = &name
	return v
}

// Unnamed returns a copy of v with its Named facet masked. Unlike
// Name, this is the one facet operation that removes rather than
// adds, matching the document model's "unnamed" wrapper of §3.1.
func (v Value) Unnamed() Value {
	v.name = nil
	return v
}

// NamedValue reports v's one-shot Named facet, if any.
func (v Value) NamedValue() (ion.Datum, bool) {
	if v.name == nil {
		return nil, false
	}
	return *v.name, true
}

// WithBindNames returns a copy of v with its OrderedBindNames facet
// set to names, keeping any Named facet v already carries.
func (v Value) WithBindNames(names []string) Value {
	v.bindNames = names
	return v
}

// BindNames reports v's ordered bind names, if it carries that facet.
func (v Value) BindNames() ([]string, bool) {
	if v.bindNames == nil {
		return nil, false
	}
	return v.bindNames, true
}

// unnamedOf wraps d as a Value with no Named facet -- used for the
// elements rangeOver pulls out of a sequence, for path-step results,
// and for UNPIVOT and CAST results, per §4.3's "unnamed copy" rule.
func unnamedOf(d ion.Datum) Value {
	return Value{Datum: d}
}
