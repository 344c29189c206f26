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

import "github.com/partiql-core/pql/ion"

// SequenceExprValue is a lazy, single-pass sequence of Values destined
// for a LIST, SEXP, or BAG container (§3.2). It satisfies ion.Datum so
// it can sit inside a Value like any other scalar or container until
// something actually needs its contents, at which point Materialize
// drains it once. Re-draining after that yields nothing further --
// this module picks "forbid re-traversal silently, by returning
// empty" over "memoize on demand" for the open question in the Design
// Notes, since the evaluator's own pull sites (projection, CAST)
// always drain exactly once.
type SequenceExprValue struct {
	target ion.Type
	pull   func() (Value, bool)
	done   bool
}

// NewSequence builds a SequenceExprValue targeting the given container
// type (ListType, SexpType, or BagType) from a pull function that
// returns ok=false once exhausted.
func NewSequence(target ion.Type, pull func() (Value, bool)) *SequenceExprValue {
	return &SequenceExprValue{target: target, pull: pull}
}

// SliceSequence builds a SequenceExprValue over an already-materialized
// slice, for callers that have no reason to stream.
func SliceSequence(target ion.Type, items []Value) *SequenceExprValue {
	i := 0
	return NewSequence(target, func() (Value, bool) {
		if i >= len(items) {
			return Value{}, false
		}
		v := items[i]
		i++
		return v, true
	})
}

// Type implements ion.Datum, reporting the target container type.
func (s *SequenceExprValue) Type() ion.Type { return s.target }

// Retarget returns a new SequenceExprValue over the same underlying
// pull function but with a different target container type, used by
// CAST(seq AS LIST|SEXP|BAG) to re-wrap without redraining.
func (s *SequenceExprValue) Retarget(target ion.Type) *SequenceExprValue {
	return &SequenceExprValue{target: target, pull: s.pull}
}

// Pull advances the sequence by one element.
func (s *SequenceExprValue) Pull() (Value, bool) {
	if s.done || s.pull == nil {
		return Value{}, false
	}
	v, ok := s.pull()
	if !ok {
		s.done = true
		return Value{}, false
	}
	return v, true
}

// Each drains s, calling fn for every element until fn returns false
// or the sequence is exhausted.
func (s *SequenceExprValue) Each(fn func(Value) bool) {
	for {
		v, ok := s.Pull()
		if !ok {
			return
		}
		if !fn(v) {
			return
		}
	}
}

// Collect drains s into a slice of document-model values, discarding
// any facets its elements carry (a LIST/SEXP/BAG's children are plain
// Datums, not Values).
func (s *SequenceExprValue) Collect() []ion.Datum {
	var out []ion.Datum
	s.Each(func(v Value) bool {
		out = append(out, v.Datum)
		return true
	})
	return out
}

// Materialize drains s into the document model's own container of its
// target type.
func (s *SequenceExprValue) Materialize() ion.Datum {
	items := s.Collect()
	switch s.target {
	case ion.ListType:
		return ion.NewList(items)
	case ion.SexpType:
		return ion.NewSexp(items)
	default:
		return ion.NewBag(items)
	}
}

// rangeOver iterates a Value the way a FROM clause does: sequence
// values (LIST/SEXP/BAG) iterate their children directly; anything
// else becomes a singleton sequence holding one Unnamed copy of
// itself, so a value that happened to carry a Named facet doesn't
// leak a synthetic binding name into the row.
func rangeOver(v Value) *SequenceExprValue {
	switch d := v.Datum.(type) {
	case ion.Sequence:
		items := d.Items()
		i := 0
		return NewSequence(d.Type(), func() (Value, bool) {
			if i >= len(items) {
				return Value{}, false
			}
			item := unnamedOf(items[i])
			i++
			return item, true
		})
	case *SequenceExprValue:
		return d
	default:
		done := false
		return NewSequence(ion.BagType, func() (Value, bool) {
			if done {
				return Value{}, false
			}
			done = true
			return v.Unnamed(), true
		})
	}
}

// unpivot iterates a STRUCT the way UNPIVOT does: one element per
// field, each carrying a Named facet holding the field's label as a
// SYMBOL. A non-struct operand produces a singleton bag whose one
// element is annotated with the synthetic name "_1".
func unpivot(v Value) *SequenceExprValue {
	st, ok := v.Datum.(ion.Struct)
	if !ok {
		done := false
		return NewSequence(ion.BagType, func() (Value, bool) {
			if done {
				return Value{}, false
			}
			done = true
			return v.Name(ion.Symbol("_1")), true
		})
	}
	fields := st.Fields()
	i := 0
	return NewSequence(ion.BagType, func() (Value, bool) {
		if i >= len(fields) {
			return Value{}, false
		}
		f := fields[i]
		i++
		return unnamedOf(f.Value).Name(ion.Symbol(f.Label)), true
	})
}
