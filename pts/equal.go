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

// Package pts implements PTS equality (§4.5): a strict, never-coercing
// equivalence relation used as the conformance harness's oracle,
// distinct from the evaluator's own coercing SQL "=" in eval.Eval.
package pts

import "github.com/partiql-core/pql/ion"

// Equal reports whether a and b are PTS-equal. Unlike eval's SQL "=",
// this never coerces across the numeric ladder, treats MISSING and
// NULL as ordinary (if special-cased) values rather than propagating
// UNKNOWN, and is total over every document-model type except
// DATAGRAM, which this module's closed ion.Type set has no tag for in
// the first place -- so the §4.5 "DATAGRAM: rejected" clause has
// nothing to reject and is satisfied vacuously.
func Equal(a, b ion.Datum) bool {
	ta, tb := a.Type(), b.Type()
	if ta != tb {
		return false
	}
	switch av := a.(type) {
	case ion.Null:
		return av.DeclaredType() == b.(ion.Null).DeclaredType()
	case ion.Bool:
		return av == b.(ion.Bool)
	case ion.Int:
		return av == b.(ion.Int)
	case ion.Float:
		return av == b.(ion.Float)
	case ion.Decimal:
		return ion.EqualDecimal(av, b.(ion.Decimal))
	case ion.Timestamp:
		return ion.CompareTimestamp(av, b.(ion.Timestamp)) == 0
	case ion.String:
		return av == b.(ion.String)
	case ion.Symbol:
		return av == b.(ion.Symbol)
	case ion.Blob:
		return string(av) == string(b.(ion.Blob))
	case ion.Clob:
		return string(av) == string(b.(ion.Clob))
	case ion.List:
		return sequenceEqual(av.Items(), b.(ion.List).Items())
	case ion.Sexp:
		return sexpEqual(av, b.(ion.Sexp))
	case ion.Bag:
		return bagEqual(av.Items(), b.(ion.Bag).Items())
	case ion.Struct:
		return structEqual(av, b.(ion.Struct))
	}
	// MissingType reaches here: both sides already share a.Type(),
	// and MISSING is a singleton, so they're equal.
	return ta == ion.MissingType
}

// sequenceEqual implements LIST/SEXP's positional structural equality.
func sequenceEqual(a, b []ion.Datum) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sexpEqual special-cases a SEXP headed by the symbol "bag" with more
// than one element as a BAG encoded in s-expression form, per §4.5 --
// the AST-as-data convention's own way of spelling an unordered
// multiset literal in the conformance fixture text form.
func sexpEqual(a, b ion.Sexp) bool {
	if isBagForm(a) && isBagForm(b) {
		return bagEqual(a.Args(), b.Args())
	}
	return sequenceEqual(a.Items(), b.Items())
}

func isBagForm(s ion.Sexp) bool {
	return s.Op() == "bag" && s.Len() > 1
}

// bagEqual implements BAG's multiplicity-counted equality: equal iff
// same size and, for every element of a, some not-yet-matched element
// of b is PTS-equal to it (so permutations and repeated elements both
// compare correctly, per the §8.4 bag scenarios).
func bagEqual(a, b []ion.Datum) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, va := range a {
		matched := false
		for i, vb := range b {
			if used[i] {
				continue
			}
			if Equal(va, vb) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// structEqual implements STRUCT's same-size, name-keyed recursive
// equality: field order never matters, but duplicate labels are
// compared as a multiset (matching ion.Struct's own documented
// equality contract).
func structEqual(a, b ion.Struct) bool {
	if a.Len() != b.Len() {
		return false
	}
	bFields := b.Fields()
	used := make([]bool, len(bFields))
	for _, fa := range a.Fields() {
		matched := false
		for i, fb := range bFields {
			if used[i] || fb.Label != fa.Label {
				continue
			}
			if Equal(fa.Value, fb.Value) {
				used[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
