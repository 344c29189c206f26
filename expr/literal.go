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

package expr

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/partiql-core/pql/date"
	"github.com/partiql-core/pql/ion"
)

// Missing is the MISSING literal.
type Missing struct{}

func (Missing) text(dst *strings.Builder)  { dst.WriteString("MISSING") }
func (Missing) Equals(n Node) bool         { _, ok := n.(Missing); return ok }
func (Missing) Datum() ion.Datum           { return sexp("missing") }
func (Missing) walk(Visitor)               {}

// Null is the NULL literal, optionally annotated with a declared type
// ("null.int" in document-model text).
type Null struct {
	Of ion.Type
}

func (n Null) text(dst *strings.Builder) {
	if n.Of == ion.NullType {
		dst.WriteString("NULL")
		return
	}
	dst.WriteString("NULL.")
	dst.WriteString(n.Of.String())
}
func (n Null) Equals(o Node) bool {
	on, ok := o.(Null)
	return ok && on.Of == n.Of
}
func (n Null) Datum() ion.Datum { return sexp("null", ion.Symbol(n.Of.String())) }
func (Null) walk(Visitor)       {}

// Bool is a BOOL literal.
type Bool bool

func (b Bool) text(dst *strings.Builder) {
	if b {
		dst.WriteString("TRUE")
	} else {
		dst.WriteString("FALSE")
	}
}
func (b Bool) Equals(o Node) bool { ob, ok := o.(Bool); return ok && ob == b }
func (b Bool) Datum() ion.Datum   { return sexp("lit", ion.Bool(b)) }
func (Bool) walk(Visitor)         {}

// Int is an INT literal.
type Int int64

func (i Int) text(dst *strings.Builder) { dst.WriteString(strconv.FormatInt(int64(i), 10)) }
func (i Int) Equals(o Node) bool {
	switch ov := o.(type) {
	case Int:
		return ov == i
	case Float:
		return float64(ov) == float64(i)
	}
	return false
}
func (i Int) Datum() ion.Datum { return sexp("lit", ion.Int(i)) }
func (Int) walk(Visitor)       {}

// Float is a FLOAT literal.
type Float float64

func (f Float) text(dst *strings.Builder) {
	dst.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 64))
}
func (f Float) Equals(o Node) bool {
	switch ov := o.(type) {
	case Float:
		return ov == f
	case Int:
		return float64(ov) == float64(f)
	}
	return false
}
func (f Float) Datum() ion.Datum { return sexp("lit", ion.Float(f)) }
func (Float) walk(Visitor)       {}

// Decimal is a DECIMAL literal.
type Decimal struct {
	V *apd.Decimal
}

func (d Decimal) text(dst *strings.Builder) { dst.WriteString(d.V.String()) }
func (d Decimal) Equals(o Node) bool {
	od, ok := o.(Decimal)
	return ok && d.V.Cmp(od.V) == 0
}
func (d Decimal) Datum() ion.Datum { return sexp("lit", ion.NewDecimal(d.V)) }
func (Decimal) walk(Visitor)       {}

// Str is a STRING literal.
type Str string

func (s Str) text(dst *strings.Builder) { dst.WriteByte('\''); escapeInto(dst, string(s)); dst.WriteByte('\'') }
func (s Str) Equals(o Node) bool        { os, ok := o.(Str); return ok && os == s }
func (s Str) Datum() ion.Datum          { return sexp("lit", ion.String(s)) }
func (Str) walk(Visitor)                {}

// TimestampLit is a TIMESTAMP literal.
type TimestampLit struct {
	V date.Time
}

func (t TimestampLit) text(dst *strings.Builder) {
	dst.WriteString("TIMESTAMP '")
	dst.WriteString(t.V.String())
	dst.WriteByte('\'')
}
func (t TimestampLit) Equals(o Node) bool {
	ot, ok := o.(TimestampLit)
	return ok && t.V.Equal(ot.V)
}
func (t TimestampLit) Datum() ion.Datum { return sexp("lit", ion.NewTimestamp(t.V)) }
func (TimestampLit) walk(Visitor)       {}

// Ident is an unquoted or quoted identifier referencing a binding in
// scope (a FROM-clause variable, a SELECT alias used by a later
// clause, and so on). AtPrefix marks an "@name" reference, which
// forces resolution against the innermost scope even when an outer
// scope declares the same name.
type Ident struct {
	Name     string
	Quoted   bool
	AtPrefix bool
}

func (i Ident) text(dst *strings.Builder) {
	if i.AtPrefix {
		dst.WriteByte('@')
	}
	if i.Quoted {
		dst.WriteByte('"')
		dst.WriteString(i.Name)
		dst.WriteByte('"')
		return
	}
	dst.WriteString(i.Name)
}
func (i Ident) Equals(o Node) bool {
	oi, ok := o.(Ident)
	if !ok || oi.AtPrefix != i.AtPrefix {
		return false
	}
	if i.Quoted || oi.Quoted {
		return i.Quoted == oi.Quoted && i.Name == oi.Name
	}
	return caseFold(i.Name) == caseFold(oi.Name)
}
func (i Ident) Datum() ion.Datum {
	if i.AtPrefix {
		return sexp("@", i.Name)
	}
	return sexp("id", i.Name)
}
func (Ident) walk(Visitor) {}

func caseFold(s string) string { return strings.ToLower(s) }

func escapeInto(dst *strings.Builder, s string) {
	for _, r := range s {
		if r == '\'' {
			dst.WriteString("''")
		} else {
			dst.WriteRune(r)
		}
	}
}
