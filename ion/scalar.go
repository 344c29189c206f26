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

package ion

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/partiql-core/pql/date"
)

// Missing is the singleton absent-value datum. Unlike Null, it never
// compares equal to anything but itself, and is what a path expression
// produces when a step has nowhere to go (rather than an error).
var Missing Datum = missing{}

type missing struct{}

func (missing) Type() Type { return MissingType }

// Null is a typed null: the absence of a value of a particular
// declared type (Ion's null.int, null.string, and so on). Of reports
// that declared type; Type always reports NullType regardless of Of,
// since NULL is itself one of the closed type tags.
type Null struct {
	Of Type
}

func (Null) Type() Type { return NullType }

// DeclaredType reports the type this null was declared as (null.int's
// Of is IntType), or NullType itself for an untyped null.
func (n Null) DeclaredType() Type {
	if n.Of == MissingType {
		return NullType
	}
	return n.Of
}

// Bool is the BOOL scalar.
type Bool bool

func (Bool) Type() Type { return BoolType }

// Int is the INT scalar: a fixed-width signed 64-bit integer. Values
// that don't fit (e.g. from a literal or CAST) are an overflow error
// at the point of construction, not a wraparound.
type Int int64

func (Int) Type() Type { return IntType }

// Float is the FLOAT scalar, an IEEE-754 binary64 value.
type Float float64

func (Float) Type() Type { return FloatType }

// Decimal is the DECIMAL scalar: an arbitrary-precision, arbitrary-scale
// signed decimal, backed by apd so that division and rounding follow
// the same banker's/IEEE-decimal rules the document model specifies.
type Decimal struct {
	V *apd.Decimal
}

func (Decimal) Type() Type { return DecimalType }

// NewDecimal wraps an *apd.Decimal as a Decimal datum.
func NewDecimal(v *apd.Decimal) Decimal {
	return Decimal{V: v}
}

// ParseDecimal parses a decimal literal's text into a Decimal.
func ParseDecimal(text string) (Decimal, error) {
	d, _, err := apd.NewFromString(text)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{V: d}, nil
}

// Timestamp is the TIMESTAMP scalar.
type Timestamp struct {
	V date.Time
}

func (Timestamp) Type() Type { return TimestampType }

// NewTimestamp wraps a date.Time as a Timestamp datum.
func NewTimestamp(t date.Time) Timestamp {
	return Timestamp{V: t}
}

// String is the STRING scalar: a sequence of Unicode text.
type String string

func (String) Type() Type { return StringType }

// Symbol is the SYMBOL scalar: interned, case-sensitive text used for
// identifiers, struct field names rendered as data, and operator names
// in the s-expression AST encoding.
type Symbol string

func (Symbol) Type() Type { return SymbolType }

// Blob is the BLOB scalar: an uninterpreted byte sequence.
type Blob []byte

func (Blob) Type() Type { return BlobType }

// Clob is the CLOB scalar: a byte sequence that carries character-data
// semantics (e.g. for the purposes of the text grammar's clob
// literals) but, unlike String, is not assumed to be valid Unicode.
type Clob []byte

func (Clob) Type() Type { return ClobType }
