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

// Package ion is the thin adapter over the embedding self-describing
// document model (typed scalars, symbols, strings, blobs/clobs,
// decimals, timestamps, lists, s-expressions, structs, and the
// unordered multiset "bag"). It provides the closed type set,
// constructors, and iteration that the lexer, parser, and evaluator
// build on, plus a simple text form (Render and ParseText); the binary
// wire form of that data model is not implemented.
package ion

// Type is the closed set of document-model type tags. Every Datum
// reports exactly one of these from Type().
type Type int

const (
	MissingType Type = iota
	NullType
	BoolType
	IntType
	FloatType
	DecimalType
	TimestampType
	SymbolType
	StringType
	ClobType
	BlobType
	ListType
	SexpType
	BagType
	StructType
)

var typeNames = [...]string{
	MissingType:   "missing",
	NullType:      "null",
	BoolType:      "bool",
	IntType:       "int",
	FloatType:     "float",
	DecimalType:   "decimal",
	TimestampType: "timestamp",
	SymbolType:    "symbol",
	StringType:    "string",
	ClobType:      "clob",
	BlobType:      "blob",
	ListType:      "list",
	SexpType:      "sexp",
	BagType:       "bag",
	StructType:    "struct",
}

func (t Type) String() string {
	if int(t) < 0 || int(t) >= len(typeNames) {
		return "invalid"
	}
	return typeNames[t]
}

// IsNumeric reports whether t is one of the scalar numeric types.
func (t Type) IsNumeric() bool {
	return t == IntType || t == FloatType || t == DecimalType
}

// IsSequence reports whether t is one of the ordered/unordered
// container types (not STRUCT, which is keyed rather than positional).
func (t Type) IsSequence() bool {
	return t == ListType || t == SexpType || t == BagType
}

// Datum is a single value in the document model. Concrete
// implementations are the scalar types in scalar.go, the sequence
// types in sequence.go, and Struct in struct.go.
type Datum interface {
	Type() Type
}
