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

// Field is one label/value pair of a Struct.
type Field struct {
	Label string
	Value Datum
}

// Struct is the STRUCT container: an ordered list of labeled fields.
// Field order is preserved from construction (so that SELECT * over a
// single row reproduces its source column order), but is not
// significant for equality: two structs are equal, PTS or otherwise,
// if they carry the same fields regardless of order, and duplicate
// labels are permitted and compared as a multiset of fields.
type Struct struct {
	fields []Field
}

// NewStruct builds a Struct from fields. The slice is retained, not copied.
func NewStruct(fields []Field) Struct { return Struct{fields: fields} }

func (Struct) Type() Type { return StructType }

// Len reports the number of fields, including any duplicate labels.
func (s Struct) Len() int { return len(s.fields) }

// Fields returns the struct's fields in their original order.
func (s Struct) Fields() []Field { return s.fields }

// Field looks up the first field with the given label. PartiQL field
// access ("a.b") is case-sensitive and takes the first match when a
// label repeats.
func (s Struct) Field(label string) (Datum, bool) {
	for _, f := range s.fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return nil, false
}

// Each calls fn for every field in order, stopping early if fn returns false.
func (s Struct) Each(fn func(Field) bool) {
	for _, f := range s.fields {
		if !fn(f) {
			return
		}
	}
}
