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
	"strings"

	"github.com/partiql-core/pql/ion"
)

// Blob is a BLOB literal.
type Blob []byte

func (b Blob) text(dst *strings.Builder) { dst.WriteString("{{...}}") }
func (b Blob) Equals(o Node) bool        { ob, ok := o.(Blob); return ok && string(ob) == string(b) }
func (b Blob) Datum() ion.Datum          { return sexp("lit", ion.Blob(b)) }
func (Blob) walk(Visitor)                {}

// Clob is a CLOB literal.
type Clob []byte

func (c Clob) text(dst *strings.Builder) { dst.WriteString("{{'...'}}") }
func (c Clob) Equals(o Node) bool        { oc, ok := o.(Clob); return ok && string(oc) == string(c) }
func (c Clob) Datum() ion.Datum          { return sexp("lit", ion.Clob(c)) }
func (Clob) walk(Visitor)                {}

// ListLit is a "[a, b, c]" list constructor.
type ListLit struct {
	Items []Node
}

func (l *ListLit) text(dst *strings.Builder) { writeSeq(dst, '[', ']', l.Items) }
func (l *ListLit) Equals(o Node) bool {
	ol, ok := o.(*ListLit)
	return ok && equalNodes(l.Items, ol.Items)
}
func (l *ListLit) Datum() ion.Datum { return sexp("list", l.Items) }
func (l *ListLit) walk(v Visitor) {
	for _, it := range l.Items {
		Walk(v, it)
	}
}

// SexpLit is a "(a b c)" s-expression constructor, distinct from List
// for the same reason the document model keeps SEXP and LIST distinct.
type SexpLit struct {
	Items []Node
}

func (s *SexpLit) text(dst *strings.Builder) { writeSeq(dst, '(', ')', s.Items) }
func (s *SexpLit) Equals(o Node) bool {
	os, ok := o.(*SexpLit)
	return ok && equalNodes(s.Items, os.Items)
}
func (s *SexpLit) Datum() ion.Datum { return sexp("sexp", s.Items) }
func (s *SexpLit) walk(v Visitor) {
	for _, it := range s.Items {
		Walk(v, it)
	}
}

// BagLit is a "<<a, b, c>>" bag constructor.
type BagLit struct {
	Items []Node
}

func (b *BagLit) text(dst *strings.Builder) { writeSeq(dst, '<', '>', b.Items) }
func (b *BagLit) Equals(o Node) bool {
	ob, ok := o.(*BagLit)
	return ok && equalNodes(b.Items, ob.Items)
}
func (b *BagLit) Datum() ion.Datum { return sexp("bag", b.Items) }
func (b *BagLit) walk(v Visitor) {
	for _, it := range b.Items {
		Walk(v, it)
	}
}

// StructField is one label/value pair of a StructLit.
type StructField struct {
	Label string
	Value Node
}

// StructLit is a "{'a': 1, 'b': 2}" struct constructor.
type StructLit struct {
	Fields []StructField
}

func (s *StructLit) text(dst *strings.Builder) {
	dst.WriteByte('{')
	for i, f := range s.Fields {
		if i > 0 {
			dst.WriteString(", ")
		}
		dst.WriteByte('\'')
		escapeInto(dst, f.Label)
		dst.WriteString("': ")
		f.Value.text(dst)
	}
	dst.WriteByte('}')
}
func (s *StructLit) Equals(o Node) bool {
	os, ok := o.(*StructLit)
	if !ok || len(os.Fields) != len(s.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if f.Label != os.Fields[i].Label || !Equal(f.Value, os.Fields[i].Value) {
			return false
		}
	}
	return true
}
func (s *StructLit) Datum() ion.Datum {
	items := make([]ion.Datum, 0, len(s.Fields)*2+1)
	items = append(items, ion.Symbol("struct"))
	for _, f := range s.Fields {
		items = append(items, ion.Symbol(f.Label), f.Value.Datum())
	}
	return ion.NewSexp(items)
}
func (s *StructLit) walk(v Visitor) {
	for _, f := range s.Fields {
		Walk(v, f.Value)
	}
}

func writeSeq(dst *strings.Builder, open, close byte, items []Node) {
	dst.WriteByte(open)
	for i, it := range items {
		if i > 0 {
			dst.WriteString(", ")
		}
		it.text(dst)
	}
	dst.WriteByte(close)
}

func equalNodes(a, b []Node) bool {
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
