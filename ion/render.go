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
	"encoding/base64"
	"strconv"
	"strings"
)

// Render writes d's text-form encoding to a strings.Builder-backed
// string. It is used for the AST's own s-expression serialization
// (Sexp renders as "(op, arg, ...)") as well as for printing query
// results from the command-line driver.
func Render(d Datum) string {
	var b strings.Builder
	render(&b, d)
	return b.String()
}

func render(b *strings.Builder, d Datum) {
	switch v := d.(type) {
	case missing:
		b.WriteString("missing")
	case Null:
		if v.DeclaredType() == NullType {
			b.WriteString("null")
		} else {
			b.WriteString("null.")
			b.WriteString(v.DeclaredType().String())
		}
	case Bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		s := strconv.FormatFloat(float64(v), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += "e0"
		}
		b.WriteString(s)
	case Decimal:
		if v.V == nil {
			b.WriteString("0.")
		} else {
			b.WriteString(v.V.String())
		}
	case Timestamp:
		b.WriteString(v.V.String())
	case String:
		renderQuoted(b, string(v), '"')
	case Symbol:
		renderSymbol(b, string(v))
	case Blob:
		b.WriteString("{{")
		b.WriteString(base64.StdEncoding.EncodeToString(v))
		b.WriteString("}}")
	case Clob:
		b.WriteString("{{")
		renderQuoted(b, string(v), '"')
		b.WriteString("}}")
	case List:
		renderSeq(b, '[', ']', v.items)
	case Sexp:
		renderSeq(b, '(', ')', v.items)
	case Bag:
		renderSeq(b, '<', '>', v.items)
	case Struct:
		b.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			renderSymbol(b, f.Label)
			b.WriteByte(':')
			render(b, f.Value)
		}
		b.WriteByte('}')
	default:
		b.WriteString("?")
	}
}

func renderSeq(b *strings.Builder, open, close byte, items []Datum) {
	b.WriteByte(open)
	for i, it := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		render(b, it)
	}
	b.WriteByte(close)
}

func renderQuoted(b *strings.Builder, s string, quote byte) {
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
}

func renderSymbol(b *strings.Builder, s string) {
	if isPlainSymbol(s) {
		b.WriteString(s)
		return
	}
	renderQuoted(b, s, '\'')
}

func isPlainSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && !isLetter {
			return false
		}
		if i > 0 && !isLetter && !isDigit {
			return false
		}
	}
	return true
}
