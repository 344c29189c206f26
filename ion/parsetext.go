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
	"strconv"
	"strings"

	"github.com/partiql-core/pql/date"
)

// ParseText parses a single document-model value written in the text
// form Render produces (null/null.type, true/false, ints, decimals,
// quoted strings/symbols, [lists], (sexps), <bags>, {structs}). It is
// used to decode the backtick-quoted embedded literals the lexer
// passes through verbatim.
func ParseText(s string) (Datum, bool) {
	p := &textParser{s: s}
	p.skipSpace()
	d, ok := p.value()
	if !ok {
		return nil, false
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, false
	}
	return d, true
}

type textParser struct {
	s   string
	pos int
}

func (p *textParser) skipSpace() {
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *textParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *textParser) value() (Datum, bool) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, false
	}
	switch c := p.peek(); {
	case c == '"':
		s, ok := p.quoted('"')
		return String(s), ok
	case c == '\'':
		s, ok := p.quoted('\'')
		return Symbol(s), ok
	case c == '[':
		return p.sequence('[', ']', func(items []Datum) Datum { return NewList(items) })
	case c == '(':
		return p.sequence('(', ')', func(items []Datum) Datum { return NewSexp(items) })
	case c == '<':
		return p.sequence('<', '>', func(items []Datum) Datum { return NewBag(items) })
	case c == '{':
		return p.structVal()
	case c >= '0' && c <= '9':
		if d, ok := p.timestamp(); ok {
			return d, true
		}
		return p.number()
	case c == '-':
		return p.number()
	default:
		return p.word()
	}
}

func (p *textParser) quoted(q byte) (string, bool) {
	if p.peek() != q {
		return "", false
	}
	p.pos++
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == q {
			if p.pos+1 < len(p.s) && p.s[p.pos+1] == q {
				b.WriteByte(q)
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), true
		}
		if c == '\\' && p.pos+1 < len(p.s) {
			p.pos++
			switch p.s[p.pos] {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(p.s[p.pos])
			}
			p.pos++
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", false
}

func (p *textParser) sequence(open, close byte, build func([]Datum) Datum) (Datum, bool) {
	if p.peek() != open {
		return nil, false
	}
	p.pos++
	var items []Datum
	p.skipSpace()
	for p.peek() != close {
		v, ok := p.value()
		if !ok {
			return nil, false
		}
		items = append(items, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			p.skipSpace()
		}
	}
	p.pos++
	return build(items), true
}

func (p *textParser) structVal() (Datum, bool) {
	if p.peek() != '{' {
		return nil, false
	}
	p.pos++
	var fields []Field
	p.skipSpace()
	for p.peek() != '}' {
		var label string
		switch p.peek() {
		case '"':
			s, ok := p.quoted('"')
			if !ok {
				return nil, false
			}
			label = s
		case '\'':
			s, ok := p.quoted('\'')
			if !ok {
				return nil, false
			}
			label = s
		default:
			w, ok := p.bareWord()
			if !ok {
				return nil, false
			}
			label = w
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, false
		}
		p.pos++
		v, ok := p.value()
		if !ok {
			return nil, false
		}
		fields = append(fields, Field{Label: label, Value: v})
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			p.skipSpace()
		}
	}
	p.pos++
	return NewStruct(fields), true
}

func (p *textParser) bareWord() (string, bool) {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
		isDigit := c >= '0' && c <= '9'
		if p.pos == start && !isLetter {
			break
		}
		if p.pos > start && !isLetter && !isDigit {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return p.s[start:p.pos], true
}

// timestamp attempts to consume a backtick Ion-literal timestamp such
// as `2022-05-01T10:00:00Z`. It only commits if the scanned run looks
// like a date (contains a "-" past the first digit, or a "T"/"t")
// rather than a bare integer or decimal, and date.Parse agrees.
func (p *textParser) timestamp() (Datum, bool) {
	start := p.pos
	end := start
	for end < len(p.s) {
		c := p.s[end]
		isTimestampByte := (c >= '0' && c <= '9') || c == '-' || c == ':' || c == '.' || c == 'T' || c == 't' || c == 'Z' || c == 'z' || c == '+'
		if !isTimestampByte {
			break
		}
		end++
	}
	text := p.s[start:end]
	if !strings.ContainsAny(text, "Tt") && !strings.Contains(text[1:], "-") {
		return nil, false
	}
	ts, ok := date.Parse([]byte(text))
	if !ok {
		return nil, false
	}
	p.pos = end
	return NewTimestamp(ts), true
}

func (p *textParser) number() (Datum, bool) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	isDecimal := false
	if p.peek() == '.' {
		isDecimal = true
		p.pos++
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		isDecimal = true
		p.pos++
		if p.peek() == '+' || p.peek() == '-' {
			p.pos++
		}
		for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
			p.pos++
		}
	}
	text := p.s[start:p.pos]
	if text == "" || text == "-" {
		return nil, false
	}
	if isDecimal {
		d, err := ParseDecimal(text)
		if err != nil {
			return nil, false
		}
		return d, true
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, false
	}
	return Int(v), true
}

func (p *textParser) word() (Datum, bool) {
	w, ok := p.bareWord()
	if !ok {
		return nil, false
	}
	switch w {
	case "true":
		return Bool(true), true
	case "false":
		return Bool(false), true
	case "missing":
		return Missing, true
	case "null":
		if p.peek() == '.' {
			p.pos++
			t, ok := p.bareWord()
			if !ok {
				return nil, false
			}
			return Null{Of: typeNamed(t)}, true
		}
		return Null{}, true
	}
	return Symbol(w), true
}

func typeNamed(name string) Type {
	for t := MissingType; t <= StructType; t++ {
		if t.String() == name {
			return t
		}
	}
	return NullType
}
