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

package partiql

import "sort"

// wordNode is one entry of a sorted word table: a packed integer
// formed from a word's characters (see wordcode) paired with the
// canonical spelling the lexer should report.
type wordNode struct {
	code uint64
	name string
}

type wordTable []wordNode

func (t wordTable) Len() int           { return len(t) }
func (t wordTable) Less(i, j int) bool { return t[i].code < t[j].code }
func (t wordTable) Swap(i, j int)      { t[i], t[j] = t[j], t[i] }

func (t wordTable) get(s string) (string, bool) {
	code, ok := wordcode(s)
	if !ok {
		return "", false
	}
	idx := sort.Search(len(t), func(i int) bool { return t[i].code >= code })
	if idx < len(t) && t[idx].code == code {
		return t[idx].name, true
	}
	return "", false
}

func charcode(b byte) (uint64, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return uint64(b-'a') + 1, true
	case b >= 'A' && b <= 'Z':
		return uint64(b-'A') + 1, true
	case b == '_':
		return 27, true
	case b >= '0' && b <= '4':
		return uint64(b-'0') + 28, true
	default:
		return 0, false
	}
}

// wordcode packs s's ASCII characters into a case-insensitive integer
// key, 5 bits per character (so at most 12 characters fit in 64 bits).
func wordcode(s string) (uint64, bool) {
	if len(s) == 0 || len(s) > 12 {
		return 0, false
	}
	var code uint64
	for i := 0; i < len(s); i++ {
		bits, ok := charcode(s[i])
		if !ok {
			return 0, false
		}
		code = code<<5 | bits
	}
	return code, true
}

func buildWordTable(words []string) wordTable {
	t := make(wordTable, 0, len(words))
	for _, w := range words {
		code, ok := wordcode(w)
		if !ok {
			panic("partiql: keyword " + w + " is not encodable")
		}
		t = append(t, wordNode{code: code, name: w})
	}
	sort.Sort(t)
	return t
}

// keywords is the set of reserved words that are never ordinary
// identifiers. Words that are also operators (AND, OR, NOT, LIKE, IN,
// IS, BETWEEN) are looked up in operators instead, matching §4.1's
// "if it is the text of an operator, it becomes OPERATOR" rule.
var keywords = buildWordTable([]string{
	"SELECT", "FROM", "WHERE", "GROUP", "BY", "HAVING", "ORDER", "LIMIT",
	"AS", "AT", "ASC", "DESC", "DISTINCT", "JOIN", "INNER", "LEFT", "CROSS",
	"ON", "UNPIVOT", "VALUES", "CAST", "CASE", "WHEN", "THEN", "ELSE", "END",
	"SUBSTRING", "FOR", "TRIM", "LEADING", "TRAILING", "BOTH", "ESCAPE",
	"NULL", "MISSING", "NULLS", "FIRST", "LAST",
})

// operators is the set of alphabetic words that lex as OPERATOR rather
// than KEYWORD (so the parser's precedence-climbing loop can treat
// them uniformly with symbolic operators like "<>").
var operators = buildWordTable([]string{
	"AND", "OR", "NOT", "LIKE", "IN", "IS", "BETWEEN",
})

// typeNames is the set of words recognized as CAST target type names.
var typeNames = buildWordTable([]string{
	"BOOL", "BOOLEAN", "INT", "INTEGER", "FLOAT", "DOUBLE", "DECIMAL",
	"NUMERIC", "TIMESTAMP", "SYMBOL", "STRING", "VARCHAR", "CLOB", "BLOB",
	"LIST", "SEXP", "BAG", "STRUCT",
})

// isKeyword reports whether s (already upper-cased) is a reserved word
// or operator word, for use by the parser when deciding whether an
// identifier-looking token may be used as an unquoted alias.
func isKeyword(upper string) bool {
	if _, ok := keywords.get(upper); ok {
		return true
	}
	_, ok := operators.get(upper)
	return ok
}
