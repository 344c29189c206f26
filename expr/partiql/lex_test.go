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

import (
	"testing"

	"github.com/partiql-core/pql/ion"
)

func TestLexNumberForms(t *testing.T) {
	toks, err := Lex("- 1 -1 1.0 1e1 .5 1.5e-2")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []struct {
		typ TokenType
		lit LitKind
	}{
		{OPERATOR, 0},
		{LITERAL, LitInt},
		{LITERAL, LitInt},
		{LITERAL, LitDecimal},
		{LITERAL, LitDecimal},
		{LITERAL, LitDecimal},
		{LITERAL, LitDecimal},
		{EOF, 0},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ {
			t.Errorf("token %d: type = %v, want %v", i, toks[i].Type, w.typ)
		}
		if w.typ == LITERAL && toks[i].Lit != w.lit {
			t.Errorf("token %d: lit kind = %v, want %v", i, toks[i].Lit, w.lit)
		}
	}
	if v, ok := toks[2].Value.(ion.Int); !ok || v != -1 {
		t.Errorf("token 2 value = %#v, want Int(-1)", toks[2].Value)
	}
}

func TestLexKeywordsAndOperators(t *testing.T) {
	toks, err := Lex("SELECT * FROM t WHERE a AND b LIKE 'x'")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Type != KEYWORD || toks[0].Keyword != "SELECT" {
		t.Errorf("token 0 = %+v, want SELECT keyword", toks[0])
	}
	var sawAnd, sawLike bool
	for _, tok := range toks {
		if tok.Type == OPERATOR && tok.Keyword == "AND" {
			sawAnd = true
		}
		if tok.Type == OPERATOR && tok.Keyword == "LIKE" {
			sawLike = true
		}
	}
	if !sawAnd || !sawLike {
		t.Errorf("expected AND and LIKE to lex as OPERATOR tokens")
	}
}

func TestLexStringEscape(t *testing.T) {
	toks, err := Lex(`'it''s'`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if got, want := toks[0].Value, ion.String("it's"); got != want {
		t.Errorf("string literal = %#v, want %#v", got, want)
	}
}

func TestLexInvalidCharacter(t *testing.T) {
	if _, err := Lex("select # from t"); err == nil {
		t.Fatal("expected an error for an invalid character")
	}
}

func TestLexBacktickTimestamp(t *testing.T) {
	toks, err := Lex("`2022-05-01T10:00:00Z`")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Type != LITERAL || toks[0].Lit != LitIon {
		t.Fatalf("token 0 = %+v, want LitIon literal", toks[0])
	}
	ts, ok := toks[0].Value.(ion.Timestamp)
	if !ok {
		t.Fatalf("token 0 value = %#v, want ion.Timestamp", toks[0].Value)
	}
	if ts.V.Year() != 2022 || ts.V.Month() != 5 || ts.V.Day() != 1 || ts.V.Hour() != 10 {
		t.Errorf("parsed timestamp = %v, want 2022-05-01T10:00:00Z", ts.V)
	}
}

func TestLexQuotedIdent(t *testing.T) {
	toks, err := Lex(`"My Col"`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if toks[0].Type != QUOTED_IDENT || toks[0].Text != "My Col" {
		t.Errorf("token 0 = %+v, want quoted ident 'My Col'", toks[0])
	}
}
