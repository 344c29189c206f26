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

	"github.com/partiql-core/pql/expr"
	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
)

func TestParseBetweenMissingAnd(t *testing.T) {
	_, err := ParseExpr("5 BETWEEN 1  10")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	pe, ok := err.(*perr.Error)
	if !ok {
		t.Fatalf("error = %#v, want *perr.Error", err)
	}
	if pe.Code != perr.ParseExpectedKeyword {
		t.Errorf("code = %v, want %v", pe.Code, perr.ParseExpectedKeyword)
	}
	if kw, _ := pe.Property(perr.Keyword); kw != "AND" {
		t.Errorf("KEYWORD = %v, want AND", kw)
	}
	if ln, _ := pe.Property(perr.LineNumber); ln != 1 {
		t.Errorf("LINE_NUMBER = %v, want 1", ln)
	}
	if col, _ := pe.Property(perr.ColumnNumber); col != 14 {
		t.Errorf("COLUMN_NUMBER = %v, want 14", col)
	}
	if tt, _ := pe.Property(perr.TokenType); tt != "LITERAL" {
		t.Errorf("TOKEN_TYPE = %v, want LITERAL", tt)
	}
	if tv, _ := pe.Property(perr.TokenValue); tv != ion.Int(10) {
		t.Errorf("TOKEN_VALUE = %#v, want Int(10)", tv)
	}
}

func TestParseBetween(t *testing.T) {
	n, err := ParseExpr("a BETWEEN 1 AND 10")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	b, ok := n.(*expr.Between)
	if !ok {
		t.Fatalf("node = %#v, want *expr.Between", n)
	}
	if b.Not {
		t.Error("Not = true, want false")
	}
	if !expr.Equal(b.Expr, expr.Ident{Name: "a"}) {
		t.Errorf("Expr = %v, want a", expr.Text(b.Expr))
	}
}

func TestParseNotBetween(t *testing.T) {
	n, err := ParseExpr("a NOT BETWEEN 1 AND 10")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	b, ok := n.(*expr.Between)
	if !ok || !b.Not {
		t.Fatalf("node = %#v, want negated *expr.Between", n)
	}
}

func TestParseLikeEscape(t *testing.T) {
	n, err := ParseExpr("'100%' LIKE '1%[%' ESCAPE '['")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	sm, ok := n.(*expr.StringMatch)
	if !ok {
		t.Fatalf("node = %#v, want *expr.StringMatch", n)
	}
	if sm.Escape == nil {
		t.Error("Escape = nil, want non-nil")
	}
}

func TestParsePrecedence(t *testing.T) {
	n, err := ParseExpr("1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	a, ok := n.(*expr.Arithmetic)
	if !ok || a.Op != expr.AddOp {
		t.Fatalf("node = %#v, want top-level AddOp", n)
	}
	rhs, ok := a.Right.(*expr.Arithmetic)
	if !ok || rhs.Op != expr.MulOp {
		t.Fatalf("right = %#v, want MulOp", a.Right)
	}
}

func TestParsePathExpression(t *testing.T) {
	n, err := ParseExpr("t.a[0].*")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	p, ok := n.(*expr.Path)
	if !ok {
		t.Fatalf("node = %#v, want *expr.Path", n)
	}
	if len(p.Steps) != 3 {
		t.Fatalf("len(Steps) = %d, want 3", len(p.Steps))
	}
	if p.Steps[0].Kind != expr.DotStep || p.Steps[0].Field != "a" {
		t.Errorf("step 0 = %+v, want dot a", p.Steps[0])
	}
	if p.Steps[1].Kind != expr.IndexStep {
		t.Errorf("step 1 = %+v, want index", p.Steps[1])
	}
	if p.Steps[2].Kind != expr.WildcardStep {
		t.Errorf("step 2 = %+v, want wildcard", p.Steps[2])
	}
}

func TestParseAtReference(t *testing.T) {
	n, err := ParseExpr("@x")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	id, ok := n.(expr.Ident)
	if !ok || !id.AtPrefix || id.Name != "x" {
		t.Fatalf("node = %#v, want @x", n)
	}
}

func TestParseAtMissingIdent(t *testing.T) {
	_, err := ParseExpr("@ 1")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*perr.Error)
	if !ok || pe.Code != perr.ParseMissingIdentAfterAt {
		t.Fatalf("err = %v, want PARSE_MISSING_IDENT_AFTER_AT", err)
	}
}

func TestParseCast(t *testing.T) {
	n, err := ParseExpr("CAST(x AS VARCHAR(10))")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	c, ok := n.(*expr.Cast)
	if !ok {
		t.Fatalf("node = %#v, want *expr.Cast", n)
	}
	if c.To != ion.StringType {
		t.Errorf("To = %v, want StringType", c.To)
	}
	if len(c.Params) != 1 || c.Params[0] != 10 {
		t.Errorf("Params = %v, want [10]", c.Params)
	}
}

func TestParseCastArityError(t *testing.T) {
	_, err := ParseExpr("CAST(x AS INT(3))")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*perr.Error)
	if !ok || pe.Code != perr.ParseCastArity {
		t.Fatalf("err = %v, want PARSE_CAST_ARITY", err)
	}
}

func TestParseSearchedCase(t *testing.T) {
	n, err := ParseExpr("CASE WHEN a = 1 THEN 'one' ELSE 'other' END")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	c, ok := n.(*expr.Case)
	if !ok {
		t.Fatalf("node = %#v, want *expr.Case", n)
	}
	if c.Value != nil {
		t.Error("Value != nil, want searched form")
	}
	if len(c.Limbs) != 1 || c.Else == nil {
		t.Errorf("Limbs/Else = %+v/%v, want one limb and an else", c.Limbs, c.Else)
	}
}

func TestParseSimpleCase(t *testing.T) {
	n, err := ParseExpr("CASE a WHEN 1 THEN 'one' END")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	c, ok := n.(*expr.Case)
	if !ok || c.Value == nil {
		t.Fatalf("node = %#v, want simple-form *expr.Case", n)
	}
}

func TestParseSubstringFromFor(t *testing.T) {
	n, err := ParseExpr("SUBSTRING(s FROM 2 FOR 3)")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	c, ok := n.(*expr.Call)
	if !ok {
		t.Fatalf("node = %#v, want *expr.Call", n)
	}
	if c.Name != "SUBSTRING" || len(c.Args) != 3 {
		t.Fatalf("Call = %+v, want SUBSTRING with 3 args", c)
	}
}

func TestParseTrimFrom(t *testing.T) {
	n, err := ParseExpr("TRIM(LEADING 'x' FROM s)")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	c, ok := n.(*expr.Call)
	if !ok || c.Name != "TRIM" || len(c.Args) != 3 {
		t.Fatalf("node = %#v, want TRIM call with 3 args", n)
	}
	if !expr.Equal(c.Args[0], expr.Str("LEADING")) {
		t.Errorf("side arg = %v, want LEADING", expr.Text(c.Args[0]))
	}
}

func TestParseSelectFull(t *testing.T) {
	n, err := Parse(`SELECT a, b AS c FROM t AS x WHERE a > 1 GROUP BY b HAVING b > 1 ORDER BY b DESC LIMIT 5`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sel, ok := n.(*expr.Select)
	if !ok {
		t.Fatalf("node = %#v, want *expr.Select", n)
	}
	if sel.Star {
		t.Error("Star = true, want false")
	}
	if len(sel.Project) != 2 || sel.Project[1].As != "c" {
		t.Errorf("Project = %+v", sel.Project)
	}
	if sel.From.As != "x" {
		t.Errorf("From.As = %q, want x", sel.From.As)
	}
	if sel.Where == nil || sel.Having == nil {
		t.Error("expected WHERE and HAVING to be set")
	}
	if len(sel.GroupBy) != 1 || len(sel.OrderBy) != 1 || !sel.OrderBy[0].Desc {
		t.Errorf("GroupBy/OrderBy = %+v/%+v", sel.GroupBy, sel.OrderBy)
	}
	if sel.Limit == nil || *sel.Limit != 5 {
		t.Errorf("Limit = %v, want 5", sel.Limit)
	}
}

func TestParseSelectMissingFrom(t *testing.T) {
	_, err := Parse("SELECT a")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*perr.Error)
	if !ok || pe.Code != perr.ParseSelectMissingFrom {
		t.Fatalf("err = %v, want PARSE_SELECT_MISSING_FROM", err)
	}
}

func TestParseJoins(t *testing.T) {
	n, err := Parse("SELECT * FROM a LEFT JOIN b ON a.id = b.id CROSS JOIN c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sel := n.(*expr.Select)
	if len(sel.Joins) != 2 {
		t.Fatalf("len(Joins) = %d, want 2", len(sel.Joins))
	}
	if sel.Joins[0].Kind != expr.LeftJoin || sel.Joins[0].On == nil {
		t.Errorf("join 0 = %+v, want LEFT JOIN with ON", sel.Joins[0])
	}
	if sel.Joins[1].Kind != expr.CrossJoin || sel.Joins[1].On != nil {
		t.Errorf("join 1 = %+v, want CROSS JOIN with no ON", sel.Joins[1])
	}
}

func TestParseUnpivot(t *testing.T) {
	n, err := Parse("SELECT * FROM UNPIVOT x AS v AT k")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sel := n.(*expr.Select)
	if !sel.From.Unpivot || sel.From.As != "v" || sel.From.At != "k" {
		t.Errorf("From = %+v, want UNPIVOT x AS v AT k", sel.From)
	}
}

func TestParseGroupByRejectsLiteral(t *testing.T) {
	_, err := Parse("SELECT a FROM t GROUP BY 1")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*perr.Error)
	if !ok || pe.Code != perr.ParseUnsupportedLiteralsGroupby {
		t.Fatalf("err = %v, want PARSE_UNSUPPORTED_LITERALS_GROUPBY", err)
	}
}

func TestParseValues(t *testing.T) {
	n, err := Parse("VALUES (1, 2), (3, 4)")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, ok := n.(*expr.Values)
	if !ok || len(v.Rows) != 2 || len(v.Rows[0]) != 2 {
		t.Fatalf("node = %#v, want 2 rows of 2", n)
	}
}

func TestParseValuesRequiresParens(t *testing.T) {
	_, err := Parse("VALUES 1, 2")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*perr.Error)
	if !ok || pe.Code != perr.ParseExpectedLeftParenValueConstructor {
		t.Fatalf("err = %v, want PARSE_EXPECTED_LEFT_PAREN_VALUE_CONSTRUCTOR", err)
	}
}

func TestParseListAndStructLiterals(t *testing.T) {
	n, err := ParseExpr(`{'a': 1, 'b': [1, 2, 3]}`)
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	s, ok := n.(*expr.StructLit)
	if !ok || len(s.Fields) != 2 {
		t.Fatalf("node = %#v, want 2-field struct literal", n)
	}
	list, ok := s.Fields[1].Value.(*expr.ListLit)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("b = %#v, want 3-item list literal", s.Fields[1].Value)
	}
}

func TestParseBacktickTimestampLiteral(t *testing.T) {
	n, err := ParseExpr("`2022-05-01T10:00:00Z`")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	ts, ok := n.(expr.TimestampLit)
	if !ok {
		t.Fatalf("node = %#v, want expr.TimestampLit", n)
	}
	if ts.V.Year() != 2022 || ts.V.Hour() != 10 {
		t.Errorf("parsed timestamp = %v, want 2022-05-01T10:00:00Z", ts.V)
	}
}

func TestParseInvalidPathComponent(t *testing.T) {
	_, err := ParseExpr("a..b")
	if err == nil {
		t.Fatal("expected an error")
	}
	pe, ok := err.(*perr.Error)
	if !ok || pe.Code != perr.ParseInvalidPathComponent {
		t.Fatalf("err = %v, want PARSE_INVALID_PATH_COMPONENT", err)
	}
}

func TestParseIsType(t *testing.T) {
	n, err := ParseExpr("x IS NOT STRUCT")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	isx, ok := n.(*expr.Is)
	if !ok || !isx.Not || isx.Kind != expr.IsType || isx.Of != ion.StructType {
		t.Fatalf("node = %#v, want NOT IS STRUCT", n)
	}
}

func TestParseIn(t *testing.T) {
	n, err := ParseExpr("x NOT IN (1, 2, 3)")
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	in, ok := n.(*expr.In)
	if !ok || !in.Not || len(in.Items) != 3 {
		t.Fatalf("node = %#v, want negated IN with 3 items", n)
	}
}
