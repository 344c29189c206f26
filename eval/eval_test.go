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

package eval

import (
	"testing"

	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
)

// renders compiles and runs src against an empty root environment and
// returns its ion.Render form, the same round trip cmd/pql's "run"
// helper and the conformance harness both use.
func renders(t *testing.T, src string) string {
	t.Helper()
	exe, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	d, err := exe.Run(map[string]ion.Datum{})
	if err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return ion.Render(d)
}

func TestEvalScalarExpressions(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2", "3"},
		{"2 * 3 + 4", "10"},
		{"10 / 3", "3"},
		{"10 % 3", "1"},
		{"'foo' || 'bar'", `"foobar"`},
		{"1 = 1", "true"},
		{"1 = 2", "false"},
		{"1 < 2 AND 2 < 3", "true"},
		{"1 < 2 OR 1 > 2", "true"},
		{"NOT (1 = 1)", "false"},
		{"5 BETWEEN 1 AND 10", "true"},
		{"5 NOT BETWEEN 1 AND 3", "true"},
		{"3 IN (1, 2, 3)", "true"},
		{"4 NOT IN (1, 2, 3)", "true"},
		{"CASE WHEN 1 > 2 THEN 'a' WHEN 2 > 1 THEN 'b' ELSE 'c' END", `"b"`},
		{"CASE 2 WHEN 1 THEN 'a' WHEN 2 THEN 'b' ELSE 'c' END", `"b"`},
		{"UPPER('abc')", `"ABC"`},
		{"LOWER('ABC')", `"abc"`},
		{"CHAR_LENGTH('hello')", "5"},
		{"SUBSTRING('hello world', 1, 5)", `"hello"`},
		{"SUBSTRING('hello world', 7)", `"world"`},
		{"TRIM('  hi  ')", `"hi"`},
		{"SIZE([1, 2, 3])", "3"},
	}
	for _, c := range cases {
		if got := renders(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
}

// TestEvalThreeValuedLogic checks MISSING-over-NULL propagation through
// comparisons and boolean operators.
func TestEvalThreeValuedLogic(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"MISSING = 1", "missing"},
		{"NULL = 1", "null.bool"},
		{"MISSING AND true", "missing"},
		{"NULL AND true", "null.bool"},
		{"NULL OR false", "null.bool"},
		{"false AND MISSING", "false"},
		{"true OR NULL", "true"},
		{"1 + MISSING", "missing"},
		{"1 + NULL", "null"},
	}
	for _, c := range cases {
		if got := renders(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
}

// TestEvalLikeEscape is the §8 LIKE-with-ESCAPE evaluator scenario: an
// escaped '%' in the pattern must match a literal percent rather than
// acting as a wildcard.
func TestEvalLikeEscape(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`'100%' LIKE '100\%' ESCAPE '\'`, "true"},
		{`'100x' LIKE '100\%' ESCAPE '\'`, "false"},
		{`'abc' LIKE 'a%c'`, "true"},
		{`'abc' NOT LIKE 'a%d'`, "true"},
		{`'abc' LIKE 'a_c'`, "true"},
	}
	for _, c := range cases {
		if got := renders(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
}

func TestEvalPathNavigation(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`{a: 1, b: {c: 2}}.b.c`, "2"},
		{`{a: 1}."missing"`, "missing"},
		{`[10, 20, 30][1]`, "20"},
		{`[10, 20, 30][*]`, "<10, 20, 30>"},
	}
	for _, c := range cases {
		if got := renders(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
}

func TestEvalCast(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"CAST('true' AS BOOL)", "true"},
		{"CAST('TrUe' AS BOOL)", "true"},
		{"CAST('other' AS BOOL)", "false"},
		{"CAST('-0005' AS INT)", "-5"},
		{"CAST('+0x10' AS INT)", "16"},
		{"CAST(3.5 AS INT)", "4"},
		{"CAST(42 AS STRING)", `"42"`},
	}
	for _, c := range cases {
		if got := renders(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
}

func TestEvalCastOverflow(t *testing.T) {
	exe, err := Compile("CAST('99999999999999999999' AS INT)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, err = exe.Run(map[string]ion.Datum{})
	pe, ok := err.(*perr.Error)
	if !ok {
		t.Fatalf("Run error = %#v, want *perr.Error", err)
	}
	if pe.Code != perr.EvaluatorIntOverflow {
		t.Errorf("code = %v, want %v", pe.Code, perr.EvaluatorIntOverflow)
	}
}

func TestEvalCastTimestampEqualityComparesInstants(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"CAST('2022-05-01T10:00:00Z' AS TIMESTAMP) = CAST('2022-05-01T12:00:00+02:00' AS TIMESTAMP)", "true"},
		{"CAST('2022-05-01T10:00:00Z' AS TIMESTAMP) = CAST('2022-05-01T10:00:00+02:00' AS TIMESTAMP)", "false"},
		{"`2022-05-01T10:00:00Z` = CAST('2022-05-01T12:00:00+02:00' AS TIMESTAMP)", "true"},
	}
	for _, c := range cases {
		if got := renders(t, c.src); got != c.want {
			t.Errorf("%s = %s, want %s", c.src, got, c.want)
		}
	}
}

func TestEvalSelectWhereOrderLimit(t *testing.T) {
	src := `SELECT t.n AS n FROM [{n: 3}, {n: 1}, {n: 2}] AS t
	         WHERE t.n > 0 ORDER BY t.n DESC LIMIT 2`
	got := renders(t, src)
	want := `[{n:3}, {n:2}]`
	if got != want {
		t.Errorf("query = %s, want %s", got, want)
	}
}

func TestEvalSelectStarSingleSource(t *testing.T) {
	got := renders(t, `SELECT * FROM [{a: 1, b: 2}] AS t`)
	// no ORDER BY => BAG result
	want := `<{a:1, b:2}>`
	if got != want {
		t.Errorf("query = %s, want %s", got, want)
	}
}

// TestEvalGroupByPTSEquality checks that GROUP BY buckets rows by PTS
// equality (decimal-scale-agnostic), not by a naive text/structural
// proxy: 1.0 and 1.00 are the same decimal value and must land in the
// same group even though they're spelled differently.
func TestEvalGroupByPTSEquality(t *testing.T) {
	got := renders(t, `SELECT SIZE(g) AS n FROM [1.0, 1.00, 2.0] AS g GROUP BY g`)
	want := `<{n:2}, {n:1}>`
	if got != want {
		t.Errorf("query = %s, want %s", got, want)
	}
}

func TestEvalJoinInnerAndLeft(t *testing.T) {
	inner := renders(t, `SELECT a.x AS x, b.y AS y
	                      FROM [{x: 1}, {x: 2}] AS a
	                      INNER JOIN [{y: 1}] AS b ON a.x = b.y
	                      ORDER BY x`)
	if want := `[{x:1, y:1}]`; inner != want {
		t.Errorf("inner join = %s, want %s", inner, want)
	}

	left := renders(t, `SELECT a.x AS x, b.y AS y
	                     FROM [{x: 1}, {x: 2}] AS a
	                     LEFT JOIN [{y: 1}] AS b ON a.x = b.y
	                     ORDER BY x`)
	if want := `[{x:1, y:1}, {x:2, y:null}]`; left != want {
		t.Errorf("left join = %s, want %s", left, want)
	}
}

func TestCompileSingleUseSession(t *testing.T) {
	exe, err := Compile("1 + 1")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := exe.Run(map[string]ion.Datum{}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	_, err = exe.Run(map[string]ion.Datum{})
	pe, ok := err.(*perr.Error)
	if !ok {
		t.Fatalf("second Run error = %#v, want *perr.Error", err)
	}
	if pe.Code != perr.EvaluatorGeneric {
		t.Errorf("code = %v, want %v", pe.Code, perr.EvaluatorGeneric)
	}
	if _, ok := pe.Property(perr.SessionID); !ok {
		t.Errorf("SESSION_ID property not set on reuse error")
	}
}

func TestEvalUnboundIdentifiers(t *testing.T) {
	if got := renders(t, "nonexistent"); got != "missing" {
		t.Errorf("unbound ident = %s, want missing", got)
	}
	exe, err := Compile("@nonexistent")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, err = exe.Run(map[string]ion.Datum{})
	pe, ok := err.(*perr.Error)
	if !ok {
		t.Fatalf("Run error = %#v, want *perr.Error", err)
	}
	if pe.Code != perr.EvaluatorBindingNotFound {
		t.Errorf("code = %v, want %v", pe.Code, perr.EvaluatorBindingNotFound)
	}
}
