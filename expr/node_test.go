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
	"testing"

	"github.com/partiql-core/pql/ion"
)

func TestTextRendering(t *testing.T) {
	n := &Comparison{Op: Equals, Left: Ident{Name: "a"}, Right: Int(1)}
	if got, want := Text(n), "a = 1"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestEqualsIgnoresIntFloatKind(t *testing.T) {
	if !Equal(Int(1), Float(1)) {
		t.Errorf("Int(1) should equal Float(1)")
	}
}

func TestDatumShape(t *testing.T) {
	n := &Comparison{Op: Equals, Left: Ident{Name: "a"}, Right: Int(1)}
	d, ok := n.Datum().(ion.Sexp)
	if !ok {
		t.Fatalf("Datum() did not produce a Sexp")
	}
	if got, want := d.Op(), "="; got != want {
		t.Errorf("Op() = %q, want %q", got, want)
	}
}

func TestWalkVisitsChildren(t *testing.T) {
	n := &Logical{Op: OpAnd, Left: &Not{Expr: Ident{Name: "a"}}, Right: Bool(true)}
	var seen []Node
	Walk(visitFunc(func(node Node) Visitor {
		if node != nil {
			seen = append(seen, node)
		}
		return visitFunc(func(node Node) Visitor {
			if node != nil {
				seen = append(seen, node)
			}
			return nil
		})
	}), n)
	if len(seen) == 0 {
		t.Fatal("expected Walk to visit at least the root")
	}
}

type visitFunc func(Node) Visitor

func (f visitFunc) Visit(n Node) Visitor { return f(n) }
