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

import "testing"

func TestRenderScalars(t *testing.T) {
	cases := []struct {
		d    Datum
		want string
	}{
		{Missing, "missing"},
		{Null{}, "null"},
		{Null{Of: IntType}, "null.int"},
		{Bool(true), "true"},
		{Int(42), "42"},
		{String("hi"), `"hi"`},
		{Symbol("foo"), "foo"},
		{Symbol("has space"), "'has space'"},
	}
	for _, c := range cases {
		if got := Render(c.d); got != c.want {
			t.Errorf("Render(%#v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestRenderContainers(t *testing.T) {
	l := NewList([]Datum{Int(1), Int(2)})
	if got, want := Render(l), "[1, 2]"; got != want {
		t.Errorf("Render(list) = %q, want %q", got, want)
	}
	s := NewSexp([]Datum{Symbol("add"), Int(1), Int(2)})
	if got, want := Render(s), "(add, 1, 2)"; got != want {
		t.Errorf("Render(sexp) = %q, want %q", got, want)
	}
	if got, want := s.Op(), "add"; got != want {
		t.Errorf("Op() = %q, want %q", got, want)
	}
	if got, want := len(s.Args()), 2; got != want {
		t.Errorf("len(Args()) = %d, want %d", got, want)
	}
	st := NewStruct([]Field{{Label: "a", Value: Int(1)}, {Label: "b", Value: String("x")}})
	if got, want := Render(st), `{a:1, b:"x"}`; got != want {
		t.Errorf("Render(struct) = %q, want %q", got, want)
	}
	v, ok := st.Field("b")
	if !ok || v != String("x") {
		t.Errorf("Field(b) = %v, %v", v, ok)
	}
}

func TestTypeOf(t *testing.T) {
	cases := []struct {
		d    Datum
		want Type
	}{
		{Missing, MissingType},
		{Null{}, NullType},
		{Bool(false), BoolType},
		{Int(0), IntType},
		{Float(0), FloatType},
		{NewList(nil), ListType},
		{NewSexp(nil), SexpType},
		{NewBag(nil), BagType},
		{NewStruct(nil), StructType},
	}
	for _, c := range cases {
		if got := c.d.Type(); got != c.want {
			t.Errorf("%#v.Type() = %v, want %v", c.d, got, c.want)
		}
	}
}
