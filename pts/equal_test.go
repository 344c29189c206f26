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

package pts

import (
	"testing"

	"github.com/partiql-core/pql/ion"
)

func dec(s string) ion.Decimal {
	d, err := ion.ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEqualScalars(t *testing.T) {
	cases := []struct {
		name string
		a, b ion.Datum
		want bool
	}{
		{"decimal scale agnostic", dec("1.0"), dec("1.00"), true},
		{"decimal different value", dec("1.0"), dec("1.1"), false},
		{"typed null mismatch", ion.Null{Of: ion.IntType}, ion.Null{Of: ion.StringType}, false},
		{"typed null match", ion.Null{Of: ion.IntType}, ion.Null{Of: ion.IntType}, true},
		{"untyped null vs typed", ion.Null{}, ion.Null{Of: ion.IntType}, false},
		{"int vs float never coerces", ion.Int(1), ion.Float(1), false},
		{"missing is singleton", ion.Missing, ion.Missing, true},
		{"same string", ion.String("a"), ion.String("a"), true},
		{"different type same text", ion.String("a"), ion.Symbol("a"), false},
	}
	for _, c := range cases {
		if got := Equal(c.a, c.b); got != c.want {
			t.Errorf("%s: Equal(%#v, %#v) = %v, want %v", c.name, c.a, c.b, got, c.want)
		}
	}
}

func TestEqualBagPermutationAndMultiplicity(t *testing.T) {
	a := ion.NewBag([]ion.Datum{ion.Int(1), ion.Int(1), ion.Int(2)})
	b := ion.NewBag([]ion.Datum{ion.Int(2), ion.Int(1), ion.Int(1)})
	if !Equal(a, b) {
		t.Errorf("Equal(bag(1,1,2), bag(2,1,1)) = false, want true")
	}
	c := ion.NewBag([]ion.Datum{ion.Int(1), ion.Int(2), ion.Int(2)})
	if Equal(a, c) {
		t.Errorf("Equal(bag(1,1,2), bag(1,2,2)) = true, want false")
	}
}

func TestEqualListIsPositional(t *testing.T) {
	a := ion.NewList([]ion.Datum{ion.Int(1), ion.Int(2)})
	b := ion.NewList([]ion.Datum{ion.Int(2), ion.Int(1)})
	if Equal(a, b) {
		t.Errorf("Equal(list(1,2), list(2,1)) = true, want false (LIST is positional)")
	}
	c := ion.NewList([]ion.Datum{ion.Int(1), ion.Int(2)})
	if !Equal(a, c) {
		t.Errorf("Equal(list(1,2), list(1,2)) = false, want true")
	}
}

func TestEqualStructSameSizeNameKeyed(t *testing.T) {
	a := ion.NewStruct([]ion.Field{{Label: "a", Value: ion.Int(1)}, {Label: "b", Value: ion.Int(2)}})
	b := ion.NewStruct([]ion.Field{{Label: "b", Value: ion.Int(2)}, {Label: "a", Value: ion.Int(1)}})
	if !Equal(a, b) {
		t.Errorf("Equal(struct, struct with fields reordered) = false, want true")
	}
	c := ion.NewStruct([]ion.Field{{Label: "a", Value: ion.Int(1)}})
	if Equal(a, c) {
		t.Errorf("Equal(structs of different size) = true, want false")
	}
}

func TestEqualSexpBagForm(t *testing.T) {
	a := ion.NewSexp([]ion.Datum{ion.Symbol("bag"), ion.Int(1), ion.Int(2)})
	b := ion.NewSexp([]ion.Datum{ion.Symbol("bag"), ion.Int(2), ion.Int(1)})
	if !Equal(a, b) {
		t.Errorf("Equal((bag 1 2), (bag 2 1)) = false, want true")
	}
	// a SEXP headed by a symbol other than "bag" stays positional.
	c := ion.NewSexp([]ion.Datum{ion.Symbol("add"), ion.Int(1), ion.Int(2)})
	d := ion.NewSexp([]ion.Datum{ion.Symbol("add"), ion.Int(2), ion.Int(1)})
	if Equal(c, d) {
		t.Errorf("Equal((add 1 2), (add 2 1)) = true, want false (not a bag form)")
	}
}
