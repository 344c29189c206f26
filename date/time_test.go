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

package date

import "testing"

func TestParsePrecision(t *testing.T) {
	cases := []struct {
		in   string
		prec Precision
	}{
		{"2022", Year},
		{"2022-05", Month},
		{"2022-05-01", Day},
		{"2022-05-01T10:00Z", Minute},
		{"2022-05-01T10:00:30Z", Second},
		{"2022-05-01T10:00:30.125Z", Fraction},
	}
	for _, c := range cases {
		got, ok := Parse([]byte(c.in))
		if !ok {
			t.Fatalf("Parse(%q) failed", c.in)
		}
		if got.Precision() != c.prec {
			t.Errorf("Parse(%q).Precision() = %v, want %v", c.in, got.Precision(), c.prec)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "20x2", "2022-13-01", "2022-05-01T25:00Z", "not a date"} {
		if _, ok := Parse([]byte(in)); ok {
			t.Errorf("Parse(%q) unexpectedly succeeded", in)
		}
	}
}

func TestEqualAcrossOffsets(t *testing.T) {
	a, ok := Parse([]byte("2022-05-01T10:00:00Z"))
	if !ok {
		t.Fatal("parse a failed")
	}
	b, ok := Parse([]byte("2022-05-01T12:00:00+02:00"))
	if !ok {
		t.Fatal("parse b failed")
	}
	if !a.Equal(b) {
		t.Errorf("expected %v to equal %v (same instant)", a, b)
	}
}

func TestCompare(t *testing.T) {
	a := Date(2022, 1, 1, 0, 0, 0, 0)
	b := Date(2022, 1, 2, 0, 0, 0, 0)
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare produced unexpected ordering")
	}
}
