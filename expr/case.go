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
	"strings"

	"github.com/partiql-core/pql/ion"
)

// CaseLimb is one WHEN/THEN arm of a Case.
type CaseLimb struct {
	When Node
	Then Node
}

// Case is a CASE expression. In the "simple" form Value is non-nil
// and each limb's When is compared against it; in the "searched" form
// Value is nil and each limb's When is itself a boolean expression.
type Case struct {
	Value Node // nil for the searched form
	Limbs []CaseLimb
	Else  Node // nil if no ELSE clause
}

func (c *Case) text(dst *strings.Builder) {
	dst.WriteString("CASE")
	if c.Value != nil {
		dst.WriteByte(' ')
		c.Value.text(dst)
	}
	for _, l := range c.Limbs {
		dst.WriteString(" WHEN ")
		l.When.text(dst)
		dst.WriteString(" THEN ")
		l.Then.text(dst)
	}
	if c.Else != nil {
		dst.WriteString(" ELSE ")
		c.Else.text(dst)
	}
	dst.WriteString(" END")
}

func (c *Case) Equals(o Node) bool {
	oc, ok := o.(*Case)
	if !ok || !Equal(c.Value, oc.Value) || !Equal(c.Else, oc.Else) || len(c.Limbs) != len(oc.Limbs) {
		return false
	}
	for i, l := range c.Limbs {
		if !Equal(l.When, oc.Limbs[i].When) || !Equal(l.Then, oc.Limbs[i].Then) {
			return false
		}
	}
	return true
}

func (c *Case) Datum() ion.Datum {
	items := []ion.Datum{ion.Symbol("case")}
	if c.Value != nil {
		items = append(items, c.Value.Datum())
	} else {
		items = append(items, ion.Missing)
	}
	for _, l := range c.Limbs {
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("when"), l.When.Datum(), l.Then.Datum()}))
	}
	if c.Else != nil {
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("else"), c.Else.Datum()}))
	}
	return ion.NewSexp(items)
}

func (c *Case) walk(v Visitor) {
	Walk(v, c.Value)
	for _, l := range c.Limbs {
		Walk(v, l.When)
		Walk(v, l.Then)
	}
	Walk(v, c.Else)
}
