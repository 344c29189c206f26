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
	"strconv"
	"strings"

	"github.com/partiql-core/pql/ion"
)

// Call is a builtin function invocation, e.g. UPPER(x) or
// SUBSTRING(s, 1, 3) after the parser has desugared its special forms
// down to positional arguments.
type Call struct {
	Name string
	Args []Node
}

func (c *Call) text(dst *strings.Builder) {
	dst.WriteString(c.Name)
	writeSeq(dst, '(', ')', c.Args)
}
func (c *Call) Equals(o Node) bool {
	oc, ok := o.(*Call)
	return ok && strings.EqualFold(c.Name, oc.Name) && equalNodes(c.Args, oc.Args)
}
func (c *Call) Datum() ion.Datum {
	items := make([]ion.Datum, 0, len(c.Args)+2)
	items = append(items, ion.Symbol("call"), ion.Symbol(strings.ToUpper(c.Name)))
	for _, a := range c.Args {
		items = append(items, a.Datum())
	}
	return ion.NewSexp(items)
}
func (c *Call) walk(v Visitor) {
	for _, a := range c.Args {
		Walk(v, a)
	}
}

// Cast is a CAST(expr AS type[(params)]) expression. Params holds the
// target type's parenthesized integer parameters (e.g. VARCHAR(10)'s
// 10), already validated for arity by the parser.
type Cast struct {
	Expr   Node
	To     ion.Type
	Params []int
}

func (c *Cast) text(dst *strings.Builder) {
	dst.WriteString("CAST(")
	c.Expr.text(dst)
	dst.WriteString(" AS ")
	dst.WriteString(c.To.String())
	if len(c.Params) > 0 {
		dst.WriteByte('(')
		for i, p := range c.Params {
			if i > 0 {
				dst.WriteString(", ")
			}
			dst.WriteString(strconv.Itoa(p))
		}
		dst.WriteByte(')')
	}
	dst.WriteByte(')')
}
func (c *Cast) Equals(o Node) bool {
	oc, ok := o.(*Cast)
	if !ok || oc.To != c.To || len(oc.Params) != len(c.Params) || !Equal(c.Expr, oc.Expr) {
		return false
	}
	for i, p := range c.Params {
		if oc.Params[i] != p {
			return false
		}
	}
	return true
}
func (c *Cast) Datum() ion.Datum {
	params := make([]ion.Datum, len(c.Params))
	for i, p := range c.Params {
		params[i] = ion.Int(p)
	}
	return sexp("cast", c.Expr, ion.Symbol(c.To.String()), ion.NewList(params))
}
func (c *Cast) walk(v Visitor) { Walk(v, c.Expr) }
