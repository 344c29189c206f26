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

// CmpOp is a comparison operator.
type CmpOp int

const (
	Equals CmpOp = iota
	NotEquals

	// Less..GreaterEquals must stay contiguous and ordered so that
	// Ordinal can be a single range check.
	Less
	LessEquals
	Greater
	GreaterEquals
)

func (c CmpOp) String() string {
	switch c {
	case Equals:
		return "="
	case NotEquals:
		return "<>"
	case Less:
		return "<"
	case LessEquals:
		return "<="
	case Greater:
		return ">"
	case GreaterEquals:
		return ">="
	default:
		return "<unknown cmp op>"
	}
}

// Ordinal reports whether c is an ordering comparison (as opposed to
// equality), since orderings additionally require the two operands'
// types to be order-comparable.
func (c CmpOp) Ordinal() bool { return c >= Less && c <= GreaterEquals }

// Comparison is a binary comparison expression.
type Comparison struct {
	Op          CmpOp
	Left, Right Node
}

func (c *Comparison) text(dst *strings.Builder) {
	c.Left.text(dst)
	dst.WriteByte(' ')
	dst.WriteString(c.Op.String())
	dst.WriteByte(' ')
	c.Right.text(dst)
}
func (c *Comparison) Equals(o Node) bool {
	oc, ok := o.(*Comparison)
	return ok && oc.Op == c.Op && Equal(c.Left, oc.Left) && Equal(c.Right, oc.Right)
}
func (c *Comparison) Datum() ion.Datum {
	return sexp(c.Op.String(), c.Left, c.Right)
}
func (c *Comparison) walk(v Visitor) { Walk(v, c.Left); Walk(v, c.Right) }

// LogicalOp is a boolean connective.
type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (l LogicalOp) String() string {
	if l == OpAnd {
		return "AND"
	}
	return "OR"
}

// Logical is a boolean AND/OR expression, evaluated with SQL
// three-valued logic (UNKNOWN propagates per the standard truth tables).
type Logical struct {
	Op          LogicalOp
	Left, Right Node
}

func (l *Logical) text(dst *strings.Builder) {
	l.Left.text(dst)
	dst.WriteByte(' ')
	dst.WriteString(l.Op.String())
	dst.WriteByte(' ')
	l.Right.text(dst)
}
func (l *Logical) Equals(o Node) bool {
	ol, ok := o.(*Logical)
	return ok && ol.Op == l.Op && Equal(l.Left, ol.Left) && Equal(l.Right, ol.Right)
}
func (l *Logical) Datum() ion.Datum { return sexp(strings.ToLower(l.Op.String()), l.Left, l.Right) }
func (l *Logical) walk(v Visitor)   { Walk(v, l.Left); Walk(v, l.Right) }

// Not is the unary boolean negation. NOT MISSING is MISSING, NOT NULL
// is NULL, and otherwise it flips a BOOL.
type Not struct {
	Expr Node
}

func (n *Not) text(dst *strings.Builder) { dst.WriteString("NOT "); n.Expr.text(dst) }
func (n *Not) Equals(o Node) bool        { on, ok := o.(*Not); return ok && Equal(n.Expr, on.Expr) }
func (n *Not) Datum() ion.Datum          { return sexp("not", n.Expr) }
func (n *Not) walk(v Visitor)            { Walk(v, n.Expr) }

// ArithOp is a binary arithmetic operator.
type ArithOp int

const (
	AddOp ArithOp = iota
	SubOp
	MulOp
	DivOp
	ModOp
	ConcatOp
)

func (a ArithOp) String() string {
	switch a {
	case AddOp:
		return "+"
	case SubOp:
		return "-"
	case MulOp:
		return "*"
	case DivOp:
		return "/"
	case ModOp:
		return "%"
	case ConcatOp:
		return "||"
	default:
		return "<unknown arith op>"
	}
}

// Arithmetic is a binary arithmetic (or string-concatenation) expression.
type Arithmetic struct {
	Op          ArithOp
	Left, Right Node
}

func (a *Arithmetic) text(dst *strings.Builder) {
	a.Left.text(dst)
	dst.WriteByte(' ')
	dst.WriteString(a.Op.String())
	dst.WriteByte(' ')
	a.Right.text(dst)
}
func (a *Arithmetic) Equals(o Node) bool {
	oa, ok := o.(*Arithmetic)
	return ok && oa.Op == a.Op && Equal(a.Left, oa.Left) && Equal(a.Right, oa.Right)
}
func (a *Arithmetic) Datum() ion.Datum { return sexp(a.Op.String(), a.Left, a.Right) }
func (a *Arithmetic) walk(v Visitor)   { Walk(v, a.Left); Walk(v, a.Right) }

// Negate is unary minus.
type Negate struct {
	Expr Node
}

func (n *Negate) text(dst *strings.Builder) { dst.WriteByte('-'); n.Expr.text(dst) }
func (n *Negate) Equals(o Node) bool        { on, ok := o.(*Negate); return ok && Equal(n.Expr, on.Expr) }
func (n *Negate) Datum() ion.Datum          { return sexp("neg", n.Expr) }
func (n *Negate) walk(v Visitor)            { Walk(v, n.Expr) }

// StringMatchOp distinguishes LIKE from its negation at the AST level
// (the parser folds "NOT ... LIKE ..." into NotLike rather than
// wrapping a Not around StringMatch, matching how BETWEEN/IN do it).
type StringMatchOp int

const (
	Like StringMatchOp = iota
	NotLike
)

// StringMatch is a LIKE/NOT LIKE expression with an optional ESCAPE clause.
type StringMatch struct {
	Op      StringMatchOp
	Expr    Node
	Pattern Node
	Escape  Node // nil if no ESCAPE clause
}

func (s *StringMatch) text(dst *strings.Builder) {
	s.Expr.text(dst)
	if s.Op == NotLike {
		dst.WriteString(" NOT LIKE ")
	} else {
		dst.WriteString(" LIKE ")
	}
	s.Pattern.text(dst)
	if s.Escape != nil {
		dst.WriteString(" ESCAPE ")
		s.Escape.text(dst)
	}
}
func (s *StringMatch) Equals(o Node) bool {
	os, ok := o.(*StringMatch)
	return ok && os.Op == s.Op && Equal(s.Expr, os.Expr) &&
		Equal(s.Pattern, os.Pattern) && Equal(s.Escape, os.Escape)
}
func (s *StringMatch) Datum() ion.Datum {
	op := "like"
	if s.Op == NotLike {
		op = "not-like"
	}
	return sexp(op, s.Expr, s.Pattern, s.Escape)
}
func (s *StringMatch) walk(v Visitor) {
	Walk(v, s.Expr)
	Walk(v, s.Pattern)
	Walk(v, s.Escape)
}

// Between is a BETWEEN/NOT BETWEEN range test.
type Between struct {
	Not        bool
	Expr       Node
	Low, High  Node
}

func (b *Between) text(dst *strings.Builder) {
	b.Expr.text(dst)
	if b.Not {
		dst.WriteString(" NOT BETWEEN ")
	} else {
		dst.WriteString(" BETWEEN ")
	}
	b.Low.text(dst)
	dst.WriteString(" AND ")
	b.High.text(dst)
}
func (b *Between) Equals(o Node) bool {
	ob, ok := o.(*Between)
	return ok && ob.Not == b.Not && Equal(b.Expr, ob.Expr) && Equal(b.Low, ob.Low) && Equal(b.High, ob.High)
}
func (b *Between) Datum() ion.Datum {
	op := "between"
	if b.Not {
		op = "not-between"
	}
	return sexp(op, b.Expr, b.Low, b.High)
}
func (b *Between) walk(v Visitor) { Walk(v, b.Expr); Walk(v, b.Low); Walk(v, b.High) }

// In is an IN/NOT IN membership test against a list of expressions.
type In struct {
	Not   bool
	Expr  Node
	Items []Node
}

func (i *In) text(dst *strings.Builder) {
	i.Expr.text(dst)
	if i.Not {
		dst.WriteString(" NOT IN ")
	} else {
		dst.WriteString(" IN ")
	}
	writeSeq(dst, '(', ')', i.Items)
}
func (i *In) Equals(o Node) bool {
	oi, ok := o.(*In)
	return ok && oi.Not == i.Not && Equal(i.Expr, oi.Expr) && equalNodes(i.Items, oi.Items)
}
func (i *In) Datum() ion.Datum {
	op := "in"
	if i.Not {
		op = "not-in"
	}
	return sexp(op, i.Expr, i.Items)
}
func (i *In) walk(v Visitor) {
	Walk(v, i.Expr)
	for _, it := range i.Items {
		Walk(v, it)
	}
}

// IsOp names what the right-hand side of IS/IS NOT tests for.
type IsOp int

const (
	IsNull IsOp = iota
	IsMissing
	IsType // Of names an ion.Type
)

// Is is an "expr IS [NOT] NULL|MISSING|<type>" test.
type Is struct {
	Not  bool
	Expr Node
	Kind IsOp
	Of   ion.Type
}

func (isx *Is) text(dst *strings.Builder) {
	isx.Expr.text(dst)
	dst.WriteString(" IS ")
	if isx.Not {
		dst.WriteString("NOT ")
	}
	switch isx.Kind {
	case IsNull:
		dst.WriteString("NULL")
	case IsMissing:
		dst.WriteString("MISSING")
	case IsType:
		dst.WriteString(isx.Of.String())
	}
}
func (isx *Is) Equals(o Node) bool {
	oi, ok := o.(*Is)
	return ok && oi.Not == isx.Not && oi.Kind == isx.Kind && oi.Of == isx.Of && Equal(isx.Expr, oi.Expr)
}
func (isx *Is) Datum() ion.Datum {
	var what ion.Datum
	switch isx.Kind {
	case IsNull:
		what = ion.Symbol("null")
	case IsMissing:
		what = ion.Symbol("missing")
	case IsType:
		what = ion.Symbol(isx.Of.String())
	}
	op := "is"
	if isx.Not {
		op = "is-not"
	}
	return sexp(op, isx.Expr, what)
}
func (isx *Is) walk(v Visitor) { Walk(v, isx.Expr) }
