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

// Binding is one projected column of a SELECT list: "expr [AS alias]".
type Binding struct {
	Expr Node
	As   string // "" if unaliased
}

func (b Binding) text(dst *strings.Builder) {
	b.Expr.text(dst)
	if b.As != "" {
		dst.WriteString(" AS ")
		dst.WriteString(b.As)
	}
}

// JoinKind is the kind of a FROM-clause join.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
	CrossJoin
)

func (k JoinKind) String() string {
	switch k {
	case InnerJoin:
		return "JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	default:
		return "<unknown join>"
	}
}

// FromItem is a single source in a FROM clause: an expression (often
// a path into an outer binding) with optional value and positional
// aliases, and whether it should be iterated as UNPIVOT.
type FromItem struct {
	Source  Node
	As      string // value alias, "" if none given
	At      string // positional alias, "" if none given
	Unpivot bool
}

// Join attaches a further FROM-clause source to the item(s) before it.
type Join struct {
	Kind JoinKind
	Item FromItem
	On   Node // nil for CrossJoin
}

// Select is a SELECT query, covering the full
// "SELECT proj FROM ... [WHERE] [GROUP BY] [HAVING] [ORDER BY] [LIMIT]"
// pipeline. Star, when true, means "SELECT *" and Project is unused.
type Select struct {
	Star    bool
	Project []Binding

	From  FromItem
	Joins []Join

	Where Node // nil if absent

	GroupBy []Node
	Having  Node // nil if absent

	OrderBy []OrderItem

	Limit *int
}

// OrderItem is one key of an ORDER BY clause.
type OrderItem struct {
	Expr Node
	Desc bool
}

func (s *Select) text(dst *strings.Builder) {
	dst.WriteString("SELECT ")
	if s.Star {
		dst.WriteByte('*')
	} else {
		for i, b := range s.Project {
			if i > 0 {
				dst.WriteString(", ")
			}
			b.text(dst)
		}
	}
	dst.WriteString(" FROM ")
	writeFromItem(dst, s.From)
	for _, j := range s.Joins {
		dst.WriteByte(' ')
		dst.WriteString(j.Kind.String())
		dst.WriteByte(' ')
		writeFromItem(dst, j.Item)
		if j.On != nil {
			dst.WriteString(" ON ")
			j.On.text(dst)
		}
	}
	if s.Where != nil {
		dst.WriteString(" WHERE ")
		s.Where.text(dst)
	}
	if len(s.GroupBy) > 0 {
		dst.WriteString(" GROUP BY ")
		for i, g := range s.GroupBy {
			if i > 0 {
				dst.WriteString(", ")
			}
			g.text(dst)
		}
	}
	if s.Having != nil {
		dst.WriteString(" HAVING ")
		s.Having.text(dst)
	}
	if len(s.OrderBy) > 0 {
		dst.WriteString(" ORDER BY ")
		for i, o := range s.OrderBy {
			if i > 0 {
				dst.WriteString(", ")
			}
			o.Expr.text(dst)
			if o.Desc {
				dst.WriteString(" DESC")
			}
		}
	}
	if s.Limit != nil {
		dst.WriteString(" LIMIT ")
		dst.WriteString(strconv.Itoa(*s.Limit))
	}
}

func writeFromItem(dst *strings.Builder, f FromItem) {
	if f.Unpivot {
		dst.WriteString("UNPIVOT ")
	}
	f.Source.text(dst)
	if f.As != "" {
		dst.WriteString(" AS ")
		dst.WriteString(f.As)
	}
	if f.At != "" {
		dst.WriteString(" AT ")
		dst.WriteString(f.At)
	}
}

func (s *Select) Equals(o Node) bool {
	os, ok := o.(*Select)
	if !ok {
		return false
	}
	return sameSelect(s, os)
}

func sameSelect(s, o *Select) bool {
	if s.Star != o.Star || len(s.Project) != len(o.Project) || len(s.Joins) != len(o.Joins) ||
		len(s.GroupBy) != len(o.GroupBy) || len(s.OrderBy) != len(o.OrderBy) {
		return false
	}
	for i, b := range s.Project {
		if b.As != o.Project[i].As || !Equal(b.Expr, o.Project[i].Expr) {
			return false
		}
	}
	if !sameFromItem(s.From, o.From) {
		return false
	}
	for i, j := range s.Joins {
		oj := o.Joins[i]
		if j.Kind != oj.Kind || !sameFromItem(j.Item, oj.Item) || !Equal(j.On, oj.On) {
			return false
		}
	}
	if !Equal(s.Where, o.Where) || !Equal(s.Having, o.Having) {
		return false
	}
	for i, g := range s.GroupBy {
		if !Equal(g, o.GroupBy[i]) {
			return false
		}
	}
	for i, ord := range s.OrderBy {
		if ord.Desc != o.OrderBy[i].Desc || !Equal(ord.Expr, o.OrderBy[i].Expr) {
			return false
		}
	}
	if (s.Limit == nil) != (o.Limit == nil) {
		return false
	}
	if s.Limit != nil && *s.Limit != *o.Limit {
		return false
	}
	return true
}

func sameFromItem(a, b FromItem) bool {
	return a.As == b.As && a.At == b.At && a.Unpivot == b.Unpivot && Equal(a.Source, b.Source)
}

func (s *Select) Datum() ion.Datum {
	items := []ion.Datum{ion.Symbol("select")}
	if s.Star {
		items = append(items, ion.Symbol("*"))
	} else {
		proj := make([]ion.Datum, len(s.Project))
		for i, b := range s.Project {
			proj[i] = ion.NewSexp([]ion.Datum{ion.Symbol("as"), b.Expr.Datum(), ion.Symbol(b.As)})
		}
		items = append(items, ion.NewList(proj))
	}
	items = append(items, fromItemDatum(s.From))
	for _, j := range s.Joins {
		on := ion.Datum(ion.Missing)
		if j.On != nil {
			on = j.On.Datum()
		}
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("join"), ion.Symbol(j.Kind.String()), fromItemDatum(j.Item), on}))
	}
	if s.Where != nil {
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("where"), s.Where.Datum()}))
	}
	if len(s.GroupBy) > 0 {
		keys := make([]ion.Datum, len(s.GroupBy))
		for i, g := range s.GroupBy {
			keys[i] = g.Datum()
		}
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("group-by"), ion.NewList(keys)}))
	}
	if s.Having != nil {
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("having"), s.Having.Datum()}))
	}
	if len(s.OrderBy) > 0 {
		keys := make([]ion.Datum, len(s.OrderBy))
		for i, o := range s.OrderBy {
			dir := ion.Symbol("asc")
			if o.Desc {
				dir = ion.Symbol("desc")
			}
			keys[i] = ion.NewSexp([]ion.Datum{o.Expr.Datum(), dir})
		}
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("order-by"), ion.NewList(keys)}))
	}
	if s.Limit != nil {
		items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("limit"), ion.Int(*s.Limit)}))
	}
	return ion.NewSexp(items)
}

func fromItemDatum(f FromItem) ion.Datum {
	items := []ion.Datum{ion.Symbol("from"), f.Source.Datum(), ion.Symbol(f.As), ion.Symbol(f.At), ion.Bool(f.Unpivot)}
	return ion.NewSexp(items)
}

func (s *Select) walk(v Visitor) {
	if !s.Star {
		for _, b := range s.Project {
			Walk(v, b.Expr)
		}
	}
	Walk(v, s.From.Source)
	for _, j := range s.Joins {
		Walk(v, j.Item.Source)
		Walk(v, j.On)
	}
	Walk(v, s.Where)
	for _, g := range s.GroupBy {
		Walk(v, g)
	}
	Walk(v, s.Having)
	for _, o := range s.OrderBy {
		Walk(v, o.Expr)
	}
}

// Values is a "VALUES (...), (...)" row constructor query.
type Values struct {
	Rows [][]Node
}

func (vl *Values) text(dst *strings.Builder) {
	dst.WriteString("VALUES ")
	for i, row := range vl.Rows {
		if i > 0 {
			dst.WriteString(", ")
		}
		writeSeq(dst, '(', ')', row)
	}
}
func (vl *Values) Equals(o Node) bool {
	ov, ok := o.(*Values)
	if !ok || len(ov.Rows) != len(vl.Rows) {
		return false
	}
	for i, row := range vl.Rows {
		if !equalNodes(row, ov.Rows[i]) {
			return false
		}
	}
	return true
}
func (vl *Values) Datum() ion.Datum {
	rows := make([]ion.Datum, len(vl.Rows))
	for i, row := range vl.Rows {
		items := make([]ion.Datum, len(row))
		for j, n := range row {
			items[j] = n.Datum()
		}
		rows[i] = ion.NewList(items)
	}
	return sexp("values", ion.NewList(rows))
}
func (vl *Values) walk(v Visitor) {
	for _, row := range vl.Rows {
		for _, n := range row {
			Walk(v, n)
		}
	}
}
