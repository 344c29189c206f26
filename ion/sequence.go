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

// Sequence is the common shape of the three container types that hold
// an ordered-or-not run of other Datum values: LIST, SEXP, and BAG.
// Struct is deliberately not a Sequence -- its members are keyed, not
// positional.
type Sequence interface {
	Datum
	Len() int
	At(i int) Datum
	Items() []Datum
}

// List is the LIST container: an ordered, positionally-significant
// sequence.
type List struct {
	items []Datum
}

// NewList builds a List from items. The slice is retained, not copied.
func NewList(items []Datum) List { return List{items: items} }

func (List) Type() Type        { return ListType }
func (l List) Len() int        { return len(l.items) }
func (l List) At(i int) Datum  { return l.items[i] }
func (l List) Items() []Datum  { return l.items }

// Sexp is the SEXP container: an ordered sequence whose chief use in
// this module is as the AST's own on-the-wire shape, "(op arg ...)".
// It is distinguished from List so that printers and PTS equality can
// tell the two apart even though they share a representation.
type Sexp struct {
	items []Datum
}

// NewSexp builds a Sexp from items. The slice is retained, not copied.
func NewSexp(items []Datum) Sexp { return Sexp{items: items} }

func (Sexp) Type() Type       { return SexpType }
func (s Sexp) Len() int       { return len(s.items) }
func (s Sexp) At(i int) Datum { return s.items[i] }
func (s Sexp) Items() []Datum { return s.items }

// Op returns the leading symbol of a Sexp built as an AST node
// ("(select ...)" -> "select"), or "" if the Sexp is empty or its
// head is not a Symbol.
func (s Sexp) Op() string {
	if len(s.items) == 0 {
		return ""
	}
	if sym, ok := s.items[0].(Symbol); ok {
		return string(sym)
	}
	return ""
}

// Args returns the Sexp's items after the leading operator symbol.
func (s Sexp) Args() []Datum {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[1:]
}

// Bag is the BAG container: an unordered multiset, the natural shape
// of a query result and of any FROM source. Its element order is not
// semantically meaningful, though it is preserved as written for
// reproducibility of SELECT * and text rendering.
type Bag struct {
	items []Datum
}

// NewBag builds a Bag from items. The slice is retained, not copied.
func NewBag(items []Datum) Bag { return Bag{items: items} }

func (Bag) Type() Type       { return BagType }
func (b Bag) Len() int       { return len(b.items) }
func (b Bag) At(i int) Datum { return b.items[i] }
func (b Bag) Items() []Datum { return b.items }
