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

// StepKind distinguishes the three kinds of path step.
type StepKind int

const (
	// DotStep is ".field" member access; it produces MISSING (rather
	// than an error) when the base isn't a STRUCT or the field isn't
	// present.
	DotStep StepKind = iota
	// IndexStep is "[expr]" element access on a LIST/SEXP/BAG by
	// position, or a computed-key access on a STRUCT.
	IndexStep
	// WildcardStep is "[*]" or ".*", which fans a single binding out
	// into one binding per element/field -- the source of PartiQL's
	// implicit, path-driven iteration.
	WildcardStep
)

// Step is one link of a Path.
type Step struct {
	Kind  StepKind
	Field string // DotStep
	Index Node   // IndexStep
}

// Path is a chain of field/index/wildcard accesses rooted at an
// expression, e.g. "t.a[0].*".
type Path struct {
	Root  Node
	Steps []Step
}

func (p *Path) text(dst *strings.Builder) {
	p.Root.text(dst)
	for _, s := range p.Steps {
		switch s.Kind {
		case DotStep:
			dst.WriteByte('.')
			dst.WriteString(s.Field)
		case IndexStep:
			dst.WriteByte('[')
			s.Index.text(dst)
			dst.WriteByte(']')
		case WildcardStep:
			dst.WriteString(".*")
		}
	}
}

func (p *Path) Equals(o Node) bool {
	op, ok := o.(*Path)
	if !ok || !Equal(p.Root, op.Root) || len(p.Steps) != len(op.Steps) {
		return false
	}
	for i, s := range p.Steps {
		t := op.Steps[i]
		if s.Kind != t.Kind || s.Field != t.Field || !Equal(s.Index, t.Index) {
			return false
		}
	}
	return true
}

func (p *Path) Datum() ion.Datum {
	items := make([]ion.Datum, 0, len(p.Steps)+2)
	items = append(items, ion.Symbol("path"), p.Root.Datum())
	for _, s := range p.Steps {
		switch s.Kind {
		case DotStep:
			items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("dot"), ion.Symbol(s.Field)}))
		case IndexStep:
			items = append(items, ion.NewSexp([]ion.Datum{ion.Symbol("index"), s.Index.Datum()}))
		case WildcardStep:
			items = append(items, ion.Symbol("wildcard"))
		}
	}
	return ion.NewSexp(items)
}

func (p *Path) walk(v Visitor) {
	Walk(v, p.Root)
	for _, s := range p.Steps {
		if s.Kind == IndexStep {
			Walk(v, s.Index)
		}
	}
}
