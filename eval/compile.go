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

package eval

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/partiql-core/pql/expr"
	"github.com/partiql-core/pql/expr/partiql"
	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
)

// Executable is a compiled query: parsed once by Compile, then run at
// most once by Run. §6.2 calls an evaluator session single-use -- a
// second Run on the same Executable is a programmer error, not a
// query-data error, so it's reported as EVALUATOR_GENERIC rather than
// silently re-running.
type Executable struct {
	id   uuid.UUID
	node expr.Node

	mu   sync.Mutex
	used bool
}

// Compile parses src and returns an Executable bound to a fresh
// session id, ready for a single call to Run.
func Compile(src string) (*Executable, error) {
	n, err := partiql.Parse(src)
	if err != nil {
		return nil, err
	}
	return &Executable{id: uuid.New(), node: n}, nil
}

// ID reports the session id assigned at Compile time, the value
// stamped onto any EVALUATOR_* error this Executable's Run produces.
func (x *Executable) ID() uuid.UUID {
	return x.id
}

// Run binds root as the query's root environment and evaluates the
// compiled query exactly once. A second call fails outright: an
// evaluator session is single-use per §6.2.
func (x *Executable) Run(root map[string]ion.Datum) (ion.Datum, error) {
	x.mu.Lock()
	if x.used {
		x.mu.Unlock()
		return nil, perr.New(perr.EvaluatorGeneric, "evaluator session already used",
			perr.SessionID, x.id.String())
	}
	x.used = true
	x.mu.Unlock()

	// Bind root's names in sorted order rather than Go's randomized map
	// iteration order, so that a root environment's own snapshot into
	// the outermost Scope -- and anything that depends on Scope.Names()
	// ordering, such as "SELECT *" over the root -- is reproducible
	// across runs.
	scope := NewScope()
	names := maps.Keys(root)
	slices.Sort(names)
	for _, name := range names {
		scope.Bind(name, false, Of(root[name]))
	}
	env := NewEnv(scope)

	v, err := Eval(x.node, env)
	if err != nil {
		if pe, ok := err.(*perr.Error); ok {
			if pe.Properties == nil {
				pe.Properties = make(map[perr.PropKey]any, 1)
			}
			pe.Properties[perr.SessionID] = x.id.String()
		}
		return nil, err
	}
	return v.Datum, nil
}
