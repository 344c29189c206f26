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

import "github.com/partiql-core/pql/perr"

// likeMatch reports whether s matches pattern under PartiQL's LIKE
// semantics (§4.3): '_' matches any single code point, '%' matches
// any run (including empty) of code points, matching is case
// sensitive, and the match is anchored over the whole string. When
// escape is non-empty it names the single code point that must
// precede '_', '%', or itself to be treated literally; an escape
// immediately preceding anything else is rejected (the Design Notes'
// open question is resolved in favor of rejecting rather than
// treating it as a literal passthrough).
func likeMatch(s, pattern, escape string) (bool, error) {
	var esc rune
	hasEsc := false
	if escape != "" {
		runes := []rune(escape)
		if len(runes) != 1 {
			return false, perr.New(perr.EvaluatorInvalidArguments, "ESCAPE must be a single code point")
		}
		esc = runes[0]
		hasEsc = true
	}
	pat, err := compilePattern(pattern, esc, hasEsc)
	if err != nil {
		return false, err
	}
	return matchPattern([]rune(s), pat), nil
}

type patKind int

const (
	patLiteral patKind = iota
	patAny   // '_'
	patRun   // '%'
)

type patElem struct {
	kind patKind
	r    rune // for patLiteral
}

func compilePattern(pattern string, esc rune, hasEsc bool) ([]patElem, error) {
	var out []patElem
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if hasEsc && r == esc {
			i++
			if i >= len(runes) {
				return nil, perr.New(perr.EvaluatorInvalidArguments, "ESCAPE character at end of pattern")
			}
			next := runes[i]
			if next != '_' && next != '%' && next != esc {
				return nil, perr.New(perr.EvaluatorInvalidArguments, "ESCAPE character must precede '_', '%', or itself")
			}
			out = append(out, patElem{kind: patLiteral, r: next})
			continue
		}
		switch r {
		case '_':
			out = append(out, patElem{kind: patAny})
		case '%':
			out = append(out, patElem{kind: patRun})
		default:
			out = append(out, patElem{kind: patLiteral, r: r})
		}
	}
	return out, nil
}

// matchPattern is a standard backtracking glob matcher over compiled
// pattern elements; PartiQL's LIKE patterns are short enough in
// practice that this isn't worth a DFA.
func matchPattern(s []rune, pat []patElem) bool {
	si, pi := 0, 0
	starIdx, starMatch := -1, -1
	for si < len(s) {
		if pi < len(pat) {
			switch pat[pi].kind {
			case patLiteral:
				if pat[pi].r == s[si] {
					si++
					pi++
					continue
				}
			case patAny:
				si++
				pi++
				continue
			case patRun:
				starIdx = pi
				starMatch = si
				pi++
				continue
			}
		}
		if starIdx != -1 {
			starMatch++
			si = starMatch
			pi = starIdx + 1
			continue
		}
		return false
	}
	for pi < len(pat) && pat[pi].kind == patRun {
		pi++
	}
	return pi == len(pat)
}
