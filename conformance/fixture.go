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

// Package conformance is the text-fixture conformance harness of §6.3:
// it drives eval.Compile/Run over YAML-described scenarios and judges
// the result with pts.Equal, the conformance oracle. It is kept
// separate from pts itself so that pts (the equality predicate eval's
// own GROUP BY depends on) stays a leaf package with no dependency on
// the evaluator it is also used to test.
package conformance

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/partiql-core/pql/eval"
	"github.com/partiql-core/pql/ion"
	"github.com/partiql-core/pql/perr"
	"github.com/partiql-core/pql/pts"
)

// Scenario is one conformance case: a query, its root bindings (each
// given as source text in the same query language, per §6.3's "queries
// and expected outputs are expressed in the embedding data text form"),
// and the expected result. ExpectError, when set, names the perr.Code
// the query is expected to fail with instead of producing a result.
type Scenario struct {
	Name        string            `json:"name"`
	Query       string            `json:"query"`
	Bindings    map[string]string `json:"bindings,omitempty"`
	Expected    string            `json:"expected,omitempty"`
	ExpectError string            `json:"expectError,omitempty"`
}

// LoadScenarios reads every *.yaml/*.yml file in dir, unmarshaling
// each into a slice of Scenario (a file may hold one scenario or a
// YAML list of several).
func LoadScenarios(dir string) ([]Scenario, error) {
	var out []Scenario
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var list []Scenario
		if err := yaml.Unmarshal(data, &list); err != nil {
			var one Scenario
			if err2 := yaml.Unmarshal(data, &one); err2 != nil {
				return nil, fmt.Errorf("%s: %w", e.Name(), err)
			}
			list = []Scenario{one}
		}
		out = append(out, list...)
	}
	return out, nil
}

// evalText parses and evaluates a standalone expression against an
// empty root environment, the same text form §6.3 uses for a
// scenario's bindings and expected value.
func evalText(src string) (ion.Datum, error) {
	exe, err := eval.Compile(src)
	if err != nil {
		return nil, err
	}
	return exe.Run(nil)
}

// Run executes one Scenario and reports whether its actual result (or
// failure) matches what the scenario declares, using PTS equality
// (§6.3's conformance oracle) to compare the produced value against
// Expected.
func Run(s Scenario) (bool, error) {
	root := make(map[string]ion.Datum, len(s.Bindings))
	for name, text := range s.Bindings {
		d, err := evalText(text)
		if err != nil {
			return false, fmt.Errorf("binding %q: %w", name, err)
		}
		root[name] = d
	}

	exe, err := eval.Compile(s.Query)
	if err != nil {
		return matchParseError(s, err)
	}
	result, runErr := exe.Run(root)
	if runErr != nil {
		return matchParseError(s, runErr)
	}
	if s.ExpectError != "" {
		return false, fmt.Errorf("expected error %s, query succeeded", s.ExpectError)
	}

	want, err := evalText(s.Expected)
	if err != nil {
		return false, fmt.Errorf("expected value %q: %w", s.Expected, err)
	}
	return pts.Equal(result, want), nil
}

func matchParseError(s Scenario, err error) (bool, error) {
	code := errCode(err)
	if s.ExpectError == "" || code != s.ExpectError {
		return false, err
	}
	return true, nil
}

func errCode(err error) string {
	if pe, ok := err.(*perr.Error); ok {
		return string(pe.Code)
	}
	return ""
}
