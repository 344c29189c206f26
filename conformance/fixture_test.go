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

package conformance

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunScenarioPass(t *testing.T) {
	s := Scenario{
		Name:     "simple-arithmetic",
		Query:    "1 + 2",
		Expected: "3",
	}
	ok, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Errorf("scenario %q did not pass", s.Name)
	}
}

func TestRunScenarioDecimalScaleAgnostic(t *testing.T) {
	s := Scenario{
		Name:     "decimal-pts-equality",
		Query:    "1.0",
		Expected: "1.00",
	}
	ok, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Errorf("1.0 should PTS-equal 1.00 regardless of scale")
	}
}

func TestRunScenarioBindings(t *testing.T) {
	s := Scenario{
		Name:     "with-bindings",
		Query:    "a + b",
		Bindings: map[string]string{"a": "2", "b": "3"},
		Expected: "5",
	}
	ok, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Errorf("scenario %q did not pass", s.Name)
	}
}

func TestRunScenarioFail(t *testing.T) {
	s := Scenario{
		Name:     "mismatch",
		Query:    "1 + 2",
		Expected: "4",
	}
	ok, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ok {
		t.Errorf("scenario %q unexpectedly passed", s.Name)
	}
}

func TestRunScenarioExpectedErrorCode(t *testing.T) {
	s := Scenario{
		Name:        "overflow",
		Query:       "CAST('99999999999999999999' AS INT)",
		ExpectError: "EVALUATOR_INT_OVERFLOW",
	}
	ok, err := Run(s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Errorf("scenario %q should have matched its expected error code", s.Name)
	}
}

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	data := []byte(`
- name: case1
  query: "1 + 1"
  expected: "2"
- name: case2
  query: "2 + 2"
  expected: "4"
`)
	if err := os.WriteFile(filepath.Join(dir, "basic.yaml"), data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	scenarios, err := LoadScenarios(dir)
	if err != nil {
		t.Fatalf("LoadScenarios: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("len(scenarios) = %d, want 2", len(scenarios))
	}
	for _, s := range scenarios {
		ok, err := Run(s)
		if err != nil {
			t.Fatalf("Run(%s): %v", s.Name, err)
		}
		if !ok {
			t.Errorf("scenario %q did not pass", s.Name)
		}
	}
}
