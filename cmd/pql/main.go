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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/partiql-core/pql/eval"
	"github.com/partiql-core/pql/ion"
)

var (
	dashe string
	dashf string
)

func init() {
	flag.StringVar(&dashe, "e", "", "execute a single query and exit")
	flag.StringVar(&dashf, "f", "", "read a query from a file and exit")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

// run compiles and evaluates src against an empty root environment,
// printing its rendered result or logging its failure -- the one-shot
// entry point exercised by -e/-f and by each statement read in repl.
func run(src string) {
	exe, err := eval.Compile(src)
	if err != nil {
		log.Printf("parse error: %s", err)
		return
	}
	result, err := exe.Run(map[string]ion.Datum{})
	if err != nil {
		log.Printf("evaluation error: %s", err)
		return
	}
	fmt.Println(ion.Render(result))
}

// repl reads statements from stdin, gathering lines until one ends
// with ';',
// compiling and running each against a fresh Executable -- an
// evaluator session is single-use, so every statement gets its own
// eval.Compile call rather than reusing one across the loop.
func repl() {
	scanner := bufio.NewScanner(os.Stdin)
	var buf strings.Builder
	fmt.Print("pql> ")
	for scanner.Scan() {
		line := scanner.Text()
		buf.WriteString(line)
		buf.WriteByte('\n')
		if !strings.HasSuffix(strings.TrimSpace(line), ";") {
			continue
		}
		stmt := strings.TrimSuffix(strings.TrimSpace(buf.String()), ";")
		buf.Reset()
		if strings.TrimSpace(stmt) != "" {
			run(stmt)
		}
		fmt.Print("pql> ")
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		log.Printf("reading stdin: %s", err)
	}
	fmt.Println()
}

func main() {
	flag.Parse()
	switch {
	case dashe != "":
		run(dashe)
	case dashf != "":
		data, err := os.ReadFile(dashf)
		if err != nil {
			exitf("reading %s: %s\n", dashf, err)
		}
		run(string(data))
	default:
		repl()
	}
}
