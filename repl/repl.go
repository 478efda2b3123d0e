// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"cflow/grammar"
	"cflow/internal/ast"
	"cflow/internal/backend"
	"cflow/internal/cfgbuild"
	"cflow/internal/diag"
	"cflow/internal/simplify"
	"cflow/internal/typecheck"
)

const PROMPT = ">> "

// Start reads one function definition at a time from in, terminated by a
// blank line, builds its control-flow graph, simplifies it and prints the
// resulting backend IR (or the diagnostics, if simplification fails).
func Start(in io.Reader) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print(PROMPT)
		source, eof := readBlock(scanner)
		if strings.TrimSpace(source) != "" {
			evalBlock(source)
		}
		if eof {
			return
		}
	}
}

// readBlock collects lines up to the next blank line or end of input,
// reporting whether input is exhausted.
func readBlock(scanner *bufio.Scanner) (string, bool) {
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			return strings.Join(lines, "\n"), false
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), true
}

func evalBlock(source string) {
	prog, err := grammar.ParseSource("<repl>", source)
	if err != nil {
		fmt.Println(err)
		return
	}

	typed, err := ast.From(prog)
	if err != nil {
		fmt.Println(err)
		return
	}

	if _, err := typecheck.Check(typed); err != nil {
		fmt.Println(err)
		return
	}

	cfgFile, err := cfgbuild.BuildFile("<repl>", typed)
	if err != nil {
		fmt.Println(err)
		return
	}

	sink := diag.NewCollectingSink()
	simplify.SimplifyFile(cfgFile, sink)
	for _, d := range sink.Diagnostics {
		fmt.Printf("%s[%s]: %s at %s\n", d.Severity, d.Code, d.Message, d.Location)
	}
	if sink.HasError() {
		return
	}

	for _, g := range cfgFile.Graphs {
		fn := backend.Lower(g)
		fmt.Print(backend.Print(fn))
	}
}
