// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"

	"cflow/grammar"
	"cflow/internal/ast"
	"cflow/internal/backend"
	"cflow/internal/cfgbuild"
	"cflow/internal/config"
	"cflow/internal/diag"
	"cflow/internal/simplify"
	"cflow/internal/typecheck"
)

const usage = `Usage: cflowc [options] FILE

Options:
  -o OUTFILE            Write output to OUTFILE
  -O0 | -O1 | -O2 | -O3 Optimization level (default -O1; accepted, no effect)
  -v, --verbose         Verbose output (accepted, no effect)
  -vv                   Very verbose output (accepted, no effect)
  --tokenize-only       Stop after lexing
  --parse-only          Stop after parsing
  --linker-flags STR    Extra linker flags (accepted, no effect)
  --update              Not implemented in this build
  --help                Show this message
`

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if opts == nil {
		fmt.Print(usage)
		return
	}
	run(opts)
}

func parseArgs(args []string) (*config.Options, error) {
	opts := &config.Options{OptLevel: config.O1}
	var linkerFlagsSet bool

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--help":
			return nil, nil
		case arg == "--update":
			return nil, fmt.Errorf("--update is not implemented")
		case arg == "-o":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-o requires an argument")
			}
			opts.OutputPath = args[i]
		case arg == "-O0":
			opts.OptLevel = config.O0
		case arg == "-O1":
			opts.OptLevel = config.O1
		case arg == "-O2":
			opts.OptLevel = config.O2
		case arg == "-O3":
			opts.OptLevel = config.O3
		case arg == "--verbose" || arg == "-v":
			opts.Verbosity = config.Verbose
		case arg == "-vv":
			opts.Verbosity = config.VeryVerbose
		case arg == "--tokenize-only":
			opts.TokenizeOnly = true
		case arg == "--parse-only":
			opts.ParseOnly = true
		case arg == "--linker-flags":
			if linkerFlagsSet {
				return nil, fmt.Errorf("--linker-flags given more than once")
			}
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("--linker-flags requires an argument")
			}
			opts.LinkerFlags = args[i]
			linkerFlagsSet = true
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown option %q", arg)
		default:
			if opts.InputPath != "" {
				return nil, fmt.Errorf("only one input file may be given")
			}
			opts.InputPath = arg
		}
	}

	if opts.InputPath == "" {
		return nil, fmt.Errorf("no input file given")
	}
	if opts.TokenizeOnly && opts.ParseOnly {
		return nil, fmt.Errorf("--tokenize-only and --parse-only are mutually exclusive")
	}
	return opts, nil
}

func run(opts *config.Options) {
	source, err := os.ReadFile(opts.InputPath)
	if err != nil {
		color.Red("cflowc: %s", err)
		os.Exit(1)
	}

	if opts.TokenizeOnly {
		tokenizeOnly(opts.InputPath, string(source))
		return
	}

	prog, err := grammar.ParseFile(opts.InputPath)
	if err != nil {
		os.Exit(1)
	}
	if opts.ParseOnly {
		fmt.Printf("parsed %d top-level item(s)\n", len(prog.Items))
		return
	}

	typed, err := ast.From(prog)
	if err != nil {
		color.Red("cflowc: %s", err)
		os.Exit(1)
	}

	if _, err := typecheck.Check(typed); err != nil {
		color.Red("cflowc: %s", err)
		os.Exit(1)
	}

	cfgFile, err := cfgbuild.BuildFile(opts.InputPath, typed)
	if err != nil {
		color.Red("cflowc: %s", err)
		os.Exit(1)
	}

	sink := diag.NewConsoleSink(opts.InputPath, string(source))
	simplify.SimplifyFile(cfgFile, sink)
	if sink.HasError() {
		os.Exit(1)
	}

	var out strings.Builder
	for _, g := range cfgFile.Graphs {
		fn := backend.Lower(g)
		out.WriteString(backend.Print(fn))
	}

	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, []byte(out.String()), 0o644); err != nil {
			color.Red("cflowc: %s", err)
			os.Exit(1)
		}
		return
	}
	fmt.Print(out.String())
}

func tokenizeOnly(filename, source string) {
	lex, err := lexer.LexString(grammar.CflowLexer, filename, source)
	if err != nil {
		color.Red("cflowc: %s", err)
		os.Exit(1)
	}
	for {
		tok, err := lex.Next()
		if err != nil {
			color.Red("cflowc: %s", err)
			os.Exit(1)
		}
		if tok.EOF() {
			return
		}
		fmt.Printf("%-12s %q\n", tok.Type, tok.Value)
	}
}
