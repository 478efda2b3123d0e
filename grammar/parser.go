package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

func buildParser() (*participle.Parser[Program], error) {
	return participle.Build[Program](
		participle.Lexer(CflowLexer),
		participle.Elide("Whitespace", "Comment", "DocComment"),
		participle.UseLookahead(3),
	)
}

// ParseFile reads path and parses it as a translation unit.
func ParseFile(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses src, using filename only for diagnostics.
func ParseSource(filename, src string) (*Program, error) {
	parser, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	program, err := parser.ParseString(filename, src)
	if err != nil {
		reportParseError(src, err)
		return nil, err
	}
	return program, nil
}

// reportParseError prints a caret-style parse error message in the style of
// the compiler's other diagnostics.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
