// Package diag is the diagnostic sink the simplification engine reports
// through: warnings that never stop the pipeline, and hard
// errors that do. It replaces the "fail_with_error exits the process"
// design of the original tool with an interface, so the same engine can
// back a batch CLI (ConsoleSink, which still os.Exits) or a language
// server / test suite (CollectingSink, which just records).
package diag

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"cflow/internal/cfg"
)

// Severity distinguishes a warning from a hard error.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one reported warning or error.
type Diagnostic struct {
	Severity Severity
	Code     string
	Location cfg.Location
	Message  string
}

// Sink receives diagnostics as the engine runs.
type Sink interface {
	Warning(loc cfg.Location, code, format string, args ...any)
	Error(loc cfg.Location, code, format string, args ...any)
	HasError() bool
}

// ConsoleSink prints diagnostics to stderr in a colorized style, followed
// by the offending source line with a caret under the column, and terminates the process on the first hard error —
// matching fail_with_error's "print and exit" behavior in the tool this
// was ported from.
type ConsoleSink struct {
	filename string
	source   string
	hasError bool
}

// NewConsoleSink builds a sink that reports against the given file's
// source text, used to print the offending source line under a location.
func NewConsoleSink(filename, source string) *ConsoleSink {
	return &ConsoleSink{filename: filename, source: source}
}

func (s *ConsoleSink) Warning(loc cfg.Location, code, format string, args ...any) {
	s.print(SeverityWarning, loc, code, fmt.Sprintf(format, args...))
}

func (s *ConsoleSink) Error(loc cfg.Location, code, format string, args ...any) {
	s.hasError = true
	s.print(SeverityError, loc, code, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (s *ConsoleSink) HasError() bool { return s.hasError }

func (s *ConsoleSink) print(sev Severity, loc cfg.Location, code, message string) {
	levelColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	if sev == SeverityError {
		levelColor = color.New(color.FgRed, color.Bold).SprintFunc()
	}
	bold := color.New(color.Bold).SprintFunc()
	if code != "" {
		fmt.Fprintf(os.Stderr, "%s[%s]: %s\n", levelColor(sev.String()), code, message)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", levelColor(sev.String()), message)
	}
	fmt.Fprintf(os.Stderr, "  %s %s\n", color.New(color.Faint).Sprint("-->"), loc)
	printSourceLine(bold, loc, s.source)
}

func printSourceLine(bold func(...any) string, loc cfg.Location, source string) {
	if source == "" || loc.Line <= 0 {
		return
	}
	lines := splitLines(source)
	if loc.Line > len(lines) {
		return
	}
	line := lines[loc.Line-1]
	fmt.Fprintf(os.Stderr, "  %s\n", line)
	if loc.Column > 0 {
		fmt.Fprintf(os.Stderr, "  %s%s\n", pad(loc.Column-1), bold("^"))
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// CollectingSink records diagnostics instead of printing them, for tests
// and the language server (which turns them into LSP publishDiagnostics
// payloads rather than terminal output).
type CollectingSink struct {
	Diagnostics []Diagnostic
}

func NewCollectingSink() *CollectingSink { return &CollectingSink{} }

func (s *CollectingSink) Warning(loc cfg.Location, code, format string, args ...any) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		Severity: SeverityWarning, Code: code, Location: loc, Message: fmt.Sprintf(format, args...),
	})
}

func (s *CollectingSink) Error(loc cfg.Location, code, format string, args ...any) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{
		Severity: SeverityError, Code: code, Location: loc, Message: fmt.Sprintf(format, args...),
	})
}

func (s *CollectingSink) HasError() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
