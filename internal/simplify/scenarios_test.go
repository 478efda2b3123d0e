package simplify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cflow/grammar"
	"cflow/internal/ast"
	"cflow/internal/cfgbuild"
	"cflow/internal/diag"
	"cflow/internal/simplify"
	"cflow/internal/typecheck"
)

// compile runs one translation unit through the full front end and the
// simplification engine, returning every diagnostic collected along the
// way. It mirrors cmd/cflowc's run() pipeline minus codegen.
func compile(t *testing.T, source string) *diag.CollectingSink {
	t.Helper()

	parsed, err := grammar.ParseSource("<test>", source)
	require.NoError(t, err)

	typed, err := ast.From(parsed)
	require.NoError(t, err)

	_, err = typecheck.Check(typed)
	require.NoError(t, err)

	cfgFile, err := cfgbuild.BuildFile("<test>", typed)
	require.NoError(t, err)

	sink := diag.NewCollectingSink()
	simplify.SimplifyFile(cfgFile, sink)
	return sink
}

// TestScenarioConstantTrueIf checks that a statically-true condition folds
// its branch and that the now-unreachable else arm produces exactly one
// "this code will never run" warning at the call it guards.
func TestScenarioConstantTrueIf(t *testing.T) {
	sink := compile(t, `
extern fun foo();
extern fun bar();

fun main() {
	if true {
		foo();
	} else {
		bar();
	}
}
`)

	require.Len(t, sink.Diagnostics, 1)
	d := sink.Diagnostics[0]
	assert.Equal(t, diag.SeverityWarning, d.Severity)
	assert.Equal(t, diag.CodeUnreachableCode, d.Code)
	assert.Equal(t, 9, d.Location.Line)
	assert.False(t, sink.HasError())
}

// TestScenarioUseOfUndefinedLocal checks that reading an uninitialized
// local warns by name instead of erroring, and compilation still proceeds.
func TestScenarioUseOfUndefinedLocal(t *testing.T) {
	sink := compile(t, `
extern fun printf(x: i32);

fun main() {
	let x: i32;
	printf(x);
}
`)

	require.Len(t, sink.Diagnostics, 1)
	d := sink.Diagnostics[0]
	assert.Equal(t, diag.SeverityWarning, d.Severity)
	assert.Equal(t, diag.CodeUndefined, d.Code)
	assert.Contains(t, d.Message, `"x"`)
	assert.False(t, sink.HasError())
}

// TestScenarioPossiblyMissingReturn checks that a return on only one path
// out of a function warns rather than erroring.
func TestScenarioPossiblyMissingReturn(t *testing.T) {
	sink := compile(t, `
fun f(b: bool): i32 {
	if b {
		return 1;
	}
}
`)

	require.Len(t, sink.Diagnostics, 1)
	d := sink.Diagnostics[0]
	assert.Equal(t, diag.SeverityWarning, d.Severity)
	assert.Equal(t, diag.CodeMissingReturn, d.Code)
	assert.Contains(t, d.Message, `"f"`)
	assert.False(t, sink.HasError())
}

// TestScenarioDefinitelyMissingReturn checks that a function with a
// declared return type and no reachable return at all is a hard error.
func TestScenarioDefinitelyMissingReturn(t *testing.T) {
	sink := compile(t, `
fun f(): i32 {
}
`)

	require.Len(t, sink.Diagnostics, 1)
	d := sink.Diagnostics[0]
	assert.Equal(t, diag.SeverityError, d.Severity)
	assert.Equal(t, diag.CodeMissingReturn, d.Code)
	assert.Contains(t, d.Message, `"f"`)
	assert.True(t, sink.HasError())
}

// TestScenarioAddressOfDisablesAnalysis checks that once a local's address
// is taken, reading it back afterward never warns, since the analysis can
// no longer see whether a write happened through the escaped pointer.
func TestScenarioAddressOfDisablesAnalysis(t *testing.T) {
	sink := compile(t, `
extern fun scanf(p: &i32);
extern fun printf(x: i32);

fun main() {
	let x: i32 = 0;
	scanf(&x);
	printf(x);
}
`)

	assert.Empty(t, sink.Diagnostics)
}

// TestScenarioGroupedUnreachableWarning checks that a dead region spanning
// several basic blocks (a statement followed by an if/else, all after an
// unconditional return) produces exactly one warning, anchored at the
// first dead statement, not one per block.
func TestScenarioGroupedUnreachableWarning(t *testing.T) {
	sink := compile(t, `
fun f(): i32 {
	return 0;
	let a: i32 = 1;
	if a == 1 {
		let b: i32 = 1;
	} else {
		let c: i32 = 1;
	}
}
`)

	require.Len(t, sink.Diagnostics, 1)
	d := sink.Diagnostics[0]
	assert.Equal(t, diag.SeverityWarning, d.Severity)
	assert.Equal(t, diag.CodeUnreachableCode, d.Code)
	assert.Equal(t, 4, d.Location.Line)
	assert.False(t, sink.HasError())
}
