package typecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cflow/grammar"
	"cflow/internal/ast"
	"cflow/internal/typecheck"
)

func mustCheck(t *testing.T, source string) (*typecheck.Program, error) {
	t.Helper()
	parsed, err := grammar.ParseSource("<test>", source)
	require.NoError(t, err)
	typed, err := ast.From(parsed)
	require.NoError(t, err)
	return typecheck.Check(typed)
}

// TestCheckAcceptsWellFormedProgram checks that a program with no
// duplicate declarations and only calls to declared functions passes.
func TestCheckAcceptsWellFormedProgram(t *testing.T) {
	prog, err := mustCheck(t, `
extern fun printf(x: i32);

fun main() {
	printf(1);
}
`)
	require.NoError(t, err)
	assert.Contains(t, prog.Callables, "printf")
	assert.Contains(t, prog.Callables, "main")
}

// TestCheckRejectsDuplicateFunction checks that defining the same function
// name twice (extern plus a body, or two bodies) is a hard error, not a
// silent shadow.
func TestCheckRejectsDuplicateFunction(t *testing.T) {
	_, err := mustCheck(t, `
fun f() {
}

fun f() {
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"f"`)
}

// TestCheckRejectsDuplicateClass mirrors the duplicate-function check for
// class declarations.
func TestCheckRejectsDuplicateClass(t *testing.T) {
	_, err := mustCheck(t, `
class Point { x: i32, }
class Point { y: i32, }
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Point")
}

// TestCheckRejectsCallToUndeclaredFunction checks that calling a name with
// no extern/fun declaration anywhere in the translation unit errors; the
// CFG builder does not look callees up, so this is the only check for it.
func TestCheckRejectsCallToUndeclaredFunction(t *testing.T) {
	_, err := mustCheck(t, `
fun main() {
	mystery();
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

// TestCheckRejectsWrongArity checks that a call site's argument count must
// match the callee's declared parameter count exactly.
func TestCheckRejectsWrongArity(t *testing.T) {
	_, err := mustCheck(t, `
extern fun add(a: i32, b: i32): i32;

fun main() {
	add(1);
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add")
}

// TestCheckWalksNestedCallsInsideIf checks that a call buried inside both
// arms of an if/else is still discovered and arity-checked.
func TestCheckWalksNestedCallsInsideIf(t *testing.T) {
	_, err := mustCheck(t, `
extern fun foo();

fun main(b: bool) {
	if b {
		foo();
	} else {
		foo(1);
	}
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foo")
}
