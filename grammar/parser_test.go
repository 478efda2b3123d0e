package grammar_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cflow/grammar"
)

// TestParseSourceTopLevelItems checks that one of each top-level item kind
// parses into the right variant of TopLevelItem, in source order.
func TestParseSourceTopLevelItems(t *testing.T) {
	prog, err := grammar.ParseSource("<test>", `
import std::io;

extern fun printf(x: i32);

let counter: i32 = 0;

class Point {
	x: i32,
	y: i32,
}

enum Color {
	Red, Green, Blue,
}

fun main() {
}
`)
	require.NoError(t, err)
	require.Len(t, prog.Items, 6)

	assert.NotNil(t, prog.Items[0].Import)
	assert.NotNil(t, prog.Items[1].Extern)
	assert.NotNil(t, prog.Items[2].Global)
	assert.NotNil(t, prog.Items[3].Class)
	assert.NotNil(t, prog.Items[4].Enum)
	assert.NotNil(t, prog.Items[5].Func)

	assert.Equal(t, []string{"std", "io"}, prog.Items[0].Import.Path)
	assert.Equal(t, "printf", prog.Items[1].Extern.Name)
	assert.Equal(t, "Point", prog.Items[3].Class.Name)
	require.Len(t, prog.Items[4].Enum.Variants, 3)
	assert.Equal(t, "main", prog.Items[5].Func.Name)
}

// TestParseSourceRejectsGarbage checks that unparseable input returns an
// error instead of a half-built tree.
func TestParseSourceRejectsGarbage(t *testing.T) {
	_, err := grammar.ParseSource("<test>", `fun ( ) { this is not valid`)
	assert.Error(t, err)
}

// TestParseSourceOperatorPrecedenceTable checks that every operator the
// grammar recognizes actually lexes inside a binary expression, so a typo
// in the token pattern doesn't silently drop an operator from BinOp.
func TestParseSourceOperatorPrecedenceTable(t *testing.T) {
	ops := []string{"||", "&&", "==", "!=", "<=", ">=", "<", ">", "+", "-", "*", "/"}
	for _, op := range ops {
		src := "fun f(a: i32, b: i32) { let x: bool = a " + op + " b; }"
		_, err := grammar.ParseSource("<test>", src)
		assert.NoErrorf(t, err, "operator %q failed to parse", op)
	}
}

// TestParseSourceIfElseIfElseChain checks that an else-if chain of
// arbitrary depth parses without the grammar needing left-recursion.
func TestParseSourceIfElseIfElseChain(t *testing.T) {
	_, err := grammar.ParseSource("<test>", `
fun classify(n: i32): i32 {
	if n == 0 {
		return 0;
	} else if n == 1 {
		return 1;
	} else if n == 2 {
		return 2;
	} else {
		return 3;
	}
}
`)
	require.NoError(t, err)
}

// TestParseFileReadsFromDisk checks that ParseFile reads the given path and
// parses its contents the same way ParseSource would.
func TestParseFileReadsFromDisk(t *testing.T) {
	path := t.TempDir() + "/main.cf"
	require.NoError(t, os.WriteFile(path, []byte("fun main() {\n}\n"), 0o644))

	prog, err := grammar.ParseFile(path)
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	assert.Equal(t, "main", prog.Items[0].Func.Name)
}
