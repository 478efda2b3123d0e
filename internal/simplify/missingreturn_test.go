package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cflow/internal/cfg"
	"cflow/internal/diag"
	"cflow/internal/types"
)

func newGraphWithReturn(retType *types.Type) *cfg.CfGraph {
	g := newGraph()
	g.Signature.ReturnType = retType
	g.Signature.Name = "f"
	local(g, "return", retType, false)
	return g
}

// TestCheckMissingReturnSkipsVoid checks that a void function is never
// flagged, even if nothing ever writes the (nonexistent) "return" local.
func TestCheckMissingReturnSkipsVoid(t *testing.T) {
	g := newGraph()
	g.Signature.ReturnType = types.Void

	sink := diag.NewCollectingSink()
	CheckMissingReturn(g, sink)

	assert.Empty(t, sink.Diagnostics)
}

// TestCheckMissingReturnErrorsWhenNeverSet checks that a declared-int
// function whose "return" local is never assigned is a hard error.
func TestCheckMissingReturnErrorsWhenNeverSet(t *testing.T) {
	g := newGraphWithReturn(types.SignedInt(32))

	sink := diag.NewCollectingSink()
	CheckMissingReturn(g, sink)

	require.Len(t, sink.Diagnostics, 1)
	assert.Equal(t, diag.SeverityError, sink.Diagnostics[0].Severity)
	assert.Equal(t, diag.CodeMissingReturn, sink.Diagnostics[0].Code)
}

// TestCheckMissingReturnWarnsWhenPossiblySet builds:
//
//	start --true--> sets return --\
//	      --false-> (nothing) -----> end
//
// so the return value is set on one path but not the other: a warning, not
// an error.
func TestCheckMissingReturnWarnsWhenPossiblySet(t *testing.T) {
	g := &cfg.CfGraph{}
	start := newBlock(g)
	setBlock := newBlock(g)
	end := newBlock(g)
	g.StartBlock = start
	g.EndBlock = end
	g.Signature.ReturnType = types.SignedInt(32)
	g.Signature.Name = "f"
	g.Blocks[end].Iftrue, g.Blocks[end].Iffalse = end, end

	cond := local(g, "cond", types.Bool, true)
	ret := local(g, "return", types.SignedInt(32), false)

	g.Blocks[start].BranchVar = cond
	g.Blocks[start].Iftrue = setBlock
	g.Blocks[start].Iffalse = end

	one := local(g, "", types.SignedInt(32), false)
	emit(g, setBlock, &cfg.CfInstruction{Location: loc(1), Kind: cfg.CONSTANT, Destvar: one, Constant: &cfg.Constant{Type: types.SignedInt(32), IntVal: 1}})
	emit(g, setBlock, &cfg.CfInstruction{Location: loc(2), Kind: cfg.VARCPY, Destvar: ret, Operands: []*cfg.LocalVariable{one}})
	g.Blocks[setBlock].Iftrue, g.Blocks[setBlock].Iffalse = end, end

	sink := diag.NewCollectingSink()
	CheckMissingReturn(g, sink)

	require.Len(t, sink.Diagnostics, 1)
	assert.Equal(t, diag.SeverityWarning, sink.Diagnostics[0].Severity)
}

// TestCheckMissingReturnClean checks that a function whose return local is
// always set produces no diagnostics.
func TestCheckMissingReturnClean(t *testing.T) {
	g := newGraphWithReturn(types.SignedInt(32))
	ret := g.LocalNamed("return")
	one := local(g, "", types.SignedInt(32), false)
	emit(g, 0, &cfg.CfInstruction{Location: loc(1), Kind: cfg.CONSTANT, Destvar: one, Constant: &cfg.Constant{Type: types.SignedInt(32), IntVal: 1}})
	emit(g, 0, &cfg.CfInstruction{Location: loc(2), Kind: cfg.VARCPY, Destvar: ret, Operands: []*cfg.LocalVariable{one}})

	sink := diag.NewCollectingSink()
	CheckMissingReturn(g, sink)

	assert.Empty(t, sink.Diagnostics)
}
