package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cflow/internal/cfg"
	"cflow/internal/types"
)

// TestDetermineVarStatusesArgumentDefined checks that a bare function taking
// one argument and doing nothing else reports it Defined throughout.
func TestDetermineVarStatusesArgumentDefined(t *testing.T) {
	g := newGraph()
	x := local(g, "x", types.SignedInt(32), true)

	statuses := DetermineVarStatuses(g)
	require.Len(t, statuses, 1)
	assert.Equal(t, Defined, statuses[g.EndBlock][g.IndexOfLocal(x)])
}

// TestDetermineVarStatusesUninitializedLocal checks that `let x: int;` with
// no initializer is Undefined at every later point.
func TestDetermineVarStatusesUninitializedLocal(t *testing.T) {
	g := newGraph()
	x := local(g, "x", types.SignedInt(32), false)

	statuses := DetermineVarStatuses(g)
	assert.Equal(t, Undefined, statuses[g.EndBlock][g.IndexOfLocal(x)])
}

// TestDetermineVarStatusesMergeAtJoin builds:
//
//	start --true--> block1 --\
//	      --false-> block2 ---> end
//
// x is assigned in block1 only, so it's PossiblyUndefined at the join.
func TestDetermineVarStatusesMergeAtJoin(t *testing.T) {
	g := &cfg.CfGraph{}
	start := newBlock(g)
	b1 := newBlock(g)
	b2 := newBlock(g)
	end := newBlock(g)
	g.StartBlock = start
	g.EndBlock = end
	g.Blocks[end].Iftrue = end
	g.Blocks[end].Iffalse = end

	cond := local(g, "cond", types.Bool, true)
	x := local(g, "x", types.SignedInt(32), false)

	g.Blocks[start].BranchVar = cond
	g.Blocks[start].Iftrue = b1
	g.Blocks[start].Iffalse = b2

	one := local(g, "", types.SignedInt(32), false)
	emit(g, b1, &cfg.CfInstruction{Location: loc(1), Kind: cfg.CONSTANT, Destvar: one, Constant: &cfg.Constant{Type: types.SignedInt(32), IntVal: 1}})
	emit(g, b1, &cfg.CfInstruction{Location: loc(2), Kind: cfg.VARCPY, Destvar: x, Operands: []*cfg.LocalVariable{one}})
	g.Blocks[b1].Iftrue = end
	g.Blocks[b1].Iffalse = end

	g.Blocks[b2].Iftrue = end
	g.Blocks[b2].Iffalse = end

	statuses := DetermineVarStatuses(g)
	assert.Equal(t, PossiblyUndefined, statuses[end][g.IndexOfLocal(x)])
}

// TestDetermineVarStatusesAddressOfMarksUnpredictable checks that taking the
// address of a local makes its status Unpredictable, so later reads of it
// are not flagged, since &x escapes the variable to analysis-opaque writes.
func TestDetermineVarStatusesAddressOfMarksUnpredictable(t *testing.T) {
	g := newGraph()
	x := local(g, "x", types.SignedInt(32), false)
	p := local(g, "", types.Pointer(types.SignedInt(32)), false)

	emit(g, 0, &cfg.CfInstruction{Location: loc(1), Kind: cfg.ADDRESS_OF_LOCAL_VAR, Destvar: p, Operands: []*cfg.LocalVariable{x}})

	statuses := DetermineVarStatuses(g)
	assert.Equal(t, Unpredictable, statuses[g.EndBlock][g.IndexOfLocal(x)])
}

// TestDetermineVarStatusesBoolConstantsAreTrueFalse checks the True/False
// refinement used by branch folding.
func TestDetermineVarStatusesBoolConstantsAreTrueFalse(t *testing.T) {
	g := newGraph()
	b := local(g, "", types.Bool, false)
	emit(g, 0, &cfg.CfInstruction{Location: loc(1), Kind: cfg.CONSTANT, Destvar: b, Constant: &cfg.Constant{Type: types.Bool, BoolVal: true}})

	statuses := DetermineVarStatuses(g)
	assert.Equal(t, True, statuses[g.EndBlock][g.IndexOfLocal(b)])
}

// TestDetermineVarStatusesIsIdempotentOnRerun checks that running the
// fixpoint twice over the same (unmodified) graph gives the same result,
// a sanity check on the worklist always reaching a fixed point.
func TestDetermineVarStatusesIsIdempotentOnRerun(t *testing.T) {
	g := newGraph()
	local(g, "x", types.SignedInt(32), true)

	first := DetermineVarStatuses(g)
	second := DetermineVarStatuses(g)
	assert.Equal(t, first, second)
}
