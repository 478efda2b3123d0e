package simplify

import (
	"github.com/bits-and-blooms/bitset"

	"cflow/internal/cfg"
	"cflow/internal/types"
)

// VarStatuses is the per-block, per-local result of the fixpoint analysis:
// VarStatuses[blockIdx][localIdx] is the status of that local at the END of
// that block.
type VarStatuses [][]Status

// transfer applies one instruction's effect on the running status array,
// which holds the status of every local immediately before the instruction
// and is mutated in place to hold the status immediately after.
func transfer(g *cfg.CfGraph, statuses []Status, ins *cfg.CfInstruction) {
	if ins.Destvar == nil {
		return
	}
	destidx := g.IndexOfLocal(ins.Destvar)
	if statuses[destidx] == Unpredictable {
		return
	}

	switch ins.Kind {
	case cfg.VARCPY:
		srcidx := g.IndexOfLocal(ins.Operands[0])
		statuses[destidx] = statuses[srcidx]
		if statuses[destidx] == Unpredictable {
			// An unpredictable variable is assumed to always hold some
			// non-garbage value by the time it is read back out, or
			// reading through an escaped pointer (scanf-style APIs)
			// would spuriously warn on every use.
			statuses[destidx] = Defined
		}
	case cfg.ADDRESS_OF_LOCAL_VAR:
		srcidx := g.IndexOfLocal(ins.Operands[0])
		statuses[srcidx] = Unpredictable
		statuses[destidx] = Defined
	case cfg.CONSTANT:
		if ins.Constant != nil && ins.Constant.Type != nil && ins.Constant.Type.Kind == types.KindBool {
			if ins.Constant.BoolVal {
				statuses[destidx] = True
			} else {
				statuses[destidx] = False
			}
		} else {
			statuses[destidx] = Defined
		}
	default:
		statuses[destidx] = Defined
	}
}

// DetermineVarStatuses runs the monotone worklist fixpoint over g, returning
// the status of every local at the end of every block. The worklist is a
// bitset over block indices mirroring the C original's blocks_to_visit
// boolean array, visited by always picking the lowest-indexed pending block.
func DetermineVarStatuses(g *cfg.CfGraph) VarStatuses {
	nblocks := len(g.Blocks)
	nvars := len(g.Locals)

	result := make(VarStatuses, nblocks)
	for i := range result {
		result[i] = make([]Status, nvars)
	}

	toVisit := bitset.New(uint(nblocks))
	toVisit.Set(uint(g.StartBlock))

	tempstatus := make([]Status, nvars)

	for !toVisit.None() {
		visiting, _ := toVisit.NextSet(0)
		toVisit.Clear(visiting)
		block := g.Blocks[visiting]

		blockEntryStatus(g, result, int(visiting), tempstatus)

		for _, ins := range block.Instructions {
			transfer(g, tempstatus, ins)
		}

		changed := mergeInto(result[visiting], tempstatus)

		if changed && int(visiting) != g.EndBlock {
			toVisit.Set(uint(block.Iftrue))
			toVisit.Set(uint(block.Iffalse))
		}
	}

	return result
}

// blockEntryStatus fills out with the status of every local on entry to
// block index `b`: the start block initializes arguments as Defined and
// everything else as Undefined, every other block merges the (possibly
// still-converging) end-of-block status of each of its predecessors.
func blockEntryStatus(g *cfg.CfGraph, ends VarStatuses, b int, out []Status) {
	for i, local := range g.Locals {
		if b == g.StartBlock {
			if local.IsArgument {
				out[i] = Defined
			} else {
				out[i] = Undefined
			}
		} else {
			out[i] = Unvisited
		}
	}
	for i, pred := range g.Blocks {
		if pred.Iftrue == b || pred.Iffalse == b {
			mergeInto(out, ends[i])
		}
	}
}

// mergeInto merges src into dest in place, reporting whether dest changed.
func mergeInto(dest, src []Status) bool {
	changed := false
	for i := range dest {
		m := Merge(src[i], dest[i])
		if m != dest[i] {
			dest[i] = m
			changed = true
		}
	}
	return changed
}
