package simplify

import "cflow/internal/cfg"

// FoldConstantBranches rewrites every conditional block whose branch
// variable has a statically known truth value into an unconditional jump,
// by making Iftrue and Iffalse coincide. It leaves the now-redundant
// branch variable (still set as the block's BranchVar) and its defining
// instructions in place; no later pass removes them.
func FoldConstantBranches(g *cfg.CfGraph) {
	statuses := DetermineVarStatuses(g)

	for blockidx, block := range g.Blocks {
		if blockidx == g.EndBlock || block.IsUnconditional() {
			continue
		}
		if block.BranchVar == nil {
			continue
		}
		idx := g.IndexOfLocal(block.BranchVar)
		switch statuses[blockidx][idx] {
		case True:
			block.Iffalse = block.Iftrue
		case False:
			block.Iftrue = block.Iffalse
		}
	}
}
