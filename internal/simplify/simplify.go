package simplify

import (
	"cflow/internal/cfg"
	"cflow/internal/diag"
)

// Simplify runs the full simplification and diagnostic pipeline over one
// function's control-flow graph, in the fixed order the passes depend on:
// branch folding first (so a condition that is only knowable before
// unreachable code is pruned still gets folded), then unreachable-block
// removal, then the missing-return check (which needs the pre-cleanup
// graph's "return" local still present), then dead-local elimination, and
// finally the undefined-use warnings, which re-run the fixpoint once more
// over the now-minimal graph.
func Simplify(g *cfg.CfGraph, sink diag.Sink) {
	FoldConstantBranches(g)
	RemoveUnreachableBlocks(g, sink)
	CheckMissingReturn(g, sink)
	RemoveUnusedLocals(g)
	WarnUndefinedUses(g, sink)
}

// SimplifyFile runs Simplify over every graph in a translation unit.
func SimplifyFile(file *cfg.CfGraphFile, sink diag.Sink) {
	for _, g := range file.Graphs {
		Simplify(g, sink)
	}
}
