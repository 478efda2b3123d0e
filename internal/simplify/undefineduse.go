package simplify

import (
	"cflow/internal/cfg"
	"cflow/internal/diag"
)

// WarnUndefinedUses re-runs the fixpoint analysis and walks every
// instruction in program order, warning on each operand read
// while its status is still Possibly Undefined or Undefined. Compiler
// synthesized temporaries (empty Name) are never named in a warning, since
// any undefinedness in them traces back to a user variable that already
// produced its own diagnostic.
func WarnUndefinedUses(g *cfg.CfGraph, sink diag.Sink) {
	statuses := DetermineVarStatuses(g)
	status := make([]Status, len(g.Locals))

	for blockidx, block := range g.Blocks {
		blockEntryStatus(g, statuses, blockidx, status)
		for _, ins := range block.Instructions {
			for _, operand := range ins.Operands {
				idx := g.IndexOfLocal(operand)
				switch status[idx] {
				case PossiblyUndefined:
					if operand.Name != "" {
						sink.Warning(ins.Location, diag.CodePossiblyUndefined,
							"the value of %q may be undefined", operand.Name)
					}
				case Undefined:
					if operand.Name != "" {
						sink.Warning(ins.Location, diag.CodeUndefined,
							"the value of %q is undefined", operand.Name)
					}
				}
			}
			transfer(g, status, ins)
		}
	}
}
