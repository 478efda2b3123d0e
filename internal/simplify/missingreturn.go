package simplify

import (
	"cflow/internal/cfg"
	"cflow/internal/diag"
	"cflow/internal/types"
)

// returnLocalName is the name the CFG builder gives the slot a function's
// result is written through (see cfgbuild.returnLocalName); duplicated here
// as a plain constant so this package has no import-cycle-prone dependency
// back onto cfgbuild, only onto the naming convention they both honor.
const returnLocalName = "return"

// CheckMissingReturn inspects the status of the "return" local at the end
// of the graph. A function with no declared return type is skipped
// entirely. PossiblyUndefined becomes a warning (some paths return,
// others fall off the end); Undefined becomes a hard error, since no path
// through the function ever produces a result.
func CheckMissingReturn(g *cfg.CfGraph, sink diag.Sink) {
	if g.Signature.ReturnType == nil || g.Signature.ReturnType.Kind == types.KindVoid {
		return
	}

	statuses := DetermineVarStatuses(g)

	local := g.LocalNamed(returnLocalName)
	if local == nil {
		// A function with a declared return type always gets a "return"
		// local from the builder; this would be an internal inconsistency.
		panic("cfg: function with declared return type has no \"return\" local")
	}
	idx := g.IndexOfLocal(local)
	status := statuses[g.EndBlock][idx]

	switch status {
	case PossiblyUndefined:
		sink.Warning(g.Signature.ReturnTypeLoc, diag.CodeMissingReturn,
			"function %q doesn't seem to return a value in all cases", g.Signature.Name)
	case Undefined:
		sink.Error(g.Signature.ReturnTypeLoc, diag.CodeMissingReturn,
			"function %q must return a value, because it is declared with '-> %s'",
			g.Signature.Name, g.Signature.ReturnType)
	}
}
