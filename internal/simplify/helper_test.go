package simplify

import (
	"cflow/internal/cfg"
	"cflow/internal/types"
)

// newGraph builds an empty one-block graph (start == end, the block
// branching to itself), the minimal valid CfGraph every test below extends.
func newGraph() *cfg.CfGraph {
	g := &cfg.CfGraph{}
	g.Blocks = append(g.Blocks, &cfg.CfBlock{})
	g.StartBlock = 0
	g.EndBlock = 0
	g.Blocks[0].Iftrue = 0
	g.Blocks[0].Iffalse = 0
	return g
}

// newBlock appends an unlinked block (Iftrue/Iffalse left at -1, the
// caller must link it) and returns its index.
func newBlock(g *cfg.CfGraph) int {
	g.Blocks = append(g.Blocks, &cfg.CfBlock{Iftrue: -1, Iffalse: -1})
	return len(g.Blocks) - 1
}

func local(g *cfg.CfGraph, name string, t *types.Type, isArg bool) *cfg.LocalVariable {
	l := &cfg.LocalVariable{Name: name, Type: t, IsArgument: isArg}
	g.Locals = append(g.Locals, l)
	return l
}

func loc(line int) cfg.Location {
	return cfg.Location{Filename: "test.cf", Line: line, Column: 1}
}

func emit(g *cfg.CfGraph, block int, ins *cfg.CfInstruction) {
	g.Blocks[block].Instructions = append(g.Blocks[block].Instructions, ins)
}
