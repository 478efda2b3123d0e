package simplify

import (
	"sort"

	"cflow/internal/cfg"
	"cflow/internal/diag"
)

// groupBlocks partitions a set of unreachable block indices into groups
// connected by at least one jump, so warnings can be emitted once per
// dead region instead of once per dead block.
func groupBlocks(g *cfg.CfGraph, blocks []int) [][]int {
	parent := map[int]int{}
	for _, b := range blocks {
		parent[b] = b
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	inSet := map[int]bool{}
	for _, b := range blocks {
		inSet[b] = true
	}
	for _, b := range blocks {
		block := g.Blocks[b]
		if inSet[block.Iftrue] {
			union(b, block.Iftrue)
		}
		if inSet[block.Iffalse] {
			union(b, block.Iffalse)
		}
	}

	groupOf := map[int][]int{}
	for _, b := range blocks {
		root := find(b)
		groupOf[root] = append(groupOf[root], b)
	}

	var roots []int
	for root := range groupOf {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	groups := make([][]int, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, groupOf[root])
	}
	return groups
}

// showUnreachableWarnings emits one "this code will never run" warning per
// connected group of unreachable blocks, at the earliest-line instruction
// in the group not marked HideUnreachableWarning, and suppresses a second
// warning landing on the same source line as the previous one.
func showUnreachableWarnings(g *cfg.CfGraph, blocks []int, sink diag.Sink) {
	groups := groupBlocks(g, blocks)
	prevLine := -1

	for _, group := range groups {
		var first *cfg.Location
		for _, b := range group {
			for _, ins := range g.Blocks[b].Instructions {
				if ins.HideUnreachableWarning {
					continue
				}
				if first == nil || ins.Location.Line < first.Line {
					loc := ins.Location
					first = &loc
				}
			}
		}
		if first == nil || first.Line == prevLine {
			continue
		}
		sink.Warning(*first, diag.CodeUnreachableCode, "this code will never run")
		prevLine = first.Line
	}
}

// RemoveUnreachableBlocks finds every block unreachable from the start
// block (the end block is kept unconditionally, even if unreached, since
// later passes always look it up by index), warns about the unreachable
// code, and deletes those blocks along with their instructions.
func RemoveUnreachableBlocks(g *cfg.CfGraph, sink diag.Sink) {
	reachable := make([]bool, len(g.Blocks))
	todo := []int{g.StartBlock}
	for len(todo) > 0 {
		i := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if reachable[i] {
			continue
		}
		reachable[i] = true
		if i != g.EndBlock {
			todo = append(todo, g.Blocks[i].Iftrue, g.Blocks[i].Iffalse)
		}
	}

	var unreachable []int
	for i := range g.Blocks {
		if !reachable[i] && i != g.EndBlock {
			unreachable = append(unreachable, i)
		}
	}
	if len(unreachable) == 0 {
		return
	}

	showUnreachableWarnings(g, unreachable, sink)
	removeBlocks(g, unreachable)
}

// removeBlocks deletes the given block indices and renumbers every
// Iftrue/Iffalse/StartBlock/EndBlock reference to account for the shift.
func removeBlocks(g *cfg.CfGraph, toRemove []int) {
	remove := make([]bool, len(g.Blocks))
	for _, i := range toRemove {
		remove[i] = true
	}

	newIndex := make([]int, len(g.Blocks))
	kept := make([]*cfg.CfBlock, 0, len(g.Blocks))
	for i, b := range g.Blocks {
		if remove[i] {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(kept)
		kept = append(kept, b)
	}

	for _, b := range kept {
		b.Iftrue = newIndex[b.Iftrue]
		b.Iffalse = newIndex[b.Iffalse]
	}

	g.Blocks = kept
	g.StartBlock = newIndex[g.StartBlock]
	g.EndBlock = newIndex[g.EndBlock]
}
