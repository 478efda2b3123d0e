package backend

import (
	"strconv"

	"cflow/internal/cfg"
	"cflow/internal/types"
)

// lowering holds the per-function state needed while walking a CfGraph:
// the alloca address for every local's stack slot, and the backend blocks
// created so far, keyed by the CfGraph block index that produced them.
type lowering struct {
	fn       *Function
	slots    map[*cfg.LocalVariable]*Value
	blocks   map[int]*Block
	pending  []int
	visited  map[int]bool
	curBlock *Block
}

// Lower translates one simplified CfGraph into a Function. Every local
// becomes one alloca in the entry block; reading a local means loading
// through its alloca, writing it means storing through it — there is no
// value numbering or phi placement, since the simplification engine already
// resolved control-flow-dependent definedness at the diagnostic level.
func Lower(g *cfg.CfGraph) *Function {
	fn := &Function{
		Name:       g.Signature.Name,
		ReturnType: g.Signature.ReturnType,
	}
	for _, p := range g.Signature.Params {
		fn.Params = append(fn.Params, fn.newValue(p.Name, p.Type))
	}

	l := &lowering{
		fn:      fn,
		slots:   map[*cfg.LocalVariable]*Value{},
		blocks:  map[int]*Block{},
		visited: map[int]bool{},
	}

	allocaBlock := &Block{Label: "entry"}
	fn.Blocks = append(fn.Blocks, allocaBlock)
	for _, local := range g.Locals {
		addr := fn.newValue(local.Name, local.Type)
		l.slots[local] = addr
		allocaBlock.Instructions = append(allocaBlock.Instructions, &Alloca{Result: addr, Elem: local.Type})
	}
	for i, p := range g.Signature.Params {
		allocaBlock.Instructions = append(allocaBlock.Instructions, &Store{Addr: l.slots[p], Val: fn.Params[i]})
	}

	startBlock := l.blockFor(g.StartBlock)
	allocaBlock.Terminator = &Jump{Target: startBlock}
	fn.Entry = allocaBlock

	l.pending = append(l.pending, g.StartBlock)
	for len(l.pending) > 0 {
		idx := l.pending[0]
		l.pending = l.pending[1:]
		if l.visited[idx] {
			continue
		}
		l.visited[idx] = true
		l.lowerBlock(g, idx)
	}

	if retTypeNeedsValue(g.Signature.ReturnType) {
		end := l.blocks[g.EndBlock]
		if end != nil && end.Terminator == nil {
			end.Terminator = &Unreachable{}
		}
	}

	return fn
}

// retTypeNeedsValue reports whether a function's end block falling through
// without an explicit return would leave its result undefined — true for
// every declared, non-void return type. The simplification engine's
// missing-return check has already turned a genuinely reachable instance
// of this into a hard compile error, so lowering it as "unreachable" here
// is safe.
func retTypeNeedsValue(t *types.Type) bool {
	return t != nil && t.Kind != types.KindVoid
}

// blockFor returns the backend Block for CFG block index idx, creating it
// (in first-reference order) if this is the first time it is named.
func (l *lowering) blockFor(idx int) *Block {
	if b, ok := l.blocks[idx]; ok {
		return b
	}
	b := &Block{Label: "bb" + strconv.Itoa(idx)}
	l.blocks[idx] = b
	l.fn.Blocks = append(l.fn.Blocks, b)
	l.pending = append(l.pending, idx)
	return b
}

func (l *lowering) load(local *cfg.LocalVariable) *Value {
	addr := l.slots[local]
	result := l.fn.newValue("", local.Type)
	l.curBlock.Instructions = append(l.curBlock.Instructions, &Load{Result: result, Addr: addr})
	return result
}

func (l *lowering) store(local *cfg.LocalVariable, val *Value) {
	l.curBlock.Instructions = append(l.curBlock.Instructions, &Store{Addr: l.slots[local], Val: val})
}

func (l *lowering) lowerBlock(g *cfg.CfGraph, idx int) {
	block := l.blockFor(idx)
	l.curBlock = block

	if idx == g.EndBlock {
		block.Terminator = l.lowerEndBlock(g)
		return
	}

	for _, ins := range g.Blocks[idx].Instructions {
		l.lowerInstruction(ins)
	}

	cfgBlock := g.Blocks[idx]
	if cfgBlock.IsUnconditional() {
		block.Terminator = &Jump{Target: l.blockFor(cfgBlock.Iftrue)}
		return
	}
	cond := l.load(cfgBlock.BranchVar)
	block.Terminator = &CondBr{
		Cond:    cond,
		IfTrue:  l.blockFor(cfgBlock.Iftrue),
		IfFalse: l.blockFor(cfgBlock.Iffalse),
	}
}

func (l *lowering) lowerEndBlock(g *cfg.CfGraph) Instruction {
	if !retTypeNeedsValue(g.Signature.ReturnType) {
		return &Ret{}
	}
	local := g.LocalNamed("return")
	if local == nil {
		return &Unreachable{}
	}
	return &Ret{Val: l.load(local)}
}

func (l *lowering) lowerInstruction(ins *cfg.CfInstruction) {
	switch ins.Kind {
	case cfg.VARCPY:
		val := l.load(ins.Operands[0])
		l.store(ins.Destvar, val)

	case cfg.ADDRESS_OF_LOCAL_VAR:
		l.store(ins.Destvar, l.slots[ins.Operands[0]])

	case cfg.CONSTANT:
		result := l.fn.newValue("", ins.Destvar.Type)
		inst := &ConstantInst{Result: result}
		if ins.Constant != nil {
			inst.IsBool = ins.Constant.Type != nil && ins.Constant.Type.Kind == types.KindBool
			inst.IntVal = ins.Constant.IntVal
			inst.BoolVal = ins.Constant.BoolVal
		}
		l.curBlock.Instructions = append(l.curBlock.Instructions, inst)
		l.store(ins.Destvar, result)

	case cfg.LOAD:
		ptr := l.load(ins.Operands[0])
		result := l.fn.newValue("", ins.Destvar.Type)
		l.curBlock.Instructions = append(l.curBlock.Instructions, &Load{Result: result, Addr: ptr})
		l.store(ins.Destvar, result)

	case cfg.STORE:
		ptr := l.load(ins.Operands[0])
		val := l.load(ins.Operands[1])
		l.curBlock.Instructions = append(l.curBlock.Instructions, &Store{Addr: ptr, Val: val})

	case cfg.UNARY:
		val := l.load(ins.Operands[0])
		result := l.fn.newValue("", ins.Destvar.Type)
		l.curBlock.Instructions = append(l.curBlock.Instructions, &Unary{Result: result, Op: ins.Op, Val: val})
		l.store(ins.Destvar, result)

	case cfg.BINARY:
		left := l.load(ins.Operands[0])
		right := l.load(ins.Operands[1])
		result := l.fn.newValue("", ins.Destvar.Type)
		l.curBlock.Instructions = append(l.curBlock.Instructions, &Binary{Result: result, Op: ins.Op, Left: left, Right: right})
		l.store(ins.Destvar, result)

	case cfg.CALL:
		args := make([]*Value, 0, len(ins.Operands))
		for _, op := range ins.Operands {
			args = append(args, l.load(op))
		}
		var result *Value
		if ins.Destvar != nil {
			result = l.fn.newValue("", ins.Destvar.Type)
		}
		l.curBlock.Instructions = append(l.curBlock.Instructions, &Call{Result: result, Callee: ins.Callee, Args: args})
		if ins.Destvar != nil {
			l.store(ins.Destvar, result)
		}
	}
}
