// Package backend lowers a simplified control-flow graph (package cfg) into
// a stack-machine-shaped IR of explicit loads, stores and allocas, ready for
// a real backend (LLVM, a bytecode emitter, or the textual printer in this
// package) to consume. Locals stay stack slots, never SSA values: the CFG's
// mutable-variable model carries straight through, unlike the SSA-with-phi
// shape of this compiler's earlier IR.
package backend

import "cflow/internal/types"

// Value identifies the result of an instruction, or a function parameter's
// incoming value, within one Function.
type Value struct {
	ID   int
	Name string
	Type *types.Type
}

// Module is a lowered translation unit.
type Module struct {
	Functions []*Function
}

// Function is one lowered function body.
type Function struct {
	Name       string
	Params     []*Value
	ReturnType *types.Type
	Entry      *Block
	Blocks     []*Block

	nextValueID int
}

func (f *Function) newValue(name string, t *types.Type) *Value {
	v := &Value{ID: f.nextValueID, Name: name, Type: t}
	f.nextValueID++
	return v
}

// Block is a lowered basic block: straight-line instructions ending in
// exactly one terminator.
type Block struct {
	Label        string
	Instructions []Instruction
	Terminator   Instruction
}

// Instruction is implemented by every lowered instruction kind.
type Instruction interface {
	isInstruction()
}

// Alloca reserves one stack slot, sized for Elem, and yields its address.
type Alloca struct {
	Result *Value
	Elem   *types.Type
}

// Load reads the value stored at the address in Addr.
type Load struct {
	Result *Value
	Addr   *Value
}

// Store writes Val to the address in Addr.
type Store struct {
	Addr *Value
	Val  *Value
}

// Binary applies Op to Left and Right.
type Binary struct {
	Result *Value
	Op     string
	Left   *Value
	Right  *Value
}

// Unary applies Op to Val.
type Unary struct {
	Result *Value
	Op     string
	Val    *Value
}

// ConstantInst materializes a compile-time constant.
type ConstantInst struct {
	Result  *Value
	IntVal  int64
	BoolVal bool
	IsBool  bool
}

// Call invokes Callee with Args; Result is nil for a void call.
type Call struct {
	Result *Value
	Callee string
	Args   []*Value
}

// Jump is an unconditional branch to Target.
type Jump struct {
	Target *Block
}

// CondBr branches to IfTrue or IfFalse depending on Cond.
type CondBr struct {
	Cond    *Value
	IfTrue  *Block
	IfFalse *Block
}

// Ret returns from the function, with Val nil for a void return.
type Ret struct {
	Val *Value
}

// Unreachable marks a program point control never reaches — emitted at the end of a value-returning function whose
// final block falls through, since the simplification engine has already
// turned a genuinely reachable fall-through into a hard error.
type Unreachable struct{}

func (*Alloca) isInstruction()      {}
func (*Load) isInstruction()        {}
func (*Store) isInstruction()       {}
func (*Binary) isInstruction()      {}
func (*Unary) isInstruction()       {}
func (*ConstantInst) isInstruction() {}
func (*Call) isInstruction()        {}
func (*Jump) isInstruction()        {}
func (*CondBr) isInstruction()      {}
func (*Ret) isInstruction()         {}
func (*Unreachable) isInstruction() {}
