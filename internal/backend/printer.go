package backend

import (
	"fmt"
	"strings"
)

// Printer renders a lowered Function as readable textual IR, used by the
// CLI for its output at every -O level and by the REPL.
type Printer struct {
	output strings.Builder
}

// Print returns the textual form of fn.
func Print(fn *Function) string {
	p := &Printer{}
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) line(format string, args ...interface{}) {
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, v := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", p.valueName(v), v.Type)
	}
	ret := "void"
	if fn.ReturnType != nil {
		ret = fn.ReturnType.String()
	}
	p.line("fun %s(%s): %s {", fn.Name, strings.Join(params, ", "), ret)
	for _, b := range fn.Blocks {
		p.printBlock(b)
	}
	p.line("}")
}

func (p *Printer) printBlock(b *Block) {
	p.line("%s:", b.Label)
	for _, ins := range b.Instructions {
		p.line("  %s", p.instructionText(ins))
	}
	if b.Terminator != nil {
		p.line("  %s", p.instructionText(b.Terminator))
	}
}

func (p *Printer) valueName(v *Value) string {
	if v == nil {
		return "<nil>"
	}
	if v.Name != "" {
		return "%" + v.Name
	}
	return fmt.Sprintf("%%t%d", v.ID)
}

func (p *Printer) instructionText(ins Instruction) string {
	switch i := ins.(type) {
	case *Alloca:
		return fmt.Sprintf("%s = alloca %s", p.valueName(i.Result), i.Elem)
	case *Load:
		return fmt.Sprintf("%s = load %s", p.valueName(i.Result), p.valueName(i.Addr))
	case *Store:
		return fmt.Sprintf("store %s, %s", p.valueName(i.Val), p.valueName(i.Addr))
	case *Unary:
		return fmt.Sprintf("%s = %s%s", p.valueName(i.Result), i.Op, p.valueName(i.Val))
	case *Binary:
		return fmt.Sprintf("%s = %s %s %s", p.valueName(i.Result), p.valueName(i.Left), i.Op, p.valueName(i.Right))
	case *ConstantInst:
		if i.IsBool {
			return fmt.Sprintf("%s = const %t", p.valueName(i.Result), i.BoolVal)
		}
		return fmt.Sprintf("%s = const %d", p.valueName(i.Result), i.IntVal)
	case *Call:
		args := make([]string, len(i.Args))
		for j, a := range i.Args {
			args[j] = p.valueName(a)
		}
		if i.Result != nil {
			return fmt.Sprintf("%s = call %s(%s)", p.valueName(i.Result), i.Callee, strings.Join(args, ", "))
		}
		return fmt.Sprintf("call %s(%s)", i.Callee, strings.Join(args, ", "))
	case *Jump:
		return fmt.Sprintf("jump %s", i.Target.Label)
	case *CondBr:
		return fmt.Sprintf("condbr %s, %s, %s", p.valueName(i.Cond), i.IfTrue.Label, i.IfFalse.Label)
	case *Ret:
		if i.Val != nil {
			return fmt.Sprintf("ret %s", p.valueName(i.Val))
		}
		return "ret"
	case *Unreachable:
		return "unreachable"
	default:
		return "<?>"
	}
}
