// Package cfgbuild lowers the typed AST (package ast) into control-flow
// graphs (package cfg), one per function definition. It is a structured
// lowering: if/else becomes branch instructions between freshly allocated
// blocks, locals become stack slots (never SSA values), and every function
// with a declared return type gets a synthetic "return" local that the
// simplification engine's missing-return pass inspects.
package cfgbuild

import (
	"fmt"

	"cflow/internal/ast"
	"cflow/internal/cfg"
	"cflow/internal/types"
)

// returnLocalName is the name simplify.CheckMissingReturn looks up to find the
// slot a function's result is written through, matching the convention
// used by the engine this package's output feeds.
const returnLocalName = "return"

// Builder accumulates the locals and blocks of the CfGraph currently being
// built for one function.
type Builder struct {
	graph       *cfg.CfGraph
	scopes      []map[string]*cfg.LocalVariable
	returnLocal *cfg.LocalVariable
}

// BuildFile lowers every FuncDef in prog into a CfGraph, skipping
// declarations with no body (extern functions, globals, classes, enums).
func BuildFile(filename string, prog *ast.Program) (*cfg.CfGraphFile, error) {
	out := &cfg.CfGraphFile{Filename: filename}
	for _, item := range prog.Items {
		fn, ok := item.(*ast.FuncDef)
		if !ok {
			continue
		}
		graph, err := BuildFunction(fn)
		if err != nil {
			return nil, err
		}
		out.Graphs = append(out.Graphs, graph)
	}
	return out, nil
}

// BuildFunction lowers a single function definition into a CfGraph.
func BuildFunction(fn *ast.FuncDef) (*cfg.CfGraph, error) {
	b := &Builder{
		graph: &cfg.CfGraph{
			Signature: cfg.Signature{
				Name:          fn.Name,
				ReturnType:    fn.ReturnType,
				ReturnTypeLoc: toLoc(fn.ReturnTypeLoc),
				DeclLoc:       toLoc(fn.Pos),
			},
		},
	}
	b.pushScope()

	for _, p := range fn.Params {
		local := &cfg.LocalVariable{Name: p.Name, Type: p.Type, IsArgument: true}
		b.graph.Locals = append(b.graph.Locals, local)
		b.graph.Signature.Params = append(b.graph.Signature.Params, local)
		b.declare(p.Name, local)
	}

	if fn.ReturnType != nil && fn.ReturnType.Kind != types.KindVoid {
		b.returnLocal = &cfg.LocalVariable{Name: returnLocalName, Type: fn.ReturnType}
		b.graph.Locals = append(b.graph.Locals, b.returnLocal)
	}

	start := b.newBlock()
	b.graph.StartBlock = start
	end := b.newBlock()
	b.graph.EndBlock = end
	b.graph.Blocks[end].Iftrue = end
	b.graph.Blocks[end].Iffalse = end

	cur := start
	var err error
	cur, err = b.buildBlock(cur, fn.Body)
	if err != nil {
		return nil, err
	}
	b.link(cur, end, end)

	return b.graph, nil
}

func (b *Builder) pushScope() {
	b.scopes = append(b.scopes, map[string]*cfg.LocalVariable{})
}

func (b *Builder) popScope() {
	b.scopes = b.scopes[:len(b.scopes)-1]
}

func (b *Builder) declare(name string, local *cfg.LocalVariable) {
	b.scopes[len(b.scopes)-1][name] = local
}

func (b *Builder) lookup(name string) (*cfg.LocalVariable, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if local, ok := b.scopes[i][name]; ok {
			return local, true
		}
	}
	return nil, false
}

func (b *Builder) newBlock() int {
	b.graph.Blocks = append(b.graph.Blocks, &cfg.CfBlock{})
	idx := len(b.graph.Blocks) - 1
	b.graph.Blocks[idx].Iftrue = -1
	b.graph.Blocks[idx].Iffalse = -1
	return idx
}

func (b *Builder) link(from, iftrue, iffalse int) {
	b.graph.Blocks[from].Iftrue = iftrue
	b.graph.Blocks[from].Iffalse = iffalse
}

func (b *Builder) emit(block int, ins *cfg.CfInstruction) {
	b.graph.Blocks[block].Instructions = append(b.graph.Blocks[block].Instructions, ins)
}

func (b *Builder) temp(t *types.Type) *cfg.LocalVariable {
	local := &cfg.LocalVariable{Type: t}
	b.graph.Locals = append(b.graph.Locals, local)
	return local
}

func toLoc(p ast.Position) cfg.Location {
	return cfg.Location{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

// buildBlock lowers a statement list, returning the index of the block
// execution continues at after the last statement. If the block ends in
// a return, the returned index points at a dead block with Iftrue/Iffalse
// left unset by the caller's final link to the end block — harmless, since
// RemoveUnreachableBlocks prunes it.
func (b *Builder) buildBlock(cur int, block *ast.Block) (int, error) {
	b.pushScope()
	defer b.popScope()
	for _, stmt := range block.Stmts {
		var err error
		cur, err = b.buildStmt(cur, stmt)
		if err != nil {
			return 0, err
		}
	}
	return cur, nil
}

func (b *Builder) buildStmt(cur int, stmt ast.Stmt) (int, error) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		local := &cfg.LocalVariable{Name: s.Name, Type: s.Type}
		b.graph.Locals = append(b.graph.Locals, local)
		b.declare(s.Name, local)
		if s.Init != nil {
			val, err := b.buildExpr(cur, s.Init)
			if err != nil {
				return 0, err
			}
			b.emit(cur, &cfg.CfInstruction{
				Location: toLoc(s.Pos), Kind: cfg.VARCPY,
				Destvar: local, Operands: []*cfg.LocalVariable{val},
			})
		}
		return cur, nil

	case *ast.AssignStmt:
		local, ok := b.lookup(s.Target)
		if !ok {
			return 0, fmt.Errorf("%s: undeclared variable %q", s.Pos, s.Target)
		}
		val, err := b.buildExpr(cur, s.Value)
		if err != nil {
			return 0, err
		}
		if s.Deref {
			b.emit(cur, &cfg.CfInstruction{
				Location: toLoc(s.Pos), Kind: cfg.STORE,
				Operands: []*cfg.LocalVariable{local, val},
			})
		} else {
			b.emit(cur, &cfg.CfInstruction{
				Location: toLoc(s.Pos), Kind: cfg.VARCPY,
				Destvar: local, Operands: []*cfg.LocalVariable{val},
			})
		}
		return cur, nil

	case *ast.ReturnStmt:
		if s.Value != nil {
			val, err := b.buildExpr(cur, s.Value)
			if err != nil {
				return 0, err
			}
			if b.returnLocal == nil {
				return 0, fmt.Errorf("%s: returning a value from a function with no declared return type", s.Pos)
			}
			b.emit(cur, &cfg.CfInstruction{
				Location: toLoc(s.Pos), Kind: cfg.VARCPY,
				Destvar: b.returnLocal, Operands: []*cfg.LocalVariable{val},
			})
		}
		b.link(cur, b.graph.EndBlock, b.graph.EndBlock)
		return b.newBlock(), nil

	case *ast.IfStmt:
		return b.buildIf(cur, s)

	case *ast.ExprStmt:
		_, err := b.buildExpr(cur, s.Value)
		return cur, err

	default:
		return 0, fmt.Errorf("%s: unsupported statement", stmt.NodePos())
	}
}

func (b *Builder) buildIf(cur int, s *ast.IfStmt) (int, error) {
	cond, err := b.buildExpr(cur, s.Cond)
	if err != nil {
		return 0, err
	}

	thenStart := b.newBlock()
	elseStart := b.newBlock()
	b.graph.Blocks[cur].BranchVar = cond
	b.link(cur, thenStart, elseStart)

	thenEnd, err := b.buildBlock(thenStart, s.Then)
	if err != nil {
		return 0, err
	}

	after := b.newBlock()
	b.link(thenEnd, after, after)

	switch {
	case s.Else == nil:
		b.link(elseStart, after, after)
	case isBlock(s.Else):
		elseEnd, err := b.buildBlock(elseStart, asBlock(s.Else))
		if err != nil {
			return 0, err
		}
		b.link(elseEnd, after, after)
	default:
		elseEnd, err := b.buildIf(elseStart, asIf(s.Else))
		if err != nil {
			return 0, err
		}
		b.link(elseEnd, after, after)
	}

	return after, nil
}

func isBlock(n ast.Node) bool       { _, ok := n.(*ast.Block); return ok }
func asBlock(n ast.Node) *ast.Block { return n.(*ast.Block) }
func asIf(n ast.Node) *ast.IfStmt   { return n.(*ast.IfStmt) }

// buildExpr lowers an expression, returning the local variable (real or
// temporary) holding its result.
func (b *Builder) buildExpr(cur int, e ast.Expr) (*cfg.LocalVariable, error) {
	switch ex := e.(type) {
	case *ast.IntLiteral:
		dest := b.temp(ex.Type())
		if dest.Type == nil {
			dest.Type = types.SignedInt(32)
		}
		b.emit(cur, &cfg.CfInstruction{
			Location: toLoc(ex.Pos), Kind: cfg.CONSTANT, Destvar: dest,
			Constant: &cfg.Constant{Type: dest.Type, IntVal: ex.Value},
		})
		return dest, nil

	case *ast.BoolLiteral:
		dest := b.temp(types.Bool)
		b.emit(cur, &cfg.CfInstruction{
			Location: toLoc(ex.Pos), Kind: cfg.CONSTANT, Destvar: dest,
			Constant: &cfg.Constant{Type: types.Bool, BoolVal: ex.Value},
		})
		return dest, nil

	case *ast.IdentExpr:
		local, ok := b.lookup(ex.Name)
		if !ok {
			return nil, fmt.Errorf("%s: undeclared variable %q", ex.Pos, ex.Name)
		}
		return local, nil

	case *ast.ParenExpr:
		return b.buildExpr(cur, ex.Inner)

	case *ast.UnaryExpr:
		if ex.Operator == "&" {
			inner, ok := ex.Value.(*ast.IdentExpr)
			if !ok {
				return nil, fmt.Errorf("%s: & requires a variable operand", ex.Pos)
			}
			local, ok := b.lookup(inner.Name)
			if !ok {
				return nil, fmt.Errorf("%s: undeclared variable %q", ex.Pos, inner.Name)
			}
			dest := b.temp(types.Pointer(local.Type))
			b.emit(cur, &cfg.CfInstruction{
				Location: toLoc(ex.Pos), Kind: cfg.ADDRESS_OF_LOCAL_VAR,
				Destvar: dest, Operands: []*cfg.LocalVariable{local},
			})
			return dest, nil
		}
		val, err := b.buildExpr(cur, ex.Value)
		if err != nil {
			return nil, err
		}
		if ex.Operator == "*" {
			var elem *types.Type
			if val.Type != nil {
				elem = val.Type.Elem
			}
			dest := b.temp(elem)
			b.emit(cur, &cfg.CfInstruction{
				Location: toLoc(ex.Pos), Kind: cfg.LOAD,
				Destvar: dest, Operands: []*cfg.LocalVariable{val},
			})
			return dest, nil
		}
		dest := b.temp(val.Type)
		b.emit(cur, &cfg.CfInstruction{
			Location: toLoc(ex.Pos), Kind: cfg.UNARY, Op: ex.Operator,
			Destvar: dest, Operands: []*cfg.LocalVariable{val},
		})
		return dest, nil

	case *ast.BinaryExpr:
		left, err := b.buildExpr(cur, ex.Left)
		if err != nil {
			return nil, err
		}
		right, err := b.buildExpr(cur, ex.Right)
		if err != nil {
			return nil, err
		}
		resultType := left.Type
		switch ex.Operator {
		case "==", "!=", "<", "<=", ">", ">=", "||", "&&":
			resultType = types.Bool
		}
		dest := b.temp(resultType)
		b.emit(cur, &cfg.CfInstruction{
			Location: toLoc(ex.Pos), Kind: cfg.BINARY, Op: ex.Operator,
			Destvar: dest, Operands: []*cfg.LocalVariable{left, right},
		})
		return dest, nil

	case *ast.CallExpr:
		args := make([]*cfg.LocalVariable, 0, len(ex.Args))
		for _, a := range ex.Args {
			val, err := b.buildExpr(cur, a)
			if err != nil {
				return nil, err
			}
			args = append(args, val)
		}
		dest := b.temp(ex.Type())
		b.emit(cur, &cfg.CfInstruction{
			Location: toLoc(ex.Pos), Kind: cfg.CALL, Callee: ex.Callee,
			Destvar: dest, Operands: args,
		})
		return dest, nil

	default:
		return nil, fmt.Errorf("%s: unsupported expression", e.NodePos())
	}
}
