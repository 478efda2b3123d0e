package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"cflow/grammar"
	"cflow/internal/types"
)

// typeNames records which top-level names are declared as classes versus
// enums, so From can resolve a bare identifier type to the right kind.
type typeNames struct {
	classes map[string]bool
	enums   map[string]bool
}

// From converts a raw parse tree into the typed AST, resolving every type
// name against the builtin set and the translation unit's own class/enum
// declarations. It does not check that referenced names exist: a name that
// is neither builtin nor a declared enum becomes a class reference, and no
// later pass rejects one that no class declares.
func From(prog *grammar.Program) (*Program, error) {
	names := &typeNames{classes: map[string]bool{}, enums: map[string]bool{}}
	for _, item := range prog.Items {
		switch {
		case item.Class != nil:
			names.classes[item.Class.Name] = true
		case item.Enum != nil:
			names.enums[item.Enum.Name] = true
		}
	}

	out := &Program{
		Pos:    posOf(prog.Pos),
		EndPos: posOf(prog.EndPos),
	}
	for _, item := range prog.Items {
		node, err := convertTopLevel(item, names)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, node)
	}
	out.EOF = &EOFItem{Pos: out.EndPos, EndPos: out.EndPos}
	return out, nil
}

func posOf(p lexer.Position) Position {
	return Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func convertTopLevel(item *grammar.TopLevelItem, names *typeNames) (Node, error) {
	switch {
	case item.Import != nil:
		return &Import{
			Pos: posOf(item.Import.Pos), EndPos: posOf(item.Import.EndPos),
			Path: item.Import.Path,
		}, nil
	case item.Extern != nil:
		return convertExtern(item.Extern, names)
	case item.Func != nil:
		return convertFuncDef(item.Func, names)
	case item.Global != nil:
		return convertGlobalVar(item.Global, names)
	case item.Class != nil:
		return convertClassDecl(item.Class, names)
	case item.Enum != nil:
		return convertEnumDecl(item.Enum), nil
	default:
		return nil, fmt.Errorf("%s: empty top level item", posOf(item.Pos))
	}
}

func convertType(t *grammar.Type, names *typeNames) *types.Type {
	if t == nil {
		return types.Void
	}
	if t.Pointer != nil {
		return types.Pointer(convertType(t.Pointer, names))
	}
	if builtin, ok := types.Lookup(t.Name); ok {
		return builtin
	}
	if names.enums[t.Name] {
		return types.Enum(t.Name)
	}
	return types.Class(t.Name)
}

func convertParams(params []*grammar.Param, names *typeNames) []*Param {
	out := make([]*Param, 0, len(params))
	for _, p := range params {
		out = append(out, &Param{
			Pos: posOf(p.Pos), EndPos: posOf(p.EndPos),
			Name: p.Name,
			Type: convertType(p.Type, names),
		})
	}
	return out
}

func convertExtern(e *grammar.ExternDecl, names *typeNames) (*ExternDecl, error) {
	return &ExternDecl{
		Pos: posOf(e.Pos), EndPos: posOf(e.EndPos),
		Name:          e.Name,
		Params:        convertParams(e.Params, names),
		ReturnType:    convertType(e.Return, names),
		ReturnTypeLoc: returnTypeLoc(e.Return, e.Pos),
	}, nil
}

func convertFuncDef(f *grammar.FuncDef, names *typeNames) (*FuncDef, error) {
	body, err := convertBlock(f.Body, names)
	if err != nil {
		return nil, err
	}
	return &FuncDef{
		Pos: posOf(f.Pos), EndPos: posOf(f.EndPos),
		Name:          f.Name,
		Params:        convertParams(f.Params, names),
		ReturnType:    convertType(f.Return, names),
		ReturnTypeLoc: returnTypeLoc(f.Return, f.Pos),
		Body:          body,
	}, nil
}

func returnTypeLoc(t *grammar.Type, fallback lexer.Position) Position {
	if t != nil {
		return posOf(t.Pos)
	}
	return posOf(fallback)
}

func convertGlobalVar(g *grammar.GlobalVar, names *typeNames) (*GlobalVar, error) {
	init, err := convertExpr(g.Init, names)
	if err != nil {
		return nil, err
	}
	return &GlobalVar{
		Pos: posOf(g.Pos), EndPos: posOf(g.EndPos),
		Name: g.Name,
		Type: convertType(g.Type, names),
		Init: init,
	}, nil
}

func convertClassDecl(c *grammar.ClassDecl, names *typeNames) (*ClassDecl, error) {
	fields := make([]*ClassField, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, &ClassField{Name: f.Name, Type: convertType(f.Type, names)})
	}
	return &ClassDecl{
		Pos: posOf(c.Pos), EndPos: posOf(c.EndPos),
		Name:   c.Name,
		Fields: fields,
	}, nil
}

func convertEnumDecl(e *grammar.EnumDecl) *EnumDecl {
	return &EnumDecl{
		Pos: posOf(e.Pos), EndPos: posOf(e.EndPos),
		Name:     e.Name,
		Variants: append([]string(nil), e.Variants...),
	}
}

func convertBlock(b *grammar.Block, names *typeNames) (*Block, error) {
	out := &Block{Pos: posOf(b.Pos), EndPos: posOf(b.EndPos)}
	for _, s := range b.Stmts {
		stmt, err := convertStmt(s, names)
		if err != nil {
			return nil, err
		}
		out.Stmts = append(out.Stmts, stmt)
	}
	return out, nil
}

func convertStmt(s *grammar.Stmt, names *typeNames) (Stmt, error) {
	switch {
	case s.Let != nil:
		var init Expr
		if s.Let.Init != nil {
			var err error
			init, err = convertExpr(s.Let.Init, names)
			if err != nil {
				return nil, err
			}
		}
		return &LetStmt{
			Pos: posOf(s.Let.Pos), EndPos: posOf(s.Let.EndPos),
			Name: s.Let.Name, Type: convertType(s.Let.Type, names), Init: init,
		}, nil
	case s.Assign != nil:
		val, err := convertExpr(s.Assign.Value, names)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{
			Pos: posOf(s.Assign.Pos), EndPos: posOf(s.Assign.EndPos),
			Deref: s.Assign.Deref, Target: s.Assign.Target, Value: val,
		}, nil
	case s.Return != nil:
		var val Expr
		if s.Return.Value != nil {
			var err error
			val, err = convertExpr(s.Return.Value, names)
			if err != nil {
				return nil, err
			}
		}
		return &ReturnStmt{Pos: posOf(s.Return.Pos), EndPos: posOf(s.Return.EndPos), Value: val}, nil
	case s.If != nil:
		return convertIfStmt(s.If, names)
	case s.Expr != nil:
		val, err := convertExpr(s.Expr.Expr, names)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: posOf(s.Expr.Pos), EndPos: posOf(s.Expr.EndPos), Value: val}, nil
	default:
		return nil, fmt.Errorf("%s: empty statement", posOf(s.Pos))
	}
}

func convertIfStmt(s *grammar.IfStmt, names *typeNames) (*IfStmt, error) {
	cond, err := convertExpr(s.Cond, names)
	if err != nil {
		return nil, err
	}
	then, err := convertBlock(s.Then, names)
	if err != nil {
		return nil, err
	}
	out := &IfStmt{Pos: posOf(s.Pos), EndPos: posOf(s.EndPos), Cond: cond, Then: then}
	if s.Else != nil {
		switch {
		case s.Else.If != nil:
			elseIf, err := convertIfStmt(s.Else.If, names)
			if err != nil {
				return nil, err
			}
			out.Else = elseIf
		case s.Else.Block != nil:
			elseBlock, err := convertBlock(s.Else.Block, names)
			if err != nil {
				return nil, err
			}
			out.Else = elseBlock
		}
	}
	return out, nil
}

func convertExpr(e *grammar.Expr, names *typeNames) (Expr, error) {
	return convertBinary(e.Binary, names)
}

var precedence = map[string]int{
	"||": 1, "&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"+": 4, "-": 4,
	"*": 5, "/": 5,
}

// convertBinary folds the flat operator list produced by the grammar into a
// precedence-climbing tree, left associative within each precedence level.
func convertBinary(b *grammar.BinaryExpr, names *typeNames) (Expr, error) {
	left, err := convertUnary(b.Left, names)
	if err != nil {
		return nil, err
	}
	type opnd struct {
		op    string
		right Expr
		pos   Position
	}
	operands := make([]opnd, 0, len(b.Ops))
	for _, o := range b.Ops {
		right, err := convertUnary(o.Right, names)
		if err != nil {
			return nil, err
		}
		operands = append(operands, opnd{op: o.Operator, right: right, pos: posOf(o.Pos)})
	}

	var build func(minPrec int, lhs Expr, idx int) (Expr, int)
	build = func(minPrec int, lhs Expr, idx int) (Expr, int) {
		for idx < len(operands) && precedence[operands[idx].op] >= minPrec {
			op := operands[idx]
			idx++
			rhs := op.right
			for idx < len(operands) && precedence[operands[idx].op] > precedence[op.op] {
				rhs, idx = build(precedence[op.op]+1, rhs, idx)
			}
			lhs = &BinaryExpr{Pos: lhs.NodePos(), EndPos: rhs.NodeEndPos(), Operator: op.op, Left: lhs, Right: rhs}
		}
		return lhs, idx
	}
	result, _ := build(0, left, 0)
	return result, nil
}

func convertUnary(u *grammar.UnaryExpr, names *typeNames) (Expr, error) {
	value, err := convertPostfix(u.Value, names)
	if err != nil {
		return nil, err
	}
	if u.Operator == nil {
		return value, nil
	}
	return &UnaryExpr{
		Pos: posOf(u.Pos), EndPos: posOf(u.EndPos),
		Operator: *u.Operator, Value: value,
	}, nil
}

func convertPostfix(p *grammar.PostfixExpr, names *typeNames) (Expr, error) {
	primary, err := convertPrimary(p.Primary, names)
	if err != nil {
		return nil, err
	}
	if len(p.Calls) == 0 {
		return primary, nil
	}
	ident, ok := primary.(*IdentExpr)
	if !ok {
		return nil, fmt.Errorf("%s: call target must be a function name", posOf(p.Pos))
	}
	call := p.Calls[0]
	args := make([]Expr, 0, len(call.Args))
	for _, a := range call.Args {
		argExpr, err := convertExpr(a, names)
		if err != nil {
			return nil, err
		}
		args = append(args, argExpr)
	}
	return &CallExpr{
		Pos: posOf(p.Pos), EndPos: posOf(call.EndPos),
		Callee: ident.Name, Args: args,
	}, nil
}

func convertPrimary(p *grammar.PrimaryExpr, names *typeNames) (Expr, error) {
	switch {
	case p.Number != nil:
		v, err := parseInt(*p.Number)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", posOf(p.Pos), err)
		}
		return &IntLiteral{Pos: posOf(p.Pos), EndPos: posOf(p.EndPos), Value: v}, nil
	case p.True:
		return &BoolLiteral{Pos: posOf(p.Pos), EndPos: posOf(p.EndPos), Value: true}, nil
	case p.False:
		return &BoolLiteral{Pos: posOf(p.Pos), EndPos: posOf(p.EndPos), Value: false}, nil
	case p.Ident != nil:
		return &IdentExpr{Pos: posOf(p.Pos), EndPos: posOf(p.EndPos), Name: *p.Ident}, nil
	case p.Paren != nil:
		inner, err := convertExpr(p.Paren, names)
		if err != nil {
			return nil, err
		}
		return &ParenExpr{Pos: posOf(p.Pos), EndPos: posOf(p.EndPos), Inner: inner}, nil
	default:
		return nil, fmt.Errorf("%s: empty expression", posOf(p.Pos))
	}
}

func parseInt(s string) (int64, error) {
	if strings.HasPrefix(s, "0x") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
