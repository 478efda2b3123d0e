// Package typecheck performs the handful of whole-program checks that need
// to see every top-level declaration at once, before any single function's
// CFG is built: duplicate declarations and calls to names that no fun or
// extern declaration in the unit declares (an import declares no names).
// Per-function definedness checking is the job of
// package simplify, which operates one CfGraph at a time.
package typecheck

import (
	"fmt"

	"cflow/internal/ast"
)

// Callable is the shape shared by FuncDef and ExternDecl, enough to check
// call sites without caring whether the target has a body.
type Callable struct {
	Name   string
	Params int
}

// Program is the result of checking one translation unit: its top-level
// callables, classes and enums.
type Program struct {
	Callables map[string]Callable
	Classes   map[string]*ast.ClassDecl
	Enums     map[string]*ast.EnumDecl
}

// Check validates prog's top-level declarations and call sites and returns
// the symbol tables it built; the CFG builder does not take them.
func Check(prog *ast.Program) (*Program, error) {
	out := &Program{
		Callables: map[string]Callable{},
		Classes:   map[string]*ast.ClassDecl{},
		Enums:     map[string]*ast.EnumDecl{},
	}

	for _, item := range prog.Items {
		switch decl := item.(type) {
		case *ast.FuncDef:
			if err := declareCallable(out, decl.Name, len(decl.Params), decl.Pos); err != nil {
				return nil, err
			}
		case *ast.ExternDecl:
			if err := declareCallable(out, decl.Name, len(decl.Params), decl.Pos); err != nil {
				return nil, err
			}
		case *ast.ClassDecl:
			if _, dup := out.Classes[decl.Name]; dup {
				return nil, fmt.Errorf("%s: class %q already declared", decl.Pos, decl.Name)
			}
			out.Classes[decl.Name] = decl
		case *ast.EnumDecl:
			if _, dup := out.Enums[decl.Name]; dup {
				return nil, fmt.Errorf("%s: enum %q already declared", decl.Pos, decl.Name)
			}
			out.Enums[decl.Name] = decl
		}
	}

	for _, item := range prog.Items {
		fn, ok := item.(*ast.FuncDef)
		if !ok {
			continue
		}
		if err := checkCalls(out, fn.Body); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func declareCallable(out *Program, name string, nparams int, pos ast.Position) error {
	if _, dup := out.Callables[name]; dup {
		return fmt.Errorf("%s: function %q already declared", pos, name)
	}
	out.Callables[name] = Callable{Name: name, Params: nparams}
	return nil
}

func checkCalls(prog *Program, block *ast.Block) error {
	for _, stmt := range block.Stmts {
		if err := checkStmtCalls(prog, stmt); err != nil {
			return err
		}
	}
	return nil
}

func checkStmtCalls(prog *Program, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return checkExprCalls(prog, s.Init)
	case *ast.AssignStmt:
		return checkExprCalls(prog, s.Value)
	case *ast.ReturnStmt:
		return checkExprCalls(prog, s.Value)
	case *ast.ExprStmt:
		return checkExprCalls(prog, s.Value)
	case *ast.IfStmt:
		if err := checkExprCalls(prog, s.Cond); err != nil {
			return err
		}
		if err := checkCalls(prog, s.Then); err != nil {
			return err
		}
		switch e := s.Else.(type) {
		case *ast.Block:
			return checkCalls(prog, e)
		case *ast.IfStmt:
			return checkStmtCalls(prog, e)
		}
	}
	return nil
}

func checkExprCalls(prog *Program, e ast.Expr) error {
	switch ex := e.(type) {
	case nil:
		return nil
	case *ast.CallExpr:
		callable, ok := prog.Callables[ex.Callee]
		if !ok {
			return fmt.Errorf("%s: call to undeclared function %q", ex.Pos, ex.Callee)
		}
		if len(ex.Args) != callable.Params {
			return fmt.Errorf("%s: %q expects %d argument(s), got %d", ex.Pos, ex.Callee, callable.Params, len(ex.Args))
		}
		for _, a := range ex.Args {
			if err := checkExprCalls(prog, a); err != nil {
				return err
			}
		}
	case *ast.BinaryExpr:
		if err := checkExprCalls(prog, ex.Left); err != nil {
			return err
		}
		return checkExprCalls(prog, ex.Right)
	case *ast.UnaryExpr:
		return checkExprCalls(prog, ex.Value)
	case *ast.ParenExpr:
		return checkExprCalls(prog, ex.Inner)
	}
	return nil
}
