// Package ast defines the typed abstract syntax tree for the source
// language: translation units made up of imports, extern declarations,
// function definitions, globals, classes and enums. It is built from the
// raw parse tree in package grammar by From, resolving type names against
// types.Lookup and the program's own class/enum declarations.
package ast

import (
	"fmt"

	"cflow/internal/types"
)

// Position tracks a source location for diagnostics.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// NodeType discriminates the concrete Node implementations.
type NodeType int

const (
	ILLEGAL NodeType = iota
	PROGRAM
	EOF_ITEM
	IMPORT
	EXTERN_DECL
	FUNC_DEF
	GLOBAL_VAR
	CLASS_DECL
	ENUM_DECL
	PARAM
	BLOCK
	LET_STMT
	ASSIGN_STMT
	RETURN_STMT
	IF_STMT
	EXPR_STMT
	IDENT_EXPR
	INT_LITERAL
	BOOL_LITERAL
	UNARY_EXPR
	BINARY_EXPR
	CALL_EXPR
	PAREN_EXPR
)

// Node is implemented by every AST element.
type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
	// Type returns the static type recorded with SetType, or nil if none
	// was recorded; no stage of this compiler calls SetType.
	Type() *types.Type
	SetType(*types.Type)
}

type exprBase struct {
	typ *types.Type
}

func (e *exprBase) Type() *types.Type     { return e.typ }
func (e *exprBase) SetType(t *types.Type) { e.typ = t }
