package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Program is the raw parse tree for one translation unit. It deliberately
// carries no semantic information (no type resolution, no scoping) — that is
// the job of internal/ast and internal/typecheck, which walk this tree into
// the typed AST the CFG builder consumes.
type Program struct {
	Pos, EndPos lexer.Position
	Items       []*TopLevelItem `@@*`
}

type TopLevelItem struct {
	Pos, EndPos lexer.Position
	Import      *Import     `  @@`
	Extern      *ExternDecl `| @@`
	Func        *FuncDef    `| @@`
	Global      *GlobalVar  `| @@`
	Class       *ClassDecl  `| @@`
	Enum        *EnumDecl   `| @@`
}

type Import struct {
	Pos, EndPos lexer.Position
	Path        []string `"import" @Ident { "::" @Ident } ";"`
}

type ExternDecl struct {
	Pos, EndPos lexer.Position
	Name        string   `"extern" "fun" @Ident "("`
	Params      []*Param `[ @@ { "," @@ } ] ")"`
	Return      *Type    `[ ":" @@ ] ";"`
}

type FuncDef struct {
	Pos, EndPos lexer.Position
	Name        string   `"fun" @Ident "("`
	Params      []*Param `[ @@ { "," @@ } ] ")"`
	Return      *Type    `[ ":" @@ ]`
	Body        *Block   `@@`
}

type Param struct {
	Pos, EndPos lexer.Position
	Name        string `@Ident ":"`
	Type        *Type  `@@`
}

type GlobalVar struct {
	Pos, EndPos lexer.Position
	Name        string `"let" @Ident ":"`
	Type        *Type  `@@ "="`
	Init        *Expr  `@@ ";"`
}

type ClassDecl struct {
	Pos, EndPos lexer.Position
	Name        string        `"class" @Ident "{"`
	Fields      []*ClassField `@@* "}"`
}

type ClassField struct {
	Pos, EndPos lexer.Position
	Name        string `@Ident ":"`
	Type        *Type  `@@ ","`
}

type EnumDecl struct {
	Pos, EndPos lexer.Position
	Name        string   `"enum" @Ident "{"`
	Variants    []string `@Ident { "," @Ident } [ "," ] "}"`
}

// Type is either a pointer (recursive, "&T") or a name — "bool", one of the
// fixed-width integer keywords ("i8".."i64", "u8".."u64"), or a class/enum
// reference. Keyword-ness is resolved later, in internal/ast, so the lexer
// and grammar stay free of a keyword table for type names.
type Type struct {
	Pos, EndPos lexer.Position
	Pointer     *Type  `  "&" @@`
	Name        string `| @Ident`
}

type Block struct {
	Pos, EndPos lexer.Position
	Stmts       []*Stmt `"{" @@* "}"`
}

type Stmt struct {
	Pos, EndPos lexer.Position
	Let         *LetStmt    `  @@`
	Assign      *AssignStmt `| @@`
	Return      *ReturnStmt `| @@`
	If          *IfStmt     `| @@`
	Expr        *ExprStmt   `| @@`
}

type LetStmt struct {
	Pos, EndPos lexer.Position
	Name        string `"let" @Ident ":"`
	Type        *Type  `@@`
	Init        *Expr  `[ "=" @@ ] ";"`
}

type AssignStmt struct {
	Pos, EndPos lexer.Position
	Deref       bool   `[ @"*" ]`
	Target      string `@Ident "="`
	Value       *Expr  `@@ ";"`
}

type ReturnStmt struct {
	Pos, EndPos lexer.Position
	Value       *Expr `"return" [ @@ ] ";"`
}

type IfStmt struct {
	Pos, EndPos lexer.Position
	Cond        *Expr       `"if" @@`
	Then        *Block      `@@`
	Else        *ElseClause `[ "else" @@ ]`
}

type ElseClause struct {
	Pos, EndPos lexer.Position
	If          *IfStmt `  @@`
	Block       *Block  `| @@`
}

type ExprStmt struct {
	Pos, EndPos lexer.Position
	Expr        *Expr `@@ ";"`
}

type Expr struct {
	Pos, EndPos lexer.Position
	Binary      *BinaryExpr `@@`
}

type BinaryExpr struct {
	Pos, EndPos lexer.Position
	Left        *UnaryExpr `@@`
	Ops         []*BinOp   `{ @@ }`
}

type BinOp struct {
	Pos, EndPos lexer.Position
	Operator    string     `@("||" | "&&" | "==" | "!=" | "<=" | ">=" | "<" | ">" | "+" | "-" | "*" | "/")`
	Right       *UnaryExpr `@@`
}

type UnaryExpr struct {
	Pos, EndPos lexer.Position
	Operator    *string      `[ @("!" | "-" | "&" | "*") ]`
	Value       *PostfixExpr `@@`
}

type PostfixExpr struct {
	Pos, EndPos lexer.Position
	Primary     *PrimaryExpr  `@@`
	Calls       []*CallSuffix `{ @@ }`
}

type CallSuffix struct {
	Pos, EndPos lexer.Position
	Args        []*Expr `"(" [ @@ { "," @@ } ] ")"`
}

type PrimaryExpr struct {
	Pos, EndPos lexer.Position
	Number      *string `  @Integer`
	True        bool    `| @"true"`
	False       bool    `| @"false"`
	Ident       *string `| @Ident`
	Paren       *Expr   `| "(" @@ ")"`
}
