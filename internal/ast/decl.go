package ast

import "cflow/internal/types"

// Program is a translation unit: an ordered list of top level items
// followed by an explicit end-of-file sentinel, so diagnostics that need to
// point "at the end of the file" (an unterminated construct, for instance)
// have a real node to anchor to.
type Program struct {
	Pos, EndPos Position
	Items       []Node
	EOF         *EOFItem
}

func (p *Program) NodePos() Position    { return p.Pos }
func (p *Program) NodeEndPos() Position { return p.EndPos }
func (*Program) NodeType() NodeType     { return PROGRAM }
func (p *Program) String() string       { return "Program" }

// EOFItem marks the end of a translation unit.
type EOFItem struct {
	Pos, EndPos Position
}

func (e *EOFItem) NodePos() Position    { return e.Pos }
func (e *EOFItem) NodeEndPos() Position { return e.EndPos }
func (*EOFItem) NodeType() NodeType     { return EOF_ITEM }
func (*EOFItem) String() string         { return "<eof>" }

// Import is a top-level `import a::b::c;` item.
type Import struct {
	Pos, EndPos Position
	Path        []string
}

func (i *Import) NodePos() Position    { return i.Pos }
func (i *Import) NodeEndPos() Position { return i.EndPos }
func (*Import) NodeType() NodeType     { return IMPORT }
func (i *Import) String() string       { return "import " + joinPath(i.Path) }

func joinPath(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "::"
		}
		out += p
	}
	return out
}

// Param is a single function parameter.
type Param struct {
	Pos, EndPos Position
	Name        string
	Type        *types.Type
}

func (p *Param) NodePos() Position    { return p.Pos }
func (p *Param) NodeEndPos() Position { return p.EndPos }
func (*Param) NodeType() NodeType     { return PARAM }
func (p *Param) String() string       { return p.Name + ": " + p.Type.String() }

// ExternDecl declares a function implemented outside the translation unit
// (no body; the CFG builder never produces a graph for it).
type ExternDecl struct {
	Pos, EndPos     Position
	Name            string
	Params          []*Param
	ReturnType      *types.Type
	ReturnTypeLoc   Position
}

func (e *ExternDecl) NodePos() Position    { return e.Pos }
func (e *ExternDecl) NodeEndPos() Position { return e.EndPos }
func (*ExternDecl) NodeType() NodeType     { return EXTERN_DECL }
func (e *ExternDecl) String() string       { return "extern fun " + e.Name }

// FuncDef is a function definition with a body; it is the unit the CFG
// builder and simplification engine operate on.
type FuncDef struct {
	Pos, EndPos   Position
	Name          string
	Params        []*Param
	ReturnType    *types.Type
	ReturnTypeLoc Position
	Body          *Block
}

func (f *FuncDef) NodePos() Position    { return f.Pos }
func (f *FuncDef) NodeEndPos() Position { return f.EndPos }
func (*FuncDef) NodeType() NodeType     { return FUNC_DEF }
func (f *FuncDef) String() string       { return "fun " + f.Name }

// GlobalVar is a top-level `let name: type = expr;` declaration.
type GlobalVar struct {
	Pos, EndPos Position
	Name        string
	Type        *types.Type
	Init        Expr
}

func (g *GlobalVar) NodePos() Position    { return g.Pos }
func (g *GlobalVar) NodeEndPos() Position { return g.EndPos }
func (*GlobalVar) NodeType() NodeType     { return GLOBAL_VAR }
func (g *GlobalVar) String() string       { return "let " + g.Name + ": " + g.Type.String() }

// ClassField is one field of a ClassDecl.
type ClassField struct {
	Name string
	Type *types.Type
}

// ClassDecl declares a named aggregate type.
type ClassDecl struct {
	Pos, EndPos Position
	Name        string
	Fields      []*ClassField
}

func (c *ClassDecl) NodePos() Position    { return c.Pos }
func (c *ClassDecl) NodeEndPos() Position { return c.EndPos }
func (*ClassDecl) NodeType() NodeType     { return CLASS_DECL }
func (c *ClassDecl) String() string       { return "class " + c.Name }

// EnumDecl declares a named enumeration of variants.
type EnumDecl struct {
	Pos, EndPos Position
	Name        string
	Variants    []string
}

func (e *EnumDecl) NodePos() Position    { return e.Pos }
func (e *EnumDecl) NodeEndPos() Position { return e.EndPos }
func (*EnumDecl) NodeType() NodeType     { return ENUM_DECL }
func (e *EnumDecl) String() string       { return "enum " + e.Name }
