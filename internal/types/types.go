// Package types implements the small closed type system of the source
// language: fixed-width signed/unsigned integers, bool, pointers, and
// references to user-declared classes and enums.
package types

import "fmt"

// Kind discriminates the variants of Type.
type Kind int

const (
	KindBool Kind = iota
	KindSignedInt
	KindUnsignedInt
	KindPointer
	KindClass
	KindEnum
	KindVoid
)

// Type is a structural value type; two Types are the same type iff Equal
// reports true, regardless of which *Type instance holds them.
type Type struct {
	Kind Kind

	// Width is the bit width for KindSignedInt/KindUnsignedInt (8, 16, 32, 64).
	Width int

	// Elem is the pointee type for KindPointer.
	Elem *Type

	// Name is the declared name for KindClass/KindEnum.
	Name string
}

var (
	Bool = &Type{Kind: KindBool}
	Void = &Type{Kind: KindVoid}
)

func SignedInt(width int) *Type   { return &Type{Kind: KindSignedInt, Width: width} }
func UnsignedInt(width int) *Type { return &Type{Kind: KindUnsignedInt, Width: width} }
func Pointer(elem *Type) *Type    { return &Type{Kind: KindPointer, Elem: elem} }
func Class(name string) *Type     { return &Type{Kind: KindClass, Name: name} }
func Enum(name string) *Type      { return &Type{Kind: KindEnum, Name: name} }

// builtinWidths maps the fixed set of integer keyword spellings recognized
// by the surface grammar to their bit width.
var builtinWidths = map[string]int{
	"i8": 8, "i16": 16, "i32": 32, "i64": 64,
	"u8": 8, "u16": 16, "u32": 32, "u64": 64,
}

// Lookup resolves a grammar-level type name to a builtin Type. It returns
// (nil, false) for names that are not builtins — callers then treat the name
// as a class or enum reference to be resolved against the declared symbols
// of the translation unit.
func Lookup(name string) (*Type, bool) {
	if name == "bool" {
		return Bool, true
	}
	if w, ok := builtinWidths[name]; ok {
		if name[0] == 'i' {
			return SignedInt(w), true
		}
		return UnsignedInt(w), true
	}
	return nil, false
}

// Equal reports whether t and other denote the same type.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindSignedInt, KindUnsignedInt:
		return t.Width == other.Width
	case KindPointer:
		return t.Elem.Equal(other.Elem)
	case KindClass, KindEnum:
		return t.Name == other.Name
	default:
		return true
	}
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t *Type) IsInteger() bool {
	return t != nil && (t.Kind == KindSignedInt || t.Kind == KindUnsignedInt)
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindVoid:
		return "void"
	case KindSignedInt:
		return fmt.Sprintf("i%d", t.Width)
	case KindUnsignedInt:
		return fmt.Sprintf("u%d", t.Width)
	case KindPointer:
		return "&" + t.Elem.String()
	case KindClass:
		return t.Name
	case KindEnum:
		return t.Name
	default:
		return "?"
	}
}
