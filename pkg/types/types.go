// Package types carries the type descriptions attached to declarations by
// the type checker. The bytecode backend only references these records; it
// never creates, validates, or frees them.
package types

import "fmt"

// Kind enumerates the primitive and composite type categories.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindI32
	KindU32
	KindF64
	KindString
	KindArray
	KindFunction
)

// Type describes a resolved type. Array types carry an element type;
// function types carry a return type and parameters.
type Type struct {
	Kind   Kind
	Elem   *Type   // element type for arrays
	Return *Type   // return type for functions
	Params []*Type // parameter types for functions
}

// String returns the source-level spelling of the type.
func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}
	switch t.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindI32:
		return "i32"
	case KindU32:
		return "u32"
	case KindF64:
		return "f64"
	case KindString:
		return "string"
	case KindArray:
		return "[" + t.Elem.String() + "]"
	case KindFunction:
		return "fn"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(t.Kind))
	}
}

// Primitive returns the shared descriptor for a primitive kind.
func Primitive(k Kind) *Type {
	return primitives[k]
}

var primitives = map[Kind]*Type{
	KindNil:    {Kind: KindNil},
	KindBool:   {Kind: KindBool},
	KindI32:    {Kind: KindI32},
	KindU32:    {Kind: KindU32},
	KindF64:    {Kind: KindF64},
	KindString: {Kind: KindString},
}
