package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the runtime type carried by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindI32
	KindU32
	KindF64
	KindString
	KindArray
)

// String returns a human-readable name for Kind.
func (k Kind) String() string {
	switch k {
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
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a tagged constant stored in a chunk's constant pool.
// Only the field selected by Kind is meaningful; the rest stay zero so
// values compare and serialize deterministically.
type Value struct {
	Kind Kind    `cbor:"k"`
	Bool bool    `cbor:"b,omitempty"`
	I32  int32   `cbor:"i,omitempty"`
	U32  uint32  `cbor:"u,omitempty"`
	F64  float64 `cbor:"f,omitempty"`
	Str  string  `cbor:"s,omitempty"`
	Arr  []Value `cbor:"a,omitempty"`
}

// Nil returns the nil value.
func Nil() Value { return Value{Kind: KindNil} }

// NewBool returns a boolean value.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewI32 returns a signed 32-bit integer value.
func NewI32(i int32) Value { return Value{Kind: KindI32, I32: i} }

// NewU32 returns an unsigned 32-bit integer value.
func NewU32(u uint32) Value { return Value{Kind: KindU32, U32: u} }

// NewF64 returns a 64-bit float value.
func NewF64(f float64) Value { return Value{Kind: KindF64, F64: f} }

// NewString returns a string value.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// NewArray returns an array value holding the given elements.
func NewArray(elems []Value) Value { return Value{Kind: KindArray, Arr: elems} }

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool { return v.Kind == KindNil }

// Truthy reports whether the value counts as true in a condition.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equals reports deep equality between two values.
func (v Value) Equals(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindI32:
		return v.I32 == o.I32
	case KindU32:
		return v.U32 == o.U32
	case KindF64:
		return v.F64 == o.F64
	case KindString:
		return v.Str == o.Str
	case KindArray:
		if len(v.Arr) != len(o.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equals(o.Arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String formats the value the way the disassembler and diagnostics print it.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindI32:
		return strconv.FormatInt(int64(v.I32), 10)
	case KindU32:
		return strconv.FormatUint(uint64(v.U32), 10)
	case KindF64:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.Arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return fmt.Sprintf("<invalid %s>", v.Kind)
	}
}
