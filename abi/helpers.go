package abi

import (
	"fmt"
	"math"
	"reflect"

	"go.bytecodealliance.org/wit"
)

// AlignTo rounds offset up to the next multiple of align (a power of two).
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

const (
	CanonicalNaN32 = 0x7fc00000
	CanonicalNaN64 = 0x7ff8000000000000
)

const (
	MaxStringSize = 1 << 30 // 1 GB max string size
	MaxListLength = 1 << 27 // 128M max elements
	MaxAlloc      = 1 << 30 // 1 GB max single allocation
)

// CanonicalizeF32 returns canonical NaN for any NaN input.
func CanonicalizeF32(bits uint32) uint32 {
	f := math.Float32frombits(bits)
	if f != f { // NaN check
		return CanonicalNaN32
	}
	return bits
}

// CanonicalizeF64 returns canonical NaN for any NaN input.
func CanonicalizeF64(bits uint64) uint64 {
	f := math.Float64frombits(bits)
	if f != f { // NaN check
		return CanonicalNaN64
	}
	return bits
}

// ValidateChar rejects surrogates (0xD800-0xDFFF) and values >= 0x110000.
func ValidateChar(r rune) bool {
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	if r < 0 || r >= 0x110000 {
		return false
	}
	return true
}

// GoTypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func GoTypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// TypeString names a WIT type for error reporting.
func TypeString(t wit.Type) string {
	switch t := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		name := kindString(t.Kind)
		if t.Name != nil && *t.Name != "" {
			return name + " " + *t.Name
		}
		return name
	default:
		return fmt.Sprintf("%T", t)
	}
}

func kindString(k wit.TypeDefKind) string {
	switch k := k.(type) {
	case *wit.Record:
		return "record"
	case *wit.List:
		return "list<" + TypeString(k.Type) + ">"
	case *wit.Tuple:
		return "tuple"
	case *wit.Variant:
		return "variant"
	case *wit.Enum:
		return "enum"
	case *wit.Flags:
		return "flags"
	case *wit.Option:
		return "option<" + TypeString(k.Type) + ">"
	case *wit.Result:
		return "result"
	case *wit.Own:
		return "own"
	case *wit.Borrow:
		return "borrow"
	case wit.Type:
		return TypeString(k)
	default:
		return fmt.Sprintf("%T", k)
	}
}
