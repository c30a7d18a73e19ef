package abi

import "go.bytecodealliance.org/wit"

// Kind enumerates the scalar element kinds list marshaling dispatches on.
// The set is closed: every kind maps to exactly one (size, align) pair in
// layout.ElementInfo, and tests cross-check that table against the size/
// align calculator for each member.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindChar
	kindCount // sentinel, keep last
)

var kindNames = [...]string{
	KindBool: "bool",
	KindU8:   "u8",
	KindS8:   "s8",
	KindU16:  "u16",
	KindS16:  "s16",
	KindU32:  "u32",
	KindS32:  "s32",
	KindU64:  "u64",
	KindS64:  "s64",
	KindF32:  "f32",
	KindF64:  "f64",
	KindChar: "char",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns every member of the enumeration, for exhaustive iteration
// in dispatch-table checks.
func Kinds() []Kind {
	ks := make([]Kind, 0, int(kindCount))
	for k := Kind(0); k < kindCount; k++ {
		ks = append(ks, k)
	}
	return ks
}

// KindOf maps a scalar WIT type to its element kind. The second return is
// false for strings, compounds and nominal types: those never appear as
// elements of the scalar list helpers.
func KindOf(t wit.Type) (Kind, bool) {
	switch t.(type) {
	case wit.Bool:
		return KindBool, true
	case wit.U8:
		return KindU8, true
	case wit.S8:
		return KindS8, true
	case wit.U16:
		return KindU16, true
	case wit.S16:
		return KindS16, true
	case wit.U32:
		return KindU32, true
	case wit.S32:
		return KindS32, true
	case wit.U64:
		return KindU64, true
	case wit.S64:
		return KindS64, true
	case wit.F32:
		return KindF32, true
	case wit.F64:
		return KindF64, true
	case wit.Char:
		return KindChar, true
	default:
		return 0, false
	}
}

// Type returns the WIT type for an element kind.
func (k Kind) Type() wit.Type {
	switch k {
	case KindBool:
		return wit.Bool{}
	case KindU8:
		return wit.U8{}
	case KindS8:
		return wit.S8{}
	case KindU16:
		return wit.U16{}
	case KindS16:
		return wit.S16{}
	case KindU32:
		return wit.U32{}
	case KindS32:
		return wit.S32{}
	case KindU64:
		return wit.U64{}
	case KindS64:
		return wit.S64{}
	case KindF32:
		return wit.F32{}
	case KindF64:
		return wit.F64{}
	case KindChar:
		return wit.Char{}
	default:
		return nil
	}
}
