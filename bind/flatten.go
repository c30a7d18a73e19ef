package bind

import (
	"math"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/errors"
)

// Resolve follows type aliases to the underlying type. Named compound
// types (records, variants, ...) are returned as-is.
func Resolve(t wit.Type) wit.Type {
	for {
		td, ok := t.(*wit.TypeDef)
		if !ok {
			return t
		}
		inner, ok := td.Kind.(wit.Type)
		if !ok {
			return t
		}
		t = inner
	}
}

// LowerScalar converts a host value to one flat core stack slot for the
// given scalar type. Integers are zero-extended into the slot the way
// wazero encodes i32 values; floats carry their raw bit pattern.
func LowerScalar(t wit.Type, value any, path string) (uint64, error) {
	switch t.(type) {
	case wit.Bool:
		b, ok := value.(bool)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), "bool")
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case wit.U8:
		return lowerUnsigned(value, math.MaxUint8, path, "u8")
	case wit.U16:
		return lowerUnsigned(value, math.MaxUint16, path, "u16")
	case wit.U32:
		return lowerUnsigned(value, math.MaxUint32, path, "u32")
	case wit.U64:
		v, ok := abi.CoerceToUint64(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), "u64")
		}
		return v, nil

	case wit.S8:
		return lowerSigned(value, math.MinInt8, math.MaxInt8, path, "s8")
	case wit.S16:
		return lowerSigned(value, math.MinInt16, math.MaxInt16, path, "s16")
	case wit.S32:
		return lowerSigned(value, math.MinInt32, math.MaxInt32, path, "s32")
	case wit.S64:
		v, ok := abi.CoerceToInt64(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), "s64")
		}
		return uint64(v), nil

	case wit.F32:
		f, ok := abi.CoerceToFloat32(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), "f32")
		}
		return uint64(abi.CanonicalizeF32(math.Float32bits(f))), nil
	case wit.F64:
		f, ok := abi.CoerceToFloat64(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), "f64")
		}
		return abi.CanonicalizeF64(math.Float64bits(f)), nil

	case wit.Char:
		r, ok := coerceToRune(value)
		if !ok {
			return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), "char")
		}
		if !abi.ValidateChar(r) {
			return 0, errors.New(errors.PhaseLower, errors.KindInvalidData).
				Path(path).
				WitType("char").
				Value(value).
				Detail("code point U+%X is not a valid char", uint32(r)).
				Build()
		}
		return uint64(uint32(r)), nil
	}

	return 0, errors.Unsupported(errors.PhaseLower, abi.TypeString(t), "not a scalar type")
}

func lowerUnsigned(value any, max uint64, path, witType string) (uint64, error) {
	v, ok := abi.CoerceToUint64(value)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), witType)
	}
	if v > max {
		return 0, errors.Overflow(errors.PhaseLower, []string{path}, value, witType)
	}
	return v, nil
}

func lowerSigned(value any, min, max int64, path, witType string) (uint64, error) {
	v, ok := abi.CoerceToInt64(value)
	if !ok {
		return 0, errors.TypeMismatch(errors.PhaseLower, []string{path}, abi.GoTypeName(value), witType)
	}
	if v < min || v > max {
		return 0, errors.Overflow(errors.PhaseLower, []string{path}, value, witType)
	}
	// Narrow types travel zero-extended in the low 32 bits of the slot.
	if max <= math.MaxInt32 {
		return uint64(uint32(int32(v))), nil
	}
	return uint64(v), nil
}

func coerceToRune(value any) (rune, bool) {
	switch v := value.(type) {
	case rune:
		return v, true
	case int:
		if v < 0 || v > 0x10FFFF {
			return 0, false
		}
		return rune(v), true
	case uint32:
		if v > 0x10FFFF {
			return 0, false
		}
		return rune(v), true
	case string:
		runes := []rune(v)
		if len(runes) != 1 {
			return 0, false
		}
		return runes[0], true
	}
	return 0, false
}

// LiftScalar converts one flat core stack slot back to a host value for
// the given scalar type.
func LiftScalar(t wit.Type, slot uint64, path string) (any, error) {
	switch t.(type) {
	case wit.Bool:
		return slot&0xFF != 0, nil
	case wit.U8:
		return uint8(slot), nil
	case wit.U16:
		return uint16(slot), nil
	case wit.U32:
		return uint32(slot), nil
	case wit.U64:
		return slot, nil
	case wit.S8:
		return int8(slot), nil
	case wit.S16:
		return int16(slot), nil
	case wit.S32:
		return int32(uint32(slot)), nil
	case wit.S64:
		return int64(slot), nil
	case wit.F32:
		return math.Float32frombits(abi.CanonicalizeF32(uint32(slot))), nil
	case wit.F64:
		return math.Float64frombits(abi.CanonicalizeF64(slot)), nil
	case wit.Char:
		r := rune(uint32(slot))
		if !abi.ValidateChar(r) {
			return nil, errors.New(errors.PhaseLift, errors.KindInvalidData).
				Path(path).
				WitType("char").
				Detail("module returned invalid code point U+%X", uint32(slot)).
				Build()
		}
		return r, nil
	}

	return nil, errors.Unsupported(errors.PhaseLift, abi.TypeString(t), "not a scalar type")
}
