package abi

import "go.bytecodealliance.org/wit"

// Classification is the per-function marshaling decision.
type Classification uint8

const (
	// Scalar functions carry only machine-word primitives in both
	// directions and bind directly to the export, with no wrapper.
	Scalar Classification = iota
	// Marshaled functions need a lowering/lifting wrapper.
	Marshaled
)

var classificationNames = [...]string{
	Scalar:    "scalar",
	Marshaled: "marshaled",
}

func (c Classification) String() string {
	if int(c) < len(classificationNames) {
		return classificationNames[c]
	}
	return "unknown"
}

// IsScalarType reports whether t fits in one machine word with no heap
// indirection: bool, char, the fixed-width integers, f32 and f64.
// Strings, lists, every compound kind and every nominal type are not
// scalar.
func IsScalarType(t wit.Type) bool {
	switch t.(type) {
	case wit.Bool, wit.Char,
		wit.U8, wit.S8, wit.U16, wit.S16,
		wit.U32, wit.S32, wit.U64, wit.S64,
		wit.F32, wit.F64:
		return true
	default:
		return false
	}
}

// Classify walks parameter types and result types in declaration order and
// short-circuits to Marshaled on the first non-scalar type. A scalar-only
// parameter list with a non-scalar result is still Marshaled. Pure; every
// well-formed signature classifies deterministically.
func Classify(params, results []wit.Type) Classification {
	for _, p := range params {
		if !IsScalarType(p) {
			return Marshaled
		}
	}
	for _, r := range results {
		if !IsScalarType(r) {
			return Marshaled
		}
	}
	return Scalar
}
