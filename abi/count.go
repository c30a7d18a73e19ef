package abi

import "go.bytecodealliance.org/wit"

// FlatCount returns the number of scalar call slots a value of type t
// occupies when flattened: one word for a scalar, two words (pointer,
// length) for a string or list, and the recursive sum for compound kinds.
// Every type has a finite arity; unknown kinds conservatively count one.
func FlatCount(t wit.Type) int {
	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32,
		wit.U64, wit.S64, wit.F32, wit.F64, wit.Char:
		return 1
	case wit.String:
		return 2
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.Record:
			count := 0
			for _, f := range kind.Fields {
				count += FlatCount(f.Type)
			}
			return count
		case *wit.List:
			return 2
		case *wit.Tuple:
			count := 0
			for _, elem := range kind.Types {
				count += FlatCount(elem)
			}
			return count
		case *wit.Option:
			return 1 + FlatCount(kind.Type)
		case *wit.Result:
			okCount := 0
			if kind.OK != nil {
				okCount = FlatCount(kind.OK)
			}
			errCount := 0
			if kind.Err != nil {
				errCount = FlatCount(kind.Err)
			}
			if errCount > okCount {
				return 1 + errCount
			}
			return 1 + okCount
		case *wit.Variant:
			maxPayload := 0
			for _, c := range kind.Cases {
				if c.Type != nil {
					if n := FlatCount(c.Type); n > maxPayload {
						maxPayload = n
					}
				}
			}
			return 1 + maxPayload
		case *wit.Enum, *wit.Flags:
			return 1
		case wit.Type:
			// nominal alias
			return FlatCount(kind)
		}
	}
	return 1
}

// FlatTotal sums FlatCount over a type list.
func FlatTotal(types []wit.Type) int {
	total := 0
	for _, t := range types {
		total += FlatCount(t)
	}
	return total
}

// DiscriminantSize: 1 byte for <=256 cases, 2 for <=65536, else 4.
func DiscriminantSize(numCases int) uint32 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}
