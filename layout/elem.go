package layout

import "github.com/wippyai/wasm-bindgen/abi"

// elementTable maps every list element kind to its (size, align) pair.
// Indexed by kind so every kind resolves to exactly one entry; a test keeps
// it in lockstep with the calculator.
var elementTable = [...]Info{
	abi.KindBool: {Size: 1, Align: 1},
	abi.KindU8:   {Size: 1, Align: 1},
	abi.KindS8:   {Size: 1, Align: 1},
	abi.KindU16:  {Size: 2, Align: 2},
	abi.KindS16:  {Size: 2, Align: 2},
	abi.KindU32:  {Size: 4, Align: 4},
	abi.KindS32:  {Size: 4, Align: 4},
	abi.KindU64:  {Size: 8, Align: 8},
	abi.KindS64:  {Size: 8, Align: 8},
	abi.KindF32:  {Size: 4, Align: 4},
	abi.KindF64:  {Size: 8, Align: 8},
	abi.KindChar: {Size: 4, Align: 4},
}

// ElementInfo returns the element layout for a list element kind.
func ElementInfo(k abi.Kind) (Info, bool) {
	if int(k) >= len(elementTable) {
		return Info{}, false
	}
	return elementTable[k], true
}
