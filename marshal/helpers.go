package marshal

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/errors"
	"github.com/wippyai/wasm-bindgen/layout"
)

// EmptyPtr is the sentinel pointer returned for zero-length payloads. A
// null pointer is reserved, so empty text and empty lists use this fixed
// non-null address with length zero and never allocate.
const EmptyPtr uint32 = 1

// Helpers is the runtime helper set for one module instance. It closes
// over the instance's memory buffer and allocator export, captured once at
// instantiation time.
type Helpers struct {
	mem   Memory
	alloc Allocator
}

func NewHelpers(mem Memory, alloc Allocator) *Helpers {
	return &Helpers{mem: mem, alloc: alloc}
}

// Memory returns the instance memory the helpers operate on.
func (h *Helpers) Memory() Memory {
	return h.mem
}

// EncodeText lowers a text value into linear memory as UTF-8 bytes and
// returns the (pointer, length) pair. Non-text input is a type error.
// Zero-length text returns (EmptyPtr, 0) without touching the allocator.
func (h *Helpers) EncodeText(value any, allocs *AllocationList) (uint32, uint32, error) {
	s, ok := value.(string)
	if !ok {
		return 0, 0, errors.TypeMismatch(errors.PhaseLower, nil, abi.GoTypeName(value), "string")
	}

	if len(s) == 0 {
		return EmptyPtr, 0, nil
	}
	if textTooLong(len(s)) {
		return 0, 0, errors.Overflow(errors.PhaseLower, nil, len(s), "string")
	}
	length := uint32(len(s))

	ptr, err := h.alloc.Alloc(length, 1)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseLower, length, 1, err)
	}
	if allocs != nil {
		allocs.Add(ptr, length, 1)
	}

	if err := h.mem.Write(ptr, []byte(s)); err != nil {
		return 0, 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write string bytes")
	}
	return ptr, length, nil
}

// DecodeText reads length bytes at ptr and decodes them as UTF-8. Invalid
// byte sequences surface as a typed decode failure, never a corrupted
// value. Embedded null bytes are ordinary data.
func (h *Helpers) DecodeText(ptr, length uint32) (string, error) {
	if length == 0 {
		return "", nil
	}
	data, err := h.mem.Read(ptr, length)
	if err != nil {
		return "", errors.OutOfBounds(errors.PhaseLift, nil, ptr, length)
	}
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(errors.PhaseLift, nil, data)
	}
	return string(data), nil
}

// StoreList lowers a slice of scalar elements into linear memory at the
// element kind's natural stride and returns the (pointer, length) pair.
// The kind dispatch is the exhaustive table in the layout package; every
// kind resolves to exactly one size/alignment pair.
func (h *Helpers) StoreList(value any, kind abi.Kind, allocs *AllocationList) (uint32, uint32, error) {
	elem, ok := layout.ElementInfo(kind)
	if !ok {
		return 0, 0, errors.Unsupported(errors.PhaseLower, kind.String(), "not a list element kind")
	}

	data, n, err := encodeElements(value, kind, elem.Size)
	if err != nil {
		return 0, 0, err
	}
	if n == 0 {
		return EmptyPtr, 0, nil
	}
	if listTooLong(n) {
		return 0, 0, errors.Overflow(errors.PhaseLower, nil, n, "list")
	}

	count := uint32(n)
	size := count * elem.Size
	ptr, err := h.alloc.Alloc(size, elem.Align)
	if err != nil {
		return 0, 0, errors.AllocationFailed(errors.PhaseLower, size, elem.Align, err)
	}
	if allocs != nil {
		allocs.Add(ptr, size, elem.Align)
	}

	if err := h.mem.Write(ptr, data); err != nil {
		return 0, 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write list bytes")
	}
	return ptr, count, nil
}

// LoadList reads length elements of the given kind starting at ptr and
// returns the typed slice.
func (h *Helpers) LoadList(ptr, length uint32, kind abi.Kind) (any, error) {
	elem, ok := layout.ElementInfo(kind)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseLift, kind.String(), "not a list element kind")
	}
	if length == 0 {
		return emptySlice(kind), nil
	}

	data, err := h.mem.Read(ptr, length*elem.Size)
	if err != nil {
		return nil, errors.OutOfBounds(errors.PhaseLift, nil, ptr, length*elem.Size)
	}
	return decodeElements(data, length, kind)
}

// Size limits are compared against the untruncated Go length. Converting
// to uint32 first would let a 2^32-byte payload wrap to 0 and slip past
// the guard.
func textTooLong(n int) bool {
	return uint64(n) > abi.MaxStringSize
}

func listTooLong(n int) bool {
	return uint64(n) > abi.MaxListLength
}

func encodeElements(value any, kind abi.Kind, elemSize uint32) ([]byte, int, error) {
	le := binary.LittleEndian

	switch kind {
	case abi.KindBool:
		vs, ok := value.([]bool)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs))
		for i, v := range vs {
			if v {
				data[i] = 1
			}
		}
		return data, len(vs), nil
	case abi.KindU8:
		vs, ok := value.([]uint8)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs))
		copy(data, vs)
		return data, len(vs), nil
	case abi.KindS8:
		vs, ok := value.([]int8)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs))
		for i, v := range vs {
			data[i] = byte(v)
		}
		return data, len(vs), nil
	case abi.KindU16:
		vs, ok := value.([]uint16)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*2)
		for i, v := range vs {
			le.PutUint16(data[i*2:], v)
		}
		return data, len(vs), nil
	case abi.KindS16:
		vs, ok := value.([]int16)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*2)
		for i, v := range vs {
			le.PutUint16(data[i*2:], uint16(v))
		}
		return data, len(vs), nil
	case abi.KindU32:
		vs, ok := value.([]uint32)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*4)
		for i, v := range vs {
			le.PutUint32(data[i*4:], v)
		}
		return data, len(vs), nil
	case abi.KindS32:
		vs, ok := value.([]int32)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*4)
		for i, v := range vs {
			le.PutUint32(data[i*4:], uint32(v))
		}
		return data, len(vs), nil
	case abi.KindU64:
		vs, ok := value.([]uint64)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*8)
		for i, v := range vs {
			le.PutUint64(data[i*8:], v)
		}
		return data, len(vs), nil
	case abi.KindS64:
		vs, ok := value.([]int64)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*8)
		for i, v := range vs {
			le.PutUint64(data[i*8:], uint64(v))
		}
		return data, len(vs), nil
	case abi.KindF32:
		vs, ok := value.([]float32)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*4)
		for i, v := range vs {
			le.PutUint32(data[i*4:], math.Float32bits(v))
		}
		return data, len(vs), nil
	case abi.KindF64:
		vs, ok := value.([]float64)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*8)
		for i, v := range vs {
			le.PutUint64(data[i*8:], math.Float64bits(v))
		}
		return data, len(vs), nil
	case abi.KindChar:
		vs, ok := value.([]rune)
		if !ok {
			return nil, 0, listTypeMismatch(value, kind)
		}
		data := make([]byte, len(vs)*4)
		for i, v := range vs {
			if !abi.ValidateChar(v) {
				return nil, 0, errors.New(errors.PhaseLower, errors.KindInvalidData).
					Value(v).
					WitType("char").
					Detail("invalid Unicode scalar value %#x", v).
					Build()
			}
			le.PutUint32(data[i*4:], uint32(v))
		}
		return data, len(vs), nil
	default:
		return nil, 0, errors.Unsupported(errors.PhaseLower, kind.String(), "not a list element kind")
	}
}

func decodeElements(data []byte, length uint32, kind abi.Kind) (any, error) {
	le := binary.LittleEndian
	n := int(length)

	switch kind {
	case abi.KindBool:
		vs := make([]bool, n)
		for i := 0; i < n; i++ {
			vs[i] = data[i] != 0
		}
		return vs, nil
	case abi.KindU8:
		vs := make([]uint8, n)
		copy(vs, data)
		return vs, nil
	case abi.KindS8:
		vs := make([]int8, n)
		for i := 0; i < n; i++ {
			vs[i] = int8(data[i])
		}
		return vs, nil
	case abi.KindU16:
		vs := make([]uint16, n)
		for i := 0; i < n; i++ {
			vs[i] = le.Uint16(data[i*2:])
		}
		return vs, nil
	case abi.KindS16:
		vs := make([]int16, n)
		for i := 0; i < n; i++ {
			vs[i] = int16(le.Uint16(data[i*2:]))
		}
		return vs, nil
	case abi.KindU32:
		vs := make([]uint32, n)
		for i := 0; i < n; i++ {
			vs[i] = le.Uint32(data[i*4:])
		}
		return vs, nil
	case abi.KindS32:
		vs := make([]int32, n)
		for i := 0; i < n; i++ {
			vs[i] = int32(le.Uint32(data[i*4:]))
		}
		return vs, nil
	case abi.KindU64:
		vs := make([]uint64, n)
		for i := 0; i < n; i++ {
			vs[i] = le.Uint64(data[i*8:])
		}
		return vs, nil
	case abi.KindS64:
		vs := make([]int64, n)
		for i := 0; i < n; i++ {
			vs[i] = int64(le.Uint64(data[i*8:]))
		}
		return vs, nil
	case abi.KindF32:
		vs := make([]float32, n)
		for i := 0; i < n; i++ {
			vs[i] = math.Float32frombits(le.Uint32(data[i*4:]))
		}
		return vs, nil
	case abi.KindF64:
		vs := make([]float64, n)
		for i := 0; i < n; i++ {
			vs[i] = math.Float64frombits(le.Uint64(data[i*8:]))
		}
		return vs, nil
	case abi.KindChar:
		vs := make([]rune, n)
		for i := 0; i < n; i++ {
			r := rune(le.Uint32(data[i*4:]))
			if !abi.ValidateChar(r) {
				return nil, errors.New(errors.PhaseLift, errors.KindInvalidData).
					Value(r).
					WitType("char").
					Detail("invalid Unicode scalar value %#x", r).
					Build()
			}
			vs[i] = r
		}
		return vs, nil
	default:
		return nil, errors.Unsupported(errors.PhaseLift, kind.String(), "not a list element kind")
	}
}

func emptySlice(kind abi.Kind) any {
	switch kind {
	case abi.KindBool:
		return []bool{}
	case abi.KindU8:
		return []uint8{}
	case abi.KindS8:
		return []int8{}
	case abi.KindU16:
		return []uint16{}
	case abi.KindS16:
		return []int16{}
	case abi.KindU32:
		return []uint32{}
	case abi.KindS32:
		return []int32{}
	case abi.KindU64:
		return []uint64{}
	case abi.KindS64:
		return []int64{}
	case abi.KindF32:
		return []float32{}
	case abi.KindF64:
		return []float64{}
	case abi.KindChar:
		return []rune{}
	default:
		return nil
	}
}

func listTypeMismatch(value any, kind abi.Kind) error {
	return errors.TypeMismatch(errors.PhaseLower, nil, abi.GoTypeName(value), "list<"+kind.String()+">")
}
