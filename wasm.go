package wasmbindgen

import "context"

// Memory is the linear memory of one module instance. All offsets are
// byte offsets into the flat buffer; a zero pointer is reserved.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU16(offset uint32) (uint16, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU16(offset uint32, value uint16) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// Allocator requests memory from a module instance's exported allocator.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// Function is a callable export. The stack carries flattened arguments on
// entry and flattened results on return, wazero-style; its length must be
// at least max(param slots, result slots).
type Function interface {
	CallWithStack(ctx context.Context, stack []uint64) error
}

// Instance is the view of an instantiated module the binding generator
// needs: the memory buffer, the allocator export, and export lookup.
// Handles are captured once per instantiation; instances are not safe for
// concurrent use.
type Instance interface {
	Memory() Memory
	Allocator() Allocator

	// ExportedFunction returns nil if the instance has no such export.
	ExportedFunction(name string) Function
}
