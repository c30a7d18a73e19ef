package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	wasmbindgen "github.com/wippyai/wasm-bindgen"
)

// Instance is a running WASM instance.
// It is NOT safe for concurrent use from multiple goroutines.
// Each goroutine should have its own Instance, or access must be synchronized externally.
type Instance struct {
	instance api.Module
	memory   *wazeroMemory
	alloc    *reallocAllocator
}

func newInstance(instance api.Module) *Instance {
	inst := &Instance{instance: instance}
	if mem := instance.Memory(); mem != nil {
		inst.memory = &wazeroMemory{mem: mem}
	}
	inst.alloc = discoverAllocator(instance)
	return inst
}

func (i *Instance) Memory() wasmbindgen.Memory {
	if i.memory == nil {
		return nil
	}
	return i.memory
}

func (i *Instance) Allocator() wasmbindgen.Allocator {
	return i.alloc
}

func (i *Instance) ExportedFunction(name string) wasmbindgen.Function {
	fn := i.instance.ExportedFunction(name)
	if fn == nil {
		return nil
	}
	return fn
}

// MemorySize returns the current linear memory size in bytes, or 0 if no memory.
func (i *Instance) MemorySize() uint32 {
	if i.memory == nil {
		return 0
	}
	return i.memory.Size()
}

func (i *Instance) Close(ctx context.Context) error {
	var err error
	if i.instance != nil {
		err = i.instance.Close(ctx)
		i.instance = nil
	}
	i.memory = nil
	i.alloc = nil
	return err
}

// wazeroMemory wraps wazero memory to implement wasmbindgen.Memory
type wazeroMemory struct {
	mem api.Memory
}

func (m *wazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *wazeroMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *wazeroMemory) ReadU8(offset uint32) (uint8, error) {
	data, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (m *wazeroMemory) ReadU16(offset uint32) (uint16, error) {
	data, err := m.Read(offset, 2)
	if err != nil {
		return 0, err
	}
	return uint16(data[0]) | uint16(data[1])<<8, nil
}

func (m *wazeroMemory) ReadU32(offset uint32) (uint32, error) {
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds")
	}
	return val, nil
}

func (m *wazeroMemory) ReadU64(offset uint32) (uint64, error) {
	val, ok := m.mem.ReadUint64Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds")
	}
	return val, nil
}

func (m *wazeroMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *wazeroMemory) WriteU16(offset uint32, value uint16) error {
	return m.Write(offset, []byte{byte(value), byte(value >> 8)})
}

func (m *wazeroMemory) WriteU32(offset uint32, value uint32) error {
	ok := m.mem.WriteUint32Le(offset, value)
	if !ok {
		return fmt.Errorf("write out of bounds")
	}
	return nil
}

func (m *wazeroMemory) WriteU64(offset uint32, value uint64) error {
	ok := m.mem.WriteUint64Le(offset, value)
	if !ok {
		return fmt.Errorf("write out of bounds")
	}
	return nil
}

func (m *wazeroMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// Compile-time check that wazeroMemory implements wasmbindgen.Memory
var _ wasmbindgen.Memory = (*wazeroMemory)(nil)

// Compile-time check that Instance implements wasmbindgen.Instance
var _ wasmbindgen.Instance = (*Instance)(nil)
