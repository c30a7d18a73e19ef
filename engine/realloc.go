package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	wasmbindgen "github.com/wippyai/wasm-bindgen"
)

const (
	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"

	// Legacy names from pre-standardization component model implementations
	legacyRealloc = "canonical_abi_realloc"
	legacyAlloc   = "allocate"
	simpleAlloc   = "alloc"
	legacyDealloc = "deallocate"
	simpleFree    = "free"
)

// discoverAllocator finds the module's allocator export, trying the
// standard cabi_realloc name first and legacy names after.
func discoverAllocator(instance api.Module) *reallocAllocator {
	allocFnDef := instance.ExportedFunctionDefinitions()[CabiRealloc]
	if allocFnDef == nil {
		allocFnDef = instance.ExportedFunctionDefinitions()[legacyRealloc]
	}
	if allocFnDef == nil {
		allocFnDef = instance.ExportedFunctionDefinitions()[legacyAlloc]
	}
	if allocFnDef == nil {
		allocFnDef = instance.ExportedFunctionDefinitions()[simpleAlloc]
	}

	a := &reallocAllocator{}
	if allocFnDef != nil {
		a.allocFn = instance.ExportedFunction(allocFnDef.Name())
		a.isSimpleAlloc = len(allocFnDef.ParamTypes()) < 4
	}

	if freeFn := instance.ExportedFunction(CabiFree); freeFn != nil {
		a.freeFn = freeFn
	} else if freeFn := instance.ExportedFunction(legacyDealloc); freeFn != nil {
		a.freeFn = freeFn
	} else if freeFn := instance.ExportedFunction(simpleFree); freeFn != nil {
		a.freeFn = freeFn
	}

	return a
}

// reallocAllocator implements wasmbindgen.Allocator over the module's own
// allocator export. Fresh allocations call cabi_realloc(0, 0, align, size).
type reallocAllocator struct {
	allocFn       api.Function
	freeFn        api.Function
	stackMutex    sync.Mutex
	stackBuf      [4]uint64
	isSimpleAlloc bool
}

func (a *reallocAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.allocFn == nil {
		return 0, fmt.Errorf("no allocator available")
	}

	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()

	ctx := context.Background()
	if a.isSimpleAlloc {
		a.stackBuf[0] = uint64(size)
		if err := a.allocFn.CallWithStack(ctx, a.stackBuf[:1]); err != nil {
			return 0, err
		}
		return uint32(a.stackBuf[0]), nil
	}

	a.stackBuf[0] = 0 // oldPtr
	a.stackBuf[1] = 0 // oldSize
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.allocFn.CallWithStack(ctx, a.stackBuf[:4]); err != nil {
		return 0, err
	}
	return uint32(a.stackBuf[0]), nil
}

func (a *reallocAllocator) Free(ptr, size, align uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}

	a.stackMutex.Lock()
	defer a.stackMutex.Unlock()

	a.stackBuf[0] = uint64(ptr)
	a.stackBuf[1] = uint64(size)
	a.stackBuf[2] = uint64(align)
	if err := a.freeFn.CallWithStack(context.Background(), a.stackBuf[:3]); err != nil {
		Logger().Warn("Free: deallocation call failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// moduleAllocator allocates through the calling module's realloc export
// during a host call, carrying the call's context.
type moduleAllocator struct {
	ctx      context.Context
	allocFn  api.Function
	stackBuf [4]uint64
}

func (a *moduleAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.allocFn == nil {
		return 0, fmt.Errorf("no allocator available")
	}
	a.stackBuf[0] = 0 // oldPtr
	a.stackBuf[1] = 0 // oldSize
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.allocFn.CallWithStack(a.ctx, a.stackBuf[:]); err != nil {
		return 0, err
	}
	return uint32(a.stackBuf[0]), nil
}

func (a *moduleAllocator) Free(ptr, size, align uint32) {
	// Module-based allocator doesn't support free
}

// Compile-time check that both allocators implement wasmbindgen.Allocator
var (
	_ wasmbindgen.Allocator = (*reallocAllocator)(nil)
	_ wasmbindgen.Allocator = (*moduleAllocator)(nil)
)
