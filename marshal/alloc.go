package marshal

import (
	"sync"

	wasmbindgen "github.com/wippyai/wasm-bindgen"
)

type Memory = wasmbindgen.Memory
type Allocator = wasmbindgen.Allocator

type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList tracks the guest allocations one marshaled call makes, so
// a failed lowering can hand them back. Constructed fresh per call,
// discarded after the call returns.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns the list to the pool; the list is invalid afterwards.
func (al *AllocationList) Release() {
	// Only pool small lists to prevent memory bloat
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{
		Ptr:   ptr,
		Size:  size,
		Align: align,
	})
}

func (al *AllocationList) Free(allocator Allocator) {
	if allocator == nil {
		return
	}
	for _, a := range al.allocations {
		if a.Ptr != 0 {
			allocator.Free(a.Ptr, a.Size, a.Align)
		}
	}
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}
