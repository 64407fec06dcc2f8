package guest

import (
	"sync"

	"github.com/wippyai/mutf8"
)

type Memory = mutf8.Memory
type Allocator = mutf8.Allocator

// Allocation is one guest buffer obtained while lowering: either the
// MUTF-8 body of a string (align 1) or the (ptr, len) records of a
// list<string> (align 4).
type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList records the guest buffers of one lowering so they can be
// handed back through cabi_realloc once the guest is done with them.
// Empty strings lower to (0, 0) and are never recorded.
type AllocationList struct {
	allocations []Allocation
	strings     int
	transformed int
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

// NewAllocationList takes an empty list from the pool.
func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns the list to the pool. Call Free first if the buffers
// should go back to the guest; the list must not be used afterwards.
func (al *AllocationList) Release() {
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

// Add records a list record buffer.
func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{Ptr: ptr, Size: size, Align: align})
}

// AddString records the buffer holding one lowered string. transformed is
// true when its MUTF-8 bytes differ from the UTF-8 source, i.e. the string
// held U+0000 or a supplementary-plane character.
func (al *AllocationList) AddString(ptr, size uint32, transformed bool) {
	al.allocations = append(al.allocations, Allocation{Ptr: ptr, Size: size, Align: 1})
	al.strings++
	if transformed {
		al.transformed++
	}
}

// Free hands every recorded buffer back to the guest allocator. Null
// pointers are skipped.
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
	al.strings = 0
	al.transformed = 0
}

// Count returns the number of recorded buffers.
func (al *AllocationList) Count() int {
	return len(al.allocations)
}

// Total returns the number of guest bytes recorded.
func (al *AllocationList) Total() uint64 {
	var n uint64
	for _, a := range al.allocations {
		n += uint64(a.Size)
	}
	return n
}

// Strings returns the number of non-empty strings lowered.
func (al *AllocationList) Strings() int {
	return al.strings
}

// Transformed returns how many of those strings needed an owned MUTF-8
// buffer rather than their UTF-8 bytes as-is.
func (al *AllocationList) Transformed() int {
	return al.transformed
}
