package guest

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/mutf8"
)

var (
	_ Memory            = (*MemoryWrapper)(nil)
	_ mutf8.MemorySizer = (*MemoryWrapper)(nil)
	_ Allocator         = (*AllocatorWrapper)(nil)
)

// WrapMemory wraps a wazero api.Memory to implement Memory.
func WrapMemory(mem api.Memory) *MemoryWrapper {
	if mem == nil {
		return nil
	}
	return &MemoryWrapper{Mem: mem}
}

// WrapAllocator wraps a guest cabi_realloc export to implement Allocator.
func WrapAllocator(ctx context.Context, fn api.Function) *AllocatorWrapper {
	if fn == nil {
		return nil
	}
	return &AllocatorWrapper{Ctx: ctx, Fn: fn}
}

// MemoryWrapper adapts wazero api.Memory to the Memory interface.
type MemoryWrapper struct {
	Mem api.Memory
}

// Read returns a view of guest memory. The slice aliases the guest's
// buffer and is invalidated by memory growth.
func (m *MemoryWrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *MemoryWrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *MemoryWrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *MemoryWrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *MemoryWrapper) Size() uint32 {
	return m.Mem.Size()
}

// AllocatorWrapper adapts a cabi_realloc api.Function to the Allocator
// interface.
type AllocatorWrapper struct {
	Ctx context.Context
	Fn  api.Function
}

// Alloc allocates memory using cabi_realloc.
func (a *AllocatorWrapper) Alloc(size, align uint32) (uint32, error) {
	results, err := a.Fn.Call(a.Ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, fmt.Errorf("allocation failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocation returned no result")
	}
	return uint32(results[0]), nil
}

// Free deallocates memory using cabi_realloc.
func (a *AllocatorWrapper) Free(ptr, size, align uint32) {
	_, _ = a.Fn.Call(a.Ctx, uint64(ptr), uint64(size), uint64(align), 0)
}
