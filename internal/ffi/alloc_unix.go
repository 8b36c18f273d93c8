//go:build darwin || linux

package ffi

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapAllocator backs each allocation with its own anonymous private
// mapping. It needs no libc symbols, at the cost of a page per object.
type MmapAllocator struct {
	mu       sync.Mutex
	mappings map[uintptr][]byte
}

func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{mappings: make(map[uintptr][]byte)}
}

func (a *MmapAllocator) Alloc(size int) (unsafe.Pointer, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrAllocation, size, err)
	}
	p := unsafe.Pointer(&b[0])

	a.mu.Lock()
	a.mappings[uintptr(p)] = b
	a.mu.Unlock()
	return p, nil
}

func (a *MmapAllocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.mu.Lock()
	b, ok := a.mappings[uintptr(p)]
	delete(a.mappings, uintptr(p))
	a.mu.Unlock()

	if !ok {
		logger().Error("ffi: free of unknown mapping", "addr", fmt.Sprintf("%p", p))
		return
	}
	if err := unix.Munmap(b); err != nil {
		logger().Error("ffi: munmap failed", "error", err)
	}
}

// Live reports the number of mappings not yet freed.
func (a *MmapAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.mappings)
}
