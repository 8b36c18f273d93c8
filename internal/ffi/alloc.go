package ffi

import (
	"fmt"
	"unsafe"
)

// Allocator hands out raw storage outside the Go heap. Foreign code may keep
// pointers into it, so the garbage collector must never see it.
type Allocator interface {
	Alloc(size int) (unsafe.Pointer, error)
	Free(p unsafe.Pointer)
}

func checkSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: invalid size %d", ErrAllocation, size)
	}
	return nil
}
