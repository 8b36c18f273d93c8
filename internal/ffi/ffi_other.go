//go:build !darwin && !linux

package ffi

import (
	"errors"
	"fmt"
	"unsafe"
)

var errNoDynamicLinking = errors.New("dynamic linking not available on this platform")

func openLibrary(path string) (uintptr, error) {
	return 0, errNoDynamicLinking
}

func getSymbol(handle uintptr, name string) (uintptr, error) {
	return 0, errNoDynamicLinking
}

func closeLibrary(handle uintptr) error {
	return nil
}

// SyscallCaller is never reached on this platform since no library can be
// opened; Call always returns zero.
type SyscallCaller struct{}

func (SyscallCaller) Call(fn uintptr, args ...uintptr) uintptr {
	return 0
}

// NativeBinder binds through SyscallCaller, so bound functions do nothing.
type NativeBinder struct{}

func (NativeBinder) Bind(fptr any, fn uintptr) {
	CallerBinder{C: SyscallCaller{}}.Bind(fptr, fn)
}

// MmapAllocator is unavailable on this platform; every Alloc fails.
type MmapAllocator struct{}

func NewMmapAllocator() *MmapAllocator { return &MmapAllocator{} }

func (a *MmapAllocator) Alloc(size int) (unsafe.Pointer, error) {
	return nil, fmt.Errorf("%w: %v", ErrAllocation, errNoDynamicLinking)
}

func (a *MmapAllocator) Free(p unsafe.Pointer) {}

func (a *MmapAllocator) Live() int { return 0 }
