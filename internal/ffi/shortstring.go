package ffi

import (
	"fmt"
	"unsafe"
)

// MaxShortStringLen is the longest string that fits the libc++ short-string
// representation on every supported pointer width (11 bytes on 32-bit,
// one of them the terminating NUL).
const MaxShortStringLen = 10

// ShortStringSize is the size of a libc++ std::string on this host.
const ShortStringSize = 3 * unsafe.Sizeof(uintptr(0))

// NewShortString builds a libc++ std::string holding s in storage obtained
// from a. The object uses the short (inline) representation, so it owns no
// heap memory and the callee is free to copy or move from it. The first byte
// holds len<<1; the low bit clear marks the short form on little-endian
// targets.
func NewShortString(a Allocator, s string) (unsafe.Pointer, error) {
	if len(s) > MaxShortStringLen {
		return nil, fmt.Errorf("ffi: string %q longer than %d bytes", s, MaxShortStringLen)
	}
	p, err := a.Alloc(int(ShortStringSize))
	if err != nil {
		return nil, err
	}
	b := unsafe.Slice((*byte)(p), ShortStringSize)
	clear(b)
	b[0] = byte(len(s) << 1)
	copy(b[1:], s)
	return p, nil
}

// ShortString decodes a string written by NewShortString.
func ShortString(p unsafe.Pointer) string {
	b := unsafe.Slice((*byte)(p), ShortStringSize)
	n := int(b[0] >> 1)
	if b[0]&1 != 0 || n > int(ShortStringSize)-2 {
		return ""
	}
	return string(b[1 : 1+n])
}
