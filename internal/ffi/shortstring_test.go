package ffi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goAllocator serves blocks from the Go heap for tests.
type goAllocator struct {
	live map[uintptr][]byte
}

func newGoAllocator() *goAllocator {
	return &goAllocator{live: make(map[uintptr][]byte)}
}

func (a *goAllocator) Alloc(size int) (unsafe.Pointer, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	b := make([]byte, size)
	for i := range b {
		b[i] = 0xAA
	}
	p := unsafe.Pointer(&b[0])
	a.live[uintptr(p)] = b
	return p, nil
}

func (a *goAllocator) Free(p unsafe.Pointer) {
	delete(a.live, uintptr(p))
}

func TestNewShortString(t *testing.T) {
	a := newGoAllocator()

	p, err := NewShortString(a, "nativebuf")
	require.NoError(t, err)
	defer a.Free(p)

	b := unsafe.Slice((*byte)(p), ShortStringSize)
	assert.Equal(t, byte(9<<1), b[0])
	assert.Equal(t, "nativebuf", string(b[1:10]))
	assert.Equal(t, byte(0), b[10])
	assert.Equal(t, "nativebuf", ShortString(p))
}

func TestNewShortStringEmpty(t *testing.T) {
	a := newGoAllocator()
	p, err := NewShortString(a, "")
	require.NoError(t, err)
	assert.Equal(t, "", ShortString(p))
	assert.Equal(t, byte(0), *(*byte)(p))
}

func TestNewShortStringTooLong(t *testing.T) {
	a := newGoAllocator()
	_, err := NewShortString(a, "DirtyHackUser")
	assert.Error(t, err)
	assert.Empty(t, a.live)
}

func TestCheckSize(t *testing.T) {
	assert.ErrorIs(t, checkSize(0), ErrAllocation)
	assert.ErrorIs(t, checkSize(-1), ErrAllocation)
	assert.NoError(t, checkSize(1))
}
