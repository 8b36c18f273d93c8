package ffi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryResolveMemoises(t *testing.T) {
	lookups := map[string]int{}
	lookup := func(handle uintptr, name string) (uintptr, error) {
		lookups[name]++
		if name == "present" {
			return 0x4000, nil
		}
		return 0, errors.New("undefined symbol")
	}
	lib := newLibrary("libfake.so", 1, lookup, nil)

	a1, ok1 := lib.Resolve("present")
	a2, ok2 := lib.Resolve("present")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, uintptr(0x4000), a1)
	assert.Equal(t, a1, a2)

	_, ok1 = lib.Resolve("absent")
	_, ok2 = lib.Resolve("absent")
	assert.False(t, ok1)
	assert.False(t, ok2)

	assert.Equal(t, map[string]int{"present": 1, "absent": 1}, lookups)
}

func TestLibraryCloseOnce(t *testing.T) {
	closes := 0
	lib := newLibrary("libfake.so", 7,
		func(uintptr, string) (uintptr, error) { return 0x10, nil },
		func(h uintptr) error {
			closes++
			assert.Equal(t, uintptr(7), h)
			return nil
		})

	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close())
	assert.Equal(t, 1, closes)

	_, ok := lib.Resolve("anything")
	assert.False(t, ok)
}

func TestLibraryCloseError(t *testing.T) {
	lib := newLibrary("libfake.so", 7, nil, func(uintptr) error { return errors.New("busy") })
	assert.Error(t, lib.Close())
	assert.NoError(t, lib.Close())
}

func TestOpenMissingLibrary(t *testing.T) {
	_, err := Open("/nonexistent/libdoesnotexist.so")
	assert.ErrorIs(t, err, ErrLoad)
}
