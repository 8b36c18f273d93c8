package ffi

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"
)

// Maximum length of an Android system property value, including the NUL.
const propValueMax = 92

var errNoSystemProperties = errors.New("ffi: __system_property_get not available")

// DefaultLibcPath returns the C library name for the running OS.
func DefaultLibcPath() string {
	switch runtime.GOOS {
	case "android":
		return "libc.so"
	case "darwin", "ios":
		return "/usr/lib/libSystem.B.dylib"
	default:
		return "libc.so.6"
	}
}

// Libc exposes the handful of C library entry points this package needs:
// malloc/free for raw object storage and, on Android, system properties.
type Libc struct {
	lib    *Library
	caller Caller

	malloc  uintptr
	free    uintptr
	propGet uintptr
}

// OpenLibc opens the C library at path. malloc and free are required;
// __system_property_get is optional.
func OpenLibc(path string, c Caller) (*Libc, error) {
	lib, err := Open(path)
	if err != nil {
		return nil, err
	}
	libc, err := newLibc(lib, c)
	if err != nil {
		lib.Close()
		return nil, err
	}
	return libc, nil
}

func newLibc(lib *Library, c Caller) (*Libc, error) {
	malloc, ok := lib.Resolve("malloc")
	if !ok {
		return nil, fmt.Errorf("ffi: %s has no malloc", lib.Path())
	}
	free, ok := lib.Resolve("free")
	if !ok {
		return nil, fmt.Errorf("ffi: %s has no free", lib.Path())
	}
	propGet, _ := lib.Resolve("__system_property_get")
	return &Libc{lib: lib, caller: c, malloc: malloc, free: free, propGet: propGet}, nil
}

// Alloc returns uninitialized storage from malloc.
func (l *Libc) Alloc(size int) (unsafe.Pointer, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	p := l.caller.Call(l.malloc, uintptr(size))
	if p == 0 {
		return nil, fmt.Errorf("%w: malloc(%d) returned NULL", ErrAllocation, size)
	}
	return unsafe.Pointer(p), nil
}

func (l *Libc) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	l.caller.Call(l.free, uintptr(p))
}

// SystemProperty reads an Android system property. An unset property reads
// as the empty string. Both the name and the value buffer live in malloc'd
// storage: the callee writes through the value pointer, and a Go stack
// address may move before the foreign call runs.
func (l *Libc) SystemProperty(name string) (string, error) {
	if l.propGet == 0 {
		return "", errNoSystemProperties
	}
	cname, err := l.Alloc(len(name) + 1)
	if err != nil {
		return "", err
	}
	defer l.Free(cname)
	value, err := l.Alloc(propValueMax)
	if err != nil {
		return "", err
	}
	defer l.Free(value)

	nameBuf := unsafe.Slice((*byte)(cname), len(name)+1)
	copy(nameBuf, name)
	nameBuf[len(name)] = 0
	valueBuf := unsafe.Slice((*byte)(value), propValueMax)
	clear(valueBuf)

	n := l.caller.Call(l.propGet, uintptr(cname), uintptr(value))
	length := int(int32(n))
	if length < 0 || length >= propValueMax {
		return "", fmt.Errorf("ffi: property %s: bad length %d", name, length)
	}
	return string(valueBuf[:length]), nil
}

func (l *Libc) Close() error {
	return l.lib.Close()
}
