//go:build darwin || linux

package ffi

import (
	"github.com/ebitengine/purego"
)

// openLibrary loads a dynamic library on Unix-like systems
func openLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_LAZY)
}

// getSymbol retrieves a symbol from the loaded library
func getSymbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func closeLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}

// SyscallCaller performs foreign calls with purego.SyscallN.
type SyscallCaller struct{}

// Call invokes the C function at fn and returns its first result register.
func (SyscallCaller) Call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}

// NativeBinder binds entry points with purego.RegisterFunc, so arguments
// and results follow each parameter's Go type.
type NativeBinder struct{}

func (NativeBinder) Bind(fptr any, fn uintptr) {
	purego.RegisterFunc(fptr, fn)
}
