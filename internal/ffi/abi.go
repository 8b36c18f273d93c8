package ffi

import (
	"fmt"
	"unsafe"
)

// Caller performs a raw call into foreign code. Arguments are passed as
// integer registers in order; the first result register is returned.
type Caller interface {
	Call(fn uintptr, args ...uintptr) uintptr
}

// CallerFunc adapts a function to the Caller interface.
type CallerFunc func(fn uintptr, args ...uintptr) uintptr

func (f CallerFunc) Call(fn uintptr, args ...uintptr) uintptr { return f(fn, args...) }

// Arch identifies a CPU architecture with its own C++ calling convention
// for complete-object constructors and destructors.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchARM
	ArchARM64
	ArchX86
	ArchX86_64
)

func (a Arch) String() string {
	switch a {
	case ArchARM:
		return "arm"
	case ArchARM64:
		return "arm64"
	case ArchX86:
		return "x86"
	case ArchX86_64:
		return "x86_64"
	default:
		return "unknown"
	}
}

// PointerSize is the pointer width of the architecture in bytes.
func (a Arch) PointerSize() int {
	switch a {
	case ArchARM, ArchX86:
		return 4
	case ArchARM64, ArchX86_64:
		return 8
	default:
		return int(unsafe.Sizeof(uintptr(0)))
	}
}

// Construct4Func constructs an object in place at mem from
// (width, height, format, usage).
type Construct4Func func(mem unsafe.Pointer, width, height uint32, format int32, usage uint32)

// Construct5Func is Construct4Func with an extra by-value class argument,
// which the Itanium ABI passes as a pointer to a caller-owned temporary.
type Construct5Func func(mem unsafe.Pointer, width, height uint32, format int32, usage uint32, label unsafe.Pointer)

// DestroyFunc finalizes the object at obj without freeing its storage.
type DestroyFunc func(obj unsafe.Pointer)

// Invoker binds construct-in-place and destroy-in-place entry points with
// the convention of one architecture. Construction never allocates: mem must
// already point at storage large enough for the object.
type Invoker interface {
	Arch() Arch
	Constructor4(fn uintptr) Construct4Func
	Constructor5(fn uintptr) Construct5Func
	Destructor(fn uintptr) DestroyFunc
}

// NewInvoker returns the calling-convention strategy for arch. Entry points
// are bound through b.
func NewInvoker(arch Arch, b Binder) (Invoker, error) {
	if b == nil {
		return nil, fmt.Errorf("ffi: nil binder")
	}
	switch arch {
	case ArchARM:
		return armInvoker{b}, nil
	case ArchARM64, ArchX86, ArchX86_64:
		return voidInvoker{b: b, arch: arch}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArch, arch)
	}
}

// HostInvoker returns the strategy for the architecture this binary was
// built for.
func HostInvoker(b Binder) (Invoker, error) {
	return NewInvoker(HostArch, b)
}

// The 32-bit ARM C++ ABI has C1 constructors and D1 destructors return this.
type (
	armCtor4 func(this unsafe.Pointer, width, height uint32, format int32, usage uint32) unsafe.Pointer
	armCtor5 func(this unsafe.Pointer, width, height uint32, format int32, usage uint32, label unsafe.Pointer) unsafe.Pointer
	armDtor  func(this unsafe.Pointer) unsafe.Pointer
)

// armInvoker drops the returned this; the object is already at mem.
type armInvoker struct {
	b Binder
}

func (armInvoker) Arch() Arch { return ArchARM }

func (i armInvoker) Constructor4(fn uintptr) Construct4Func {
	var ctor armCtor4
	i.b.Bind(&ctor, fn)
	return func(mem unsafe.Pointer, width, height uint32, format int32, usage uint32) {
		_ = ctor(mem, width, height, format, usage)
	}
}

func (i armInvoker) Constructor5(fn uintptr) Construct5Func {
	var ctor armCtor5
	i.b.Bind(&ctor, fn)
	return func(mem unsafe.Pointer, width, height uint32, format int32, usage uint32, label unsafe.Pointer) {
		_ = ctor(mem, width, height, format, usage, label)
	}
}

func (i armInvoker) Destructor(fn uintptr) DestroyFunc {
	var dtor armDtor
	i.b.Bind(&dtor, fn)
	return func(obj unsafe.Pointer) {
		_ = dtor(obj)
	}
}

// voidInvoker covers AArch64, i386 and x86_64, where C1 constructors and D1
// destructors return void.
type voidInvoker struct {
	b    Binder
	arch Arch
}

func (i voidInvoker) Arch() Arch { return i.arch }

func (i voidInvoker) Constructor4(fn uintptr) Construct4Func {
	var ctor Construct4Func
	i.b.Bind(&ctor, fn)
	return ctor
}

func (i voidInvoker) Constructor5(fn uintptr) Construct5Func {
	var ctor Construct5Func
	i.b.Bind(&ctor, fn)
	return ctor
}

func (i voidInvoker) Destructor(fn uintptr) DestroyFunc {
	var dtor DestroyFunc
	i.b.Bind(&dtor, fn)
	return dtor
}
