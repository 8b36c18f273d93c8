package ffi

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Binder turns the C function at fn into a typed Go function. fptr must
// point at a func variable whose parameters and result are integers or
// unsafe.Pointer.
type Binder interface {
	Bind(fptr any, fn uintptr)
}

// BinderFor returns the binder matching c: purego's typed bindings for
// SyscallCaller, otherwise a CallerBinder routing through c.
func BinderFor(c Caller) Binder {
	if _, ok := c.(SyscallCaller); ok {
		return NativeBinder{}
	}
	return CallerBinder{C: c}
}

// CallerBinder builds typed functions that flatten their arguments to
// integer registers and hand them to C.
type CallerBinder struct {
	C Caller
}

func (b CallerBinder) Bind(fptr any, fn uintptr) {
	v := reflect.ValueOf(fptr)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Func {
		panic(fmt.Sprintf("ffi: Bind needs a pointer to a func, got %T", fptr))
	}
	typ := v.Elem().Type()
	if typ.NumOut() > 1 {
		panic(fmt.Sprintf("ffi: Bind: %s has more than one result", typ))
	}

	v.Elem().Set(reflect.MakeFunc(typ, func(in []reflect.Value) []reflect.Value {
		args := make([]uintptr, len(in))
		for i, arg := range in {
			args[i] = toRegister(arg)
		}
		r := b.C.Call(fn, args...)
		if typ.NumOut() == 0 {
			return nil
		}
		return []reflect.Value{fromRegister(r, typ.Out(0))}
	}))
}

func toRegister(v reflect.Value) uintptr {
	switch v.Kind() {
	case reflect.UnsafePointer, reflect.Pointer:
		return uintptr(v.UnsafePointer())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uintptr(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintptr(v.Uint())
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	}
	panic(fmt.Sprintf("ffi: unsupported argument type %s", v.Type()))
}

func fromRegister(r uintptr, t reflect.Type) reflect.Value {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.UnsafePointer:
		out.SetPointer(*(*unsafe.Pointer)(unsafe.Pointer(&r)))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetInt(int64(r))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out.SetUint(uint64(r))
	case reflect.Bool:
		out.SetBool(r&0xff != 0)
	default:
		panic(fmt.Sprintf("ffi: unsupported result type %s", t))
	}
	return out
}
