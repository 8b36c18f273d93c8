package nativebuf

import (
	"errors"
	"runtime"
	"unsafe"
)

// Buffer is a constructed GraphicBuffer. It holds one strong reference on
// the object, released by Close.
//
// A Buffer is not safe for concurrent use. Lock must not be called again
// until the previous mapping has been released with Unlock.
type Buffer struct {
	m      *Manager
	obj    unsafe.Pointer
	header *nativeBase

	width  uint32
	height uint32
	format PixelFormat
	usage  Usage
	layout Layout

	// vaddr receives the mapping from lock. It lives in the heap-allocated
	// Buffer so the callee writes through a stable address.
	vaddr uintptr
}

func (b *Buffer) Width() uint32       { return b.width }
func (b *Buffer) Height() uint32      { return b.height }
func (b *Buffer) Format() PixelFormat { return b.format }
func (b *Buffer) Usage() Usage        { return b.usage }

// Layout returns the header identity read after construction. It is only
// invalid when the manager was configured without StrictLayout.
func (b *Buffer) Layout() Layout { return b.layout }

// Handle returns the native GraphicBuffer pointer, or nil once closed.
func (b *Buffer) Handle() unsafe.Pointer { return b.obj }

// Lock maps the buffer for CPU access with the given usage and returns the
// address of the first pixel.
func (b *Buffer) Lock(usage Usage) (unsafe.Pointer, error) {
	fn, err := b.entry(OpLock)
	if err != nil {
		return nil, err
	}
	b.vaddr = 0
	status := int32(b.m.caller.Call(fn, uintptr(b.obj), uintptr(usage), uintptr(unsafe.Pointer(&b.vaddr))))
	runtime.KeepAlive(b)
	if status != 0 {
		return nil, &StatusError{Op: OpLock, Status: status}
	}
	return unsafe.Pointer(b.vaddr), nil
}

// LockBytes locks the buffer and returns the mapping as a byte slice of
// stride × height pixels. It fails for planar formats, and when lock reports
// success without a mapping, in which case the buffer is unlocked again.
func (b *Buffer) LockBytes(usage Usage) ([]byte, error) {
	bpp := b.format.BytesPerPixel()
	if bpp == 0 {
		return nil, errors.New("nativebuf: LockBytes needs a packed pixel format, got " + b.format.String())
	}
	stride, err := b.Stride()
	if err != nil {
		return nil, err
	}
	p, err := b.Lock(usage)
	if err != nil {
		return nil, err
	}
	if p == nil {
		if err := b.Unlock(); err != nil {
			Logger().Warn("nativebuf: unlock after NULL mapping failed", "error", err)
		}
		return nil, errors.New("nativebuf: lock succeeded but returned a NULL mapping")
	}
	return unsafe.Slice((*byte)(p), int(stride)*int(b.height)*bpp), nil
}

// Unlock releases the mapping obtained by Lock.
func (b *Buffer) Unlock() error {
	fn, err := b.entry(OpUnlock)
	if err != nil {
		return err
	}
	if status := int32(b.m.caller.Call(fn, uintptr(b.obj))); status != 0 {
		return &StatusError{Op: OpUnlock, Status: status}
	}
	return nil
}

// NativeBufferView is the ANativeWindowBuffer behind a Buffer. It is owned
// by the Buffer and invalid once the Buffer is closed.
type NativeBufferView struct {
	p unsafe.Pointer
}

// Pointer returns the ANativeWindowBuffer*, suitable for
// eglCreateImageKHR(EGL_NATIVE_BUFFER_ANDROID).
func (v NativeBufferView) Pointer() unsafe.Pointer { return v.p }

// Stride returns the row length in pixels.
func (v NativeBufferView) Stride() uint32 {
	return uint32((*nativeWindowBuffer)(v.p).stride)
}

// NativeBuffer returns the ANativeWindowBuffer view of the object.
func (b *Buffer) NativeBuffer() (NativeBufferView, error) {
	fn, err := b.entry(OpGetNativeBuffer)
	if err != nil {
		return NativeBufferView{}, err
	}
	p := b.m.caller.Call(fn, uintptr(b.obj))
	if p == 0 {
		return NativeBufferView{}, errors.New("nativebuf: getNativeBuffer returned NULL")
	}
	return NativeBufferView{p: unsafe.Pointer(p)}, nil
}

// Stride returns the row length in pixels, which may exceed Width.
func (b *Buffer) Stride() (uint32, error) {
	v, err := b.NativeBuffer()
	if err != nil {
		return 0, err
	}
	return v.Stride(), nil
}

// Close drops the reference taken at creation and frees the storage. The
// destructor is not called here: releasing the last reference is how the
// library tears the object down. Close is idempotent.
func (b *Buffer) Close() error {
	if b.obj == nil {
		return nil
	}
	b.m.caller.Call(b.header.decRef, uintptr(unsafe.Pointer(b.header)))
	b.m.free(b.obj)
	b.obj = nil
	b.header = nil
	return nil
}

func (b *Buffer) entry(op Op) (uintptr, error) {
	if b.obj == nil {
		return 0, ErrClosed
	}
	return b.m.symbols.require(op)
}
