package nativebuf

import (
	"unsafe"
)

// Magic identifies an ANativeWindowBuffer header ("_bfr").
const Magic uint32 = 0x5f626672

// Header versions equal sizeof(ANativeWindowBuffer) on each pointer width.
const (
	Version32 uint32 = 96
	Version64 uint32 = 168
)

// DefaultStorageSize is the raw block size reserved for one GraphicBuffer.
// It is an empirical upper bound across supported revisions, not a measured
// size.
const DefaultStorageSize = 1024

const ptrSize = unsafe.Sizeof(uintptr(0))

// headerOffset is where the ANativeWindowBuffer base sits inside a
// GraphicBuffer: past RefBase's vtable pointer and its mRefs pointer.
const headerOffset = 2 * ptrSize

// nativeBase mirrors android_native_base_t. Fields are laid out without
// padding on both 32- and 64-bit targets.
type nativeBase struct {
	magic   uint32
	version uint32
	_       [4]uintptr
	incRef  uintptr
	decRef  uintptr
}

// nativeWindowBuffer mirrors the leading fields of ANativeWindowBuffer. Only
// stride is ever read.
type nativeWindowBuffer struct {
	common nativeBase
	width  int32
	height int32
	stride int32
	format int32
}

// minStorageSize is the smallest block that can hold the parts of the object
// this package touches.
const minStorageSize = int(headerOffset + unsafe.Sizeof(nativeWindowBuffer{}))

// ExpectedVersion returns the header version for this host's pointer width.
func ExpectedVersion() uint32 {
	if ptrSize == 4 {
		return Version32
	}
	return Version64
}

// Layout is the identity read from an object header after construction.
type Layout struct {
	Magic       uint32
	Version     uint32
	WantVersion uint32
	// RefCallbacks is false when either incRef or decRef is NULL.
	RefCallbacks bool
}

// Valid reports whether magic and version match and both reference
// callbacks are set.
func (l Layout) Valid() bool {
	return l.Magic == Magic && l.Version == l.WantVersion && l.RefCallbacks
}

func headerAt(obj unsafe.Pointer) *nativeBase {
	return (*nativeBase)(unsafe.Add(obj, headerOffset))
}

func readLayout(h *nativeBase) Layout {
	return Layout{
		Magic:        h.magic,
		Version:      h.version,
		WantVersion:  ExpectedVersion(),
		RefCallbacks: h.incRef != 0 && h.decRef != 0,
	}
}
