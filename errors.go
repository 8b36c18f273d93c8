package nativebuf

import (
	"errors"
	"fmt"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

var (
	// ErrLoad means the platform library could not be opened.
	ErrLoad = ffi.ErrLoad

	// ErrAllocation means raw object storage could not be obtained.
	ErrAllocation = ffi.ErrAllocation

	// ErrUnsupportedArch means no calling convention is known for this build.
	ErrUnsupportedArch = ffi.ErrUnsupportedArch

	ErrSymbolMissing       = errors.New("nativebuf: symbol not resolved")
	ErrConstruction        = errors.New("nativebuf: construction failed")
	ErrLayoutMismatch      = errors.New("nativebuf: unexpected object layout")
	ErrUnsupportedRevision = errors.New("nativebuf: library revision has no reachable constructor")
	ErrClosed              = errors.New("nativebuf: buffer closed")
)

// SymbolError reports an operation whose entry point was never resolved.
type SymbolError struct {
	Op   Op
	Name string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("nativebuf: %s unavailable: symbol %s not resolved", e.Op, e.Name)
}

func (e *SymbolError) Unwrap() error { return ErrSymbolMissing }

// ConstructionError is returned when initCheck reports a non-zero status.
// The object has already been destroyed in place and its storage released.
type ConstructionError struct {
	Status int32
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("nativebuf: GraphicBuffer constructor failed, initCheck returned %d", e.Status)
}

func (e *ConstructionError) Unwrap() error { return ErrConstruction }

// LayoutError reports a header that does not match the expected
// android_native_base_t identity.
type LayoutError struct {
	Layout Layout
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("nativebuf: GraphicBuffer layout unexpected: magic %#x (want %#x), version %d (want %d)",
		e.Layout.Magic, Magic, e.Layout.Version, e.Layout.WantVersion)
}

func (e *LayoutError) Unwrap() error { return ErrLayoutMismatch }

// StatusError carries a non-zero status_t from lock or unlock.
type StatusError struct {
	Op     Op
	Status int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nativebuf: %s returned status %d", e.Op, e.Status)
}
