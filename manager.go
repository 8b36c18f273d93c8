package nativebuf

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

// Manager owns the resolved SymbolTable, the bound constructor and
// destructor and the allocator, and creates Buffers from them. Everything it
// holds is read-only after construction and each Create builds its own
// requestor-name temporary, so one Manager may create Buffers from several
// goroutines at once.
type Manager struct {
	config   Config
	revision Revision
	symbols  SymbolTable
	invoker  ffi.Invoker
	caller   ffi.Caller
	alloc    ffi.Allocator

	// Bound entry points; nil when the symbol is absent.
	construct4 ffi.Construct4Func
	construct5 ffi.Construct5Func
	destroy    ffi.DestroyFunc

	closers []func() error
	closed  atomic.Bool

	allocs atomic.Int64
	frees  atomic.Int64
}

type options struct {
	caller  ffi.Caller
	invoker ffi.Invoker
	alloc   ffi.Allocator
	props   propertyReader
}

// Option customises NewManager.
type Option func(*options)

// WithCaller sets how foreign functions are called. The default is
// ffi.SyscallCaller.
func WithCaller(c ffi.Caller) Option {
	return func(o *options) { o.caller = c }
}

// WithInvoker overrides the constructor/destructor strategy, which
// otherwise follows the build architecture.
func WithInvoker(i ffi.Invoker) Option {
	return func(o *options) { o.invoker = i }
}

// WithAllocator sets where object storage comes from. Required.
func WithAllocator(a ffi.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

func withPropertyReader(p propertyReader) Option {
	return func(o *options) { o.props = p }
}

// Open loads the libraries named by cfg and returns a Manager that owns
// them. Failing to open the graphics library is fatal.
func Open(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("nativebuf: %w", err)
	}

	lib, err := ffi.Open(cfg.LibraryPath())
	if err != nil {
		return nil, err
	}
	closers := []func() error{lib.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	caller := ffi.SyscallCaller{}
	opts := []Option{WithCaller(caller)}

	needLibc := cfg.Object.Allocator != AllocatorMmap ||
		(cfg.Target.Revision == RevisionAuto && cfg.Target.APILevel == 0)
	if needLibc {
		libc, err := ffi.OpenLibc(cfg.LibcPath(), caller)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, libc.Close)
		opts = append(opts, withPropertyReader(libc))
		if cfg.Object.Allocator != AllocatorMmap {
			opts = append(opts, WithAllocator(libc))
		}
	}
	if cfg.Object.Allocator == AllocatorMmap {
		opts = append(opts, WithAllocator(ffi.NewMmapAllocator()))
	}

	m, err := NewManager(cfg, lib, opts...)
	if err != nil {
		closeAll()
		return nil, err
	}
	m.closers = closers
	return m, nil
}

// NewManager binds the symbols for cfg's revision from r and selects the
// calling convention. Missing symbols are logged, not returned; the
// operations that need them fail with ErrSymbolMissing instead.
func NewManager(cfg Config, r Resolver, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("nativebuf: %w", err)
	}
	o := options{caller: ffi.SyscallCaller{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alloc == nil {
		return nil, errors.New("nativebuf: no allocator configured")
	}

	rev, err := resolveRevision(cfg.Target, o.props)
	if err != nil {
		return nil, err
	}
	overrides, err := cfg.symbolOverrides()
	if err != nil {
		return nil, fmt.Errorf("nativebuf: %w", err)
	}

	invoker := o.invoker
	if invoker == nil {
		if invoker, err = ffi.HostInvoker(ffi.BinderFor(o.caller)); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		config:   cfg,
		revision: rev,
		symbols:  BindSymbols(r, rev, overrides),
		invoker:  invoker,
		caller:   o.caller,
		alloc:    o.alloc,
	}
	for _, op := range m.symbols.Missing() {
		Logger().Warn("nativebuf: failed to get function", "op", op.String(), "symbol", m.symbols.Lookup(op).Name)
	}

	if ctor := m.symbols.Lookup(OpConstructor); ctor.Present() {
		switch rev {
		case RevisionLegacy:
			m.construct4 = invoker.Constructor4(ctor.Addr)
		case RevisionIntermediate:
			m.construct5 = invoker.Constructor5(ctor.Addr)
		}
	}
	if dtor := m.symbols.Lookup(OpDestructor); dtor.Present() {
		m.destroy = invoker.Destructor(dtor.Addr)
	}

	Logger().Debug("nativebuf: manager ready",
		"revision", rev.String(), "arch", invoker.Arch().String(), "storage", cfg.Object.StorageSize)
	return m, nil
}

// Revision returns the concrete library revision in use.
func (m *Manager) Revision() Revision { return m.revision }

// Arch returns the architecture whose calling convention is in use.
func (m *Manager) Arch() ffi.Arch { return m.invoker.Arch() }

// Symbols returns the resolved symbol table.
func (m *Manager) Symbols() SymbolTable { return m.symbols }

// Stats counts raw object allocations and frees.
type Stats struct {
	Allocations int64
	Frees       int64
}

// Live is the number of objects allocated and not yet freed.
func (s Stats) Live() int64 { return s.Allocations - s.Frees }

func (m *Manager) Stats() Stats {
	return Stats{Allocations: m.allocs.Load(), Frees: m.frees.Load()}
}

// Create constructs a GraphicBuffer of the given size, format and usage.
//
// Errors never come with a usable object: a failed initCheck or (with
// StrictLayout) an unexpected header destroys the object in place and
// releases its storage before returning.
func (m *Manager) Create(width, height uint32, format PixelFormat, usage Usage) (*Buffer, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if m.revision == RevisionModern {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRevision, m.revision)
	}
	if _, err := m.symbols.require(OpConstructor); err != nil {
		return nil, err
	}
	initCheck, err := m.symbols.require(OpInitCheck)
	if err != nil {
		return nil, err
	}

	var label unsafe.Pointer
	if m.revision == RevisionIntermediate {
		if label, err = ffi.NewShortString(m.alloc, m.config.Object.Label); err != nil {
			return nil, allocationError(fmt.Errorf("requestor name: %w", err))
		}
		// The short form owns no heap memory, so the temporary needs no
		// destructor call once the constructor has returned.
		defer m.alloc.Free(label)
	}

	size := m.config.Object.StorageSize
	mem, err := m.alloc.Alloc(size)
	if err != nil {
		Logger().Error("nativebuf: could not alloc for GraphicBuffer", "size", size, "error", err)
		return nil, allocationError(err)
	}
	m.allocs.Add(1)

	switch m.revision {
	case RevisionLegacy:
		m.construct4(mem, width, height, int32(format), uint32(usage))
	case RevisionIntermediate:
		m.construct5(mem, width, height, int32(format), uint32(usage), label)
	}

	base := headerAt(mem)

	if status := int32(m.caller.Call(initCheck, uintptr(mem))); status != 0 {
		m.destroyInPlace(mem)
		Logger().Error("nativebuf: GraphicBuffer constructor failed", "initCheck", status,
			"width", width, "height", height, "format", format.String())
		m.free(mem)
		return nil, &ConstructionError{Status: status}
	}

	layout := readLayout(base)
	if !layout.Valid() {
		Logger().Warn("nativebuf: GraphicBuffer layout unexpected",
			"magic", fmt.Sprintf("%#x", layout.Magic), "version", layout.Version,
			"want_version", layout.WantVersion, "ref_callbacks", layout.RefCallbacks)
		// Without both callbacks the object cannot be retained or released.
		if m.config.Object.StrictLayout || !layout.RefCallbacks {
			m.destroyInPlace(mem)
			m.free(mem)
			return nil, &LayoutError{Layout: layout}
		}
	}

	m.caller.Call(base.incRef, uintptr(unsafe.Pointer(base)))

	return &Buffer{
		m:      m,
		obj:    mem,
		header: base,
		width:  width,
		height: height,
		format: format,
		usage:  usage,
		layout: layout,
	}, nil
}

// destroyInPlace runs the destructor on a rejected object. Without the
// destructor symbol the object's own resources leak; only its storage is
// released by the caller.
func (m *Manager) destroyInPlace(mem unsafe.Pointer) {
	if m.destroy == nil {
		Logger().Warn("nativebuf: no destructor, releasing storage only",
			"symbol", m.symbols.Lookup(OpDestructor).Name)
		return
	}
	m.destroy(mem)
}

func allocationError(err error) error {
	if errors.Is(err, ErrAllocation) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrAllocation, err)
}

func (m *Manager) free(p unsafe.Pointer) {
	m.alloc.Free(p)
	m.frees.Add(1)
}

// Close releases the libraries opened by Open. Buffers still alive keep
// raw pointers into libui.so and must be closed first.
func (m *Manager) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	if live := m.Stats().Live(); live != 0 {
		Logger().Warn("nativebuf: closing manager with live buffers", "live", live)
	}
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
