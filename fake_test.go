package nativebuf

import (
	"errors"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

// fakeLibui stands in for libui.so: it resolves symbol names to fake
// addresses and services calls to those addresses with Go functions that
// behave like GraphicBuffer.
type fakeLibui struct {
	mu sync.Mutex

	addrs   map[string]uintptr
	names   map[uintptr]string
	funcs   map[uintptr]func(args []uintptr) uintptr
	missing map[string]bool
	next    uintptr

	calls    []fakeCall
	resolves map[string]int
	// labels holds the requestor name seen by each 6-argument constructor
	// call, decoded while the temporary is alive.
	labels []string

	// Values written into each constructed object.
	magic   uint32
	version uint32
	stride  int32
	noRefs  bool

	initStatus   int32
	lockStatus   int32
	unlockStatus int32
	nullMapping  bool
	pixels       []byte
}

type fakeCall struct {
	name string
	args []uintptr
}

const (
	fakeIncRef = "incRef"
	fakeDecRef = "decRef"
)

func newFakeLibui() *fakeLibui {
	f := &fakeLibui{
		addrs:    make(map[string]uintptr),
		names:    make(map[uintptr]string),
		funcs:    make(map[uintptr]func([]uintptr) uintptr),
		missing:  make(map[string]bool),
		resolves: make(map[string]int),
		next:     0x1000,
		magic:    Magic,
		version:  ExpectedVersion(),
		stride:   128,
	}

	construct := func(args []uintptr) uintptr {
		obj := unsafe.Pointer(args[0])
		nb := (*nativeWindowBuffer)(unsafe.Add(obj, headerOffset))
		nb.common.magic = f.magic
		nb.common.version = f.version
		if !f.noRefs {
			nb.common.incRef = f.addrs[fakeIncRef]
			nb.common.decRef = f.addrs[fakeDecRef]
		}
		nb.width = int32(args[1])
		nb.height = int32(args[2])
		nb.stride = f.stride
		nb.format = int32(args[3])
		if len(args) == 6 {
			f.mu.Lock()
			f.labels = append(f.labels, ffi.ShortString(unsafe.Pointer(args[5])))
			f.mu.Unlock()
		}
		return args[0]
	}
	f.define(symCtorLegacy, construct)
	f.define(symCtorIntermediate, construct)
	f.define(symDtor, func(args []uintptr) uintptr { return args[0] })
	f.define(symInitCheck, func([]uintptr) uintptr { return uintptr(uint32(f.initStatus)) })
	f.define(symGetNativeBuffer, func(args []uintptr) uintptr { return args[0] + uintptr(headerOffset) })
	f.define(symLock, func(args []uintptr) uintptr {
		if f.lockStatus == 0 && !f.nullMapping {
			out := (*uintptr)(unsafe.Pointer(args[2]))
			*out = uintptr(unsafe.Pointer(&f.pixels[0]))
		}
		return uintptr(uint32(f.lockStatus))
	})
	f.define(symUnlock, func([]uintptr) uintptr { return uintptr(uint32(f.unlockStatus)) })
	f.define(fakeIncRef, func([]uintptr) uintptr { return 0 })
	f.define(fakeDecRef, func([]uintptr) uintptr { return 0 })
	f.pixels = make([]byte, 4096)
	return f
}

func (f *fakeLibui) define(name string, fn func([]uintptr) uintptr) {
	addr := f.next
	f.next += 0x10
	f.addrs[name] = addr
	f.names[addr] = name
	f.funcs[addr] = fn
}

func (f *fakeLibui) Resolve(name string) (uintptr, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves[name]++
	if f.missing[name] {
		return 0, false
	}
	addr, ok := f.addrs[name]
	return addr, ok
}

func (f *fakeLibui) Call(fn uintptr, args ...uintptr) uintptr {
	f.mu.Lock()
	impl, ok := f.funcs[fn]
	f.calls = append(f.calls, fakeCall{name: f.names[fn], args: append([]uintptr(nil), args...)})
	f.mu.Unlock()
	if !ok {
		panic("fakeLibui: call to unknown address")
	}
	return impl(args)
}

// count returns how many times the named function was called.
func (f *fakeLibui) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.name == name {
			n++
		}
	}
	return n
}

func (f *fakeLibui) lastCall(name string) fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].name == name {
			return f.calls[i]
		}
	}
	return fakeCall{}
}

func (f *fakeLibui) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// heapAllocator hands out Go-heap blocks and tracks every Alloc and Free.
type heapAllocator struct {
	mu     sync.Mutex
	blocks map[uintptr][]byte
	allocs int
	frees  int
	fail   bool
	t      *testing.T
}

func newHeapAllocator(t *testing.T) *heapAllocator {
	return &heapAllocator{blocks: make(map[uintptr][]byte), t: t}
}

func (a *heapAllocator) Alloc(size int) (unsafe.Pointer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return nil, errors.New("out of memory")
	}
	b := make([]byte, size)
	p := unsafe.Pointer(&b[0])
	a.blocks[uintptr(p)] = b
	a.allocs++
	return p, nil
}

func (a *heapAllocator) Free(p unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.blocks[uintptr(p)]; !ok {
		a.t.Errorf("free of unknown block %p", p)
		return
	}
	delete(a.blocks, uintptr(p))
	a.frees++
}

func (a *heapAllocator) live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

type fakeProps map[string]string

func (p fakeProps) SystemProperty(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", errors.New("no such property")
	}
	return v, nil
}

type testEnv struct {
	lib   *fakeLibui
	alloc *heapAllocator
	m     *Manager
}

func newTestEnv(t *testing.T, rev Revision, arch ffi.Arch, configure ...func(*Config, *fakeLibui)) *testEnv {
	t.Helper()
	lib := newFakeLibui()
	alloc := newHeapAllocator(t)

	cfg := DefaultConfig()
	cfg.Target.Revision = rev
	for _, fn := range configure {
		fn(&cfg, lib)
	}

	inv, err := ffi.NewInvoker(arch, ffi.CallerBinder{C: lib})
	require.NoError(t, err)

	m, err := NewManager(cfg, lib, WithCaller(lib), WithInvoker(inv), WithAllocator(alloc))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return &testEnv{lib: lib, alloc: alloc, m: m}
}
