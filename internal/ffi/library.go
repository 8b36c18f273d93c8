package ffi

import (
	"fmt"
	"sync"
)

// Library is an opened shared library. Symbol lookups are memoised so that
// resolving the same name twice within one session yields the same answer.
type Library struct {
	path   string
	handle uintptr

	mu      sync.Mutex
	closed  bool
	symbols map[string]uintptr

	lookup func(handle uintptr, name string) (uintptr, error)
	close  func(handle uintptr) error
}

// Open loads the shared library at path with lazy symbol binding.
func Open(path string) (*Library, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrLoad, path, err)
	}
	logger().Debug("ffi: library opened", "path", path)
	return newLibrary(path, handle, getSymbol, closeLibrary), nil
}

func newLibrary(path string, handle uintptr, lookup func(uintptr, string) (uintptr, error), closeFn func(uintptr) error) *Library {
	return &Library{
		path:    path,
		handle:  handle,
		symbols: make(map[string]uintptr),
		lookup:  lookup,
		close:   closeFn,
	}
}

// Path returns the path the library was opened from.
func (l *Library) Path() string { return l.path }

// Resolve looks up a symbol by its exact (possibly mangled) name. A missing
// symbol is logged and reported as absent; it is not an error.
func (l *Library) Resolve(name string) (uintptr, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, false
	}
	if addr, ok := l.symbols[name]; ok {
		return addr, addr != 0
	}

	addr, err := l.lookup(l.handle, name)
	if err != nil || addr == 0 {
		logger().Warn("ffi: failed to get function", "library", l.path, "symbol", name, "error", err)
		addr = 0
	} else {
		logger().Debug("ffi: resolved symbol", "symbol", name, "addr", fmt.Sprintf("%#x", addr))
	}
	l.symbols[name] = addr
	return addr, addr != 0
}

// Close releases the library handle. Only the first call has any effect.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.symbols = nil
	if l.close == nil || l.handle == 0 {
		return nil
	}
	if err := l.close(l.handle); err != nil {
		return fmt.Errorf("ffi: closing %s: %w", l.path, err)
	}
	return nil
}
