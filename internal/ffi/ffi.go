// Package ffi loads platform shared libraries through purego and calls
// into them without cgo. It covers the pieces needed to drive C++ entry
// points that are not part of any published interface: symbol lookup by
// mangled name, per-architecture calling conventions for constructors and
// destructors, and raw storage that lives outside the Go heap.
package ffi

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

var (
	// ErrLoad is returned when a shared library cannot be opened.
	ErrLoad = errors.New("ffi: failed to open library")

	// ErrUnsupportedArch is returned when no calling-convention strategy
	// exists for the requested architecture.
	ErrUnsupportedArch = errors.New("ffi: unsupported architecture")

	// ErrAllocation is returned when raw storage cannot be obtained.
	ErrAllocation = errors.New("ffi: allocation failed")
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger used by this package. Passing nil restores the
// silent default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger {
	return loggerPtr.Load()
}
