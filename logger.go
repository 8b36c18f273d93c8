// Package nativebuf creates Android GraphicBuffer objects by calling the
// private constructor and destructor in libui.so, then exposes the small
// lock/unlock/stride surface needed to write pixels into them.
//
// The constructor is not exported under any stable name. The package
// resolves it by its mangled symbol at runtime, invokes it with the C++
// calling convention of the build architecture, and manages the resulting
// object through the reference-counting header every ANativeWindowBuffer
// carries. Everything beyond that header is treated as opaque.
package nativebuf

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

// nopHandler discards all records; Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger for nativebuf and its internal packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Levels used:
//   - [slog.LevelDebug]: symbol resolution, allocation
//   - [slog.LevelWarn]: missing symbols, header drift
//   - [slog.LevelError]: failed construction
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	ffi.SetLogger(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
