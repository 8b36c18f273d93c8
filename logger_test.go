package nativebuf

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	require.NotNil(t, l)
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, l.Enabled(context.Background(), level))
	}
}

func TestSetLoggerCapturesWarnings(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var out bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn})))

	newTestEnv(t, RevisionLegacy, ffi.ArchARM64, func(_ *Config, f *fakeLibui) {
		f.missing[symUnlock] = true
	})
	assert.Contains(t, out.String(), "failed to get function")
	assert.Contains(t, out.String(), symUnlock)

	SetLogger(nil)
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}
