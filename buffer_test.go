package nativebuf

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/nativebuf/internal/ffi"
)

func TestBufferLockUnlock(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM64)
	buf, err := env.m.Create(16, 16, PixelFormatRGBA8888, UsageSWWriteOften)
	require.NoError(t, err)
	defer buf.Close()

	p, err := buf.Lock(UsageSWWriteOften)
	require.NoError(t, err)
	assert.Equal(t, unsafe.Pointer(&env.lib.pixels[0]), p)

	lock := env.lib.lastCall(symLock)
	require.Len(t, lock.args, 3)
	assert.Equal(t, uintptr(buf.Handle()), lock.args[0])
	assert.Equal(t, uintptr(UsageSWWriteOften), lock.args[1])

	require.NoError(t, buf.Unlock())
	assert.Equal(t, 1, env.lib.count(symUnlock))
}

func TestBufferLockStatus(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM64)
	buf, err := env.m.Create(16, 16, PixelFormatRGBA8888, 0)
	require.NoError(t, err)
	defer buf.Close()

	env.lib.lockStatus = -22
	p, err := buf.Lock(UsageSWReadOften)
	assert.Nil(t, p)
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, OpLock, serr.Op)
	assert.Equal(t, int32(-22), serr.Status)

	env.lib.unlockStatus = -1
	err = buf.Unlock()
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, OpUnlock, serr.Op)
}

func TestBufferMissingLockSymbol(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM64, func(_ *Config, f *fakeLibui) {
		f.missing[symLock] = true
	})
	buf, err := env.m.Create(16, 16, PixelFormatRGBA8888, 0)
	require.NoError(t, err)
	defer buf.Close()

	p, err := buf.Lock(UsageSWWriteOften)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrSymbolMissing)

	var serr *SymbolError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, OpLock, serr.Op)
	assert.Equal(t, symLock, serr.Name)
	assert.Equal(t, 0, env.lib.count(symLock))

	// The rest of the facade is unaffected.
	assert.NoError(t, buf.Unlock())
}

func TestBufferStride(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM, func(_ *Config, f *fakeLibui) {
		f.stride = 112
	})
	buf, err := env.m.Create(100, 200, PixelFormatRGBA8888, 0)
	require.NoError(t, err)
	defer buf.Close()

	stride, err := buf.Stride()
	require.NoError(t, err)
	assert.Equal(t, uint32(112), stride)

	view, err := buf.NativeBuffer()
	require.NoError(t, err)
	assert.Equal(t, unsafe.Add(buf.Handle(), headerOffset), view.Pointer())
	assert.Equal(t, uint32(112), view.Stride())
}

func TestBufferLockBytes(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM64, func(_ *Config, f *fakeLibui) {
		f.stride = 16
	})
	buf, err := env.m.Create(10, 8, PixelFormatRGBA8888, 0)
	require.NoError(t, err)
	defer buf.Close()

	pixels, err := buf.LockBytes(UsageSWWriteOften)
	require.NoError(t, err)
	assert.Len(t, pixels, 16*8*4)
	pixels[0] = 0xff
	assert.Equal(t, byte(0xff), env.lib.pixels[0])
	require.NoError(t, buf.Unlock())

	yuv, err := env.m.Create(10, 8, PixelFormatYV12, 0)
	require.NoError(t, err)
	defer yuv.Close()
	_, err = yuv.LockBytes(UsageSWWriteOften)
	assert.Error(t, err)
}

func TestBufferLockBytesNullMapping(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM64, func(_ *Config, f *fakeLibui) {
		f.nullMapping = true
	})
	buf, err := env.m.Create(10, 8, PixelFormatRGBA8888, 0)
	require.NoError(t, err)
	defer buf.Close()

	pixels, err := buf.LockBytes(UsageSWReadOften)
	assert.Nil(t, pixels)
	assert.Error(t, err)
	assert.Equal(t, 1, env.lib.count(symLock))
	assert.Equal(t, 1, env.lib.count(symUnlock))
}

func TestBufferClosed(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchARM64)
	buf, err := env.m.Create(16, 16, PixelFormatRGBA8888, 0)
	require.NoError(t, err)
	require.NoError(t, buf.Close())

	_, err = buf.Lock(UsageSWWriteOften)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, buf.Unlock(), ErrClosed)
	_, err = buf.Stride()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = buf.NativeBuffer()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBufferAccessors(t *testing.T) {
	env := newTestEnv(t, RevisionLegacy, ffi.ArchX86)
	buf, err := env.m.Create(3, 5, PixelFormatRGB888, UsageHWTexture|UsageSWReadRarely)
	require.NoError(t, err)
	defer buf.Close()

	assert.Equal(t, uint32(3), buf.Width())
	assert.Equal(t, uint32(5), buf.Height())
	assert.Equal(t, PixelFormatRGB888, buf.Format())
	assert.Equal(t, UsageHWTexture|UsageSWReadRarely, buf.Usage())
	assert.NotNil(t, buf.Handle())
}
