//go:build !arm && !arm64 && !386 && !amd64

package ffi

// HostArch is ArchUnknown: no constructor calling convention is known for
// this GOARCH, so HostInvoker fails with ErrUnsupportedArch.
const HostArch = ArchUnknown
