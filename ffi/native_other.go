//go:build !(linux || darwin || freebsd)

package ffi

import "github.com/wippyai/moiety/errors"

// NativeLibrary is unavailable on this platform.
type NativeLibrary struct{}

// OpenNative always fails on platforms without dlopen support.
func OpenNative(path, prefix string) (*NativeLibrary, error) {
	return nil, errors.Unsupported(errors.PhaseLoad, "native libraries on this platform; use OpenWasm")
}

func (l *NativeLibrary) Prefix() string { return "" }

func (l *NativeLibrary) Path() string { return "" }

func (l *NativeLibrary) Bind(fptr any, symbol string) error {
	return errors.Unsupported(errors.PhaseBind, "native libraries on this platform")
}

func (l *NativeLibrary) Memory() Memory { return nativeMemory{} }

func (l *NativeLibrary) Free(addr uintptr) {}

func (l *NativeLibrary) Close() error { return nil }
