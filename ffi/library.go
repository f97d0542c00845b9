package ffi

import (
	stderrors "errors"
)

// ErrSymbolNotFound is returned by Library.Bind when the library does not
// export the requested symbol.
var ErrSymbolNotFound = stderrors.New("symbol not found")

// Library is a loaded foreign library.
type Library interface {
	// Prefix is the symbol prefix shared by every function, e.g. "vaht".
	Prefix() string

	// Bind resolves symbol and stores a callable in fptr, which must be a
	// non-nil pointer to a func variable with a supported signature.
	Bind(fptr any, symbol string) error

	// Memory gives read access to memory owned by the library.
	Memory() Memory

	// Free releases memory the library documents as caller-owned.
	Free(addr uintptr)

	// Close unloads the library. Handles obtained from it become invalid.
	Close() error
}

// Memory reads library-owned memory.
type Memory interface {
	// Pointer returns element index of the pointer array at base.
	Pointer(base uintptr, index int) uintptr

	// CString copies the NUL-terminated string at addr.
	CString(addr uintptr) string

	// Bytes copies n bytes starting at addr.
	Bytes(addr uintptr, n int) []byte
}

// PointerArray copies the null-terminated pointer array at base. It reads up
// to and including the first zero element and never past it. A zero base
// yields an empty result.
func PointerArray(mem Memory, base uintptr) []uintptr {
	if base == 0 {
		return nil
	}
	var out []uintptr
	for i := 0; ; i++ {
		p := mem.Pointer(base, i)
		if p == 0 {
			return out
		}
		out = append(out, p)
	}
}

// OwnedString copies the caller-owned string at addr and frees it.
// It reports false for a null pointer, in which case nothing is freed.
func OwnedString(lib Library, addr uintptr) (string, bool) {
	if addr == 0 {
		return "", false
	}
	s := lib.Memory().CString(addr)
	lib.Free(addr)
	return s, true
}
