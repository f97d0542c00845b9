package ffi

import "unsafe"

// nativeMemory reads process memory directly.
type nativeMemory struct{}

const ptrSize = unsafe.Sizeof(uintptr(0))

func (nativeMemory) Pointer(base uintptr, index int) uintptr {
	return *(*uintptr)(unsafe.Pointer(base + uintptr(index)*ptrSize))
}

func (nativeMemory) CString(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Pointer(addr + uintptr(n))) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(addr)), n))
}

func (nativeMemory) Bytes(addr uintptr, n int) []byte {
	if addr == 0 || n <= 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(addr)), n))
	return out
}
