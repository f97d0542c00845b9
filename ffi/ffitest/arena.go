package ffitest

import (
	"encoding/binary"
	"fmt"
	"sort"
	"sync"

	"github.com/wippyai/moiety/ffi"
)

const (
	arenaBase  uintptr = 0x10000
	handleBase uintptr = 0x7f000000
	pointerLen         = 8
	// gap between allocations so a read past the end never lands in a neighbour
	guard = 16
)

type segment struct {
	addr uintptr
	data []byte
}

// Arena is simulated foreign memory. Addresses are opaque uintptrs that do
// not point into the Go heap.
type Arena struct {
	mu       sync.Mutex
	segments []segment
	next     uintptr
	handles  uintptr
	reads    map[uintptr]int
}

var _ ffi.Memory = (*Arena)(nil)

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		next:    arenaBase,
		handles: handleBase,
		reads:   make(map[uintptr]int),
	}
}

// Alloc reserves n zeroed bytes and returns their address.
func (a *Arena) Alloc(n int) uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	addr := a.next
	a.segments = append(a.segments, segment{addr: addr, data: make([]byte, n)})
	a.next += uintptr(n) + guard
	a.next = (a.next + guard - 1) &^ (guard - 1)
	return addr
}

// Data copies b into a new allocation.
func (a *Arena) Data(b []byte) uintptr {
	addr := a.Alloc(len(b))
	copy(a.mustSegment(addr, len(b)), b)
	return addr
}

// String stores s with a NUL terminator.
func (a *Arena) String(s string) uintptr {
	return a.Data(append([]byte(s), 0))
}

// Pointers stores ptrs followed by a zero sentinel.
func (a *Arena) Pointers(ptrs ...uintptr) uintptr {
	buf := make([]byte, (len(ptrs)+1)*pointerLen)
	for i, p := range ptrs {
		binary.LittleEndian.PutUint64(buf[i*pointerLen:], uint64(p))
	}
	return a.Data(buf)
}

// Handle returns a fresh opaque handle value not backed by memory.
func (a *Arena) Handle() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handles += guard
	return a.handles
}

// PointerReads returns how many elements were read from the pointer array at base.
func (a *Arena) PointerReads(base uintptr) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads[base]
}

func (a *Arena) Pointer(base uintptr, index int) uintptr {
	a.mu.Lock()
	a.reads[base]++
	a.mu.Unlock()
	b := a.mustSegment(base+uintptr(index*pointerLen), pointerLen)
	return uintptr(binary.LittleEndian.Uint64(b))
}

func (a *Arena) CString(addr uintptr) string {
	seg, off := a.find(addr)
	if seg == nil {
		panic(fmt.Sprintf("ffitest: string read at unallocated address 0x%x", addr))
	}
	for i := off; i < len(seg.data); i++ {
		if seg.data[i] == 0 {
			return string(seg.data[off:i])
		}
	}
	panic(fmt.Sprintf("ffitest: unterminated string at 0x%x", addr))
}

func (a *Arena) Bytes(addr uintptr, n int) []byte {
	if n <= 0 {
		return nil
	}
	return append([]byte(nil), a.mustSegment(addr, n)...)
}

// Write copies b to addr, which must lie inside one allocation.
func (a *Arena) Write(addr uintptr, b []byte) {
	copy(a.mustSegment(addr, len(b)), b)
}

func (a *Arena) mustSegment(addr uintptr, n int) []byte {
	if n == 0 {
		return nil
	}
	seg, off := a.find(addr)
	if seg == nil || off+n > len(seg.data) {
		panic(fmt.Sprintf("ffitest: read of %d bytes at 0x%x is outside any allocation", n, addr))
	}
	return seg.data[off : off+n]
}

func (a *Arena) find(addr uintptr) (*segment, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.segments), func(i int) bool {
		return a.segments[i].addr > addr
	}) - 1
	if i < 0 {
		return nil, 0
	}
	seg := &a.segments[i]
	off := int(addr - seg.addr)
	if off >= len(seg.data) {
		return nil, 0
	}
	return seg, off
}
