package ffi_test

import (
	"testing"

	"github.com/wippyai/moiety/ffi"
	"github.com/wippyai/moiety/ffi/ffitest"
)

func TestPointerArray(t *testing.T) {
	arena := ffitest.NewArena()

	t.Run("null base", func(t *testing.T) {
		if got := ffi.PointerArray(arena, 0); got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		base := arena.Pointers()
		if got := ffi.PointerArray(arena, base); len(got) != 0 {
			t.Fatalf("got %v, want empty", got)
		}
		if n := arena.PointerReads(base); n != 1 {
			t.Fatalf("reads = %d, want 1", n)
		}
	})

	t.Run("stops at first sentinel", func(t *testing.T) {
		base := arena.Pointers(0x10, 0x20, 0, 0x30)
		got := ffi.PointerArray(arena, base)
		if len(got) != 2 || got[0] != 0x10 || got[1] != 0x20 {
			t.Fatalf("got %#v", got)
		}
		if n := arena.PointerReads(base); n != 3 {
			t.Fatalf("reads = %d, want 3", n)
		}
	})
}

func TestOwnedString(t *testing.T) {
	lib := ffitest.New("vaht")
	addr := lib.Arena().String("gehn")

	s, ok := ffi.OwnedString(lib, addr)
	if !ok || s != "gehn" {
		t.Fatalf("OwnedString = %q, %v", s, ok)
	}
	if lib.Freed(addr) != 1 {
		t.Fatalf("freed %d times, want 1", lib.Freed(addr))
	}

	if _, ok := ffi.OwnedString(lib, 0); ok {
		t.Fatal("null string reported ok")
	}
	if len(lib.Frees()) != 1 {
		t.Fatalf("frees = %v", lib.Frees())
	}
}
