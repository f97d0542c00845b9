package ownership

import (
	"sync"
	"testing"

	"github.com/wippyai/moiety/errors"
)

type counter struct {
	mu    sync.Mutex
	calls map[uintptr]int
}

func newCounter() *counter {
	return &counter{calls: make(map[uintptr]int)}
}

func (c *counter) fn(ptr uintptr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[ptr]++
}

func (c *counter) n(ptr uintptr) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[ptr]
}

func TestZeroPointerFailsToOpen(t *testing.T) {
	noop := func(uintptr) {}

	if _, err := NewExclusive(0, noop, nil, Options{Class: "bmp"}); !errors.IsOpenFailure(err) {
		t.Errorf("exclusive: expected open failure, got %v", err)
	}
	if _, err := NewCounted(0, noop, noop, false, Options{Class: "archive"}); !errors.IsOpenFailure(err) {
		t.Errorf("counted: expected open failure, got %v", err)
	}
	if _, err := NewBorrowed(0, "owner", Options{Class: "command"}); !errors.IsOpenFailure(err) {
		t.Errorf("borrowed: expected open failure, got %v", err)
	}
}

func TestExclusive_DestroysOnce(t *testing.T) {
	destroy := newCounter()
	h, err := NewExclusive(0x10, destroy.fn, nil, Options{Class: "bmp"})
	if err != nil {
		t.Fatalf("NewExclusive: %v", err)
	}

	if !h.Release() {
		t.Fatal("first Release should report true")
	}
	if h.Release() {
		t.Fatal("second Release should report false")
	}
	if got := destroy.n(0x10); got != 1 {
		t.Fatalf("destroy called %d times, want 1", got)
	}
}

func TestExclusive_WithOwnerNeverDestroys(t *testing.T) {
	destroy := newCounter()
	owner := &struct{ name string }{"card"}
	h, err := NewExclusive(0x20, destroy.fn, owner, Options{Class: "script"})
	if err != nil {
		t.Fatalf("NewExclusive: %v", err)
	}
	if h.Owner() != owner {
		t.Fatal("owner not retained")
	}

	h.Release()
	h.Release()
	if got := destroy.n(0x20); got != 0 {
		t.Fatalf("destroy called %d times, want 0", got)
	}
}

func TestCounted_TwoWrappersOneNetDecrement(t *testing.T) {
	// The native object starts with count 1 held by its creator.
	count := 1
	grab := func(uintptr) { count++ }
	release := func(uintptr) { count-- }

	creator, err := NewCounted(0x30, grab, release, false, Options{Class: "archive"})
	if err != nil {
		t.Fatalf("creator: %v", err)
	}
	vended, err := NewCounted(0x30, grab, release, true, Options{Class: "archive"})
	if err != nil {
		t.Fatalf("vended: %v", err)
	}
	if count != 2 {
		t.Fatalf("count after vend = %d, want 2", count)
	}

	creator.Release()
	vended.Release()
	creator.Release()
	vended.Release()

	if count != 0 {
		t.Fatalf("final count = %d, want 0", count)
	}
}

func TestCounted_ConcurrentReleaseOnce(t *testing.T) {
	release := newCounter()
	h, err := NewCounted(0x40, nil, release.fn, false, Options{Class: "resource"})
	if err != nil {
		t.Fatalf("NewCounted: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Release()
		}()
	}
	wg.Wait()

	if got := release.n(0x40); got != 1 {
		t.Fatalf("release called %d times, want 1", got)
	}
}

func TestBorrowed_ReleasesNothing(t *testing.T) {
	owner := "script"
	h, err := NewBorrowed(0x50, owner, Options{Class: "command"})
	if err != nil {
		t.Fatalf("NewBorrowed: %v", err)
	}
	if h.Discipline() != Borrowed {
		t.Fatalf("discipline = %v", h.Discipline())
	}
	if h.Owner() != owner {
		t.Fatal("owner not retained")
	}
	if !h.Release() {
		t.Fatal("Release should end the borrow")
	}
	if !h.Released() {
		t.Fatal("Released should report true")
	}
}

func TestEqual(t *testing.T) {
	noop := func(uintptr) {}
	a, _ := NewCounted(0x60, noop, noop, false, Options{Class: "resource"})
	b, _ := NewCounted(0x60, noop, noop, true, Options{Class: "resource"})
	c, _ := NewCounted(0x61, noop, noop, false, Options{Class: "resource"})
	d, _ := NewExclusive(0x60, noop, nil, Options{Class: "bmp"})

	if !a.Equal(b) {
		t.Error("same pointer and class should be equal")
	}
	if a.Equal(c) {
		t.Error("different pointers should not be equal")
	}
	if a.Equal(d) {
		t.Error("different classes should not be equal")
	}
	var nilHandle *Handle
	if !nilHandle.Equal(nil) {
		t.Error("nil handles should be equal")
	}
	if a.Equal(nil) {
		t.Error("handle should not equal nil")
	}
}

func TestObserverEvents(t *testing.T) {
	var events []EventType
	obs := ObserverFunc(func(e Event) { events = append(events, e.Type) })
	noop := func(uintptr) {}

	h, _ := NewCounted(0x70, noop, noop, true, Options{Class: "resource", Observer: obs})
	h.Release()
	h.Release()

	want := []EventType{EventCreated, EventGrabbed, EventReleased}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}
