package ownership

import (
	"sort"
	"sync"
)

// Entry describes one pointer with live wrappers.
type Entry struct {
	Class      string
	Ptr        uintptr
	Discipline Discipline
	Wrappers   int
	Owned      bool
}

type trackerKey struct {
	class string
	ptr   uintptr
}

// Tracker is an Observer that counts live wrappers per pointer.
type Tracker struct {
	live   map[trackerKey]*Entry
	counts map[EventType]int
	mu     sync.Mutex
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		live:   make(map[trackerKey]*Entry),
		counts: make(map[EventType]int),
	}
}

// OnHandleEvent implements Observer.
func (t *Tracker) OnHandleEvent(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[e.Type]++
	key := trackerKey{class: e.Class, ptr: e.Ptr}

	switch e.Type {
	case EventCreated:
		entry, ok := t.live[key]
		if !ok {
			entry = &Entry{Class: e.Class, Ptr: e.Ptr, Discipline: e.Discipline, Owned: e.Owned}
			t.live[key] = entry
		}
		entry.Wrappers++
	case EventReleased, EventDestroyed, EventDisowned:
		entry, ok := t.live[key]
		if !ok {
			return
		}
		entry.Wrappers--
		if entry.Wrappers <= 0 {
			delete(t.live, key)
		}
	}
}

// Len returns the number of pointers with at least one live wrapper.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Count returns how many events of the given type have been observed.
func (t *Tracker) Count(typ EventType) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[typ]
}

// Live returns a snapshot of live pointers ordered by class then pointer.
func (t *Tracker) Live() []Entry {
	t.mu.Lock()
	out := make([]Entry, 0, len(t.live))
	for _, e := range t.live {
		out = append(out, *e)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Ptr < out[j].Ptr
	})
	return out
}

// Leaks returns the live pointers a wrapper still has to release: borrowed
// handles and handles held by an owner are left out.
func (t *Tracker) Leaks() []Entry {
	var out []Entry
	for _, e := range t.Live() {
		if e.Discipline == Borrowed || e.Owned {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Each iterates over live pointers until fn returns false.
func (t *Tracker) Each(fn func(Entry) bool) {
	for _, e := range t.Live() {
		if !fn(e) {
			return
		}
	}
}

// Reset forgets all tracked state.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = make(map[trackerKey]*Entry)
	t.counts = make(map[EventType]int)
}
