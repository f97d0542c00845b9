package vaht

import (
	"strconv"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ffi"
	"github.com/wippyai/moiety/ownership"
)

// Event selects one of a script's handlers.
type Event int32

const (
	EventMouseDown Event = iota
	EventMouseStillDown
	EventMouseUp
	EventMouseEnter
	EventMouseWithin
	EventMouseLeave
	EventLoadCard
	EventCloseCard
	eventReserved
	EventOpenCard
	EventDisplayUpdate

	// EventCount is the number of handler slots, including the reserved one.
	EventCount
)

var eventNames = [EventCount]string{
	EventMouseDown:      "mouse-down",
	EventMouseStillDown: "mouse-still-down",
	EventMouseUp:        "mouse-up",
	EventMouseEnter:     "mouse-enter",
	EventMouseWithin:    "mouse-within",
	EventMouseLeave:     "mouse-leave",
	EventLoadCard:       "load-card",
	EventCloseCard:      "close-card",
	EventOpenCard:       "open-card",
	EventDisplayUpdate:  "display-update",
}

// Events returns every handler slot in order.
func Events() []Event {
	out := make([]Event, EventCount)
	for i := range out {
		out[i] = Event(i)
	}
	return out
}

// Name returns the symbolic event name, or "" for the reserved slot and
// values outside the enumeration.
func (e Event) Name() string {
	if e < 0 || e >= EventCount {
		return ""
	}
	return eventNames[e]
}

// String returns Name, falling back to the decimal value.
func (e Event) String() string {
	if n := e.Name(); n != "" {
		return n
	}
	return strconv.Itoa(int(e))
}

// Valid reports whether e addresses a handler slot.
func (e Event) Valid() bool { return e >= 0 && e < EventCount }

// Script holds one command list per event.
type Script struct {
	object
}

// ReadScript parses the script stored in r. The result is owned by the
// caller and freed with Close.
func ReadScript(r *Resource) (*Script, error) {
	l := r.lib
	ptr := l.script.read(r.ptr())
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, "script", resourceName(r.Type(), r.ID()))
	}
	h, err := ownership.NewExclusive(ptr, l.script.free, nil, l.opts(l.script.class))
	if err != nil {
		return nil, err
	}
	return &Script{object: object{lib: l, class: l.script.class, handle: h}}, nil
}

// ownedScript wraps a script pointer owned by another wrapper.
func (l *Lib) ownedScript(ptr uintptr, parent *object, owner any) (*Script, error) {
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, "script", "")
	}
	h, err := ownership.NewExclusive(ptr, l.script.free, owner, l.opts(l.script.class))
	if err != nil {
		return nil, err
	}
	return &Script{object: object{lib: l, class: l.script.class, handle: h, parent: parent}}, nil
}

// Owned reports whether the script belongs to a card or hotspot rather than
// the caller.
func (s *Script) Owned() bool { return s.handle.Owned() || s.parent != nil }

// Handler returns the commands run for event, in order. An empty handler
// yields an empty slice.
func (s *Script) Handler(e Event) ([]*Command, error) {
	if !e.Valid() {
		return nil, errors.OutOfBounds(errors.PhaseAccess, []string{"script", "handler"}, int(e), int(EventCount))
	}
	base := s.lib.script.handler(s.ptr(), int32(e))
	return s.lib.commands(base, &s.object, s)
}

// Close frees a script read with ReadScript. For scripts owned by a card or
// hotspot it does nothing.
func (s *Script) Close() error {
	s.handle.Release()
	return nil
}

// Command is a single script instruction: a leaf with an opcode and
// arguments, or a branch on a variable.
type Command struct {
	object
}

func (l *Lib) commands(base uintptr, parent *object, owner any) ([]*Command, error) {
	ptrs := ffi.PointerArray(l.lib.Memory(), base)
	out := make([]*Command, 0, len(ptrs))
	for _, p := range ptrs {
		h, err := ownership.NewBorrowed(p, owner, l.opts(l.command.class))
		if err != nil {
			return nil, err
		}
		out = append(out, &Command{object: object{lib: l, class: l.command.class, handle: h, parent: parent}})
	}
	return out, nil
}

func (c *Command) IsBranch() bool { return must(c.lib.command.branch.Get(c.live())) }

// Code returns the opcode of a leaf command.
func (c *Command) Code() uint16 { return must(c.lib.command.code.Get(c.live())) }

func (c *Command) Arguments() []uint16 {
	ptr := c.ptr()
	n := c.lib.command.argumentCount(ptr)
	out := make([]uint16, n)
	for i := range out {
		out[i] = c.lib.command.argument(ptr, uint16(i))
	}
	return out
}

// BranchVariable returns the variable a branch command tests.
func (c *Command) BranchVariable() uint16 {
	return must(c.lib.command.branchVariable.Get(c.live()))
}

// BranchValues returns the candidate values of a branch, parallel to
// BranchBodies.
func (c *Command) BranchValues() []uint16 {
	ptr := c.ptr()
	n := c.lib.command.branchCount(ptr)
	out := make([]uint16, n)
	for i := range out {
		out[i] = c.lib.command.branchValue(ptr, uint16(i))
	}
	return out
}

// BranchBodies returns the nested command list for each branch value.
func (c *Command) BranchBodies() ([][]*Command, error) {
	ptr := c.ptr()
	n := c.lib.command.branchCount(ptr)
	out := make([][]*Command, n)
	for i := range out {
		body, err := c.lib.commands(c.lib.command.branchBody(ptr, uint16(i)), &c.object, c)
		if err != nil {
			return nil, err
		}
		out[i] = body
	}
	return out, nil
}

// Close does nothing; commands borrow from their script.
func (c *Command) Close() error {
	c.handle.Release()
	return nil
}
