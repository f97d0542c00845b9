package ownership

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
)

// Handle is one wrapper's claim on a foreign pointer.
type Handle struct {
	owner      any
	release    func(uintptr)
	observer   Observer
	class      string
	ptr        uintptr
	released   atomic.Bool
	discipline Discipline
	owned      bool
}

// NewExclusive wraps ptr under the exclusive discipline. When owner is non-nil
// the owner is responsible for the pointer and Release never calls destroy.
func NewExclusive(ptr uintptr, destroy func(uintptr), owner any, opts Options) (*Handle, error) {
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, className(opts), "")
	}
	h := &Handle{
		ptr:        ptr,
		class:      opts.Class,
		discipline: Exclusive,
		owner:      owner,
		owned:      owner != nil,
		observer:   opts.Observer,
	}
	if owner == nil {
		h.release = destroy
	}
	h.emit(EventCreated)
	return h, nil
}

// NewCounted wraps ptr under the reference-counted discipline. A vended
// wrapper (one that is not the pointer's unique creator) grabs a reference
// on construction. Every counted handle calls release exactly once.
func NewCounted(ptr uintptr, grab, release func(uintptr), vended bool, opts Options) (*Handle, error) {
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, className(opts), "")
	}
	h := &Handle{
		ptr:        ptr,
		class:      opts.Class,
		discipline: Counted,
		release:    release,
		observer:   opts.Observer,
	}
	h.emit(EventCreated)
	if vended && grab != nil {
		grab(ptr)
		h.emit(EventGrabbed)
	}
	return h, nil
}

// NewBorrowed wraps ptr under the borrowed discipline. The owner is kept
// reachable for as long as the Handle is.
func NewBorrowed(ptr uintptr, owner any, opts Options) (*Handle, error) {
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, className(opts), "")
	}
	h := &Handle{
		ptr:        ptr,
		class:      opts.Class,
		discipline: Borrowed,
		owner:      owner,
		owned:      owner != nil,
		observer:   opts.Observer,
	}
	h.emit(EventCreated)
	return h, nil
}

// Ptr returns the wrapped pointer. It must not be passed to the foreign
// library after Release.
func (h *Handle) Ptr() uintptr {
	if h == nil {
		return 0
	}
	return h.ptr
}

// Class returns the handle type name given at construction.
func (h *Handle) Class() string { return h.class }

// Discipline returns the handle's lifetime discipline.
func (h *Handle) Discipline() Discipline { return h.discipline }

// Owner returns the object this handle keeps alive, if any.
func (h *Handle) Owner() any { return h.owner }

// Owned reports whether the handle was constructed with an owner that is
// responsible for the pointer.
func (h *Handle) Owned() bool { return h.owned }

// Released reports whether Release has been called.
func (h *Handle) Released() bool { return h.released.Load() }

// Release ends this handle's claim on the pointer. It returns true only for
// the call that performed the release; later calls are no-ops.
func (h *Handle) Release() bool {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return false
	}

	switch {
	case h.discipline == Exclusive && h.release != nil:
		h.release(h.ptr)
		h.emit(EventDestroyed)
	case h.discipline == Counted && h.release != nil:
		h.release(h.ptr)
		h.emit(EventReleased)
	default:
		h.emit(EventDisowned)
	}
	h.owner = nil
	return true
}

// Equal reports whether both handles wrap the same pointer of the same class.
func (h *Handle) Equal(other *Handle) bool {
	if h == nil || other == nil {
		return h == other
	}
	return h.ptr == other.ptr && h.class == other.class
}

func (h *Handle) String() string {
	return fmt.Sprintf("<%s %s : 0x%x>", h.class, h.discipline, h.ptr)
}

func (h *Handle) emit(t EventType) {
	Logger().Debug("handle event",
		zap.String("class", h.class),
		zap.Stringer("discipline", h.discipline),
		zap.Stringer("event", t),
		zap.Uintptr("ptr", h.ptr))
	if h.observer != nil {
		h.observer.OnHandleEvent(Event{
			Class:      h.class,
			Ptr:        h.ptr,
			Discipline: h.discipline,
			Type:       t,
			Owned:      h.owned,
		})
	}
}

func className(opts Options) string {
	if opts.Class == "" {
		return "handle"
	}
	return opts.Class
}
