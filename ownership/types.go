package ownership

// Discipline selects how a Handle releases its pointer.
type Discipline uint8

const (
	// Exclusive handles call their destructor once, unless constructed with an owner.
	Exclusive Discipline = iota + 1
	// Counted handles decrement a shared reference count once.
	Counted
	// Borrowed handles keep their owner reachable and release nothing.
	Borrowed
)

func (d Discipline) String() string {
	switch d {
	case Exclusive:
		return "exclusive"
	case Counted:
		return "counted"
	case Borrowed:
		return "borrowed"
	default:
		return "unknown"
	}
}

// EventType identifies a handle lifecycle notification.
type EventType uint8

const (
	EventCreated   EventType = iota // wrapper constructed
	EventGrabbed                    // counted wrapper took an extra reference
	EventReleased                   // counted wrapper gave back its reference
	EventDestroyed                  // exclusive wrapper destroyed its pointer
	EventDisowned                   // wrapper ended without a native release
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventGrabbed:
		return "grabbed"
	case EventReleased:
		return "released"
	case EventDestroyed:
		return "destroyed"
	case EventDisowned:
		return "disowned"
	default:
		return "unknown"
	}
}

// Event represents a handle lifecycle event.
type Event struct {
	Class      string
	Ptr        uintptr
	Discipline Discipline
	Type       EventType
	// Owned is set for handles whose pointer another wrapper frees.
	Owned bool
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnHandleEvent calls f(e).
func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Options carries the metadata shared by all constructors.
type Options struct {
	// Class names the wrapped handle type, e.g. "archive" or "bmp".
	Class string
	// Observer, if set, receives the handle's lifecycle events.
	Observer Observer
}
