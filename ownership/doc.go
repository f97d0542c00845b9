// Package ownership implements the handle-lifetime disciplines used by the
// libvaht bindings.
//
// Every wrapper around a foreign pointer owns exactly one Handle. The Handle
// records which of three disciplines governs the pointer:
//
//	Exclusive - the wrapper destroys the pointer once, unless an owner was given
//	Counted   - the wrapper holds one reference; optional grab, exactly one release
//	Borrowed  - the wrapper pins its owner and never releases anything
//
// Release is idempotent for every discipline. Concurrent or repeated calls
// perform the native release at most once.
//
// # Equality
//
// Two handles are equal when they wrap the same pointer of the same class.
// Structural content is never compared.
//
// # Observers
//
// Handles report lifecycle events to an optional Observer:
//
//	tracker := ownership.NewTracker()
//	h, err := ownership.NewCounted(ptr, grab, release, false,
//	    ownership.Options{Class: "archive", Observer: tracker})
//	...
//	h.Release()
//	tracker.Len() // 0
//
// Tracker counts live handles and is used to report leaks at shutdown.
//
// # Finalizers
//
// Handles are not released by the garbage collector. Release order is
// observable by the native library, so callers release explicitly, usually
// with defer.
package ownership
