package vaht

import (
	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ownership"
)

// Archive is an open Mohawk archive. It is reference counted: every Archive
// value holds one reference and releases it on Close.
type Archive struct {
	object
	path string
}

// OpenArchive opens the archive file at path.
func (l *Lib) OpenArchive(path string) (*Archive, error) {
	ptr := l.archive.open(path)
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, "archive", path)
	}
	a, err := l.wrapArchive(ptr, false)
	if err != nil {
		return nil, err
	}
	a.path = path
	Logger().Debug("opened archive", zap.String("path", path), zap.Uintptr("ptr", ptr))
	return a, nil
}

func (l *Lib) wrapArchive(ptr uintptr, vended bool) (*Archive, error) {
	h, err := ownership.NewCounted(ptr, l.grabArchive, l.closeArchive, vended, l.opts(l.archive.class))
	if err != nil {
		return nil, err
	}
	return &Archive{object: object{lib: l, class: l.archive.class, handle: h}}, nil
}

func (l *Lib) grabArchive(p uintptr) { l.archive.grab(p) }
func (l *Lib) closeArchive(p uintptr) { l.archive.close(p) }

// Path returns the file the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Share returns a second reference to the same archive. Both values must be
// closed.
func (a *Archive) Share() (*Archive, error) {
	b, err := a.lib.wrapArchive(a.ptr(), true)
	if err != nil {
		return nil, err
	}
	b.path = a.path
	return b, nil
}

// ResourceTypes lists the type tags present in the archive.
func (a *Archive) ResourceTypes() []string {
	p := a.ptr()
	n := a.lib.archive.getResourceTypes(p)
	out := make([]string, 0, n)
	for i := uint16(0); i < n; i++ {
		out = append(out, a.lib.archive.getResourceType(p, i))
	}
	return out
}

// OpenRaw opens resource (tag, id) without dispatching on its type.
func (a *Archive) OpenRaw(tag string, id uint16) (*Resource, error) {
	ptr := a.lib.resource.open(a.ptr(), tag, id)
	if ptr == 0 {
		return nil, errors.OpenFailed(errors.PhaseOpen, "resource", resourceName(tag, id))
	}
	return a.lib.wrapResource(ptr, false)
}

// OpenResource opens resource (tag, id) and returns the typed wrapper for its
// type tag. Tags without a wrapper yield the *Resource itself.
func (a *Archive) OpenResource(tag string, id uint16) (Typed, error) {
	r, err := a.OpenRaw(tag, id)
	if err != nil {
		return nil, err
	}
	return Dispatch(r)
}

// Close releases this reference to the archive.
func (a *Archive) Close() error {
	a.handle.Release()
	return nil
}
