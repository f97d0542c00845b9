package vaht

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ffi"
	"github.com/wippyai/moiety/ownership"
)

// Type tags with a typed wrapper.
const (
	TagBitmap      = "tBMP"
	TagMovie       = "tMOV"
	TagWave        = "tWAV"
	TagNames       = "NAME"
	TagCard        = "CARD"
	TagPictureList = "PLST"
	TagButtonList  = "BLST"
	TagHotspots    = "HSPT"
	TagResourceMap = "RMAP"
	TagSoundList   = "SLST"
)

// Typed is the result of opening a resource: one of the typed variants, or
// the untyped *Resource for tags without one.
type Typed interface {
	ffi.Object
	// Resource returns the underlying resource. Variants that were not
	// opened from a resource (bitmaps vended by a picture list) return nil.
	Resource() *Resource
	Close() error
}

type constructor func(r *Resource) (Typed, error)

var dispatch = map[string]constructor{
	TagBitmap:      func(r *Resource) (Typed, error) { return OpenBitmap(r) },
	TagMovie:       func(r *Resource) (Typed, error) { return OpenMovie(r) },
	TagWave:        func(r *Resource) (Typed, error) { return OpenWave(r) },
	TagNames:       func(r *Resource) (Typed, error) { return OpenNameTable(r) },
	TagCard:        func(r *Resource) (Typed, error) { return OpenCard(r) },
	TagPictureList: func(r *Resource) (Typed, error) { return OpenPictureList(r) },
	TagButtonList:  func(r *Resource) (Typed, error) { return OpenButtonList(r) },
	TagHotspots:    func(r *Resource) (Typed, error) { return OpenHotspots(r) },
	TagResourceMap: func(r *Resource) (Typed, error) { return OpenResourceMap(r) },
	TagSoundList:   func(r *Resource) (Typed, error) { return OpenSoundList(r) },
}

// Typeable reports whether tag has a typed wrapper.
func Typeable(tag string) bool {
	_, ok := dispatch[tag]
	return ok
}

// Dispatch wraps r in the variant matching its type tag. The variant takes
// its own reference to r, and the caller's reference is released, so the
// result is the only thing left to close. Unrecognized tags return r.
func Dispatch(r *Resource) (Typed, error) {
	tag := r.Type()
	ctor, ok := dispatch[tag]
	if !ok {
		Logger().Debug("untyped resource", zap.String("type", tag), zap.Uint16("id", r.ID()))
		return r, nil
	}
	t, err := ctor(r)
	r.Close()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// variant is the common part of the exclusively-owned typed wrappers. It
// holds its own counted reference to the resource it was opened from.
type variant struct {
	object
	res *Resource
}

// newVariant opens a variant of class from r with open, which must return a
// pointer owned by the caller and destroyed by destroy.
func newVariant(r *Resource, class *ffi.Class, tag string, open func(uintptr) uintptr, destroy func(uintptr)) (variant, error) {
	if r == nil {
		return variant{}, errors.NilPointer(errors.PhaseOpen, []string{tag}, "*vaht.Resource")
	}
	l := r.lib
	ptr := open(r.ptr())
	if ptr == 0 {
		return variant{}, errors.OpenFailed(errors.PhaseOpen, tag, strconv.Itoa(int(r.ID())))
	}
	h, err := ownership.NewExclusive(ptr, destroy, nil, l.opts(class))
	if err != nil {
		return variant{}, err
	}
	own, err := r.Share()
	if err != nil {
		h.Release()
		return variant{}, err
	}
	return variant{object: object{lib: l, class: class, handle: h}, res: own}, nil
}

// vended wraps a pointer that an accessor on another wrapper returned as a
// new caller-owned object, e.g. a bitmap from a picture list.
func vended(l *Lib, ptr uintptr, class *ffi.Class, tag string, destroy func(uintptr)) (variant, error) {
	if ptr == 0 {
		return variant{}, errors.OpenFailed(errors.PhaseOpen, tag, "")
	}
	h, err := ownership.NewExclusive(ptr, destroy, nil, l.opts(class))
	if err != nil {
		return variant{}, err
	}
	return variant{object: object{lib: l, class: class, handle: h}}, nil
}

// Resource returns the resource the variant was opened from.
func (v *variant) Resource() *Resource { return v.res }

// Close destroys the native object and drops the resource reference. Later
// calls do nothing.
func (v *variant) Close() error {
	if v.handle.Release() && v.res != nil {
		v.res.Close()
	}
	return nil
}
