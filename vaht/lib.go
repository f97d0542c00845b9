package vaht

import (
	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ffi"
	"github.com/wippyai/moiety/ownership"
)

// Prefix is the symbol prefix of every libvaht function.
const Prefix = "vaht"

// Lib is a bound libvaht. All wrappers created through it share its
// function tables; the underlying ffi.Library must stay open while any of
// them is in use.
type Lib struct {
	lib      ffi.Library
	observer ownership.Observer

	archive  archiveFns
	resource resourceFns
	bmp      bmpFns
	mov      movFns
	wav      wavFns
	name     nameFns
	card     cardFns
	plst     plstFns
	script   scriptFns
	command  commandFns
	blst     blstFns
	hspt     hsptFns
	rmap     rmapFns
	slst     slstFns

	classes []*ffi.Class
}

// Config holds optional settings for LoadWithConfig.
type Config struct {
	// Observer receives lifecycle events of every handle the Lib creates.
	Observer ownership.Observer
}

// Load binds every libvaht function against lib. A library missing any
// symbol is rejected with *errors.MissingSymbolsError listing all of them.
func Load(lib ffi.Library) (*Lib, error) {
	return LoadWithConfig(lib, nil)
}

// LoadWithConfig is Load with explicit configuration.
func LoadWithConfig(lib ffi.Library, cfg *Config) (*Lib, error) {
	if lib == nil {
		return nil, errors.NilPointer(errors.PhaseLoad, nil, "ffi.Library")
	}
	l := &Lib{lib: lib}
	if cfg != nil {
		l.observer = cfg.Observer
	}
	l.classes = []*ffi.Class{
		l.archive.table(),
		l.resource.table(),
		l.bmp.table(),
		l.mov.table(),
		l.wav.table(),
		l.name.table(),
		l.card.table(),
		l.plst.table(),
		l.script.table(),
		l.command.table(),
		l.blst.table(),
		l.hspt.table(),
		l.rmap.table(),
		l.slst.table(),
	}
	if err := ffi.BindAll(lib, l.classes...); err != nil {
		return nil, err
	}
	Logger().Info("loaded libvaht", zap.Int("classes", len(l.classes)))
	return l, nil
}

// Library returns the foreign library the Lib is bound to.
func (l *Lib) Library() ffi.Library { return l.lib }

// Classes returns the bound class tables in declaration order.
func (l *Lib) Classes() []*ffi.Class {
	return append([]*ffi.Class(nil), l.classes...)
}

// Class returns the bound class table called name.
func (l *Lib) Class(name string) (*ffi.Class, bool) {
	for _, c := range l.classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func (l *Lib) opts(c *ffi.Class) ownership.Options {
	return ownership.Options{Class: c.Name, Observer: l.observer}
}

// object is the part shared by every wrapper: the handle, its class table and
// the wrapper it borrows from, if any.
type object struct {
	lib    *Lib
	class  *ffi.Class
	handle *ownership.Handle
	parent *object
}

func (o *object) Ptr() uintptr { return o.handle.Ptr() }

func (o *object) Class() *ffi.Class { return o.class }

// Handle exposes the ownership handle, mainly for tests and diagnostics.
func (o *object) Handle() *ownership.Handle { return o.handle }

func (o *object) String() string { return o.handle.String() }

// Equal reports whether both wrappers refer to the same native pointer.
func (o *object) Equal(other ffi.Object) bool {
	if other == nil {
		return false
	}
	return o.class == other.Class() && o.Ptr() == other.Ptr()
}

// live returns o after checking that neither it nor anything it borrows
// from has been closed. Calling into libvaht with a released pointer is
// undefined behaviour, so this panics instead.
func (o *object) live() *object {
	for p := o; p != nil; p = p.parent {
		if p.handle.Released() {
			panic(errors.New(errors.PhaseAccess, errors.KindUnsupported).
				Path(o.class.Name).
				Detail("use of %s after its %s was closed", o.class.Name, p.class.Name).
				Build())
		}
	}
	return o
}

func (o *object) ptr() uintptr { return o.live().handle.Ptr() }

// must unwraps a property read on the wrapper's own class, which cannot fail
// once the class is bound.
func must[L any](v L, err error) L {
	if err != nil {
		panic(err)
	}
	return v
}
