package ffi

import (
	"fmt"
	"reflect"

	"github.com/wippyai/moiety/errors"
)

// Native is the set of types a property may carry across the C ABI.
type Native interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~uintptr
}

// PropertyBinder is the type-erased view of a Property used by Class.
type PropertyBinder interface {
	Name() string
	Writable() bool
	GetAny(obj Object) (any, error)
	SetAny(obj Object, v any) error

	attach(c *Class)
	methods() []Method
}

// Property is a typed accessor pair. The getter is bound to
// <prefix>_<class>_get_<name> and the setter to <prefix>_<class>_set_<name>
// unless the property is read-only.
type Property[N Native, L any] struct {
	name    string
	getter  string
	setter  string
	convert func(N) L
	revert  func(L) N
	check   func(Object) bool
	class   *Class

	get func(uintptr) N
	set func(uintptr, N)
}

// NewProperty declares a property converting between native N and logical L.
func NewProperty[N Native, L any](name string, convert func(N) L, revert func(L) N) *Property[N, L] {
	return &Property[N, L]{
		name:    name,
		getter:  "get_" + name,
		setter:  "set_" + name,
		convert: convert,
		revert:  revert,
	}
}

// Identity declares a property whose logical type is its native type.
func Identity[N Native](name string) *Property[N, N] {
	id := func(n N) N { return n }
	return NewProperty(name, id, id)
}

// Bool declares a property stored natively as an integer flag.
func Bool[N Native](name string) *Property[N, bool] {
	return NewProperty(name,
		func(n N) bool { return n != 0 },
		func(b bool) N {
			if b {
				return 1
			}
			return 0
		})
}

// ReadOnly binds the getter to the method symbol accessor and drops the setter.
func (p *Property[N, L]) ReadOnly(accessor string) *Property[N, L] {
	p.getter = accessor
	p.setter = ""
	return p
}

// Check replaces the applicability check. The default accepts objects whose
// Class is the one the property is declared on.
func (p *Property[N, L]) Check(fn func(Object) bool) *Property[N, L] {
	p.check = fn
	return p
}

func (p *Property[N, L]) Name() string { return p.name }

func (p *Property[N, L]) Writable() bool { return p.setter != "" }

// Get reads the property from obj.
func (p *Property[N, L]) Get(obj Object) (L, error) {
	var zero L
	if err := p.applies(obj); err != nil {
		return zero, err
	}
	if p.get == nil {
		return zero, unbound(p.class, p.name)
	}
	return p.convert(p.get(obj.Ptr())), nil
}

// Set writes v to obj.
func (p *Property[N, L]) Set(obj Object, v L) error {
	if err := p.applies(obj); err != nil {
		return err
	}
	if !p.Writable() {
		return errors.New(errors.PhaseAccess, errors.KindUnsupported).
			Path(p.className(), p.name).
			Detail("property is read-only").
			Build()
	}
	if p.set == nil {
		return unbound(p.class, p.name)
	}
	p.set(obj.Ptr(), p.revert(v))
	return nil
}

func (p *Property[N, L]) GetAny(obj Object) (any, error) {
	return p.Get(obj)
}

// SetAny writes v after checking that it is an L. No native call is made
// when the check fails.
func (p *Property[N, L]) SetAny(obj Object, v any) error {
	lv, ok := v.(L)
	if !ok {
		return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			Path(p.className(), p.name).
			GoType(typeName(v)).
			NativeType(reflect.TypeFor[N]().String()).
			Detail("value is not a %s", reflect.TypeFor[L]()).
			Value(v).
			Build()
	}
	return p.Set(obj, lv)
}

func (p *Property[N, L]) applies(obj Object) error {
	if obj == nil || reflect.ValueOf(obj).Kind() == reflect.Pointer && reflect.ValueOf(obj).IsNil() {
		return errors.NilPointer(errors.PhaseAccess, []string{p.className(), p.name}, "ffi.Object")
	}
	ok := obj.Class() == p.class
	if p.check != nil {
		ok = p.check(obj)
	}
	if !ok {
		return errors.WrongShape(errors.PhaseAccess, []string{p.className(), p.name}, p.className(), fmt.Sprint(obj.Class()))
	}
	return nil
}

func (p *Property[N, L]) className() string {
	if p.class == nil {
		return "<unbound>"
	}
	return p.class.Name
}

func (p *Property[N, L]) attach(c *Class) { p.class = c }

func (p *Property[N, L]) methods() []Method {
	ms := []Method{Fn(p.getter, &p.get)}
	if p.setter != "" {
		ms = append(ms, Fn(p.setter, &p.set))
	}
	return ms
}
