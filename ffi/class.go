package ffi

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
)

// Object is a wrapper around a foreign handle of some Class.
type Object interface {
	Ptr() uintptr
	Class() *Class
}

// Method pairs a method name with the func variable it binds to.
type Method struct {
	Name   string
	Target any
}

// Fn declares a method. fptr must point to a func variable whose signature
// matches the native function.
func Fn(name string, fptr any) Method {
	return Method{Name: name, Target: fptr}
}

// Class is the binding table of one handle type.
type Class struct {
	Name       string
	Methods    []Method
	Properties []PropertyBinder

	prefix string
	byName map[string]PropertyBinder
}

// Symbol returns the foreign symbol name for prefix, class and method.
func Symbol(prefix, class, method string) string {
	if prefix == "" {
		return class + "_" + method
	}
	return prefix + "_" + class + "_" + method
}

// Symbol returns the foreign symbol name of method on this class. Before the
// class is bound the prefix is empty.
func (c *Class) Symbol(method string) string {
	return Symbol(c.prefix, c.Name, method)
}

// Bound reports whether Bind has completed successfully.
func (c *Class) Bound() bool {
	return c.byName != nil
}

// Bind resolves every method and property of c against lib.
func (c *Class) Bind(lib Library) error {
	return BindAll(lib, c)
}

// Property returns the property declared under name.
func (c *Class) Property(name string) (PropertyBinder, bool) {
	if c.byName != nil {
		p, ok := c.byName[name]
		return p, ok
	}
	for _, p := range c.Properties {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Get reads the named property of obj.
func (c *Class) Get(obj Object, name string) (any, error) {
	p, ok := c.Property(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseAccess, "property", c.Name+"."+name)
	}
	return p.GetAny(obj)
}

// Set writes the named property of obj.
func (c *Class) Set(obj Object, name string, v any) error {
	p, ok := c.Property(name)
	if !ok {
		return errors.NotFound(errors.PhaseAccess, "property", c.Name+"."+name)
	}
	return p.SetAny(obj, v)
}

func (c *Class) String() string {
	return c.Name
}

// BindAll binds every class against lib. Missing symbols do not stop the
// walk: they are collected across all classes and reported in a single
// *errors.MissingSymbolsError. Any other failure is returned immediately.
func BindAll(lib Library, classes ...*Class) error {
	var missing []string
	for _, c := range classes {
		m, err := c.bind(lib)
		if err != nil {
			return err
		}
		missing = append(missing, m...)
	}
	if len(missing) > 0 {
		Logger().Error("library is missing symbols",
			zap.String("prefix", lib.Prefix()),
			zap.Int("count", len(missing)))
		return errors.NewMissingSymbolsError(missing)
	}
	return nil
}

func (c *Class) bind(lib Library) ([]string, error) {
	c.prefix = lib.Prefix()

	var missing []string
	seen := make(map[string]bool, len(c.Methods))
	try := func(m Method) error {
		symbol := c.Symbol(m.Name)
		if seen[symbol] {
			return errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Path(c.Name, m.Name).
				Detail("symbol %s declared twice", symbol).
				Build()
		}
		seen[symbol] = true
		if _, err := funcType(m.Target, symbol); err != nil {
			return err
		}
		err := lib.Bind(m.Target, symbol)
		switch {
		case err == nil:
			return nil
		case stderrors.Is(err, ErrSymbolNotFound):
			missing = append(missing, c.Name+"#"+symbol)
			return nil
		default:
			return err
		}
	}

	for _, m := range c.Methods {
		if err := try(m); err != nil {
			return nil, err
		}
	}

	byName := make(map[string]PropertyBinder, len(c.Properties))
	for _, p := range c.Properties {
		if _, dup := byName[p.Name()]; dup {
			return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Path(c.Name, p.Name()).
				Detail("property declared twice").
				Build()
		}
		byName[p.Name()] = p
		p.attach(c)
		for _, m := range p.methods() {
			if err := try(m); err != nil {
				return nil, err
			}
		}
	}

	if len(missing) == 0 {
		c.byName = byName
		Logger().Debug("bound class",
			zap.String("class", c.Name),
			zap.Int("methods", len(c.Methods)),
			zap.Int("properties", len(c.Properties)))
	}
	return missing, nil
}

// unbound is the error returned by calls through a property that was never bound.
func unbound(c *Class, name string) error {
	class := "<nil>"
	if c != nil {
		class = c.Name
	}
	return errors.New(errors.PhaseAccess, errors.KindUnsupported).
		Path(class, name).
		Detail("property %s is not bound", name).
		Build()
}
