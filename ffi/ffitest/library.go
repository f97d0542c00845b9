package ffitest

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ffi"
)

// Library is a fake foreign library backed by Go functions.
type Library struct {
	prefix string
	arena  *Arena

	mu     sync.Mutex
	funcs  map[string]reflect.Value
	calls  map[string]int
	frees  []uintptr
	closed bool
}

var _ ffi.Library = (*Library)(nil)

// New creates an empty library whose symbols share prefix.
func New(prefix string) *Library {
	return &Library{
		prefix: prefix,
		arena:  NewArena(),
		funcs:  make(map[string]reflect.Value),
		calls:  make(map[string]int),
	}
}

// Register makes fn available under symbol, replacing any earlier
// registration. fn must be a func.
func (l *Library) Register(symbol string, fn any) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Sprintf("ffitest: %s registered with %T, want a func", symbol, fn))
	}
	l.mu.Lock()
	l.funcs[symbol] = v
	l.mu.Unlock()
}

// Unregister removes symbol so that binding it reports a missing symbol.
func (l *Library) Unregister(symbol string) {
	l.mu.Lock()
	delete(l.funcs, symbol)
	l.mu.Unlock()
}

// Symbols lists the registered symbols in sorted order.
func (l *Library) Symbols() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.funcs))
	for s := range l.funcs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (l *Library) Prefix() string { return l.prefix }

func (l *Library) Bind(fptr any, symbol string) error {
	rv := reflect.ValueOf(fptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Func {
		return errors.NilPointer(errors.PhaseBind, []string{symbol}, fmt.Sprintf("%T", fptr))
	}
	ft := rv.Elem().Type()
	if err := ffi.CheckSignature(ft, symbol); err != nil {
		return err
	}

	l.mu.Lock()
	fn, ok := l.funcs[symbol]
	l.mu.Unlock()
	if !ok {
		return errors.New(errors.PhaseBind, errors.KindMissingSymbol).
			Path(symbol).
			Cause(ffi.ErrSymbolNotFound).
			Build()
	}
	if fn.Type() != ft {
		return errors.New(errors.PhaseBind, errors.KindTypeMismatch).
			Path(symbol).
			GoType(ft.String()).
			NativeType(fn.Type().String()).
			Detail("registered function has a different signature").
			Build()
	}

	rv.Elem().Set(reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		l.mu.Lock()
		l.calls[symbol]++
		l.mu.Unlock()
		return fn.Call(args)
	}))
	return nil
}

// Calls returns how many times symbol was called through bound functions.
func (l *Library) Calls(symbol string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[symbol]
}

// TotalCalls returns the number of calls across all symbols.
func (l *Library) TotalCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		n += c
	}
	return n
}

// ResetCalls zeroes every call counter.
func (l *Library) ResetCalls() {
	l.mu.Lock()
	clear(l.calls)
	l.mu.Unlock()
}

func (l *Library) Memory() ffi.Memory { return l.arena }

// Arena returns the library's simulated memory.
func (l *Library) Arena() *Arena { return l.arena }

// Free records addr as freed.
func (l *Library) Free(addr uintptr) {
	l.mu.Lock()
	l.frees = append(l.frees, addr)
	l.mu.Unlock()
}

// Frees returns every address passed to Free, in order.
func (l *Library) Frees() []uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uintptr(nil), l.frees...)
}

// Freed reports how many times addr was freed.
func (l *Library) Freed(addr uintptr) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, a := range l.frees {
		if a == addr {
			n++
		}
	}
	return n
}

func (l *Library) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (l *Library) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
