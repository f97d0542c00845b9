//go:build linux || darwin || freebsd

package ffi

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
)

// NativeLibrary is a shared object loaded with dlopen.
type NativeLibrary struct {
	path   string
	prefix string
	handle uintptr
	libc   uintptr
	free   func(uintptr)
	mem    nativeMemory

	closeOnce sync.Once
	closeErr  error
}

// OpenNative loads the shared object at path. Symbols are looked up with the
// given prefix, e.g. "vaht". libc free is bound for caller-owned strings.
func OpenNative(path, prefix string) (*NativeLibrary, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("dlopen %s", path), err)
	}
	libc, err := purego.Dlopen(libcPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		_ = purego.Dlclose(handle)
		return nil, errors.Load(fmt.Sprintf("dlopen %s", libcPath), err)
	}

	l := &NativeLibrary{
		path:   path,
		prefix: prefix,
		handle: handle,
		libc:   libc,
	}
	if err := l.register(libc, &l.free, "free"); err != nil {
		_ = purego.Dlclose(handle)
		_ = purego.Dlclose(libc)
		return nil, errors.Load("bind libc free", err)
	}

	Logger().Info("opened native library",
		zap.String("path", path),
		zap.String("prefix", prefix))
	return l, nil
}

func (l *NativeLibrary) Prefix() string { return l.prefix }

func (l *NativeLibrary) Path() string { return l.path }

func (l *NativeLibrary) Bind(fptr any, symbol string) error {
	if _, err := funcType(fptr, symbol); err != nil {
		return err
	}
	return l.register(l.handle, fptr, symbol)
}

func (l *NativeLibrary) register(handle uintptr, fptr any, symbol string) (err error) {
	sym, dlErr := purego.Dlsym(handle, symbol)
	if dlErr != nil || sym == 0 {
		return errors.New(errors.PhaseBind, errors.KindMissingSymbol).
			Path(symbol).
			Cause(ErrSymbolNotFound).
			Build()
	}
	// RegisterFunc panics on signatures it cannot marshal
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseBind, errors.KindTypeMismatch).
				Path(symbol).
				GoType(typeName(fptr)).
				Detail("%v", r).
				Build()
		}
	}()
	purego.RegisterFunc(fptr, sym)
	return nil
}

func (l *NativeLibrary) Memory() Memory { return l.mem }

func (l *NativeLibrary) Free(addr uintptr) {
	if addr != 0 {
		l.free(addr)
	}
}

// Close unloads the library. It is safe to call more than once.
func (l *NativeLibrary) Close() error {
	l.closeOnce.Do(func() {
		if err := purego.Dlclose(l.handle); err != nil {
			l.closeErr = errors.Load("dlclose "+l.path, err)
		}
		_ = purego.Dlclose(l.libc)
		Logger().Debug("closed native library", zap.String("path", l.path))
	})
	return l.closeErr
}
