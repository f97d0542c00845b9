package ffi

import (
	"reflect"

	"github.com/wippyai/moiety/errors"
)

// funcType validates fptr and returns the func type it points to.
func funcType(fptr any, symbol string) (reflect.Type, error) {
	rv := reflect.ValueOf(fptr)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, errors.New(errors.PhaseBind, errors.KindNilPointer).
			Path(symbol).
			GoType(typeName(fptr)).
			Detail("binding target must be a non-nil pointer to a func variable").
			Build()
	}
	ft := rv.Type().Elem()
	if ft.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseBind, errors.KindTypeMismatch).
			Path(symbol).
			GoType(ft.String()).
			Detail("binding target must point to a func variable").
			Build()
	}
	if err := CheckSignature(ft, symbol); err != nil {
		return nil, err
	}
	return ft, nil
}

// CheckSignature reports whether ft can be called across the C ABI.
func CheckSignature(ft reflect.Type, symbol string) error {
	if ft.IsVariadic() {
		return signatureError(symbol, ft, "variadic functions are not supported")
	}
	for i := 0; i < ft.NumIn(); i++ {
		if !paramSupported(ft.In(i)) {
			return signatureError(symbol, ft, "parameter %d has unsupported type %s", i, ft.In(i))
		}
	}
	switch ft.NumOut() {
	case 0:
	case 1:
		if !resultSupported(ft.Out(0)) {
			return signatureError(symbol, ft, "result has unsupported type %s", ft.Out(0))
		}
	default:
		return signatureError(symbol, ft, "at most one result is supported")
	}
	return nil
}

func paramSupported(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String:
		return true
	case reflect.Pointer:
		return fixedWidth(t.Elem().Kind())
	default:
		return fixedWidth(t.Kind())
	}
}

func resultSupported(t reflect.Type) bool {
	return t.Kind() == reflect.String || fixedWidth(t.Kind())
}

// fixedWidth excludes int and uint, whose width differs from C int on 64-bit targets.
func fixedWidth(k reflect.Kind) bool {
	switch k {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uintptr:
		return true
	}
	return false
}

func signatureError(symbol string, ft reflect.Type, format string, args ...any) error {
	return errors.New(errors.PhaseBind, errors.KindTypeMismatch).
		Path(symbol).
		GoType(ft.String()).
		Detail(format, args...).
		Build()
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
