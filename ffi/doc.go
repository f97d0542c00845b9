// Package ffi binds Go function variables to the C ABI of a foreign library.
//
// A handle type is described once, as a table:
//
//	var fns struct {
//	    open  func(path string) uintptr
//	    close func(h uintptr) uint16
//	}
//	class := &ffi.Class{
//	    Name: "archive",
//	    Methods: []ffi.Method{
//	        ffi.Fn("open", &fns.open),   // vaht_archive_open
//	        ffi.Fn("close", &fns.close), // vaht_archive_close
//	    },
//	}
//	if err := ffi.BindAll(lib, class); err != nil {
//	    return err // *errors.MissingSymbolsError lists every absent symbol
//	}
//
// Symbols follow the convention <prefix>_<class>_<method>. Binding happens
// once at startup; a library that lacks any declared symbol is rejected as a
// whole, so calls never fail for missing symbols later.
//
// # Properties
//
// Property descriptors pair a getter (and optionally a setter) with a
// conversion between the native integer type and a logical Go type:
//
//	zip := ffi.Bool[uint16]("zip_mode").ReadOnly("zip_mode")
//	class.Properties = append(class.Properties, zip)
//	...
//	on, err := zip.Get(card)
//
// Get and Set first run the property's applicability check (by default: the
// object belongs to the property's class). Set additionally rejects values of
// the wrong logical type. Both failures are type mismatches reported before
// any native call.
//
// # Supported signatures
//
// Parameters and results use fixed-width integers (uint8..uint64,
// int8..int64), uintptr for opaque pointers, string for char* arguments and
// non-owned char* results, and *T for output parameters and byte buffers.
// Platform-width int and uint are rejected because they do not match C int.
//
// # Libraries
//
//   - OpenNative loads a shared object with dlopen (unix only).
//   - OpenWasm runs a wasm32 build of the library in wazero.
//   - ffitest.Library is an in-memory fake for tests.
//
// Memory returned by the library is read through the Memory interface.
// PointerArray converts a null-terminated pointer array into a Go slice at the
// boundary.
package ffi
