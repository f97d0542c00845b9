// Package ffitest provides an in-memory ffi.Library for tests.
//
// Functions are registered by symbol as ordinary Go funcs; every call through
// a bound function variable is counted, so tests can assert that an
// operation issued no native call at all. Memory the fake library "returns"
// lives in an Arena of simulated addresses; reads outside an allocation
// panic, which makes over-reads past a sentinel visible.
package ffitest
