package ffi

const libcPath = "/usr/lib/libSystem.B.dylib"
