package ffi

const libcPath = "libc.so.7"
