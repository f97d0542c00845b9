// Package stack resolves resources by stack name.
//
// A stack is an ordered list of archive files. Resolve tries each file in
// order and returns the first match, so earlier files shadow later ones.
// Archives are opened lazily, cached per path and never evicted; a file
// that fails to open is retried on the next lookup.
package stack
