// Package vaht wraps libvaht, the native Mohawk archive library, in typed
// and ownership-aware Go values.
//
// Load binds the library's C ABI once:
//
//	lib, err := ffi.OpenNative(path, vaht.Prefix)
//	v, err := vaht.Load(lib)
//	a, err := v.OpenArchive("/data/riven/b_Data.MHK")
//	defer a.Close()
//	res, err := a.OpenResource(vaht.TagCard, 137)
//	card := res.(*vaht.Card)
//	defer card.Close()
//
// # Ownership
//
// Archive and Resource are reference counted; each value holds one
// reference. Typed variants (Bitmap, Movie, Wave, NameTable, Card,
// PictureList, ButtonList, Hotspots, ResourceMap, SoundList) are exclusively
// owned and keep their own reference to the resource they were opened from.
// Scripts vended by a Card or Hotspots belong to it; scripts opened with
// ReadScript belong to the caller. Commands borrow from their script.
//
// Every Close is idempotent. Using a wrapper after it, or anything it
// borrows from, was closed panics rather than handing a dangling pointer to
// libvaht.
//
// # Record tables
//
// PLST, BLST, HSPT and SLST records are numbered from 1. Record(0) returns
// a zero placeholder without calling libvaht and Records puts that
// placeholder at index 0. Field accessors reject 0 and indices past Count
// with an out-of-bounds error, again without a native call.
//
// Wrappers are not safe for concurrent use; callers sharing an Archive
// across goroutines serialize access themselves (see package stack).
package vaht
