package vaht

import (
	"fmt"
	"io"
	"math"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/ownership"
)

// Resource is a typed, numbered byte stream inside an archive. It is
// reference counted and may outlive the Archive it was opened from.
type Resource struct {
	object
}

var (
	_ io.Reader = (*Resource)(nil)
	_ io.Seeker = (*Resource)(nil)
)

func (l *Lib) wrapResource(ptr uintptr, vended bool) (*Resource, error) {
	h, err := ownership.NewCounted(ptr, l.grabResource, l.closeResource, vended, l.opts(l.resource.class))
	if err != nil {
		return nil, err
	}
	return &Resource{object: object{lib: l, class: l.resource.class, handle: h}}, nil
}

func (l *Lib) grabResource(p uintptr) { l.resource.grab(p) }
func (l *Lib) closeResource(p uintptr) { l.resource.close(p) }

// Share returns a second reference to the same resource.
func (r *Resource) Share() (*Resource, error) {
	return r.lib.wrapResource(r.ptr(), true)
}

func (r *Resource) Name() string { return r.lib.resource.name(r.ptr()) }

// Type returns the four-character type tag.
func (r *Resource) Type() string { return r.lib.resource.typ(r.ptr()) }

func (r *Resource) ID() uint16 { return must(r.lib.resource.id.Get(r.live())) }

// Size returns the resource length in bytes.
func (r *Resource) Size() uint32 { return must(r.lib.resource.size.Get(r.live())) }

// Tell returns the current read offset.
func (r *Resource) Tell() uint32 { return r.lib.resource.tell(r.ptr()) }

// Read reads up to len(p) bytes. It returns io.EOF once the resource is
// exhausted.
func (r *Resource) Read(p []byte) (int, error) {
	return readInto(p, r.ptr(), r.lib.resource.read)
}

// Seek implements io.Seeker on top of the native absolute seek.
func (r *Resource) Seek(offset int64, whence int) (int64, error) {
	ptr := r.ptr()
	return seekTo(offset, whence, int64(r.lib.resource.tell(ptr)), int64(r.Size()),
		func(pos uint32) { r.lib.resource.seek(ptr, pos) })
}

// ReadAll reads the remainder of the resource, failing when it exceeds limit
// bytes. A limit of 0 means no limit.
func (r *Resource) ReadAll(limit int64) ([]byte, error) {
	return readAll(r, int64(r.Size())-int64(r.Tell()), limit)
}

// Resource returns r itself so that *Resource satisfies Typed.
func (r *Resource) Resource() *Resource { return r }

// Close releases this reference.
func (r *Resource) Close() error {
	r.handle.Release()
	return nil
}

func readInto(p []byte, ptr uintptr, read func(uintptr, uint32, *byte) uint32) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := len(p)
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	got := read(ptr, uint32(n), &p[0])
	if got == 0 {
		return 0, io.EOF
	}
	return int(got), nil
}

func seekTo(offset int64, whence int, cur, size int64, seek func(uint32)) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = cur + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return 0, errors.InvalidInput(errors.PhaseAccess, fmt.Sprintf("invalid whence %d", whence))
	}
	if abs < 0 || abs > math.MaxUint32 {
		return 0, errors.InvalidInput(errors.PhaseAccess, fmt.Sprintf("seek position %d out of range", abs))
	}
	seek(uint32(abs))
	return abs, nil
}

func readAll(r io.Reader, hint, limit int64) ([]byte, error) {
	if limit > 0 {
		if hint > limit {
			return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
				Detail("payload of %d bytes exceeds limit %d", hint, limit).
				Build()
		}
		r = io.LimitReader(r, limit+1)
	}
	buf := make([]byte, 0, max(hint, 0))
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if limit > 0 && int64(len(buf)) > limit {
			return nil, errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
				Detail("payload exceeds limit %d", limit).
				Build()
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return buf, err
		}
	}
}

func resourceName(tag string, id uint16) string {
	return fmt.Sprintf("%s %d", tag, id)
}
