// Package vahttest is an in-memory fake of the libvaht C ABI for tests.
//
// A Fake serves fixture archives keyed by path. Every libvaht symbol is
// registered on an ffitest.Library, so tests get per-symbol call counters,
// and the fake tracks reference counts and destroyed handles so ownership
// bugs surface as counts or as panics on use of a dead handle.
package vahttest

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/wippyai/moiety/ffi/ffitest"
	"github.com/wippyai/moiety/vaht"
)

// Fake is a fake libvaht.
type Fake struct {
	*ffitest.Library

	mu        sync.Mutex
	files     map[string]*Archive
	archives  map[uintptr]*archiveState
	resources map[uintptr]*resourceState
	objects   map[uintptr]*objectState
	commands  map[uintptr]*Command
	destroyed map[uintptr]int
	opens     map[string]int
}

type archiveState struct {
	path string
	data *Archive
	refs int
}

type resourceState struct {
	data *Resource
	refs int
	pos  uint32
}

// objectState is any exclusively-owned object: a typed variant or a script.
type objectState struct {
	class string
	res   *Resource
	bmp   *Bitmap
	pics  []Picture
	pos   uint32
	data  uintptr
	// script handler arrays, materialized on first use
	script   Script
	handlers map[int]uintptr
	pscripts map[int]uintptr
	owned    bool
}

// New returns a fake serving files, keyed by the path passed to
// vaht_archive_open.
func New(files map[string]*Archive) *Fake {
	f := &Fake{
		Library:   ffitest.New(vaht.Prefix),
		files:     files,
		archives:  make(map[uintptr]*archiveState),
		resources: make(map[uintptr]*resourceState),
		objects:   make(map[uintptr]*objectState),
		commands:  make(map[uintptr]*Command),
		destroyed: make(map[uintptr]int),
		opens:     make(map[string]int),
	}
	f.registerArchive()
	f.registerResource()
	f.registerMedia()
	f.registerTables()
	f.registerScripts()
	return f
}

// Load binds a vaht.Lib to the fake.
func (f *Fake) Load() (*vaht.Lib, error) {
	return vaht.Load(f)
}

// LoadWithConfig binds a vaht.Lib to the fake with cfg.
func (f *Fake) LoadWithConfig(cfg *vaht.Config) (*vaht.Lib, error) {
	return vaht.LoadWithConfig(f, cfg)
}

// AddFile adds or replaces an archive file.
func (f *Fake) AddFile(path string, a *Archive) {
	f.mu.Lock()
	f.files[path] = a
	f.mu.Unlock()
}

// Opens returns how many times vaht_archive_open was called for path,
// successful or not.
func (f *Fake) Opens(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

// Refs returns the reference count of a live archive or resource handle, or
// 0 once it has been fully released.
func (f *Fake) Refs(ptr uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.archives[ptr]; ok {
		return a.refs
	}
	if r, ok := f.resources[ptr]; ok {
		return r.refs
	}
	return 0
}

// LiveCounted returns how many archive and resource handles still hold
// references.
func (f *Fake) LiveCounted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.archives) + len(f.resources)
}

// LiveObjects returns how many exclusively-owned objects are not yet destroyed.
func (f *Fake) LiveObjects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// Destroyed returns how many times ptr was passed to a close or free function.
func (f *Fake) Destroyed(ptr uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed[ptr]
}

func (f *Fake) archive(p uintptr) *archiveState {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.archives[p]
	if !ok {
		panic(fmt.Sprintf("vahttest: use of dead archive 0x%x", p))
	}
	return a
}

func (f *Fake) resource(p uintptr) *resourceState {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resources[p]
	if !ok {
		panic(fmt.Sprintf("vahttest: use of dead resource 0x%x", p))
	}
	return r
}

func (f *Fake) object(p uintptr, class string) *objectState {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[p]
	if !ok {
		panic(fmt.Sprintf("vahttest: use of dead %s 0x%x", class, p))
	}
	if o.class != class {
		panic(fmt.Sprintf("vahttest: %s function called on %s 0x%x", class, o.class, p))
	}
	return o
}

func (f *Fake) command(p uintptr) *Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.commands[p]
	if !ok {
		panic(fmt.Sprintf("vahttest: use of unknown command 0x%x", p))
	}
	return c
}

func (f *Fake) newObject(o *objectState) uintptr {
	p := f.Arena().Handle()
	f.mu.Lock()
	f.objects[p] = o
	f.mu.Unlock()
	return p
}

// destroy frees p and any scripts it owns.
func (f *Fake) destroy(p uintptr, class string) {
	o := f.object(p, class)
	f.mu.Lock()
	delete(f.objects, p)
	f.destroyed[p]++
	for _, s := range o.pscripts {
		delete(f.objects, s)
	}
	f.mu.Unlock()
}

func (f *Fake) registerArchive() {
	f.Register("vaht_archive_open", func(path string) uintptr {
		f.mu.Lock()
		f.opens[path]++
		data, ok := f.files[path]
		f.mu.Unlock()
		if !ok {
			return 0
		}
		p := f.Arena().Handle()
		f.mu.Lock()
		f.archives[p] = &archiveState{path: path, data: data, refs: 1}
		f.mu.Unlock()
		return p
	})
	f.Register("vaht_archive_grab", func(p uintptr) uint16 {
		a := f.archive(p)
		f.mu.Lock()
		defer f.mu.Unlock()
		a.refs++
		return uint16(a.refs)
	})
	f.Register("vaht_archive_close", func(p uintptr) uint16 {
		a := f.archive(p)
		f.mu.Lock()
		defer f.mu.Unlock()
		a.refs--
		f.destroyed[p]++
		if a.refs == 0 {
			delete(f.archives, p)
		}
		return uint16(a.refs)
	})
	f.Register("vaht_archive_get_resource_types", func(p uintptr) uint16 {
		return uint16(len(resourceTypes(f.archive(p).data)))
	})
	f.Register("vaht_archive_get_resource_type", func(p uintptr, i uint16) string {
		types := resourceTypes(f.archive(p).data)
		if int(i) >= len(types) {
			return ""
		}
		return types[i]
	})
}

func resourceTypes(a *Archive) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range a.Resources {
		if !seen[r.Type] {
			seen[r.Type] = true
			out = append(out, r.Type)
		}
	}
	return out
}

func (f *Fake) registerResource() {
	f.Register("vaht_resource_open", func(a uintptr, typ string, id uint16) uintptr {
		arch := f.archive(a)
		for _, r := range arch.data.Resources {
			if r.Type == typ && r.ID == id {
				p := f.Arena().Handle()
				f.mu.Lock()
				f.resources[p] = &resourceState{data: r, refs: 1}
				f.mu.Unlock()
				return p
			}
		}
		return 0
	})
	f.Register("vaht_resource_grab", func(p uintptr) uint16 {
		r := f.resource(p)
		f.mu.Lock()
		defer f.mu.Unlock()
		r.refs++
		return uint16(r.refs)
	})
	f.Register("vaht_resource_close", func(p uintptr) uint16 {
		r := f.resource(p)
		f.mu.Lock()
		defer f.mu.Unlock()
		r.refs--
		f.destroyed[p]++
		if r.refs == 0 {
			delete(f.resources, p)
		}
		return uint16(r.refs)
	})
	f.Register("vaht_resource_name", func(p uintptr) string { return f.resource(p).data.Name })
	f.Register("vaht_resource_type", func(p uintptr) string { return f.resource(p).data.Type })
	f.Register("vaht_resource_id", func(p uintptr) uint16 { return f.resource(p).data.ID })
	f.Register("vaht_resource_size", func(p uintptr) uint32 { return uint32(len(f.resource(p).data.Data)) })
	f.Register("vaht_resource_read", func(p uintptr, n uint32, buf *byte) uint32 {
		r := f.resource(p)
		return copyOut(r.data.Data, &r.pos, n, buf)
	})
	f.Register("vaht_resource_seek", func(p uintptr, pos uint32) { f.resource(p).pos = pos })
	f.Register("vaht_resource_tell", func(p uintptr) uint32 { return f.resource(p).pos })
}

// copyOut copies up to n bytes of src from *pos into buf.
func copyOut(src []byte, pos *uint32, n uint32, buf *byte) uint32 {
	if int(*pos) >= len(src) || n == 0 {
		return 0
	}
	dst := unsafe.Slice(buf, n)
	c := copy(dst, src[*pos:])
	*pos += uint32(c)
	return uint32(c)
}

// openVariant registers <class>_open and <class>_close for a resource-backed
// variant. ok selects the resources the variant can be opened from.
func (f *Fake) openVariant(class string, ok func(*Resource) bool, init func(*objectState)) {
	f.Register("vaht_"+class+"_open", func(r uintptr) uintptr {
		res := f.resource(r).data
		if !ok(res) {
			return 0
		}
		o := &objectState{class: class, res: res}
		if init != nil {
			init(o)
		}
		return f.newObject(o)
	})
	f.Register("vaht_"+class+"_close", func(p uintptr) { f.destroy(p, class) })
}

func boolInt[T uint8 | uint16](b bool) T {
	if b {
		return 1
	}
	return 0
}

func (f *Fake) registerMedia() {
	f.openVariant("bmp", func(r *Resource) bool { return r.Bitmap != nil }, func(o *objectState) { o.bmp = o.res.Bitmap })
	bmp := func(p uintptr) *Bitmap { return f.object(p, "bmp").bmp }
	f.Register("vaht_bmp_width", func(p uintptr) uint16 { return bmp(p).Width })
	f.Register("vaht_bmp_height", func(p uintptr) uint16 { return bmp(p).Height })
	f.Register("vaht_bmp_compressed", func(p uintptr) uint8 { return boolInt[uint8](bmp(p).Compressed) })
	f.Register("vaht_bmp_truecolor", func(p uintptr) uint8 { return boolInt[uint8](bmp(p).Truecolor) })
	f.Register("vaht_bmp_data", func(p uintptr) uintptr {
		o := f.object(p, "bmp")
		if o.data == 0 && len(o.bmp.Pixels) > 0 {
			o.data = f.Arena().Data(o.bmp.Pixels)
		}
		return o.data
	})

	f.openVariant("mov", func(r *Resource) bool { return r.Type == vaht.TagMovie }, nil)
	f.Register("vaht_mov_read", func(p uintptr, n uint32, buf *byte) uint32 {
		o := f.object(p, "mov")
		return copyOut(o.res.Data, &o.pos, n, buf)
	})
	f.Register("vaht_mov_seek", func(p uintptr, pos uint32) { f.object(p, "mov").pos = pos })
	f.Register("vaht_mov_tell", func(p uintptr) uint32 { return f.object(p, "mov").pos })

	f.openVariant("wav", func(r *Resource) bool { return r.Wave != nil }, nil)
	wav := func(p uintptr) *Wave { return f.object(p, "wav").res.Wave }
	f.Register("vaht_wav_samplerate", func(p uintptr) uint16 { return wav(p).SampleRate })
	f.Register("vaht_wav_samplecount", func(p uintptr) uint32 { return wav(p).SampleCount })
	f.Register("vaht_wav_samplesize", func(p uintptr) uint8 { return wav(p).SampleSize })
	f.Register("vaht_wav_channels", func(p uintptr) uint8 { return wav(p).Channels })
	f.Register("vaht_wav_encoding", func(p uintptr) int32 { return wav(p).Encoding })
	f.Register("vaht_wav_read", func(p uintptr, n uint32, buf *byte) uint32 {
		o := f.object(p, "wav")
		return copyOut(o.res.Wave.Samples, &o.pos, n, buf)
	})
	f.Register("vaht_wav_reset", func(p uintptr) { f.object(p, "wav").pos = 0 })
}

func (f *Fake) registerTables() {
	f.openVariant("name", func(r *Resource) bool { return r.Type == vaht.TagNames }, nil)
	f.Register("vaht_name_count", func(p uintptr) uint16 { return uint16(len(f.object(p, "name").res.Names)) })
	f.Register("vaht_name_get", func(p uintptr, i uint16) uintptr {
		names := f.object(p, "name").res.Names
		if int(i) >= len(names) {
			return 0
		}
		return f.Arena().String(names[i])
	})

	f.openVariant("rmap", func(r *Resource) bool { return r.Type == vaht.TagResourceMap }, nil)
	f.Register("vaht_rmap_count", func(p uintptr) uint16 { return uint16(len(f.object(p, "rmap").res.Codes)) })
	f.Register("vaht_rmap_get", func(p uintptr, i uint16) uint32 {
		codes := f.object(p, "rmap").res.Codes
		if int(i) >= len(codes) {
			return 0
		}
		return codes[i]
	})

	f.openVariant("plst", func(r *Resource) bool { return r.Type == vaht.TagPictureList },
		func(o *objectState) { o.pics = o.res.Pictures })
	pic := func(p uintptr, i uint16) (Picture, bool) {
		pics := f.object(p, "plst").pics
		if i < 1 || int(i) > len(pics) {
			return Picture{}, false
		}
		return pics[i-1], true
	}
	f.Register("vaht_plst_records", func(p uintptr) uint16 { return uint16(len(f.object(p, "plst").pics)) })
	f.Register("vaht_plst_bitmap_id", func(p uintptr, i uint16) int32 {
		r, ok := pic(p, i)
		if !ok {
			return -1
		}
		return r.BitmapID
	})
	f.Register("vaht_plst_bitmap_open", func(p uintptr, i uint16) uintptr {
		r, ok := pic(p, i)
		if !ok || r.Bitmap == nil {
			return 0
		}
		return f.newObject(&objectState{class: "bmp", bmp: r.Bitmap})
	})
	f.Register("vaht_plst_rect", func(p uintptr, i uint16, left, right, top, bottom *uint16) {
		r, _ := pic(p, i)
		*left, *right, *top, *bottom = r.Rect[0], r.Rect[1], r.Rect[2], r.Rect[3]
	})

	f.openVariant("blst", func(r *Resource) bool { return r.Type == vaht.TagButtonList }, nil)
	button := func(p uintptr, i uint16) (Button, bool) {
		bs := f.object(p, "blst").res.Buttons
		if i < 1 || int(i) > len(bs) {
			return Button{}, false
		}
		return bs[i-1], true
	}
	f.Register("vaht_blst_records", func(p uintptr) uint16 { return uint16(len(f.object(p, "blst").res.Buttons)) })
	f.Register("vaht_blst_enabled", func(p uintptr, i uint16) uint16 {
		b, _ := button(p, i)
		return boolInt[uint16](b.Enabled)
	})
	f.Register("vaht_blst_hotspot_id", func(p uintptr, i uint16) int32 {
		b, ok := button(p, i)
		if !ok {
			return -1
		}
		return b.HotspotID
	})

	f.openVariant("slst", func(r *Resource) bool { return r.Type == vaht.TagSoundList }, nil)
	sound := func(p uintptr, i uint16) Sound {
		ss := f.object(p, "slst").res.Sounds
		if i < 1 || int(i) > len(ss) {
			return Sound{}
		}
		return ss[i-1]
	}
	at := func(v []uint16, j uint16) uint16 {
		if int(j) >= len(v) {
			return 0
		}
		return v[j]
	}
	f.Register("vaht_slst_records", func(p uintptr) uint16 { return uint16(len(f.object(p, "slst").res.Sounds)) })
	f.Register("vaht_slst_count", func(p uintptr, i uint16) uint16 { return uint16(len(sound(p, i).IDs)) })
	f.Register("vaht_slst_sound_id", func(p uintptr, i, j uint16) uint16 { return at(sound(p, i).IDs, j) })
	f.Register("vaht_slst_volume", func(p uintptr, i, j uint16) uint16 { return at(sound(p, i).Volumes, j) })
	f.Register("vaht_slst_balance", func(p uintptr, i, j uint16) uint16 { return at(sound(p, i).Balances, j) })
	f.Register("vaht_slst_fade", func(p uintptr, i uint16) uint16 { return sound(p, i).Fade })
	f.Register("vaht_slst_loop", func(p uintptr, i uint16) uint16 { return boolInt[uint16](sound(p, i).Loop) })
	f.Register("vaht_slst_global_volume", func(p uintptr, i uint16) uint16 { return sound(p, i).GlobalVolume })
}

func (f *Fake) registerScripts() {
	f.openVariant("card", func(r *Resource) bool { return r.Card != nil }, nil)
	card := func(p uintptr) *objectState { return f.object(p, "card") }
	f.Register("vaht_card_name_record", func(p uintptr) int16 { return card(p).res.Card.NameRecord })
	f.Register("vaht_card_name", func(p uintptr) string { return card(p).res.Card.Name })
	f.Register("vaht_card_zip_mode", func(p uintptr) uint16 { return boolInt[uint16](card(p).res.Card.ZipMode) })
	f.Register("vaht_card_script", func(p uintptr) uintptr {
		o := card(p)
		if o.pscripts == nil {
			o.pscripts = make(map[int]uintptr)
		}
		if s, ok := o.pscripts[0]; ok {
			return s
		}
		s := f.newObject(&objectState{class: "script", script: o.res.Card.Script, owned: true})
		o.pscripts[0] = s
		return s
	})
	f.Register("vaht_card_plst_open", func(p uintptr) uintptr {
		return f.newObject(&objectState{class: "plst", pics: card(p).res.Card.Pictures})
	})

	f.openVariant("hspt", func(r *Resource) bool { return r.Type == vaht.TagHotspots }, nil)
	hotspot := func(p uintptr, i uint16) (Hotspot, bool) {
		hs := f.object(p, "hspt").res.Hotspots
		if i < 1 || int(i) > len(hs) {
			return Hotspot{}, false
		}
		return hs[i-1], true
	}
	f.Register("vaht_hspt_records", func(p uintptr) uint16 { return uint16(len(f.object(p, "hspt").res.Hotspots)) })
	f.Register("vaht_hspt_blst_id", func(p uintptr, i uint16) uint16 { h, _ := hotspot(p, i); return h.BlstID })
	f.Register("vaht_hspt_name_record", func(p uintptr, i uint16) int16 { h, _ := hotspot(p, i); return h.NameRecord })
	f.Register("vaht_hspt_name", func(p uintptr, i uint16) string { h, _ := hotspot(p, i); return h.Name })
	f.Register("vaht_hspt_cursor", func(p uintptr, i uint16) uint16 { h, _ := hotspot(p, i); return h.Cursor })
	f.Register("vaht_hspt_zip_mode", func(p uintptr, i uint16) uint16 {
		h, _ := hotspot(p, i)
		return boolInt[uint16](h.ZipMode)
	})
	f.Register("vaht_hspt_rect", func(p uintptr, i uint16, left, right, top, bottom *int16) {
		h, _ := hotspot(p, i)
		*left, *right, *top, *bottom = h.Rect[0], h.Rect[1], h.Rect[2], h.Rect[3]
	})
	f.Register("vaht_hspt_script", func(p uintptr, i uint16) uintptr {
		h, ok := hotspot(p, i)
		if !ok {
			return 0
		}
		o := f.object(p, "hspt")
		if o.pscripts == nil {
			o.pscripts = make(map[int]uintptr)
		}
		if s, ok := o.pscripts[int(i)]; ok {
			return s
		}
		s := f.newObject(&objectState{class: "script", script: h.Script, owned: true})
		o.pscripts[int(i)] = s
		return s
	})

	f.Register("vaht_script_read", func(r uintptr) uintptr {
		res := f.resource(r).data
		if res.Script == nil {
			return 0
		}
		return f.newObject(&objectState{class: "script", script: res.Script})
	})
	f.Register("vaht_script_free", func(p uintptr) {
		if f.object(p, "script").owned {
			panic(fmt.Sprintf("vahttest: free of owned script 0x%x", p))
		}
		f.destroy(p, "script")
	})
	f.Register("vaht_script_handler", func(p uintptr, event int32) uintptr {
		o := f.object(p, "script")
		if o.handlers == nil {
			o.handlers = make(map[int]uintptr)
		}
		if base, ok := o.handlers[int(event)]; ok {
			return base
		}
		cmds, ok := o.script[int(event)]
		if !ok {
			return 0
		}
		base := f.commandArray(cmds)
		o.handlers[int(event)] = base
		return base
	})

	f.Register("vaht_command_branch", func(c uintptr) uint8 { return boolInt[uint8](f.command(c).Branch) })
	f.Register("vaht_command_code", func(c uintptr) uint16 { return f.command(c).Code })
	f.Register("vaht_command_argument_count", func(c uintptr) uint16 { return uint16(len(f.command(c).Args)) })
	f.Register("vaht_command_argument", func(c uintptr, i uint16) uint16 {
		args := f.command(c).Args
		if int(i) >= len(args) {
			return 0
		}
		return args[i]
	})
	f.Register("vaht_command_branch_variable", func(c uintptr) uint16 { return f.command(c).Variable })
	f.Register("vaht_command_branch_count", func(c uintptr) uint16 { return uint16(len(f.command(c).Values)) })
	f.Register("vaht_command_branch_value", func(c uintptr, i uint16) uint16 {
		vals := f.command(c).Values
		if int(i) >= len(vals) {
			return 0
		}
		return vals[i]
	})
	f.Register("vaht_command_branch_body", func(c uintptr, i uint16) uintptr {
		bodies := f.command(c).Bodies
		if int(i) >= len(bodies) {
			return 0
		}
		return f.commandArray(bodies[i])
	})
}

// commandArray stores cmds as a null-terminated pointer array.
func (f *Fake) commandArray(cmds []Command) uintptr {
	ptrs := make([]uintptr, len(cmds))
	for i := range cmds {
		p := f.Arena().Handle()
		f.mu.Lock()
		f.commands[p] = &cmds[i]
		f.mu.Unlock()
		ptrs[i] = p
	}
	return f.Arena().Pointers(ptrs...)
}
