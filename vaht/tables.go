package vaht

import "github.com/wippyai/moiety/ffi"

// Binding tables for libvaht. One instance of each is created per Lib so two
// loaded libraries never share function variables.

type archiveFns struct {
	class            *ffi.Class
	open             func(path string) uintptr
	close            func(a uintptr) uint16
	grab             func(a uintptr) uint16
	getResourceTypes func(a uintptr) uint16
	getResourceType  func(a uintptr, i uint16) string
}

func (f *archiveFns) table() *ffi.Class {
	f.class = &ffi.Class{
		Name: "archive",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("grab", &f.grab),
			ffi.Fn("get_resource_types", &f.getResourceTypes),
			ffi.Fn("get_resource_type", &f.getResourceType),
		},
	}
	return f.class
}

type resourceFns struct {
	class *ffi.Class
	open  func(a uintptr, typ string, id uint16) uintptr
	close func(r uintptr) uint16
	grab  func(r uintptr) uint16
	name  func(r uintptr) string
	typ   func(r uintptr) string
	read  func(r uintptr, n uint32, buf *byte) uint32
	seek  func(r uintptr, pos uint32)
	tell  func(r uintptr) uint32
	id    *ffi.Property[uint16, uint16]
	size  *ffi.Property[uint32, uint32]
}

func (f *resourceFns) table() *ffi.Class {
	f.id = ffi.Identity[uint16]("id").ReadOnly("id")
	f.size = ffi.Identity[uint32]("size").ReadOnly("size")
	f.class = &ffi.Class{
		Name: "resource",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("grab", &f.grab),
			ffi.Fn("name", &f.name),
			ffi.Fn("type", &f.typ),
			ffi.Fn("read", &f.read),
			ffi.Fn("seek", &f.seek),
			ffi.Fn("tell", &f.tell),
		},
		Properties: []ffi.PropertyBinder{f.id, f.size},
	}
	return f.class
}

type bmpFns struct {
	class      *ffi.Class
	open       func(r uintptr) uintptr
	close      func(b uintptr)
	data       func(b uintptr) uintptr
	width      *ffi.Property[uint16, uint16]
	height     *ffi.Property[uint16, uint16]
	compressed *ffi.Property[uint8, bool]
	truecolor  *ffi.Property[uint8, bool]
}

func (f *bmpFns) table() *ffi.Class {
	f.width = ffi.Identity[uint16]("width").ReadOnly("width")
	f.height = ffi.Identity[uint16]("height").ReadOnly("height")
	f.compressed = ffi.Bool[uint8]("compressed").ReadOnly("compressed")
	f.truecolor = ffi.Bool[uint8]("truecolor").ReadOnly("truecolor")
	f.class = &ffi.Class{
		Name: "bmp",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("data", &f.data),
		},
		Properties: []ffi.PropertyBinder{f.width, f.height, f.compressed, f.truecolor},
	}
	return f.class
}

type movFns struct {
	class *ffi.Class
	open  func(r uintptr) uintptr
	close func(m uintptr)
	read  func(m uintptr, n uint32, buf *byte) uint32
	seek  func(m uintptr, pos uint32)
	tell  func(m uintptr) uint32
}

func (f *movFns) table() *ffi.Class {
	f.class = &ffi.Class{
		Name: "mov",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("read", &f.read),
			ffi.Fn("seek", &f.seek),
			ffi.Fn("tell", &f.tell),
		},
	}
	return f.class
}

type wavFns struct {
	class       *ffi.Class
	open        func(r uintptr) uintptr
	close       func(w uintptr)
	read        func(w uintptr, n uint32, buf *byte) uint32
	reset       func(w uintptr)
	samplerate  *ffi.Property[uint16, uint16]
	samplecount *ffi.Property[uint32, uint32]
	samplesize  *ffi.Property[uint8, uint8]
	channels    *ffi.Property[uint8, uint8]
	encoding    *ffi.Property[int32, Encoding]
}

func (f *wavFns) table() *ffi.Class {
	f.samplerate = ffi.Identity[uint16]("samplerate").ReadOnly("samplerate")
	f.samplecount = ffi.Identity[uint32]("samplecount").ReadOnly("samplecount")
	f.samplesize = ffi.Identity[uint8]("samplesize").ReadOnly("samplesize")
	f.channels = ffi.Identity[uint8]("channels").ReadOnly("channels")
	f.encoding = ffi.NewProperty("encoding",
		func(n int32) Encoding { return Encoding(n) },
		func(e Encoding) int32 { return int32(e) }).ReadOnly("encoding")
	f.class = &ffi.Class{
		Name: "wav",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("read", &f.read),
			ffi.Fn("reset", &f.reset),
		},
		Properties: []ffi.PropertyBinder{f.samplerate, f.samplecount, f.samplesize, f.channels, f.encoding},
	}
	return f.class
}

type nameFns struct {
	class *ffi.Class
	open  func(r uintptr) uintptr
	close func(n uintptr)
	get   func(n uintptr, i uint16) uintptr // caller frees
	count *ffi.Property[uint16, uint16]
}

func (f *nameFns) table() *ffi.Class {
	f.count = ffi.Identity[uint16]("count").ReadOnly("count")
	f.class = &ffi.Class{
		Name: "name",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("get", &f.get),
		},
		Properties: []ffi.PropertyBinder{f.count},
	}
	return f.class
}

type cardFns struct {
	class      *ffi.Class
	open       func(r uintptr) uintptr
	close      func(c uintptr)
	name       func(c uintptr) string
	script     func(c uintptr) uintptr
	plstOpen   func(c uintptr) uintptr
	nameRecord *ffi.Property[int16, int16]
	zipMode    *ffi.Property[uint16, bool]
}

func (f *cardFns) table() *ffi.Class {
	f.nameRecord = ffi.Identity[int16]("name_record").ReadOnly("name_record")
	f.zipMode = ffi.Bool[uint16]("zip_mode").ReadOnly("zip_mode")
	f.class = &ffi.Class{
		Name: "card",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("name", &f.name),
			ffi.Fn("script", &f.script),
			ffi.Fn("plst_open", &f.plstOpen),
		},
		Properties: []ffi.PropertyBinder{f.nameRecord, f.zipMode},
	}
	return f.class
}

type plstFns struct {
	class      *ffi.Class
	open       func(r uintptr) uintptr
	close      func(p uintptr)
	bitmapID   func(p uintptr, i uint16) int32
	bitmapOpen func(p uintptr, i uint16) uintptr
	rect       func(p uintptr, i uint16, left, right, top, bottom *uint16)
	records    *ffi.Property[uint16, uint16]
}

func (f *plstFns) table() *ffi.Class {
	f.records = ffi.Identity[uint16]("records").ReadOnly("records")
	f.class = &ffi.Class{
		Name: "plst",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("bitmap_id", &f.bitmapID),
			ffi.Fn("bitmap_open", &f.bitmapOpen),
			ffi.Fn("rect", &f.rect),
		},
		Properties: []ffi.PropertyBinder{f.records},
	}
	return f.class
}

type scriptFns struct {
	class   *ffi.Class
	read    func(r uintptr) uintptr
	free    func(s uintptr)
	handler func(s uintptr, event int32) uintptr
}

func (f *scriptFns) table() *ffi.Class {
	f.class = &ffi.Class{
		Name: "script",
		Methods: []ffi.Method{
			ffi.Fn("read", &f.read),
			ffi.Fn("free", &f.free),
			ffi.Fn("handler", &f.handler),
		},
	}
	return f.class
}

type commandFns struct {
	class          *ffi.Class
	argumentCount  func(c uintptr) uint16
	argument       func(c uintptr, i uint16) uint16
	branchCount    func(c uintptr) uint16
	branchValue    func(c uintptr, i uint16) uint16
	branchBody     func(c uintptr, i uint16) uintptr
	branch         *ffi.Property[uint8, bool]
	code           *ffi.Property[uint16, uint16]
	branchVariable *ffi.Property[uint16, uint16]
}

func (f *commandFns) table() *ffi.Class {
	f.branch = ffi.Bool[uint8]("branch").ReadOnly("branch")
	f.code = ffi.Identity[uint16]("code").ReadOnly("code")
	f.branchVariable = ffi.Identity[uint16]("branch_variable").ReadOnly("branch_variable")
	f.class = &ffi.Class{
		Name: "command",
		Methods: []ffi.Method{
			ffi.Fn("argument_count", &f.argumentCount),
			ffi.Fn("argument", &f.argument),
			ffi.Fn("branch_count", &f.branchCount),
			ffi.Fn("branch_value", &f.branchValue),
			ffi.Fn("branch_body", &f.branchBody),
		},
		Properties: []ffi.PropertyBinder{f.branch, f.code, f.branchVariable},
	}
	return f.class
}

type blstFns struct {
	class     *ffi.Class
	open      func(r uintptr) uintptr
	close     func(b uintptr)
	enabled   func(b uintptr, i uint16) uint16
	hotspotID func(b uintptr, i uint16) int32
	records   *ffi.Property[uint16, uint16]
}

func (f *blstFns) table() *ffi.Class {
	f.records = ffi.Identity[uint16]("records").ReadOnly("records")
	f.class = &ffi.Class{
		Name: "blst",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("enabled", &f.enabled),
			ffi.Fn("hotspot_id", &f.hotspotID),
		},
		Properties: []ffi.PropertyBinder{f.records},
	}
	return f.class
}

type hsptFns struct {
	class      *ffi.Class
	open       func(r uintptr) uintptr
	close      func(h uintptr)
	blstID     func(h uintptr, i uint16) uint16
	nameRecord func(h uintptr, i uint16) int16
	name       func(h uintptr, i uint16) string
	rect       func(h uintptr, i uint16, left, right, top, bottom *int16)
	cursor     func(h uintptr, i uint16) uint16
	zipMode    func(h uintptr, i uint16) uint16
	script     func(h uintptr, i uint16) uintptr
	records    *ffi.Property[uint16, uint16]
}

func (f *hsptFns) table() *ffi.Class {
	f.records = ffi.Identity[uint16]("records").ReadOnly("records")
	f.class = &ffi.Class{
		Name: "hspt",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("blst_id", &f.blstID),
			ffi.Fn("name_record", &f.nameRecord),
			ffi.Fn("name", &f.name),
			ffi.Fn("rect", &f.rect),
			ffi.Fn("cursor", &f.cursor),
			ffi.Fn("zip_mode", &f.zipMode),
			ffi.Fn("script", &f.script),
		},
		Properties: []ffi.PropertyBinder{f.records},
	}
	return f.class
}

type rmapFns struct {
	class *ffi.Class
	open  func(r uintptr) uintptr
	close func(m uintptr)
	get   func(m uintptr, i uint16) uint32
	count *ffi.Property[uint16, uint16]
}

func (f *rmapFns) table() *ffi.Class {
	f.count = ffi.Identity[uint16]("count").ReadOnly("count")
	f.class = &ffi.Class{
		Name: "rmap",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("get", &f.get),
		},
		Properties: []ffi.PropertyBinder{f.count},
	}
	return f.class
}

type slstFns struct {
	class        *ffi.Class
	open         func(r uintptr) uintptr
	close        func(s uintptr)
	count        func(s uintptr, i uint16) uint16
	soundID      func(s uintptr, i, j uint16) uint16
	fade         func(s uintptr, i uint16) uint16
	loop         func(s uintptr, i uint16) uint16
	globalVolume func(s uintptr, i uint16) uint16
	volume       func(s uintptr, i, j uint16) uint16
	balance      func(s uintptr, i, j uint16) uint16
	records      *ffi.Property[uint16, uint16]
}

func (f *slstFns) table() *ffi.Class {
	f.records = ffi.Identity[uint16]("records").ReadOnly("records")
	f.class = &ffi.Class{
		Name: "slst",
		Methods: []ffi.Method{
			ffi.Fn("open", &f.open),
			ffi.Fn("close", &f.close),
			ffi.Fn("count", &f.count),
			ffi.Fn("sound_id", &f.soundID),
			ffi.Fn("fade", &f.fade),
			ffi.Fn("loop", &f.loop),
			ffi.Fn("global_volume", &f.globalVolume),
			ffi.Fn("volume", &f.volume),
			ffi.Fn("balance", &f.balance),
		},
		Properties: []ffi.PropertyBinder{f.records},
	}
	return f.class
}
