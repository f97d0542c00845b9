package ffi

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
)

var (
	allocatorNames = []string{"malloc", "alloc"}
	freeNames      = []string{"free", "dealloc"}
)

// WasmLibrary is a wasm32 build of a C library running in wazero. Pointers
// exchanged with it are offsets into the guest's linear memory.
type WasmLibrary struct {
	ctx     context.Context
	prefix  string
	runtime wazero.Runtime
	mod     api.Module
	malloc  api.Function
	free    api.Function
	mem     wasmMemory

	// guest code is single threaded
	mu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// WasmConfig tunes OpenWasm.
type WasmConfig struct {
	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the default.
	MemoryLimitPages uint32

	// Mounts maps guest paths to host directories, read-only. A nil map
	// mounts the host root at "/" so archive paths work unchanged.
	Mounts map[string]string
}

// OpenWasm instantiates wasmBytes as a WASI reactor and binds symbols with
// the given prefix. The module must export malloc, free and its memory.
func OpenWasm(ctx context.Context, wasmBytes []byte, prefix string) (*WasmLibrary, error) {
	return OpenWasmWithConfig(ctx, wasmBytes, prefix, nil)
}

// OpenWasmWithConfig is OpenWasm with explicit configuration.
func OpenWasmWithConfig(ctx context.Context, wasmBytes []byte, prefix string, cfg *WasmConfig) (*WasmLibrary, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	mounts := map[string]string{"/": "/"}
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.Mounts != nil {
			mounts = cfg.Mounts
		}
	}

	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, errors.Load("instantiate wasi", err)
	}

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Load("compile module", err)
	}

	fsCfg := wazero.NewFSConfig()
	for guest, host := range mounts {
		fsCfg = fsCfg.WithReadOnlyDirMount(host, guest)
	}
	modCfg := wazero.NewModuleConfig().
		WithName(prefix).
		WithFSConfig(fsCfg).
		WithStartFunctions("_initialize")

	mod, err := r.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Load("instantiate module", err)
	}

	l := &WasmLibrary{
		ctx:     ctx,
		prefix:  prefix,
		runtime: r,
		mod:     mod,
		malloc:  findExport(mod, allocatorNames),
		free:    findExport(mod, freeNames),
		mem:     wasmMemory{mem: mod.Memory()},
	}
	switch {
	case mod.Memory() == nil:
		_ = r.Close(ctx)
		return nil, errors.Load("module exports no memory", nil)
	case l.malloc == nil || l.free == nil:
		_ = r.Close(ctx)
		return nil, errors.Load("module exports no malloc/free pair", nil)
	}

	Logger().Info("opened wasm library",
		zap.String("prefix", prefix),
		zap.Uint32("memory_bytes", mod.Memory().Size()))
	return l, nil
}

func findExport(mod api.Module, names []string) api.Function {
	for _, name := range names {
		if fn := mod.ExportedFunction(name); fn != nil {
			return fn
		}
	}
	return nil
}

func (l *WasmLibrary) Prefix() string { return l.prefix }

func (l *WasmLibrary) Memory() Memory { return l.mem }

func (l *WasmLibrary) Free(addr uintptr) {
	if addr == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.guestFree(uint32(addr))
}

// Close releases the module and its runtime. It is safe to call more than once.
func (l *WasmLibrary) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if err := l.runtime.Close(l.ctx); err != nil {
			l.closeErr = errors.Load("close wasm runtime", err)
		}
	})
	return l.closeErr
}

// Bind builds a Go function that marshals its arguments into guest values,
// calls the export and converts the result back.
func (l *WasmLibrary) Bind(fptr any, symbol string) error {
	ft, err := funcType(fptr, symbol)
	if err != nil {
		return err
	}
	fn := l.mod.ExportedFunction(symbol)
	if fn == nil {
		return errors.New(errors.PhaseBind, errors.KindMissingSymbol).
			Path(symbol).
			Cause(ErrSymbolNotFound).
			Build()
	}
	if err := matchDefinition(fn.Definition(), ft, symbol); err != nil {
		return err
	}

	call := func(args []reflect.Value) []reflect.Value {
		return l.call(fn, ft, symbol, args)
	}
	reflect.ValueOf(fptr).Elem().Set(reflect.MakeFunc(ft, call))
	return nil
}

func matchDefinition(def api.FunctionDefinition, ft reflect.Type, symbol string) error {
	params := def.ParamTypes()
	results := def.ResultTypes()
	mismatch := func(detail string, args ...any) error {
		return errors.New(errors.PhaseBind, errors.KindTypeMismatch).
			Path(symbol).
			GoType(ft.String()).
			NativeType(fmt.Sprintf("%v -> %v", valueTypeNames(params), valueTypeNames(results))).
			Detail(detail, args...).
			Build()
	}
	if len(params) != ft.NumIn() {
		return mismatch("export takes %d parameters, Go signature has %d", len(params), ft.NumIn())
	}
	for i, p := range params {
		if want := wasmValueType(ft.In(i)); p != want {
			return mismatch("parameter %d is %s, Go type %s needs %s",
				i, api.ValueTypeName(p), ft.In(i), api.ValueTypeName(want))
		}
	}
	if len(results) != ft.NumOut() {
		return mismatch("export returns %d values, Go signature has %d", len(results), ft.NumOut())
	}
	if len(results) == 1 {
		if want := wasmValueType(ft.Out(0)); results[0] != want {
			return mismatch("result is %s, Go type %s needs %s",
				api.ValueTypeName(results[0]), ft.Out(0), api.ValueTypeName(want))
		}
	}
	return nil
}

func valueTypeNames(ts []api.ValueType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = api.ValueTypeName(t)
	}
	return out
}

// wasmValueType maps a Go parameter type onto the wasm32 calling convention.
func wasmValueType(t reflect.Type) api.ValueType {
	switch t.Kind() {
	case reflect.Int64, reflect.Uint64:
		return api.ValueTypeI64
	default:
		return api.ValueTypeI32
	}
}

type writeback struct {
	addr uint32
	dst  reflect.Value
	buf  []byte
}

func (l *WasmLibrary) call(fn api.Function, ft reflect.Type, symbol string, args []reflect.Value) []reflect.Value {
	l.mu.Lock()
	defer l.mu.Unlock()

	var scratch []uint32
	defer func() {
		for _, addr := range scratch {
			l.guestFree(addr)
		}
	}()
	alloc := func(n int) uint32 {
		addr := l.guestAlloc(symbol, n)
		scratch = append(scratch, addr)
		return addr
	}

	stack := make([]uint64, len(args))
	var backs []writeback
	for i, a := range args {
		switch a.Kind() {
		case reflect.String:
			s := a.String()
			addr := alloc(len(s) + 1)
			l.mem.write(addr, append([]byte(s), 0))
			stack[i] = uint64(addr)
		case reflect.Pointer:
			if a.IsNil() {
				continue
			}
			if a.Type().Elem().Kind() == reflect.Uint8 {
				// a byte buffer sized by the closest preceding length argument
				n := precedingLength(args[:i])
				buf := unsafe.Slice((*byte)(a.UnsafePointer()), n)
				addr := alloc(n)
				l.mem.write(addr, buf)
				backs = append(backs, writeback{addr: addr, buf: buf})
				stack[i] = uint64(addr)
				continue
			}
			elem := a.Elem()
			size := scalarSize(elem.Kind())
			addr := alloc(size)
			l.mem.writeScalar(addr, elem)
			backs = append(backs, writeback{addr: addr, dst: elem})
			stack[i] = uint64(addr)
		default:
			stack[i] = encodeScalar(a)
		}
	}

	results, err := fn.Call(l.ctx, stack...)
	if err != nil {
		panic(errors.Wrap(errors.PhaseAccess, errors.KindInvalidData, err, "wasm call "+symbol+" trapped"))
	}

	for _, b := range backs {
		if b.buf != nil {
			copy(b.buf, l.mem.Bytes(uintptr(b.addr), len(b.buf)))
			continue
		}
		l.mem.readScalar(b.addr, b.dst)
	}

	if ft.NumOut() == 0 {
		return nil
	}
	out := reflect.New(ft.Out(0)).Elem()
	if out.Kind() == reflect.String {
		out.SetString(l.mem.CString(uintptr(uint32(results[0]))))
	} else {
		decodeScalar(results[0], out)
	}
	return []reflect.Value{out}
}

func (l *WasmLibrary) guestAlloc(symbol string, n int) uint32 {
	if n == 0 {
		n = 1
	}
	res, err := l.malloc.Call(l.ctx, uint64(n))
	if err != nil || len(res) == 0 || res[0] == 0 {
		panic(errors.New(errors.PhaseAccess, errors.KindInvalidData).
			Path(symbol).
			Detail("guest malloc(%d) failed", n).
			Cause(err).
			Build())
	}
	return uint32(res[0])
}

func (l *WasmLibrary) guestFree(addr uint32) {
	if _, err := l.free.Call(l.ctx, uint64(addr)); err != nil {
		Logger().Warn("guest free failed", zap.Uint32("addr", addr), zap.Error(err))
	}
}

func precedingLength(args []reflect.Value) int {
	for i := len(args) - 1; i >= 0; i-- {
		switch args[i].Kind() {
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int(args[i].Uint())
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n := args[i].Int(); n > 0 {
				return int(n)
			}
			return 0
		}
	}
	return 0
}

func scalarSize(k reflect.Kind) int {
	switch k {
	case reflect.Uint8, reflect.Int8:
		return 1
	case reflect.Uint16, reflect.Int16:
		return 2
	case reflect.Uint64, reflect.Int64:
		return 8
	default:
		return 4
	}
}

func encodeScalar(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return api.EncodeI32(int32(v.Int()))
	case reflect.Int64:
		return api.EncodeI64(v.Int())
	case reflect.Uint64:
		return v.Uint()
	default:
		return uint64(uint32(v.Uint()))
	}
}

func decodeScalar(raw uint64, dst reflect.Value) {
	switch dst.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		dst.SetInt(int64(api.DecodeI32(raw)))
	case reflect.Int64:
		dst.SetInt(int64(raw))
	case reflect.Uint64:
		dst.SetUint(raw)
	default:
		dst.SetUint(uint64(uint32(raw)))
	}
}

// wasmMemory reads guest linear memory. Addresses are 32-bit offsets.
type wasmMemory struct {
	mem api.Memory
}

func (m wasmMemory) Pointer(base uintptr, index int) uintptr {
	v, ok := m.mem.ReadUint32Le(uint32(base) + uint32(index)*4)
	if !ok {
		panic(outOfRange(base, index*4))
	}
	return uintptr(v)
}

func (m wasmMemory) CString(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	var b []byte
	for off := uint32(addr); ; off++ {
		c, ok := m.mem.ReadByte(off)
		if !ok {
			panic(outOfRange(addr, len(b)))
		}
		if c == 0 {
			return string(b)
		}
		b = append(b, c)
	}
}

func (m wasmMemory) Bytes(addr uintptr, n int) []byte {
	if addr == 0 || n <= 0 {
		return nil
	}
	view, ok := m.mem.Read(uint32(addr), uint32(n))
	if !ok {
		panic(outOfRange(addr, n))
	}
	out := make([]byte, n)
	copy(out, view)
	return out
}

func (m wasmMemory) write(addr uint32, b []byte) {
	if len(b) > 0 && !m.mem.Write(addr, b) {
		panic(outOfRange(uintptr(addr), len(b)))
	}
}

func (m wasmMemory) writeScalar(addr uint32, v reflect.Value) {
	raw := encodeScalar(v)
	var ok bool
	switch scalarSize(v.Kind()) {
	case 1:
		ok = m.mem.WriteByte(addr, byte(raw))
	case 2:
		ok = m.mem.WriteUint16Le(addr, uint16(raw))
	case 8:
		ok = m.mem.WriteUint64Le(addr, raw)
	default:
		ok = m.mem.WriteUint32Le(addr, uint32(raw))
	}
	if !ok {
		panic(outOfRange(uintptr(addr), scalarSize(v.Kind())))
	}
}

func (m wasmMemory) readScalar(addr uint32, dst reflect.Value) {
	var raw uint64
	var ok bool
	switch scalarSize(dst.Kind()) {
	case 1:
		var b byte
		b, ok = m.mem.ReadByte(addr)
		raw = uint64(int64(int8(b)))
		if !isSigned(dst.Kind()) {
			raw = uint64(b)
		}
	case 2:
		var h uint16
		h, ok = m.mem.ReadUint16Le(addr)
		raw = uint64(int64(int16(h)))
		if !isSigned(dst.Kind()) {
			raw = uint64(h)
		}
	case 8:
		raw, ok = m.mem.ReadUint64Le(addr)
	default:
		var w uint32
		w, ok = m.mem.ReadUint32Le(addr)
		raw = uint64(w)
	}
	if !ok {
		panic(outOfRange(uintptr(addr), scalarSize(dst.Kind())))
	}
	decodeScalar(raw, dst)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func outOfRange(addr uintptr, n int) error {
	return errors.New(errors.PhaseAccess, errors.KindOutOfBounds).
		Detail("guest memory read of %d bytes at 0x%x is out of range", n, addr).
		Build()
}
