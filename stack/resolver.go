package stack

import (
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/vaht"
)

// Config configures a Resolver.
type Config struct {
	// Dir is the directory holding the archive files.
	Dir string

	// Stacks maps a stack name to its archive files in lookup order.
	// Nil selects the built-in Riven map.
	Stacks map[string][]string
}

// Resolver finds resources by stack name across a stack's archive files and
// caches every archive it opens for the life of the process.
//
// Resolver is safe for concurrent use. Wrappers it returns are not; callers
// that share an archive between goroutines go through Use, which holds the
// archive's lock while they work.
type Resolver struct {
	lib    *vaht.Lib
	dir    string
	stacks map[string][]string

	mu    sync.Mutex
	cache map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	arch *vaht.Archive
}

// New creates a resolver over the Riven stack map rooted at dir.
func New(lib *vaht.Lib, dir string) *Resolver {
	return NewWithConfig(lib, Config{Dir: dir})
}

// NewWithConfig creates a resolver with explicit configuration.
func NewWithConfig(lib *vaht.Lib, cfg Config) *Resolver {
	stacks := cfg.Stacks
	if stacks == nil {
		stacks = riven
	}
	return &Resolver{
		lib:    lib,
		dir:    cfg.Dir,
		stacks: clone(stacks),
		cache:  make(map[string]*entry),
	}
}

// Stacks returns the configured stack names, sorted.
func (r *Resolver) Stacks() []string { return sortedKeys(r.stacks) }

// Files returns the archive paths of stack in lookup order.
func (r *Resolver) Files(stack string) ([]string, error) {
	files, ok := r.stacks[stack]
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve, "stack", stack)
	}
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = r.path(f)
	}
	return out, nil
}

func (r *Resolver) path(file string) string {
	if filepath.IsAbs(file) || r.dir == "" {
		return file
	}
	return filepath.Join(r.dir, file)
}

// archive returns the cached archive for path, opening it on first use.
// Failed opens are not cached.
func (r *Resolver) archive(path string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.cache[path]; ok {
		return e, nil
	}
	a, err := r.lib.OpenArchive(path)
	if err != nil {
		return nil, err
	}
	e := &entry{arch: a}
	r.cache[path] = e
	Logger().Debug("cached archive", zap.String("path", path))
	return e, nil
}

// Archive returns the cached archive at path, opening it if needed. The
// archive belongs to the resolver and must not be closed by the caller.
func (r *Resolver) Archive(path string) (*vaht.Archive, error) {
	e, err := r.archive(path)
	if err != nil {
		return nil, err
	}
	return e.arch, nil
}

// Resolve opens resource (tag, id) from the first file of stack that has it.
// Files that are missing or lack the resource are skipped; any other error
// stops the search. The result is owned by the caller.
func (r *Resolver) Resolve(stack, tag string, id uint16) (vaht.Typed, error) {
	t, _, err := r.resolve(stack, tag, id)
	return t, err
}

// Use resolves (tag, id) and calls fn with the result while holding the
// lock of the archive it came from, then closes the result.
func (r *Resolver) Use(stack, tag string, id uint16, fn func(vaht.Typed) error) error {
	t, e, err := r.resolve(stack, tag, id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	defer t.Close()
	return fn(t)
}

func (r *Resolver) resolve(stack, tag string, id uint16) (vaht.Typed, *entry, error) {
	files, err := r.Files(stack)
	if err != nil {
		return nil, nil, err
	}
	for _, path := range files {
		e, err := r.archive(path)
		if err != nil {
			if errors.IsOpenFailure(err) {
				Logger().Debug("skipping archive", zap.String("path", path), zap.Error(err))
				continue
			}
			return nil, nil, err
		}

		e.mu.Lock()
		t, err := e.arch.OpenResource(tag, id)
		e.mu.Unlock()
		if err == nil {
			return t, e, nil
		}
		if !errors.IsOpenFailure(err) {
			return nil, nil, err
		}
	}
	return nil, nil, errors.NotFound(errors.PhaseResolve, "resource", stack+" "+tag+" "+strconv.Itoa(int(id)))
}

// Warm opens every configured archive file ahead of concurrent use and
// returns how many are now cached. Missing files are skipped.
func (r *Resolver) Warm() int {
	for _, stack := range r.Stacks() {
		files, _ := r.Files(stack)
		for _, path := range files {
			if _, err := r.archive(path); err != nil {
				Logger().Debug("warm: skipping archive", zap.String("path", path), zap.Error(err))
			}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Cached returns the number of open archives.
func (r *Resolver) Cached() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

// Close releases every cached archive. Wrappers already returned by Resolve
// stay valid; the resolver can be reused and will reopen archives on demand.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, e := range r.cache {
		e.mu.Lock()
		e.arch.Close()
		e.mu.Unlock()
		delete(r.cache, path)
	}
	return nil
}
