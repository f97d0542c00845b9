package ffi

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/wippyai/moiety/errors"
)

// Find locates the shared library for name ("vaht" finds libvaht.so or
// libvaht.dylib). When no candidate exists on disk it falls back to the bare
// file name and leaves the search to the dynamic loader.
func Find(name string) (string, error) {
	return findIn(name, runtime.GOOS, os.Getenv, fileExists)
}

func findIn(name, goos string, getenv func(string) string, exists func(string) bool) (string, error) {
	if name == "" {
		return "", errors.InvalidInput(errors.PhaseLoad, "empty library name")
	}

	var file, envVar string
	var dirs []string
	switch goos {
	case "linux", "freebsd":
		file = "lib" + name + ".so"
		envVar = "LD_LIBRARY_PATH"
		dirs = []string{"/usr/local/lib", "/usr/lib", "/lib"}
	case "darwin":
		file = "lib" + name + ".dylib"
		envVar = "DYLD_LIBRARY_PATH"
		dirs = []string{"/usr/local/lib", "/opt/homebrew/lib", "/usr/lib"}
	default:
		return "", errors.NotFound(errors.PhaseLoad, "library", name)
	}

	var search []string
	if v := getenv(envVar); v != "" {
		search = append(search, filepath.SplitList(v)...)
	}
	search = append(search, dirs...)

	for _, dir := range search {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		candidate := filepath.Join(dir, file)
		if exists(candidate) {
			return candidate, nil
		}
	}
	return file, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
