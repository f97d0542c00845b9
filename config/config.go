// Package config loads moiety settings from the environment and the stack
// map from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/moiety/errors"
	"github.com/wippyai/moiety/stack"
)

// DefaultLibrary is the library name searched for when MOIETY_LIBRARY is
// unset.
const DefaultLibrary = "vaht"

// Config holds process settings.
type Config struct {
	// DataDir holds the archive files named in the stack map.
	DataDir string `env:"MOIETY_DATA_DIR" envDefault:"."`
	// Library is a path to libvaht, a bare library name to search for, or a
	// path ending in .wasm to run the WebAssembly build.
	Library string `env:"MOIETY_LIBRARY" envDefault:"vaht"`
	// StacksFile is an optional YAML stack map replacing the built-in one.
	StacksFile string `env:"MOIETY_STACKS"`
	// MaxPayload caps bytes read from one media resource; 0 disables it.
	MaxPayload int64 `env:"MOIETY_MAX_PAYLOAD" envDefault:"268435456"`
	LogLevel   string `env:"MOIETY_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.MaxPayload < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "MOIETY_MAX_PAYLOAD must not be negative")
	}
	if strings.TrimSpace(c.Library) == "" {
		return errors.InvalidInput(errors.PhaseConfig, "MOIETY_LIBRARY must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "MOIETY_LOG_LEVEL")
	}
	return lvl, nil
}

// Wasm reports whether Library names a WebAssembly module.
func (c Config) Wasm() bool { return strings.HasSuffix(c.Library, ".wasm") }

// Stacks returns the stack map from StacksFile, or the built-in Riven map
// when no file is configured.
func (c Config) Stacks() (map[string][]string, error) {
	if c.StacksFile == "" {
		return stack.Default(), nil
	}
	return LoadStacks(c.StacksFile)
}

// stackFile is the YAML layout of a stack map:
//
//	stacks:
//	  aspit: [a_Data.MHK, a_Sounds.MHK]
type stackFile struct {
	Stacks map[string][]string `yaml:"stacks"`
}

// LoadStacks reads a YAML stack map file.
func LoadStacks(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindOpenFailed, err, "read stack map")
	}
	return ParseStacks(data)
}

// ParseStacks decodes a YAML stack map. Every stack needs at least one file.
func ParseStacks(data []byte) (map[string][]string, error) {
	var f stackFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode stack map")
	}
	if len(f.Stacks) == 0 {
		return nil, errors.InvalidInput(errors.PhaseConfig, "stack map defines no stacks")
	}
	for name, files := range f.Stacks {
		if len(files) == 0 {
			return nil, errors.InvalidInput(errors.PhaseConfig, "stack "+name+" has no files")
		}
		for _, file := range files {
			if strings.TrimSpace(file) == "" {
				return nil, errors.InvalidInput(errors.PhaseConfig, "stack "+name+" has an empty file name")
			}
		}
	}
	return f.Stacks, nil
}
