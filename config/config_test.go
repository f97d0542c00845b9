package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"MOIETY_DATA_DIR", "MOIETY_LIBRARY", "MOIETY_STACKS", "MOIETY_MAX_PAYLOAD", "MOIETY_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "." || cfg.Library != DefaultLibrary || cfg.MaxPayload != 256<<20 || cfg.StacksFile != "" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.InfoLevel {
		t.Fatalf("level = %v", lvl)
	}
	stacks, err := cfg.Stacks()
	if err != nil || len(stacks) != 8 {
		t.Fatalf("Stacks = %v, %v", stacks, err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOIETY_DATA_DIR", "/riven")
	t.Setenv("MOIETY_LIBRARY", "/opt/vaht.wasm")
	t.Setenv("MOIETY_MAX_PAYLOAD", "1024")
	t.Setenv("MOIETY_LOG_LEVEL", "debug")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/riven" || !cfg.Wasm() || cfg.MaxPayload != 1024 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if lvl, _ := cfg.Level(); lvl != zapcore.DebugLevel {
		t.Fatalf("level = %v", lvl)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"MOIETY_MAX_PAYLOAD": "lots",
		"MOIETY_LOG_LEVEL":   "chatty",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s accepted", k, v)
			}
		})
	}
	t.Run("negative payload", func(t *testing.T) {
		t.Setenv("MOIETY_MAX_PAYLOAD", "-1")
		if _, err := Load(); err == nil {
			t.Fatal("negative payload accepted")
		}
	})
}

func TestStacksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stacks.yaml")
	data := "stacks:\n  demo: [d_Data.MHK, d_Sounds.MHK]\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := Config{StacksFile: path}
	stacks, err := cfg.Stacks()
	if err != nil {
		t.Fatalf("Stacks: %v", err)
	}
	if len(stacks) != 1 || len(stacks["demo"]) != 2 || stacks["demo"][1] != "d_Sounds.MHK" {
		t.Fatalf("stacks = %v", stacks)
	}

	if _, err := (Config{StacksFile: filepath.Join(t.TempDir(), "none.yaml")}).Stacks(); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestParseStacksRejects(t *testing.T) {
	for name, data := range map[string]string{
		"empty":      "stacks: {}\n",
		"no files":   "stacks:\n  demo: []\n",
		"blank file": "stacks:\n  demo: [\"\"]\n",
		"not yaml":   "stacks: [\n",
	} {
		if _, err := ParseStacks([]byte(data)); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}
