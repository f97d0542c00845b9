package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/moiety/config"
	"github.com/wippyai/moiety/ffi"
	"github.com/wippyai/moiety/ownership"
	"github.com/wippyai/moiety/script"
	"github.com/wippyai/moiety/stack"
	"github.com/wippyai/moiety/vaht"
)

// opener loads the foreign library named by cfg.
type opener func(ctx context.Context, cfg config.Config) (ffi.Library, error)

// app is the state shared by every subcommand between setup and teardown.
type app struct {
	open opener

	cfg     config.Config
	debug   bool
	log     *zap.Logger
	tracker *ownership.Tracker

	foreign  ffi.Library
	lib      *vaht.Lib
	resolver *stack.Resolver
}

func newRootCmd(open opener) *cobra.Command {
	return (&app{open: open}).command()
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "moiety",
		Short:         "Inspect Mohawk archive resources through libvaht",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	fs := root.PersistentFlags()
	fs.String("data-dir", "", "directory holding the archive files (MOIETY_DATA_DIR)")
	fs.String("library", "", "libvaht path, library name or .wasm module (MOIETY_LIBRARY)")
	fs.String("stacks", "", "YAML stack map replacing the built-in one (MOIETY_STACKS)")
	fs.Int64("max-payload", 0, "byte cap for one media resource, 0 for none (MOIETY_MAX_PAYLOAD)")
	fs.String("log-level", "", "log level (MOIETY_LOG_LEVEL)")
	fs.BoolVar(&a.debug, "debug", false, "development logging and a handle leak report on exit")

	root.AddCommand(
		newTypesCmd(a),
		newDumpCmd(a),
		newExportCmd(a),
		newScriptCmd(a),
		newBrowseCmd(a),
	)
	return root
}

// applyFlags overrides environment settings with flags the user set.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	strs := map[string]*string{
		"data-dir":  &cfg.DataDir,
		"library":   &cfg.Library,
		"stacks":    &cfg.StacksFile,
		"log-level": &cfg.LogLevel,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if fs.Changed("max-payload") {
		v, err := fs.GetInt64("max-payload")
		if err != nil {
			return err
		}
		cfg.MaxPayload = v
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return err
	}
	if err := applyFlags(cmd.Flags(), &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dir
	a.cfg = cfg

	if err := a.setupLogging(); err != nil {
		return err
	}

	stacks, err := cfg.Stacks()
	if err != nil {
		return err
	}

	foreign, err := a.open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	a.foreign = foreign

	vcfg := &vaht.Config{}
	if a.debug {
		a.tracker = ownership.NewTracker()
		vcfg.Observer = a.tracker
	}
	lib, err := vaht.LoadWithConfig(foreign, vcfg)
	if err != nil {
		foreign.Close()
		return err
	}
	a.lib = lib
	a.resolver = stack.NewWithConfig(lib, stack.Config{Dir: cfg.DataDir, Stacks: stacks})
	return nil
}

func (a *app) setupLogging() error {
	var (
		log *zap.Logger
		err error
	)
	if a.debug {
		log, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		lvl, lerr := a.cfg.Level()
		if lerr != nil {
			return lerr
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
		zcfg.Encoding = "console"
		log, err = zcfg.Build()
	}
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log
	ffi.SetLogger(log.Named("ffi"))
	ownership.SetLogger(log.Named("ownership"))
	vaht.SetLogger(log.Named("vaht"))
	script.SetLogger(log.Named("script"))
	stack.SetLogger(log.Named("stack"))
	return nil
}

// run wraps a subcommand so teardown happens whether or not it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := a.teardown(); err == nil {
				err = cerr
			}
		}()
		return fn(cmd, args)
	}
}

func (a *app) teardown() error {
	if a.resolver != nil {
		a.resolver.Close()
	}
	if a.tracker != nil {
		for _, e := range a.tracker.Leaks() {
			a.log.Warn("handle still live at exit",
				zap.String("class", e.Class),
				zap.Uintptr("ptr", e.Ptr),
				zap.Stringer("discipline", e.Discipline),
				zap.Int("wrappers", e.Wrappers))
		}
	}
	var err error
	if a.foreign != nil {
		err = a.foreign.Close()
	}
	if a.log != nil {
		a.log.Sync() //nolint:errcheck // stderr sync fails on some terminals
	}
	return err
}

// openLibrary loads libvaht natively or, for a .wasm path, under wazero with
// the data directory mounted at the same path inside the guest.
func openLibrary(ctx context.Context, cfg config.Config) (ffi.Library, error) {
	if cfg.Wasm() {
		data, err := os.ReadFile(cfg.Library)
		if err != nil {
			return nil, err
		}
		lib, err := ffi.OpenWasmWithConfig(ctx, data, vaht.Prefix, &ffi.WasmConfig{
			Mounts: map[string]string{cfg.DataDir: cfg.DataDir},
		})
		if err != nil {
			return nil, err
		}
		return lib, nil
	}

	path := cfg.Library
	if !strings.ContainsRune(path, filepath.Separator) {
		found, err := ffi.Find(path)
		if err != nil {
			return nil, err
		}
		path = found
	}
	lib, err := ffi.OpenNative(path, vaht.Prefix)
	if err != nil {
		return nil, err
	}
	return lib, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
