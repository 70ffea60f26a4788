// Package shell implements the interactive bench shell: a readline loop
// feeding a command router, with script expansion, a measurement log and a
// safety state machine over the registered instruments.
package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/OpenTraceLab/OpenTraceBench/internal/term"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/measure"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/registry"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/script"
)

const prompt = "bench> "

// Options configures a Shell.
type Options struct {
	Registry *registry.Registry
	Store    *script.Store
	Printer  *term.Printer
	Logger   *slog.Logger

	// Rescan repopulates the registry for the scan command. Nil disables
	// rescanning.
	Rescan func(ctx context.Context, reg *registry.Registry) error
}

// Shell owns the interactive state: registry, script store, measurement
// log, display ticker and shutdown lifecycle.
type Shell struct {
	reg      *registry.Registry
	store    *script.Store
	expander *script.Expander
	log      *measure.Log
	printer  *term.Printer
	slog     *slog.Logger
	rescan   func(ctx context.Context, reg *registry.Registry) error

	life   lifecycle
	ticker displayTicker

	commands map[string]*command
	order    []string
}

// New builds a Shell over the given registry and script store.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	printer := opts.Printer
	if printer == nil {
		printer = term.NewPrinter(os.Stdout)
	}
	s := &Shell{
		reg:     opts.Registry,
		store:   opts.Store,
		log:     measure.NewLog(),
		printer: printer,
		slog:    logger,
		rescan:  opts.Rescan,
	}
	s.expander = &script.Expander{Lookup: s.store.Get}
	s.registerCommands()
	return s
}

// Phase returns the lifecycle phase, for status output and tests.
func (s *Shell) Phase() Phase { return s.life.current() }

// Run starts the interactive loop and blocks until exit, EOF or a fatal
// terminal error. Instruments are parked on every exit path.
func (s *Shell) Run(ctx context.Context) error {
	defer s.Shutdown()

	// A signal must park the bench even mid-command.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		sig, ok := <-sigc
		if !ok {
			return
		}
		s.printer.Warning("caught %v", sig)
		s.Shutdown()
		os.Exit(0)
	}()

	if s.reg.Len() > 0 {
		s.printer.Header("=== Setting all instruments to safe state ===")
		s.applyAll(actionSafe)
	}
	s.printer.Info("type 'help' for commands, 'exit' to leave")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(os.TempDir(), ".otbench_history")
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			s.printer.Warning("interrupted")
			return nil
		}
		if errors.Is(err, io.EOF) {
			s.printer.Plain("")
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			s.tick()
			continue
		}
		line.AppendHistory(trimmed)

		if s.Dispatch(trimmed) {
			return nil
		}
		s.tick()
	}
}

// RunScript expands a stored script with the given parameter bindings and
// executes every line. It reports whether execution requested exit.
func (s *Shell) RunScript(name string, params map[string]string) bool {
	lines, ok := s.store.Get(name)
	if !ok {
		s.printer.Error("script %q not found", name)
		return false
	}
	expanded, diags := s.expander.Expand(lines, params)
	for _, d := range diags {
		s.printer.Error("%v", d)
	}
	for _, cmd := range expanded {
		if s.Dispatch(cmd) {
			return true
		}
		s.tick()
	}
	return false
}

// Shutdown parks every instrument and closes the registry. Safe to call
// from any goroutine; only the first call acts.
func (s *Shell) Shutdown() {
	if !s.life.begin() {
		return
	}
	defer s.life.finish()

	s.ticker.stop()
	if s.reg.Len() > 0 {
		s.printer.Header("=== Shutting down instruments safely ===")
		s.applyAll(actionSafe)
	}
	for _, err := range s.reg.CloseAll() {
		s.printer.Error("%v", err)
	}
}
