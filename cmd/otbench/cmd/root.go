package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceBench/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceBench/internal/shell"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/discovery"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/registry"
	"github.com/OpenTraceLab/OpenTraceBench/pkg/script"
)

var (
	// Global flags
	verbose     bool
	simBench    bool
	configPath  string
	scriptsPath string
)

var rootCmd = &cobra.Command{
	Use:   "otbench",
	Short: "Interactive bench instrument shell",
	Long: `An interactive command shell for bench instruments: power supplies,
waveform generators, multimeters and oscilloscopes over USB-TMC, GPIB
(Prologix) and USB serial.

Running otbench with no arguments scans the bench and starts the shell.

Examples:
  otbench                         # scan and start the interactive shell
  otbench --sim                   # start against a simulated bench
  otbench run power_up v=3.3      # run one stored script and exit
  otbench scripts                 # list stored scripts`,
	Version:      "0.9.0",
	SilenceUsage: true,
	RunE:         runRepl,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&simBench, "sim", false, "use a simulated bench instead of real hardware")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "bench configuration file (default ~/.otbench.yaml)")
	rootCmd.PersistentFlags().StringVar(&scriptsPath, "scripts", ".repl_scripts.json", "script store file")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// rescanFunc repopulates reg for the shell's scan command.
func rescanFunc(logger *slog.Logger) func(ctx context.Context, reg *registry.Registry) error {
	if simBench {
		return func(ctx context.Context, reg *registry.Registry) error {
			discovery.SimBench(ctxlog.WithLogger(ctx, logger), reg)
			return nil
		}
	}
	return func(ctx context.Context, reg *registry.Registry) error {
		cfg, err := discovery.LoadConfig(benchConfigPath())
		if err != nil {
			return err
		}
		return discovery.Scan(ctxlog.WithLogger(ctx, logger), cfg, reg)
	}
}

func benchConfigPath() string {
	if configPath != "" {
		return configPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".otbench.yaml"
	}
	return filepath.Join(home, ".otbench.yaml")
}

// buildShell connects the bench and assembles a shell over it.
func buildShell(ctx context.Context) (*shell.Shell, error) {
	logger := newLogger()
	slog.SetDefault(logger)

	reg := registry.New()
	rescan := rescanFunc(logger)
	if err := rescan(ctx, reg); err != nil {
		return nil, fmt.Errorf("bench discovery: %w", err)
	}

	store := script.NewStore(scriptsPath)
	if err := store.Load(); err != nil {
		logger.Warn("script store unreadable, starting empty", "path", scriptsPath, "error", err)
	}

	return shell.New(shell.Options{
		Registry: reg,
		Store:    store,
		Logger:   logger,
		Rescan:   rescan,
	}), nil
}
