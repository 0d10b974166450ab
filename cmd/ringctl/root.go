package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joshuapare/ringarena/internal/logger"
	"github.com/joshuapare/ringarena/ring"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	configPath string
	logLevel   string
	logDir     string

	// Engine flags, applied over the config file when set
	capacityFlag string
	backingFlag  string
	checksFlag   bool

	// cfg is resolved before any subcommand runs.
	cfg = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "ringctl",
	Short: "Drive and inspect ring arena allocators",
	Long: `ringctl runs allocation workloads against a fixed-capacity ring arena.
It reports how the free run moves, when requests wrap to the start of the
buffer, and where interior frees leave holes.`,
	Version:           version,
	PersistentPreRunE: setup,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (enables logging)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write daily log files to this directory")

	rootCmd.PersistentFlags().StringVar(&capacityFlag, "capacity", "", "Arena capacity, e.g. 64KiB or 1MB")
	rootCmd.PersistentFlags().StringVar(&backingFlag, "backing", "", "Buffer backing: heap or mmap")
	rootCmd.PersistentFlags().BoolVar(&checksFlag, "checks", false, "Verify every deallocation (slow)")
}

// setup loads the config file, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := applyEngineFlags(cmd, &loaded); err != nil {
		return err
	}
	if err := applyWorkloadFlags(cmd, &loaded.Workload); err != nil {
		return err
	}
	cfg = loaded

	if noColor {
		color.NoColor = true
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Enabled = true
		cfg.Log.Level = logger.ParseLevel(logLevel)
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.Log.Enabled = true
		cfg.Log.LogDir = logDir
	}
	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("failed to start logging: %w", err)
	}
	printVerbose("Arena: %s %s, checks=%v\n", formatBytes(int64(cfg.Capacity)), cfg.Engine.Backing, cfg.Engine.Checks)
	return nil
}

func applyEngineFlags(cmd *cobra.Command, c *config) error {
	flags := cmd.Flags()
	if flags.Changed("capacity") {
		n, err := parseSize(capacityFlag)
		if err != nil {
			return fmt.Errorf("--capacity: %w", err)
		}
		c.Capacity = n
	}
	if flags.Changed("backing") {
		b, err := ring.ParseBacking(backingFlag)
		if err != nil {
			return err
		}
		c.Engine.Backing = b
	}
	if flags.Changed("checks") {
		c.Engine.Checks = checksFlag
	}
	return nil
}

// newEngine creates an engine from the resolved config.
func newEngine() (*ring.Engine, error) {
	opts := cfg.Engine
	opts.Logger = logger.L
	e, err := ring.New(cfg.Capacity, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create arena: %w", err)
	}
	return e, nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
