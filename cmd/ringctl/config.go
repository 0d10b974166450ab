package main

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/ringarena/internal/logger"
	"github.com/joshuapare/ringarena/internal/workload"
	"github.com/joshuapare/ringarena/ring"
)

// config is the resolved configuration shared by every subcommand.
type config struct {
	Capacity int
	Engine   ring.Options
	Workload workload.Config
	Log      logger.Options
}

const defaultCapacity = 64 << 10

func defaultConfig() config {
	return config{
		Capacity: defaultCapacity,
		Engine:   *ring.DefaultOptions(),
		Workload: workload.DefaultConfig(),
		Log:      logger.Options{Level: slog.LevelInfo},
	}
}

// fileConfig mirrors the TOML layout:
//
//	capacity = "256KiB"
//	backing  = "mmap"
//	checks   = true
//
//	[workload]
//	pattern  = "frame"
//	ops      = 50000
//	min_size = "16"
//	max_size = "4KiB"
//	window   = 32
//	seed     = 7
//
//	[log]
//	level = "debug"
//	dir   = "/var/log/ringctl"
type fileConfig struct {
	Capacity string `toml:"capacity"`
	Backing  string `toml:"backing"`
	Checks   *bool  `toml:"checks"`

	Workload struct {
		Pattern   string `toml:"pattern"`
		Ops       *int   `toml:"ops"`
		MinSize   string `toml:"min_size"`
		MaxSize   string `toml:"max_size"`
		Alignment *int   `toml:"alignment"`
		Window    *int   `toml:"window"`
		Seed      *int64 `toml:"seed"`
		Fill      *bool  `toml:"fill"`
	} `toml:"workload"`

	Log struct {
		Level string `toml:"level"`
		Dir   string `toml:"dir"`
		JSON  bool   `toml:"json"`
	} `toml:"log"`
}

// loadConfig returns the defaults overlaid with the TOML file at path. An
// empty path yields the defaults. Unknown keys are an error so typos do not
// pass silently.
func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}

	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return c, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return c, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := fc.apply(&c); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func (fc *fileConfig) apply(c *config) error {
	if fc.Capacity != "" {
		n, err := parseSize(fc.Capacity)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		c.Capacity = n
	}
	if fc.Backing != "" {
		b, err := ring.ParseBacking(fc.Backing)
		if err != nil {
			return err
		}
		c.Engine.Backing = b
	}
	if fc.Checks != nil {
		c.Engine.Checks = *fc.Checks
	}

	w := &fc.Workload
	if w.Pattern != "" {
		p, err := workload.ParsePattern(w.Pattern)
		if err != nil {
			return err
		}
		c.Workload.Pattern = p
	}
	if w.MinSize != "" {
		n, err := parseSize(w.MinSize)
		if err != nil {
			return fmt.Errorf("workload.min_size: %w", err)
		}
		c.Workload.MinSize = n
	}
	if w.MaxSize != "" {
		n, err := parseSize(w.MaxSize)
		if err != nil {
			return fmt.Errorf("workload.max_size: %w", err)
		}
		c.Workload.MaxSize = n
	}
	setIf(&c.Workload.Ops, w.Ops)
	setIf(&c.Workload.Alignment, w.Alignment)
	setIf(&c.Workload.Window, w.Window)
	setIf(&c.Workload.Seed, w.Seed)
	setIf(&c.Workload.Fill, w.Fill)

	if fc.Log.Level != "" {
		c.Log.Enabled = true
		c.Log.Level = logger.ParseLevel(fc.Log.Level)
	}
	if fc.Log.Dir != "" {
		c.Log.Enabled = true
		c.Log.LogDir = fc.Log.Dir
	}
	c.Log.JSON = fc.Log.JSON
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// parseSize accepts plain byte counts and humanized sizes ("64KiB", "1 MB").
func parseSize(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("size %s exceeds %s", s, humanize.IBytes(math.MaxInt32))
	}
	return int(n), nil
}

// Workload flags, applied over the config file when set
var (
	patternFlag string
	opsFlag     int
	minSizeFlag string
	maxSizeFlag string
	alignFlag   int
	windowFlag  int
	seedFlag    int64
	fillFlag    bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&patternFlag, "pattern", "", "Workload pattern: lifo, fifo, random or frame")
	pf.IntVar(&opsFlag, "ops", 0, "Allocations per workload run")
	pf.StringVar(&minSizeFlag, "min-size", "", "Smallest request size")
	pf.StringVar(&maxSizeFlag, "max-size", "", "Largest request size")
	pf.IntVar(&alignFlag, "align", 0, "Request alignment (default: platform minimum)")
	pf.IntVar(&windowFlag, "window", 0, "Live allocation window or frame batch size")
	pf.Int64Var(&seedFlag, "seed", 0, "Random seed")
	pf.BoolVar(&fillFlag, "fill", false, "Fill allocations and verify them on free")
}

func applyWorkloadFlags(cmd *cobra.Command, w *workload.Config) error {
	flags := cmd.Flags()
	if flags.Changed("pattern") {
		p, err := workload.ParsePattern(patternFlag)
		if err != nil {
			return err
		}
		w.Pattern = p
	}
	if flags.Changed("min-size") {
		n, err := parseSize(minSizeFlag)
		if err != nil {
			return fmt.Errorf("--min-size: %w", err)
		}
		w.MinSize = n
	}
	if flags.Changed("max-size") {
		n, err := parseSize(maxSizeFlag)
		if err != nil {
			return fmt.Errorf("--max-size: %w", err)
		}
		w.MaxSize = n
	}
	if flags.Changed("ops") {
		w.Ops = opsFlag
	}
	if flags.Changed("align") {
		w.Alignment = alignFlag
	}
	if flags.Changed("window") {
		w.Window = windowFlag
	}
	if flags.Changed("seed") {
		w.Seed = seedFlag
	}
	if flags.Changed("fill") {
		w.Fill = fillFlag
	}
	return nil
}
