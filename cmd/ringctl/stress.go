package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/ringarena/internal/workload"
)

var stressWorkers int

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressWorkers, "workers", "w", runtime.GOMAXPROCS(0), "Concurrent workers sharing one arena")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run workloads concurrently against one arena",
		Long: `The stress command starts several workers that run the configured
workload against a single shared arena, each with its own seed. Every call
serialises on the arena's lock, so workers interleave their allocations and
frees. When all workers finish the arena must be empty and consistent.

Example:
  ringctl stress --workers 8 --ops 20000 --pattern frame --fill
  ringctl stress --checks --capacity 1MiB --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
	return cmd
}

type stressWorker struct {
	Worker   int   `json:"worker"`
	Seed     int64 `json:"seed"`
	Allocs   int   `json:"allocs"`
	Failures int   `json:"failures"`
	Frees    int   `json:"frees"`
	PeakLive int   `json:"peak_live"`
}

type stressReport struct {
	Workers  []stressWorker `json:"workers"`
	Elapsed  string         `json:"elapsed"`
	Arena    statsView      `json:"arena"`
	Verified bool           `json:"verified"`
}

func runStress(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if stressWorkers <= 0 {
		return fmt.Errorf("--workers must be positive, got %d", stressWorkers)
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	report := stressReport{Workers: make([]stressWorker, stressWorkers)}
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for i := range stressWorkers {
		wcfg := cfg.Workload
		wcfg.Seed = cfg.Workload.Seed + int64(i)
		g.Go(func() error {
			res, err := workload.Run(gctx, e, wcfg, nil)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			report.Workers[i] = stressWorker{
				Worker:   i,
				Seed:     wcfg.Seed,
				Allocs:   res.Allocs,
				Failures: res.Failures,
				Frees:    res.Frees,
				PeakLive: res.PeakLive,
			}
			printVerbose("worker %d done: %s allocs, %s failures\n",
				i, formatNumber(int64(res.Allocs)), formatNumber(int64(res.Failures)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := e.Validate(); err != nil {
		return fmt.Errorf("arena inconsistent after stress: %w", err)
	}
	st := e.Stats()
	if st.Live != 0 {
		return fmt.Errorf("arena has %d live allocations after all workers drained", st.Live)
	}
	report.Elapsed = formatDuration(elapsed)
	report.Arena = newStatsView(st)
	report.Verified = true

	if jsonOut {
		return printJSON(report)
	}
	if quiet {
		return nil
	}

	printInfo("\nStress: %d workers, %s ops each, %s pattern, %s\n",
		stressWorkers, formatNumber(int64(cfg.Workload.Ops)), cfg.Workload.Pattern, report.Elapsed)
	table := newTable(os.Stdout, "Worker", "Seed", "Allocs", "Failures", "Frees", "Peak live")
	for _, w := range report.Workers {
		table.Append([]string{
			fmt.Sprint(w.Worker),
			fmt.Sprint(w.Seed),
			formatNumber(int64(w.Allocs)),
			formatNumber(int64(w.Failures)),
			formatNumber(int64(w.Frees)),
			formatNumber(int64(w.PeakLive)),
		})
	}
	table.Render()
	renderStats(st)
	printInfo("%s arena drained and consistent\n", okColor("PASS"))
	return nil
}
