package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ringarena/internal/profiler"
	"github.com/joshuapare/ringarena/internal/workload"
	"github.com/joshuapare/ringarena/ring"
)

var (
	benchRuns     int
	benchBaseline bool
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchRuns, "runs", "n", 1000, "Timed runs")
	cmd.Flags().BoolVar(&benchBaseline, "baseline", false, "Also time the same workload on the Go heap")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time a workload and report its distribution",
		Long: `The bench command runs the configured workload --runs times. Each
timed run is preceded by an untimed warm-up run. It reports the mean,
standard deviation, highest, lowest and median run time.

Example:
  ringctl bench --pattern lifo --ops 256 --runs 5000
  ringctl bench --pattern fifo --baseline --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context())
		},
	}
	return cmd
}

// heapArena serves every request from the Go heap. Deallocate is left to
// the garbage collector. It is the baseline for bench.
type heapArena struct{}

func (heapArena) Allocate(size, alignment int) (ring.Ref, []byte, error) {
	return 0, make([]byte, size), nil
}

func (heapArena) Deallocate(ring.Ref, int, int) {}

type namedArena struct {
	name  string
	arena ring.Arena
}

type benchRow struct {
	Arena             string `json:"arena"`
	Runs              int    `json:"runs"`
	Mean              string `json:"mean"`
	StandardDeviation string `json:"standard_deviation"`
	Highest           string `json:"highest"`
	Lowest            string `json:"lowest"`
	Median            string `json:"median"`
	MeanNanos         int64  `json:"mean_ns"`
}

func runBench(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if benchRuns <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", benchRuns)
	}

	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	arenas := []namedArena{{"ring", e}}
	if benchBaseline {
		arenas = append(arenas, namedArena{"heap", heapArena{}})
	}

	rows := make([]benchRow, 0, len(arenas))
	for _, a := range arenas {
		prof, err := benchArena(ctx, a.arena)
		if err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
		rows = append(rows, benchRow{
			Arena:             a.name,
			Runs:              prof.Samples,
			Mean:              formatDuration(prof.Mean),
			StandardDeviation: formatDuration(prof.StandardDeviation),
			Highest:           formatDuration(prof.Highest),
			Lowest:            formatDuration(prof.Lowest),
			Median:            formatDuration(prof.Median),
			MeanNanos:         prof.Mean.Nanoseconds(),
		})
	}

	if jsonOut {
		return printJSON(rows)
	}
	if quiet {
		return nil
	}

	printInfo("\nBenchmark: %s pattern, %s ops per run, %s runs\n",
		cfg.Workload.Pattern, formatNumber(int64(cfg.Workload.Ops)), formatNumber(int64(benchRuns)))
	table := newTable(os.Stdout, "Arena", "Average", "Standard deviation", "Highest", "Lowest", "Median")
	for _, r := range rows {
		table.Append([]string{r.Arena, r.Mean, r.StandardDeviation, r.Highest, r.Lowest, r.Median})
	}
	table.Render()
	return nil
}

func benchArena(ctx context.Context, a ring.Arena) (profiler.Profile, error) {
	p := profiler.New()
	var runErr error
	test := func() {
		if _, err := workload.Run(ctx, a, cfg.Workload, nil); err != nil && runErr == nil {
			runErr = err
		}
	}

	for range benchRuns {
		// Warmup
		test()

		p.Start()
		test()
		if err := p.End(); err != nil {
			return profiler.Profile{}, err
		}
		if runErr != nil {
			return profiler.Profile{}, runErr
		}
	}
	return p.Flush(), nil
}
