package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ringarena/internal/workload"
	"github.com/joshuapare/ringarena/ring"
)

var (
	simAll   bool
	simTrace bool
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().BoolVar(&simAll, "all", false, "Run every pattern on a fresh arena")
	cmd.Flags().BoolVar(&simTrace, "trace", false, "Print every operation with the cursors after it")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic allocation pattern",
		Long: `The simulate command drives a fresh arena with one allocation pattern
(or all of them with --all) and reports how many requests succeeded, how
often the free run wrapped and how many holes interior frees left.

Example:
  ringctl simulate --pattern fifo --capacity 64KiB --ops 100000
  ringctl simulate --all --max-size 1KiB --json
  ringctl simulate --pattern random --ops 20 --trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context())
		},
	}
	return cmd
}

// simulateResult is one row of simulate output.
type simulateResult struct {
	Pattern  string    `json:"pattern"`
	Allocs   int       `json:"allocs"`
	Failures int       `json:"failures"`
	Frees    int       `json:"frees"`
	PeakLive int       `json:"peak_live"`
	Bytes    int64     `json:"bytes"`
	Arena    statsView `json:"arena"`
}

func runSimulate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	patterns := []workload.Pattern{cfg.Workload.Pattern}
	if simAll {
		patterns = workload.Patterns()
	}

	results := make([]simulateResult, 0, len(patterns))
	for _, p := range patterns {
		r, err := simulateOne(ctx, p)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	if jsonOut {
		return printJSON(results)
	}
	if quiet {
		return nil
	}

	printInfo("\nSimulation: %s arena, %s ops per pattern, sizes %s..%s\n",
		formatBytes(int64(cfg.Capacity)), formatNumber(int64(cfg.Workload.Ops)),
		formatBytes(int64(cfg.Workload.MinSize)), formatBytes(int64(cfg.Workload.MaxSize)))

	table := newTable(os.Stdout, "Pattern", "Allocs", "Failures", "Frees", "Peak live", "Wraps", "Holes", "Resets", "Bytes")
	for _, r := range results {
		table.Append([]string{
			r.Pattern,
			formatNumber(int64(r.Allocs)),
			formatNumber(int64(r.Failures)),
			formatNumber(int64(r.Frees)),
			formatNumber(int64(r.PeakLive)),
			formatNumber(r.Arena.Wraps),
			formatNumber(r.Arena.Holes),
			formatNumber(r.Arena.Resets),
			formatBytes(r.Bytes),
		})
	}
	table.Render()
	return nil
}

func simulateOne(ctx context.Context, p workload.Pattern) (simulateResult, error) {
	e, err := newEngine()
	if err != nil {
		return simulateResult{}, err
	}
	defer e.Close()

	wcfg := cfg.Workload
	wcfg.Pattern = p

	var observe func(workload.Step)
	if simTrace && !jsonOut {
		printInfo("\n[%s]\n", p)
		observe = func(s workload.Step) { traceStep(e, s) }
	}

	res, err := workload.Run(ctx, e, wcfg, observe)
	if err != nil {
		return simulateResult{}, fmt.Errorf("%s workload: %w", p, err)
	}
	if err := e.Validate(); err != nil {
		return simulateResult{}, fmt.Errorf("%s workload left arena inconsistent: %w", p, err)
	}

	return simulateResult{
		Pattern:  p.String(),
		Allocs:   res.Allocs,
		Failures: res.Failures,
		Frees:    res.Frees,
		PeakLive: res.PeakLive,
		Bytes:    res.Bytes,
		Arena:    newStatsView(e.Stats()),
	}, nil
}

func traceStep(e *ring.Engine, s workload.Step) {
	st := e.Stats()
	ref := strconv.Itoa(int(s.Ref))
	if s.Err != nil {
		ref = "-"
	}
	printInfo("%6d  %-5s %6d  ref=%-8s %-3s  begin=%-6s end=%-6s live=%-4d %s\n",
		s.Index, s.Op, s.Size, ref, colorResult(s.Err),
		formatCursor(st.Begin), formatCursor(st.End), st.Live, colorState(st.State))
}
