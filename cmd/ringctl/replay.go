package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ringarena/internal/workload"
)

func init() {
	rootCmd.AddCommand(newReplayCmd())
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script|->",
		Short: "Replay a scripted allocate/free sequence",
		Long: `The replay command runs a script of named allocations against a fresh
arena and prints the cursors after every step. Each line is one of:

  alloc <name> <size> [alignment]
  free <name>

Sizes accept units (48, 1KiB, 2kb). Lines starting with # are comments.
A failed allocation is reported and the replay continues.

Example:
  ringctl replay wrap.script --capacity 256
  echo "alloc a 64" | ringctl replay - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

type replayRow struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	Ref     int    `json:"ref"`
	Error   string `json:"error,omitempty"`
	Begin   int    `json:"begin"`
	End     int    `json:"end"`
	Live    int    `json:"live"`
	State   string `json:"state"`
}

type replayReport struct {
	Steps []replayRow `json:"steps"`
	Arena statsView   `json:"arena"`
}

func runReplay(args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	cmds, err := workload.ParseScript(r)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d commands\n", len(cmds))

	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	var (
		rows   []replayRow
		states []string
	)
	err = workload.Replay(e, cmds, func(s workload.ReplayStep) {
		st := e.Stats()
		row := replayRow{
			Line:    s.Command.Line,
			Command: s.Command.String(),
			Ref:     int(s.Ref),
			Begin:   st.Begin,
			End:     st.End,
			Live:    st.Live,
			State:   st.State.String(),
		}
		if s.Err != nil {
			row.Ref = -1
			row.Error = s.Err.Error()
		}
		rows = append(rows, row)
		states = append(states, colorState(st.State))
	})
	if err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("arena inconsistent after replay: %w", err)
	}

	if jsonOut {
		return printJSON(replayReport{Steps: rows, Arena: newStatsView(e.Stats())})
	}
	if quiet {
		return nil
	}

	table := newTable(os.Stdout, "Line", "Command", "Ref", "Result", "Begin", "End", "Live", "State")
	for i, row := range rows {
		ref, result := strconv.Itoa(row.Ref), okColor("ok")
		if row.Error != "" {
			ref, result = "-", failColor("OOM")
		}
		table.Append([]string{
			strconv.Itoa(row.Line),
			row.Command,
			ref,
			result,
			formatCursor(row.Begin),
			formatCursor(row.End),
			strconv.Itoa(row.Live),
			states[i],
		})
	}
	table.Render()
	renderStats(e.Stats())
	return nil
}
