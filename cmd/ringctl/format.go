package main

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/ringarena/ring"
)

var (
	printer = message.NewPrinter(language.English)

	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	failColor = color.New(color.FgHiRed).SprintFunc()
)

// formatBytes renders n in IEC units, e.g. "64 KiB".
func formatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// formatNumber renders n with thousands separators.
func formatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// formatCursor renders a cursor, spelling out the free-run sentinel.
func formatCursor(off int) string {
	if off < 0 {
		return "cap"
	}
	return strconv.Itoa(off)
}

// formatDuration rounds to a precision that suits the magnitude.
func formatDuration(d time.Duration) string {
	if d >= time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	return d.String()
}

// colorState colours an engine state for terminal output.
func colorState(s ring.State) string {
	switch s {
	case ring.StateEmpty:
		return okColor(s.String())
	case ring.StateFull:
		return failColor(s.String())
	default:
		return warnColor(s.String())
	}
}

// colorResult colours an allocation outcome.
func colorResult(err error) string {
	if err != nil {
		return failColor("OOM")
	}
	return okColor("ok")
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	return table
}

// statsView is the JSON shape of ring.Stats.
type statsView struct {
	Capacity    int     `json:"capacity"`
	Backing     string  `json:"backing"`
	State       string  `json:"state"`
	Begin       int     `json:"begin"`
	End         int     `json:"end"`
	Live        int     `json:"live"`
	FreeRun     int     `json:"free_run"`
	Utilization float64 `json:"utilization"`
	AllocCalls  int64   `json:"alloc_calls"`
	FreeCalls   int64   `json:"free_calls"`
	Failures    int64   `json:"failures"`
	Wraps       int64   `json:"wraps"`
	Resets      int64   `json:"resets"`
	Holes       int64   `json:"holes"`
}

func newStatsView(st ring.Stats) statsView {
	return statsView{
		Capacity:    st.Capacity,
		Backing:     st.Backing.String(),
		State:       st.State.String(),
		Begin:       st.Begin,
		End:         st.End,
		Live:        st.Live,
		FreeRun:     st.FreeRun,
		Utilization: st.Utilization(),
		AllocCalls:  st.AllocCalls,
		FreeCalls:   st.FreeCalls,
		Failures:    st.Failures,
		Wraps:       st.Wraps,
		Resets:      st.Resets,
		Holes:       st.Holes,
	}
}

// renderStats prints an engine snapshot as a two-column table.
func renderStats(st ring.Stats) {
	if quiet {
		return
	}
	table := newTable(os.Stdout, "Arena", "Value")
	table.AppendBulk([][]string{
		{"Capacity", formatBytes(int64(st.Capacity))},
		{"Backing", st.Backing.String()},
		{"State", colorState(st.State)},
		{"Begin", formatCursor(st.Begin)},
		{"End", formatCursor(st.End)},
		{"Live", formatNumber(int64(st.Live))},
		{"Free run", formatBytes(int64(st.FreeRun))},
		{"Utilization", strconv.FormatFloat(st.Utilization()*100, 'f', 1, 64) + "%"},
		{"Allocations", formatNumber(st.AllocCalls)},
		{"Frees", formatNumber(st.FreeCalls)},
		{"Failures", formatNumber(st.Failures)},
		{"Wraps", formatNumber(st.Wraps)},
		{"Resets", formatNumber(st.Resets)},
		{"Holes", formatNumber(st.Holes)},
	})
	table.Render()
}
