// Package profiler collects wall-clock samples from repeated Start/End pairs
// and summarises them.
package profiler

import (
	"errors"
	"math"
	"slices"
	"time"
)

// ErrNotStarted is returned by End without a matching Start.
var ErrNotStarted = errors.New("profiler: End without Start")

// Profile summarises a set of samples.
type Profile struct {
	Samples           int
	Mean              time.Duration
	StandardDeviation time.Duration
	Highest           time.Duration
	Lowest            time.Duration
	Median            time.Duration
	Total             time.Duration
}

// Profiler records durations between Start and End. It is not safe for
// concurrent use; give each goroutine its own and Merge them.
type Profiler struct {
	now     func() time.Time
	started time.Time
	running bool
	samples []time.Duration
}

// New returns an empty profiler using the wall clock.
func New() *Profiler {
	return &Profiler{now: time.Now}
}

// Start begins a sample. Calling Start twice restarts the sample.
func (p *Profiler) Start() {
	p.started = p.now()
	p.running = true
}

// End finishes the sample begun by Start.
func (p *Profiler) End() error {
	if !p.running {
		return ErrNotStarted
	}
	p.samples = append(p.samples, p.now().Sub(p.started))
	p.running = false
	return nil
}

// Record adds a sample measured elsewhere.
func (p *Profiler) Record(d time.Duration) {
	p.samples = append(p.samples, d)
}

// Time runs fn once as a sample.
func (p *Profiler) Time(fn func()) {
	p.Start()
	fn()
	_ = p.End()
}

// Merge appends other's samples.
func (p *Profiler) Merge(other *Profiler) {
	p.samples = append(p.samples, other.samples...)
}

// Len returns the number of samples recorded since the last Flush.
func (p *Profiler) Len() int { return len(p.samples) }

// Flush summarises the recorded samples and clears them.
func (p *Profiler) Flush() Profile {
	prof := Summarize(p.samples)
	p.samples = p.samples[:0]
	p.running = false
	return prof
}

// Summarize computes a Profile over samples without modifying them. The
// standard deviation is the population form. The median of an even count is
// the mean of the two middle samples.
func Summarize(samples []time.Duration) Profile {
	n := len(samples)
	if n == 0 {
		return Profile{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, s := range sorted {
		total += s
	}
	mean := float64(total) / float64(n)

	var sq float64
	for _, s := range sorted {
		d := float64(s) - mean
		sq += d * d
	}

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Profile{
		Samples:           n,
		Mean:              time.Duration(math.Round(mean)),
		StandardDeviation: time.Duration(math.Round(math.Sqrt(sq / float64(n)))),
		Highest:           sorted[n-1],
		Lowest:            sorted[0],
		Median:            median,
		Total:             total,
	}
}
