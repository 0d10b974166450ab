// Package workload drives an arena with synthetic allocation patterns and
// scripted operation sequences.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/joshuapare/ringarena/ring"
)

// Pattern selects the lifetime discipline a run follows.
type Pattern int

const (
	// PatternLIFO pushes up to Window allocations and then pops them all,
	// newest first.
	PatternLIFO Pattern = iota

	// PatternFIFO keeps Window allocations live and frees the oldest before
	// each new one, rotating the free run around the buffer.
	PatternFIFO

	// PatternRandom frees a random live allocation half of the time. Interior
	// frees leave holes.
	PatternRandom

	// PatternFrame allocates a batch of scratch buffers per frame and frees
	// them oldest first at frame end. One carry allocation per frame survives
	// into the next frame.
	PatternFrame
)

var patternNames = map[Pattern]string{
	PatternLIFO:   "lifo",
	PatternFIFO:   "fifo",
	PatternRandom: "random",
	PatternFrame:  "frame",
}

func (p Pattern) String() string {
	if s, ok := patternNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// ParsePattern converts a pattern name to a Pattern.
func ParsePattern(s string) (Pattern, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range patternNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("workload: unknown pattern %q (want lifo, fifo, random or frame)", s)
}

// Patterns lists every pattern in declaration order.
func Patterns() []Pattern {
	return []Pattern{PatternLIFO, PatternFIFO, PatternRandom, PatternFrame}
}

// Config describes a synthetic run.
type Config struct {
	Pattern Pattern

	// Ops is the number of allocate calls to issue.
	Ops int

	// Request sizes are drawn uniformly from [MinSize, MaxSize].
	MinSize int
	MaxSize int

	// Alignment for every request. Zero means ring.MinAlignment.
	Alignment int

	// Window bounds live allocations for LIFO/FIFO and the batch size for
	// frames.
	Window int

	// Seed makes runs reproducible.
	Seed int64

	// Fill writes a per-allocation byte pattern and verifies it on free.
	Fill bool
}

// DefaultConfig returns a small FIFO run.
func DefaultConfig() Config {
	return Config{
		Pattern: PatternFIFO,
		Ops:     10000,
		MinSize: 16,
		MaxSize: 256,
		Window:  16,
		Seed:    1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Ops < 0:
		return fmt.Errorf("workload: negative op count %d", c.Ops)
	case c.MinSize < 0 || c.MaxSize < c.MinSize:
		return fmt.Errorf("workload: bad size range [%d, %d]", c.MinSize, c.MaxSize)
	case c.Window <= 0:
		return fmt.Errorf("workload: window must be positive, got %d", c.Window)
	}
	if _, ok := patternNames[c.Pattern]; !ok {
		return fmt.Errorf("workload: unknown pattern %v", c.Pattern)
	}
	return nil
}

// ErrClobbered is returned when Fill is set and an allocation's bytes
// changed while it was live.
var ErrClobbered = errors.New("workload: live allocation overwritten")

// Op names the kind of a Step.
type Op int

const (
	OpAlloc Op = iota
	OpFree
)

func (o Op) String() string {
	if o == OpFree {
		return "free"
	}
	return "alloc"
}

// Step reports one operation to an observer.
type Step struct {
	Index int
	Op    Op
	Ref   ring.Ref
	Size  int
	Err   error // ring.ErrOutOfMemory for rejected allocations
}

// Result summarises a run.
type Result struct {
	Pattern  Pattern
	Allocs   int // successful allocations
	Failures int // allocations rejected with ErrOutOfMemory
	Frees    int
	PeakLive int
	Bytes    int64 // sum of successful request sizes
}

type allocation struct {
	ref  ring.Ref
	size int
	b    []byte
	tag  byte
}

// runner holds the state of one Run.
type runner struct {
	arena   ring.Arena
	cfg     Config
	align   int
	rng     *rand.Rand
	observe func(Step)
	live    []allocation
	res     Result
	step    int
	tag     byte
}

// Run issues cfg.Ops allocations against a following cfg.Pattern, then frees
// whatever is still live so the arena ends as it started. observe, if not
// nil, sees every operation. Run stops early when ctx is cancelled.
func Run(ctx context.Context, a ring.Arena, cfg Config, observe func(Step)) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	r := &runner{
		arena:   a,
		cfg:     cfg,
		align:   cfg.Alignment,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		observe: observe,
		res:     Result{Pattern: cfg.Pattern},
	}
	if r.align == 0 {
		r.align = ring.MinAlignment
	}

	err := r.run(ctx)
	if drainErr := r.drain(); err == nil {
		err = drainErr
	}
	return r.res, err
}

func (r *runner) run(ctx context.Context) error {
	switch r.cfg.Pattern {
	case PatternLIFO:
		return r.lifo(ctx)
	case PatternFIFO:
		return r.fifo(ctx)
	case PatternRandom:
		return r.random(ctx)
	default:
		return r.frame(ctx)
	}
}

func (r *runner) lifo(ctx context.Context) error {
	for issued := 0; issued < r.cfg.Ops; {
		for range r.cfg.Window {
			if issued == r.cfg.Ops {
				break
			}
			if err := r.alloc(ctx); err != nil {
				return err
			}
			issued++
		}
		for len(r.live) > 0 {
			if err := r.free(len(r.live) - 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *runner) fifo(ctx context.Context) error {
	for range r.cfg.Ops {
		if len(r.live) >= r.cfg.Window {
			if err := r.free(0); err != nil {
				return err
			}
		}
		if err := r.alloc(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) random(ctx context.Context) error {
	for issued := 0; issued < r.cfg.Ops; {
		if len(r.live) > 0 && r.rng.Intn(2) == 0 {
			if err := r.free(r.rng.Intn(len(r.live))); err != nil {
				return err
			}
			continue
		}
		if err := r.alloc(ctx); err != nil {
			return err
		}
		issued++
	}
	return nil
}

func (r *runner) frame(ctx context.Context) error {
	carried := 0 // live carry allocations at the front of r.live
	for issued := 0; issued < r.cfg.Ops; {
		batch := 1 + r.rng.Intn(r.cfg.Window)
		start := len(r.live)
		for range batch {
			if issued == r.cfg.Ops {
				break
			}
			if err := r.alloc(ctx); err != nil {
				return err
			}
			issued++
		}

		// Keep the newest allocation of this frame as the carry; release the
		// previous frame's carry and this frame's scratch, oldest first.
		keep := len(r.live) > start
		for range carried {
			if err := r.free(0); err != nil {
				return err
			}
		}
		scratch := len(r.live)
		if keep {
			scratch--
		}
		for range scratch {
			if err := r.free(0); err != nil {
				return err
			}
		}
		carried = len(r.live)
	}
	return nil
}

// alloc issues one request. Out-of-memory is counted, not returned.
func (r *runner) alloc(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	size := r.cfg.MinSize
	if span := r.cfg.MaxSize - r.cfg.MinSize; span > 0 {
		size += r.rng.Intn(span + 1)
	}

	ref, b, err := r.arena.Allocate(size, r.align)
	r.emit(Step{Op: OpAlloc, Ref: ref, Size: size, Err: err})
	if errors.Is(err, ring.ErrOutOfMemory) {
		r.res.Failures++
		return nil
	}
	if err != nil {
		return err
	}

	r.tag++
	if r.cfg.Fill {
		for i := range b {
			b[i] = r.tag
		}
	}
	r.live = append(r.live, allocation{ref: ref, size: size, b: b, tag: r.tag})
	r.res.Allocs++
	r.res.Bytes += int64(size)
	r.res.PeakLive = max(r.res.PeakLive, len(r.live))
	return nil
}

// free releases r.live[i].
func (r *runner) free(i int) error {
	a := r.live[i]
	var err error
	if r.cfg.Fill {
		for j, c := range a.b {
			if c != a.tag {
				err = fmt.Errorf("%w: ref %d byte %d", ErrClobbered, a.ref, j)
				break
			}
		}
	}
	r.arena.Deallocate(a.ref, a.size, r.align)
	r.live = append(r.live[:i], r.live[i+1:]...)
	r.res.Frees++
	r.emit(Step{Op: OpFree, Ref: a.ref, Size: a.size})
	return err
}

// drain frees everything still live, oldest first.
func (r *runner) drain() error {
	var first error
	for len(r.live) > 0 {
		if err := r.free(0); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *runner) emit(s Step) {
	s.Index = r.step
	r.step++
	if r.observe != nil {
		r.observe(s)
	}
}
