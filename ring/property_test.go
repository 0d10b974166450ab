package ring

import (
	"fmt"
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ringarena/internal/format"
)

// liveSpan is the test's model of one live allocation.
type liveSpan struct {
	ref   Ref
	size  int
	align int
	tag   byte
}

func (s liveSpan) lo() int { return format.RecordFor(int(s.ref), s.align) }
func (s liveSpan) hi() int { return int(s.ref) + s.size }

// freeSegments returns the free run as up to two half-open ranges.
func freeSegments(st Stats) [][2]int {
	switch {
	case st.Begin == st.End:
		return nil
	case st.End == -1:
		return [][2]int{{st.Begin, st.Capacity}}
	case st.End < st.Begin:
		return [][2]int{{st.Begin, st.Capacity}, {0, st.End}}
	default:
		return [][2]int{{st.Begin, st.End}}
	}
}

func overlaps(a0, a1, b0, b1 int) bool {
	return a0 < b1 && b0 < a1
}

// checkModel verifies the engine against the model: links are sound, live
// spans are disjoint from each other and from the free run, and every live
// allocation still holds the bytes written into it.
func checkModel(t *testing.T, e *Engine, live []liveSpan, step int) {
	t.Helper()
	require.NoError(t, e.Validate(), "step %d", step)

	st := e.Stats()
	require.Equal(t, len(live), st.Live, "step %d", step)
	free := freeSegments(st)

	for i, a := range live {
		for _, seg := range free {
			require.False(t, overlaps(a.lo(), a.hi(), seg[0], seg[1]),
				"step %d: live [%d,%d) overlaps free run [%d,%d)", step, a.lo(), a.hi(), seg[0], seg[1])
		}
		for _, b := range live[i+1:] {
			require.False(t, overlaps(a.lo(), a.hi(), b.lo(), b.hi()),
				"step %d: live [%d,%d) overlaps [%d,%d)", step, a.lo(), a.hi(), b.lo(), b.hi())
		}
		data := unsafe.Slice((*byte)(e.Pointer(a.ref)), a.size)
		for j, c := range data {
			if c != a.tag {
				require.Failf(t, "clobbered", "step %d: ref %d byte %d = %#x, want %#x",
					step, a.ref, j, c, a.tag)
			}
		}
	}
}

func TestProperty_RandomAllocFree(t *testing.T) {
	for _, seed := range []int64{42, 7, 12345} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			runRandomOps(t, seed, false)
		})
	}
}

func TestProperty_RandomAllocFreeChecked(t *testing.T) {
	runRandomOps(t, 99, true)
}

func runRandomOps(t *testing.T, seed int64, checked bool) {
	const (
		capacity = 4096
		steps    = 2000
	)
	opts := DefaultOptions()
	opts.Checks = checked
	e := newTestEngine(t, capacity, opts)

	rng := rand.New(rand.NewSource(seed)) // Fixed seed for reproducibility
	var live []liveSpan
	var tag byte

	release := func(i int) {
		s := live[i]
		e.Deallocate(s.ref, s.size, s.align)
		live = append(live[:i], live[i+1:]...)
	}

	for step := range steps {
		switch op := rng.Intn(10); {
		case op < 5 || len(live) == 0:
			size := rng.Intn(200)
			align := MinAlignment << rng.Intn(4)
			ref, b, err := e.Allocate(size, align)
			if err != nil {
				require.ErrorIs(t, err, ErrOutOfMemory, "step %d", step)
				break
			}
			require.Zero(t, int(ref)%align, "step %d: ref %d not aligned to %d", step, ref, align)
			require.Zero(t, uintptr(e.Pointer(ref))%uintptr(align), "step %d", step)

			tag++
			for i := range b {
				b[i] = tag
			}
			live = append(live, liveSpan{ref: ref, size: size, align: align, tag: tag})

		case op < 7:
			release(0)

		case op < 9:
			release(len(live) - 1)

		default:
			release(rng.Intn(len(live)))
		}

		checkModel(t, e, live, step)
	}

	for len(live) > 0 {
		release(rng.Intn(len(live)))
	}
	st := e.Stats()
	require.Equal(t, StateEmpty, st.State)
	require.Equal(t, 0, st.Begin)
	require.Equal(t, -1, st.End)

	// An emptied engine hands out its whole capacity again.
	ref := mustAlloc(t, e, capacity-HeaderSize, MinAlignment)
	require.Equal(t, Ref(HeaderSize), ref)
}
