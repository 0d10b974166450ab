package ring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// TestEngine_ConcurrentUse hammers one engine from several goroutines. Each
// goroutine frees its own allocations newest first, so the engine sees front,
// back and interior frees interleaved. Run with -race.
func TestEngine_ConcurrentUse(t *testing.T) {
	const (
		workers = 8
		rounds  = 500
		size    = 40
	)
	opts := DefaultOptions()
	opts.Checks = true
	e := newTestEngine(t, 8192, opts)

	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			tag := byte(w + 1)
			var mine [][]byte
			var refs []Ref
			for r := range rounds {
				for range 1 + r%4 {
					ref, b, err := e.Allocate(size, testAlign)
					if errors.Is(err, ErrOutOfMemory) {
						break
					}
					if err != nil {
						return err
					}
					for i := range b {
						b[i] = tag
					}
					mine = append(mine, b)
					refs = append(refs, ref)
				}
				for i := len(mine) - 1; i >= 0; i-- {
					for _, c := range mine[i] {
						if c != tag {
							return fmt.Errorf("worker %d: ref %d clobbered", w, refs[i])
						}
					}
					e.Deallocate(refs[i], size, testAlign)
				}
				mine, refs = mine[:0], refs[:0]
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	st := e.Stats()
	require.Equal(t, StateEmpty, st.State)
	require.Equal(t, st.AllocCalls-st.Failures, st.FreeCalls)
	require.NoError(t, e.Validate())
}

func TestEngine_ConcurrentStatsAndValidate(t *testing.T) {
	e := newTestEngine(t, 4096, nil)

	var g errgroup.Group
	g.Go(func() error {
		for range 1000 {
			ref, _, err := e.Allocate(64, testAlign)
			if err != nil {
				return err
			}
			e.Deallocate(ref, 64, testAlign)
		}
		return nil
	})
	g.Go(func() error {
		for range 1000 {
			if err := e.Validate(); err != nil {
				return err
			}
			_ = e.Stats()
		}
		return nil
	})
	require.NoError(t, g.Wait())
}
