package ring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// testAlign is at least MinAlignment on every platform and equals HeaderSize,
// so records and data never need padding in hand-computed layouts.
const testAlign = 16

// newTestEngine creates an engine that is closed when the test ends.
func newTestEngine(t testing.TB, capacity int, opts *Options) *Engine {
	t.Helper()
	e, err := New(capacity, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// mustAlloc allocates and fails the test on error.
func mustAlloc(t testing.TB, e *Engine, size, align int) Ref {
	t.Helper()
	ref, b, err := e.Allocate(size, align)
	require.NoError(t, err, "Allocate(%d, %d)", size, align)
	require.Len(t, b, size)
	return ref
}

// requirePanicIs runs fn and requires a panic whose value is an error
// matching target.
func requirePanicIs(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, target), "panic %v is not %v", err, target)
	}()
	fn()
}

// cursors captures the state a failed Allocate must not touch.
type cursors struct {
	begin, end, back, live int
}

func snapshot(e *Engine) cursors {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cursors{begin: e.begin, end: e.end, back: e.back, live: e.live}
}
