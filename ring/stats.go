package ring

import "fmt"

// State summarises how much of the ring is in use.
type State int

const (
	// StateEmpty means no live allocations and reset cursors.
	StateEmpty State = iota
	// StatePartial means live allocations and a non-empty free run.
	StatePartial
	// StateFull means begin == end: the free run is empty.
	StateFull
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateFull:
		return "full"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// counters holds lifetime operation counts.
type counters struct {
	allocCalls int64 // Allocate calls that passed argument checks
	freeCalls  int64 // Deallocate calls
	failures   int64 // Allocate calls that returned ErrOutOfMemory
	wraps      int64 // allocations placed by wrapping to offset 0
	resets     int64 // frees of the last live allocation
	holes      int64 // interior frees
}

// Stats is a point-in-time snapshot of an engine.
type Stats struct {
	Capacity int     // Buffer size in bytes
	Backing  Backing // Where the buffer lives
	State    State   // Empty, partial or full
	Begin    int     // Offset the next allocation is carved from
	End      int     // End of the free run, or -1 when it reaches Capacity
	Live     int     // Live allocations
	FreeRun  int     // Bytes in the tracked free run, before header/padding
	Wrapping bool    // Free run spans the buffer end and restarts at 0

	AllocCalls int64
	FreeCalls  int64
	Failures   int64
	Wraps      int64
	Resets     int64
	Holes      int64
}

// Utilization returns the fraction of the buffer outside the free run
// (live data, headers, padding and holes), between 0 and 1.
func (s Stats) Utilization() float64 {
	if s.Capacity == 0 {
		return 0
	}
	return float64(s.Capacity-s.FreeRun) / float64(s.Capacity)
}

// Stats returns a snapshot of the engine's cursors and counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		Capacity:   e.capacity,
		Backing:    e.backing,
		State:      e.stateLocked(),
		Begin:      e.begin,
		End:        e.end,
		Live:       e.live,
		FreeRun:    e.freeRunLocked(),
		Wrapping:   e.end != noEnd && e.end < e.begin,
		AllocCalls: e.stats.allocCalls,
		FreeCalls:  e.stats.freeCalls,
		Failures:   e.stats.failures,
		Wraps:      e.stats.wraps,
		Resets:     e.stats.resets,
		Holes:      e.stats.holes,
	}
}

// Live returns the number of live allocations.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

func (e *Engine) stateLocked() State {
	switch {
	case e.live == 0:
		return StateEmpty
	case e.begin == e.end:
		return StateFull
	default:
		return StatePartial
	}
}

func (e *Engine) freeRunLocked() int {
	switch {
	case e.begin == e.end:
		return 0
	case e.end == noEnd:
		return e.capacity - e.begin
	case e.end < e.begin:
		return e.capacity - e.begin + e.end
	default:
		return e.end - e.begin
	}
}
