package ring

import (
	"fmt"
	"log/slog"
	"strings"
)

// Backing selects where an engine's buffer lives.
type Backing int

const (
	// BackingHeap carves the buffer from the Go heap, aligned to MaxAlignment.
	BackingHeap Backing = iota

	// BackingMmap maps private anonymous memory outside the Go heap. Falls
	// back to the heap on platforms without mappings.
	BackingMmap
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingMmap:
		return "mmap"
	default:
		return fmt.Sprintf("Backing(%d)", int(b))
	}
}

// ParseBacking converts "heap" or "mmap" to a Backing.
func ParseBacking(s string) (Backing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "heap":
		return BackingHeap, nil
	case "mmap":
		return BackingMmap, nil
	default:
		return 0, fmt.Errorf("ring: unknown backing %q (want heap or mmap)", s)
	}
}

// Options configures an Engine. Capacity is passed to New separately since it
// is the one parameter every engine needs.
type Options struct {
	// Backing chooses the buffer source.
	// Default: BackingHeap
	Backing Backing

	// Checks turns on debug assertions in Deallocate: the record must be live
	// in the chain and the span must lie inside the buffer. Mismatches panic
	// with ErrContractViolation. Costs O(live) per deallocation.
	// Default: false
	Checks bool

	// Logger receives Debug records for wraps, resets, holes and failed
	// allocations.
	// Default: logger.L
	Logger *slog.Logger
}

// DefaultOptions returns the options used when New is given nil.
func DefaultOptions() *Options {
	return &Options{
		Backing: BackingHeap,
		Checks:  false,
	}
}
