package ring

import "errors"

var (
	// ErrOutOfMemory indicates the free run cannot hold the request, either
	// because the ring is full or because neither the trailing nor the
	// wrapped-around span is large enough.
	ErrOutOfMemory = errors.New("ring: out of memory")

	// ErrBadAlignment indicates an alignment that is not a power of two in
	// [MinAlignment, MaxAlignment].
	ErrBadAlignment = errors.New("ring: bad alignment")

	// ErrBadSize indicates a negative or overflowing allocation size.
	ErrBadSize = errors.New("ring: bad size")

	// ErrBadCapacity indicates a non-positive engine capacity.
	ErrBadCapacity = errors.New("ring: capacity must be positive")

	// ErrClosed indicates use of an engine after Close.
	ErrClosed = errors.New("ring: engine closed")

	// ErrContractViolation is raised (as a panic) in checked mode when a
	// deallocation does not match a live allocation.
	ErrContractViolation = errors.New("ring: deallocate contract violated")

	// ErrCorrupt indicates Validate found inconsistent cursors or links.
	ErrCorrupt = errors.New("ring: corrupt allocation chain")
)
