package ring

// Arena is the allocate/deallocate contract shared by Engine and anything
// that wraps it (tracing, accounting) for code that only moves bytes.
type Arena interface {
	// Allocate returns size bytes aligned to alignment, or ErrOutOfMemory.
	Allocate(size, alignment int) (Ref, []byte, error)

	// Deallocate gives back an allocation. The arguments must match the
	// Allocate call exactly.
	Deallocate(ref Ref, size, alignment int)
}
