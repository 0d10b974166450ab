// Package ring provides a fixed-capacity, thread-safe arena that reuses one
// preallocated byte region as a ring.
//
// # Overview
//
// An Engine owns a single buffer and tracks one contiguous free run with a
// pair of cursors. Allocations are carved from the start of the free run;
// deallocations give bytes back only when they free the oldest (front) or
// newest (back) live allocation. This makes both operations O(1) with no
// free-list scanning, and suits allocation lifetimes that are roughly stack
// (LIFO) or queue (FIFO) ordered: per-frame scratch buffers, transient
// containers, request-scoped staging.
//
// # Usage Example
//
//	e, err := ring.New(64<<10, nil)
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//
//	ref, b, err := e.Allocate(512, ring.MinAlignment)
//	if errors.Is(err, ring.ErrOutOfMemory) {
//	    // back off; the engine never blocks or retries
//	}
//	copy(b, payload)
//
//	// Size and alignment must match the Allocate call.
//	e.Deallocate(ref, 512, ring.MinAlignment)
//
// # Memory Layout
//
// Each allocation is preceded by a 16-byte record holding prev/next links
// that chain live allocations in allocation order:
//
//	... | pad | prev | next | pad | data ............ | pad | prev | next | ...
//	          ^ record (aligned)  ^ Ref (aligned)
//
// The record is aligned to the request alignment, then the data is aligned
// again after it. Links and cursors are byte offsets; raw addresses exist
// only at the API boundary (Pointer, RefOf and the []byte views).
//
// # Free Run and Wraparound
//
// When nothing has been freed from the front, the free run extends to the
// end of the buffer. Once the front allocation is freed, the run also covers
// [0, end) at the start of the buffer, and a request that does not fit in
// the trailing span wraps around and is carved from offset 0.
//
// # Holes
//
// Freeing an allocation that is neither front nor back unlinks it from the
// chain but leaves its bytes outside the free run. Those bytes come back
// only when front or back frees sweep past them. Holes are never coalesced,
// so callers that free far out of order will see ErrOutOfMemory early.
//
// # Contract
//
// Deallocate takes the same size and alignment that were passed to Allocate;
// the engine stores neither. Double frees, foreign Refs and mismatched sizes
// are undefined behaviour. Options.Checks turns these into panics wrapping
// ErrContractViolation at O(live) cost per free.
//
// # Typed Allocation
//
// Allocator[T] multiplies element counts by sizeof(T) and returns []T.
// Allocators for different element types compare Equal when they share an
// engine, so memory from one may be released through another.
//
// # Thread Safety
//
// Every method takes the engine mutex for its whole duration. Calls never
// block waiting for space and never retry.
package ring
