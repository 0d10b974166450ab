package ring

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"github.com/joshuapare/ringarena/internal/buf"
	"github.com/joshuapare/ringarena/internal/format"
	"github.com/joshuapare/ringarena/internal/logger"
	"github.com/joshuapare/ringarena/internal/mmap"
)

// Ref identifies an allocation by the offset of its data within the arena.
type Ref int

// maxAlign has the strictest alignment of any Go scalar.
type maxAlign struct {
	_ uint64
	_ float64
	_ complex128
	_ uintptr
	_ unsafe.Pointer
}

const (
	// MinAlignment is the platform's maximum natural alignment. Requests may
	// not ask for less, so every record lands on a naturally aligned offset.
	MinAlignment = int(unsafe.Alignof(maxAlign{}))

	// MaxAlignment is the largest supported alignment. Buffer bases are
	// aligned to it, so offset alignment implies address alignment.
	MaxAlignment = mmap.Align

	// HeaderSize is the per-allocation record overhead before padding.
	HeaderSize = format.HeaderSize
)

// noEnd is the end cursor value meaning the free run reaches the physical
// end of the buffer.
const noEnd = format.None

// Engine is a fixed-capacity ring arena. Allocations are carved from the
// front of a single free run; deallocations give space back only when they
// hit the oldest (front) or newest (back) live allocation. Freeing anything
// in between unlinks it but leaves its bytes as a hole until the surrounding
// allocations are freed.
//
// All methods are safe for concurrent use; every call holds one mutex for
// its full duration.
type Engine struct {
	mu sync.Mutex

	buf     []byte
	release func() error

	// Immutable after New so Pointer and RefOf need no lock.
	base     unsafe.Pointer
	capacity int
	backing  Backing

	// begin is where the next record is carved from. end bounds the free
	// run; noEnd means it extends to len(buf). begin == end means full.
	begin int
	end   int

	// back is the record offset of the newest live allocation, or format.None.
	back int
	live int

	checks bool
	log    *slog.Logger
	stats  counters
}

// New creates an engine owning a buffer of capacity bytes. A nil opts uses
// DefaultOptions.
func New(capacity int, opts *Options) (*Engine, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, capacity)
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	log := opts.Logger
	if log == nil {
		log = logger.L
	}

	var (
		region  []byte
		release func() error
		err     error
	)
	switch opts.Backing {
	case BackingMmap:
		if !mmap.Supported {
			log.Debug("ring: anonymous mappings unavailable, using heap", "capacity", capacity)
		}
		region, release, err = mmap.Anon(capacity)
	case BackingHeap:
		region, release, err = mmap.Heap(capacity)
	default:
		return nil, fmt.Errorf("ring: unknown backing %v", opts.Backing)
	}
	if err != nil {
		return nil, fmt.Errorf("ring: acquire %s buffer: %w", opts.Backing, err)
	}

	e := &Engine{
		buf:      region,
		release:  release,
		base:     unsafe.Pointer(unsafe.SliceData(region)),
		capacity: capacity,
		backing:  opts.Backing,
		begin:    0,
		end:      noEnd,
		back:     format.None,
		checks:   opts.Checks,
		log:      log,
	}
	log.Debug("ring: engine created",
		"capacity", capacity, "backing", opts.Backing.String(), "checks", opts.Checks)
	return e, nil
}

// Capacity returns the size of the buffer in bytes.
func (e *Engine) Capacity() int { return e.capacity }

// Allocate carves size bytes aligned to alignment out of the free run.
// It returns the allocation's Ref and a view of its bytes whose capacity is
// clipped to size. The contents are whatever a previous allocation left.
//
// alignment must be a power of two in [MinAlignment, MaxAlignment]. When the
// request does not fit, ErrOutOfMemory is returned and the engine is left
// exactly as it was.
func (e *Engine) Allocate(size, alignment int) (Ref, []byte, error) {
	if err := checkAlignment(alignment); err != nil {
		return 0, nil, err
	}
	if size < 0 {
		return 0, nil, fmt.Errorf("%w: %d", ErrBadSize, size)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return 0, nil, ErrClosed
	}
	e.stats.allocCalls++

	if e.begin == e.end {
		return 0, nil, e.outOfMemory(size, alignment)
	}

	meta, data, wrapped, ok := e.carve(size, alignment)
	if !ok {
		return 0, nil, e.outOfMemory(size, alignment)
	}

	e.link(meta)
	e.begin = data + size
	e.live++

	if wrapped {
		e.stats.wraps++
		e.log.Debug("ring: wrapped to buffer start",
			"size", size, "alignment", alignment, "begin", e.begin, "end", e.end)
	}

	view, _ := buf.Span(e.buf, data, size)
	return Ref(data), view, nil
}

// Deallocate returns an allocation to the engine. ref, size and alignment
// must be exactly the values used for (and returned by) the matching
// Allocate call; the engine keeps no size bookkeeping of its own. Freeing
// twice, freeing a foreign Ref or passing a different size or alignment
// corrupts the engine silently unless Options.Checks is set, in which case
// it panics with ErrContractViolation.
func (e *Engine) Deallocate(ref Ref, size, alignment int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		panic(ErrClosed)
	}

	data := int(ref)
	meta := format.RecordFor(data, alignment)
	if e.checks {
		e.mustBeLive(data, size, alignment, meta)
	}

	rec := format.ReadRecord(e.buf, meta)
	e.stats.freeCalls++
	e.live--

	switch {
	case rec.IsFront() && rec.IsBack():
		// Last live allocation: the whole buffer is free again.
		e.reset()

	case rec.IsFront():
		// The freed bytes join the free run from its far end.
		e.end = data + size
		format.SetPrev(e.buf, rec.Next, format.None)

	case rec.IsBack():
		// The freed bytes join the free run from its near end.
		e.begin = meta
		e.back = rec.Prev
		format.SetNext(e.buf, rec.Prev, format.None)

	default:
		// Interior free: unlink only. The bytes stay outside the free run
		// until front/back frees sweep past them.
		format.SetNext(e.buf, rec.Prev, rec.Next)
		format.SetPrev(e.buf, rec.Next, rec.Prev)
		e.stats.holes++
		e.log.Debug("ring: interior free left a hole",
			"ref", data, "size", size, "live", e.live)
	}
}

// Pointer returns the address of the allocation identified by ref.
func (e *Engine) Pointer(ref Ref) unsafe.Pointer {
	return unsafe.Add(e.base, int(ref))
}

// RefOf maps an address inside the arena back to its Ref. ok is false for
// addresses outside [base, base+Capacity].
func (e *Engine) RefOf(p unsafe.Pointer) (ref Ref, ok bool) {
	start, addr := uintptr(e.base), uintptr(p)
	if addr < start || addr-start > uintptr(e.capacity) {
		return 0, false
	}
	return Ref(addr - start), true
}

// Close releases the buffer. Every view handed out by Allocate becomes
// invalid. Allocate returns ErrClosed afterwards; Deallocate panics.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return nil
	}
	err := e.release()
	e.buf, e.release = nil, nil
	e.log.Debug("ring: engine closed", "capacity", e.capacity, "live", e.live)
	return err
}

// reset returns the cursors and chain to the empty state.
func (e *Engine) reset() {
	e.begin = 0
	e.end = noEnd
	e.back = format.None
	e.stats.resets++
	e.log.Debug("ring: reset to empty")
}

func (e *Engine) outOfMemory(size, alignment int) error {
	e.stats.failures++
	free := e.freeRunLocked()
	e.log.Debug("ring: allocation failed",
		"size", size, "alignment", alignment, "free", free, "begin", e.begin, "end", e.end)
	return fmt.Errorf("%w: size=%d alignment=%d free=%d", ErrOutOfMemory, size, alignment, free)
}

func checkAlignment(alignment int) error {
	if !format.IsPow2(alignment) || alignment < MinAlignment || alignment > MaxAlignment {
		return fmt.Errorf("%w: %d (want power of two in [%d, %d])",
			ErrBadAlignment, alignment, MinAlignment, MaxAlignment)
	}
	return nil
}

// Compile-time interface check
var _ Arena = (*Engine)(nil)
