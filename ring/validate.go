package ring

import (
	"fmt"

	"github.com/joshuapare/ringarena/internal/format"
)

// Validate walks the allocation chain from the back and checks that the
// cursors and links are consistent:
//
//   - an engine with no live allocations has reset cursors
//   - every record is in bounds, aligned, and its next link names the record
//     visited before it
//   - the front record has no prev link and the chain length equals Live
//   - begin and end lie inside the buffer
//
// It holds the engine lock for O(live) time and is meant for tests and
// debugging, not hot paths.
func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.buf == nil {
		return ErrClosed
	}
	return e.validateLocked()
}

func (e *Engine) validateLocked() error {
	if e.begin < 0 || e.begin > len(e.buf) {
		return fmt.Errorf("%w: begin %d outside [0, %d]", ErrCorrupt, e.begin, len(e.buf))
	}
	if e.end != noEnd && (e.end < 0 || e.end > len(e.buf)) {
		return fmt.Errorf("%w: end %d outside [0, %d]", ErrCorrupt, e.end, len(e.buf))
	}

	if e.back == format.None {
		if e.live != 0 {
			return fmt.Errorf("%w: no back record but %d live", ErrCorrupt, e.live)
		}
		if e.begin != 0 || e.end != noEnd {
			return fmt.Errorf("%w: empty engine has cursors begin=%d end=%d",
				ErrCorrupt, e.begin, e.end)
		}
		return nil
	}

	count := 0
	want := format.None // next link expected on the record being visited
	for off := e.back; off != format.None; {
		rec, err := format.CheckRecord(e.buf, off, MinAlignment)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if rec.Next != want {
			return fmt.Errorf("%w: record %d has next=%d, want %d", ErrCorrupt, off, rec.Next, want)
		}
		count++
		if count > e.live {
			return fmt.Errorf("%w: chain longer than %d live allocations", ErrCorrupt, e.live)
		}
		want, off = off, rec.Prev
	}
	if count != e.live {
		return fmt.Errorf("%w: chain has %d records, %d live", ErrCorrupt, count, e.live)
	}
	return nil
}
