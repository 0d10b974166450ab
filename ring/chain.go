package ring

import (
	"fmt"

	"github.com/joshuapare/ringarena/internal/buf"
	"github.com/joshuapare/ringarena/internal/format"
)

// link writes a fresh record at meta and appends it to the back of the chain.
func (e *Engine) link(meta int) {
	format.PutRecord(e.buf, meta, format.Record{Prev: e.back, Next: format.None})
	if e.back != format.None {
		format.SetNext(e.buf, e.back, meta)
	}
	e.back = meta
}

// walk visits live records from newest to oldest until fn returns false.
// It stops early after live+1 steps so a cyclic chain cannot hang it.
func (e *Engine) walk(fn func(meta int, rec format.Record) bool) {
	steps := 0
	for off := e.back; off != format.None && steps <= e.live; steps++ {
		if !buf.Within(len(e.buf), off, format.HeaderSize) {
			return
		}
		rec := format.ReadRecord(e.buf, off)
		if !fn(off, rec) {
			return
		}
		off = rec.Prev
	}
}

// mustBeLive panics unless meta is a live record and [data, data+size) lies
// in the buffer.
func (e *Engine) mustBeLive(data, size, alignment, meta int) {
	if err := checkAlignment(alignment); err != nil {
		panic(fmt.Errorf("%w: %w", ErrContractViolation, err))
	}
	if size < 0 || !buf.Within(len(e.buf), data, size) || meta < 0 {
		panic(fmt.Errorf("%w: span [%d, +%d) outside buffer of %d bytes",
			ErrContractViolation, data, size, len(e.buf)))
	}
	found := false
	e.walk(func(off int, _ format.Record) bool {
		found = off == meta
		return !found
	})
	if !found {
		panic(fmt.Errorf("%w: no live allocation at %d (double free or foreign ref)",
			ErrContractViolation, data))
	}
}
