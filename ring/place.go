package ring

import "github.com/joshuapare/ringarena/internal/format"

// carve finds where a request of size bytes goes, without mutating anything.
//
// The free run is one of three shapes:
//
//	end == noEnd   [begin, cap)              nothing has wrapped yet
//	end <  begin   [begin, cap) + [0, end)   live data sits in the middle
//	end >  begin   [begin, end)              live data sits on both sides
//
// Only the second shape may wrap: the trailing span is tried first and the
// leading span [0, end) second.
func (e *Engine) carve(size, alignment int) (meta, data int, wrapped, ok bool) {
	limit := len(e.buf)
	meta, data = format.Place(e.begin, alignment)

	switch {
	case e.end == noEnd:
		return meta, data, false, fits(data, size, limit)

	case e.end < e.begin:
		if fits(data, size, limit) {
			return meta, data, false, true
		}
		meta, data = format.Place(0, alignment)
		return meta, data, true, fits(data, size, e.end)

	default:
		return meta, data, false, fits(data, size, e.end)
	}
}

// fits reports whether [data, data+size) ends at or before bound. An exact
// fit is a fit.
func fits(data, size, bound int) bool {
	return data <= bound && bound-data >= size
}
