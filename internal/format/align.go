package format

// Alignment utilities. Every alignment handled here is a power of two.

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp returns off rounded up to the next multiple of align.
//
// Example:
//
//	AlignUp(1, 16)  = 16
//	AlignUp(16, 16) = 16
//	AlignUp(17, 16) = 32
func AlignUp(off, align int) int {
	mask := align - 1
	return (off + mask) & ^mask
}

// AlignDown returns off rounded down to a multiple of align.
//
// Example:
//
//	AlignDown(31, 16) = 16
//	AlignDown(32, 16) = 32
func AlignDown(off, align int) int {
	return off & ^(align - 1)
}

// Place computes where a record and its data land when carving from start.
// The record is aligned first, then the data is aligned again after the
// header, so headers that are not a multiple of align still leave the data
// correctly aligned.
func Place(start, align int) (meta, data int) {
	meta = AlignUp(start, align)
	data = AlignUp(meta+HeaderSize, align)
	return meta, data
}

// RecordFor recovers the record offset from a data offset produced by Place
// with the same alignment.
func RecordFor(data, align int) int {
	return AlignDown(data-HeaderSize, align)
}
