// Package buf contains overflow-checked offset arithmetic for carving spans
// out of a fixed byte region.
package buf

import (
	"math"
	"math/bits"
)

// Add returns a+b, with ok = false when the result would overflow int.
func Add(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Mul returns a*b for non-negative operands, with ok = false on overflow or
// when either operand is negative. Used for count * elementSize.
func Mul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// Within reports whether [off, off+n) lies inside a region of size bufLen.
func Within(bufLen, off, n int) bool {
	if off < 0 || n < 0 || off > bufLen {
		return false
	}
	end, ok := Add(off, n)
	return ok && end <= bufLen
}

// Span returns b[off:off+n] with its capacity clipped to n, so appends on the
// result can never spill into neighbouring bytes.
func Span(b []byte, off, n int) ([]byte, bool) {
	if !Within(len(b), off, n) {
		return nil, false
	}
	return b[off : off+n : off+n], true
}
