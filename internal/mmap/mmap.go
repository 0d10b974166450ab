// Package mmap provides the backing regions for ring arenas: anonymous
// private mappings where the platform has them, and page-aligned heap slices
// everywhere else. Every region returned here starts on an Align boundary.
package mmap

import (
	"errors"
	"fmt"
	"unsafe"
)

// Align is the guaranteed alignment of a region's first byte.
const Align = 4096

// ErrSize indicates a non-positive region size.
var ErrSize = errors.New("mmap: region size must be positive")

// Heap returns a zeroed region of size bytes carved from the Go heap and
// aligned to Align. The release function is a no-op; the garbage collector
// reclaims the region once it is unreachable.
func Heap(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("%w: %d", ErrSize, size)
	}
	raw := make([]byte, size+Align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := int(-base & (Align - 1))
	return raw[pad : pad+size : pad+size], func() error { return nil }, nil
}
