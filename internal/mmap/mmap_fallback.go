//go:build !unix && !windows

package mmap

// Supported reports whether Anon maps memory outside the Go heap.
const Supported = false

// Anon falls back to a heap region when mapping is not available.
func Anon(size int) ([]byte, func() error, error) {
	return Heap(size)
}
