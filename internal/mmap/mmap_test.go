package mmap

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func aligned(b []byte) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))%Align == 0
}

func TestHeap(t *testing.T) {
	for _, size := range []int{1, 100, Align, 3*Align + 7} {
		data, release, err := Heap(size)
		require.NoError(t, err)
		require.Len(t, data, size)
		require.Equal(t, size, cap(data), "capacity must be clipped")
		require.True(t, aligned(data), "heap region of %d bytes is not aligned", size)
		require.NoError(t, release())
	}
}

func TestAnon(t *testing.T) {
	data, release, err := Anon(2 * Align)
	require.NoError(t, err)
	require.Len(t, data, 2*Align)
	require.True(t, aligned(data))

	// Fresh mappings are zero-filled and writable.
	require.Equal(t, len(data), bytes.Count(data, []byte{0}))
	data[0], data[len(data)-1] = 0xAA, 0x55

	require.NoError(t, release())
	require.NoError(t, release(), "second release should be a no-op")
}

func TestRejectsNonPositiveSize(t *testing.T) {
	_, _, err := Heap(0)
	require.ErrorIs(t, err, ErrSize)
	_, _, err = Anon(-1)
	require.ErrorIs(t, err, ErrSize)
}
