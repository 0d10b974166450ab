package ring

import (
	"fmt"
	"unsafe"

	"github.com/joshuapare/ringarena/internal/buf"
)

// Allocator is a typed view of an Engine: it sizes requests as
// count * sizeof(T), aligns them to max(alignof(T), MinAlignment) and hands
// back []T.
//
// The arena is invisible to the garbage collector, so T must not contain Go
// pointers (no pointers, slices, maps, strings, interfaces, channels or
// funcs).
//
// Allocators are values; copies and rebinds to other element types all
// share the same engine and compare Equal.
type Allocator[T any] struct {
	e *Engine
}

// For returns the Allocator for element type T backed by e.
func For[T any](e *Engine) Allocator[T] {
	return Allocator[T]{e: e}
}

// Rebind returns an Allocator for U sharing a's engine.
func Rebind[U, T any](a Allocator[T]) Allocator[U] {
	return Allocator[U]{e: a.e}
}

// Equal reports whether memory from a may be released through b. That holds
// whenever both delegate to the same engine, whatever their element types.
func Equal[T, U any](a Allocator[T], b Allocator[U]) bool {
	return a.e == b.e
}

// Engine returns the underlying engine.
func (a Allocator[T]) Engine() *Engine { return a.e }

// Alignment returns the alignment used for every request of this type.
func (a Allocator[T]) Alignment() int {
	var zero T
	return max(int(unsafe.Alignof(zero)), MinAlignment)
}

// Allocate returns n uninitialised elements.
func (a Allocator[T]) Allocate(n int) ([]T, error) {
	var zero T
	elem := int(unsafe.Sizeof(zero))
	size, ok := buf.Mul(n, elem)
	if !ok {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrBadSize, n, elem)
	}
	ref, _, err := a.e.Allocate(size, a.Alignment())
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(a.e.Pointer(ref)), n), nil
}

// AllocateZeroed is Allocate followed by clearing the elements; ring memory
// is recycled, so fresh allocations otherwise hold stale bytes.
func (a Allocator[T]) AllocateZeroed(n int) ([]T, error) {
	s, err := a.Allocate(n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// Deallocate releases s, which must be a slice returned by Allocate on an
// Equal allocator, unsliced. Its length is the element count given to
// Allocate.
func (a Allocator[T]) Deallocate(s []T) {
	var zero T
	ref, ok := a.e.RefOf(unsafe.Pointer(unsafe.SliceData(s)))
	if !ok {
		panic(fmt.Errorf("%w: slice does not point into this arena", ErrContractViolation))
	}
	a.e.Deallocate(ref, len(s)*int(unsafe.Sizeof(zero)), a.Alignment())
}
