// Package format describes the in-buffer layout of ring allocation records:
// the fixed-size header that precedes every allocation and the alignment
// arithmetic used to place it. It works purely on byte offsets so the engine
// never needs raw pointers internally.
package format

const (
	// HeaderSize is the size of an allocation record.
	// Layout (little-endian):
	//   0x00  prev link (u64)
	//   0x08  next link (u64)
	HeaderSize = 16

	// PrevOffset is the offset of the prev link within a record.
	PrevOffset = 0x00

	// NextOffset is the offset of the next link within a record.
	NextOffset = 0x08
)

// None is the decoded value of an empty link.
const None = -1
