package format

import "fmt"

// Record is a decoded allocation header. Prev and Next hold record offsets,
// or None.
type Record struct {
	Prev int
	Next int
}

// IsFront reports whether the record has no predecessor.
func (r Record) IsFront() bool { return r.Prev == None }

// IsBack reports whether the record has no successor.
func (r Record) IsBack() bool { return r.Next == None }

// Links are stored as offset+1 so a zeroed header decodes as unlinked.
func encodeLink(off int) uint64 {
	if off == None {
		return 0
	}
	return uint64(off) + 1
}

func decodeLink(v uint64) int {
	if v == 0 {
		return None
	}
	return int(v - 1)
}

// PutRecord writes r at off.
func PutRecord(b []byte, off int, r Record) {
	PutU64(b, off+PrevOffset, encodeLink(r.Prev))
	PutU64(b, off+NextOffset, encodeLink(r.Next))
}

// ReadRecord decodes the record at off.
func ReadRecord(b []byte, off int) Record {
	return Record{
		Prev: decodeLink(ReadU64(b, off+PrevOffset)),
		Next: decodeLink(ReadU64(b, off+NextOffset)),
	}
}

// SetPrev rewrites only the prev link of the record at off.
func SetPrev(b []byte, off, prev int) {
	PutU64(b, off+PrevOffset, encodeLink(prev))
}

// SetNext rewrites only the next link of the record at off.
func SetNext(b []byte, off, next int) {
	PutU64(b, off+NextOffset, encodeLink(next))
}

// CheckRecord validates that a record at off fits inside b
// and that its links, when set, point at in-bounds offsets aligned to minAlign.
func CheckRecord(b []byte, off, minAlign int) (Record, error) {
	if off < 0 || off%minAlign != 0 {
		return Record{}, fmt.Errorf("%w: record at %d", ErrBadLink, off)
	}
	if off+HeaderSize > len(b) {
		return Record{}, fmt.Errorf("%w: record at %d needs %d bytes, len=%d",
			ErrTruncated, off, HeaderSize, len(b))
	}
	r := ReadRecord(b, off)
	for _, link := range [...]int{r.Prev, r.Next} {
		if link == None {
			continue
		}
		if link < 0 || link%minAlign != 0 || link+HeaderSize > len(b) {
			return Record{}, fmt.Errorf("%w: record at %d links to %d", ErrBadLink, off, link)
		}
	}
	return r, nil
}
