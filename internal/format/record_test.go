package format

import (
	"errors"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	b := make([]byte, 64)
	PutRecord(b, 16, Record{Prev: None, Next: 32})

	r := ReadRecord(b, 16)
	if !r.IsFront() || r.IsBack() || r.Next != 32 {
		t.Fatalf("unexpected record: %+v", r)
	}

	SetPrev(b, 16, 0)
	SetNext(b, 16, None)
	r = ReadRecord(b, 16)
	if r.Prev != 0 || !r.IsBack() {
		t.Fatalf("unexpected record after link updates: %+v", r)
	}
}

func TestZeroedHeaderIsUnlinked(t *testing.T) {
	r := ReadRecord(make([]byte, HeaderSize), 0)
	if !r.IsFront() || !r.IsBack() {
		t.Fatalf("zeroed header should decode as unlinked, got %+v", r)
	}
}

func TestCheckRecord(t *testing.T) {
	b := make([]byte, 64)
	PutRecord(b, 0, Record{Prev: None, Next: 32})
	if _, err := CheckRecord(b, 0, 8); err != nil {
		t.Fatalf("CheckRecord: %v", err)
	}

	if _, err := CheckRecord(b, 4, 8); !errors.Is(err, ErrBadLink) {
		t.Fatalf("misaligned record: got %v want ErrBadLink", err)
	}
	if _, err := CheckRecord(b, 56, 8); !errors.Is(err, ErrTruncated) {
		t.Fatalf("record past end: got %v want ErrTruncated", err)
	}

	PutRecord(b, 0, Record{Prev: None, Next: 120})
	if _, err := CheckRecord(b, 0, 8); !errors.Is(err, ErrBadLink) {
		t.Fatalf("out-of-bounds link: got %v want ErrBadLink", err)
	}
}
