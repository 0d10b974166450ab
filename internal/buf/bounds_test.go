package buf

import (
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	if sum, ok := Add(10, 5); !ok || sum != 15 {
		t.Fatalf("Add(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := Add(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := Add(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMul(t *testing.T) {
	if p, ok := Mul(12, 8); !ok || p != 96 {
		t.Fatalf("Mul(12,8)=%d,%v want 96,true", p, ok)
	}
	if p, ok := Mul(0, math.MaxInt); !ok || p != 0 {
		t.Fatalf("Mul(0,MaxInt)=%d,%v want 0,true", p, ok)
	}
	if _, ok := Mul(math.MaxInt/2+1, 2); ok {
		t.Fatalf("expected overflow for MaxInt/2+1 * 2")
	}
	if _, ok := Mul(-1, 8); ok {
		t.Fatalf("Mul should reject negative operands")
	}
}

func TestSpanAndWithin(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Span(data, 1, 3)
	if !ok || len(got) != 3 || cap(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Span returned unexpected result: %v (cap %d), %v", got, cap(got), ok)
	}
	if _, ok := Span(data, 4, 2); ok {
		t.Fatalf("Span should fail when extending beyond len")
	}
	if got, ok := Span(data, 5, 0); !ok || len(got) != 0 {
		t.Fatalf("empty span at the end should be valid, got %v, %v", got, ok)
	}
	if Within(len(data), 2, 4) {
		t.Fatalf("Within should be false for out-of-bounds range")
	}
	if Within(len(data), -1, 1) || Within(len(data), 1, -1) {
		t.Fatalf("Within should reject negative offset or length")
	}
	if !Within(len(data), 2, 1) {
		t.Fatalf("Within should be true for valid range")
	}
}
