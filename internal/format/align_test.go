package format

import "testing"

func TestAlignUpDown(t *testing.T) {
	cases := []struct {
		off, align, up, down int
	}{
		{0, 8, 0, 0},
		{1, 8, 8, 0},
		{8, 8, 8, 8},
		{17, 16, 32, 16},
		{4095, 4096, 4096, 0},
		{4097, 64, 4160, 4096},
	}
	for _, c := range cases {
		if got := AlignUp(c.off, c.align); got != c.up {
			t.Fatalf("AlignUp(%d,%d)=%d want %d", c.off, c.align, got, c.up)
		}
		if got := AlignDown(c.off, c.align); got != c.down {
			t.Fatalf("AlignDown(%d,%d)=%d want %d", c.off, c.align, got, c.down)
		}
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []int{1, 2, 8, 16, 4096} {
		if !IsPow2(n) {
			t.Fatalf("IsPow2(%d) = false", n)
		}
	}
	for _, n := range []int{0, -8, 3, 24, 4095} {
		if IsPow2(n) {
			t.Fatalf("IsPow2(%d) = true", n)
		}
	}
}

func TestPlaceRoundTrip(t *testing.T) {
	for _, align := range []int{8, 16, 32, 64, 256, 4096} {
		for start := 0; start < 3*align; start += 3 {
			meta, data := Place(start, align)
			if meta < start || meta%align != 0 {
				t.Fatalf("Place(%d,%d) meta=%d not aligned past start", start, align, meta)
			}
			if data%align != 0 || data-meta < HeaderSize {
				t.Fatalf("Place(%d,%d) data=%d overlaps header at %d", start, align, data, meta)
			}
			if got := RecordFor(data, align); got != meta {
				t.Fatalf("RecordFor(%d,%d)=%d want %d", data, align, got, meta)
			}
		}
	}
}
