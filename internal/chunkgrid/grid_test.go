package chunkgrid

import "testing"

func TestGridShape(t *testing.T) {
	g, err := New([]int{10, 3}, []int{4, 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := []int{3, 2} // ceil(10/4)=3, ceil(3/2)=2
	for d, w := range want {
		if g.GridShape[d] != w {
			t.Errorf("GridShape[%d] = %d, want %d", d, g.GridShape[d], w)
		}
	}
}

func TestGridRankMismatch(t *testing.T) {
	if _, err := New([]int{10}, []int{4, 2}); err == nil {
		t.Fatal("expected error for rank mismatch")
	}
}

func TestGridNonPositive(t *testing.T) {
	if _, err := New([]int{0}, []int{4}); err == nil {
		t.Fatal("expected error for zero shape")
	}
	if _, err := New([]int{4}, []int{0}); err == nil {
		t.Fatal("expected error for zero chunk shape")
	}
}

func TestOverlapsSingleChunk(t *testing.T) {
	g, err := New([]int{10}, []int{4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Selection [2,3] (1-based inclusive) lies entirely within chunk 0 (elements 1..4).
	ovs, err := g.Overlaps([]int{2}, []int{3})
	if err != nil {
		t.Fatalf("Overlaps: %v", err)
	}
	if len(ovs) != 1 {
		t.Fatalf("got %d overlaps, want 1", len(ovs))
	}
	ov := ovs[0]
	if ov.Coord[0] != 0 {
		t.Errorf("Coord = %v, want [0]", ov.Coord)
	}
	if ov.IntraOffset[0] != 1 {
		t.Errorf("IntraOffset = %v, want [1]", ov.IntraOffset)
	}
	if ov.DestOffset[0] != 0 {
		t.Errorf("DestOffset = %v, want [0]", ov.DestOffset)
	}
	if ov.Count[0] != 2 {
		t.Errorf("Count = %v, want [2]", ov.Count)
	}
}

func TestOverlapsSpansTwoChunks(t *testing.T) {
	g, err := New([]int{10}, []int{4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Selection [3,6]: chunk 0 covers elements 1..4, chunk 1 covers 5..8.
	ovs, err := g.Overlaps([]int{3}, []int{6})
	if err != nil {
		t.Fatalf("Overlaps: %v", err)
	}
	if len(ovs) != 2 {
		t.Fatalf("got %d overlaps, want 2", len(ovs))
	}

	ov0 := ovs[0]
	if ov0.Coord[0] != 0 || ov0.IntraOffset[0] != 2 || ov0.DestOffset[0] != 0 || ov0.Count[0] != 2 {
		t.Errorf("chunk0 overlap = %+v, want coord=0 intra=2 dest=0 count=2", ov0)
	}

	ov1 := ovs[1]
	if ov1.Coord[0] != 1 || ov1.IntraOffset[0] != 0 || ov1.DestOffset[0] != 2 || ov1.Count[0] != 2 {
		t.Errorf("chunk1 overlap = %+v, want coord=1 intra=0 dest=2 count=2", ov1)
	}
}

func TestOverlapsMultiDim(t *testing.T) {
	g, err := New([]int{6, 6}, []int{3, 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Selection spanning the 2x2 chunk grid's center: rows 2-5, cols 2-5.
	ovs, err := g.Overlaps([]int{2, 2}, []int{5, 5})
	if err != nil {
		t.Fatalf("Overlaps: %v", err)
	}
	if len(ovs) != 4 {
		t.Fatalf("got %d overlaps, want 4", len(ovs))
	}
	total := 0
	for _, ov := range ovs {
		total += ov.Count[0] * ov.Count[1]
	}
	if total != 16 { // 4x4 selection
		t.Errorf("total overlap elements = %d, want 16", total)
	}
}

func TestOverlapsOutOfBounds(t *testing.T) {
	g, err := New([]int{10}, []int{4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := g.Overlaps([]int{1}, []int{11}); err == nil {
		t.Fatal("expected out-of-bounds error")
	}
	if _, err := g.Overlaps([]int{0}, []int{5}); err == nil {
		t.Fatal("expected error for start < 1")
	}
	if _, err := g.Overlaps([]int{5}, []int{3}); err == nil {
		t.Fatal("expected error for stop < start")
	}
}

func TestOverlapsRankZero(t *testing.T) {
	g, err := New([]int{}, []int{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ovs, err := g.Overlaps([]int{}, []int{})
	if err != nil {
		t.Fatalf("Overlaps: %v", err)
	}
	if len(ovs) != 1 {
		t.Fatalf("got %d overlaps, want 1", len(ovs))
	}
}
