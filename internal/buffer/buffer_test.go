package buffer

import (
	"testing"

	"github.com/zarrio/zarr/internal/dtype"
)

func TestNewFillAllAbsent(t *testing.T) {
	dt, _ := dtype.ByName("int32")
	b := NewFill(dt, []int{2, 3}, dt.DefaultFill())
	if !b.AllAbsent() {
		t.Fatal("expected freshly-filled buffer to be AllAbsent")
	}
	v, absent, err := b.Get([]int{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if !absent {
		t.Error("expected element to be absent")
	}
	if !dt.IsFillValue(v) {
		t.Errorf("expected fill value, got %v", v)
	}
}

func TestSetClearsAbsent(t *testing.T) {
	dt, _ := dtype.ByName("int32")
	b := NewFill(dt, []int{2, 2}, dt.DefaultFill())
	if err := b.Set([]int{0, 1}, int32(7), false); err != nil {
		t.Fatal(err)
	}
	if b.AllAbsent() {
		t.Fatal("expected AllAbsent to be false after a present write")
	}
	v, absent, err := b.Get([]int{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	if absent {
		t.Error("expected element to be present")
	}
	if v.(int32) != 7 {
		t.Errorf("expected 7, got %v", v)
	}
}

func TestCopyRegion(t *testing.T) {
	dt, _ := dtype.ByName("uint8")
	src := New(dt, []int{4, 4})
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if err := src.Set([]int{i, j}, uint8(i*4+j), false); err != nil {
				t.Fatal(err)
			}
		}
	}
	dst := NewFill(dt, []int{4, 4}, dt.DefaultFill())

	if err := CopyRegion(dst, []int{1, 1}, src, []int{0, 0}, []int{2, 2}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v, absent, err := dst.Get([]int{1 + i, 1 + j})
			if err != nil {
				t.Fatal(err)
			}
			if absent {
				t.Errorf("copied element (%d,%d) should be present", i, j)
			}
			want := uint8(i*4 + j)
			if v.(uint8) != want {
				t.Errorf("at (%d,%d): want %d, got %v", i, j, want, v)
			}
		}
	}

	v, absent, err := dst.Get([]int{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !absent {
		t.Error("untouched corner should remain absent")
	}
	_ = v
}

func TestToGoFromGoRoundTrip(t *testing.T) {
	dt, _ := dtype.ByName("float64")
	shape := []int{3}
	in := []float64{1.5, 2.5, 3.5}
	b, err := FromGo(dt, shape, in, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, absent, err := ToGo(b)
	if err != nil {
		t.Fatal(err)
	}
	got := out.([]float64)
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("index %d: want %v, got %v", i, in[i], got[i])
		}
	}
	if absent != nil {
		t.Errorf("expected nil absent mask, got %v", absent)
	}
}
