package zarr

import (
	"context"
	"testing"

	"github.com/zarrio/zarr/internal/store"
)

func TestArrayWriteThenReadRoundTrip(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	arr, err := root.CreateArray("grid", intBuilder(t, []int{6, 6}, []int{3, 3}), nil)
	if err != nil {
		t.Fatalf("CreateArray: %v", err)
	}

	data := make([]int32, 36)
	for i := range data {
		data[i] = int32(i)
	}
	if err := arr.WriteGo([]int{1, 1}, []int{6, 6}, data, nil); err != nil {
		t.Fatalf("WriteGo: %v", err)
	}

	got, absent, err := arr.ReadGo(context.Background(), []int{1, 1}, []int{6, 6})
	if err != nil {
		t.Fatalf("ReadGo: %v", err)
	}
	if absent != nil {
		t.Errorf("unexpected absent mask: %v", absent)
	}
	gotInts, ok := got.([]int32)
	if !ok {
		t.Fatalf("ReadGo returned %T, want []int32", got)
	}
	for i, v := range gotInts {
		if v != data[i] {
			t.Errorf("element %d = %d, want %d", i, v, data[i])
		}
	}
}

func TestArrayPartialWriteLeavesRestAbsent(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	arr, err := root.CreateArray("sparse", intBuilder(t, []int{8}, []int{4}), nil)
	if err != nil {
		t.Fatalf("CreateArray: %v", err)
	}

	if err := arr.WriteGo([]int{2}, []int{3}, []int32{10, 11}, nil); err != nil {
		t.Fatalf("WriteGo: %v", err)
	}

	_, absent, err := arr.ReadGo(context.Background(), []int{1}, []int{4})
	if err != nil {
		t.Fatalf("ReadGo: %v", err)
	}
	want := []bool{true, false, false, true}
	if len(absent) != len(want) {
		t.Fatalf("absent = %v, want length %d", absent, len(want))
	}
	for i := range want {
		if absent[i] != want[i] {
			t.Errorf("absent[%d] = %v, want %v", i, absent[i], want[i])
		}
	}
}

func TestArraySaveAttributesPersist(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	arr, err := root.CreateArray("a", intBuilder(t, []int{2}, nil), nil)
	if err != nil {
		t.Fatalf("CreateArray: %v", err)
	}
	arr.SetAttr("unit", "meters")
	if err := arr.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(st)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := reopened.Resolve("a")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if n.Attrs()["unit"] != "meters" {
		t.Errorf("attrs after reopen = %v, want unit=meters", n.Attrs())
	}
}
