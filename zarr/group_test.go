package zarr

import (
	"testing"

	"github.com/zarrio/zarr/internal/metadata"
	"github.com/zarrio/zarr/internal/store"
)

func intBuilder(t *testing.T, shape, chunkShape []int) *metadata.ArrayMetadataBuilder {
	t.Helper()
	b := metadata.NewArrayMetadataBuilder()
	if err := b.SetDataType("int32"); err != nil {
		t.Fatalf("SetDataType: %v", err)
	}
	if err := b.SetShape(shape); err != nil {
		t.Fatalf("SetShape: %v", err)
	}
	b.SetPortable(true)
	if chunkShape != nil {
		if err := b.SetChunkShape(chunkShape); err != nil {
			t.Fatalf("SetChunkShape: %v", err)
		}
	}
	return b
}

func TestGroupCreateGroupAndArray(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	sub, err := root.CreateGroup("g1", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if sub.Path() != "/g1" {
		t.Errorf("sub.Path() = %q, want /g1", sub.Path())
	}

	arr, err := sub.CreateArray("arr", intBuilder(t, []int{4, 4}, []int{2, 2}), nil)
	if err != nil {
		t.Fatalf("CreateArray: %v", err)
	}
	if arr.Path() != "/g1/arr" {
		t.Errorf("arr.Path() = %q, want /g1/arr", arr.Path())
	}

	if got := root.Groups(); len(got) != 1 || got[0] != "/g1" {
		t.Errorf("root.Groups() = %v", got)
	}
	if got := sub.Arrays(); len(got) != 1 || got[0] != "/g1/arr" {
		t.Errorf("sub.Arrays() = %v", got)
	}
}

func TestGroupCreateDuplicateNameFails(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	if _, err := root.CreateGroup("dup", nil); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := root.CreateGroup("dup", nil); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestGroupCreateInvalidNameFails(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	for _, name := range []string{"", ".", "..", "__meta"} {
		if _, err := root.CreateGroup(name, nil); err == nil {
			t.Errorf("CreateGroup(%q): expected error", name)
		}
	}
}

func TestGroupDeleteLeafAndNonEmptySubgroup(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	if _, err := root.CreateArray("leaf", intBuilder(t, []int{2}, nil), nil); err != nil {
		t.Fatalf("CreateArray: %v", err)
	}
	if err := root.Delete("leaf"); err != nil {
		t.Fatalf("Delete leaf: %v", err)
	}
	if _, err := root.Get("leaf"); err == nil {
		t.Error("leaf still present after Delete")
	}

	sub, err := root.CreateGroup("sub", nil)
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := sub.CreateGroup("child", nil); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := root.Delete("sub"); err == nil {
		t.Error("Delete on non-empty subgroup should fail")
	}
}

func TestGroupDeleteAllKeepsGroupEmpty(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)

	sub, err := root.CreateGroup("sub", map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := sub.CreateGroup("child", nil); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if _, err := sub.CreateArray("arr", intBuilder(t, []int{2}, nil), nil); err != nil {
		t.Fatalf("CreateArray: %v", err)
	}

	if err := sub.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if len(sub.Groups()) != 0 || len(sub.Arrays()) != 0 {
		t.Errorf("sub not empty after DeleteAll: groups=%v arrays=%v", sub.Groups(), sub.Arrays())
	}
	if got := root.Groups(); len(got) != 1 || got[0] != "/sub" {
		t.Errorf("root.Groups() after DeleteAll = %v, want [/sub] (sub itself survives)", got)
	}
}

func TestGroupResolve(t *testing.T) {
	st := store.NewMemory()
	h, err := CreateWithRootGroup(st, nil)
	if err != nil {
		t.Fatalf("CreateWithRootGroup: %v", err)
	}
	root := h.Root().(*Group)
	a, err := root.CreateGroup("a", nil)
	if err != nil {
		t.Fatalf("CreateGroup a: %v", err)
	}
	b, err := a.CreateGroup("b", nil)
	if err != nil {
		t.Fatalf("CreateGroup b: %v", err)
	}
	if _, err := b.CreateArray("arr", intBuilder(t, []int{2}, nil), nil); err != nil {
		t.Fatalf("CreateArray: %v", err)
	}

	n, err := root.Resolve("a/b/arr")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if n.Path() != "/a/b/arr" {
		t.Errorf("Resolve(a/b/arr) = %q", n.Path())
	}

	n, err = b.Resolve("../../a")
	if err != nil {
		t.Fatalf("Resolve ..: %v", err)
	}
	if n.Path() != "/a" {
		t.Errorf("Resolve(../../a) = %q, want /a", n.Path())
	}

	n, err = root.Resolve("../../../../..")
	if err != nil {
		t.Fatalf("Resolve out-of-bounds ..: unexpected error %v", err)
	}
	if n != nil {
		t.Errorf("Resolve out-of-bounds .. = %v, want nil", n)
	}
}
