package store

import "testing"

func TestLocalFSEraseArrayDirWithChunks(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetMetadata("arr", map[string]any{"zarr_format": 3, "node_type": "array"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("arr/c/0/0", []byte("chunk")); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("arr/c/0/1", []byte("chunk")); err != nil {
		t.Fatal(err)
	}

	erased, err := s.Erase("arr")
	if err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if !erased {
		t.Fatal("expected erase to report success")
	}
	exists, err := s.Exists("arr/c/0/0")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("expected chunk to be gone after erasing its array")
	}
}

func TestLocalFSEraseGroupDirRefusesNonEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetMetadata("grp", map[string]any{"zarr_format": 3, "node_type": "group"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMetadata("grp/child", map[string]any{"zarr_format": 3, "node_type": "group"}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Erase("grp"); err == nil {
		t.Fatal("expected erase of a non-empty group directory to fail")
	}
}

func TestLocalFSEraseEmptyGroupDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetMetadata("grp", map[string]any{"zarr_format": 3, "node_type": "group"}); err != nil {
		t.Fatal(err)
	}

	erased, err := s.Erase("grp")
	if err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if !erased {
		t.Fatal("expected erase to report success")
	}
}
