package store

import "testing"

func TestMemoryGetSetRoundTrip(t *testing.T) {
	m := NewMemory()
	if err := m.Set("foo/c/0/0", []byte("hello")); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get("foo/c/0/0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
	missing, err := m.Get("nope", nil)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing key, got %v", missing)
	}
}

func TestMemoryEraseRefusesNonEmpty(t *testing.T) {
	m := NewMemory()
	_ = m.Set("foo/bar", []byte("x"))
	if _, err := m.Erase("foo"); err == nil {
		t.Fatal("expected erase of a key with descendants to fail")
	}
}

func TestMemoryErasePrefix(t *testing.T) {
	m := NewMemory()
	_ = m.Set("foo/a", []byte("1"))
	_ = m.Set("foo/b", []byte("2"))
	erased, err := m.ErasePrefix("foo")
	if err != nil {
		t.Fatal(err)
	}
	if !erased {
		t.Error("expected ErasePrefix to report erasure")
	}
	names, err := m.ListDir("foo")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty dir after ErasePrefix, got %v", names)
	}
}

func TestMemoryListDir(t *testing.T) {
	m := NewMemory()
	_ = m.Set("a/b/c", []byte("1"))
	_ = m.Set("a/d", []byte("2"))
	names, err := m.ListDir("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("want 2 entries, got %v", names)
	}
}

func TestByteRangeVariants(t *testing.T) {
	m := NewMemory()
	_ = m.Set("k", []byte("0123456789"))

	whole, _ := m.Get("k", nil)
	if string(whole) != "0123456789" {
		t.Errorf("whole read: got %q", whole)
	}

	offset, err := m.Get("k", &ByteRange{Offset: 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(offset) != "3456789" {
		t.Errorf("offset read: got %q", offset)
	}

	fromEnd, err := m.Get("k", &ByteRange{Offset: -3})
	if err != nil {
		t.Fatal(err)
	}
	if string(fromEnd) != "789" {
		t.Errorf("from-end read: got %q", fromEnd)
	}

	pair, err := m.Get("k", &ByteRange{Offset: 2, Length: 3, End: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(pair) != "234" {
		t.Errorf("pair read: got %q", pair)
	}

	if _, err := m.Get("k", &ByteRange{Offset: 100}); err == nil {
		t.Fatal("expected invalid-range error for out-of-bounds offset")
	}
}

func TestPathToURIRoundTrip(t *testing.T) {
	tests := []string{
		"/home/user/data.zarr",
		"relative/path",
	}
	for _, p := range tests {
		uri := PathToURI(p)
		back, err := URIToPath(uri)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if back != p {
			t.Errorf("round trip: %s -> %s -> %s", p, uri, back)
		}
	}
}

func TestPathToURIWindowsDrive(t *testing.T) {
	uri := PathToURI("C:/data/store.zarr")
	want := "file:///C:/data/store.zarr"
	if uri != want {
		t.Errorf("got %s, want %s", uri, want)
	}
	back, err := URIToPath(uri)
	if err != nil {
		t.Fatal(err)
	}
	if back != "C:/data/store.zarr" {
		t.Errorf("round trip got %s", back)
	}
}
