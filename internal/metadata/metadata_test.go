package metadata

import (
	"testing"

	json "github.com/goccy/go-json"
)

func TestBuilderLifecycle(t *testing.T) {
	b := NewArrayMetadataBuilder()
	if b.IsValid() {
		t.Fatal("empty builder should not be valid")
	}
	if err := b.SetDataType("int32"); err != nil {
		t.Fatal(err)
	}
	if err := b.SetShape([]int{5, 20, 4}); err != nil {
		t.Fatal(err)
	}
	if !b.IsValid() {
		t.Fatal("builder should be valid after data type and shape")
	}

	doc := b.Metadata(nil)
	if doc.DataType != "int32" {
		t.Errorf("want int32, got %s", doc.DataType)
	}
	if len(doc.Codecs) != 3 {
		t.Fatalf("want transpose+bytes+blosc, got %d codecs: %+v", len(doc.Codecs), doc.Codecs)
	}
	if doc.Codecs[0].Name != "transpose" || doc.Codecs[1].Name != "bytes" || doc.Codecs[2].Name != "blosc" {
		t.Errorf("unexpected codec order: %+v", doc.Codecs)
	}
	if doc.Codecs[1].Configuration["endian"] != "little" {
		t.Errorf("want bytes codec endian=little, got %+v", doc.Codecs[1].Configuration)
	}
	if doc.Codecs[2].Configuration["cname"] != "zstd" || doc.Codecs[2].Configuration["shuffle"] != "shuffle" {
		t.Errorf("unexpected default blosc config for int32: %+v", doc.Codecs[2].Configuration)
	}
}

func TestBuilderPortableRemovesTranspose(t *testing.T) {
	b := NewArrayMetadataBuilder()
	_ = b.SetDataType("float64")
	_ = b.SetShape([]int{10, 10})
	b.SetPortable(true)
	doc := b.Metadata(nil)
	if len(doc.Codecs) != 2 || doc.Codecs[0].Name != "bytes" || doc.Codecs[1].Name != "blosc" {
		t.Errorf("expected bytes+blosc when portable, got %+v", doc.Codecs)
	}
	if doc.Codecs[1].Configuration["shuffle"] != "bitshuffle" {
		t.Errorf("want bitshuffle default for float64, got %+v", doc.Codecs[1].Configuration)
	}
}

func TestBuilderAddRemoveCodec(t *testing.T) {
	b := NewArrayMetadataBuilder()
	_ = b.SetDataType("uint8")
	_ = b.SetShape([]int{4})

	if err := b.AddCodec("gzip", map[string]any{"level": float64(5)}, -1); err != nil {
		t.Fatal(err)
	}
	if !b.IsValid() {
		t.Fatal("expected valid builder after adding a bytes->bytes codec")
	}
	doc := b.Metadata(nil)
	if len(doc.Codecs) != 3 || doc.Codecs[2].Name != "gzip" {
		t.Fatalf("expected bytes+blosc+gzip, got %+v", doc.Codecs)
	}
	if doc.Codecs[1].Configuration["shuffle"] != "noshuffle" {
		t.Errorf("want noshuffle default for uint8, got %+v", doc.Codecs[1].Configuration)
	}

	if err := b.RemoveCodec(0); err == nil {
		t.Fatal("expected removing the sole array->bytes codec to fail")
	}
}

func TestParseDTypeBigEndian(t *testing.T) {
	parsed, name, err := ParseDType(">f8")
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Endian != "big" || name != "float64" {
		t.Errorf("got endian=%s name=%s", parsed.Endian, name)
	}
}

func TestV2ToV3Array(t *testing.T) {
	v2 := &V2ArrayDocument{
		ZarrFormat: 2,
		Shape:      []int{10},
		Chunks:     []int{5},
		DType:      "<i4",
		FillValue:  0,
		Compressor: &V2CompressorConfig{ID: "blosc", Cname: "lz4", Clevel: 5, Shuffle: 1},
	}
	doc, err := V2ToV3Array(v2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.DataType != "int32" {
		t.Errorf("want int32, got %s", doc.DataType)
	}
	if len(doc.Codecs) != 2 || doc.Codecs[1].Name != "blosc" {
		t.Errorf("unexpected codecs: %+v", doc.Codecs)
	}
	if doc.ChunkKeyEncoding.Name != "v2" || doc.ChunkKeyEncoding.Configuration.Separator != "." {
		t.Errorf("want v2 chunk key encoding with '.' separator, got %+v", doc.ChunkKeyEncoding)
	}
}

func TestChunkKeySuffix(t *testing.T) {
	tests := []struct {
		indices []int
		scheme  ChunkKeyScheme
		want    string
	}{
		{nil, SchemeDefault, "0"},
		{[]int{1, 4}, SchemeDefault, "c/1/4"},
		{[]int{1, 4}, SchemeV2Style, "1/4"},
		{[]int{1, 4}, SchemeV2, "1.4"},
	}
	for _, tt := range tests {
		sep := "/"
		if tt.scheme == SchemeV2 {
			sep = "."
		}
		got := ChunkKeySuffix(tt.indices, sep, tt.scheme)
		if got != tt.want {
			t.Errorf("ChunkKeySuffix(%v, %q, %v) = %q, want %q", tt.indices, sep, tt.scheme, got, tt.want)
		}
	}
}

func TestConsolidatedNodePrefixes(t *testing.T) {
	doc := &ConsolidatedDocument{
		ZarrConsolidatedFormat: 1,
		Metadata: map[string]json.RawMessage{
			".zgroup":        nil,
			"foo/.zarray":    nil,
			"foo/.zattrs":    nil,
			"foo/bar/.zarray": nil,
		},
	}
	prefixes := doc.NodePrefixes()
	if len(prefixes) != 3 {
		t.Fatalf("want 3 unique prefixes, got %d: %v", len(prefixes), prefixes)
	}
}
