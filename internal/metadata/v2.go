package metadata

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// V2CompressorConfig is the v2 .zarray "compressor" fragment.
type V2CompressorConfig struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
}

// V2ArrayDocument is the .zarray body.
type V2ArrayDocument struct {
	ZarrFormat int                 `json:"zarr_format"`
	Shape      []int               `json:"shape"`
	Chunks     []int               `json:"chunks"`
	DType      string              `json:"dtype"`
	Compressor *V2CompressorConfig `json:"compressor"`
	FillValue  any                 `json:"fill_value"`
	Order      string              `json:"order"`
	Filters    []map[string]any    `json:"filters"`
}

// V2GroupDocument is the .zgroup body.
type V2GroupDocument struct {
	ZarrFormat int `json:"zarr_format"`
}

// DecodeV2ArrayDocument parses a .zarray body.
func DecodeV2ArrayDocument(data []byte) (*V2ArrayDocument, error) {
	var doc V2ArrayDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata: decode .zarray: %w", err)
	}
	if doc.ZarrFormat != 2 {
		return nil, fmt.Errorf("metadata: .zarray zarr_format %d, expected 2", doc.ZarrFormat)
	}
	return &doc, nil
}

// DecodeV2GroupDocument parses a .zgroup body.
func DecodeV2GroupDocument(data []byte) (*V2GroupDocument, error) {
	var doc V2GroupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata: decode .zgroup: %w", err)
	}
	return &doc, nil
}

// DecodeV2Attributes parses a .zattrs body (a plain attribute object).
func DecodeV2Attributes(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("metadata: decode .zattrs: %w", err)
	}
	return attrs, nil
}

// ParsedDType is the numpy-style dtype string broken into its three
// fields: byte order, type kind, and element size in bytes.
type ParsedDType struct {
	Endian string // "little", "big", or "none" for single-byte/bool types
	Kind   byte   // 'b', 'i', 'u', 'f', 'S'
	Size   int
}

// ParseDType parses a numpy-style dtype string such as "<f4", ">i8", or
// "|b1" into its endianness, kind, and size, extending the reference
// parser to accept big-endian (">") strings: v2 archives written on
// big-endian-preferring tools are read-only input this package must
// still translate.
func ParseDType(s string) (ParsedDType, string, error) {
	if len(s) < 3 {
		return ParsedDType{}, "", fmt.Errorf("metadata: invalid dtype %q", s)
	}

	var endian string
	switch s[0] {
	case '<':
		endian = "little"
	case '>':
		endian = "big"
	case '|':
		endian = "none"
	default:
		return ParsedDType{}, "", fmt.Errorf("metadata: invalid dtype byte order %q", s)
	}

	kind := s[1]
	size, err := strconv.Atoi(s[2:])
	if err != nil {
		return ParsedDType{}, "", fmt.Errorf("metadata: invalid dtype size in %q", s)
	}

	parsed := ParsedDType{Endian: endian, Kind: kind, Size: size}

	var name string
	switch kind {
	case 'b':
		name = "bool"
	case 'i':
		name = fmt.Sprintf("int%d", size*8)
	case 'u':
		name = fmt.Sprintf("uint%d", size*8)
	case 'f':
		name = fmt.Sprintf("float%d", size*8)
	default:
		return ParsedDType{}, "", fmt.Errorf("metadata: unsupported dtype kind %q in %q", kind, s)
	}
	return parsed, name, nil
}

// V2ToV3Array translates a decoded .zarray body (plus optional merged
// .zattrs) into the v3 ArrayDocument representation the rest of the
// package operates on. The translation is read-only: a v3 document
// produced this way is never written back in v2 form.
func V2ToV3Array(doc *V2ArrayDocument, attrs map[string]any) (*ArrayDocument, error) {
	parsed, dtypeName, err := ParseDType(doc.DType)
	if err != nil {
		return nil, err
	}

	codecs := []CodecConfig{}
	if parsed.Size > 1 {
		codecs = append(codecs, CodecConfig{
			Name:          "bytes",
			Configuration: map[string]any{"endian": parsed.Endian},
		})
	} else {
		codecs = append(codecs, CodecConfig{Name: "bytes"})
	}

	if doc.Compressor != nil {
		codec, err := v2CompressorToCodec(doc.Compressor)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, codec)
	}

	if len(doc.Filters) > 0 {
		return nil, fmt.Errorf("metadata: v2 filters are not supported on read")
	}

	out := &ArrayDocument{
		ZarrFormat: 3,
		NodeType:   NodeArray,
		Shape:      doc.Shape,
		DataType:   dtypeName,
		FillValue:  doc.FillValue,
		ChunkGrid: ChunkGridConfig{
			Name: "regular",
		},
		Codecs:     codecs,
		Attributes: attrs,
	}
	out.ChunkGrid.Configuration.ChunkShape = doc.Chunks
	// A genuine v2 store addresses chunks dot-joined with no "c" prefix;
	// leaving this unset would fall back to the v3 default scheme and
	// derive the wrong key for every chunk read.
	out.ChunkKeyEncoding.Name = "v2"
	out.ChunkKeyEncoding.Configuration.Separator = "."
	return out, nil
}

// v2CompressorToCodec maps a v2 "compressor" entry onto one of the v3
// core codecs. Only blosc and zstd compressors are supported on read, per
// the spec's v2-compatibility scope; anything else is a translation
// error rather than a silent drop.
func v2CompressorToCodec(c *V2CompressorConfig) (CodecConfig, error) {
	switch c.ID {
	case "blosc":
		shuffleNames := []string{"noshuffle", "shuffle", "bitshuffle"}
		shuffle := "noshuffle"
		if c.Shuffle >= 0 && c.Shuffle < len(shuffleNames) {
			shuffle = shuffleNames[c.Shuffle]
		}
		return CodecConfig{
			Name: "blosc",
			Configuration: map[string]any{
				"cname":   c.Cname,
				"clevel":  c.Clevel,
				"shuffle": shuffle,
			},
		}, nil
	case "zstd":
		return CodecConfig{Name: "zstd", Configuration: map[string]any{"level": c.Clevel}}, nil
	default:
		return CodecConfig{}, fmt.Errorf("metadata: unsupported v2 compressor %q", c.ID)
	}
}

// V2ToV3Group translates a .zgroup body (plus optional merged .zattrs)
// into a v3 GroupDocument.
func V2ToV3Group(doc *V2GroupDocument, attrs map[string]any) *GroupDocument {
	return &GroupDocument{ZarrFormat: 3, NodeType: NodeGroup, Attributes: attrs}
}
