package metadata

import (
	json "github.com/goccy/go-json"

	"fmt"
)

// NodeType discriminates a zarr.json document between "group" and
// "array".
type NodeType string

const (
	NodeGroup NodeType = "group"
	NodeArray NodeType = "array"
)

// ChunkGridConfig is the chunk_grid fragment of an array document. Only
// the "regular" chunk grid name is defined by the core.
type ChunkGridConfig struct {
	Name          string `json:"name"`
	Configuration struct {
		ChunkShape []int `json:"chunk_shape"`
	} `json:"configuration"`
}

// ChunkKeyEncodingConfig is the chunk_key_encoding fragment.
type ChunkKeyEncodingConfig struct {
	Name          string `json:"name"`
	Configuration struct {
		Separator string `json:"separator,omitempty"`
	} `json:"configuration,omitempty"`
}

// CodecConfig is one entry of an array document's codecs list.
type CodecConfig struct {
	Name          string         `json:"name"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// GroupDocument is the zarr.json body for a group node.
type GroupDocument struct {
	ZarrFormat int            `json:"zarr_format"`
	NodeType   NodeType       `json:"node_type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ArrayDocument is the zarr.json body for an array node.
type ArrayDocument struct {
	ZarrFormat         int                     `json:"zarr_format"`
	NodeType           NodeType                `json:"node_type"`
	Shape              []int                   `json:"shape"`
	DataType           string                  `json:"data_type"`
	FillValue          any                     `json:"fill_value"`
	ChunkGrid          ChunkGridConfig         `json:"chunk_grid"`
	ChunkKeyEncoding   ChunkKeyEncodingConfig  `json:"chunk_key_encoding,omitempty"`
	Codecs             []CodecConfig           `json:"codecs"`
	Attributes         map[string]any          `json:"attributes,omitempty"`
}

// DecodeNodeType peeks zarr_format/node_type out of a raw document
// without fully decoding it, so a caller can dispatch to
// DecodeGroupDocument or DecodeArrayDocument.
func DecodeNodeType(data []byte) (zarrFormat int, nodeType NodeType, err error) {
	var probe struct {
		ZarrFormat int      `json:"zarr_format"`
		NodeType   NodeType `json:"node_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, "", fmt.Errorf("metadata: decode node type: %w", err)
	}
	return probe.ZarrFormat, probe.NodeType, nil
}

// DecodeGroupDocument parses a zarr.json group body.
func DecodeGroupDocument(data []byte) (*GroupDocument, error) {
	var doc GroupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata: decode group document: %w", err)
	}
	if doc.ZarrFormat != 3 {
		return nil, fmt.Errorf("metadata: unsupported zarr_format %d for write path", doc.ZarrFormat)
	}
	return &doc, nil
}

// DecodeArrayDocument parses a zarr.json array body.
func DecodeArrayDocument(data []byte) (*ArrayDocument, error) {
	var doc ArrayDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata: decode array document: %w", err)
	}
	return &doc, nil
}

// Encode serializes any document (GroupDocument or ArrayDocument) to its
// zarr.json form.
func Encode(doc any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("metadata: encode: %w", err)
	}
	return out, nil
}

// NewGroupDocument returns a minimal valid group document, used both for
// freshly created groups and for the "minimal group metadata" a recursive
// erase_prefix leaves behind.
func NewGroupDocument() *GroupDocument {
	return &GroupDocument{ZarrFormat: 3, NodeType: NodeGroup}
}

// ToMap round-trips doc (a GroupDocument or ArrayDocument) through JSON
// into a plain map, the shape the Store interface's GetMetadata/
// SetMetadata cross at its boundary.
func ToMap(doc any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("metadata: encode document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("metadata: decode document: %w", err)
	}
	return out, nil
}
