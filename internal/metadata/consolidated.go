package metadata

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ConsolidatedDocument is the .zmetadata body: a flat map from each
// node's metadata-file path (relative to the store root) to that file's
// decoded JSON contents.
type ConsolidatedDocument struct {
	ZarrConsolidatedFormat int                        `json:"zarr_consolidated_format"`
	Metadata               map[string]json.RawMessage `json:"metadata"`
}

// DecodeConsolidated parses a .zmetadata body.
func DecodeConsolidated(data []byte) (*ConsolidatedDocument, error) {
	var doc ConsolidatedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("metadata: decode .zmetadata: %w", err)
	}
	if doc.ZarrConsolidatedFormat != 1 {
		return nil, fmt.Errorf("metadata: unsupported zarr_consolidated_format %d", doc.ZarrConsolidatedFormat)
	}
	return &doc, nil
}

// NodePrefixes returns the set of node path prefixes present in a
// consolidated manifest, derived from the unique directory portion of
// each ".zgroup"/".zarray"/".zattrs" key, as the spec's node-discovery
// rule requires.
func (d *ConsolidatedDocument) NodePrefixes() []string {
	seen := map[string]bool{}
	var order []string
	for key := range d.Metadata {
		prefix := nodePrefixOf(key)
		if !seen[prefix] {
			seen[prefix] = true
			order = append(order, prefix)
		}
	}
	return order
}

func nodePrefixOf(key string) string {
	for _, suffix := range []string{".zgroup", ".zarray", ".zattrs"} {
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSuffix(key, suffix)
		}
	}
	return key
}

// Lookup returns the raw bytes stored for a node's metadata/attrs file
// (e.g. "foo/.zarray", "foo/.zattrs"), or nil if absent.
func (d *ConsolidatedDocument) Lookup(key string) []byte {
	raw, ok := d.Metadata[key]
	if !ok {
		return nil
	}
	return []byte(raw)
}
