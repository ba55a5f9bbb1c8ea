package store

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/zarrio/zarr/internal/metadata"
)

// HTTP is a read-only Store fronting a base URL. Byte ranges are never
// honored: Get ignores its ByteRange argument and always returns the
// whole object.
type HTTP struct {
	base       string
	client     *http.Client
	consolidated *metadata.ConsolidatedDocument
}

var _ Store = (*HTTP)(nil)

// NewHTTP roots a read-only store at baseURL and probes it for v3
// zarr.json, v2 .zarray, or v2 consolidated .zmetadata, in that order,
// to discover whether consolidated metadata is available.
func NewHTTP(baseURL string) (*HTTP, error) {
	s := &HTTP{
		base:   strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}

	for _, probe := range []string{"zarr.json", ".zarray"} {
		data, err := s.fetch(probe)
		if err != nil {
			return nil, err
		}
		if data != nil {
			return s, nil
		}
	}

	data, err := s.fetch(".zmetadata")
	if err != nil {
		return nil, err
	}
	if data != nil {
		doc, err := metadata.DecodeConsolidated(data)
		if err != nil {
			return nil, err
		}
		s.consolidated = doc
	}
	return s, nil
}

func (s *HTTP) Separator() string { return "/" }

func (s *HTTP) Capabilities() Capabilities {
	return Capabilities{
		ReadOnly:                 true,
		SupportsListing:          s.consolidated != nil,
		SupportsConsolidatedMeta: true,
	}
}

func (s *HTTP) fetch(key string) ([]byte, error) {
	url := s.base
	if key != "" {
		url += "/" + key
	}
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStore, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unexpected status %d fetching %s", ErrStore, resp.StatusCode, url)
	}
}

func (s *HTTP) Exists(key string) (bool, error) {
	data, err := s.fetch(key)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

func (s *HTTP) Get(key string, _ *ByteRange) ([]byte, error) {
	if s.consolidated != nil {
		if data := s.consolidated.Lookup(key); data != nil {
			return data, nil
		}
	}
	return s.fetch(key)
}

func (s *HTTP) Set(key string, data []byte) error         { return ErrReadOnly }
func (s *HTTP) SetIfNotExists(key string, data []byte) error { return ErrReadOnly }
func (s *HTTP) Erase(key string) (bool, error)             { return false, ErrReadOnly }
func (s *HTTP) ErasePrefix(prefix string) (bool, error)    { return false, ErrReadOnly }
func (s *HTTP) SetMetadata(prefix string, document map[string]any) error { return ErrReadOnly }

func (s *HTTP) ListDir(prefix string) ([]string, error) {
	if s.consolidated == nil {
		return nil, nil
	}
	withSep := prefix
	if withSep != "" && !strings.HasSuffix(withSep, "/") {
		withSep += "/"
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range s.consolidated.NodePrefixes() {
		if !strings.HasPrefix(p, withSep) || p == prefix {
			continue
		}
		rest := strings.TrimPrefix(p, withSep)
		name := rest
		if i := strings.Index(rest, "/"); i >= 0 {
			name = rest[:i]
		}
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

func (s *HTTP) ListPrefix(prefix string) ([]string, error) {
	if s.consolidated == nil {
		return nil, nil
	}
	withSep := prefix
	if withSep != "" && !strings.HasSuffix(withSep, "/") {
		withSep += "/"
	}
	var out []string
	for _, p := range s.consolidated.NodePrefixes() {
		if strings.HasPrefix(p, withSep) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *HTTP) GetMetadata(prefix string) (map[string]any, error) {
	if s.consolidated != nil {
		return s.consolidatedMetadata(prefix)
	}

	if data, err := s.fetch(joinKey(prefix, "zarr.json")); err != nil {
		return nil, err
	} else if data != nil {
		return unmarshalMap(data)
	}

	if data, err := s.fetch(joinKey(prefix, ".zarray")); err != nil {
		return nil, err
	} else if data != nil {
		v2doc, err := metadata.DecodeV2ArrayDocument(data)
		if err != nil {
			return nil, err
		}
		attrs, err := s.fetchV2Attrs(prefix)
		if err != nil {
			return nil, err
		}
		doc, err := metadata.V2ToV3Array(v2doc, attrs)
		if err != nil {
			return nil, err
		}
		return documentToMap(doc)
	}

	if data, err := s.fetch(joinKey(prefix, ".zgroup")); err != nil {
		return nil, err
	} else if data != nil {
		v2doc, err := metadata.DecodeV2GroupDocument(data)
		if err != nil {
			return nil, err
		}
		attrs, err := s.fetchV2Attrs(prefix)
		if err != nil {
			return nil, err
		}
		return documentToMap(metadata.V2ToV3Group(v2doc, attrs))
	}

	return nil, nil
}

func (s *HTTP) fetchV2Attrs(prefix string) (map[string]any, error) {
	data, err := s.fetch(joinKey(prefix, ".zattrs"))
	if err != nil || data == nil {
		return nil, err
	}
	return metadata.DecodeV2Attributes(data)
}

func (s *HTTP) consolidatedMetadata(prefix string) (map[string]any, error) {
	if data := s.consolidated.Lookup(joinKey(prefix, "zarr.json")); data != nil {
		return unmarshalMap(data)
	}
	if data := s.consolidated.Lookup(joinKey(prefix, ".zarray")); data != nil {
		v2doc, err := metadata.DecodeV2ArrayDocument(data)
		if err != nil {
			return nil, err
		}
		var attrs map[string]any
		if raw := s.consolidated.Lookup(joinKey(prefix, ".zattrs")); raw != nil {
			attrs, err = metadata.DecodeV2Attributes(raw)
			if err != nil {
				return nil, err
			}
		}
		doc, err := metadata.V2ToV3Array(v2doc, attrs)
		if err != nil {
			return nil, err
		}
		return documentToMap(doc)
	}
	if data := s.consolidated.Lookup(joinKey(prefix, ".zgroup")); data != nil {
		v2doc, err := metadata.DecodeV2GroupDocument(data)
		if err != nil {
			return nil, err
		}
		var attrs map[string]any
		if raw := s.consolidated.Lookup(joinKey(prefix, ".zattrs")); raw != nil {
			var err2 error
			attrs, err2 = metadata.DecodeV2Attributes(raw)
			if err2 != nil {
				return nil, err2
			}
		}
		return documentToMap(metadata.V2ToV3Group(v2doc, attrs))
	}
	return nil, nil
}

func unmarshalMap(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: decode document: %w", err)
	}
	return out, nil
}
