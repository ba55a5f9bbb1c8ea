package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/zarrio/zarr/internal/metadata"
)

const dirPermissionBits = 0o755
const filePermissionBits = 0o644

// LocalFS is a Store backed by a directory on disk. Node metadata lives
// at "<prefix>zarr.json"; chunk keys map directly to file paths relative
// to the root. Opening an existing v2 store (.zgroup/.zarray/.zattrs) is
// supported for read compatibility; LocalFS always writes v3 documents.
type LocalFS struct {
	root string
}

var _ Store = (*LocalFS)(nil)

// NewLocalFS roots a store at dir, creating it if absent.
func NewLocalFS(dir string) (*LocalFS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("store: localfs: %w", err)
	}
	if err := os.MkdirAll(abs, dirPermissionBits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return &LocalFS{root: abs}, nil
}

func (s *LocalFS) Separator() string { return "/" }

func (s *LocalFS) Capabilities() Capabilities {
	return Capabilities{SupportsListing: true, SupportsDeletes: true, SupportsWrites: true}
}

func (s *LocalFS) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalFS) Exists(key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return true, nil
}

func (s *LocalFS) Get(key string, br *ByteRange) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return applyByteRange(data, br)
}

func (s *LocalFS) Set(key string, data []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), dirPermissionBits); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if err := os.WriteFile(p, data, filePermissionBits); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func (s *LocalFS) SetIfNotExists(key string, data []byte) error {
	exists, err := s.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.Set(key, data)
}

// metadataFileNames are the node-document files a directory may carry
// alongside its children; a directory containing only these is an empty
// node, not a non-empty one.
var metadataFileNames = map[string]bool{
	"zarr.json": true, ".zgroup": true, ".zarray": true, ".zattrs": true,
}

// Erase removes key. When key names a directory, it is treated as a node
// prefix. An array directory is a leaf regardless of what it holds
// (chunk files, and chunk subdirectories under a "/"-separated chunk
// key encoding): it is removed whole. A group directory is only removed
// if its own metadata files are all it contains; any other descendant
// entry refuses the erase, matching the spec's "leaf or empty group"
// rule for groups.
func (s *LocalFS) Erase(key string) (bool, error) {
	p := s.path(key)
	info, err := os.Stat(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !info.IsDir() {
		if err := os.Remove(p); err != nil {
			return false, fmt.Errorf("%w: %v", ErrStore, err)
		}
		return true, nil
	}

	isArray, err := s.isArrayDirLocked(p)
	if err != nil {
		return false, err
	}
	if isArray {
		if err := os.RemoveAll(p); err != nil {
			return false, fmt.Errorf("%w: %v", ErrStore, err)
		}
		return true, nil
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	for _, e := range entries {
		if !metadataFileNames[e.Name()] {
			return false, fmt.Errorf("%w: %s", ErrNotEmpty, key)
		}
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(p, e.Name())); err != nil {
			return false, fmt.Errorf("%w: %v", ErrStore, err)
		}
	}
	if err := os.Remove(p); err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return true, nil
}

// isArrayDirLocked reports whether the node directory at p is an array:
// a v2 store marks this with a ".zarray" file, a v3 store with a
// "zarr.json" whose node_type is "array".
func (s *LocalFS) isArrayDirLocked(p string) (bool, error) {
	if _, err := os.Stat(filepath.Join(p, ".zarray")); err == nil {
		return true, nil
	}
	data, err := os.ReadFile(filepath.Join(p, "zarr.json"))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	_, nodeType, err := metadata.DecodeNodeType(data)
	if err != nil {
		return false, fmt.Errorf("store: decode zarr.json node_type: %w", err)
	}
	return nodeType == metadata.NodeArray, nil
}

// ErasePrefix removes every descendant under prefix and rewrites a
// minimal group document at prefix itself.
func (s *LocalFS) ErasePrefix(prefix string) (bool, error) {
	p := s.path(prefix)
	entries, err := os.ReadDir(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	erased := false
	for _, e := range entries {
		full := filepath.Join(p, e.Name())
		if err := os.RemoveAll(full); err != nil {
			return erased, fmt.Errorf("%w: %v", ErrStore, err)
		}
		erased = true
	}
	if err := s.SetMetadata(prefix, minimalGroupDoc()); err != nil {
		return erased, err
	}
	return erased, nil
}

func minimalGroupDoc() map[string]any {
	doc := metadata.NewGroupDocument()
	out, _ := documentToMap(doc)
	return out
}

func (s *LocalFS) ListDir(prefix string) ([]string, error) {
	p := s.path(prefix)
	entries, err := os.ReadDir(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if name == "zarr.json" || name == ".zgroup" || name == ".zarray" || name == ".zattrs" {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *LocalFS) ListPrefix(prefix string) ([]string, error) {
	p := s.path(prefix)
	var out []string
	err := filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == p {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	sort.Strings(out)
	return out, nil
}

// GetMetadata reads the node document at prefix, preferring the v3
// zarr.json but falling back to v2's .zgroup/.zarray + .zattrs for
// read-only compatibility with existing v2 stores.
func (s *LocalFS) GetMetadata(prefix string) (map[string]any, error) {
	if data, err := s.readFile(prefix, "zarr.json"); err != nil {
		return nil, err
	} else if data != nil {
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("store: decode zarr.json at %q: %w", prefix, err)
		}
		return doc, nil
	}

	if data, err := s.readFile(prefix, ".zarray"); err != nil {
		return nil, err
	} else if data != nil {
		v2doc, err := metadata.DecodeV2ArrayDocument(data)
		if err != nil {
			return nil, err
		}
		attrs, err := s.readV2Attrs(prefix)
		if err != nil {
			return nil, err
		}
		doc, err := metadata.V2ToV3Array(v2doc, attrs)
		if err != nil {
			return nil, err
		}
		return documentToMap(doc)
	}

	if data, err := s.readFile(prefix, ".zgroup"); err != nil {
		return nil, err
	} else if data != nil {
		v2doc, err := metadata.DecodeV2GroupDocument(data)
		if err != nil {
			return nil, err
		}
		attrs, err := s.readV2Attrs(prefix)
		if err != nil {
			return nil, err
		}
		doc := metadata.V2ToV3Group(v2doc, attrs)
		return documentToMap(doc)
	}

	return nil, nil
}

func (s *LocalFS) readV2Attrs(prefix string) (map[string]any, error) {
	data, err := s.readFile(prefix, ".zattrs")
	if err != nil || data == nil {
		return nil, err
	}
	return metadata.DecodeV2Attributes(data)
}

func (s *LocalFS) readFile(prefix, name string) ([]byte, error) {
	p := filepath.Join(s.path(prefix), name)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return data, nil
}

func (s *LocalFS) SetMetadata(prefix string, document map[string]any) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode zarr.json: %w", err)
	}
	return s.Set(joinKey(prefix, "zarr.json"), data)
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if strings.HasSuffix(prefix, "/") {
		return prefix + name
	}
	return prefix + "/" + name
}

func documentToMap(doc any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("store: decode document: %w", err)
	}
	return out, nil
}
