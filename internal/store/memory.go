package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store: all state lives in two mutex-guarded
// maps, one from key to chunk blob and one from prefix to node metadata
// document. Deletes are supported (Erase refuses a non-array key that
// still has descendants); there is no consolidated metadata capability.
type Memory struct {
	mu        sync.RWMutex
	blobs     map[string][]byte
	metadata  map[string]map[string]any
	separator string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{
		blobs:     map[string][]byte{},
		metadata:  map[string]map[string]any{},
		separator: ".",
	}
}

func (m *Memory) Separator() string { return m.separator }

func (m *Memory) Capabilities() Capabilities {
	return Capabilities{SupportsListing: true, SupportsDeletes: true, SupportsWrites: true}
}

func (m *Memory) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *Memory) Get(key string, br *ByteRange) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return applyByteRange(data, br)
}

func (m *Memory) Set(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) SetIfNotExists(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[key]; ok {
		return nil
	}
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Erase(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := key + "/"
	if doc, ok := m.metadata[key]; ok && doc["node_type"] == "array" {
		// An array is a leaf: its chunk blobs go with it.
		for k := range m.blobs {
			if strings.HasPrefix(k, prefix) {
				delete(m.blobs, k)
			}
		}
		delete(m.blobs, key)
		delete(m.metadata, key)
		return true, nil
	}
	for k := range m.allKeysLocked() {
		if k != key && strings.HasPrefix(k, prefix) {
			return false, fmt.Errorf("%w: %s has descendants", ErrNotEmpty, key)
		}
	}
	_, existedBlob := m.blobs[key]
	_, existedMeta := m.metadata[key]
	delete(m.blobs, key)
	delete(m.metadata, key)
	return existedBlob || existedMeta, nil
}

func (m *Memory) ErasePrefix(prefix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	erased := false
	withSep := prefix
	if withSep != "" && !strings.HasSuffix(withSep, "/") {
		withSep += "/"
	}
	for k := range m.blobs {
		if strings.HasPrefix(k, withSep) {
			delete(m.blobs, k)
			erased = true
		}
	}
	for k := range m.metadata {
		if k != prefix && strings.HasPrefix(k, withSep) {
			delete(m.metadata, k)
			erased = true
		}
	}
	if _, ok := m.metadata[prefix]; ok {
		m.metadata[prefix] = minimalGroupDoc()
	}
	return erased, nil
}

func (m *Memory) ListDir(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	withSep := prefix
	if withSep != "" && !strings.HasSuffix(withSep, "/") {
		withSep += "/"
	}
	seen := map[string]bool{}
	var out []string
	for k := range m.allKeysLocked() {
		if !strings.HasPrefix(k, withSep) {
			continue
		}
		rest := k[len(withSep):]
		name := rest
		if i := strings.Index(rest, "/"); i >= 0 {
			name = rest[:i]
		}
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) ListPrefix(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	withSep := prefix
	if withSep != "" && !strings.HasSuffix(withSep, "/") {
		withSep += "/"
	}
	var out []string
	for k := range m.allKeysLocked() {
		if strings.HasPrefix(k, withSep) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) GetMetadata(prefix string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.metadata[prefix]
	if !ok {
		return nil, nil
	}
	return doc, nil
}

func (m *Memory) SetMetadata(prefix string, document map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[prefix] = document
	return nil
}

// allKeysLocked unions blob and metadata keys so ListDir/ListPrefix also
// surface node prefixes that have no chunk data yet. Callers must hold
// m.mu.
func (m *Memory) allKeysLocked() map[string]struct{} {
	out := make(map[string]struct{}, len(m.blobs)+len(m.metadata))
	for k := range m.blobs {
		out[k] = struct{}{}
	}
	for k := range m.metadata {
		out[k] = struct{}{}
	}
	return out
}

func applyByteRange(data []byte, br *ByteRange) ([]byte, error) {
	if br == nil {
		return data, nil
	}
	size := int64(len(data))
	start := br.Offset
	end := size
	if br.End {
		end = start + br.Length
	} else if start < 0 {
		start = size + start
		end = size
	}
	if start < 0 || start >= size || end > size || start >= end {
		return nil, fmt.Errorf("%w: offset=%d length=%d size=%d", ErrInvalidRange, br.Offset, br.Length, size)
	}
	return data[start:end], nil
}
