// Package store implements the key/value backends a Dataset reads and
// writes metadata documents and chunk bytes through: an in-memory map, a
// local filesystem directory, and a read-only HTTP store.
package store

import "errors"

// Sentinel errors returned by Store implementations. Backend-specific
// failures that do not fit one of these are wrapped in ErrStore.
var (
	ErrStore        = errors.New("store: backend I/O failure")
	ErrReadOnly     = errors.New("store: backend is read-only")
	ErrInvalidRange = errors.New("store: invalid byte range")
	ErrNotEmpty     = errors.New("store: prefix has descendants")
)

// ByteRange selects a sub-range of a stored value. A nil *ByteRange
// means "the whole value". Exactly one of the three shapes below is
// legal at a time:
//   - Offset set, Length == 0, End == false: from Offset to end of value.
//   - Offset set, negative, End == false: Offset bytes from the end.
//   - Offset set (start), End == true, Length set: [Offset, Offset+Length).
type ByteRange struct {
	Offset int64
	Length int64
	End    bool
}

// Capabilities describes what operations a Store backend supports.
type Capabilities struct {
	ReadOnly                  bool
	SupportsListing           bool
	SupportsDeletes           bool
	SupportsConsolidatedMeta  bool
	SupportsWrites            bool
}

// Store is the key/value interface every backend implements. Keys are
// store-relative paths using "/" as the hierarchy separator regardless
// of backend; a LocalFS store translates them to OS paths internally.
type Store interface {
	// Exists reports whether key has a value.
	Exists(key string) (bool, error)

	// Get returns the bytes at key, or nil if the key is absent. br
	// may be nil to request the whole value.
	Get(key string, br *ByteRange) ([]byte, error)

	// Set overwrites or creates key with the given bytes.
	Set(key string, data []byte) error

	// SetIfNotExists is a no-op when key is already present.
	SetIfNotExists(key string, data []byte) error

	// Erase removes key. It succeeds only for a leaf key (a chunk or an
	// array) or an empty group prefix.
	Erase(key string) (bool, error)

	// ErasePrefix removes every descendant of prefix but preserves the
	// node at prefix itself.
	ErasePrefix(prefix string) (bool, error)

	// ListDir returns the immediate child names under prefix.
	ListDir(prefix string) ([]string, error)

	// ListPrefix returns every descendant path under prefix.
	ListPrefix(prefix string) ([]string, error)

	// GetMetadata returns the node document at prefix normalized to its
	// v3 representation, or nil if absent.
	GetMetadata(prefix string) (map[string]any, error)

	// SetMetadata writes the node document at prefix. A no-op returning
	// ErrReadOnly on a read-only store.
	SetMetadata(prefix string, document map[string]any) error

	// Capabilities reports this backend's capability flags.
	Capabilities() Capabilities

	// Separator is the default chunk-key separator new arrays on this
	// store should use.
	Separator() string
}
