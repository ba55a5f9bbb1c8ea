package zarr

import "errors"

// Sentinel errors returned by hierarchy operations. Store-level failures
// are surfaced wrapped, not replaced, so errors.Is still finds the
// underlying store sentinel (store.ErrNotEmpty, store.ErrStore, ...).
var (
	ErrNotFound       = errors.New("zarr: node not found")
	ErrDuplicateName  = errors.New("zarr: name already exists in group")
	ErrNotEmpty       = errors.New("zarr: group is not empty")
	ErrInvalidName    = errors.New("zarr: invalid node name")
	ErrNotGroup       = errors.New("zarr: node is not a group")
	ErrNotArray       = errors.New("zarr: node is not an array")
	ErrReadOnly       = errors.New("zarr: hierarchy is read-only")
	ErrInvalidPath    = errors.New("zarr: invalid path")
	ErrRootHasNoName  = errors.New("zarr: the root node has no name and no parent")
	ErrBuilderInvalid = errors.New("zarr: array metadata builder is incomplete")
)
