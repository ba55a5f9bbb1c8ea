package zarr

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/zarrio/zarr/internal/metadata"
	"github.com/zarrio/zarr/internal/store"
)

// Hierarchy is a Dataset: a Store plus the materialized tree of groups
// and arrays rooted at it. A Hierarchy's root is either a Group (the
// common case) or, for a single-array Zarr, an Array with no groups at
// all.
type Hierarchy struct {
	st    store.Store
	group *Group
	array *Array
}

// CreateWithRootGroup creates a fresh dataset whose root is an empty
// group, writing its metadata document immediately.
func CreateWithRootGroup(st store.Store, attrs map[string]any) (*Hierarchy, error) {
	g := newGroup(st, "", nil, attrs)
	doc := metadata.NewGroupDocument()
	doc.Attributes = attrs
	m, err := metadata.ToMap(doc)
	if err != nil {
		return nil, fmt.Errorf("zarr: create: %w", err)
	}
	if err := st.SetMetadata("", m); err != nil {
		return nil, fmt.Errorf("zarr: create: %w", err)
	}
	return &Hierarchy{st: st, group: g}, nil
}

// CreateWithRootArray creates a fresh single-array dataset: no group
// exists anywhere in the hierarchy, and builder's document is written
// directly at the store's root prefix.
func CreateWithRootArray(st store.Store, builder *metadata.ArrayMetadataBuilder, attrs map[string]any) (*Hierarchy, error) {
	if !builder.IsValid() {
		return nil, ErrBuilderInvalid
	}
	doc := builder.Metadata(attrs)
	arr, err := newArrayFromDocument(st, "", nil, doc)
	if err != nil {
		return nil, fmt.Errorf("zarr: create: %w", err)
	}
	m, err := metadata.ToMap(doc)
	if err != nil {
		return nil, fmt.Errorf("zarr: create: %w", err)
	}
	if err := st.SetMetadata("", m); err != nil {
		return nil, fmt.Errorf("zarr: create: %w", err)
	}
	return &Hierarchy{st: st, array: arr}, nil
}

// Open reads the store's root metadata document and recursively
// materializes the hierarchy beneath it. A root whose node_type is
// "array" opens as a single-array dataset; otherwise the root opens as
// a group and every descendant is fetched via store.ListDir +
// GetMetadata, skipping any child whose metadata is unrecognized.
func Open(st store.Store) (*Hierarchy, error) {
	doc, err := st.GetMetadata("")
	if err != nil {
		return nil, fmt.Errorf("zarr: open: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("zarr: open: %w: no root metadata", ErrNotFound)
	}
	nodeType, _ := doc["node_type"].(string)
	switch nodeType {
	case "array":
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("zarr: open: %w", err)
		}
		adoc, err := metadata.DecodeArrayDocument(data)
		if err != nil {
			return nil, fmt.Errorf("zarr: open: %w", err)
		}
		arr, err := newArrayFromDocument(st, "", nil, adoc)
		if err != nil {
			return nil, fmt.Errorf("zarr: open: %w", err)
		}
		return &Hierarchy{st: st, array: arr}, nil
	default:
		attrs, _ := doc["attributes"].(map[string]any)
		g := newGroup(st, "", nil, attrs)
		if err := materializeChildren(st, g); err != nil {
			return nil, fmt.Errorf("zarr: open: %w", err)
		}
		return &Hierarchy{st: st, group: g}, nil
	}
}

func materializeChildren(st store.Store, g *Group) error {
	prefix := storePrefixOf(g)
	names, err := st.ListDir(prefix)
	if err != nil {
		return fmt.Errorf("zarr: list %q: %w", g.Path(), err)
	}
	for _, name := range names {
		childPrefix := joinPrefix(prefix, name)
		childDoc, err := st.GetMetadata(childPrefix)
		if err != nil {
			return fmt.Errorf("zarr: metadata %q: %w", childPrefix, err)
		}
		if childDoc == nil {
			continue
		}
		nodeType, _ := childDoc["node_type"].(string)
		switch nodeType {
		case "group":
			attrs, _ := childDoc["attributes"].(map[string]any)
			child := newGroup(st, name, g, attrs)
			if err := materializeChildren(st, child); err != nil {
				return err
			}
			g.addChild(name, child)
		case "array":
			data, err := json.Marshal(childDoc)
			if err != nil {
				return fmt.Errorf("zarr: %q: %w", childPrefix, err)
			}
			adoc, err := metadata.DecodeArrayDocument(data)
			if err != nil {
				return fmt.Errorf("zarr: decode array %q: %w", childPrefix, err)
			}
			arr, err := newArrayFromDocument(st, name, g, adoc)
			if err != nil {
				return fmt.Errorf("zarr: build array %q: %w", childPrefix, err)
			}
			g.addChild(name, arr)
		default:
			continue
		}
	}
	return nil
}

// Root returns the dataset's root node (a *Group, or a *Array for a
// single-array dataset).
func (h *Hierarchy) Root() Node {
	if h.group != nil {
		return h.group
	}
	return h.array
}

// Groups returns every group's full path in the hierarchy, root
// included, in depth-first order. A single-array dataset has none.
func (h *Hierarchy) Groups() []string {
	if h.group == nil {
		return nil
	}
	var out []string
	_ = Walk(h.group, func(n Node) error {
		if _, ok := n.(*Group); ok {
			out = append(out, n.Path())
		}
		return nil
	})
	return out
}

// Arrays returns every array's full path in the hierarchy, in
// depth-first order.
func (h *Hierarchy) Arrays() []string {
	if h.group == nil {
		if h.array != nil {
			return []string{h.array.Path()}
		}
		return nil
	}
	var out []string
	_ = Walk(h.group, func(n Node) error {
		if _, ok := n.(*Array); ok {
			out = append(out, n.Path())
		}
		return nil
	})
	return out
}

// Resolve walks path from the dataset root (see Group.Resolve for the
// ".." semantics); a single-array dataset only resolves "/" and "".
func (h *Hierarchy) Resolve(path string) (Node, error) {
	if h.group == nil {
		if path == "" || path == "/" {
			return h.array, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return h.group.Resolve(path)
}

// AddGroup creates a subgroup named name under the group at parentPath.
func (h *Hierarchy) AddGroup(parentPath, name string, attrs map[string]any) (*Group, error) {
	parent, err := h.resolveGroup(parentPath)
	if err != nil {
		return nil, err
	}
	return parent.CreateGroup(name, attrs)
}

// AddArray creates an array named name under the group at parentPath.
func (h *Hierarchy) AddArray(parentPath, name string, builder *metadata.ArrayMetadataBuilder, attrs map[string]any) (*Array, error) {
	parent, err := h.resolveGroup(parentPath)
	if err != nil {
		return nil, err
	}
	return parent.CreateArray(name, builder, attrs)
}

func (h *Hierarchy) resolveGroup(path string) (*Group, error) {
	if h.group == nil {
		return nil, fmt.Errorf("%w: dataset root is an array", ErrNotGroup)
	}
	n, err := h.group.Resolve(path)
	if err != nil {
		return nil, err
	}
	g, ok := n.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotGroup, path)
	}
	return g, nil
}

// Delete removes the direct child named name from the group at
// parentPath (a leaf array, or an already-empty subgroup).
func (h *Hierarchy) Delete(parentPath, name string) error {
	parent, err := h.resolveGroup(parentPath)
	if err != nil {
		return err
	}
	return parent.Delete(name)
}

// DeleteGroup removes the group at path. A non-empty group requires
// recursive=true. Deleting the root recursively empties it in place
// (it has no parent to unlink from); deleting any other group
// recursively removes it entirely from its parent.
func (h *Hierarchy) DeleteGroup(path string, recursive bool) error {
	n, err := h.Resolve(path)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	g, ok := n.(*Group)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotGroup, path)
	}
	nonEmpty := len(g.order) > 0
	if nonEmpty && !recursive {
		return fmt.Errorf("%w: %q", ErrNotEmpty, path)
	}
	if g.parent == nil {
		if nonEmpty {
			return g.DeleteAll()
		}
		return nil
	}
	if nonEmpty {
		if err := g.DeleteAll(); err != nil {
			return err
		}
	}
	return g.parent.Delete(g.name)
}
