package zarr

import (
	"strings"

	"github.com/zarrio/zarr/internal/store"
)

// Node is implemented by *Group and *Array: anything that can sit in the
// hierarchy with a name, a path, a parent, and an attribute bag.
type Node interface {
	Name() string
	Path() string
	Parent() *Group
	Attrs() map[string]any
	SetAttr(key string, value any)
	DeleteAttr(key string)
	Save() error
}

// nodeBase is the header every concrete node variant embeds: identity,
// parent linkage, the backing store, and the attribute bag with the
// dirty flag that gates Save. Mutations set dirty; the concrete type's
// Save method is responsible for writing its full document (attributes
// plus whatever else the node type carries) and clearing it.
type nodeBase struct {
	name   string
	parent *Group
	st     store.Store

	attrs map[string]any
	dirty bool
}

func (n *nodeBase) Name() string { return n.name }

func (n *nodeBase) Parent() *Group { return n.parent }

// Path renders the absolute "/"-separated path from the root to this
// node. The root itself (parent == nil) is "/".
func (n *nodeBase) Path() string {
	if n.parent == nil {
		return "/"
	}
	segments := []string{n.name}
	for p := n.parent; p.parent != nil; p = p.parent {
		segments = append([]string{p.name}, segments...)
	}
	return JoinPath(segments)
}

// Attrs returns a copy of the node's attribute bag; callers mutating the
// result do not affect the node.
func (n *nodeBase) Attrs() map[string]any {
	out := make(map[string]any, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out
}

func (n *nodeBase) SetAttr(key string, value any) {
	if n.attrs == nil {
		n.attrs = map[string]any{}
	}
	n.attrs[key] = value
	n.dirty = true
}

func (n *nodeBase) DeleteAttr(key string) {
	if n.attrs == nil {
		return
	}
	delete(n.attrs, key)
	n.dirty = true
}

// storePrefixOf renders n's Path() as the key-space prefix the Store
// interface expects: no leading slash, "" for the root.
func storePrefixOf(n Node) string {
	return strings.TrimPrefix(n.Path(), "/")
}

// joinPrefix appends name to a store prefix, omitting the separator when
// prefix is the root's empty prefix.
func joinPrefix(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
