package zarr

import (
	"fmt"

	"github.com/zarrio/zarr/internal/metadata"
	"github.com/zarrio/zarr/internal/store"
)

// Group is a Node that holds an ordered set of named children (groups or
// arrays). Children are added by first committing their metadata to the
// store and only then linking them into the parent's child mapping, the
// atomicity rule the hierarchy's write path must follow.
type Group struct {
	nodeBase
	order    []string
	children map[string]Node
}

var _ Node = (*Group)(nil)

func newGroup(st store.Store, name string, parent *Group, attrs map[string]any) *Group {
	return &Group{
		nodeBase: nodeBase{name: name, parent: parent, st: st, attrs: attrs},
		children: map[string]Node{},
	}
}

func (g *Group) addChild(name string, n Node) {
	if _, exists := g.children[name]; !exists {
		g.order = append(g.order, name)
	}
	g.children[name] = n
}

func (g *Group) removeChild(name string) {
	delete(g.children, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Groups returns the full paths of g's direct child groups, in the order
// they were created or materialized on open.
func (g *Group) Groups() []string {
	var out []string
	for _, name := range g.order {
		if sub, ok := g.children[name].(*Group); ok {
			out = append(out, sub.Path())
		}
	}
	return out
}

// Arrays returns the full paths of g's direct child arrays, in the order
// they were created or materialized on open.
func (g *Group) Arrays() []string {
	var out []string
	for _, name := range g.order {
		if arr, ok := g.children[name].(*Array); ok {
			out = append(out, arr.Path())
		}
	}
	return out
}

// Get looks up a direct child by name.
func (g *Group) Get(name string) (Node, error) {
	n, ok := g.children[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return n, nil
}

// CreateGroup adds a new, empty subgroup. The child's metadata document
// is written to the store before it is linked into g's child mapping.
func (g *Group) CreateGroup(name string, attrs map[string]any) (*Group, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if _, exists := g.children[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	child := newGroup(g.st, name, g, attrs)
	doc := metadata.NewGroupDocument()
	doc.Attributes = attrs
	m, err := metadata.ToMap(doc)
	if err != nil {
		return nil, fmt.Errorf("zarr: create group %q: %w", name, err)
	}
	if err := g.st.SetMetadata(storePrefixOf(child), m); err != nil {
		return nil, fmt.Errorf("zarr: create group %q: %w", name, err)
	}
	g.addChild(name, child)
	return child, nil
}

// CreateArray adds a new array built from builder, which must already be
// IsValid. Its metadata document is written before it is linked into g's
// child mapping, mirroring CreateGroup's ordering guarantee.
func (g *Group) CreateArray(name string, builder *metadata.ArrayMetadataBuilder, attrs map[string]any) (*Array, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if _, exists := g.children[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if !builder.IsValid() {
		return nil, ErrBuilderInvalid
	}
	doc := builder.Metadata(attrs)
	m, err := metadata.ToMap(doc)
	if err != nil {
		return nil, fmt.Errorf("zarr: create array %q: %w", name, err)
	}
	arr, err := newArrayFromDocument(g.st, name, g, doc)
	if err != nil {
		return nil, fmt.Errorf("zarr: create array %q: %w", name, err)
	}
	if err := g.st.SetMetadata(storePrefixOf(arr), m); err != nil {
		return nil, fmt.Errorf("zarr: create array %q: %w", name, err)
	}
	g.addChild(name, arr)
	return arr, nil
}

// Delete removes a direct child. It refuses a non-empty subgroup; use
// DeleteAll on the subgroup first, or Hierarchy.DeleteGroup with
// recursive=true.
func (g *Group) Delete(name string) error {
	child, ok := g.children[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if sub, isGroup := child.(*Group); isGroup && len(sub.order) > 0 {
		return fmt.Errorf("%w: %q", ErrNotEmpty, name)
	}
	erased, err := g.st.Erase(storePrefixOf(child))
	if err != nil {
		return fmt.Errorf("zarr: delete %q: %w", name, err)
	}
	if erased {
		g.removeChild(name)
	}
	return nil
}

// DeleteAll erases every descendant of g but leaves g itself in place as
// an empty group with no attributes, matching the store's erase_prefix
// guarantee that a minimal document survives at the prefix.
func (g *Group) DeleteAll() error {
	if _, err := g.st.ErasePrefix(storePrefixOf(g)); err != nil {
		return fmt.Errorf("zarr: delete all under %q: %w", g.Path(), err)
	}
	g.children = map[string]Node{}
	g.order = nil
	g.attrs = nil
	g.dirty = false
	return nil
}

// Resolve walks path (absolute, if it starts with "/", relative to g
// otherwise) component by component, following ".." to a node's parent.
// Walking past the root's parent yields (nil, nil) rather than an error,
// matching the hierarchy's "out of bounds .. is null" convention.
func (g *Group) Resolve(path string) (Node, error) {
	var cur Node = g
	if len(path) > 0 && path[0] == '/' {
		cur = g.root()
	}
	for _, seg := range SplitPath(path) {
		if seg == ".." {
			curGroup, ok := cur.(*Group)
			if !ok {
				return nil, fmt.Errorf("%w: %q has no parent", ErrNotFound, cur.Path())
			}
			if curGroup.parent == nil {
				return nil, nil
			}
			cur = curGroup.parent
			continue
		}
		curGroup, ok := cur.(*Group)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a group", ErrNotGroup, cur.Path())
		}
		child, ok := curGroup.children[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, seg)
		}
		cur = child
	}
	return cur, nil
}

func (g *Group) root() *Group {
	cur := g
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Save persists g's attributes if they have been mutated since the last
// Save. A group with no pending changes is a no-op.
func (g *Group) Save() error {
	if !g.dirty {
		return nil
	}
	doc := metadata.NewGroupDocument()
	doc.Attributes = g.attrs
	m, err := metadata.ToMap(doc)
	if err != nil {
		return fmt.Errorf("zarr: save group %q: %w", g.Path(), err)
	}
	if err := g.st.SetMetadata(storePrefixOf(g), m); err != nil {
		return fmt.Errorf("zarr: save group %q: %w", g.Path(), err)
	}
	g.dirty = false
	return nil
}
