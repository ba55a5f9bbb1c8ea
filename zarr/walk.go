package zarr

// WalkFunc is called for every node Walk visits, including the starting
// group itself. Returning an error stops the walk and is propagated to
// Walk's caller.
type WalkFunc func(n Node) error

// Walk visits g and every descendant depth-first: g itself, then each
// direct child in insertion order (arrays visited directly, groups
// recursed into before moving to the next sibling).
func Walk(g *Group, fn WalkFunc) error {
	if err := fn(g); err != nil {
		return err
	}
	for _, name := range g.order {
		child := g.children[name]
		if sub, ok := child.(*Group); ok {
			if err := Walk(sub, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(child); err != nil {
			return err
		}
	}
	return nil
}
