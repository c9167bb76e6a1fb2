package vdom

// DiffTree is the hierarchical result of diffing two elements.
//
// Changes apply at this node. Children holds the nested diffs of the node's
// children that changed, in the order those children appear in the previous
// tree. Either field is nil when it would be empty; a DiffTree with neither is
// never constructed, Diff returns nil instead.
type DiffTree struct {
	// Cost is the total number of changes in this subtree, nested ones
	// included.
	Cost uint64

	Changes  []Change
	Children []ChildDiff
}

// ChildDiff pairs a child key with that child's nested diff.
type ChildDiff struct {
	Key  Key
	Diff *DiffTree
}

// newDiffTree returns nil if there is nothing to record.
func newDiffTree(changes []Change, children []ChildDiff) *DiffTree {
	if len(changes) == 0 && len(children) == 0 {
		return nil
	}
	d := &DiffTree{Cost: uint64(len(changes))}
	if len(changes) > 0 {
		d.Changes = changes
	}
	if len(children) > 0 {
		d.Children = children
		for _, c := range children {
			d.Cost += c.Diff.Cost
		}
	}
	return d
}

// Len returns the number of changes local to this node.
func (d *DiffTree) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Changes)
}

// Child returns the nested diff for the child with key, or nil.
func (d *DiffTree) Child(key Key) *DiffTree {
	if d == nil {
		return nil
	}
	for _, c := range d.Children {
		if c.Key == key {
			return c.Diff
		}
	}
	return nil
}

// Walk visits d and every nested diff depth-first, parents before children.
// path holds the child keys leading from the root to the visited node; it is
// empty for the root and must not be retained. A non-nil error from fn stops
// the walk and is returned.
func (d *DiffTree) Walk(fn func(path []Key, d *DiffTree) error) error {
	if d == nil {
		return nil
	}
	return d.walk(nil, fn)
}

func (d *DiffTree) walk(path []Key, fn func(path []Key, d *DiffTree) error) error {
	if err := fn(path, d); err != nil {
		return err
	}
	for _, c := range d.Children {
		if err := c.Diff.walk(append(path, c.Key), fn); err != nil {
			return err
		}
	}
	return nil
}

// Ops counts the changes in the subtree by operation.
func (d *DiffTree) Ops() map[ChangeOp]int {
	counts := make(map[ChangeOp]int)
	_ = d.Walk(func(_ []Key, n *DiffTree) error {
		for _, c := range n.Changes {
			counts[c.Op]++
		}
		return nil
	})
	return counts
}
