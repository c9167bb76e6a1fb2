package vdom

// DiffOptions tunes the reconciler.
type DiffOptions struct {
	// IgnoreAttributes makes attribute differences invisible to the diff.
	// By default a same-tag Void or Parent whose attributes differ gets an
	// OpUpdateAttributes change.
	IgnoreAttributes bool
}

// Differ computes DiffTrees. A Differ holds no mutable state and may be used
// from many goroutines at once.
type Differ struct {
	opts DiffOptions
}

// NewDiffer creates a Differ with the given options.
func NewDiffer(opts DiffOptions) *Differ {
	return &Differ{opts: opts}
}

var defaultDiffer = NewDiffer(DiffOptions{})

// Diff compares two elements occupying the same slot and returns the changes
// that turn prev into next, or nil if there are none.
//
// Diff only reads its inputs. Elements carried by the returned changes are
// clones and never alias next.
func Diff(prev, next Element) *DiffTree {
	return defaultDiffer.Diff(prev, next)
}

// Diff is like the package-level Diff but uses the Differ's options.
func (d *Differ) Diff(prev, next Element) *DiffTree {
	if prev == nil && next == nil {
		return nil
	}
	if prev == nil || next == nil {
		return replaceWith(next)
	}

	switch p := prev.(type) {
	case *Text:
		if n, ok := next.(*Text); ok {
			return diffText(p, n)
		}
	case *Void:
		if n, ok := next.(*Void); ok && p.Tag == n.Tag {
			return newDiffTree(d.diffAttrs(p.Attrs, n.Attrs), nil)
		}
	case *Parent:
		if n, ok := next.(*Parent); ok && p.Tag == n.Tag {
			return d.diffParent(p, n)
		}
	}

	// Different shape or tag: no recursion, replace the whole node.
	return replaceWith(next)
}

func replaceWith(next Element) *DiffTree {
	if next != nil {
		next = next.Clone()
	}
	return newDiffTree([]Change{ReplaceNodeChange(next)}, nil)
}

// diffText compares text leaves.
func diffText(prev, next *Text) *DiffTree {
	if prev.Value == next.Value {
		return nil
	}
	return newDiffTree([]Change{UpdateTextChange(next.Value)}, nil)
}

// diffAttrs returns at most one OpUpdateAttributes change.
func (d *Differ) diffAttrs(prev, next *Attributes) []Change {
	if d.opts.IgnoreAttributes {
		return nil
	}
	set, removed := diffAttributes(prev, next)
	if set == nil && removed == nil {
		return nil
	}
	return []Change{UpdateAttributesChange(set, removed)}
}

// diffParent reconciles two same-tag parents by child key.
//
// Removals are emitted in previous-child order, insertions in next-child
// order. A single OpSortChildren with next's full key order is emitted, last,
// when a surviving child changes index, or when removing and then appending
// the inserted children would not yield next's order.
func (d *Differ) diffParent(prev, next *Parent) *DiffTree {
	changes := d.diffAttrs(prev.Attrs, next.Attrs)
	var children []ChildDiff

	ordered := true
	survivors := 0
	lastIndex := -1

	for i, child := range prev.children {
		k := child.Key()
		j, ok := next.IndexOf(k)
		if !ok {
			changes = append(changes, RemoveChildChange(k))
			continue
		}
		survivors++
		if j != i || j < lastIndex {
			ordered = false
		}
		lastIndex = j

		if sub := d.Diff(child, next.children[j]); sub != nil {
			children = append(children, ChildDiff{Key: k, Diff: sub})
		}
	}

	for j, child := range next.children {
		if _, ok := prev.IndexOf(child.Key()); ok {
			continue
		}
		// New children must all sit after the survivors to be placed
		// correctly by an append.
		if j < survivors {
			ordered = false
		}
		changes = append(changes, InsertChildChange(child.Clone()))
	}

	if !ordered {
		changes = append(changes, SortChildrenChange(next.Keys()))
	}

	return newDiffTree(changes, children)
}
