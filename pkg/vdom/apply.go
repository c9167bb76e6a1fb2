package vdom

// Apply replays d against root, the live counterpart of the previous tree d
// was computed from, and returns the root of the updated tree.
//
// The returned root is root itself unless d replaces it. Changes at each
// parent are applied in this order: removals, insertions (appended, taking
// ownership of a clone of the carried element), nested diffs addressed by
// key, attribute updates, and finally the order resync.
//
// Apply stops at the first change that cannot be replayed. The tree may then
// be partially updated and should be resynchronized from a fresh snapshot.
func Apply(root Element, d *DiffTree) (Element, error) {
	if d == nil {
		return root, nil
	}
	if root == nil {
		return nil, opError("Apply", ErrUnknownChange)
	}

	var (
		sortKeys []Key
		attrs    []Change
	)

	for _, c := range d.Changes {
		switch c.Op {
		case OpReplaceNode:
			if c.Element == nil {
				return nil, nil
			}
			return c.Element.Clone(), nil
		case OpUpdateText:
			if _, err := root.UpdateText(c.Text); err != nil {
				return root, err
			}
		case OpUpdateAttributes:
			attrs = append(attrs, c)
		case OpRemoveChild:
			p, err := asParent(root, "RemoveChild")
			if err != nil {
				return root, err
			}
			i, ok := p.IndexOf(c.Key)
			if !ok {
				return root, keyError("RemoveChild", c.Key, ErrUnknownKey)
			}
			if _, err := p.RemoveChild(i); err != nil {
				return root, err
			}
		case OpInsertChild, OpAppendChild:
			if _, err := root.AppendChild(c.Element.Clone()); err != nil {
				return root, err
			}
		case OpAppendAll:
			if _, err := root.AppendAll(cloneElements(c.Elements)); err != nil {
				return root, err
			}
		case OpInsertBefore, OpInsertAll, OpReplaceChild:
			if err := applyKeyed(root, c); err != nil {
				return root, err
			}
		case OpSortChildren:
			sortKeys = c.Keys
		default:
			return root, opError(c.Op.String(), ErrUnknownChange)
		}
	}

	if len(d.Children) > 0 {
		p, err := asParent(root, "Apply")
		if err != nil {
			return root, err
		}
		for _, cd := range d.Children {
			i, ok := p.IndexOf(cd.Key)
			if !ok {
				return root, keyError("Apply", cd.Key, ErrUnknownKey)
			}
			child := p.children[i]
			updated, err := Apply(child, cd.Diff)
			if err != nil {
				return root, err
			}
			if updated != child {
				if _, err := p.ReplaceChild(i, updated); err != nil {
					return root, err
				}
			}
		}
	}

	for _, c := range attrs {
		if _, err := root.UpdateAttributes(c.Attrs, c.Removed); err != nil {
			return root, err
		}
	}

	if sortKeys != nil {
		p, err := asParent(root, "SortChildren")
		if err != nil {
			return root, err
		}
		if err := p.sortToKeys(sortKeys); err != nil {
			return root, err
		}
	}

	return root, nil
}

// ApplyChanges replays a flat list of changes, such as those returned by the
// mutation methods, against el.
func ApplyChanges(el Element, changes []Change) (Element, error) {
	for _, c := range changes {
		var err error
		el, err = Apply(el, &DiffTree{Cost: 1, Changes: []Change{c}})
		if err != nil {
			return el, err
		}
	}
	return el, nil
}

// applyKeyed replays the mutator changes that address a sibling by key.
func applyKeyed(root Element, c Change) error {
	p, err := asParent(root, c.Op.String())
	if err != nil {
		return err
	}
	i, ok := p.IndexOf(c.Key)
	if !ok {
		return keyError(c.Op.String(), c.Key, ErrUnknownKey)
	}
	switch c.Op {
	case OpInsertBefore:
		_, err = p.InsertBefore(i, c.Element.Clone())
	case OpInsertAll:
		_, err = p.InsertAll(i, cloneElements(c.Elements))
	case OpReplaceChild:
		_, err = p.ReplaceChild(i, c.Element.Clone())
	}
	return err
}

func asParent(el Element, op string) (*Parent, error) {
	p, ok := el.(*Parent)
	if !ok {
		return nil, opError(op, ErrChildlessElementOp)
	}
	return p, nil
}
