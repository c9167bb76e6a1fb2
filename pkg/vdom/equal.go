package vdom

import "slices"

// Same reports whether a and b have the same identity, i.e. equal keys.
// It is a shallow check and says nothing about content.
func Same(a, b Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

// Equal reports whether a and b are structurally equal: same shape, text
// value, tag, attributes, and pairwise-equal children by position.
// Keys are not compared.
func Equal(a, b Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *Text:
		y, ok := b.(*Text)
		return ok && x.Value == y.Value
	case *Void:
		y, ok := b.(*Void)
		return ok && x.Tag == y.Tag && x.Attrs.Equal(y.Attrs)
	case *Parent:
		y, ok := b.(*Parent)
		if !ok || x.Tag != y.Tag || !x.Attrs.Equal(y.Attrs) || len(x.children) != len(y.children) {
			return false
		}
		for i := range x.children {
			if !Equal(x.children[i], y.children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// EqualKeyed is like Equal but also requires every pair of corresponding
// nodes to have equal keys.
func EqualKeyed(a, b Element) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Key() != b.Key() || !Equal(a, b) {
		return false
	}
	x, ok := a.(*Parent)
	if !ok {
		return true
	}
	y := b.(*Parent)
	for i := range x.children {
		if !EqualKeyed(x.children[i], y.children[i]) {
			return false
		}
	}
	return true
}

// EqualChange reports whether a and b describe the same edit. Carried
// elements are compared with EqualKeyed and attributes with Attributes.Equal.
func EqualChange(a, b Change) bool {
	if a.Op != b.Op || a.Key != b.Key || a.Text != b.Text ||
		!EqualKeyed(a.Element, b.Element) || !a.Attrs.Equal(b.Attrs) ||
		!slices.Equal(a.Keys, b.Keys) || !slices.Equal(a.Removed, b.Removed) {
		return false
	}
	return slices.EqualFunc(a.Elements, b.Elements, EqualKeyed)
}

// EqualDiff reports whether a and b hold the same cost, changes and nested
// diffs, in the same order.
func EqualDiff(a, b *DiffTree) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Cost != b.Cost || !slices.EqualFunc(a.Changes, b.Changes, EqualChange) {
		return false
	}
	return slices.EqualFunc(a.Children, b.Children, func(x, y ChildDiff) bool {
		return x.Key == y.Key && EqualDiff(x.Diff, y.Diff)
	})
}
