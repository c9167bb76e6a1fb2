package vdom

import (
	"cmp"
	"slices"
)

// noChildren supplies the child operations of Text and Void, all of which
// fail with ErrChildlessElementOp.
type noChildren struct{}

func (noChildren) AppendChild(Element) (Change, error) {
	return Change{}, opError("AppendChild", ErrChildlessElementOp)
}

func (noChildren) AppendAll([]Element) (Change, error) {
	return Change{}, opError("AppendAll", ErrChildlessElementOp)
}

func (noChildren) InsertBefore(index int, _ Element) (Change, error) {
	return Change{}, indexError("InsertBefore", index, ErrChildlessElementOp)
}

func (noChildren) InsertAll(index int, _ []Element) (Change, error) {
	return Change{}, indexError("InsertAll", index, ErrChildlessElementOp)
}

func (noChildren) ReplaceChild(index int, _ Element) (Change, error) {
	return Change{}, indexError("ReplaceChild", index, ErrChildlessElementOp)
}

func (noChildren) RemoveChild(index int) (Change, error) {
	return Change{}, indexError("RemoveChild", index, ErrChildlessElementOp)
}

func (noChildren) ReorderChildren(func(a, b Element) int) (Change, error) {
	return Change{}, opError("ReorderChildren", ErrChildlessElementOp)
}

// notText supplies UpdateText for Void and Parent.
type notText struct{}

func (notText) UpdateText(string) (Change, error) {
	return Change{}, opError("UpdateText", ErrNotATextNode)
}

// UpdateText replaces the text value.
func (t *Text) UpdateText(value string) (Change, error) {
	t.Value = value
	return UpdateTextChange(value), nil
}

// UpdateAttributes always fails: text nodes carry no attributes.
func (t *Text) UpdateAttributes(*Attributes, []string) (Change, error) {
	return Change{}, opError("UpdateAttributes", ErrNoAttributes)
}

// UpdateAttributes sets every attribute in set and deletes every name in
// remove.
func (v *Void) UpdateAttributes(set *Attributes, remove []string) (Change, error) {
	v.Attrs = patchAttributes(v.Attrs, set, remove)
	return UpdateAttributesChange(set.Clone(), cloneStrings(remove)), nil
}

// UpdateAttributes sets every attribute in set and deletes every name in
// remove.
func (p *Parent) UpdateAttributes(set *Attributes, remove []string) (Change, error) {
	p.Attrs = patchAttributes(p.Attrs, set, remove)
	return UpdateAttributesChange(set.Clone(), cloneStrings(remove)), nil
}

func patchAttributes(attrs, set *Attributes, remove []string) *Attributes {
	if attrs == nil && set.Len() > 0 {
		attrs = NewAttributes()
	}
	for _, name := range remove {
		attrs.Delete(name)
	}
	set.Each(func(name, value string) {
		attrs.Set(name, value)
	})
	return attrs
}

// AppendChild pushes el to the end of the children.
func (p *Parent) AppendChild(el Element) (Change, error) {
	p.ensureKeymap()
	if _, dup := p.keymap[el.Key()]; dup {
		return Change{}, keyError("AppendChild", el.Key(), ErrDuplicateKey)
	}
	p.keymap[el.Key()] = len(p.children)
	p.children = append(p.children, el)
	return Change{Op: OpAppendChild, Element: el.Clone()}, nil
}

// AppendAll pushes els to the end of the children, in order.
func (p *Parent) AppendAll(els []Element) (Change, error) {
	p.ensureKeymap()
	if err := p.checkBatch("AppendAll", els); err != nil {
		return Change{}, err
	}
	for _, el := range els {
		p.keymap[el.Key()] = len(p.children)
		p.children = append(p.children, el)
	}
	return Change{Op: OpAppendAll, Elements: cloneElements(els)}, nil
}

// InsertBefore inserts el immediately before the child at index.
// The returned change references the key of that child so it can be replayed
// as "insert before the node with this key".
func (p *Parent) InsertBefore(index int, el Element) (Change, error) {
	if index < 0 || index >= len(p.children) {
		return Change{}, indexError("InsertBefore", index, ErrIndexOOB)
	}
	p.ensureKeymap()
	if _, dup := p.keymap[el.Key()]; dup {
		return Change{}, keyError("InsertBefore", el.Key(), ErrDuplicateKey)
	}
	ref := p.children[index].Key()
	p.children = slices.Insert(p.children, index, el)
	p.reindex(index)
	return Change{Op: OpInsertBefore, Key: ref, Element: el.Clone()}, nil
}

// InsertAll inserts els before the child at index, preserving their order.
func (p *Parent) InsertAll(index int, els []Element) (Change, error) {
	if index < 0 || index >= len(p.children) {
		return Change{}, indexError("InsertAll", index, ErrIndexOOB)
	}
	p.ensureKeymap()
	if err := p.checkBatch("InsertAll", els); err != nil {
		return Change{}, err
	}
	ref := p.children[index].Key()
	p.children = slices.Insert(p.children, index, els...)
	p.reindex(index)
	return Change{Op: OpInsertAll, Key: ref, Elements: cloneElements(els)}, nil
}

// ReplaceChild substitutes el for the child at index.
// The returned change carries the replaced child's key.
func (p *Parent) ReplaceChild(index int, el Element) (Change, error) {
	if index < 0 || index >= len(p.children) {
		return Change{}, indexError("ReplaceChild", index, ErrIndexOOB)
	}
	p.ensureKeymap()
	old := p.children[index].Key()
	if i, dup := p.keymap[el.Key()]; dup && i != index {
		return Change{}, keyError("ReplaceChild", el.Key(), ErrDuplicateKey)
	}
	delete(p.keymap, old)
	p.keymap[el.Key()] = index
	p.children[index] = el
	return Change{Op: OpReplaceChild, Key: old, Element: el.Clone()}, nil
}

// RemoveChild removes the child at index.
func (p *Parent) RemoveChild(index int) (Change, error) {
	if index < 0 || index >= len(p.children) {
		return Change{}, indexError("RemoveChild", index, ErrIndexOOB)
	}
	p.ensureKeymap()
	old := p.children[index].Key()
	p.children = slices.Delete(p.children, index, index+1)
	delete(p.keymap, old)
	p.reindex(index)
	return RemoveChildChange(old), nil
}

// ReorderChildren stable-sorts the children with compare and rebuilds the
// keymap. Children that compare equal keep their relative order.
// The returned change carries the full resulting key order.
func (p *Parent) ReorderChildren(compare func(a, b Element) int) (Change, error) {
	p.ensureKeymap()
	slices.SortStableFunc(p.children, compare)
	p.reindex(0)
	return SortChildrenChange(p.Keys()), nil
}

// OrderBy adapts an ordering-key function into a comparator for
// ReorderChildren.
//
//	p.ReorderChildren(vdom.OrderBy(func(el vdom.Element) uint64 { return el.Key().ID }))
func OrderBy[T cmp.Ordered](key func(Element) T) func(a, b Element) int {
	return func(a, b Element) int {
		return cmp.Compare(key(a), key(b))
	}
}

// sortToKeys reorders the children to match keys, which must be a
// permutation of the current child keys.
func (p *Parent) sortToKeys(keys []Key) error {
	if len(keys) != len(p.children) {
		return opError("SortChildren", ErrUnknownKey)
	}
	p.ensureKeymap()
	sorted := make([]Element, len(keys))
	used := make([]bool, len(p.children))
	for i, k := range keys {
		j, ok := p.keymap[k]
		if !ok || used[j] {
			return keyError("SortChildren", k, ErrUnknownKey)
		}
		used[j] = true
		sorted[i] = p.children[j]
	}
	p.children = sorted
	p.reindex(0)
	return nil
}

// reindex rewrites the keymap entries of children[from:].
func (p *Parent) reindex(from int) {
	for i := from; i < len(p.children); i++ {
		p.keymap[p.children[i].Key()] = i
	}
}

// ensureKeymap builds the keymap for a Parent created as a struct literal.
func (p *Parent) ensureKeymap() {
	if p.keymap != nil {
		return
	}
	p.keymap = make(map[Key]int, len(p.children))
	p.reindex(0)
}

// checkBatch rejects els if any key repeats within els or matches an
// existing child.
func (p *Parent) checkBatch(op string, els []Element) error {
	seen := make(map[Key]struct{}, len(els))
	for _, el := range els {
		k := el.Key()
		if _, dup := seen[k]; dup {
			return keyError(op, k, ErrDuplicateKey)
		}
		if _, dup := p.keymap[k]; dup {
			return keyError(op, k, ErrDuplicateKey)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
