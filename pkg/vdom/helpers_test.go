package vdom

func g(id uint64) Key { return GlobalKey(id) }

func txt(id uint64, value string) *Text { return NewText(g(id), value) }

func par(id uint64, tag string, children ...Element) *Parent {
	return MustParent(g(id), tag, nil, children...)
}

// list builds a "ul" keyed 100 whose children are text leaves keyed ids.
func list(ids ...uint64) *Parent {
	children := make([]Element, len(ids))
	for i, id := range ids {
		children[i] = txt(id, "item")
	}
	return MustParent(g(100), "ul", nil, children...)
}

func keys(ids ...uint64) []Key {
	out := make([]Key, len(ids))
	for i, id := range ids {
		out[i] = g(id)
	}
	return out
}

func ops(changes []Change) []ChangeOp {
	out := make([]ChangeOp, len(changes))
	for i, c := range changes {
		out[i] = c.Op
	}
	return out
}
