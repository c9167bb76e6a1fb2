package vdom

// ChangeOp is the type of change operation.
type ChangeOp uint8

const (
	OpAppendChild      ChangeOp = 0x01 // Append one child
	OpAppendAll        ChangeOp = 0x02 // Append a batch of children
	OpInsertBefore     ChangeOp = 0x03 // Insert one child before a keyed sibling
	OpInsertAll        ChangeOp = 0x04 // Insert a batch before a keyed sibling
	OpReplaceChild     ChangeOp = 0x05 // Replace a keyed child
	OpRemoveChild      ChangeOp = 0x06 // Remove a keyed child
	OpSortChildren     ChangeOp = 0x07 // Resync the full child order
	OpUpdateText       ChangeOp = 0x08 // Set text content
	OpReplaceNode      ChangeOp = 0x09 // Replace the node itself
	OpInsertChild      ChangeOp = 0x0A // Add a brand-new child (diff output)
	OpUpdateAttributes ChangeOp = 0x0B // Set and remove attributes
)

// String returns the string representation of the ChangeOp.
func (op ChangeOp) String() string {
	switch op {
	case OpAppendChild:
		return "AppendChild"
	case OpAppendAll:
		return "AppendAll"
	case OpInsertBefore:
		return "InsertBefore"
	case OpInsertAll:
		return "InsertAll"
	case OpReplaceChild:
		return "ReplaceChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpSortChildren:
		return "SortChildren"
	case OpUpdateText:
		return "UpdateText"
	case OpReplaceNode:
		return "ReplaceNode"
	case OpInsertChild:
		return "InsertChild"
	case OpUpdateAttributes:
		return "UpdateAttributes"
	default:
		return "Unknown"
	}
}

// Change is one atomic edit.
//
// Which fields are meaningful depends on Op:
//
//	OpAppendChild, OpInsertChild, OpReplaceNode   Element
//	OpAppendAll                                   Elements
//	OpInsertBefore                                Key (reference sibling), Element
//	OpInsertAll                                   Key (reference sibling), Elements
//	OpReplaceChild                                Key (replaced child), Element
//	OpRemoveChild                                 Key
//	OpSortChildren                                Keys (full target order)
//	OpUpdateText                                  Text
//	OpUpdateAttributes                            Attrs (set), Removed
//
// Elements carried by a Change are owned by it and never alias a live tree.
type Change struct {
	Op       ChangeOp
	Key      Key
	Element  Element
	Elements []Element
	Keys     []Key
	Text     string
	Attrs    *Attributes
	Removed  []string
}

// RemoveChildChange returns a change removing the child with key.
func RemoveChildChange(key Key) Change {
	return Change{Op: OpRemoveChild, Key: key}
}

// InsertChildChange returns a change adding el as a new child.
func InsertChildChange(el Element) Change {
	return Change{Op: OpInsertChild, Element: el}
}

// SortChildrenChange returns a change resyncing the child order to keys.
func SortChildrenChange(keys []Key) Change {
	return Change{Op: OpSortChildren, Keys: keys}
}

// UpdateTextChange returns a change setting text content.
func UpdateTextChange(value string) Change {
	return Change{Op: OpUpdateText, Text: value}
}

// ReplaceNodeChange returns a change replacing a node with el.
func ReplaceNodeChange(el Element) Change {
	return Change{Op: OpReplaceNode, Element: el}
}

// UpdateAttributesChange returns a change setting and removing attributes.
func UpdateAttributesChange(set *Attributes, removed []string) Change {
	return Change{Op: OpUpdateAttributes, Attrs: set, Removed: removed}
}

// Clone returns a deep copy of the change.
func (c Change) Clone() Change {
	out := c
	if c.Element != nil {
		out.Element = c.Element.Clone()
	}
	if c.Elements != nil {
		out.Elements = cloneElements(c.Elements)
	}
	if c.Keys != nil {
		out.Keys = append([]Key(nil), c.Keys...)
	}
	out.Attrs = c.Attrs.Clone()
	if c.Removed != nil {
		out.Removed = append([]string(nil), c.Removed...)
	}
	return out
}

func cloneElements(els []Element) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el.Clone()
	}
	return out
}
