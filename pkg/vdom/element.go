package vdom

import "fmt"

// Kind is the element shape discriminator.
type Kind uint8

const (
	KindText   Kind = iota // Text leaf
	KindVoid               // Tagged node that cannot have children
	KindParent             // Tagged node with keyed children
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindVoid:
		return "Void"
	case KindParent:
		return "Parent"
	default:
		return "Unknown"
	}
}

// Element is a node of a keyed tree: *Text, *Void or *Parent.
//
// The mutation methods are defined on every shape so that callers can hold an
// Element without a type switch. Shapes that do not support an operation
// return an *OpError wrapping ErrChildlessElementOp, ErrNotATextNode or
// ErrNoAttributes.
//
// Element values are not safe for concurrent mutation. A tree may be read by
// many goroutines at once (Diff only reads) as long as nothing mutates it.
type Element interface {
	// Key returns the identity key of the element.
	Key() Key

	// Kind returns the element shape.
	Kind() Kind

	// Clone returns a deep copy of the element.
	Clone() Element

	AppendChild(el Element) (Change, error)
	AppendAll(els []Element) (Change, error)
	InsertBefore(index int, el Element) (Change, error)
	InsertAll(index int, els []Element) (Change, error)
	ReplaceChild(index int, el Element) (Change, error)
	RemoveChild(index int) (Change, error)
	ReorderChildren(compare func(a, b Element) int) (Change, error)
	UpdateText(value string) (Change, error)
	UpdateAttributes(set *Attributes, remove []string) (Change, error)

	isElement()
}

// Text is a text leaf.
type Text struct {
	noChildren
	key   Key
	Value string
}

// NewText creates a text leaf.
func NewText(key Key, value string) *Text {
	return &Text{key: key, Value: value}
}

// Key implements Element.
func (t *Text) Key() Key { return t.key }

// Kind implements Element.
func (t *Text) Kind() Kind { return KindText }

// Clone implements Element.
func (t *Text) Clone() Element {
	return &Text{key: t.key, Value: t.Value}
}

func (t *Text) isElement() {}

// Void is a tagged element that structurally cannot have children
// (e.g. <br>, <img>).
type Void struct {
	noChildren
	notText
	key   Key
	Tag   string
	Attrs *Attributes
}

// NewVoid creates a void element. attrs may be nil.
func NewVoid(key Key, tag string, attrs *Attributes) *Void {
	return &Void{key: key, Tag: tag, Attrs: attrs}
}

// Key implements Element.
func (v *Void) Key() Key { return v.key }

// Kind implements Element.
func (v *Void) Kind() Kind { return KindVoid }

// Clone implements Element.
func (v *Void) Clone() Element {
	return &Void{key: v.key, Tag: v.Tag, Attrs: v.Attrs.Clone()}
}

func (v *Void) isElement() {}

// Parent is a tagged element with an ordered sequence of uniquely keyed
// children.
//
// Parent keeps a keymap from every child's key to its index. The children and
// the keymap are only changed together, through the mutation methods, so a
// child lookup by key never needs a linear scan.
type Parent struct {
	notText
	key      Key
	Tag      string
	Attrs    *Attributes
	children []Element
	keymap   map[Key]int
}

// NewParent creates a parent element owning children.
// It fails with ErrDuplicateKey if two children share a key.
func NewParent(key Key, tag string, attrs *Attributes, children ...Element) (*Parent, error) {
	p := &Parent{
		key:      key,
		Tag:      tag,
		Attrs:    attrs,
		children: make([]Element, 0, len(children)),
		keymap:   make(map[Key]int, len(children)),
	}
	for i, child := range children {
		if _, dup := p.keymap[child.Key()]; dup {
			return nil, keyError("NewParent", child.Key(), ErrDuplicateKey)
		}
		p.keymap[child.Key()] = i
		p.children = append(p.children, child)
	}
	return p, nil
}

// MustParent is like NewParent but panics on error.
// It is intended for tree literals and tests.
func MustParent(key Key, tag string, attrs *Attributes, children ...Element) *Parent {
	p, err := NewParent(key, tag, attrs, children...)
	if err != nil {
		panic(err)
	}
	return p
}

// Key implements Element.
func (p *Parent) Key() Key { return p.key }

// Kind implements Element.
func (p *Parent) Kind() Kind { return KindParent }

// Clone implements Element.
func (p *Parent) Clone() Element {
	c := &Parent{
		key:      p.key,
		Tag:      p.Tag,
		Attrs:    p.Attrs.Clone(),
		children: make([]Element, len(p.children)),
		keymap:   make(map[Key]int, len(p.children)),
	}
	for i, child := range p.children {
		c.children[i] = child.Clone()
		c.keymap[child.Key()] = i
	}
	return c
}

func (p *Parent) isElement() {}

// Len returns the number of children.
func (p *Parent) Len() int {
	return len(p.children)
}

// Child returns the child at index, or nil if index is out of bounds.
func (p *Parent) Child(index int) Element {
	if index < 0 || index >= len(p.children) {
		return nil
	}
	return p.children[index]
}

// IndexOf returns the index of the child with key.
func (p *Parent) IndexOf(key Key) (int, bool) {
	i, ok := p.keymap[key]
	return i, ok
}

// ChildByKey returns the child with key, or nil.
func (p *Parent) ChildByKey(key Key) Element {
	if i, ok := p.keymap[key]; ok {
		return p.children[i]
	}
	return nil
}

// Children returns the children in order. The returned slice is a copy;
// the elements themselves are shared with the tree.
func (p *Parent) Children() []Element {
	out := make([]Element, len(p.children))
	copy(out, p.children)
	return out
}

// Keys returns the children's keys in order.
func (p *Parent) Keys() []Key {
	keys := make([]Key, len(p.children))
	for i, child := range p.children {
		keys[i] = child.Key()
	}
	return keys
}

// TagOf returns the tag name of a Void or Parent, and "" for Text.
func TagOf(el Element) string {
	switch v := el.(type) {
	case *Void:
		return v.Tag
	case *Parent:
		return v.Tag
	default:
		return ""
	}
}

// AttrsOf returns the attributes of a Void or Parent, and nil for Text.
func AttrsOf(el Element) *Attributes {
	switch v := el.(type) {
	case *Void:
		return v.Attrs
	case *Parent:
		return v.Attrs
	default:
		return nil
	}
}

// CheckKeymap verifies that the keymap matches the children exactly: every
// child's key maps to its index and there are no other entries.
func (p *Parent) CheckKeymap() error {
	if p.keymap == nil && len(p.children) == 0 {
		return nil
	}
	if len(p.keymap) != len(p.children) {
		return fmt.Errorf("vdom: keymap has %d entries for %d children", len(p.keymap), len(p.children))
	}
	for i, child := range p.children {
		if j, ok := p.keymap[child.Key()]; !ok || j != i {
			return fmt.Errorf("vdom: keymap maps %s to %d, child is at %d", child.Key(), j, i)
		}
	}
	return nil
}
