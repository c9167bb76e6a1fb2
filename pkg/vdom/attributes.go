package vdom

import (
	"github.com/emirpasic/gods/maps/treemap"
)

// Attributes is an attribute mapping ordered by name.
//
// A nil *Attributes is a valid, empty mapping; every read method accepts it.
// The backing tree holds a comparator func, so two mappings are never
// reflect.DeepEqual; compare them with Equal.
type Attributes struct {
	m *treemap.Map
}

// NewAttributes builds a mapping from alternating name/value pairs.
// A trailing name without a value is ignored.
//
//	NewAttributes("class", "card", "id", "main")
func NewAttributes(pairs ...string) *Attributes {
	a := &Attributes{m: treemap.NewWithStringComparator()}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.m.Put(pairs[i], pairs[i+1])
	}
	return a
}

// AttributesFromMap builds a mapping from a Go map.
func AttributesFromMap(m map[string]string) *Attributes {
	a := NewAttributes()
	for name, value := range m {
		a.m.Put(name, value)
	}
	return a
}

// Set sets name to value, overwriting any previous value.
func (a *Attributes) Set(name, value string) {
	if a.m == nil {
		a.m = treemap.NewWithStringComparator()
	}
	a.m.Put(name, value)
}

// Get returns the value of name.
func (a *Attributes) Get(name string) (string, bool) {
	if a == nil || a.m == nil {
		return "", false
	}
	v, ok := a.m.Get(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Delete removes name. Deleting a missing name is a no-op.
func (a *Attributes) Delete(name string) {
	if a == nil || a.m == nil {
		return
	}
	a.m.Remove(name)
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil || a.m == nil {
		return 0
	}
	return a.m.Size()
}

// Names returns the attribute names in ascending order.
func (a *Attributes) Names() []string {
	if a.Len() == 0 {
		return nil
	}
	names := make([]string, 0, a.m.Size())
	for _, k := range a.m.Keys() {
		names = append(names, k.(string))
	}
	return names
}

// Each calls fn for every attribute in ascending name order.
func (a *Attributes) Each(fn func(name, value string)) {
	if a.Len() == 0 {
		return
	}
	it := a.m.Iterator()
	for it.Next() {
		fn(it.Key().(string), it.Value().(string))
	}
}

// Map returns the attributes as a plain Go map.
func (a *Attributes) Map() map[string]string {
	out := make(map[string]string, a.Len())
	a.Each(func(name, value string) {
		out[name] = value
	})
	return out
}

// Clone returns a deep copy. Cloning nil returns nil.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	c := NewAttributes()
	a.Each(func(name, value string) {
		c.m.Put(name, value)
	})
	return c
}

// Equal reports whether a and b hold the same name/value pairs.
// A nil mapping equals an empty one.
func (a *Attributes) Equal(b *Attributes) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Each(func(name, value string) {
		if !equal {
			return
		}
		if other, ok := b.Get(name); !ok || other != value {
			equal = false
		}
	})
	return equal
}

// diffAttributes computes the attribute delta from prev to next.
// set holds added or changed attributes; removed holds deleted names in
// ascending order. Both are nil when nothing changed.
func diffAttributes(prev, next *Attributes) (set *Attributes, removed []string) {
	prev.Each(func(name, _ string) {
		if _, ok := next.Get(name); !ok {
			removed = append(removed, name)
		}
	})
	next.Each(func(name, value string) {
		if old, ok := prev.Get(name); ok && old == value {
			return
		}
		if set == nil {
			set = NewAttributes()
		}
		set.m.Put(name, value)
	})
	return set, removed
}
