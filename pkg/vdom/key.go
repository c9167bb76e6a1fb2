package vdom

import "strconv"

// KeyScope is the key discriminator.
type KeyScope uint8

const (
	ScopeLocal  KeyScope = iota // Valid within one snapshot only
	ScopeGlobal                 // Stable across snapshots
)

// String returns the string representation of the KeyScope.
func (s KeyScope) String() string {
	switch s {
	case ScopeLocal:
		return "Local"
	case ScopeGlobal:
		return "Global"
	default:
		return "Unknown"
	}
}

// Key identifies a node across tree versions.
//
// Keys are compared by value: two keys are equal iff they have the same scope
// and the same ID. Key is comparable and can be used directly as a map key.
// Keys must be unique among the direct children of a Parent.
type Key struct {
	Scope KeyScope
	ID    uint64
}

// LocalKey returns a key valid only within a single snapshot.
func LocalKey(id uint64) Key {
	return Key{Scope: ScopeLocal, ID: id}
}

// GlobalKey returns a key that is stable across snapshots.
func GlobalKey(id uint64) Key {
	return Key{Scope: ScopeGlobal, ID: id}
}

// IsGlobal reports whether k is stable across snapshots.
func (k Key) IsGlobal() bool {
	return k.Scope == ScopeGlobal
}

// Compare orders keys: local keys sort before global keys, then by ID.
// It returns -1, 0 or +1.
func (k Key) Compare(other Key) int {
	switch {
	case k.Scope < other.Scope:
		return -1
	case k.Scope > other.Scope:
		return 1
	case k.ID < other.ID:
		return -1
	case k.ID > other.ID:
		return 1
	default:
		return 0
	}
}

// String renders the key as "l:<id>" or "g:<id>".
func (k Key) String() string {
	prefix := "l:"
	if k.Scope == ScopeGlobal {
		prefix = "g:"
	}
	return prefix + strconv.FormatUint(k.ID, 10)
}
