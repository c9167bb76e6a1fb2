package vdom

import (
	"errors"
	"fmt"
)

// ErrChildlessElementOp is returned when a child operation (append, insert,
// remove, replace, reorder) is attempted on a Text or Void element.
var ErrChildlessElementOp = errors.New("vdom: element cannot have children")

// ErrIndexOOB is returned when an index-based operation references an index
// that is negative or not less than the current child count.
var ErrIndexOOB = errors.New("vdom: child index out of bounds")

// ErrNotATextNode is returned when UpdateText is called on a Void or Parent.
var ErrNotATextNode = errors.New("vdom: not a text node")

// ErrDuplicateKey is returned when an operation would give two siblings the
// same key. The element is left unchanged.
var ErrDuplicateKey = errors.New("vdom: duplicate child key")

// ErrNoAttributes is returned when UpdateAttributes is called on a Text node.
var ErrNoAttributes = errors.New("vdom: element has no attributes")

// ErrUnknownKey is returned by Apply when a change addresses a child key that
// is not present in the live tree. The live tree has diverged from the
// snapshot the diff was computed against.
var ErrUnknownKey = errors.New("vdom: unknown child key")

// ErrUnknownChange is returned by Apply for a change it cannot replay at the
// position it was found.
var ErrUnknownChange = errors.New("vdom: change cannot be replayed")

// OpError records a failed element operation.
// It unwraps to one of the package sentinel errors.
type OpError struct {
	Op    string // Operation name, e.g. "InsertBefore"
	Index int    // Child index involved, -1 if none
	Key   *Key   // Child key involved, nil if none
	Err   error  // Underlying sentinel
}

// Error implements the error interface.
func (e *OpError) Error() string {
	switch {
	case e.Key != nil:
		return fmt.Sprintf("%s(%s): %v", e.Op, e.Key, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("%s(%d): %v", e.Op, e.Index, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying sentinel for errors.Is/As support.
func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) *OpError {
	return &OpError{Op: op, Index: -1, Err: err}
}

func indexError(op string, index int, err error) *OpError {
	return &OpError{Op: op, Index: index, Err: err}
}

func keyError(op string, key Key, err error) *OpError {
	return &OpError{Op: op, Index: -1, Key: &key, Err: err}
}
