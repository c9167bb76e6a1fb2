// Package vdom provides keyed element trees and their reconciliation.
//
// An element tree is built from three shapes: Text leaves, Void elements
// (tagged, attributes, no children) and Parent elements whose ordered
// children are uniquely keyed among siblings. Every Parent keeps a keymap
// from child key to index in lockstep with its children.
//
// # Diffing
//
// Diff compares a previous and a next tree and returns a DiffTree: the
// changes local to a node plus nested DiffTrees for children that changed,
// matched by key. Identical trees produce nil.
//
//	prev := vdom.MustParent(vdom.GlobalKey(1), "ul", nil,
//	    vdom.NewText(vdom.GlobalKey(2), "a"),
//	    vdom.NewText(vdom.GlobalKey(3), "b"),
//	)
//	next := vdom.MustParent(vdom.GlobalKey(1), "ul", nil,
//	    vdom.NewText(vdom.GlobalKey(3), "b"),
//	    vdom.NewText(vdom.GlobalKey(2), "a"),
//	)
//	d := vdom.Diff(prev, next) // one OpSortChildren [g:3 g:2]
//
// # Mutation
//
// The mutation methods on Element (AppendChild, InsertBefore, RemoveChild,
// ReorderChildren, UpdateText, ...) edit a live tree, keep the keymap
// consistent and return the Change describing the edit so it can be
// replayed elsewhere. Apply replays a whole DiffTree through the same
// methods.
//
// Diff is a pure function and may run concurrently over trees nobody is
// mutating. Mutation needs exclusive access to the tree.
package vdom
