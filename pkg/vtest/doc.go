// Package vtest provides testing helpers for keyed element trees.
//
// # Random Trees
//
// Generator builds deterministic random trees and random edits of them,
// which makes property tests over Diff and Apply short:
//
//	g := vtest.NewGenerator(42, vtest.DefaultGenOptions())
//	prev := g.Tree()
//	next := g.Mutate(prev, 0.5)
//	vtest.ExpectRoundTrip(t, prev, next)
//
// Mutate must be called on the Generator that built the tree, so that the
// keys it allocates for new children never collide with existing ones.
//
// # Assertions
//
//	vtest.ExpectKeymapConsistent(t, tree)
//	vtest.ExpectContains(t, tree, "<li>")
package vtest
