package vtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vtree/pkg/render"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// ExpectKeymapConsistent fails t unless every Parent in the tree has a keymap
// that matches its children exactly.
func ExpectKeymapConsistent(t testing.TB, el vdom.Element) {
	t.Helper()
	vdom.Walk(el, func(n vdom.Element, _ int) bool {
		if p, ok := n.(*vdom.Parent); ok {
			require.NoError(t, p.CheckKeymap(), "parent %s", p.Key())
		}
		return true
	})
}

// ExpectRoundTrip diffs prev against next, replays the diff on a clone of
// prev and fails t unless the result equals next, keys included. It returns
// the diff.
func ExpectRoundTrip(t testing.TB, prev, next vdom.Element) *vdom.DiffTree {
	t.Helper()
	d := vdom.Diff(prev, next)

	live := prev.Clone()
	got, err := vdom.Apply(live, d)
	require.NoError(t, err, "diff:\n%s", render.DiffString(d))
	require.True(t, vdom.EqualKeyed(got, next),
		"replayed tree differs from next\n got: %s\nwant: %s\ndiff:\n%s",
		render.String(got), render.String(next), render.DiffString(d))
	require.Nil(t, vdom.Diff(got, next), "replayed tree still diffs against next")
	ExpectKeymapConsistent(t, got)
	return d
}

// ExpectContains fails t unless the rendered HTML of el contains substr.
func ExpectContains(t testing.TB, el vdom.Element, substr string) {
	t.Helper()
	require.Contains(t, render.String(el), substr)
}

// ExpectNotContains fails t if the rendered HTML of el contains substr.
func ExpectNotContains(t testing.TB, el vdom.Element, substr string) {
	t.Helper()
	require.NotContains(t, render.String(el), substr)
}
